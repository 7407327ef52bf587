// Package adminapi is the administrative HTTP surface spec §6 treats as
// an external collaborator, specified here only through its interface
// to the acceptor: submit_fill, admin_cancel, admin_reject,
// list_orders/get_order/list_executions.
package adminapi

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/brokerfix/acceptor/internal/apierr"
	"github.com/brokerfix/acceptor/internal/dispatch"
	"github.com/brokerfix/acceptor/internal/middleware"
	"github.com/brokerfix/acceptor/internal/refprice"
)

// Server wires the dispatcher (C5) to gin routes, the way the teacher's
// internal/api/http package wires its engine to handlers.
type Server struct {
	dispatch *dispatch.Dispatcher
	events   *EventBus
	refs     *refprice.Registry // optional; nil means no reference prices seeded
	log      *zap.Logger
}

func NewServer(d *dispatch.Dispatcher, events *EventBus, refs *refprice.Registry, log *zap.Logger) *Server {
	return &Server{dispatch: d, events: events, refs: refs, log: log}
}

func (s *Server) Run(addr string) error {
	r := gin.New()
	r.Use(ginzap.Ginzap(s.log, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(s.log, true))

	rl := middleware.NewRateLimiter(20 * time.Millisecond)
	r.Use(rl.Middleware())

	r.POST("/orders/:cl_ord_id/fill", s.submitFill)
	r.POST("/orders/:cl_ord_id/cancel", s.adminCancel)
	r.POST("/orders/:cl_ord_id/reject", s.adminReject)
	r.GET("/orders", s.listOrders)
	r.GET("/orders/:cl_ord_id", s.getOrder)
	r.GET("/orders/:cl_ord_id/executions", s.listExecutions)

	return r.Run(addr)
}

func (s *Server) submitFill(c *gin.Context) {
	clOrdID := c.Param("cl_ord_id")
	var req SubmitFillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	qty, err := decimalFromString(req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid quantity"})
		return
	}
	price, err := decimalFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid price"})
		return
	}

	if err := s.dispatch.SubmitFill(c.Request.Context(), clOrdID, qty, price); err != nil {
		s.respondError(c, err)
		return
	}
	s.publishAfter(c, clOrdID)
	c.Status(http.StatusOK)
}

func (s *Server) adminCancel(c *gin.Context) {
	clOrdID := c.Param("cl_ord_id")
	if err := s.dispatch.AdminCancel(c.Request.Context(), clOrdID); err != nil {
		s.respondError(c, err)
		return
	}
	s.publishAfter(c, clOrdID)
	c.Status(http.StatusOK)
}

func (s *Server) adminReject(c *gin.Context) {
	clOrdID := c.Param("cl_ord_id")
	var req AdminRejectRequest
	_ = c.ShouldBindJSON(&req) // reason is optional; an empty/absent body rejects with no Text
	if err := s.dispatch.AdminReject(c.Request.Context(), clOrdID, req.Reason); err != nil {
		s.respondError(c, err)
		return
	}
	s.publishAfter(c, clOrdID)
	c.Status(http.StatusOK)
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.dispatch.ListOrders(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, convertOrders(orders, s.refs))
}

func (s *Server) getOrder(c *gin.Context) {
	clOrdID := c.Param("cl_ord_id")
	order, err := s.dispatch.GetOrder(c.Request.Context(), clOrdID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, convertOrder(order, s.refs))
}

func (s *Server) listExecutions(c *gin.Context) {
	clOrdID := c.Param("cl_ord_id")
	execs, err := s.dispatch.ListExecutions(c.Request.Context(), clOrdID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, convertExecutions(execs))
}

func (s *Server) publishAfter(c *gin.Context, clOrdID string) {
	order, err := s.dispatch.GetOrder(c.Request.Context(), clOrdID)
	if err != nil {
		return
	}
	s.events.Publish(OrderEvent{Order: order})
}

func (s *Server) respondError(c *gin.Context, err error) {
	if e, ok := apierr.As(err); ok {
		c.JSON(e.Kind.HTTPStatus(), errorResponse{Error: e.Detail, Kind: string(e.Kind)})
		return
	}
	c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
