// Package session implements component C2: one Session per accepted TCP
// connection, owning the logon handshake, heartbeat timer, inbound/
// outbound sequence numbers, and the single serialized emission path
// every outbound message passes through.
package session

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/brokerfix/acceptor/internal/domain"
	"github.com/brokerfix/acceptor/internal/fix"
	"github.com/brokerfix/acceptor/internal/logging"
	"github.com/brokerfix/acceptor/internal/port"
	"github.com/brokerfix/acceptor/internal/statemachine"
)

// State is one of the session lifecycle states in spec §4.2.
type State int32

const (
	Connected State = iota
	LoggedIn
	LoggingOut
	Closed
)

// Config carries the session-scoped settings the acceptor resolves from
// internal/config before accepting a connection.
type Config struct {
	ServerCompID          string
	DefaultHeartbeatS     int
	IdleTimeoutMultiplier float64
}

// Session owns a single client connection end to end: receive loop,
// heartbeat timer, and the serialized write path every outbound message
// goes through.
type Session struct {
	conn   net.Conn
	writer *bufio.Writer
	reader *fix.Parser
	log    *zap.Logger
	cfg    Config
	store  port.OrderStore
	reg    *Registry

	senderCompID       string
	targetCompID       string
	heartbeatIntervalS int

	state   atomic.Int32
	nextOut atomic.Uint64
	nextIn  atomic.Uint64

	sendMu     sync.Mutex
	lastSendAt atomic.Value // time.Time
	lastRecvAt atomic.Value // time.Time

	closeOnce sync.Once
	done      chan struct{}
}

// New wraps conn in a fresh Session awaiting Logon.
func New(conn net.Conn, cfg Config, store port.OrderStore, reg *Registry, log *zap.Logger) *Session {
	s := &Session{
		conn:   conn,
		writer: bufio.NewWriter(conn),
		reader: fix.NewParser(bufio.NewReader(conn)),
		log:    log,
		cfg:    cfg,
		store:  store,
		reg:    reg,
		done:   make(chan struct{}),
	}
	s.nextOut.Store(1)
	s.nextIn.Store(1)
	s.state.Store(int32(Connected))
	s.lastRecvAt.Store(time.Now())
	s.lastSendAt.Store(time.Now())
	return s
}

func (s *Session) State() State { return State(s.state.Load()) }

// defaultHeartbeatS falls back to the operator-configured default (spec
// §6's default_heartbeat_s) when a Logon omits HeartBtInt or negotiates 0.
func (s *Session) defaultHeartbeatS() int {
	if s.cfg.DefaultHeartbeatS > 0 {
		return s.cfg.DefaultHeartbeatS
	}
	return 30
}

// Serve runs the receive loop until the connection closes, a framing
// error occurs, or the idle timeout fires. It never returns an error;
// every exit path tears the session down and logs why.
func (s *Session) Serve(ctx context.Context) {
	defer s.teardown()

	go s.heartbeatLoop(ctx)

	for {
		msg, raw, err := s.reader.Next()
		if err != nil {
			s.log.Info("session: closing on read error", zap.String("sender_comp_id", s.senderCompID), zap.Error(err))
			return
		}
		s.lastRecvAt.Store(time.Now())
		logging.Recv(s.log, s.senderCompID, raw)

		if err := s.dispatch(ctx, msg); err != nil {
			s.log.Info("session: closing after dispatch error", zap.String("sender_comp_id", s.senderCompID), zap.Error(err))
			return
		}
		if s.State() == Closed {
			return
		}
	}
}

func (s *Session) dispatch(ctx context.Context, msg *fix.Message) error {
	msgType := msg.MsgType()

	if msgType != fix.MsgLogon && s.State() != LoggedIn {
		s.log.Warn("session: message before logon, ignoring", zap.String("msg_type", string(msgType)))
		return nil
	}

	seqOK, fatal := s.checkSequence(msg)
	if fatal {
		s.sendLogout("MsgSeqNum too low")
		return fmt.Errorf("sequence too low")
	}
	if !seqOK {
		s.log.Warn("session: sequence gap detected", zap.String("sender_comp_id", s.senderCompID))
	}

	switch msgType {
	case fix.MsgLogon:
		return s.handleLogon(msg)
	case fix.MsgHeartbeat:
		return nil
	case fix.MsgTestRequest:
		return s.handleTestRequest(msg)
	case fix.MsgLogout:
		s.state.Store(int32(LoggingOut))
		s.sendLogout("")
		s.state.Store(int32(Closed))
		return fmt.Errorf("logout received")
	case fix.MsgNewOrderSingle:
		return s.handleNewOrderSingle(ctx, msg)
	case fix.MsgOrderCancelRequest:
		return s.handleOrderCancelRequest(ctx, msg)
	case fix.MsgOrderCancelReplaceRequest:
		return s.handleOrderCancelReplaceRequest(ctx, msg)
	default:
		s.log.Info("session: unsupported MsgType, ignoring", zap.String("msg_type", string(msgType)))
		return nil
	}
}

// checkSequence implements spec §4.2's discipline: equal-to-expected
// advances, greater logs a gap (non-fatal, per spec), lesser is fatal.
func (s *Session) checkSequence(msg *fix.Message) (ok bool, fatal bool) {
	raw, _ := msg.Get(fix.TagMsgSeqNum)
	got, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return false, false
	}
	expected := s.nextIn.Load()
	switch {
	case got == expected:
		s.nextIn.Store(expected + 1)
		return true, false
	case got > expected:
		s.nextIn.Store(got + 1)
		return false, false
	default:
		return false, true
	}
}

func (s *Session) handleLogon(msg *fix.Message) error {
	senderCompID, _ := msg.Get(fix.TagSenderCompID)
	targetCompID, _ := msg.Get(fix.TagTargetCompID)
	encryptMethod, _ := msg.Get(fix.TagEncryptMethod)
	heartBtInt, _ := msg.Get(fix.TagHeartBtInt)

	if encryptMethod != "0" || targetCompID != s.cfg.ServerCompID || senderCompID == "" {
		s.sendLogout("Logon rejected")
		s.state.Store(int32(Closed))
		return fmt.Errorf("logon validation failed")
	}

	if !s.reg.Claim(senderCompID, s) {
		s.sendLogout("Session already active")
		s.state.Store(int32(Closed))
		return fmt.Errorf("duplicate session identity")
	}

	s.senderCompID = senderCompID
	s.targetCompID = targetCompID
	if n, err := strconv.Atoi(heartBtInt); err == nil && n > 0 {
		s.heartbeatIntervalS = n
	} else {
		s.heartbeatIntervalS = s.defaultHeartbeatS()
	}
	s.state.Store(int32(LoggedIn))

	b := fix.NewBuilder(fix.MsgLogon)
	b.Set(fix.TagEncryptMethod, "0")
	b.Set(fix.TagHeartBtInt, strconv.Itoa(s.heartbeatIntervalS))
	s.emit(b)
	return nil
}

func (s *Session) handleTestRequest(msg *fix.Message) error {
	testReqID, _ := msg.Get(fix.TagTestReqID)
	b := fix.NewBuilder(fix.MsgHeartbeat)
	if testReqID != "" {
		b.Set(fix.TagTestReqID, testReqID)
	}
	s.emit(b)
	return nil
}

func (s *Session) handleNewOrderSingle(ctx context.Context, msg *fix.Message) error {
	clOrdID, _ := msg.Get(fix.TagClOrdID)
	symbol, _ := msg.Get(fix.TagSymbol)
	sideTagV, _ := msg.Get(fix.TagSide)
	ordTypeV, _ := msg.Get(fix.TagOrdType)
	qtyV, _ := msg.Get(fix.TagOrderQty)
	priceV, _ := msg.Get(fix.TagPrice)
	tifV, _ := msg.Get(fix.TagTimeInForce)

	in := statemachine.NewOrderInput{
		ClOrdID:      clOrdID,
		Symbol:       symbol,
		Side:         sideFromTag(sideTagV),
		OrderType:    orderTypeFromTag(ordTypeV),
		Quantity:     parseDecimal(qtyV),
		LimitPrice:   parseDecimal(priceV),
		TimeInForce:  tifFromTag(tifV),
		SenderCompID: s.senderCompID,
	}

	order, exec, _, err := statemachine.NewOrderSingle(ctx, s.store, in)
	if err != nil {
		s.log.Error("session: NewOrderSingle failed", zap.Error(err))
		return nil
	}
	s.emit(buildExecutionReport(order.ClOrdID, "", order, exec))
	return nil
}

func (s *Session) handleOrderCancelRequest(ctx context.Context, msg *fix.Message) error {
	clOrdID, _ := msg.Get(fix.TagClOrdID)
	origClOrdID, _ := msg.Get(fix.TagOrigClOrdID)

	order, exec, reject, err := statemachine.OrderCancelRequest(ctx, s.store, clOrdID, origClOrdID)
	if err != nil {
		s.log.Error("session: OrderCancelRequest failed", zap.Error(err))
		return nil
	}
	if reject != nil {
		s.emit(buildCancelReject(reject))
		return nil
	}
	s.emit(buildExecutionReport(clOrdID, origClOrdID, order, exec))
	return nil
}

func (s *Session) handleOrderCancelReplaceRequest(ctx context.Context, msg *fix.Message) error {
	newClOrdID, _ := msg.Get(fix.TagClOrdID)
	origClOrdID, _ := msg.Get(fix.TagOrigClOrdID)
	qtyV, _ := msg.Get(fix.TagOrderQty)
	priceV, _ := msg.Get(fix.TagPrice)

	in := statemachine.ReplaceInput{
		NewClOrdID:  newClOrdID,
		OrigClOrdID: origClOrdID,
		Quantity:    parseDecimal(qtyV),
		LimitPrice:  parseDecimal(priceV),
	}

	order, exec, reject, err := statemachine.OrderCancelReplaceRequest(ctx, s.store, in)
	if err != nil {
		s.log.Error("session: OrderCancelReplaceRequest failed", zap.Error(err))
		return nil
	}
	if reject != nil {
		s.emit(buildCancelReject(reject))
		return nil
	}
	s.emit(buildExecutionReport(order.ClOrdID, order.OrigClOrdID, order, exec))
	return nil
}

// emit is the single serialized outbound path: every report, heartbeat,
// and logon echo passes through it so MsgSeqNum stays strictly
// monotonic (spec §5).
func (s *Session) emit(b *fix.Builder) {
	b.Set(fix.TagSenderCompID, s.cfg.ServerCompID)
	b.Set(fix.TagTargetCompID, s.senderCompID)

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	b.Set(fix.TagMsgSeqNum, strconv.FormatUint(s.nextOut.Add(1)-1, 10))
	b.Set(fix.TagSendingTime, sendingTime(time.Now()))
	raw := b.Build()

	if _, err := s.writer.Write(raw); err != nil {
		s.log.Warn("session: write failed", zap.Error(err))
		return
	}
	if err := s.writer.Flush(); err != nil {
		s.log.Warn("session: flush failed", zap.Error(err))
		return
	}
	s.lastSendAt.Store(time.Now())
	logging.Send(s.log, s.senderCompID, raw)
}

func (s *Session) sendLogout(text string) {
	b := fix.NewBuilder(fix.MsgLogout)
	if text != "" {
		b.Set(fix.TagText, text)
	}
	s.emit(b)
}

// SendExecutionReport implements port.Emitter for the dispatcher (C5).
func (s *Session) SendExecutionReport(o *domain.Order, e *domain.Execution) error {
	s.emit(buildExecutionReport(o.ClOrdID, o.OrigClOrdID, o, e))
	return nil
}

// SendCancelReject implements port.Emitter.
func (s *Session) SendCancelReject(clOrdID, origClOrdID, cxlRejReason, text string) error {
	s.emit(buildCancelReject(&statemachine.CancelReject{
		ClOrdID: clOrdID, OrigClOrdID: origClOrdID, CxlRejReason: cxlRejReason, Text: text,
	}))
	return nil
}

func (s *Session) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if s.State() == Closed {
				return
			}
			last := s.lastRecvAt.Load().(time.Time)
			interval := s.heartbeatIntervalS
			if interval == 0 {
				interval = s.defaultHeartbeatS()
			}
			idleTimeout := time.Duration(float64(interval) * s.cfg.IdleTimeoutMultiplier * float64(time.Second))
			if time.Since(last) > idleTimeout {
				s.log.Info("session: idle timeout", zap.String("sender_comp_id", s.senderCompID))
				s.sendLogout("idle timeout")
				s.state.Store(int32(Closed))
				_ = s.conn.Close() // unblocks Serve's read so it tears the session down
				return
			}
			lastSend := s.lastSendAt.Load().(time.Time)
			if s.State() == LoggedIn && time.Since(lastSend) >= time.Duration(interval)*time.Second {
				s.emit(fix.NewBuilder(fix.MsgHeartbeat))
			}
		}
	}
}

func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.senderCompID != "" {
			s.reg.Release(s.senderCompID, s)
		}
		s.state.Store(int32(Closed))
		_ = s.conn.Close()
	})
}

func sideFromTag(v string) domain.Side {
	if v == fix.SideSell {
		return domain.Sell
	}
	return domain.Buy
}

func orderTypeFromTag(v string) domain.OrderType {
	switch v {
	case fix.OrdTypeLimit:
		return domain.Limit
	case fix.OrdTypeStop:
		return domain.Stop
	case fix.OrdTypeStopLimit:
		return domain.StopLimit
	default:
		return domain.Market
	}
}

func tifFromTag(v string) domain.TimeInForce {
	switch v {
	case fix.TIFGTC:
		return domain.TIFGTC
	case fix.TIFIOC:
		return domain.TIFIOC
	case fix.TIFFOK:
		return domain.TIFFOK
	default:
		return domain.TIFDay
	}
}
