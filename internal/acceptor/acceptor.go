// Package acceptor implements component C6: the TCP listen socket,
// per-connection session fan-out, the global session cap, and graceful
// shutdown with a logout grace period.
package acceptor

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/brokerfix/acceptor/internal/port"
	"github.com/brokerfix/acceptor/internal/session"
)

// Acceptor binds the configured TCP port and spawns a session.Session
// per accepted connection.
type Acceptor struct {
	host         string
	port         int
	maxSessions  int // 0 means unbounded
	sessionCfg   session.Config
	store        port.OrderStore
	registry     *session.Registry
	log          *zap.Logger

	listener net.Listener
	wg       sync.WaitGroup
	mu       sync.Mutex
	shutdown bool
}

func New(host string, tcpPort, maxSessions int, sessionCfg session.Config, store port.OrderStore, registry *session.Registry, log *zap.Logger) *Acceptor {
	return &Acceptor{
		host: host, port: tcpPort, maxSessions: maxSessions,
		sessionCfg: sessionCfg, store: store, registry: registry, log: log,
	}
}

// ListenAndServe binds the listen socket and accepts connections until
// ctx is canceled.
func (a *Acceptor) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", a.host, a.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("acceptor: listen %s: %w", addr, err)
	}
	a.listener = ln
	a.log.Info("acceptor: listening", zap.String("addr", addr))

	go func() {
		<-ctx.Done()
		a.mu.Lock()
		a.shutdown = true
		a.mu.Unlock()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			a.mu.Lock()
			down := a.shutdown
			a.mu.Unlock()
			if down {
				a.log.Info("acceptor: shutting down, waiting for sessions to drain")
				a.wg.Wait()
				return nil
			}
			a.log.Warn("acceptor: accept error", zap.Error(err))
			continue
		}

		if a.maxSessions > 0 && a.registry.Count() >= a.maxSessions {
			a.log.Warn("acceptor: session cap reached, refusing connection", zap.String("remote", conn.RemoteAddr().String()))
			_ = conn.Close()
			continue
		}

		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			s := session.New(conn, a.sessionCfg, a.store, a.registry, a.log)
			s.Serve(ctx)
		}()
	}
}

// Shutdown gives in-flight sessions grace before returning, so clients
// in the middle of a Logout handshake can finish (spec §4.6).
func (a *Acceptor) Shutdown(grace time.Duration) {
	a.mu.Lock()
	a.shutdown = true
	a.mu.Unlock()
	if a.listener != nil {
		_ = a.listener.Close()
	}
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
		a.log.Warn("acceptor: shutdown grace period elapsed with sessions still open")
	}
}
