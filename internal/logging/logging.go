// Package logging constructs the acceptor's zap logger and the RECV/SEND
// wire trace helpers called out as cross-cutting concern C7.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger the way finalex's services/marketfeeds/common/logger
// package does: production config for deployed environments, a colorized
// development config otherwise.
func New(isProd bool) *zap.Logger {
	if isProd {
		return zap.Must(zap.NewProduction())
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zap.Must(cfg.Build())
}

// Recv logs an inbound FIX message at debug level, tagged with the session
// that produced it.
func Recv(log *zap.Logger, senderCompID string, raw []byte) {
	log.Debug("RECV", zap.String("sender_comp_id", senderCompID), zap.ByteString("msg", raw))
}

// Send logs an outbound FIX message at debug level.
func Send(log *zap.Logger, targetCompID string, raw []byte) {
	log.Debug("SEND", zap.String("target_comp_id", targetCompID), zap.ByteString("msg", raw))
}
