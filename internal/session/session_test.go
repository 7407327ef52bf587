package session

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brokerfix/acceptor/internal/fix"
	"github.com/brokerfix/acceptor/internal/store"
)

func logonFrame(senderCompID string, heartBtInt int) []byte {
	b := fix.NewBuilder(fix.MsgLogon)
	b.Set(fix.TagSenderCompID, senderCompID)
	b.Set(fix.TagTargetCompID, "BROKER")
	b.Set(fix.TagMsgSeqNum, "1")
	b.Set(fix.TagEncryptMethod, "0")
	b.Set(fix.TagHeartBtInt, strconv.Itoa(heartBtInt))
	return b.Build()
}

// TestLogonThenNewOrderSingle drives S1's Logon + NewOrderSingle leg
// over a real wire-framed connection, end to end through session,
// statemachine, and the memory store.
func TestLogonThenNewOrderSingle(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	s := store.NewMemStore()
	reg := NewRegistry()
	log := zap.NewNop()
	sess := New(serverConn, Config{ServerCompID: "BROKER", IdleTimeoutMultiplier: 2.4}, s, reg, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Serve(ctx)

	_, err := clientConn.Write(logonFrame("TEST_CLIENT", 30))
	require.NoError(t, err)

	clientReader := bufio.NewReader(clientConn)
	parser := fix.NewParser(clientReader)

	logonEcho, _, err := parser.Next()
	require.NoError(t, err)
	require.Equal(t, fix.MsgLogon, logonEcho.MsgType())

	orderBuilder := fix.NewBuilder(fix.MsgNewOrderSingle)
	orderBuilder.Set(fix.TagSenderCompID, "TEST_CLIENT")
	orderBuilder.Set(fix.TagTargetCompID, "BROKER")
	orderBuilder.Set(fix.TagMsgSeqNum, "2")
	orderBuilder.Set(fix.TagClOrdID, "EXEC_TEST_001")
	orderBuilder.Set(fix.TagSymbol, "AAPL")
	orderBuilder.Set(fix.TagSide, fix.SideBuy)
	orderBuilder.Set(fix.TagOrderQty, "100")
	orderBuilder.Set(fix.TagOrdType, fix.OrdTypeMarket)
	orderBuilder.Set(fix.TagTimeInForce, fix.TIFDay)

	done := make(chan struct{})
	go func() {
		_, _ = clientConn.Write(orderBuilder.Build())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out writing NewOrderSingle")
	}

	report, _, err := parser.Next()
	require.NoError(t, err)
	require.Equal(t, fix.MsgExecutionReport, report.MsgType())

	execType, _ := report.Get(fix.TagExecType)
	ordStatus, _ := report.Get(fix.TagOrdStatus)
	leavesQty, _ := report.Get(fix.TagLeavesQty)
	require.Equal(t, "0", execType)
	require.Equal(t, "0", ordStatus)
	require.Equal(t, "100", leavesQty)
}
