package fix

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParseRoundTrip(t *testing.T) {
	b := NewBuilder(MsgNewOrderSingle)
	b.Set(TagClOrdID, "EXEC_TEST_001")
	b.Set(TagSymbol, "AAPL")
	b.Set(TagSide, SideBuy)
	b.Set(TagOrderQty, "100")
	b.Set(TagOrdType, OrdTypeMarket)
	b.Set(TagTimeInForce, TIFDay)
	raw := b.Build()

	p := NewParser(bufio.NewReader(bytes.NewReader(raw)))
	msg, gotRaw, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, raw, gotRaw)

	clOrdID, ok := msg.Get(TagClOrdID)
	require.True(t, ok)
	assert.Equal(t, "EXEC_TEST_001", clOrdID)

	symbol, _ := msg.Get(TagSymbol)
	assert.Equal(t, "AAPL", symbol)
	assert.Equal(t, MsgNewOrderSingle, msg.MsgType())
}

func TestParseRejectsBadChecksum(t *testing.T) {
	b := NewBuilder(MsgHeartbeat)
	raw := b.Build()
	// corrupt the checksum digits just before the trailing SOH.
	corrupted := append([]byte{}, raw...)
	corrupted[len(corrupted)-2] = '9'

	p := NewParser(bufio.NewReader(bytes.NewReader(corrupted)))
	_, _, err := p.Next()
	require.Error(t, err)
	var fe *FramingError
	assert.ErrorAs(t, err, &fe)
}

func TestParseRejectsMissingBeginString(t *testing.T) {
	p := NewParser(bufio.NewReader(bytes.NewReader([]byte("35=0\x0110=000\x01"))))
	_, _, err := p.Next()
	require.Error(t, err)
}
