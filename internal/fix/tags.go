// Package fix implements the component C1 wire codec: a tag=value,
// SOH-delimited FIX 4.2 message type with framing-aware parsing and
// checksum/body-length computing encoding. It has no knowledge of
// sessions or orders; session.Session and statemachine own semantics.
package fix

// Tag is a FIX field number.
type Tag int

const (
	TagBeginString   Tag = 8
	TagBodyLength    Tag = 9
	TagMsgType       Tag = 35
	TagSenderCompID  Tag = 49
	TagTargetCompID  Tag = 56
	TagMsgSeqNum     Tag = 34
	TagSendingTime   Tag = 52
	TagCheckSum      Tag = 10
	TagEncryptMethod Tag = 98
	TagHeartBtInt    Tag = 108
	TagTestReqID     Tag = 112

	TagClOrdID     Tag = 11
	TagOrigClOrdID Tag = 41
	TagSymbol      Tag = 55
	TagSide        Tag = 54
	TagOrdType     Tag = 40
	TagPrice       Tag = 44
	TagOrderQty    Tag = 38
	TagTimeInForce Tag = 59

	TagExecID      Tag = 17
	TagExecType    Tag = 150
	TagOrdStatus   Tag = 39
	TagLastQty     Tag = 32
	TagLastPx      Tag = 31
	TagCumQty      Tag = 14
	TagAvgPx       Tag = 6
	TagLeavesQty   Tag = 151
	TagCxlRejReason Tag = 434
	TagText        Tag = 58
)

// MsgType is a FIX tag 35 value.
type MsgType string

const (
	MsgLogon                   MsgType = "A"
	MsgNewOrderSingle           MsgType = "D"
	MsgOrderCancelRequest       MsgType = "F"
	MsgOrderCancelReplaceRequest MsgType = "G"
	MsgHeartbeat                MsgType = "0"
	MsgTestRequest               MsgType = "1"
	MsgLogout                    MsgType = "5"
	MsgExecutionReport           MsgType = "8"
	MsgOrderCancelReject          MsgType = "9"
)

// Side mirrors tag 54.
const (
	SideBuy  = "1"
	SideSell = "2"
)

// OrdType mirrors tag 40.
const (
	OrdTypeMarket    = "1"
	OrdTypeLimit     = "2"
	OrdTypeStop      = "3"
	OrdTypeStopLimit = "4"
)

// TimeInForce mirrors tag 59.
const (
	TIFDay = "0"
	TIFGTC = "1"
	TIFIOC = "3"
	TIFFOK = "4"
)

// CxlRejReason mirrors tag 434.
const (
	CxlRejTooLate      = "0"
	CxlRejUnknownOrder = "1"
	CxlRejOther        = "99"
)
