package fix

import (
	"bytes"
	"fmt"
)

// BeginString is the only FIX version this acceptor speaks.
const BeginString = "FIX.4.2"

// Builder assembles outbound messages field by field, then encodes them
// with a correct BodyLength(9) and CheckSum(10) on Build, mirroring the
// framing Parser.Next validates on the way in.
type Builder struct {
	msgType MsgType
	fields  []Field
}

// NewBuilder starts a message of the given type. Header fields
// (SenderCompID, TargetCompID, MsgSeqNum, SendingTime) are added via Set
// like any other field; BeginString/BodyLength/MsgType/CheckSum are
// supplied by Build.
func NewBuilder(msgType MsgType) *Builder {
	return &Builder{msgType: msgType}
}

// Set appends a body field in the order it should appear on the wire.
func (b *Builder) Set(tag Tag, value string) *Builder {
	b.fields = append(b.fields, Field{Tag: tag, Value: value})
	return b
}

// Build renders the framed, checksum-valid wire bytes.
func (b *Builder) Build() []byte {
	var body bytes.Buffer
	fmt.Fprintf(&body, "%d=%s", TagMsgType, b.msgType)
	body.WriteByte(SOH)
	for _, f := range b.fields {
		fmt.Fprintf(&body, "%d=%s", f.Tag, f.Value)
		body.WriteByte(SOH)
	}

	var head bytes.Buffer
	fmt.Fprintf(&head, "%d=%s", TagBeginString, BeginString)
	head.WriteByte(SOH)
	fmt.Fprintf(&head, "%d=%d", TagBodyLength, body.Len())
	head.WriteByte(SOH)

	var frame bytes.Buffer
	frame.Write(head.Bytes())
	frame.Write(body.Bytes())

	sum := 0
	for _, c := range frame.Bytes() {
		sum += int(c)
	}
	fmt.Fprintf(&frame, "%d=%s", TagCheckSum, fmtChecksum(sum%256))
	frame.WriteByte(SOH)

	return frame.Bytes()
}
