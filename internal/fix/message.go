package fix

import (
	"bytes"
	"fmt"
)

// SOH is the FIX field delimiter, ASCII 0x01.
const SOH = byte(0x01)

// Field is one tag=value pair in wire order.
type Field struct {
	Tag   Tag
	Value string
}

// Message is an ordered list of fields with a tag index for lookup.
// Order matters for encoding (BeginString/BodyLength must lead,
// CheckSum must trail) but callers mostly want indexed Get/Set.
type Message struct {
	Fields []Field
	index  map[Tag]int
}

// NewMessage returns an empty message ready for Set calls.
func NewMessage() *Message {
	return &Message{index: make(map[Tag]int)}
}

// Set appends or overwrites the field for tag.
func (m *Message) Set(tag Tag, value string) {
	if m.index == nil {
		m.index = make(map[Tag]int)
	}
	if i, ok := m.index[tag]; ok {
		m.Fields[i].Value = value
		return
	}
	m.index[tag] = len(m.Fields)
	m.Fields = append(m.Fields, Field{Tag: tag, Value: value})
}

// Get returns the field value and whether the tag was present.
func (m *Message) Get(tag Tag) (string, bool) {
	i, ok := m.index[tag]
	if !ok {
		return "", false
	}
	return m.Fields[i].Value, true
}

// MsgType is a convenience accessor for tag 35.
func (m *Message) MsgType() MsgType {
	v, _ := m.Get(TagMsgType)
	return MsgType(v)
}

// String renders the message as tag=value pairs separated by "|" for
// logging; it is not wire format (that is Builder's job).
func (m *Message) String() string {
	var b bytes.Buffer
	for i, f := range m.Fields {
		if i > 0 {
			b.WriteByte('|')
		}
		fmt.Fprintf(&b, "%d=%s", f.Tag, f.Value)
	}
	return b.String()
}
