package fix

import "fmt"

// FramingError reports a malformed or inconsistent message frame:
// missing BeginString/BodyLength, a BodyLength that does not match the
// trailing CheckSum offset, or a CheckSum mismatch. The session layer
// treats every FramingError as fatal to the connection (spec §5).
type FramingError struct {
	Reason string
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("fix: framing error: %s", e.Reason)
}

func framingError(format string, args ...any) *FramingError {
	return &FramingError{Reason: fmt.Sprintf(format, args...)}
}
