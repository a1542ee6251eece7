package s3o

import "fmt"

// FormatError reports a malformed .s3o buffer: bad magic or version,
// or a count/offset pair that dereferences outside the file. Decode
// never returns a partial model alongside one.
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return e.Message
}

func newFormatErrorf(format string, args ...interface{}) error {
	return &FormatError{Message: fmt.Sprintf(format, args...)}
}

// UnsupportedFeatureError reports structurally valid content this tool
// does not implement (currently only extended collision data). Kept
// distinct from FormatError so callers can message "unsupported"
// instead of "corrupt".
type UnsupportedFeatureError struct {
	Message string
}

func (e *UnsupportedFeatureError) Error() string {
	return e.Message
}
