package playback

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSeekTarget is returned for seek times that are not finite numbers
	ErrInvalidSeekTarget = errors.New("invalid seek target")
	// ErrUnsupportedPIP is reported when picture-in-picture cannot be entered right now
	ErrUnsupportedPIP = errors.New("picture-in-picture not supported")
	// ErrEngineNotAttached is reported for engine commands issued before an engine is available
	ErrEngineNotAttached = errors.New("engine not attached")
	// ErrSessionClosed is reported for intents posted after the session stopped
	ErrSessionClosed = errors.New("session closed")
	// ErrUnknownQuality is reported when selecting a quality the engine never advertised
	ErrUnknownQuality = errors.New("unknown quality option")
)

// ErrorKind is the closed set of engine failure categories.  Engines classify their own failures so that the session
// never has to match on free text.
type ErrorKind uint8

const (
	ErrorKindUnknown ErrorKind = iota
	ErrorKindSource
	ErrorKindTimeout
	ErrorKindDecoder
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindSource:
		return "source"
	case ErrorKindTimeout:
		return "timeout"
	case ErrorKindDecoder:
		return "decoder"
	default:
		return "unknown"
	}
}

// ClassifyErrorString maps the error tags used by text-only engines onto an ErrorKind
func ClassifyErrorString(tag string) ErrorKind {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "source error", "source_error":
		return ErrorKindSource
	case "timeout":
		return ErrorKindTimeout
	case "decoder error", "decoder_error":
		return ErrorKindDecoder
	default:
		return ErrorKindUnknown
	}
}

// EngineError is a failure reported asynchronously by the engine
type EngineError struct {
	Kind      ErrorKind
	Message   string
	Exception string
}

func (e EngineError) Error() string {
	if e.Exception != "" {
		return fmt.Sprintf("engine %s error: %s (%s)", e.Kind, e.Message, e.Exception)
	}
	return fmt.Sprintf("engine %s error: %s", e.Kind, e.Message)
}

// SeekError wraps a failure of one seek sequence
type SeekError struct {
	Target float64
	Err    error
}

func (e *SeekError) Error() string {
	return fmt.Sprintf("seek to %.3fs failed: %v", e.Target, e.Err)
}

func (e *SeekError) Unwrap() error {
	return e.Err
}
