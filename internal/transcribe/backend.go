// Package transcribe turns a persisted recording into text. A Worker runs
// each request on its own goroutine through a small state machine
// (prepare → optionally reformat → recognize → cleanup) and delivers exactly
// one Result per request on a one-shot channel.
package transcribe

import (
	"context"
	"errors"
	"fmt"
)

// FailureTag prefixes every synthetic error message this package emits so
// the UI can never mistake one for transcript content. Recognized text is
// passed through untouched and is never built from worker messages.
const FailureTag = "[transcribe:error]"

// ResultKind discriminates the outcome sum type.
type ResultKind int

const (
	KindSuccess ResultKind = iota
	KindEmpty              // backend understood the audio but heard nothing
	KindError
)

func (k ResultKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindEmpty:
		return "empty"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrorKind classifies terminal failures for the UI layer.
type ErrorKind string

const (
	MissingSource     ErrorKind = "missing_source"
	UnsupportedFormat ErrorKind = "unsupported_format"
	NetworkError      ErrorKind = "network_error"
	BackendError      ErrorKind = "backend_error"
)

// Classification sentinels. Backends wrap their failures with one of these
// so the worker can decide between retry, Empty, and the terminal kinds.
var (
	// ErrFormat marks a format/decoding fault. For the cloud backend it
	// triggers exactly one reformat-and-retry.
	ErrFormat = errors.New("audio format rejected")
	// ErrNoSpeech marks audio the backend understood but found no speech
	// in. Not an error outcome: it maps to Empty.
	ErrNoSpeech = errors.New("no speech recognized")
	// ErrNetwork marks transport, auth, and quota failures of the cloud
	// service. Never retried.
	ErrNetwork = errors.New("speech service unreachable")
)

// Request describes one transcription. Immutable once constructed, consumed
// exactly once.
type Request struct {
	ID         string
	SourcePath string
	Model      string
	Language   string
}

// Result is the terminal outcome of one request.
type Result struct {
	RequestID string
	Kind      ResultKind
	Text      string    // KindSuccess only
	ErrKind   ErrorKind // KindError only
	Err       error     // KindError only
}

// Message renders the result for display. Failure messages always carry
// FailureTag; success text never does by construction.
func (r Result) Message() string {
	switch r.Kind {
	case KindSuccess:
		return r.Text
	case KindEmpty:
		return FailureTag + " no speech detected, try recording again"
	default:
		return fmt.Sprintf("%s %s: %v", FailureTag, r.ErrKind, r.Err)
	}
}

func success(id, text string) Result {
	return Result{RequestID: id, Kind: KindSuccess, Text: text}
}

func empty(id string) Result {
	return Result{RequestID: id, Kind: KindEmpty}
}

func failure(id string, kind ErrorKind, err error) Result {
	return Result{RequestID: id, Kind: KindError, ErrKind: kind, Err: err}
}

// Backend is a pluggable speech recognizer working on WAV files.
type Backend interface {
	Name() string
	// RequiresCanonicalInput reports whether input must be reformatted to
	// 16 kHz mono 16-bit before Recognize is called.
	RequiresCanonicalInput() bool
	// Recognize returns the transcript text. An empty string means the
	// backend produced no content. Failures are wrapped with the
	// classification sentinels above where applicable.
	Recognize(ctx context.Context, wavPath, language string) (string, error)
}

// ModelSelector is implemented by backends whose model can be switched per
// request.
type ModelSelector interface {
	SetModel(id string) error
}
