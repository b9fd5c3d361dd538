package adder

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// ErrKind classifies a CodecError, mirroring the sentinel-error pattern
// codec/jpeg and protocol/rtmp use in the wider av package for the same
// purpose.
type ErrKind uint8

const (
	KindUninitializedStream ErrKind = iota
	KindEOF
	KindDeserialize
	KindBadFile
	KindWrongMagic
	KindSeek
	KindUnsupportedVersion
	KindPlaneError
	KindIO
)

func (k ErrKind) String() string {
	switch k {
	case KindUninitializedStream:
		return "uninitialized stream"
	case KindEOF:
		return "eof"
	case KindDeserialize:
		return "deserialize"
	case KindBadFile:
		return "bad file"
	case KindWrongMagic:
		return "wrong magic"
	case KindSeek:
		return "seek"
	case KindUnsupportedVersion:
		return "unsupported version"
	case KindPlaneError:
		return "plane error"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// CodecError is the error type the stream codecs return for failures.
// It carries a Kind for programmatic dispatch and wraps the underlying
// cause for logs, following the codec/jpeg convention of a small sentinel
// set plus pkg/errors wrapping rather than ad hoc string errors.
type CodecError struct {
	Kind  ErrKind
	cause error
}

func (e *CodecError) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.cause.Error()
}

func (e *CodecError) Unwrap() error { return e.cause }

// NewError builds a CodecError of the given kind wrapping cause.
func NewError(kind ErrKind, cause error) *CodecError {
	return &CodecError{Kind: kind, cause: cause}
}

// Sentinel errors, one per Kind, for errors.Is comparisons at call sites
// that don't need the wrapped cause.
var (
	ErrUninitializedStream = &CodecError{Kind: KindUninitializedStream}
	ErrEOF                 = &CodecError{Kind: KindEOF}
	ErrDeserialize          = &CodecError{Kind: KindDeserialize}
	ErrBadFile              = &CodecError{Kind: KindBadFile}
	ErrWrongMagic           = &CodecError{Kind: KindWrongMagic}
	ErrSeek                 = &CodecError{Kind: KindSeek}
	ErrUnsupportedVersion   = &CodecError{Kind: KindUnsupportedVersion}
	ErrPlane                = &CodecError{Kind: KindPlaneError}
	ErrIO                   = &CodecError{Kind: KindIO}
)

// Is allows errors.Is(err, ErrEOF) and friends to match any CodecError of
// the same Kind, regardless of wrapped cause.
func (e *CodecError) Is(target error) bool {
	var ce *CodecError
	if stderrors.As(target, &ce) {
		return ce.Kind == e.Kind
	}
	return false
}

// Wrap is a thin convenience over errors.Wrap for call sites that already
// have a Kind in hand (e.g. wrapping an io.Reader failure as KindIO).
func Wrap(kind ErrKind, cause error, msg string) error {
	return NewError(kind, errors.Wrap(cause, msg))
}
