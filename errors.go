package x3f

import "github.com/sigmaraw/x3fcore/internal/xerr"

// Re-exported so callers outside this module can switch on error kind
// without importing the internal package directly.
type Kind = xerr.Kind

const (
	MalformedHeader    = xerr.MalformedHeader
	UnsupportedSection = xerr.UnsupportedSection
	TruncatedStream    = xerr.TruncatedStream
	HuffmanDesync      = xerr.HuffmanDesync
	ShapeMismatch      = xerr.ShapeMismatch
	NotFound           = xerr.NotFound
	TypeMismatch       = xerr.TypeMismatch
	UnsupportedCamera  = xerr.UnsupportedCamera
	IoError            = xerr.IoError
)

// Is reports whether err is an x3f error of the given kind.
func Is(err error, kind Kind) bool { return xerr.Is(err, kind) }
