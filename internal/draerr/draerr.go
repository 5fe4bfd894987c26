// Package draerr defines the error taxonomy shared by every codec package.
package draerr

import "errors"

// Sentinel error kinds. Every error surfaced across a package boundary
// wraps exactly one of these via errors.Is.
var (
	// There is no sentinel for "ok": success is a nil error.
	ErrDraco               = errors.New("draco: structural invariant violated")
	ErrIO                  = errors.New("draco: io error")
	ErrInvalidParameter    = errors.New("draco: invalid parameter")
	ErrUnsupportedVersion  = errors.New("draco: unsupported version")
	ErrUnknownVersion      = errors.New("draco: unknown version")
	ErrUnsupportedFeature  = errors.New("draco: unsupported feature")
)

// Error is a typed wrapper that attaches an operation name to one of the
// sentinel kinds above while preserving the underlying cause for errors.As.
type Error struct {
	Op   string // e.g. "edgebreaker.Decode", "rans.SymbolCoder.Decode"
	Kind error  // one of the Err* sentinels
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is reports whether target matches the error's Kind sentinel.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// Wrap builds an *Error for op/kind, optionally wrapping cause.
func Wrap(op string, kind error, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

// IOErrorf builds an io-error for op, wrapping cause (which may be nil).
func IOErrorf(op string, cause error) *Error {
	return Wrap(op, ErrIO, cause)
}

// DracoErrorf builds a draco-error (structural invariant violation) for op.
func DracoErrorf(op string, cause error) *Error {
	return Wrap(op, ErrDraco, cause)
}
