package scanner

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientHistory marks a symbol with too few bars to score. It is a
	// skip, never a scan failure.
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrMissingCredential   = errors.New("missing market data credential")
	ErrEmptyUniverse       = errors.New("instrument universe is empty")
	ErrUnknownMode         = errors.New("unknown scan mode")
)

// FetchError wraps a bar source failure for one symbol.
type FetchError struct {
	Symbol        string
	InstrumentKey string
	Err           error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.Symbol, e.InstrumentKey, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ComputeError wraps an unexpected fault while computing or scoring a symbol,
// including recovered panics and non-finite indicator values.
type ComputeError struct {
	Symbol string
	Err    error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("compute %s: %v", e.Symbol, e.Err)
}

func (e *ComputeError) Unwrap() error { return e.Err }
