package tangle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyInput is returned by [Parse] when the stream holds no bytes at all.
	ErrEmptyInput = errors.New("input is empty")

	// ErrInvalidCount is returned by [Parse] when the first line is not an
	// unsigned integer transaction count.
	ErrInvalidCount = errors.New("transaction count is not an unsigned integer")

	// ErrTokenCount is returned by [Parse] when a record does not have exactly
	// three space-separated fields.
	ErrTokenCount = errors.New("record must have exactly 3 fields")

	// ErrInvalidToken is returned by [Parse] when a record field is not an
	// unsigned integer.
	ErrInvalidToken = errors.New("field is not an unsigned integer")

	// ErrZeroParent is returned by [Parse] when a parent reference is 0.
	// Parent references are 1-based positions, the origin being position 1.
	ErrZeroParent = errors.New("parent must be > 0")

	// ErrParentOutOfRange is returned by [Parse] when a parent reference
	// points past the last declared transaction.
	ErrParentOutOfRange = errors.New("parent out of range")

	// ErrTruncated is returned by [Parse] when the stream ends before the
	// declared number of records has been read.
	ErrTruncated = errors.New("fewer records than declared")

	// ErrTrailingData is returned by [Parse] when content follows the last
	// declared record.
	ErrTrailingData = errors.New("unexpected data after last record")

	// ErrWouldCycle is wrapped by [CycleError]. Use errors.Is to match any
	// cycle rejection regardless of side.
	ErrWouldCycle = errors.New("edge would create a cycle")

	// ErrUnreachable is returned by [Tangle.Depths] when a transaction has no
	// path from the origin. A tangle built by Parse never triggers it, so
	// seeing it indicates a bug rather than bad input.
	ErrUnreachable = errors.New("transaction unreachable from origin")
)

// FormatError describes malformed input, identifying the offending line and
// field where possible. It wraps one of the Err* sentinels of this package.
type FormatError struct {
	Line   int    // 1-based line in the input; 0 if not line specific
	Field  string // e.g. "left parent"; empty if not field specific
	Detail string // optional extra context such as the rejected token
	Err    error
}

func (e *FormatError) Error() string {
	var parts []string
	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("line %d", e.Line))
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Err.Error())
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	return strings.Join(parts, ": ")
}

func (e *FormatError) Unwrap() error { return e.Err }

// Side names one of the two parent slots of a record.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// CycleError is returned by [Parse] when honoring a parent reference would
// make the graph cyclic. Parent and Child are 1-based positions counting the
// origin as position 1, the same numbering the input uses for parents.
type CycleError struct {
	Side   Side
	Parent int
	Child  int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("adding %s parent %d to transaction %d would create a cycle", e.Side, e.Parent, e.Child)
}

func (e *CycleError) Unwrap() error { return ErrWouldCycle }
