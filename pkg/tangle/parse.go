package tangle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
)

// maxTransactions bounds the declared count so indices fit in 32 bits.
const maxTransactions = math.MaxInt32 - 1

// preallocLimit caps the capacity reserved up front from the declared count.
// Storage beyond it grows with the records actually read.
const preallocLimit = 1 << 16

// Parse reads a tangle description from r and returns the validated graph.
//
// The format is line oriented:
//
//	<n>
//	<left_parent_1> <right_parent_1> <timestamp_1>
//	...
//	<left_parent_n> <right_parent_n> <timestamp_n>
//
// Parent values are 1-based positions where the implicit origin is position
// 1, so record k (node index k) naming parent p gets an edge from index p-1.
// Fields are separated by single spaces. Nothing may follow the last record,
// not even an empty line.
//
// Parse returns a [*FormatError] for malformed input and a [*CycleError]
// when a parent reference would close a cycle. Read failures from r are
// returned wrapped. No partial tangle is returned on error. Parse does not
// close r.
func Parse(r io.Reader) (*Tangle, error) {
	lr := &lineReader{r: bufio.NewReader(r)}

	first, ok, err := lr.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &FormatError{Err: ErrEmptyInput}
	}
	n, err := parseUint(strings.TrimSpace(first))
	if err != nil {
		return nil, &FormatError{Line: lr.line, Err: ErrInvalidCount, Detail: strconv.Quote(strings.TrimSpace(first))}
	}
	if n > maxTransactions {
		return nil, &FormatError{Line: lr.line, Err: ErrInvalidCount, Detail: fmt.Sprintf("%d exceeds %d", n, maxTransactions)}
	}

	size := int(n) + 1
	t := newTangle(0)
	hint := min(size, preallocLimit)
	t.txs = slices.Grow(t.txs, hint)
	t.children = slices.Grow(t.children, hint)
	t.parents = slices.Grow(t.parents, hint)

	for k := 1; k <= int(n); k++ {
		line, ok, err := lr.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &FormatError{Err: ErrTruncated, Detail: fmt.Sprintf("expected %d, found %d", n, k-1)}
		}
		rec, err := parseRecord(line, lr.line, size)
		if err != nil {
			return nil, err
		}

		t.appendTx()
		t.txs[k].Timestamp = rec.timestamp
		t.txs[k].HasTimestamp = true

		if err := t.addEdge(rec.left-1, k); err != nil {
			return nil, &CycleError{Side: SideLeft, Parent: rec.left, Child: k + 1}
		}
		if err := t.addEdge(rec.right-1, k); err != nil {
			return nil, &CycleError{Side: SideRight, Parent: rec.right, Child: k + 1}
		}
	}
	t.forward = nil

	// Any further line, blank or not, is trailing data.
	if _, ok, err := lr.next(); err != nil {
		return nil, err
	} else if ok {
		return nil, &FormatError{Line: lr.line, Err: ErrTrailingData, Detail: fmt.Sprintf("expected %d records only", n)}
	}

	return t, nil
}

// ParseFile opens the file at path and parses it with [Parse].
// Open failures are returned wrapping the underlying *fs.PathError.
func ParseFile(path string) (*Tangle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

type record struct {
	left, right int
	timestamp   uint64
}

var fieldNames = [3]string{"left parent", "right parent", "timestamp"}

// parseRecord parses one "<left> <right> <timestamp>" line. size is the
// number of transactions (origin included) that parents may refer to.
func parseRecord(line string, lineNo, size int) (record, error) {
	tokens := strings.Split(strings.TrimSpace(line), " ")
	if len(tokens) != 3 {
		return record{}, &FormatError{Line: lineNo, Err: ErrTokenCount, Detail: fmt.Sprintf("got %d", len(tokens))}
	}

	var vals [3]uint64
	for i, tok := range tokens {
		v, err := parseUint(tok)
		if err != nil {
			return record{}, &FormatError{Line: lineNo, Field: fieldNames[i], Err: ErrInvalidToken, Detail: strconv.Quote(tok)}
		}
		vals[i] = v
	}

	for i := range 2 {
		switch {
		case vals[i] == 0:
			return record{}, &FormatError{Line: lineNo, Field: fieldNames[i], Err: ErrZeroParent}
		case vals[i] > uint64(size):
			return record{}, &FormatError{Line: lineNo, Field: fieldNames[i], Err: ErrParentOutOfRange,
				Detail: fmt.Sprintf("%d > %d", vals[i], size)}
		}
	}

	return record{left: int(vals[0]), right: int(vals[1]), timestamp: vals[2]}, nil
}

// parseUint parses a decimal unsigned integer. A single leading '+' is
// accepted, as in "+3".
func parseUint(s string) (uint64, error) {
	s, _ = strings.CutPrefix(s, "+")
	return strconv.ParseUint(s, 10, 64)
}

// lineReader yields lines with their 1-based numbers. Unlike bufio.Scanner it
// has no line length limit.
type lineReader struct {
	r    *bufio.Reader
	line int
}

// next returns the next line without its terminator. ok is false once the
// stream is exhausted.
func (lr *lineReader) next() (string, bool, error) {
	s, err := lr.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, fmt.Errorf("read line %d: %w", lr.line+1, err)
	}
	if s == "" {
		return "", false, nil
	}
	lr.line++
	return strings.TrimRight(s, "\r\n"), true, nil
}
