package tangle

import (
	"fmt"
	"slices"
)

// Depths returns the depth of every transaction, indexed by transaction index.
//
// Depths are assigned during a depth-first walk from the origin (depth 0):
// when a transaction is visited, each child that has no depth yet receives
// the visited transaction's depth + 1. The first assignment wins and is never
// revised, so a transaction with parents at different depths gets the depth
// along whichever path the walk discovers first. This is neither the shortest
// nor the longest path length in general.
//
// Returns an error wrapping [ErrUnreachable] if some transaction received no
// depth. That cannot happen for a tangle built by [Parse].
func (t *Tangle) Depths() ([]int, error) {
	n := t.Len()
	depths := make([]int, n)
	assigned := make([]bool, n)
	visited := make([]bool, n)
	assigned[0] = true

	stack := []int{0}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[v] {
			continue
		}
		visited[v] = true

		kids := t.children[v]
		for _, c := range kids {
			if !assigned[c] {
				depths[c] = depths[v] + 1
				assigned[c] = true
			}
		}
		// Push in reverse so children are walked in insertion order.
		for i := len(kids) - 1; i >= 0; i-- {
			if !visited[kids[i]] {
				stack = append(stack, kids[i])
			}
		}
	}

	if i := slices.Index(assigned, false); i >= 0 {
		return nil, fmt.Errorf("transaction %d: %w", i, ErrUnreachable)
	}
	return depths, nil
}

// MustDepths is like [Tangle.Depths] but panics on an internal consistency
// violation.
func (t *Tangle) MustDepths() []int {
	d, err := t.Depths()
	if err != nil {
		panic(err)
	}
	return d
}

// MaxDepth returns the greatest depth over all transactions (0 for a tangle
// holding only the origin).
func (t *Tangle) MaxDepth() int {
	return slices.Max(t.MustDepths())
}

// LevelWidths returns the number of transactions at each depth, indexed by
// depth. The origin is the only transaction at depth 0.
func (t *Tangle) LevelWidths() []int {
	depths := t.MustDepths()
	widths := make([]int, slices.Max(depths)+1)
	for _, d := range depths {
		widths[d]++
	}
	return widths
}
