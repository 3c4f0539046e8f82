package tangle

import "slices"

// Transaction is a node of the tangle.
//
// Transactions are identified by their Index, assigned in creation order
// (0-based, equal to file order). Index 0 is the origin, which never carries a
// timestamp and has no parents.
type Transaction struct {
	Index int // Position in creation order (0 = origin)

	// Timestamp is only meaningful when HasTimestamp is true.
	Timestamp    uint64
	HasTimestamp bool
}

// IsOrigin reports whether the transaction is the synthetic genesis node.
func (tx Transaction) IsOrigin() bool { return tx.Index == 0 }

// Time returns the timestamp and whether one was set.
func (tx Transaction) Time() (uint64, bool) { return tx.Timestamp, tx.HasTimestamp }

// Tangle is an immutable DAG of transactions where every non-origin
// transaction is approved by exactly two parent edges (parent -> child).
//
// Nodes are addressed by index only. A Tangle is produced by [Parse] and is
// never modified afterwards, so it is safe for concurrent reads.
type Tangle struct {
	txs      []Transaction
	children [][]int // index -> approving transactions, in insertion order
	parents  [][]int // index -> approved transactions, in insertion order
	edges    int

	// forward holds, while parsing, the children of transactions whose
	// record has not been read yet.
	forward map[int][]int
}

// newTangle allocates the origin plus n transactions without timestamps.
func newTangle(n int) *Tangle {
	t := &Tangle{
		txs:      make([]Transaction, n+1),
		children: make([][]int, n+1),
		parents:  make([][]int, n+1),
	}
	for i := range t.txs {
		t.txs[i].Index = i
	}
	return t
}

// appendTx adds the next transaction and adopts any children recorded for
// it before it existed. It returns the new index.
func (t *Tangle) appendTx() int {
	i := len(t.txs)
	t.txs = append(t.txs, Transaction{Index: i})
	t.children = append(t.children, t.forward[i])
	t.parents = append(t.parents, nil)
	delete(t.forward, i)
	return i
}

// Len returns the number of transactions, origin included.
func (t *Tangle) Len() int { return len(t.txs) }

// EdgeCount returns the number of approval edges. Parallel edges count twice.
func (t *Tangle) EdgeCount() int { return t.edges }

// Origin returns the genesis transaction.
func (t *Tangle) Origin() Transaction { return t.txs[0] }

// Transaction returns the transaction at index i, or false if i is out of range.
func (t *Tangle) Transaction(i int) (Transaction, bool) {
	if !t.valid(i) {
		return Transaction{}, false
	}
	return t.txs[i], true
}

// Transactions returns a copy of all transactions in index order.
func (t *Tangle) Transactions() []Transaction { return slices.Clone(t.txs) }

// Children returns the indices of transactions approving i (its outgoing
// edges). The result is a copy; nil if i has no children or is out of range.
func (t *Tangle) Children(i int) []int {
	if !t.valid(i) {
		return nil
	}
	return slices.Clone(t.children[i])
}

// Parents returns the indices of transactions approved by i (its incoming
// edges). The result is a copy; nil for the origin or an out-of-range index.
func (t *Tangle) Parents(i int) []int {
	if !t.valid(i) {
		return nil
	}
	return slices.Clone(t.parents[i])
}

// OutDegree returns how many times i was approved. Returns 0 if i is out of range.
func (t *Tangle) OutDegree(i int) int {
	if !t.valid(i) {
		return 0
	}
	return len(t.children[i])
}

// InDegree returns the number of parent edges of i. Returns 0 if i is out of range.
func (t *Tangle) InDegree(i int) int {
	if !t.valid(i) {
		return 0
	}
	return len(t.parents[i])
}

// IsTip reports whether nothing approves i yet.
func (t *Tangle) IsTip(i int) bool { return t.valid(i) && len(t.children[i]) == 0 }

func (t *Tangle) valid(i int) bool { return i >= 0 && i < len(t.txs) }

// addEdge inserts parent -> child, refusing edges that would close a cycle.
// A parent that does not exist yet has no incoming edges, so nothing can
// reach it; its children are kept in forward until appendTx creates it.
func (t *Tangle) addEdge(parent, child int) error {
	if parent >= len(t.txs) {
		if t.forward == nil {
			t.forward = make(map[int][]int)
		}
		t.forward[parent] = append(t.forward[parent], child)
		t.parents[child] = append(t.parents[child], parent)
		t.edges++
		return nil
	}
	if t.reaches(child, parent) {
		return ErrWouldCycle
	}
	t.children[parent] = append(t.children[parent], child)
	t.parents[child] = append(t.parents[child], parent)
	t.edges++
	return nil
}

// reaches reports whether to is reachable from from along edge direction.
// A node always reaches itself.
func (t *Tangle) reaches(from, to int) bool {
	if from == to {
		return true
	}
	seen := make(map[int]bool)
	stack := []int{from}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range t.children[v] {
			if c == to {
				return true
			}
			if !seen[c] {
				seen[c] = true
				stack = append(stack, c)
			}
		}
	}
	return false
}
