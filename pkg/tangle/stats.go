package tangle

import "math"

// AvgInRefs returns the mean number of approvals per transaction: the sum of
// all out-degrees divided by the transaction count (origin included).
func (t *Tangle) AvgInRefs() float64 {
	var sum int
	t.walkBFS(func(i int) { sum += len(t.children[i]) })
	return float64(sum) / float64(t.Len())
}

// AvgDepth returns the mean of [Tangle.Depths] over all transactions,
// origin included.
func (t *Tangle) AvgDepth() float64 {
	var sum int
	for _, d := range t.MustDepths() {
		sum += d
	}
	return float64(sum) / float64(t.Len())
}

// AvgTxsDepth returns the average number of transactions per depth level,
// not counting depth 0: (Len()-1) / MaxDepth(). It returns NaN when the
// tangle holds only the origin, as there is no level to divide by.
func (t *Tangle) AvgTxsDepth() float64 {
	if t.Len() == 1 {
		return math.NaN()
	}
	return float64(t.Len()-1) / float64(t.MaxDepth())
}

// TotalTips returns the number of transactions nothing approves yet.
// The result is always at least 1; a lone origin is its own tip.
func (t *Tangle) TotalTips() int {
	var tips int
	t.walkBFS(func(i int) {
		if len(t.children[i]) == 0 {
			tips++
		}
	})
	return tips
}

// Tips returns the indices of all tips in breadth-first order from the origin.
func (t *Tangle) Tips() []int {
	var tips []int
	t.walkBFS(func(i int) {
		if len(t.children[i]) == 0 {
			tips = append(tips, i)
		}
	})
	return tips
}

// walkBFS calls visit once per transaction reachable from the origin, in
// breadth-first order.
func (t *Tangle) walkBFS(visit func(i int)) {
	seen := make([]bool, t.Len())
	seen[0] = true
	queue := []int{0}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		visit(v)
		for _, c := range t.children[v] {
			if !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}
}
