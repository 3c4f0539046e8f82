package tangle

// IsBipartite reports whether the tangle, with edge directions ignored,
// admits a proper two-coloring.
//
// Coloring is breadth-first from the origin. Any transaction the walk does
// not reach starts a new component; for tangles built by [Parse] everything
// is reached from the origin in a single pass.
func (t *Tangle) IsBipartite() bool {
	const uncolored = -1

	color := make([]int, t.Len())
	for i := range color {
		color[i] = uncolored
	}

	for start := range color {
		if color[start] != uncolored {
			continue
		}
		color[start] = 0
		queue := []int{start}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, nbrs := range [2][]int{t.children[v], t.parents[v]} {
				for _, u := range nbrs {
					switch color[u] {
					case uncolored:
						color[u] = 1 - color[v]
						queue = append(queue, u)
					case color[v]:
						return false
					}
				}
			}
		}
	}
	return true
}
