package tangle_test

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/tanglestat/pkg/tangle"
)

func ExampleParse() {
	input := "5\n1 1 0\n1 1 0\n2 3 1\n4 2 3\n4 3 2\n"
	g, err := tangle.Parse(strings.NewReader(input))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("Transactions:", g.Len())
	fmt.Println("Tips:", g.TotalTips())
	fmt.Printf("Avg depth: %.3f\n", g.AvgDepth())
	fmt.Printf("Avg txs per depth: %.1f\n", g.AvgTxsDepth())
	fmt.Printf("Avg approvals: %.3f\n", g.AvgInRefs())
	fmt.Println("Bipartite:", g.IsBipartite())
	// Output:
	// Transactions: 6
	// Tips: 2
	// Avg depth: 1.333
	// Avg txs per depth: 2.5
	// Avg approvals: 1.667
	// Bipartite: false
}

func ExampleTangle_Depths() {
	g, _ := tangle.Parse(strings.NewReader("3\n1 1 0\n2 2 0\n3 1 0\n"))
	depths, _ := g.Depths()
	fmt.Println(depths)
	// Output:
	// [0 1 2 1]
}

func ExampleCycleError() {
	_, err := tangle.Parse(strings.NewReader("1\n2 1 0\n"))

	var ce *tangle.CycleError
	if errors.As(err, &ce) {
		fmt.Println("side:", ce.Side)
		fmt.Println(err)
	}
	// Output:
	// side: left
	// adding left parent 2 to transaction 2 would create a cycle
}
