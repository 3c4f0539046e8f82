// Package pkg provides the libraries behind tanglestat.
//
// # Overview
//
// Tanglestat loads a tangle ledger, a DAG in which every transaction except
// the origin approves two earlier transactions, and reports its structure.
// The pkg directory is organized into these areas:
//
//  1. [tangle] - Parsing, validation and traversal statistics
//  2. [report] - The statistics report and its text/JSON encodings
//  3. [pipeline] - Orchestration (load → analyze → cache)
//  4. [cache] - Report caches (file, Redis, MongoDB)
//  5. [render] - Node-link diagrams via Graphviz
//  6. [config], [errors], [observability], [buildinfo] - Ambient support
//
// # Architecture
//
// The typical data flow:
//
//	tangle description (file, stdin or HTTP body)
//	         ↓
//	    [tangle] package (parse + validate DAG)
//	         ↓
//	    [report] package (depths, tips, averages, bipartiteness)
//	         ↓
//	    text / JSON / table / SVG output
//
// [pipeline.Runner] wraps the middle steps with caching so the CLI and the
// HTTP API behave identically.
//
// # Quick Start
//
//	t, err := tangle.ParseFile("ledger.txt")
//	if err != nil {
//	    var ce *tangle.CycleError
//	    if errors.As(err, &ce) {
//	        // the ledger references a descendant as a parent
//	    }
//	    return err
//	}
//	fmt.Println(t.AvgDepth(), t.TotalTips(), t.IsBipartite())
package pkg
