// Package tangle builds and analyzes tangle-style ledgers.
//
// # Overview
//
// A tangle is a directed acyclic graph of transactions in which every
// transaction, except a single synthetic origin, approves exactly two earlier
// transactions. Edges point from the approved transaction (parent) to the
// approving one (child), so the origin is the unique source and transactions
// nobody has approved yet are sinks, called tips.
//
// # Building
//
// [Parse] reads the line-oriented description and returns an immutable
// [Tangle]. The origin is implicit and always has index 0; record k of the
// input becomes the transaction with index k:
//
//	5
//	1 1 0
//	1 1 0
//	2 3 1
//	4 2 3
//	4 3 2
//
// Each record holds the left parent, right parent and timestamp. Parent values
// are 1-based positions with the origin at position 1. Every edge insertion is
// checked for cycles before it is applied, and malformed input is rejected
// with a [*FormatError] wrapping one of the package sentinels ([ErrEmptyInput],
// [ErrTruncated], [ErrTrailingData], ...). A rejected parent yields a
// [*CycleError] naming the side, the parent and the child.
//
// # Statistics
//
// Once built, a tangle answers read-only queries:
//
//   - [Tangle.Depths]: depth per transaction, first discovered path wins
//   - [Tangle.AvgDepth], [Tangle.MaxDepth], [Tangle.LevelWidths]
//   - [Tangle.AvgInRefs]: mean approvals per transaction
//   - [Tangle.AvgTxsDepth]: transactions per depth level, NaN for a lone origin
//   - [Tangle.TotalTips] and [Tangle.Tips]
//   - [Tangle.IsBipartite]: two-coloring of the undirected view
//
// # Concurrency
//
// A Tangle is never mutated after Parse returns, so all methods may be called
// from multiple goroutines at once.
package tangle
