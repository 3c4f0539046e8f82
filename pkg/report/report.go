// Package report turns a built tangle into a serializable statistics report.
//
// A [Report] is what the CLI prints and the HTTP API returns. Reports are
// plain data and round-trip through JSON, which is how the pipeline caches
// them. The one float that may be undefined, AvgTxsDepth, is encoded as JSON
// null when it is NaN.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/tanglestat/pkg/tangle"
)

// Float is a float64 that encodes NaN as JSON null and decodes null as NaN.
type Float float64

// IsNaN reports whether f holds NaN.
func (f Float) IsNaN() bool { return math.IsNaN(float64(f)) }

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	if f.IsNaN() || math.IsInf(float64(f), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Report holds the statistics of one tangle.
type Report struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	InputHash   string    `json:"input_hash,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Transactions int `json:"transactions"` // origin included
	Edges        int `json:"edges"`
	Tips         int `json:"tips"`
	MaxDepth     int `json:"max_depth"`

	AvgDepth    float64 `json:"avg_depth"`
	AvgInRefs   float64 `json:"avg_in_refs"`
	AvgTxsDepth Float   `json:"avg_txs_depth"` // null for a lone origin

	Bipartite   bool  `json:"bipartite"`
	LevelWidths []int `json:"level_widths"`
}

// Compute gathers all statistics of t. source labels the input (usually a
// path) and inputHash identifies its bytes; both are copied verbatim.
// Each report gets a fresh RunID.
func Compute(t *tangle.Tangle, source, inputHash string) *Report {
	return &Report{
		RunID:        uuid.NewString(),
		Source:       source,
		InputHash:    inputHash,
		GeneratedAt:  time.Now().UTC(),
		Transactions: t.Len(),
		Edges:        t.EdgeCount(),
		Tips:         t.TotalTips(),
		MaxDepth:     t.MaxDepth(),
		AvgDepth:     t.AvgDepth(),
		AvgInRefs:    t.AvgInRefs(),
		AvgTxsDepth:  Float(t.AvgTxsDepth()),
		Bipartite:    t.IsBipartite(),
		LevelWidths:  t.LevelWidths(),
	}
}

// Rerun returns a copy of r with a new RunID and timestamp, used when a
// cached report is served for a new request.
func (r *Report) Rerun() *Report {
	cp := *r
	cp.RunID = uuid.NewString()
	cp.GeneratedAt = time.Now().UTC()
	cp.LevelWidths = append([]int(nil), r.LevelWidths...)
	return &cp
}

// Field is one labeled, formatted statistic.
type Field struct {
	Label string
	Value string
}

// Fields returns the statistics as labeled strings in display order.
// Floats are formatted with the given number of decimals; NaN prints as "NaN".
func (r *Report) Fields(precision int) []Field {
	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', precision, 64) }
	return []Field{
		{"Transactions", strconv.Itoa(r.Transactions)},
		{"Edges", strconv.Itoa(r.Edges)},
		{"Avg depth", ff(r.AvgDepth)},
		{"Avg txs per depth", ff(float64(r.AvgTxsDepth))},
		{"Avg approvals", ff(r.AvgInRefs)},
		{"Max depth", strconv.Itoa(r.MaxDepth)},
		{"Tips", strconv.Itoa(r.Tips)},
		{"Bipartite", strconv.FormatBool(r.Bipartite)},
	}
}

// WriteText writes one "label: value" line per statistic.
func WriteText(w io.Writer, r *Report, precision int) error {
	for _, f := range r.Fields(precision) {
		if _, err := fmt.Fprintf(w, "%s: %s\n", f.Label, f.Value); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON encodes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a report previously written by [WriteJSON] or [Marshal].
func ReadJSON(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &r, nil
}

// Marshal returns the compact JSON encoding of r.
func Marshal(r *Report) ([]byte, error) { return json.Marshal(r) }
