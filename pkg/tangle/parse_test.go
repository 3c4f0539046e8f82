package tangle

import (
	"errors"
	"io/fs"
	"runtime"
	"strings"
	"testing"
)

func mustParse(t *testing.T, input string) *Tangle {
	t.Helper()
	g, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return g
}

func TestParseGoodDatabase(t *testing.T) {
	g, err := ParseFile("testdata/good_database.txt")
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}

	if g.Len() != 6 {
		t.Errorf("Len() = %d, want 6", g.Len())
	}
	if g.EdgeCount() != 10 {
		t.Errorf("EdgeCount() = %d, want 10", g.EdgeCount())
	}

	if _, ok := g.Origin().Time(); ok {
		t.Error("origin should have no timestamp")
	}
	wantTimes := []uint64{0, 0, 1, 3, 2}
	for i, want := range wantTimes {
		tx, _ := g.Transaction(i + 1)
		got, ok := tx.Time()
		if !ok || got != want {
			t.Errorf("tx %d timestamp = %d (set %v), want %d", i+1, got, ok, want)
		}
	}

	for i := 1; i < g.Len(); i++ {
		if g.InDegree(i) != 2 {
			t.Errorf("InDegree(%d) = %d, want 2", i, g.InDegree(i))
		}
	}
	if g.InDegree(0) != 0 {
		t.Errorf("origin InDegree = %d, want 0", g.InDegree(0))
	}
}

func TestParseEdges(t *testing.T) {
	g := mustParse(t, "3\n1 1 0\n1 2 5\n3 2 7\n")

	tests := []struct {
		idx      int
		children []int
		parents  []int
	}{
		{0, []int{1, 1, 2}, nil},
		{1, []int{2, 3}, []int{0, 0}},
		{2, []int{3}, []int{0, 1}},
		{3, nil, []int{2, 1}},
	}
	for _, tt := range tests {
		if got := g.Children(tt.idx); !equalInts(got, tt.children) {
			t.Errorf("Children(%d) = %v, want %v", tt.idx, got, tt.children)
		}
		if got := g.Parents(tt.idx); !equalInts(got, tt.parents) {
			t.Errorf("Parents(%d) = %v, want %v", tt.idx, got, tt.parents)
		}
	}
}

func TestParseForwardReference(t *testing.T) {
	// Transaction 1 names transaction 2 as a parent before 2 is described.
	// That is accepted as long as no cycle results.
	g := mustParse(t, "2\n3 1 4\n1 1 2\n")
	if got := g.Children(2); !equalInts(got, []int{1}) {
		t.Errorf("Children(2) = %v, want [1]", got)
	}
	d := g.MustDepths()
	if d[2] != 1 || d[1] != 1 {
		t.Errorf("depths = %v, want tx1 and tx2 at depth 1", d)
	}
}

func TestParseFormatErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  error
		wantLine int
		field    string
	}{
		{"empty", "", ErrEmptyInput, 0, ""},
		{"count not int", "abc\n", ErrInvalidCount, 1, ""},
		{"count negative", "-1\n", ErrInvalidCount, 1, ""},
		{"blank first line", "\n1 1 0\n", ErrInvalidCount, 1, ""},
		{"too few tokens", "1\n1 1\n", ErrTokenCount, 2, ""},
		{"too many tokens", "1\n1 1 0 0\n", ErrTokenCount, 2, ""},
		{"double space", "1\n1  1 0\n", ErrTokenCount, 2, ""},
		{"left not int", "1\nx 1 0\n", ErrInvalidToken, 2, "left parent"},
		{"right not int", "1\n1 y 0\n", ErrInvalidToken, 2, "right parent"},
		{"timestamp not int", "1\n1 1 z\n", ErrInvalidToken, 2, "timestamp"},
		{"left zero", "2\n1 1 0\n0 1 0\n", ErrZeroParent, 3, "left parent"},
		{"right zero", "1\n1 0 0\n", ErrZeroParent, 2, "right parent"},
		{"left out of range", "1\n3 1 0\n", ErrParentOutOfRange, 2, "left parent"},
		{"right out of range", "2\n1 1 0\n1 9 0\n", ErrParentOutOfRange, 3, "right parent"},
		{"truncated", "3\n1 1 0\n", ErrTruncated, 0, ""},
		{"trailing data", "1\n1 1 0\n1 1 0\n", ErrTrailingData, 3, ""},
		{"trailing after blank", "1\n1 1 0\n\nextra\n", ErrTrailingData, 3, ""},
		{"trailing blank line", "1\n1 1 0\n\n", ErrTrailingData, 3, ""},
		{"trailing whitespace line", "1\n1 1 0\n   \n", ErrTrailingData, 3, ""},
		{"trailing crlf", "1\r\n1 1 0\r\n\r\n", ErrTrailingData, 3, ""},
		{"count double plus", "++1\n1 1 0\n", ErrInvalidCount, 1, ""},
		{"field double plus", "1\n1 ++1 0\n", ErrInvalidToken, 2, "right parent"},
		{"lone plus", "1\n1 1 +\n", ErrInvalidToken, 2, "timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("error %T is not a *FormatError", err)
			}
			if fe.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", fe.Line, tt.wantLine)
			}
			if fe.Field != tt.field {
				t.Errorf("Field = %q, want %q", fe.Field, tt.field)
			}
		})
	}
}

func TestParseFixtureErrors(t *testing.T) {
	tests := []struct {
		file    string
		wantErr error
		wantMsg string
	}{
		{"testdata/empty_file.txt", ErrEmptyInput, "input is empty"},
		{"testdata/n_is_not_an_int.txt", ErrInvalidCount, "not an unsigned integer"},
		{"testdata/database_not_enough_lines.txt", ErrTruncated, "expected 5, found 3"},
		{"testdata/database_too_many_lines.txt", ErrTrailingData, "expected 2 records only"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := ParseFile(tt.file)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseFile() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParseCycles(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		side   Side
		parent int
		child  int
	}{
		{"left fixture", "", SideLeft, 2, 3},
		{"right fixture", "", SideRight, 2, 3},
		{"self left", "1\n2 1 0\n", SideLeft, 2, 2},
		{"self right", "2\n1 1 0\n1 3 0\n", SideRight, 3, 3},
	}
	files := map[string]string{
		"left fixture":  "testdata/database_cycle_left.txt",
		"right fixture": "testdata/database_cycle_right.txt",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if f, ok := files[tt.name]; ok {
				_, err = ParseFile(f)
			} else {
				_, err = Parse(strings.NewReader(tt.input))
			}

			var ce *CycleError
			if !errors.As(err, &ce) {
				t.Fatalf("Parse() error = %v, want *CycleError", err)
			}
			if !errors.Is(err, ErrWouldCycle) {
				t.Error("CycleError should match ErrWouldCycle")
			}
			if ce.Side != tt.side || ce.Parent != tt.parent || ce.Child != tt.child {
				t.Errorf("got %+v, want side=%v parent=%d child=%d", *ce, tt.side, tt.parent, tt.child)
			}
			if !strings.Contains(err.Error(), tt.side.String()+" parent") {
				t.Errorf("message %q should name the %s parent", err, tt.side)
			}
		})
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile("testdata/does_not_exist.txt")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("ParseFile() error = %v, want fs.ErrNotExist", err)
	}
}

func TestParseCRLF(t *testing.T) {
	g := mustParse(t, "2\r\n1 1 0\r\n2 1 1\r\n")
	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}
}

func TestParseLeadingPlus(t *testing.T) {
	g := mustParse(t, "+2\n+1 1 +7\n2 +1 0\n")
	if g.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", g.Len())
	}
	tx, _ := g.Transaction(1)
	if ts, _ := tx.Time(); ts != 7 {
		t.Errorf("timestamp = %d, want 7", ts)
	}
	if got := g.Parents(2); !equalInts(got, []int{1, 0}) {
		t.Errorf("Parents(2) = %v, want [1 0]", got)
	}
}

func TestParseHugeCountAllocatesLittle(t *testing.T) {
	inputs := []string{
		"2147483646\n",
		"2147483646\n1 1 0\n2147483647 1 0\n",
	}
	for _, input := range inputs {
		var before, after runtime.MemStats
		runtime.GC()
		runtime.ReadMemStats(&before)
		_, err := Parse(strings.NewReader(input))
		runtime.ReadMemStats(&after)

		if !errors.Is(err, ErrTruncated) {
			t.Errorf("Parse(%q) error = %v, want ErrTruncated", input, err)
		}
		if grown := after.TotalAlloc - before.TotalAlloc; grown > 16<<20 {
			t.Errorf("Parse(%q) allocated %d bytes", input, grown)
		}
	}
}

func TestParseForwardReferenceKeepsChildOrder(t *testing.T) {
	// tx1 and tx2 approve tx3 before it exists; tx4 approves it afterwards.
	g := mustParse(t, "4\n4 1 0\n4 1 0\n1 1 0\n4 4 0\n")
	if got := g.Children(3); !equalInts(got, []int{1, 2, 4, 4}) {
		t.Errorf("Children(3) = %v, want [1 2 4 4]", got)
	}
	if g.EdgeCount() != 8 {
		t.Errorf("EdgeCount() = %d, want 8", g.EdgeCount())
	}
}

func TestParseNoTrailingNewline(t *testing.T) {
	g := mustParse(t, "1\n1 1 9")
	tx, _ := g.Transaction(1)
	if ts, ok := tx.Time(); !ok || ts != 9 {
		t.Errorf("timestamp = %d (%v), want 9", ts, ok)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestParseReadError(t *testing.T) {
	_, err := Parse(failingReader{})
	if err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Fatalf("Parse() error = %v, want read failure", err)
	}
	var fe *FormatError
	if errors.As(err, &fe) {
		t.Error("read failures should not be reported as format errors")
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
