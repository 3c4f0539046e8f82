package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tanglestat/pkg/errors"
	"github.com/matzehuels/tanglestat/pkg/observability"
	"github.com/matzehuels/tanglestat/pkg/report"
)

const goodDatabase = "5\n1 1 0\n1 1 0\n2 3 1\n4 2 3\n4 3 2\n"

// isolate points config and cache lookups at fresh temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Cleanup(observability.Reset)
	return dir
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCLI executes the root command and returns stdout and the log output.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	return out.String(), logs.String(), err
}

func TestAnalyzeText(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "good.txt", goodDatabase)

	out, _, err := runCLI(t, "", "analyze", "--precision", "3", path)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, want := range []string{
		"Transactions: 6\n",
		"Avg depth: 1.333\n",
		"Avg txs per depth: 2.500\n",
		"Avg approvals: 1.667\n",
		"Tips: 2\n",
		"Bipartite: false\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyzeJSONFromStdin(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, "0\n", "analyze", "-f", "json", "-")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	r, err := report.ReadJSON(strings.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if r.Source != "stdin" || r.Transactions != 1 || !r.AvgTxsDepth.IsNaN() {
		t.Errorf("report = %+v", r)
	}
	if !strings.Contains(out, `"avg_txs_depth": null`) {
		t.Errorf("NaN should encode as null:\n%s", out)
	}
}

func TestAnalyzeTable(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "good.txt", goodDatabase)

	out, _, err := runCLI(t, "", "analyze", "-f", "table", path)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, want := range []string{"Statistic", "Avg approvals", "Level widths", "1 2 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyzeUsesCache(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "good.txt", goodDatabase)

	_, logs, err := runCLI(t, "", "analyze", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs, iconFresh) {
		t.Errorf("first run should be fresh:\n%s", logs)
	}

	_, logs, err = runCLI(t, "", "analyze", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs, iconCached) {
		t.Errorf("second run should hit the cache:\n%s", logs)
	}

	_, logs, _ = runCLI(t, "", "--no-cache", "analyze", path)
	if strings.Contains(logs, iconCached) {
		t.Errorf("--no-cache should bypass the cache:\n%s", logs)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	dir := isolate(t)
	cycle := writeFile(t, dir, "cycle.txt", "2\n3 1 0\n2 1 0\n")
	bad := writeFile(t, dir, "bad.txt", "five\n1 1 0\n")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"cycle", []string{"analyze", cycle}, errors.ErrCodeCycle},
		{"format", []string{"analyze", bad}, errors.ErrCodeInvalidFormat},
		{"missing", []string{"analyze", filepath.Join(dir, "nope.txt")}, errors.ErrCodeFileNotFound},
		{"output format", []string{"analyze", "-f", "yaml", cycle}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, "", tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := isolate(t)
	cfg := writeFile(t, dir, "bad.toml", "[cache]\nbackend = \"memcached\"\n")

	_, _, err := runCLI(t, "", "--config", cfg, "cache", "path")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestDepths(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "good.txt", goodDatabase)

	out, _, err := runCLI(t, "", "depths", path)
	if err != nil {
		t.Fatal(err)
	}
	want := "0 0\n1 1\n2 1\n3 2\n4 2\n5 2\n"
	if out != want {
		t.Errorf("depths =\n%s\nwant\n%s", out, want)
	}

	out, _, err = runCLI(t, "", "depths", "--levels", "--json", path)
	if err != nil {
		t.Fatal(err)
	}
	var levels []int
	if err := json.Unmarshal([]byte(out), &levels); err != nil {
		t.Fatal(err)
	}
	if len(levels) != 3 || levels[0] != 1 || levels[1] != 2 || levels[2] != 3 {
		t.Errorf("levels = %v, want [1 2 3]", levels)
	}
}

func TestRenderDOTToStdout(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, goodDatabase, "render", "-f", "dot", "--rank", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "digraph tangle {") || !strings.Contains(out, "rank=same") {
		t.Errorf("unexpected DOT:\n%s", out)
	}
}

func TestRenderInvalidFormat(t *testing.T) {
	isolate(t)
	_, _, err := runCLI(t, goodDatabase, "render", "-f", "png", "-")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, output, format, want string
	}{
		{"ledger.txt", "", "svg", "ledger.svg"},
		{"dir/ledger", "", "dot", "dir/ledger.dot"},
		{"ledger.txt", "out.svg", "svg", "out.svg"},
		{"-", "", "svg", "-"},
		{"ledger.txt", "-", "svg", "-"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.input, tt.output, tt.format); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q) = %q, want %q", tt.input, tt.output, tt.format, got, tt.want)
		}
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, "", "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "tanglestat") {
		t.Error("bash completion should mention the command name")
	}
}

func TestAnalyzeBundledLedgers(t *testing.T) {
	isolate(t)
	for _, name := range []string{"small.txt", "bipartite.txt", "medium.txt"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join("..", "..", "examples", "ledgers", name)
			if _, _, err := runCLI(t, "", "--no-cache", "analyze", path); err != nil {
				t.Errorf("analyze %s: %v", name, err)
			}
		})
	}

	_, _, err := runCLI(t, "", "--no-cache", "analyze", filepath.Join("..", "..", "examples", "ledgers", "cycle.txt"))
	if !errors.Is(err, errors.ErrCodeCycle) {
		t.Errorf("cycle.txt error = %v, want CYCLE_DETECTED", err)
	}
}

func TestAnalyzeMemoryBackend(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "config/tanglestat/config.toml", "[cache]\nbackend = \"memory\"\n")
	a := writeFile(t, dir, "a.txt", goodDatabase)
	b := writeFile(t, dir, "b.txt", goodDatabase)

	_, logs, err := runCLI(t, "", "analyze", a, b)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(logs, iconFresh) != 1 || strings.Count(logs, iconCached) != 1 {
		t.Errorf("want one fresh and one cached run:\n%s", logs)
	}
}

func TestAnalyzeNamespaceSeparatesCache(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "good.txt", goodDatabase)
	if _, _, err := runCLI(t, "", "analyze", path); err != nil {
		t.Fatal(err)
	}

	cfg := writeFile(t, dir, "ns.toml", "[cache]\nnamespace = \"staging\"\n")
	_, logs, err := runCLI(t, "", "--config", cfg, "analyze", path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(logs, iconCached) {
		t.Errorf("namespaced run should not see unscoped entries:\n%s", logs)
	}
}

func TestAnalyzeEnvOverride(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "good.txt", goodDatabase)
	t.Setenv("TANGLESTAT_CACHE_BACKEND", "none")

	if _, _, err := runCLI(t, "", "analyze", path); err != nil {
		t.Fatal(err)
	}
	_, logs, err := runCLI(t, "", "analyze", path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(logs, iconCached) {
		t.Errorf("backend none from env should disable caching:\n%s", logs)
	}
}
