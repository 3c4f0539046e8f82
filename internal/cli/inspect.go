package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tanglestat/pkg/pipeline"
	"github.com/matzehuels/tanglestat/pkg/tangle"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	listTipStyle = lipgloss.NewStyle().Foreground(colorGreen)
)

// inspectCommand creates the interactive transaction browser.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Browse the transactions of a tangle interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			t, err := pipeline.NewRunner(nil, nil, c.Logger).Load(cmd.Context(), sourceName(args[0]), data)
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewInspectModel(sourceName(args[0]), t), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// InspectModel - Interactive transaction browser
// =============================================================================

// txRow is one transaction prepared for display.
type txRow struct {
	index     int
	timestamp string
	depth     int
	parents   string
	approvals int
	tip       bool
}

// InspectModel is the bubbletea model for browsing transactions.
type InspectModel struct {
	Source string
	Rows   []txRow
	Cursor int
	Height int
	Offset int

	summary string
}

// NewInspectModel prepares the rows of t for browsing.
func NewInspectModel(source string, t *tangle.Tangle) InspectModel {
	depths := t.MustDepths()
	rows := make([]txRow, t.Len())
	for i, tx := range t.Transactions() {
		ts := "—"
		if v, ok := tx.Time(); ok {
			ts = strconv.FormatUint(v, 10)
		}
		parents := "—"
		if ps := t.Parents(i); len(ps) > 0 {
			parents = joinInts(ps)
		}
		rows[i] = txRow{
			index:     i,
			timestamp: ts,
			depth:     depths[i],
			parents:   parents,
			approvals: t.OutDegree(i),
			tip:       t.IsTip(i),
		}
	}
	return InspectModel{
		Source:  source,
		Rows:    rows,
		Height:  15,
		summary: fmt.Sprintf("%d transactions · %d edges · %d tips · max depth %d",
			t.Len(), t.EdgeCount(), t.TotalTips(), t.MaxDepth()),
	}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown", " ":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Rows))
		case "end", "G":
			m.move(len(m.Rows))
		case "t":
			m.nextTip()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta, clamped to the rows, and scrolls the
// window to keep it visible.
func (m *InspectModel) move(delta int) {
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Rows)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// nextTip moves to the next tip after the cursor, wrapping around.
func (m *InspectModel) nextTip() {
	for step := 1; step <= len(m.Rows); step++ {
		i := (m.Cursor + step) % len(m.Rows)
		if m.Rows[i].tip {
			m.move(i - m.Cursor)
			return
		}
	}
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Source))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  t next tip  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		tip := ""
		if r.tip {
			tip = iconSuccess
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(r.index),
			r.timestamp,
			strconv.Itoa(r.depth),
			r.parents,
			strconv.Itoa(r.approvals),
			tip,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Tx", "Timestamp", "Depth", "Parents", "Approvals", "Tip").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if m.Rows[idx].tip {
				base = listTipStyle
			}
			if idx == m.Cursor {
				return base.Bold(true).Foreground(colorCyan)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %s", m.Cursor+1, len(m.Rows), m.summary)))

	return b.String()
}
