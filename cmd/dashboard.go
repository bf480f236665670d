package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// newDashboardCmd builds the live TUI dashboard. Like console, it is meant
// to run as an Interface unit's ExecStart: fd 0/1 carry the text protocol
// to/from the daemon, so the TUI itself is driven against the controlling
// terminal via /dev/tty (see console.go's comment for why).
func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Live table dashboard of test progress for a running jig",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard()
		},
	}
}

type testRow struct {
	id, status, detail string
}

type dashboardModel struct {
	table    table.Model
	rows     map[string]testRow
	order    []string
	scenario string
	finished string
}

// protocolLineMsg carries one raw text-protocol line from the daemon into
// the Bubble Tea update loop.
type protocolLineMsg string

func newDashboardModel() dashboardModel {
	cols := []table.Column{
		{Title: "Test", Width: 24},
		{Title: "Status", Width: 12},
		{Title: "Detail", Width: 40},
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(false), table.WithHeight(15))

	style := table.DefaultStyles()
	style.Header = style.Header.Bold(true).BorderBottom(true)
	style.Selected = lipgloss.NewStyle()
	t.SetStyles(style)

	return dashboardModel{table: t, rows: map[string]testRow{}}
}

func (m dashboardModel) Init() tea.Cmd { return nil }

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case protocolLineMsg:
		m.apply(string(msg))
		m.refreshRows()
	}
	return m, nil
}

func (m *dashboardModel) apply(line string) {
	verb, rest, _ := strings.Cut(line, " ")
	switch strings.ToUpper(verb) {
	case "START":
		m.scenario, m.finished = rest, ""
		m.rows = map[string]testRow{}
		m.order = nil
	case "RUNNING":
		m.setRow(rest, "running", "")
	case "PASS":
		id, msg, _ := strings.Cut(rest, " ")
		m.setRow(id, "pass", msg)
	case "FAIL":
		id, msg, _ := strings.Cut(rest, " ")
		m.setRow(id, "fail", msg)
	case "SKIP":
		id, msg, _ := strings.Cut(rest, " ")
		m.setRow(id, "skip", msg)
	case "FINISH":
		m.finished = rest
	}
}

func (m *dashboardModel) setRow(id, status, detail string) {
	if _, ok := m.rows[id]; !ok {
		m.order = append(m.order, id)
	}
	m.rows[id] = testRow{id: id, status: status, detail: detail}
}

func (m *dashboardModel) refreshRows() {
	rows := make([]table.Row, 0, len(m.order))
	for _, id := range m.order {
		r := m.rows[id]
		rows = append(rows, table.Row{r.id, r.status, r.detail})
	}
	m.table.SetRows(rows)
}

func (m dashboardModel) View() string {
	header := fmt.Sprintf("scenario: %s", m.scenario)
	if m.finished != "" {
		header += fmt.Sprintf("   finished: %s", m.finished)
	}
	return header + "\n\n" + m.table.View() + "\n\n(q to quit)\n"
}

func runDashboard() error {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("dashboard requires a controlling terminal: %w", err)
	}
	defer tty.Close()

	p := tea.NewProgram(newDashboardModel(), tea.WithInput(tty), tea.WithOutput(tty))

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			p.Send(protocolLineMsg(scanner.Text()))
		}
	}()

	_, err = p.Run()
	return err
}
