package server

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrOmnes/iRonWheel/internal/round"
)

var (
	monitorHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#7D56F4")).
				Bold(true).
				Padding(0, 1)

	monitorWinnerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#96CEB4")).
				Bold(true)

	monitorFailStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF6B6B")).
				Bold(true)

	monitorDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// RoundMonitor prints resolved rounds to the operator's console. Safe for
// concurrent use; resolutions arrive on connection goroutines.
type RoundMonitor struct {
	mu     sync.Mutex
	writer io.Writer
	rounds uint64
}

// NewRoundMonitor creates a monitor writing to w, defaulting to stdout.
func NewRoundMonitor(w io.Writer) *RoundMonitor {
	if w == nil {
		w = os.Stdout
	}
	return &RoundMonitor{writer: w}
}

// RoundResolved prints one round's cached outcome.
func (m *RoundMonitor) RoundResolved(outcome *round.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds++

	fmt.Fprintln(m.writer)
	fmt.Fprintln(m.writer, monitorHeaderStyle.Render(
		fmt.Sprintf("Round #%d, segment %s", m.rounds, outcome.Winning)))

	if len(outcome.Payouts) == 0 {
		fmt.Fprintln(m.writer, monitorDimStyle.Render("no winners"))
		return
	}

	failed := make(map[string]bool, len(outcome.Failed))
	for _, name := range outcome.Failed {
		failed[name] = true
	}

	for _, p := range outcome.Payouts {
		line := fmt.Sprintf("%-24s %6d x%-3d -> %d", p.Participant, p.Stake, p.Multiplier, p.Credited)
		if failed[p.Participant] {
			fmt.Fprintln(m.writer, monitorFailStyle.Render(line+"  (credit failed)"))
		} else {
			fmt.Fprintln(m.writer, monitorWinnerStyle.Render(line))
		}
	}
}
