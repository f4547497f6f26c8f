package views

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/justyntemme/quill-t/internal/ui/styles"
)

// TitleBar is the header row of a screen: a title, a subtitle, a refresh
// button and a spinner while the screen is busy.
type TitleBar struct {
	title     string
	subtitle  string
	busy      bool
	updated   time.Time
	onRefresh func() tea.Cmd

	spinner spinner.Model
	width   int
}

// NewTitleBar creates a title bar. onRefresh runs when the user presses r or
// clicks the refresh button.
func NewTitleBar(title string, onRefresh func() tea.Cmd) *TitleBar {
	s := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	return &TitleBar{
		title:     title,
		onRefresh: onRefresh,
		spinner:   s,
		width:     80,
	}
}

// SetSubtitle replaces the subtitle text
func (t *TitleBar) SetSubtitle(s string) {
	t.subtitle = s
}

// SetUpdated records when the shown data was loaded
func (t *TitleBar) SetUpdated(at time.Time) {
	t.updated = at
}

// SetWidth sets the rendered width
func (t *TitleBar) SetWidth(width int) {
	t.width = width
}

// SetBusy toggles the spinner. It returns the command that starts the
// animation when the bar becomes busy.
func (t *TitleBar) SetBusy(busy bool) tea.Cmd {
	was := t.busy
	t.busy = busy
	if busy && !was {
		return t.spinner.Tick
	}
	return nil
}

// Busy reports whether the spinner is showing
func (t *TitleBar) Busy() bool {
	return t.busy
}

// Update handles spinner ticks, the refresh key and clicks on the refresh button
func (t *TitleBar) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !t.busy {
			return nil, true
		}
		var cmd tea.Cmd
		t.spinner, cmd = t.spinner.Update(msg)
		return cmd, true

	case tea.KeyMsg:
		if msg.String() == "r" && t.onRefresh != nil {
			return t.onRefresh(), true
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft &&
			msg.Y == 0 && msg.X >= t.width-lipgloss.Width(t.refreshButton()) && t.onRefresh != nil {
			return t.onRefresh(), true
		}
	}
	return nil, false
}

// View renders the bar
func (t *TitleBar) View() string {
	left := styles.TitleBar.Render(" "+t.title+" ") + styles.TitleSub.Render(t.subtitle)

	var status string
	if t.busy {
		status = styles.HelpKey.Render(t.spinner.View()) + styles.Help.Render(" loading ")
	} else if !t.updated.IsZero() {
		status = styles.Help.Render("updated " + humanize.Time(t.updated) + " ")
	}

	right := status + t.refreshButton()

	gap := t.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + strings.Repeat(" ", gap) + right
}

func (t *TitleBar) refreshButton() string {
	return styles.HelpKey.Render(styles.IconRefresh+" r") + styles.Help.Render(" refresh ")
}
