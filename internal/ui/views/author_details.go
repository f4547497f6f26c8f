package views

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/justyntemme/quill-t/internal/ui/styles"
	"github.com/justyntemme/quill-t/internal/ui/terminal"
	"github.com/justyntemme/quill-t/pkg/models"
)

// AuthorDetailFetcher loads a single author and its avatar
type AuthorDetailFetcher interface {
	FetchAuthor(ctx context.Context, id string, refresh bool) (*models.Author, error)
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// AuthorDetailView shows one author with its figures and avatar
type AuthorDetailView struct {
	fetcher AuthorDetailFetcher
	timeout time.Duration
	logger  *slog.Logger

	// Image support
	mode terminal.ImageMode
	out  io.Writer

	titleBar *TitleBar

	id      string
	author  *models.Author
	err     error
	avatar  string
	seq     int
	opened  func(models.Author)

	// Dimensions
	width  int
	height int
}

type authorDetailLoadedMsg struct {
	seq    int
	author *models.Author
	err    error
}

type avatarLoadedMsg struct {
	seq      int
	rendered string
	err      error
}

// NewAuthorDetailView creates the detail screen. Avatars are only fetched
// when mode is an image protocol.
func NewAuthorDetailView(fetcher AuthorDetailFetcher, timeout time.Duration, mode terminal.ImageMode, logger *slog.Logger) *AuthorDetailView {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	v := &AuthorDetailView{
		fetcher: fetcher,
		timeout: timeout,
		logger:  logger,
		mode:    mode,
		out:     os.Stdout,
		width:   80,
		height:  24,
	}
	v.titleBar = NewTitleBar("Author", func() tea.Cmd { return v.startLoad(true) })
	return v
}

// SetAuthorID selects the author shown on the next Init
func (v *AuthorDetailView) SetAuthorID(id string) {
	if id != v.id {
		v.author = nil
		v.avatar = ""
	}
	v.id = id
}

// OnOpened registers a callback run once the author has loaded
func (v *AuthorDetailView) OnOpened(fn func(models.Author)) {
	v.opened = fn
}

// Init implements View
func (v *AuthorDetailView) Init() tea.Cmd {
	if v.id == "" {
		return nil
	}
	return v.startLoad(false)
}

func (v *AuthorDetailView) startLoad(refresh bool) tea.Cmd {
	v.seq++
	v.err = nil

	seq, id := v.seq, v.id
	fetcher := v.fetcher
	fetch := func() tea.Msg {
		ctx, cancel := v.context()
		defer cancel()
		author, err := fetcher.FetchAuthor(ctx, id, refresh)
		return authorDetailLoadedMsg{seq: seq, author: author, err: err}
	}
	return tea.Batch(fetch, v.titleBar.SetBusy(true))
}

func (v *AuthorDetailView) context() (context.Context, context.CancelFunc) {
	if v.timeout > 0 {
		return context.WithTimeout(context.Background(), v.timeout)
	}
	return context.WithCancel(context.Background())
}

func (v *AuthorDetailView) loadAvatar(imageURL string) tea.Cmd {
	seq, mode, fetcher := v.seq, v.mode, v.fetcher
	return func() tea.Msg {
		ctx, cancel := v.context()
		defer cancel()

		data, err := fetcher.FetchImage(ctx, imageURL)
		if err != nil {
			return avatarLoadedMsg{seq: seq, err: err}
		}
		img, _, err := terminal.Decode(data)
		if err != nil {
			return avatarLoadedMsg{seq: seq, err: err}
		}
		rendered, err := terminal.Render(terminal.Thumbnail(img, terminal.AvatarSize), mode)
		return avatarLoadedMsg{seq: seq, rendered: rendered, err: err}
	}
}

// Update implements View
func (v *AuthorDetailView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case authorDetailLoadedMsg:
		if msg.seq != v.seq {
			return v, nil
		}
		v.titleBar.SetBusy(false)
		if msg.err == nil && msg.author == nil {
			msg.err = fmt.Errorf("author %s: empty response", v.id)
		}
		if msg.err != nil {
			v.logger.Error("failed to load author", "id", v.id, "error", msg.err)
			v.err = msg.err
			return v, nil
		}
		v.author = msg.author
		v.titleBar.SetSubtitle(msg.author.Name)
		v.titleBar.SetUpdated(time.Now())
		if v.opened != nil {
			v.opened(*msg.author)
		}
		if v.mode != terminal.ModeNone && msg.author.HasImage() {
			return v, v.loadAvatar(msg.author.ImageURL)
		}
		return v, nil

	case avatarLoadedMsg:
		if msg.seq != v.seq {
			return v, nil
		}
		if msg.err != nil {
			// The initials badge stays in place
			v.logger.Warn("failed to load avatar", "id", v.id, "error", msg.err)
			return v, nil
		}
		v.avatar = msg.rendered
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "backspace":
			v.Leave()
			return v, Back()
		}
	}

	cmd, _ := v.titleBar.Update(msg)
	return v, cmd
}

// Leave abandons any load in flight so a late reply is ignored and the
// spinner restarts on the next open.
func (v *AuthorDetailView) Leave() {
	v.seq++
	v.titleBar.SetBusy(false)
	v.clearAvatar()
}

func (v *AuthorDetailView) clearAvatar() {
	if v.avatar == "" {
		return
	}
	if seq := terminal.Clear(v.mode); seq != "" {
		_, _ = io.WriteString(v.out, seq)
	}
	v.avatar = ""
}

// View implements View
func (v *AuthorDetailView) View() string {
	var b strings.Builder

	b.WriteString(v.titleBar.View())
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(lipgloss.Place(v.width, max(1, v.height-4), lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center,
				styles.ErrorStyle.Render(styles.IconError+" "+v.err.Error()),
				styles.Help.Render("Press r to retry or esc to go back"),
			)))
		return b.String()

	case v.author == nil:
		b.WriteString(lipgloss.Place(v.width, max(1, v.height-4), lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render("Loading author...")))
		return b.String()
	}

	if v.avatar != "" {
		b.WriteString(v.avatar)
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(v.width, lipgloss.Center, v.renderDialog()))
	return b.String()
}

func (v *AuthorDetailView) renderDialog() string {
	a := *v.author
	s := a.Stats()
	width := min(60, v.width-4)

	var b strings.Builder

	title := avatarFor(a) + " " + a.Name
	if a.Monitored {
		title += " " + styles.MonitoredMark.Render(styles.IconMonitored)
	}
	b.WriteString(styles.DialogTitle.Render(title) + "\n")

	monitored := "no"
	if a.Monitored {
		monitored = "yes"
	}
	b.WriteString(renderField("Monitored", monitored))

	if s.HasEnrichedData {
		b.WriteString(renderField("Total", humanize.Comma(int64(s.TotalBooks))))
		b.WriteString(renderField("In library", humanize.Comma(int64(s.InLibrary))))
		b.WriteString(renderField("Downloaded", humanize.Comma(int64(s.Downloaded))))
		b.WriteString("\n")
		b.WriteString(progressLine(s, width-6))
		b.WriteString("\n")
	} else {
		b.WriteString(renderField("Library", models.LibrarySentence(s.InLibrary)))
	}

	if last := v.titleBar.updated; !last.IsZero() {
		b.WriteString(renderField("Updated", humanize.Time(last)))
	}

	b.WriteString("\n")
	b.WriteString(strings.Join([]string{
		styles.HelpKey.Render("r") + styles.Help.Render(" refresh"),
		styles.HelpKey.Render("esc") + styles.Help.Render(" back"),
	}, "  "))

	return styles.Dialog.Width(width).Render(b.String())
}

// renderField renders a label-value pair
func renderField(label, value string) string {
	return styles.FieldLabel.Render(label+":") + " " + styles.FieldValue.Render(value) + "\n"
}

// SetSize implements View
func (v *AuthorDetailView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.titleBar.SetWidth(width)
}
