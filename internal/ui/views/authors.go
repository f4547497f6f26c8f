package views

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/justyntemme/quill-t/internal/ui/route"
	"github.com/justyntemme/quill-t/internal/ui/styles"
	"github.com/justyntemme/quill-t/pkg/models"
)

const (
	authorsQueryKey = "authors"
	skeletonCount   = 12

	gridTop = 2 // title bar and a blank line
	gridGap = 1
)

// AuthorFetcher loads the author list, going to the server when refresh is set
type AuthorFetcher interface {
	FetchAuthors(ctx context.Context, key string, refresh bool) ([]models.Author, error)
}

// updateReporter is implemented by fetchers that know when a key was loaded
type updateReporter interface {
	UpdatedAt(key string) (time.Time, bool)
}

type listState int

const (
	statePending listState = iota
	stateEmpty
	stateLoaded
	stateFailed
)

func (s listState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateEmpty:
		return "empty"
	case stateLoaded:
		return "loaded"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// authorsLoadedMsg carries the result of a fetch. seq identifies the request
// so an older response cannot overwrite a newer one.
type authorsLoadedMsg struct {
	seq     int
	authors []models.Author
	err     error
}

// AuthorListView shows every author as a card in a grid
type AuthorListView struct {
	fetcher AuthorFetcher
	timeout time.Duration
	logger  *slog.Logger

	titleBar *TitleBar

	state   listState
	authors []models.Author
	err     error
	seq     int

	// Selection
	cursor    int
	rowOffset int

	// Dimensions
	width  int
	height int
}

// NewAuthorListView creates the author grid. A zero timeout means fetches are
// only bounded by the fetcher itself.
func NewAuthorListView(fetcher AuthorFetcher, timeout time.Duration, logger *slog.Logger) *AuthorListView {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	v := &AuthorListView{
		fetcher: fetcher,
		timeout: timeout,
		logger:  logger,
		width:   80,
		height:  24,
	}
	v.titleBar = NewTitleBar("Authors", func() tea.Cmd { return v.refresh() })
	v.titleBar.SetSubtitle(v.subtitle())
	return v
}

// Init implements View
func (v *AuthorListView) Init() tea.Cmd {
	return v.startLoad(false)
}

func (v *AuthorListView) refresh() tea.Cmd {
	v.logger.Debug("refreshing authors")
	return v.startLoad(true)
}

func (v *AuthorListView) startLoad(refresh bool) tea.Cmd {
	v.state = statePending
	v.err = nil
	v.seq++
	return tea.Batch(v.load(v.seq, refresh), v.titleBar.SetBusy(true))
}

func (v *AuthorListView) load(seq int, refresh bool) tea.Cmd {
	fetcher, timeout := v.fetcher, v.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		authors, err := fetcher.FetchAuthors(ctx, authorsQueryKey, refresh)
		return authorsLoadedMsg{seq: seq, authors: authors, err: err}
	}
}

// Update implements View
func (v *AuthorListView) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(authorsLoadedMsg); ok {
		v.applyLoaded(msg)
		return v, nil
	}

	if cmd, handled := v.titleBar.Update(msg); handled {
		return v, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.state != stateLoaded {
			return v, nil
		}
		cols := v.columns()
		switch msg.String() {
		case "l", "right":
			v.moveCursor(1)
		case "h", "left":
			v.moveCursor(-1)
		case "j", "down":
			v.moveCursor(cols)
		case "k", "up":
			v.moveCursor(-cols)
		case "ctrl+d", "pgdown":
			v.moveCursor(cols * v.visibleRows())
		case "ctrl+u", "pgup":
			v.moveCursor(-cols * v.visibleRows())
		case "g", "home":
			v.cursor = 0
			v.rowOffset = 0
		case "G", "end":
			v.cursor = len(v.authors) - 1
			v.ensureVisible()
		case "enter":
			return v, v.open(v.cursor)
		}

	case tea.MouseMsg:
		if v.state != stateLoaded {
			return v, nil
		}
		switch {
		case msg.Button == tea.MouseButtonWheelDown:
			v.scroll(1)
		case msg.Button == tea.MouseButtonWheelUp:
			v.scroll(-1)
		case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease:
			if idx, ok := v.cardAt(msg.X, msg.Y); ok {
				v.cursor = idx
				return v, v.open(idx)
			}
		}
	}

	return v, nil
}

func (v *AuthorListView) applyLoaded(msg authorsLoadedMsg) {
	if msg.seq != v.seq {
		v.logger.Debug("dropping stale author response", "seq", msg.seq, "current", v.seq)
		return
	}
	v.titleBar.SetBusy(false)

	if msg.err != nil {
		v.logger.Error("failed to load authors", "error", msg.err)
		v.state = stateFailed
		v.err = msg.err
		return
	}

	v.authors = msg.authors
	v.titleBar.SetSubtitle(v.subtitle())
	v.titleBar.SetUpdated(v.updatedAt())
	if len(v.authors) == 0 {
		v.state = stateEmpty
	} else {
		v.state = stateLoaded
	}
	v.logger.Debug("authors loaded", "count", len(v.authors), "state", v.state.String())

	if v.cursor >= len(v.authors) {
		v.cursor = max(0, len(v.authors)-1)
	}
	v.ensureVisible()
}

// updatedAt returns when the shown list was loaded by the fetcher
func (v *AuthorListView) updatedAt() time.Time {
	if r, ok := v.fetcher.(updateReporter); ok {
		if at, ok := r.UpdatedAt(authorsQueryKey); ok {
			return at
		}
	}
	return time.Now()
}

// open navigates to the detail screen of the author at idx
func (v *AuthorListView) open(idx int) tea.Cmd {
	if idx < 0 || idx >= len(v.authors) {
		return nil
	}
	return Navigate(route.Author(v.authors[idx].ID))
}

func (v *AuthorListView) subtitle() string {
	return humanize.Comma(int64(len(v.authors))) + " authors"
}

// View implements View
func (v *AuthorListView) View() string {
	var b strings.Builder

	b.WriteString(v.titleBar.View())
	b.WriteString("\n\n")

	switch v.state {
	case statePending:
		b.WriteString(v.renderSkeletons())
	case stateEmpty:
		b.WriteString(v.place(lipgloss.JoinVertical(
			lipgloss.Center,
			styles.EmptyIcon.Render(styles.IconEmpty),
			styles.EmptyMessage.Render("No authors found"),
		)))
	case stateFailed:
		b.WriteString(v.place(lipgloss.JoinVertical(
			lipgloss.Center,
			styles.ErrorStyle.Render(styles.IconError+" "+v.err.Error()),
			styles.Help.Render("Press r to retry"),
		)))
	case stateLoaded:
		b.WriteString(v.renderGrid())
	}

	b.WriteString("\n")
	b.WriteString(v.renderFooter())

	return b.String()
}

// SetSize implements View
func (v *AuthorListView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.titleBar.SetWidth(width)
	v.ensureVisible()
}

func (v *AuthorListView) place(content string) string {
	return lipgloss.Place(v.width, max(1, v.height-gridTop-2), lipgloss.Center, lipgloss.Center, content)
}

func (v *AuthorListView) renderSkeletons() string {
	cols, w := v.columns(), v.cardWidth()
	cards := make([]string, skeletonCount)
	for i := range cards {
		cards[i] = renderSkeletonCard(w)
	}
	return layoutRows(cards, cols)
}

func (v *AuthorListView) renderGrid() string {
	cols, w := v.columns(), v.cardWidth()
	first := v.rowOffset * cols
	last := min(len(v.authors), first+v.visibleRows()*cols)

	cards := make([]string, 0, last-first)
	for i := first; i < last; i++ {
		cards = append(cards, renderCard(v.authors[i], w, i == v.cursor))
	}
	return layoutRows(cards, cols)
}

func layoutRows(cards []string, cols int) string {
	spacer := strings.Repeat(" ", gridGap)
	var rows []string
	for start := 0; start < len(cards); start += cols {
		end := min(len(cards), start+cols)
		var row []string
		for i := start; i < end; i++ {
			if i > start {
				row = append(row, spacer)
			}
			row = append(row, cards[i])
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *AuthorListView) renderFooter() string {
	help := []string{
		styles.HelpKey.Render("r") + styles.Help.Render(" refresh"),
	}
	if v.state == stateLoaded {
		help = append([]string{
			styles.HelpKey.Render("hjkl") + styles.Help.Render(" move"),
			styles.HelpKey.Render("enter") + styles.Help.Render(" open"),
		}, help...)
	}
	help = append(help,
		styles.HelpKey.Render("T")+styles.Help.Render(" theme"),
		styles.HelpKey.Render("?")+styles.Help.Render(" help"),
		styles.HelpKey.Render("q")+styles.Help.Render(" quit"),
	)
	return styles.StatusBar.Render(strings.Join(help, "  "))
}

// columns follows the terminal width so cards stay readable
func (v *AuthorListView) columns() int {
	switch {
	case v.width >= 132:
		return 4
	case v.width >= 100:
		return 3
	case v.width >= 66:
		return 2
	default:
		return 1
	}
}

func (v *AuthorListView) cardWidth() int {
	cols := v.columns()
	return max(cardChrome+1, (v.width-gridGap*(cols-1))/cols)
}

func (v *AuthorListView) visibleRows() int {
	return max(1, (v.height-gridTop-2)/cardHeight)
}

func (v *AuthorListView) moveCursor(delta int) {
	if len(v.authors) == 0 {
		return
	}
	v.cursor = min(len(v.authors)-1, max(0, v.cursor+delta))
	v.ensureVisible()
}

func (v *AuthorListView) scroll(delta int) {
	cols := v.columns()
	totalRows := (len(v.authors) + cols - 1) / cols
	maxOffset := max(0, totalRows-v.visibleRows())
	v.rowOffset = min(maxOffset, max(0, v.rowOffset+delta))

	// Keep the selection on screen
	row := v.cursor / cols
	if row < v.rowOffset {
		v.cursor = v.rowOffset*cols + v.cursor%cols
	} else if row >= v.rowOffset+v.visibleRows() {
		v.cursor = (v.rowOffset+v.visibleRows()-1)*cols + v.cursor%cols
	}
	v.cursor = min(len(v.authors)-1, v.cursor)
}

func (v *AuthorListView) ensureVisible() {
	cols := v.columns()
	row := v.cursor / cols
	rows := v.visibleRows()
	if row < v.rowOffset {
		v.rowOffset = row
	}
	if row >= v.rowOffset+rows {
		v.rowOffset = row - rows + 1
	}
}

// cardAt maps screen coordinates to an author index
func (v *AuthorListView) cardAt(x, y int) (int, bool) {
	if y < gridTop || x < 0 {
		return 0, false
	}
	w := v.cardWidth()
	col := x / (w + gridGap)
	if col >= v.columns() || x%(w+gridGap) >= w {
		return 0, false
	}
	row := (y - gridTop) / cardHeight
	if row >= v.visibleRows() {
		return 0, false
	}
	idx := (v.rowOffset+row)*v.columns() + col
	if idx >= len(v.authors) {
		return 0, false
	}
	return idx, true
}
