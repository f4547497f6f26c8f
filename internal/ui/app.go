package ui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/justyntemme/quill-t/internal/config"
	"github.com/justyntemme/quill-t/internal/ui/route"
	"github.com/justyntemme/quill-t/internal/ui/styles"
	"github.com/justyntemme/quill-t/internal/ui/terminal"
	"github.com/justyntemme/quill-t/internal/ui/views"
	"github.com/justyntemme/quill-t/pkg/models"
)

// Fetcher serves every read the screens make
type Fetcher interface {
	views.AuthorFetcher
	views.AuthorDetailFetcher
}

// App is the main application model
type App struct {
	config *config.Config
	keys   KeyMap
	logger *slog.Logger

	// Current view state
	currentView views.ViewType

	// Window dimensions
	width  int
	height int

	// View models
	authorsView *views.AuthorListView
	detailView  *views.AuthorDetailView

	// Error/status message
	err       error
	statusMsg string
	showHelp  bool
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, fetcher Fetcher, mode terminal.ImageMode, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	app := &App{
		config:      cfg,
		keys:        DefaultKeyMap(),
		logger:      logger,
		currentView: views.ViewAuthors,
		width:       80,
		height:      24,
	}

	app.authorsView = views.NewAuthorListView(fetcher, cfg.Timeout(), logger.With("view", "authors"))
	app.detailView = views.NewAuthorDetailView(fetcher, cfg.Timeout(), mode, logger.With("view", "author"))
	app.detailView.OnOpened(app.trackViewed)

	return app
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.getCurrentView().Init(),
		tea.SetWindowTitle("quill-t"),
	)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// The bottom line is reserved for the status bar
		a.authorsView.SetSize(msg.Width, msg.Height-1)
		a.detailView.SetSize(msg.Width, msg.Height-1)
		return a, nil

	case tea.KeyMsg:
		if a.showHelp {
			// Any key closes the overlay; only quit passes through
			if key.Matches(msg, a.keys.Quit) && msg.String() == "ctrl+c" {
				return a, tea.Quit
			}
			a.showHelp = false
			return a, nil
		}

		switch {
		case key.Matches(msg, a.keys.Quit):
			if a.currentView == views.ViewAuthorDetails && msg.String() == "q" {
				a.detailView.Leave()
				return a.switchView(views.ViewAuthors, false)
			}
			return a, tea.Quit

		case key.Matches(msg, a.keys.Help):
			a.showHelp = true
			return a, nil

		case key.Matches(msg, a.keys.Theme):
			name := styles.NextTheme()
			if err := a.config.SetTheme(name); err != nil {
				a.logger.Warn("failed to save theme", "theme", name, "error", err)
			}
			return a, views.NotifyThemeChanged(name)
		}

	case views.NavigateMsg:
		return a.navigate(msg.Path)

	case views.BackMsg:
		return a.switchView(views.ViewAuthors, false)

	case views.ThemeChangedMsg:
		a.statusMsg = "Theme: " + msg.Name
		return a, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.currentView {
	case views.ViewAuthors:
		_, cmd = a.authorsView.Update(msg)
	case views.ViewAuthorDetails:
		_, cmd = a.detailView.Update(msg)
	}
	return a, cmd
}

// navigate resolves an in-app path and shows its screen
func (a *App) navigate(path string) (*App, tea.Cmd) {
	r, ok := route.Match(path)
	if !ok {
		a.logger.Warn("unknown route", "path", path)
		a.err = fmt.Errorf("unknown route %q", path)
		return a, nil
	}

	a.logger.Debug("navigate", "path", path)
	switch r.Kind {
	case route.KindAuthor:
		a.detailView.SetAuthorID(r.ID)
		return a.switchView(views.ViewAuthorDetails, true)
	default:
		return a.switchView(views.ViewAuthors, a.currentView == views.ViewAuthors)
	}
}

// switchView changes the current view, initializing it when init is set
func (a *App) switchView(view views.ViewType, init bool) (*App, tea.Cmd) {
	a.currentView = view
	a.err = nil
	a.statusMsg = ""

	if !init {
		return a, nil
	}
	return a, a.getCurrentView().Init()
}

func (a *App) trackViewed(author models.Author) {
	if err := a.config.AddRecentlyViewed(author.ID, author.Name); err != nil {
		a.logger.Warn("failed to save recently viewed", "id", author.ID, "error", err)
	}
}

// getCurrentView returns the current view model
func (a *App) getCurrentView() views.View {
	if a.currentView == views.ViewAuthorDetails {
		return a.detailView
	}
	return a.authorsView
}

// View implements tea.Model
func (a *App) View() string {
	if a.showHelp {
		return a.renderHelp()
	}

	content := a.getCurrentView().View()

	switch {
	case a.err != nil:
		content = lipgloss.JoinVertical(lipgloss.Left, content, styles.ErrorStyle.Render("Error: "+a.err.Error()))
	case a.statusMsg != "":
		content = lipgloss.JoinVertical(lipgloss.Left, content, styles.SuccessText.Render(" "+a.statusMsg))
	}

	return content
}

// renderHelp renders the help overlay
func (a *App) renderHelp() string {
	var b strings.Builder
	b.WriteString(styles.DialogTitle.Render("Keyboard Shortcuts") + "\n")

	for _, group := range a.keys.HelpGroups() {
		b.WriteString(styles.HelpKey.Render(group.Title) + "\n")
		for _, binding := range group.Bindings {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}

	if len(a.config.RecentlyViewed) > 0 {
		b.WriteString(styles.HelpKey.Render("Recently viewed") + "\n")
		for _, entry := range a.config.RecentlyViewed {
			b.WriteString(fmt.Sprintf("  %-24s %s\n", entry.Name, styles.MutedText.Render(humanize.Time(entry.ViewedAt))))
		}
	}

	help := styles.Dialog.Width(min(60, a.width-4)).Render(strings.TrimRight(b.String(), "\n"))

	// Center the help dialog
	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Center,
		lipgloss.Center,
		help,
	)
}
