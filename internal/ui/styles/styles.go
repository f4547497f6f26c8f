package styles

import "github.com/charmbracelet/lipgloss"

// Glyphs used across the views
const (
	IconAuthor      = "👤"
	IconEmpty       = "📚"
	IconMonitored   = "👁"
	IconTotal       = "◆"
	IconLibrary     = "▤"
	IconDownloaded  = "↓"
	IconForward     = "›"
	IconRefresh     = "⟳"
	IconError       = "✗"
	SkeletonPattern = "░"
)

// Palette of the active theme. Set by ApplyTheme.
var (
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Border     lipgloss.Color
)

// Styles of the active theme. Set by ApplyTheme.
var (
	// Title bar
	TitleBar    lipgloss.Style
	TitleSub    lipgloss.Style
	StatusBar   lipgloss.Style
	Help        lipgloss.Style
	HelpKey     lipgloss.Style
	MutedText   lipgloss.Style
	ErrorStyle  lipgloss.Style
	SuccessText lipgloss.Style

	// Author cards
	Card          lipgloss.Style
	CardSelected  lipgloss.Style
	CardSkeleton  lipgloss.Style
	SkeletonBar   lipgloss.Style
	AuthorName    lipgloss.Style
	MonitoredMark lipgloss.Style
	StatTotal     lipgloss.Style
	StatLibrary   lipgloss.Style
	StatDownload  lipgloss.Style
	Percent       lipgloss.Style
	Avatar        lipgloss.Style

	// Empty and error states
	EmptyIcon    lipgloss.Style
	EmptyMessage lipgloss.Style

	// Dialog/Modal styles
	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style
	FieldLabel  lipgloss.Style
	FieldValue  lipgloss.Style
)

// AvatarBadge renders initials on a background colour derived from seed
func AvatarBadge(initials, seed string) string {
	return Avatar.
		Background(lipgloss.Color(ColorFor(seed))).
		Render(initials)
}
