package views

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/justyntemme/quill-t/internal/ui/styles"
	"github.com/justyntemme/quill-t/pkg/models"
	"github.com/mattn/go-runewidth"
)

// Every card has the same number of content lines so the grid stays aligned.
const (
	cardLines  = 4
	cardHeight = cardLines + 2 // top and bottom border
	cardChrome = 4             // border plus horizontal padding
)

// renderCard draws one author card that is width cells wide
func renderCard(a models.Author, width int, selected bool) string {
	inner := max(1, width-cardChrome)
	stats := a.Stats()

	lines := []string{
		cardHeader(a, inner),
		"",
		statsLine(stats),
		progressLine(stats, inner),
	}

	style := styles.Card
	if selected {
		style = styles.CardSelected
	}
	return style.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// renderSkeletonCard draws the placeholder shown while authors load
func renderSkeletonCard(width int) string {
	inner := max(1, width-cardChrome)
	bar := func(n int) string {
		return styles.SkeletonBar.Render(strings.Repeat(styles.SkeletonPattern, max(1, n)))
	}

	lines := []string{
		bar(4) + " " + bar(inner*2/3-5),
		"",
		bar(inner / 2),
		bar(inner),
	}
	return styles.CardSkeleton.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func cardHeader(a models.Author, width int) string {
	avatar := avatarFor(a)

	marker := ""
	if a.Monitored {
		marker = " " + styles.MonitoredMark.Render(styles.IconMonitored)
	}

	avail := width - lipgloss.Width(avatar) - 1 - lipgloss.Width(marker)
	name := runewidth.Truncate(a.Name, max(1, avail), "…")

	return avatar + " " + styles.AuthorName.Render(name) + marker
}

// avatarFor returns an initials badge when the author has an image and the
// generic glyph otherwise.
func avatarFor(a models.Author) string {
	if a.HasImage() {
		return styles.AvatarBadge(initials(a.Name), a.ID)
	}
	return styles.Avatar.Background(styles.Muted).Render(styles.IconAuthor)
}

func initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		r := []rune(word)[0]
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

func statsLine(s models.AuthorStats) string {
	if !s.HasEnrichedData {
		return styles.MutedText.Render(models.LibrarySentence(s.InLibrary))
	}
	return strings.Join([]string{
		styles.StatTotal.Render(styles.IconTotal + " " + humanize.Comma(int64(s.TotalBooks))),
		styles.StatLibrary.Render(styles.IconLibrary + " " + humanize.Comma(int64(s.InLibrary))),
		styles.StatDownload.Render(styles.IconDownloaded + " " + humanize.Comma(int64(s.Downloaded))),
	}, "  ")
}

// progressLine is empty unless the author has catalog data
func progressLine(s models.AuthorStats, width int) string {
	if !s.HasEnrichedData {
		return ""
	}
	label := fmt.Sprintf(" %d%% %s", s.RoundedPercent(), styles.IconForward)
	return progressBar(s.Fraction(), width-lipgloss.Width(label)) + styles.Percent.Render(label)
}

func progressBar(fraction float64, width int) string {
	bar := progress.New(
		progress.WithSolidFill(string(styles.Success)),
		progress.WithoutPercentage(),
		progress.WithWidth(max(1, width)),
	)
	bar.EmptyColor = string(styles.Border)
	return bar.ViewAs(fraction)
}
