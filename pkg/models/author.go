package models

import (
	"math"

	"github.com/dustin/go-humanize"
)

// AuthorStats holds the per-card figures derived from an Author.
// It is recomputed on every render and never stored.
type AuthorStats struct {
	TotalBooks      int
	InLibrary       int
	Downloaded      int
	HasEnrichedData bool
	ProgressPercent float64
}

// DeriveStats maps an author with optional counts onto fully populated stats.
//
// TotalBooks prefers the catalog total, then the library count, then zero; a
// zero count falls through the chain like a missing one. Negative counts from
// the server are treated as zero and ProgressPercent is always within [0, 100].
func DeriveStats(a Author) AuthorStats {
	enriched := count(a.TotalBooksCount)
	inLibrary := count(a.BookCount)

	s := AuthorStats{
		TotalBooks:      firstNonZero(enriched, inLibrary),
		InLibrary:       inLibrary,
		Downloaded:      count(a.DownloadedCount),
		HasEnrichedData: enriched > 0,
	}

	if s.HasEnrichedData && s.TotalBooks > 0 {
		p := float64(s.Downloaded) / float64(s.TotalBooks) * 100
		s.ProgressPercent = math.Min(100, math.Max(0, p))
	}

	return s
}

// RoundedPercent returns ProgressPercent rounded to the nearest integer
func (s AuthorStats) RoundedPercent() int {
	return int(math.Round(s.ProgressPercent))
}

// Fraction returns ProgressPercent as a value in [0, 1]
func (s AuthorStats) Fraction() float64 {
	return s.ProgressPercent / 100
}

// LibrarySentence phrases a library count for authors without catalog data
func LibrarySentence(n int) string {
	if n == 1 {
		return "1 book in library"
	}
	return humanize.Comma(int64(n)) + " books in library"
}

func count(p *int) int {
	if p == nil || *p < 0 {
		return 0
	}
	return *p
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
