package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStats(t *testing.T) {
	tests := []struct {
		name   string
		author Author
		want   AuthorStats
	}{
		{
			name:   "all counts absent",
			author: Author{ID: "x"},
			want:   AuthorStats{},
		},
		{
			name:   "library count only",
			author: Author{BookCount: IntPtr(2)},
			want:   AuthorStats{TotalBooks: 2, InLibrary: 2},
		},
		{
			name:   "zero catalog total falls back to library count",
			author: Author{BookCount: IntPtr(5), TotalBooksCount: IntPtr(0), DownloadedCount: IntPtr(3)},
			want:   AuthorStats{TotalBooks: 5, InLibrary: 5, Downloaded: 3},
		},
		{
			name: "enriched",
			author: Author{
				BookCount:       IntPtr(3),
				TotalBooksCount: IntPtr(10),
				DownloadedCount: IntPtr(4),
			},
			want: AuthorStats{TotalBooks: 10, InLibrary: 3, Downloaded: 4, HasEnrichedData: true, ProgressPercent: 40},
		},
		{
			name:   "enriched without library count",
			author: Author{TotalBooksCount: IntPtr(8)},
			want:   AuthorStats{TotalBooks: 8, HasEnrichedData: true},
		},
		{
			name:   "downloaded beyond total is clamped",
			author: Author{TotalBooksCount: IntPtr(2), DownloadedCount: IntPtr(5)},
			want:   AuthorStats{TotalBooks: 2, Downloaded: 5, HasEnrichedData: true, ProgressPercent: 100},
		},
		{
			name:   "negative counts are treated as zero",
			author: Author{BookCount: IntPtr(-1), TotalBooksCount: IntPtr(-4), DownloadedCount: IntPtr(-2)},
			want:   AuthorStats{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStats(tt.author))
		})
	}
}

func TestDeriveStats_NotEnrichedHasNoProgress(t *testing.T) {
	for _, total := range []*int{nil, IntPtr(0)} {
		a := Author{TotalBooksCount: total, BookCount: IntPtr(7), DownloadedCount: IntPtr(7)}
		s := DeriveStats(a)
		assert.False(t, s.HasEnrichedData)
		assert.Zero(t, s.ProgressPercent)
	}
}

func TestDeriveStats_ProgressIsExactRatio(t *testing.T) {
	for total := 1; total <= 25; total++ {
		for downloaded := 0; downloaded <= total; downloaded++ {
			s := DeriveStats(Author{TotalBooksCount: IntPtr(total), DownloadedCount: IntPtr(downloaded)})
			require.True(t, s.HasEnrichedData)
			assert.Equal(t, float64(downloaded)/float64(total)*100, s.ProgressPercent)
		}
	}
}

func TestAuthorStats_RoundedPercent(t *testing.T) {
	s := DeriveStats(Author{TotalBooksCount: IntPtr(3), DownloadedCount: IntPtr(2)})
	assert.Equal(t, 67, s.RoundedPercent())
	assert.InDelta(t, 0.6667, s.Fraction(), 0.001)
}

func TestAuthor_DecodeOptionalCounts(t *testing.T) {
	var authors []Author
	err := json.Unmarshal([]byte(`[
		{"id":"a1","name":"Jane Doe","bookCount":3,"totalBooksCount":10,"downloadedCount":4,"monitored":true},
		{"id":"a2","name":"Unknown Writer","bookCount":2}
	]`), &authors)
	require.NoError(t, err)
	require.Len(t, authors, 2)

	assert.True(t, authors[0].Monitored)
	assert.Equal(t, 10, *authors[0].TotalBooksCount)
	assert.Nil(t, authors[1].TotalBooksCount)
	assert.Nil(t, authors[1].DownloadedCount)
	assert.False(t, authors[1].HasImage())
}

func TestLibrarySentence(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 books in library"},
		{1, "1 book in library"},
		{2, "2 books in library"},
		{1000, "1,000 books in library"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LibrarySentence(tt.n))
	}
}
