package models

// Author is a tracked author as returned by the Quill server.
//
// Count fields are pointers because the server omits them when it has no
// figure (for example when catalog enrichment has not run yet).
type Author struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ImageURL        string `json:"imageUrl,omitempty"`
	Monitored       bool   `json:"monitored"`
	BookCount       *int   `json:"bookCount,omitempty"`
	TotalBooksCount *int   `json:"totalBooksCount,omitempty"`
	DownloadedCount *int   `json:"downloadedCount,omitempty"`
}

// HasImage returns true if the author has an avatar URL
func (a Author) HasImage() bool {
	return a.ImageURL != ""
}

// Stats derives the display statistics for the author
func (a Author) Stats() AuthorStats {
	return DeriveStats(a)
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error string `json:"error"`
}

// IntPtr returns a pointer to n. Handy for building fixtures.
func IntPtr(n int) *int {
	return &n
}
