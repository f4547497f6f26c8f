package views

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/justyntemme/quill-t/internal/api"
	"github.com/justyntemme/quill-t/internal/ui/terminal"
	"github.com/justyntemme/quill-t/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetailFetcher struct {
	authors map[string]models.Author
	image   []byte

	imageCalls int
}

func (s *stubDetailFetcher) FetchAuthor(_ context.Context, id string, _ bool) (*models.Author, error) {
	a, ok := s.authors[id]
	if !ok {
		return nil, fmt.Errorf("get author: %w", api.ErrNotFound)
	}
	return &a, nil
}

func (s *stubDetailFetcher) FetchImage(_ context.Context, _ string) ([]byte, error) {
	s.imageCalls++
	return s.image, nil
}

func settleDetail(v *AuthorDetailView, cmd tea.Cmd) {
	for _, msg := range run(cmd) {
		switch msg.(type) {
		case authorDetailLoadedMsg, avatarLoadedMsg:
			_, next := v.Update(msg)
			settleDetail(v, next)
		}
	}
}

func janeDoe() models.Author {
	return models.Author{
		ID:              "a1",
		Name:            "Jane Doe",
		ImageURL:        "/images/a1.png",
		Monitored:       true,
		BookCount:       models.IntPtr(3),
		TotalBooksCount: models.IntPtr(10),
		DownloadedCount: models.IntPtr(4),
	}
}

func TestAuthorDetailView_ShowsStats(t *testing.T) {
	f := &stubDetailFetcher{authors: map[string]models.Author{"a1": janeDoe()}}
	v := NewAuthorDetailView(f, 0, terminal.ModeNone, nil)
	v.SetSize(120, 40)

	var opened []string
	v.OnOpened(func(a models.Author) { opened = append(opened, a.ID) })

	v.SetAuthorID("a1")
	settleDetail(v, v.Init())

	out := v.View()
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "Total:")
	assert.Contains(t, out, "10")
	assert.Contains(t, out, "40%")
	assert.Contains(t, out, "JD")
	assert.Equal(t, []string{"a1"}, opened)

	// no image protocol, no avatar download
	assert.Zero(t, f.imageCalls)
}

func TestAuthorDetailView_LibraryOnly(t *testing.T) {
	f := &stubDetailFetcher{authors: map[string]models.Author{
		"a2": {ID: "a2", Name: "Unknown Writer", BookCount: models.IntPtr(1)},
	}}
	v := NewAuthorDetailView(f, 0, terminal.ModeNone, nil)
	v.SetSize(120, 40)
	v.SetAuthorID("a2")
	settleDetail(v, v.Init())

	out := v.View()
	assert.Contains(t, out, "1 book in library")
	assert.NotContains(t, out, "%")
}

func TestAuthorDetailView_NotFound(t *testing.T) {
	v := NewAuthorDetailView(&stubDetailFetcher{}, 0, terminal.ModeNone, nil)
	v.SetSize(120, 40)
	v.SetAuthorID("missing")
	settleDetail(v, v.Init())

	out := v.View()
	assert.Contains(t, out, "not found")
	assert.Contains(t, out, "esc to go back")
}

func TestAuthorDetailView_EscGoesBack(t *testing.T) {
	v := NewAuthorDetailView(&stubDetailFetcher{}, 0, terminal.ModeNone, nil)
	_, cmd := v.Update(keyPress("esc"))
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
}

func TestAuthorDetailView_DrawsAvatar(t *testing.T) {
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 8, 8))))

	f := &stubDetailFetcher{authors: map[string]models.Author{"a1": janeDoe()}, image: img.Bytes()}
	v := NewAuthorDetailView(f, 0, terminal.ModeKitty, nil)
	var out bytes.Buffer
	v.out = &out
	v.SetSize(120, 40)
	v.SetAuthorID("a1")
	settleDetail(v, v.Init())

	assert.Equal(t, 1, f.imageCalls)
	assert.NotEmpty(t, v.avatar)
	assert.Contains(t, v.View(), v.avatar)

	v.Update(keyPress("esc"))
	assert.Contains(t, out.String(), "i=4242")
	assert.Empty(t, v.avatar)
}

type nullAuthorFetcher struct{ stubDetailFetcher }

func (nullAuthorFetcher) FetchAuthor(context.Context, string, bool) (*models.Author, error) {
	return nil, nil
}

func TestAuthorDetailView_EmptyResponseShowsError(t *testing.T) {
	v := NewAuthorDetailView(&nullAuthorFetcher{}, 0, terminal.ModeNone, nil)
	v.SetSize(120, 40)
	v.SetAuthorID("a1")

	require.NotPanics(t, func() { settleDetail(v, v.Init()) })
	assert.Nil(t, v.author)
	assert.Contains(t, v.View(), "empty response")
	assert.False(t, v.titleBar.Busy())
}

func hasTick(msgs []tea.Msg) bool {
	for _, msg := range msgs {
		if _, ok := msg.(spinner.TickMsg); ok {
			return true
		}
	}
	return false
}

func TestAuthorDetailView_LeaveDuringLoad(t *testing.T) {
	f := &stubDetailFetcher{authors: map[string]models.Author{"a1": janeDoe()}}
	v := NewAuthorDetailView(f, 0, terminal.ModeNone, nil)
	v.SetSize(120, 40)
	v.SetAuthorID("a1")

	pending := v.Init()
	assert.True(t, v.titleBar.Busy())

	_, cmd := v.Update(keyPress("esc"))
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
	assert.False(t, v.titleBar.Busy())

	// the abandoned reply does not land
	settleDetail(v, pending)
	assert.Nil(t, v.author)

	// reopening starts the spinner again
	reopen := run(v.Init())
	assert.True(t, hasTick(reopen))
	assert.True(t, v.titleBar.Busy())
}
