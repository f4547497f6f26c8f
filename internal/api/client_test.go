package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/quill-t/internal/fixture"
	"github.com/justyntemme/quill-t/internal/query"
	"github.com/justyntemme/quill-t/pkg/models"
)

func fixtureAuthors() []models.Author {
	return []models.Author{
		{
			ID:              "a1",
			Name:            "Jane Doe",
			Monitored:       true,
			BookCount:       models.IntPtr(3),
			TotalBooksCount: models.IntPtr(10),
			DownloadedCount: models.IntPtr(4),
		},
		{ID: "a2", Name: "Unknown Writer", BookCount: models.IntPtr(2)},
	}
}

func newTestClient(t *testing.T, h http.Handler, token string) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", token, WithHTTPClient(server.Client()), WithRateLimit(1000, 100))
}

func TestClient_ListAuthors(t *testing.T) {
	srv := &fixture.Server{Authors: fixtureAuthors(), Token: "tok"}
	c := newTestClient(t, srv.Handler(), "tok")

	authors, err := c.ListAuthors(context.Background())
	require.NoError(t, err)
	require.Len(t, authors, 2)

	assert.Equal(t, "Jane Doe", authors[0].Name)
	assert.Equal(t, 10, *authors[0].TotalBooksCount)
	assert.Nil(t, authors[1].TotalBooksCount)
}

func TestClient_ListAuthorsEmpty(t *testing.T) {
	c := newTestClient(t, (&fixture.Server{}).Handler(), "")

	authors, err := c.ListAuthors(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, authors)
	assert.Empty(t, authors)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"token expired"}`, wantErr: ErrUnauthorized, wantMsg: "listAuthors: token expired"},
		{name: "not found", status: http.StatusNotFound, body: `nope`, wantErr: ErrNotFound},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: ErrRateLimited},
		{name: "server", status: http.StatusBadGateway, wantErr: ErrServer},
		{name: "garbage body", status: http.StatusOK, body: `<html>`, wantErr: ErrBadResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}), "")

			_, err := c.ListAuthors(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, "listAuthors", apiErr.Op)
			assert.Equal(t, tt.status, apiErr.Status)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
		})
	}
}

func TestClient_GetAuthor(t *testing.T) {
	c := newTestClient(t, (&fixture.Server{Authors: fixtureAuthors()}).Handler(), "")

	a, err := c.GetAuthor(context.Background(), "a2")
	require.NoError(t, err)
	assert.Equal(t, "Unknown Writer", a.Name)

	_, err = c.GetAuthor(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_SendsBearerToken(t *testing.T) {
	var got string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}), "abc")

	_, err := c.ListAuthors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got)
}

func TestClient_FetchImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake")
	mux := http.NewServeMux()
	mux.HandleFunc("/images/a1.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(png)
	})
	c := newTestClient(t, mux, "")

	data, err := c.FetchImage(context.Background(), "/images/a1.png")
	require.NoError(t, err)
	assert.Equal(t, png, data)

	_, err = c.FetchImage(context.Background(), "/images/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestClient_FetchImageTokenOnlyForServer(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		image     string
		wantToken bool
	}{
		{name: "relative", base: "http://quill.test", image: "/images/a.png", wantToken: true},
		{name: "same origin", base: "http://quill.test:8080/", image: "http://quill.test:8080/images/a.png", wantToken: true},
		{name: "longer port", base: "http://127.0.0.1:3784", image: "http://127.0.0.1:37843/a.png"},
		{name: "lookalike host", base: "http://quill.test", image: "http://quill.test.evil.com/a.png"},
		{name: "other scheme", base: "https://quill.test", image: "http://quill.test/a.png"},
		{name: "other host", base: "http://quill.test", image: "https://cdn.example.org/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				got = r.Header.Get("Authorization")
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(strings.NewReader("img")),
					Header:     make(http.Header),
					Request:    r,
				}, nil
			})}
			c := NewClient(tt.base, "secret", WithHTTPClient(hc), WithRateLimit(1000, 100))

			_, err := c.FetchImage(context.Background(), tt.image)
			require.NoError(t, err)
			if tt.wantToken {
				assert.Equal(t, "Bearer secret", got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestClient_GetAuthorNullBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}), "")

	a, err := c.GetAuthor(context.Background(), "a1")
	assert.Nil(t, a)
	assert.ErrorIs(t, err, ErrBadResponse)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "getAuthor", apiErr.Op)
	assert.Equal(t, http.StatusOK, apiErr.Status)
}

func TestClient_Health(t *testing.T) {
	c := newTestClient(t, (&fixture.Server{}).Handler(), "")
	assert.NoError(t, c.Health(context.Background()))
}

func TestClient_ContextTimeout(t *testing.T) {
	srv := &fixture.Server{Delay: time.Second}
	c := newTestClient(t, srv.Handler(), "")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.ListAuthors(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueries_FetchAuthorsCachesAndRefreshes(t *testing.T) {
	var hits atomic.Int32
	srv := &fixture.Server{Authors: fixtureAuthors()}
	inner := srv.Handler()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/authors" {
			hits.Add(1)
		}
		inner.ServeHTTP(w, r)
	}), "")
	q := NewQueries(c, query.New(time.Hour, nil))
	ctx := context.Background()

	_, err := q.FetchAuthors(ctx, "authors", false)
	require.NoError(t, err)
	_, err = q.FetchAuthors(ctx, "authors", false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())

	authors, err := q.FetchAuthors(ctx, "authors", true)
	require.NoError(t, err)
	assert.Len(t, authors, 2)
	assert.EqualValues(t, 2, hits.Load())

	_, ok := q.UpdatedAt("authors")
	assert.True(t, ok)
}

func TestQueries_FetchAuthor(t *testing.T) {
	c := newTestClient(t, (&fixture.Server{Authors: fixtureAuthors()}).Handler(), "")
	q := NewQueries(c, query.New(time.Hour, nil))

	a, err := q.FetchAuthor(context.Background(), "a1", false)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", a.Name)

	_, ok := q.UpdatedAt(AuthorKey("a1"))
	assert.True(t, ok)
}
