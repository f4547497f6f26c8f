package api

import (
	"context"
	"time"

	"github.com/justyntemme/quill-t/internal/query"
	"github.com/justyntemme/quill-t/pkg/models"
)

// Queries serves API reads through a query cache
type Queries struct {
	client *Client
	cache  *query.Cache
}

// NewQueries creates cached accessors over client
func NewQueries(client *Client, cache *query.Cache) *Queries {
	return &Queries{client: client, cache: cache}
}

// AuthorKey returns the cache key of a single author
func AuthorKey(id string) string {
	return "author:" + id
}

// FetchAuthors returns the author collection stored under key. A refresh
// drops the cached copy first; a fetch already in flight is joined.
func (q *Queries) FetchAuthors(ctx context.Context, key string, refresh bool) ([]models.Author, error) {
	if refresh {
		q.cache.Invalidate(key)
	}
	return query.Get(ctx, q.cache, key, q.client.ListAuthors)
}

// FetchAuthor returns one author
func (q *Queries) FetchAuthor(ctx context.Context, id string, refresh bool) (*models.Author, error) {
	key := AuthorKey(id)
	if refresh {
		q.cache.Invalidate(key)
	}
	return query.Get(ctx, q.cache, key, func(ctx context.Context) (*models.Author, error) {
		return q.client.GetAuthor(ctx, id)
	})
}

// FetchImage returns avatar bytes, cached by URL
func (q *Queries) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	return query.Get(ctx, q.cache, "image:"+imageURL, func(ctx context.Context) ([]byte, error) {
		return q.client.FetchImage(ctx, imageURL)
	})
}

// UpdatedAt reports when key was last loaded
func (q *Queries) UpdatedAt(key string) (time.Time, bool) {
	return q.cache.FetchedAt(key)
}
