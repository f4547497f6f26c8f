// Package route builds and resolves in-app navigation paths.
package route

import (
	"net/url"
	"strings"
)

// Authors is the path of the author list screen
const Authors = "/authors"

// Kind identifies the screen a path resolves to
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthors
	KindAuthor
)

// Route is a resolved navigation path
type Route struct {
	Kind Kind
	ID   string // author id for KindAuthor
}

// Author returns the detail path for an author id
func Author(id string) string {
	return Authors + "/" + url.PathEscape(id)
}

// Match resolves a path to a route
func Match(path string) (Route, bool) {
	path = strings.TrimSuffix(path, "/")
	if path == Authors || path == "" {
		return Route{Kind: KindAuthors}, true
	}

	rest, ok := strings.CutPrefix(path, Authors+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return Route{}, false
	}

	id, err := url.PathUnescape(rest)
	if err != nil {
		return Route{}, false
	}
	return Route{Kind: KindAuthor, ID: id}, true
}
