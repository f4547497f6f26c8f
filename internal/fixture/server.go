// Package fixture serves canned author data over the Quill API routes for
// local development and client tests.
package fixture

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/justyntemme/quill-t/pkg/models"
)

// Server holds the fixture data
type Server struct {
	Authors []models.Author
	// Token, when set, must be presented as a bearer token
	Token string
	// Delay is added before every API response to make loading states visible
	Delay  time.Duration
	Logger *slog.Logger
}

// LoadFile reads a JSON array of authors. Authors without an id get a random one.
func LoadFile(path string) ([]models.Author, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var authors []models.Author
	if err := json.Unmarshal(data, &authors); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for i := range authors {
		if authors[i].ID == "" {
			authors[i].ID = uuid.NewString()
		}
	}
	return authors, nil
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.sendJSON(w, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireToken)
		r.Use(s.delay)

		r.Get("/authors", func(w http.ResponseWriter, r *http.Request) {
			authors := s.Authors
			if authors == nil {
				authors = []models.Author{}
			}
			s.sendJSON(w, authors)
		})

		r.Get("/authors/{id}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			for _, a := range s.Authors {
				if a.ID == id {
					s.sendJSON(w, a)
					return
				}
			}
			s.sendError(w, http.StatusNotFound, "author not found")
		})
	})

	return r
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.Token {
			s.sendError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Delay > 0 {
			select {
			case <-time.After(s.Delay):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		if s.Logger != nil {
			s.Logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}
	})
}

func (s *Server) sendJSON(w http.ResponseWriter, data any) {
	bs, err := json.Marshal(data)
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(bs)
}

func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	bs, _ := json.Marshal(models.ErrorResponse{Error: message})
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(bs)
}
