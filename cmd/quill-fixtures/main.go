// Command quill-fixtures serves author fixtures on the Quill API routes so the
// client can be run without a real server.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/justyntemme/quill-t/internal/fixture"
	"github.com/justyntemme/quill-t/internal/logger"
)

func getEnvOrDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func main() {
	addr := flag.String("addr", getEnvOrDefault("BIND_ADDR", ":8080"), "listen address")
	file := flag.String("file", "testdata/authors.json", "JSON file with an array of authors")
	token := flag.String("token", os.Getenv("QUILL_TOKEN"), "require this bearer token")
	delay := flag.Duration("delay", 0, "delay added to every API response")
	flag.Parse()

	log := logger.New(logger.Config{
		Writer: os.Stderr,
		Format: getEnvOrDefault("LOG_FORMAT", logger.FormatText),
		Level:  logger.ParseLevel(getEnvOrDefault("LOG_LEVEL", "debug")),
	})

	authors, err := fixture.LoadFile(*file)
	if err != nil {
		log.Error("failed to load fixtures", "file", *file, "error", err)
		os.Exit(1)
	}

	srv := &fixture.Server{
		Authors: authors,
		Token:   *token,
		Delay:   *delay,
		Logger:  log,
	}

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	log.Info("serving fixtures", "addr", *addr, "authors", len(authors), "delay", delay.String())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("aborting", "error", err)
		os.Exit(1)
	}
	log.Info("stopped")
}
