package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/justyntemme/quill-t/internal/api"
	"github.com/justyntemme/quill-t/internal/config"
	"github.com/justyntemme/quill-t/internal/logger"
	"github.com/justyntemme/quill-t/internal/query"
	"github.com/justyntemme/quill-t/internal/ui"
	"github.com/justyntemme/quill-t/internal/ui/styles"
	"github.com/justyntemme/quill-t/internal/ui/terminal"
	"github.com/justyntemme/quill-t/pkg/models"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	// Define flags
	serverURL := flag.String("url", "", "Server URL (e.g., http://myserver:8080)")
	flag.StringVar(serverURL, "s", "", "Server URL (shorthand)")
	showHelp := flag.Bool("help", false, "Show help message")
	flag.BoolVar(showHelp, "h", false, "Show help (shorthand)")
	debug := flag.Bool("debug", false, "Show debug information")
	list := flag.Bool("list", false, "Print the author list and exit")

	flag.Parse()

	if *showHelp {
		printUsage()
		os.Exit(0)
	}

	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Override server URL if provided via flag
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
		if err := cfg.Validate(); err == nil {
			// Save to config for future use
			if err := cfg.SetServerURL(*serverURL); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not save server URL to config: %v\n", err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := openLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer closeLog()

	client := api.NewClient(cfg.ServerURL, cfg.Token,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(log.With("component", "api")),
	)
	cache := query.New(cfg.StaleDuration(), log.With("component", "query"))
	cache.SetFetchTimeout(cfg.Timeout())
	queries := api.NewQueries(client, cache)

	if *debug {
		printDebug(cfg, client)
		os.Exit(0)
	}

	if *list {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
		defer cancel()
		authors, err := client.ListAuthors(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := writeList(os.Stdout, authors); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	styles.SetCurrentTheme(cfg.Theme)

	// Run TUI mode
	log.Info("starting", "server", cfg.ServerURL)
	app := ui.NewApp(cfg, queries, terminal.DetectMode(), log)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		log.Error("program exited", "error", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// openLogger sends logs to the configured file. On failure the returned
// logger discards everything.
func openLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	f, err := logger.OpenFile(cfg.LogPath())
	if err != nil {
		return logger.New(logger.Config{}), func() {}, err
	}
	log := logger.New(logger.Config{
		Writer:    f,
		Format:    cfg.LogFormat,
		Level:     logger.ParseLevel(cfg.LogLevel),
		AddSource: cfg.LogLevel == "debug",
	})
	return log, func() { _ = f.Close() }, nil
}

func printDebug(cfg *config.Config, client *api.Client) {
	fmt.Printf("Config path: %s\n", cfg.Path())
	fmt.Printf("Log file: %s\n", cfg.LogPath())
	fmt.Printf("Server URL: %s\n", client.BaseURL())
	fmt.Printf("Token set: %v\n", cfg.Token != "")
	fmt.Printf("Theme: %s\n", styles.GetTheme(cfg.Theme).Name)
	fmt.Printf("Image protocol: %s\n", terminal.DetectMode())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()
	if err := client.Health(ctx); err != nil {
		fmt.Printf("Server health: %v\n", err)
		return
	}
	fmt.Println("Server health: ok")
}

// writeList prints one line per author with its derived figures
func writeList(w io.Writer, authors []models.Author) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMONITORED\tBOOKS\tPROGRESS")

	for _, a := range authors {
		s := a.Stats()

		monitored := ""
		if a.Monitored {
			monitored = "yes"
		}

		var books, progress string
		if s.HasEnrichedData {
			books = fmt.Sprintf("%s total, %s in library, %s downloaded",
				humanize.Comma(int64(s.TotalBooks)), humanize.Comma(int64(s.InLibrary)), humanize.Comma(int64(s.Downloaded)))
			progress = fmt.Sprintf("%d%%", s.RoundedPercent())
		} else {
			books = models.LibrarySentence(s.InLibrary)
			progress = "-"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Name, monitored, books, progress)
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s authors\n", humanize.Comma(int64(len(authors))))
	return err
}

func printUsage() {
	fmt.Println("quill-t - Terminal UI client for the Quill media library")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  quill-t                     Start the TUI application")
	fmt.Println("  quill-t --list              Print the author list and exit")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -s, --url <url>        Set server URL (saved to config)")
	fmt.Println("      --list             Print authors with their figures")
	fmt.Println("      --debug            Show configuration and server health")
	fmt.Println("  -h, --help             Show this help message")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Printf("  %-14s Server URL\n", config.EnvServerURL)
	fmt.Printf("  %-14s API token\n", config.EnvToken)
	fmt.Printf("  %-14s Colour theme\n", config.EnvTheme)
	fmt.Printf("  %-14s debug, info, warn or error\n", config.EnvLogLevel)
	fmt.Printf("  %-14s json or text\n", config.EnvLogFormat)
	fmt.Println()
	fmt.Println("Config: ~/.config/quill-t/config.json")
}
