package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"

	"riotapi-schema/config"
	"riotapi-schema/db"
	"riotapi-schema/scheduler"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Generate struct {
		Root string `short:"r" help:"Project root; artifacts are written to <root>/<output>" default:"."`
	} `cmd:"" help:"Scrape the developer portal and write the spec files once"`

	Watch struct {
		Root     string        `short:"r" help:"Project root; artifacts are written to <root>/<output>" default:"."`
		Interval time.Duration `short:"i" help:"Time between runs (overrides schedule.interval)"`
	} `cmd:"" help:"Regenerate the spec files on a fixed interval"`

	History struct {
		Limit int `short:"n" help:"Number of builds to list" default:"10"`
	} `cmd:"" help:"List recorded builds from the history database"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("riotapi-schema"),
		kong.Description("Generates OpenAPI and Swagger specs for the Riot API from its developer portal."))

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfigOrDefault(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch kctx.Command() {
	case "generate":
		err = runGenerate(ctx, cfg, CLI.Generate.Root)
	case "watch":
		if CLI.Watch.Interval > 0 {
			cfg.Schedule.Interval = CLI.Watch.Interval
		}
		err = runWatch(ctx, cfg, CLI.Watch.Root)
	case "history":
		err = runHistory(ctx, cfg, CLI.History.Limit)
	default:
		err = fmt.Errorf("unknown command %q", kctx.Command())
	}
	if err != nil {
		slog.Error("Command failed", "command", kctx.Command(), "error", err)
		stop()
		os.Exit(1)
	}
}

func runGenerate(ctx context.Context, cfg *config.Config, root string) error {
	a, err := newApp(ctx, cfg, root)
	if err != nil {
		return err
	}
	defer a.Close()

	_, err = a.driver.Run(ctx)
	return err
}

func runWatch(ctx context.Context, cfg *config.Config, root string) error {
	a, err := newApp(ctx, cfg, root)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := scheduler.NewScheduler(ctx, cfg.Schedule.Interval, func(ctx context.Context) error {
		_, err := a.driver.Run(ctx)
		return err
	})
	if err != nil {
		return err
	}
	s.Start()
	s.Wait()
	return nil
}

func runHistory(ctx context.Context, cfg *config.Config, limit int) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("history requires database_url or DATABASE_URL")
	}
	database, err := db.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	builds, err := database.ListBuilds(ctx, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tENDPOINTS\tREGIONS\tDTO GAPS")
	for _, b := range builds {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n", b.ID, b.CreatedAt.Format(time.RFC3339), b.Endpoints, b.Regions, b.DtoGaps)
	}
	return w.Flush()
}
