package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventcal/internal/config"
	"eventcal/internal/ics"
	"eventcal/internal/interact"
	"eventcal/internal/layout"
	appLog "eventcal/internal/log"
	"eventcal/internal/scheduler"
	"eventcal/internal/store"
	"eventcal/internal/textview"
	"eventcal/internal/view"
	"eventcal/internal/web"
)

// flagConfig holds CLI flag values; they override the config file.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
	mode       string
	date       string
	icsPath    string
	logLevel   string
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.logLevel != "" {
		conf.LogLevel = flags.logLevel
	}
	if flags.icsPath != "" {
		conf.ICS = append(conf.ICS, config.ICSConfig{ID: "cli", Name: "cli", URL: flags.icsPath})
	}

	appLog.Init(appLog.Options{Level: appLog.ParseLevel(conf.LogLevel), Encoding: conf.LogEncoding})
	defer appLog.Sync()

	appLog.Info("eventcal starting",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"agenda_days", conf.AgendaDays,
		"refresh", conf.RefreshCron,
		"ics_count", len(conf.ICS),
		"once", flags.once,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, flags); err != nil {
		appLog.Error("eventcal failed", err)
		appLog.Sync()
		os.Exit(1)
	}
	appLog.Info("eventcal exiting")
}

func run(ctx context.Context, conf *config.Config, flags flagConfig) error {
	loc, err := conf.Location()
	if err != nil {
		return fmt.Errorf("timezone %q: %w", conf.Timezone, err)
	}
	if err := scheduler.ValidateSpec(conf.RefreshCron); err != nil {
		return fmt.Errorf("refresh %q: %w", conf.RefreshCron, err)
	}

	mem := store.NewMemory()
	refresher := scheduler.NewRefresher(ics.NewFetcher(conf.CacheDir), mem, sources(conf), loc)
	if err := refresher.RunOnce(ctx); err != nil {
		// Partial imports are still served.
		appLog.Error("initial ICS import incomplete", err)
	}

	if flags.once {
		return dump(os.Stdout, conf, mem, loc, flags)
	}

	if err := refresher.Start(ctx, conf.RefreshCron); err != nil {
		return err
	}

	srv, err := web.NewServer(web.Options{Config: conf, Store: mem})
	if err != nil {
		return err
	}
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              conf.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		appLog.Info("signal received, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// dump renders one view as text and exits.
func dump(w *os.File, conf *config.Config, mem *store.Memory, loc *time.Location, flags flagConfig) error {
	mode, err := view.ParseMode(flags.mode)
	if err != nil {
		return err
	}
	date := time.Now().In(loc)
	if flags.date != "" {
		if date, err = interact.ParseTime(flags.date, loc); err != nil {
			return err
		}
	}

	opts := view.Options{
		WeekStart:  conf.FirstWeekday(),
		AgendaDays: conf.AgendaDays,
		Now:        time.Now().In(loc),
	}
	m, err := view.Resolve(view.State{CurrentDate: date, Mode: mode}, mem.All(), opts)
	if err != nil {
		return err
	}
	r := layout.Build(m, layout.Options{
		Grid: layout.Grid{StartHour: conf.Grid.StartHour, EndHour: conf.Grid.EndHour, HourHeight: conf.Grid.HourHeight},
	})
	_, err = fmt.Fprint(w, textview.Render(r))
	return err
}

func sources(conf *config.Config) []ics.Source {
	out := make([]ics.Source, 0, len(conf.ICS))
	for _, c := range conf.ICS {
		if c.URL == "" {
			continue
		}
		id := c.ID
		if id == "" {
			id = c.Name
		}
		if id == "" {
			id = c.URL
		}
		out = append(out, ics.Source{ID: id, URL: c.URL, Name: c.Name, Color: c.Color})
	}
	return out
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./eventcal.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Import ICS sources, print one view and exit")
	flag.StringVar(&cfg.mode, "view", "week", "View printed by -once: month, week, day or agenda")
	flag.StringVar(&cfg.date, "date", "", "Anchor date for -once (YYYY-MM-DD); defaults to today")
	flag.StringVar(&cfg.icsPath, "ics", "", "Extra ICS file or URL to import")
	flag.StringVar(&cfg.logLevel, "log-level", "", "Log level: debug, info or error")

	flag.Parse()

	return cfg
}
