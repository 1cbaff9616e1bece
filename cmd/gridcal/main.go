package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"gridcal/internal/config"
	"gridcal/internal/ics"
	"gridcal/internal/layout"
	appLog "gridcal/internal/log"
	"gridcal/internal/web"
)

const defaultCacheDir = "/var/lib/gridcal/ics-cache"

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
	debug      bool
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	defer appLog.Sync()

	appLog.Info("gridcal starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	projector, err := layout.NewProjector(conf.Timezone)
	if err != nil {
		appLog.Error("invalid timezone in config; falling back to local", err, "timezone", conf.Timezone)
		projector = layout.ProjectorAt(nil)
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", projector.Location().String(),
		"week_start", conf.Display.WeekStart,
		"event_style", conf.Display.EventStyle,
		"refresh", conf.RefreshCron,
		"ics_count", len(conf.ICS),
	)

	cacheDir := defaultCacheDir
	if flags.debug {
		cacheDir = "./cache/ics-cache"
	}

	sources := make([]ics.Source, 0, len(conf.ICS))
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
		sources = append(sources, ics.Source{
			ID:         id,
			Name:       c.Name,
			URL:        c.URL,
			ColorIndex: c.ColorIndex,
		})
	}

	service := ics.NewService(ics.NewFetcher(cacheDir, conf.FetchTimeout), sources)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	refresh := func() {
		refreshCtx, done := context.WithTimeout(ctx, 2*time.Minute)
		defer done()
		warmFeeds(refreshCtx, service, projector, conf)
	}

	if flags.once {
		refresh()
		appLog.Info("gridcal exiting (once)")
		return
	}

	// Background refresh keeps the feed cache warm so interactive month
	// requests mostly hit 304s.
	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, refresh); err != nil {
		appLog.Error("invalid refresh cron spec", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	go refresh()

	if err := web.StartServer(ctx, conf, service, projector); err != nil {
		appLog.Error("HTTP server stopped", err)
		os.Exit(1)
	}
	appLog.Info("gridcal exiting")
}

// warmFeeds runs one fetch/parse/expand cycle over the current month's grid
// window.
func warmFeeds(ctx context.Context, service *ics.Service, projector *layout.Projector, conf *config.Config) {
	now := time.Now().In(projector.Location())
	month := layout.CalendarMonth{Year: now.Year(), Month: now.Month()}
	grid := layout.BuildGrid(month, layout.WeekStartDay(conf.Display.WeekStart))

	start := time.Date(month.Year, month.Month, 1-grid.FirstDayOffset-7, 0, 0, 0, 0, projector.Location())
	end := start.AddDate(0, 0, grid.Weeks*7+14)

	events, err := service.EventsForRange(ctx, start, end)
	if err != nil {
		appLog.Error("feed refresh failed", err)
		return
	}
	appLog.Info("feed refresh completed", "event_count", len(events))
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/gridcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one feed refresh cycle and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Debug logging and relative cache paths")

	flag.Parse()

	return cfg
}
