package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"GoCommando/core"
	"GoCommando/core/client"
	"GoCommando/core/database"
	"GoCommando/core/dispatch/handlers"
	"GoCommando/core/language"
	"GoCommando/core/loader"
	"GoCommando/core/metrics"
	"GoCommando/core/platform"

	"golang.org/x/sync/errgroup"
)

// Variables used for command line parameters
var (
	settingsFile string
)

func init() {
	flag.StringVar(&settingsFile, "c", "config-dev.json", "Configuration path")
	flag.Parse()
}

func main() {
	settings, err := core.LoadSettings(settingsFile)
	if err != nil {
		core.LogFatal("error loading settings,", err)
		return
	}

	db, err := database.Open(settings.Database)
	if err != nil {
		core.LogFatal(err)
		return
	}
	defer db.Close()

	lang, err := language.Default(settings.DefaultLocale)
	if err != nil {
		core.LogFatal(err)
		return
	}
	if settings.LocaleDirectory != "" {
		if err := lang.LoadFS(os.DirFS(settings.LocaleDirectory), "."); err != nil {
			core.LogFatal("error loading locales,", err)
			return
		}
	}

	// Create a new Discord session using the provided bot token.
	conn, err := platform.NewDiscord(settings.AuthToken)
	if err != nil {
		core.LogFatal("error creating Discord session,", err)
		return
	}

	catalog := loader.NewCatalog()
	opts := client.OptionsFromSettings(settings)
	opts.Loader = catalog
	opts.Blacklist = db
	opts.Language = lang
	if settings.MetricsListen != "" {
		opts.Metrics = metrics.New("gocommando")
	}
	bot, err := client.New(conn, opts)
	if err != nil {
		core.LogFatal(err)
		return
	}
	handlers.Register(catalog, settings.CommandPath, settings.EventPath, bot, db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open a websocket connection to Discord and begin listening.
	if err := bot.Setup(ctx); err != nil {
		core.LogFatal("error starting bot,", err)
		return
	}
	defer bot.Close()

	group, ctx := errgroup.WithContext(ctx)
	if settings.MetricsListen != "" {
		group.Go(func() error {
			return metrics.Serve(ctx, settings.MetricsListen, opts.Metrics)
		})
	}

	// Wait here until CTRL-C or other term signal is received.
	core.LogInfoF("Bot is now running.  Press CTRL-C to exit.")
	group.Go(func() error {
		<-ctx.Done()
		return nil
	})
	if err := group.Wait(); err != nil {
		core.LogError(err)
	}
}
