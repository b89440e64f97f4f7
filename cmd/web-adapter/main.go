package main

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"shloka/internal/assemble"
	"shloka/internal/catalog"
	"shloka/internal/config"
	"shloka/internal/delivery"
	"shloka/internal/fetch"
	"shloka/internal/logger"
	"shloka/internal/middleware"
	"shloka/internal/prefs"
)

func main() {
	cfg := config.Get()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05"})
	if cfg.WebAdapter.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	store, err := prefs.Open(cfg.Prefs.DBPath)
	if err != nil {
		log.WithError(err).Warn("prefs unavailable, favorites will not persist")
		store = nil
	}

	var fetcher fetch.Fetcher
	if cfg.Library.DataDir != "" {
		fetcher = fetch.NewDir(cfg.Library.DataDir, cfg.Library.PathPattern)
	} else {
		fetcher = fetch.NewHTTP(cfg.Library.BaseURL, cfg.Library.PathPattern, cfg.Fetch.Timeout(), log)
	}

	ctx := context.Background()
	done := logger.Track(ctx, "startup assembly")
	verses, err := assemble.Build(ctx, fetcher, cfg.Library.VerseCount, assemble.Options{
		Threads:       cfg.Fetch.Threads,
		RatePerSecond: cfg.Fetch.RatePerSecond,
		Log:           log,
	})
	if err != nil {
		log.Fatalf("startup fetch failed: %v", err)
	}
	done()

	var cat *catalog.Store
	if store != nil {
		defer store.Close()
		cat = catalog.New(verses, store, log)
	} else {
		cat = catalog.New(verses, nil, log)
	}

	srv := &delivery.Server{Log: log, Catalog: cat, PageSize: cfg.CLI.PageSize}
	handler := middleware.CORS(middleware.RequestID(middleware.RequestLogger(log)(srv.Routes())))

	addr := cfg.WebAdapter.Address()
	log.Infof("🌐 Web Adapter started on http://%s (%d verses)", addr, cat.Len())
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("failed to start web server: %v", err)
	}
}
