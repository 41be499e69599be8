package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/Adda-Baaj/wire-harvester/internal/config"
	"github.com/Adda-Baaj/wire-harvester/internal/crawler"
	"github.com/Adda-Baaj/wire-harvester/internal/extract"
	"github.com/Adda-Baaj/wire-harvester/internal/logger"
	"github.com/Adda-Baaj/wire-harvester/internal/store"
	"github.com/Adda-Baaj/wire-harvester/pkg/feed"
	"github.com/Adda-Baaj/wire-harvester/pkg/httpclient"
	"github.com/Adda-Baaj/wire-harvester/pkg/publishers"
)

const sourceName = "prnewswire"

var pageHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml",
	"Accept-Language": "en-US,en;q=0.8,es;q=0.5",
}

// app owns the long-lived resources of a harvester process.
type app struct {
	controller *crawler.Controller
	cache      *httpclient.Cache
	store      *store.Store
}

func newApp(ctx context.Context, cfg config.Config, log logger.Logger) (a *app, err error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a = &app{}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if a.cache, err = httpclient.OpenCache(cfg.CacheDir); err != nil {
		return nil, err
	}
	if a.store, err = store.Open(cfg.StorePath); err != nil {
		return nil, err
	}

	opts := []crawler.Option{}
	if cfg.PublishersFile != "" {
		pubs, err := publishers.Load(ctx, cfg.PublishersFile, log)
		if err != nil {
			return nil, fmt.Errorf("load publishers: %w", err)
		}
		log.InfoObj("publishers loaded", "publishers_loaded", map[string]any{"count": len(pubs)})
		opts = append(opts, crawler.WithNotifier(publishers.NewDispatcher(sourceName, pubs, log)))
	}

	client := httpclient.NewRestyClient(cfg.HTTPTimeout, cfg.UserAgent)
	pages := httpclient.NewCachingClient(httpclient.NewRateLimitedClient(client, cfg.RequestInterval), a.cache, log)
	a.controller = crawler.NewController(
		feed.NewReader(client, nil),
		crawler.NewHTTPFetcher(pages, pageHeaders, log),
		extract.NewAssembler(log, extract.WithLocation(loc)),
		a.store,
		log,
		opts...,
	)
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	return errors.Join(errs...)
}
