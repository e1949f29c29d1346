package assets

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"ramen-kiosk/internal/model"

	"github.com/rs/zerolog"
)

// chromeAssets are the fixed UI images every kiosk needs regardless of menu
// content.
var chromeAssets = []string{
	"Logo.png",
	"background.png",
	"spice.png",
	"bowl.png",
	"applepay.png",
	"googlepay.png",
}

// defaultConcurrency bounds parallel fetches during startup.
const defaultConcurrency = 4

// Report is the outcome for one attempted asset.
type Report struct {
	Name string
	Err  error
}

// Prefetcher downloads missing assets into a local directory before the UI
// becomes interactive.
type Prefetcher struct {
	source      Source
	dir         string
	concurrency int
	logger      zerolog.Logger
}

// NewPrefetcher creates a prefetcher writing into dir.
func NewPrefetcher(source Source, dir string, logger zerolog.Logger) *Prefetcher {
	return &Prefetcher{
		source:      source,
		dir:         dir,
		concurrency: defaultConcurrency,
		logger:      logger.With().Str("component", "prefetcher").Logger(),
	}
}

// Prefetch fetches every asset the config references that is not already
// cached, plus the fixed chrome set, and returns one report per attempted
// item. Individual failures never abort the batch: startup proceeds once all
// items have been attempted, and the caller decides what a missing image
// means for its screen.
func (p *Prefetcher) Prefetch(ctx context.Context, cfg *model.Config) []Report {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		p.logger.Error().Err(err).Str("dir", p.dir).Msg("failed to create asset directory")
		return []Report{{Name: p.dir, Err: err}}
	}

	missing := p.missingAssets(cfg)
	if len(missing) == 0 {
		p.logger.Info().Msg("all assets already cached")
		return nil
	}

	p.logger.Info().
		Int("count", len(missing)).
		Int("concurrency", p.concurrency).
		Msg("prefetching assets")

	reports := make([]Report, len(missing))
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for i, name := range missing {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			reports[i] = Report{Name: name, Err: p.fetchOne(ctx, name)}
		}(i, name)
	}

	wg.Wait()

	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
	}
	p.logger.Info().
		Int("fetched", len(missing)-failed).
		Int("failed", failed).
		Msg("asset prefetch finished")

	return reports
}

// fetchOne downloads and persists a single asset.
func (p *Prefetcher) fetchOne(ctx context.Context, name string) error {
	data, err := p.source.Fetch(ctx, name)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(p.dir, name), data, 0o644); err != nil {
		p.logger.Warn().Err(err).Str("asset", name).Msg("failed to write asset")
		return err
	}

	p.logger.Debug().Str("asset", name).Int("bytes", len(data)).Msg("asset cached")
	return nil
}

// missingAssets lists the menu's image references plus the chrome set,
// deduplicated, minus whatever is already on disk.
func (p *Prefetcher) missingAssets(cfg *model.Config) []string {
	var names []string
	seen := make(map[string]struct{})

	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		if _, err := os.Stat(filepath.Join(p.dir, name)); err == nil {
			return
		}
		names = append(names, name)
	}

	for _, b := range cfg.Menu.Bases {
		add(b.ImageURL)
	}
	for _, t := range cfg.Menu.Toppings {
		add(t.ImageURL)
	}
	for _, name := range chromeAssets {
		add(name)
	}

	return names
}
