package assets

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"ramen-kiosk/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves canned bytes and fails selected names.
type fakeSource struct {
	mu      sync.Mutex
	fetched []string
	failing map[string]bool
}

func (f *fakeSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, name)
	f.mu.Unlock()

	if f.failing[name] {
		return nil, fmt.Errorf("asset %s: unexpected status 404", name)
	}
	return []byte("image-bytes-" + name), nil
}

func testConfig() *model.Config {
	price := decimal.RequireFromString("5.00")
	return &model.Config{
		Menu: model.Menu{
			Bases: []model.Base{
				{ID: 1, Name: "Rice", Price: price, ImageURL: "rice.png"},
			},
			Toppings: []model.Topping{
				{ID: 10, Name: "Cheese", ImageURL: "cheese.png"},
				{ID: 11, Name: "Salsa", ImageURL: "salsa.png"},
			},
			SpiceLevels: []model.SpiceLevel{{Level: 0, Name: "Mild"}},
		},
		DefaultOrder: model.Order{Base: 1, SpiceLevel: 0},
	}
}

func TestPrefetcher_FetchesMenuAndChromeAssets(t *testing.T) {
	dir := t.TempDir()
	source := &fakeSource{}
	p := NewPrefetcher(source, dir, zerolog.Nop())

	reports := p.Prefetch(context.Background(), testConfig())

	// 3 menu images + 6 chrome assets.
	require.Len(t, reports, 9)
	for _, r := range reports {
		assert.NoError(t, r.Err, r.Name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "rice.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes-rice.png"), data)

	_, err = os.Stat(filepath.Join(dir, "bowl.png"))
	assert.NoError(t, err)
}

func TestPrefetcher_SkipsCachedAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rice.png"), []byte("cached"), 0o644))

	source := &fakeSource{}
	p := NewPrefetcher(source, dir, zerolog.Nop())

	reports := p.Prefetch(context.Background(), testConfig())
	require.Len(t, reports, 8)

	for _, name := range source.fetched {
		assert.NotEqual(t, "rice.png", name)
	}

	// The cached file is untouched.
	data, err := os.ReadFile(filepath.Join(dir, "rice.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("cached"), data)
}

func TestPrefetcher_PartialFailureDoesNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	source := &fakeSource{failing: map[string]bool{"cheese.png": true, "Logo.png": true}}
	p := NewPrefetcher(source, dir, zerolog.Nop())

	reports := p.Prefetch(context.Background(), testConfig())
	require.Len(t, reports, 9)

	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
			assert.Contains(t, []string{"cheese.png", "Logo.png"}, r.Name)
		}
	}
	assert.Equal(t, 2, failed)

	// Every other asset was still attempted and cached.
	_, err := os.Stat(filepath.Join(dir, "salsa.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "cheese.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestPrefetcher_NothingMissing(t *testing.T) {
	dir := t.TempDir()
	source := &fakeSource{}
	p := NewPrefetcher(source, dir, zerolog.Nop())

	require.Len(t, p.Prefetch(context.Background(), testConfig()), 9)

	// A second run finds everything cached.
	second := NewPrefetcher(&fakeSource{}, dir, zerolog.Nop())
	assert.Empty(t, second.Prefetch(context.Background(), testConfig()))
}

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/assets/rice.png" {
			w.Write([]byte("rice-bytes"))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	source := NewHTTPSource(srv.URL, zerolog.Nop())

	data, err := source.Fetch(context.Background(), "rice.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("rice-bytes"), data)

	_, err = source.Fetch(context.Background(), "missing.png")
	assert.ErrorContains(t, err, "unexpected status 404")
}
