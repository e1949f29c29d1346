// Package assets prefetches the menu's image files before the kiosk UI
// becomes interactive. Fetch failures are reported per item, never fatal.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Source fetches one asset's raw bytes by name.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// httpSource implements Source against the server's /assets route.
type httpSource struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPSource creates a Source fetching from baseURL/assets/<name>.
func NewHTTPSource(baseURL string, logger zerolog.Logger) Source {
	return &httpSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With().Str("component", "asset-source").Logger(),
	}
}

// Fetch downloads one asset.
func (s *httpSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	url := fmt.Sprintf("%s/assets/%s", s.baseURL, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build asset request for %s: %w", name, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn().Err(err).Str("asset", name).Msg("asset fetch failed")
		return nil, fmt.Errorf("failed to fetch asset %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn().Int("status", resp.StatusCode).Str("asset", name).Msg("asset fetch refused")
		return nil, fmt.Errorf("asset %s: unexpected status %d", name, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset %s: %w", name, err)
	}

	return data, nil
}
