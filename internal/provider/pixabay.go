package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/config"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
)

// PixabayClient implements Provider for the Pixabay image API
type PixabayClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type pixabayHit struct {
	ID              int    `json:"id"`
	PreviewURL      string `json:"previewURL"`
	WebformatURL    string `json:"webformatURL"`
	LargeImageURL   string `json:"largeImageURL"`
	WebformatWidth  int    `json:"webformatWidth"`
	WebformatHeight int    `json:"webformatHeight"`
}

type pixabayResponse struct {
	Hits []pixabayHit `json:"hits"`
}

// NewPixabayClient creates a new Pixabay API client
func NewPixabayClient(cfg *config.PixabayConfig) *PixabayClient {
	return &PixabayClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

func (c *PixabayClient) Name() model.MediaSource {
	return model.SourcePixabay
}

// IsConfigured returns true if an API key is set
func (c *PixabayClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Search queries Pixabay for vertical photos matching the keyword
func (c *PixabayClient) Search(ctx context.Context, keyword string, perPage int) ([]model.MediaItem, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", keyword)
	q.Set("image_type", "photo")
	q.Set("orientation", "vertical")
	q.Set("per_page", strconv.Itoa(perPage))

	endpoint := c.baseURL + "/?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pixabay API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed pixabayResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	items := make([]model.MediaItem, 0, len(parsed.Hits))
	for _, hit := range parsed.Hits {
		items = append(items, model.MediaItem{
			ID:         strconv.Itoa(hit.ID),
			Source:     model.SourcePixabay,
			PreviewURL: hit.PreviewURL,
			MediumURL:  hit.WebformatURL,
			LargeURL:   hit.LargeImageURL,
			Width:      hit.WebformatWidth,
			Height:     hit.WebformatHeight,
		})
	}
	return items, nil
}
