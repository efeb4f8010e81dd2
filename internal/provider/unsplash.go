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

// UnsplashClient implements Provider for the Unsplash photo API
type UnsplashClient struct {
	httpClient *http.Client
	baseURL    string
	accessKey  string
}

type unsplashPhoto struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URLs   struct {
		Thumb   string `json:"thumb"`
		Small   string `json:"small"`
		Regular string `json:"regular"`
	} `json:"urls"`
}

type unsplashResponse struct {
	Results []unsplashPhoto `json:"results"`
}

// NewUnsplashClient creates a new Unsplash API client
func NewUnsplashClient(cfg *config.UnsplashConfig) *UnsplashClient {
	return &UnsplashClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   cfg.BaseURL,
		accessKey: cfg.AccessKey,
	}
}

func (c *UnsplashClient) Name() model.MediaSource {
	return model.SourceUnsplash
}

// IsConfigured returns true if an access key is set
func (c *UnsplashClient) IsConfigured() bool {
	return c.accessKey != ""
}

// Search queries Unsplash for portrait photos matching the keyword
func (c *UnsplashClient) Search(ctx context.Context, keyword string, perPage int) ([]model.MediaItem, error) {
	q := url.Values{}
	q.Set("query", keyword)
	q.Set("orientation", "portrait")
	q.Set("per_page", strconv.Itoa(perPage))

	endpoint := c.baseURL + "/search/photos?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

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
		return nil, fmt.Errorf("unsplash API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed unsplashResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	items := make([]model.MediaItem, 0, len(parsed.Results))
	for _, photo := range parsed.Results {
		items = append(items, model.MediaItem{
			ID:         photo.ID,
			Source:     model.SourceUnsplash,
			PreviewURL: photo.URLs.Thumb,
			MediumURL:  photo.URLs.Small,
			LargeURL:   photo.URLs.Regular,
			Width:      photo.Width,
			Height:     photo.Height,
		})
	}
	return items, nil
}
