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

// PexelsClient implements Provider for the Pexels photo API
type PexelsClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type pexelsPhoto struct {
	ID     int `json:"id"`
	Width  int `json:"width"`
	Height int `json:"height"`
	Src    struct {
		Tiny   string `json:"tiny"`
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"src"`
}

type pexelsResponse struct {
	Photos []pexelsPhoto `json:"photos"`
}

// NewPexelsClient creates a new Pexels API client
func NewPexelsClient(cfg *config.PexelsConfig) *PexelsClient {
	return &PexelsClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

func (c *PexelsClient) Name() model.MediaSource {
	return model.SourcePexels
}

// IsConfigured returns true if an API key is set
func (c *PexelsClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Search queries Pexels for portrait photos matching the keyword
func (c *PexelsClient) Search(ctx context.Context, keyword string, perPage int) ([]model.MediaItem, error) {
	q := url.Values{}
	q.Set("query", keyword)
	q.Set("orientation", "portrait")
	q.Set("per_page", strconv.Itoa(perPage))

	endpoint := c.baseURL + "/v1/search?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

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
		return nil, fmt.Errorf("pexels API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed pexelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	items := make([]model.MediaItem, 0, len(parsed.Photos))
	for _, photo := range parsed.Photos {
		items = append(items, model.MediaItem{
			ID:         strconv.Itoa(photo.ID),
			Source:     model.SourcePexels,
			PreviewURL: photo.Src.Tiny,
			MediumURL:  photo.Src.Medium,
			LargeURL:   photo.Src.Large,
			Width:      photo.Width,
			Height:     photo.Height,
		})
	}
	return items, nil
}
