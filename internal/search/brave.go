package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/docintel/answer-engine/internal/models"
	"github.com/sirupsen/logrus"
)

const defaultBraveBaseURL = "https://api.search.brave.com/res/v1"

// BraveProvider adapts the Brave Search API.
type BraveProvider struct {
	baseURL    string
	apiKey     string
	maxResults int
	maxMedia   int
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewBraveProvider(apiKey string, timeout time.Duration, maxResults, maxMedia int, logger *logrus.Logger) *BraveProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BraveProvider{
		baseURL:    defaultBraveBaseURL,
		apiKey:     apiKey,
		maxResults: maxResults,
		maxMedia:   maxMedia,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (p *BraveProvider) SetBaseURL(url string) { p.baseURL = url }

// BaseURL returns the API endpoint, used as the health probe target.
func (p *BraveProvider) BaseURL() string { return p.baseURL }

func (p *BraveProvider) Name() string { return "brave" }

type braveWebResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
			Profile     struct {
				Img string `json:"img"`
			} `json:"profile"`
		} `json:"results"`
	} `json:"web"`
}

type braveMediaResponse struct {
	Results []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"results"`
}

func (p *BraveProvider) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	var payload braveWebResponse
	if err := p.makeRequest(ctx, "/web/search", query, &payload); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(payload.Web.Results))
	for _, item := range payload.Web.Results {
		if item.URL == "" {
			continue
		}
		results = append(results, models.SearchResult{
			Title:   item.Title,
			Link:    item.URL,
			Snippet: item.Description,
			Favicon: item.Profile.Img,
		})
	}
	return capWeb(results, p.maxResults), nil
}

func (p *BraveProvider) Images(ctx context.Context, query string) ([]models.ImageResult, error) {
	var payload braveMediaResponse
	if err := p.makeRequest(ctx, "/images/search", query, &payload); err != nil {
		return nil, err
	}

	results := make([]models.ImageResult, 0, len(payload.Results))
	for _, item := range payload.Results {
		if item.URL == "" {
			continue
		}
		results = append(results, models.ImageResult{Title: item.Title, Link: item.URL})
	}
	return capImages(results, p.maxMedia), nil
}

func (p *BraveProvider) Videos(ctx context.Context, query string) ([]models.VideoResult, error) {
	var payload braveMediaResponse
	if err := p.makeRequest(ctx, "/videos/search", query, &payload); err != nil {
		return nil, err
	}

	results := make([]models.VideoResult, 0, len(payload.Results))
	for _, item := range payload.Results {
		if item.URL == "" {
			continue
		}
		results = append(results, models.VideoResult{Title: item.Title, Link: item.URL})
	}
	return capVideos(results, p.maxMedia), nil
}

func (p *BraveProvider) makeRequest(ctx context.Context, endpoint, query string, result interface{}) error {
	reqURL := fmt.Sprintf("%s%s?q=%s", p.baseURL, endpoint, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Subscription-Token", p.apiKey)
	req.Header.Set("Accept", "application/json")

	p.logger.WithFields(logrus.Fields{
		"provider": p.Name(),
		"endpoint": endpoint,
	}).Debug("Making search provider request")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brave request failed with status %d: %s", resp.StatusCode, string(responseBody))
	}

	if err := json.Unmarshal(responseBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}
