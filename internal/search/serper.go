package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docintel/answer-engine/internal/models"
	"github.com/sirupsen/logrus"
)

const defaultSerperBaseURL = "https://google.serper.dev"

// SerperProvider adapts the Serper.dev search API.
type SerperProvider struct {
	baseURL    string
	apiKey     string
	maxResults int
	maxMedia   int
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewSerperProvider(apiKey string, timeout time.Duration, maxResults, maxMedia int, logger *logrus.Logger) *SerperProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SerperProvider{
		baseURL:    defaultSerperBaseURL,
		apiKey:     apiKey,
		maxResults: maxResults,
		maxMedia:   maxMedia,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (p *SerperProvider) SetBaseURL(url string) { p.baseURL = url }

// BaseURL returns the API endpoint, used as the health probe target.
func (p *SerperProvider) BaseURL() string { return p.baseURL }

func (p *SerperProvider) Name() string { return "serper" }

type serperWebResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
		Favicon string `json:"favicon"`
	} `json:"organic"`
}

type serperImageResponse struct {
	Images []struct {
		Title    string `json:"title"`
		ImageURL string `json:"imageUrl"`
	} `json:"images"`
}

type serperVideoResponse struct {
	Videos []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"videos"`
}

func (p *SerperProvider) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	var payload serperWebResponse
	if err := p.makeRequest(ctx, "/search", query, &payload); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(payload.Organic))
	for _, item := range payload.Organic {
		if item.Link == "" {
			continue
		}
		results = append(results, models.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
			Favicon: item.Favicon,
		})
	}
	return capWeb(results, p.maxResults), nil
}

func (p *SerperProvider) Images(ctx context.Context, query string) ([]models.ImageResult, error) {
	var payload serperImageResponse
	if err := p.makeRequest(ctx, "/images", query, &payload); err != nil {
		return nil, err
	}

	results := make([]models.ImageResult, 0, len(payload.Images))
	for _, item := range payload.Images {
		if item.ImageURL == "" {
			continue
		}
		results = append(results, models.ImageResult{Title: item.Title, Link: item.ImageURL})
	}
	return capImages(results, p.maxMedia), nil
}

func (p *SerperProvider) Videos(ctx context.Context, query string) ([]models.VideoResult, error) {
	var payload serperVideoResponse
	if err := p.makeRequest(ctx, "/videos", query, &payload); err != nil {
		return nil, err
	}

	results := make([]models.VideoResult, 0, len(payload.Videos))
	for _, item := range payload.Videos {
		if item.Link == "" {
			continue
		}
		results = append(results, models.VideoResult{Title: item.Title, Link: item.Link})
	}
	return capVideos(results, p.maxMedia), nil
}

func (p *SerperProvider) makeRequest(ctx context.Context, endpoint, query string, result interface{}) error {
	url := p.baseURL + endpoint

	jsonData, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-API-KEY", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	p.logger.WithFields(logrus.Fields{
		"provider": p.Name(),
		"url":      url,
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
		return fmt.Errorf("serper request failed with status %d: %s", resp.StatusCode, string(responseBody))
	}

	if err := json.Unmarshal(responseBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}
