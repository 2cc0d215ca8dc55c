package search

import (
	"context"

	"github.com/docintel/answer-engine/internal/models"
)

// Result caps enforced by every provider.
const (
	MaxWebResults   = 10
	MaxMediaResults = 4
)

// Provider is a web-search backend reached over HTTP. Implementations
// normalize the provider payload at the boundary; malformed or error
// responses surface as an error here and are degraded to empty results by
// the Chain.
type Provider interface {
	Name() string
	BaseURL() string
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Images(ctx context.Context, query string) ([]models.ImageResult, error)
	Videos(ctx context.Context, query string) ([]models.VideoResult, error)
}

func capWeb(results []models.SearchResult, max int) []models.SearchResult {
	if max <= 0 || max > MaxWebResults {
		max = MaxWebResults
	}
	if len(results) > max {
		return results[:max]
	}
	return results
}

func capImages(results []models.ImageResult, max int) []models.ImageResult {
	if max <= 0 || max > MaxMediaResults {
		max = MaxMediaResults
	}
	if len(results) > max {
		return results[:max]
	}
	return results
}

func capVideos(results []models.VideoResult, max int) []models.VideoResult {
	if max <= 0 || max > MaxMediaResults {
		max = MaxMediaResults
	}
	if len(results) > max {
		return results[:max]
	}
	return results
}
