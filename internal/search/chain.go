package search

import (
	"context"

	"github.com/docintel/answer-engine/internal/models"
	"github.com/sirupsen/logrus"
)

// Chain tries providers in configured order and falls through to the next on
// failure. When every provider fails, callers get empty results and no
// error: "no results" is a valid, non-exceptional outcome and must not fail
// the query.
type Chain struct {
	providers []Provider
	logger    *logrus.Logger
}

func NewChain(logger *logrus.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, logger: logger}
}

// Providers returns the configured providers in order.
func (c *Chain) Providers() []Provider { return c.providers }

func (c *Chain) Search(ctx context.Context, query string) []models.SearchResult {
	for _, p := range c.providers {
		results, err := p.Search(ctx, query)
		if err != nil {
			c.logFailure(p, "web", err)
			continue
		}
		return results
	}
	return []models.SearchResult{}
}

func (c *Chain) Images(ctx context.Context, query string) []models.ImageResult {
	for _, p := range c.providers {
		results, err := p.Images(ctx, query)
		if err != nil {
			c.logFailure(p, "images", err)
			continue
		}
		return results
	}
	return []models.ImageResult{}
}

func (c *Chain) Videos(ctx context.Context, query string) []models.VideoResult {
	for _, p := range c.providers {
		results, err := p.Videos(ctx, query)
		if err != nil {
			c.logFailure(p, "videos", err)
			continue
		}
		return results
	}
	return []models.VideoResult{}
}

func (c *Chain) logFailure(p Provider, kind string, err error) {
	c.logger.WithError(err).WithFields(logrus.Fields{
		"provider": p.Name(),
		"kind":     kind,
	}).Warn("Search provider failed, trying next in chain")
}
