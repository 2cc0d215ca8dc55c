// Package orchestrator coordinates the fan-out to search and document
// sources, context assembly and answer generation for one query.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/docintel/answer-engine/internal/assemble"
	"github.com/docintel/answer-engine/internal/llm"
	"github.com/docintel/answer-engine/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SearchSource is the degraded-by-construction search surface: every call
// settles with results or empty, never an error.
type SearchSource interface {
	Search(ctx context.Context, query string) []models.SearchResult
	Images(ctx context.Context, query string) []models.ImageResult
	Videos(ctx context.Context, query string) []models.VideoResult
}

// DocumentSource reads organization-scoped documents by id list.
type DocumentSource interface {
	GetDocuments(ctx context.Context, ids []string, orgID string) ([]models.Document, error)
}

// UsageRecorder accepts a usage record without blocking the request path.
type UsageRecorder interface {
	Record(entry *models.QueryLog)
}

// Options bound each query's fan-out and context assembly.
type Options struct {
	SearchTimeout time.Duration
	ContextOpts   assemble.Options
}

// Request is one query to answer.
type Request struct {
	Query           string
	DocumentIDs     []string
	DocumentContext string
	OrganizationID  string
	UserID          string
	UserAgent       string
	IPAddress       string
}

// Orchestrator runs the per-query pipeline. It holds no per-query state;
// every call allocates its own context block and result.
type Orchestrator struct {
	searcher  SearchSource
	docs      DocumentSource
	generator *llm.Generator
	recorder  UsageRecorder
	opts      Options
	logger    *logrus.Logger
}

func New(searcher SearchSource, docs DocumentSource, generator *llm.Generator, recorder UsageRecorder, opts Options, logger *logrus.Logger) *Orchestrator {
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = 10 * time.Second
	}
	return &Orchestrator{
		searcher:  searcher,
		docs:      docs,
		generator: generator,
		recorder:  recorder,
		opts:      opts,
		logger:    logger,
	}
}

// Answer runs the full pipeline: fan out to web/image/video search and the
// document store concurrently, join on all of them, assemble the bounded
// context, generate the answer, and hand a usage record to the recorder
// without blocking. When sink is non-nil the answer streams through it.
// Answer never returns nil and never propagates collaborator errors; a
// generation failure yields a degraded result with Error set.
func (o *Orchestrator) Answer(ctx context.Context, req Request, sink func(chunk string)) *models.AnswerResult {
	start := time.Now()

	var (
		searchResults []models.SearchResult
		images        []models.ImageResult
		videos        []models.VideoResult
		docs          []models.Document
	)

	// The four legs settle independently; none can fail the query. Each
	// already degrades to empty on error, so a plain join is enough.
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		legCtx, cancel := context.WithTimeout(ctx, o.opts.SearchTimeout)
		defer cancel()
		searchResults = o.searcher.Search(legCtx, req.Query)
	}()

	go func() {
		defer wg.Done()
		legCtx, cancel := context.WithTimeout(ctx, o.opts.SearchTimeout)
		defer cancel()
		images = o.searcher.Images(legCtx, req.Query)
	}()

	go func() {
		defer wg.Done()
		legCtx, cancel := context.WithTimeout(ctx, o.opts.SearchTimeout)
		defer cancel()
		videos = o.searcher.Videos(legCtx, req.Query)
	}()

	if len(req.DocumentIDs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			legCtx, cancel := context.WithTimeout(ctx, o.opts.SearchTimeout)
			defer cancel()
			fetched, err := o.docs.GetDocuments(legCtx, req.DocumentIDs, req.OrganizationID)
			if err != nil {
				o.logger.WithError(err).Warn("Document lookup failed, continuing without documents")
				return
			}
			docs = fetched
		}()
	}

	wg.Wait()

	excerpts := make([]assemble.DocumentExcerpt, 0, len(docs))
	sources := make([]models.DocumentReference, 0, len(docs))
	for i := range docs {
		ref := docs[i].Reference()
		sources = append(sources, ref)
		excerpts = append(excerpts, assemble.DocumentExcerpt{
			Ref:     ref,
			Content: docs[i].TextContent,
		})
	}

	block := assemble.Assemble(searchResults, excerpts, req.DocumentContext, o.opts.ContextOpts)

	generation := o.generator.Generate(ctx, req.Query, block, sink)

	if searchResults == nil {
		searchResults = []models.SearchResult{}
	}
	if images == nil {
		images = []models.ImageResult{}
	}
	if videos == nil {
		videos = []models.VideoResult{}
	}

	result := &models.AnswerResult{
		LLMResponse:   generation.Text,
		Sources:       sources,
		SearchResults: searchResults,
		Images:        images,
		Videos:        videos,
		Error:         generation.Failed,
		ModelUsed:     o.generator.Model(),
		TokensUsed:    generation.TokensUsed,
	}

	elapsed := time.Since(start)
	o.logger.WithFields(logrus.Fields{
		"organization":   req.OrganizationID,
		"search_results": len(searchResults),
		"sources":        len(sources),
		"degraded":       generation.Failed,
		"response_time":  elapsed.Milliseconds(),
	}).Info("Query answered")

	o.record(ctx, req, result, elapsed)

	return result
}

func (o *Orchestrator) record(ctx context.Context, req Request, result *models.AnswerResult, elapsed time.Duration) {
	if o.recorder == nil {
		return
	}

	status := models.QueryStatusCompleted
	if result.Error {
		status = models.QueryStatusFailed
		if ctx.Err() == context.DeadlineExceeded {
			status = models.QueryStatusTimeout
		}
	}

	o.recorder.Record(&models.QueryLog{
		QueryID:        uuid.NewString(),
		OrganizationID: req.OrganizationID,
		UserID:         req.UserID,
		QueryText:      req.Query,
		QueryType:      models.QueryTypeSearch,
		ModelUsed:      result.ModelUsed,
		ResponseTimeMs: int(elapsed.Milliseconds()),
		TokensUsed:     result.TokensUsed,
		Status:         status,
		UserAgent:      req.UserAgent,
		IPAddress:      req.IPAddress,
	})
}
