package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/docintel/answer-engine/internal/database"
	"github.com/docintel/answer-engine/internal/models"
	"github.com/docintel/answer-engine/internal/orchestrator"
	"github.com/docintel/answer-engine/internal/repository"
	"github.com/docintel/answer-engine/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxQueryLength = 2000

// Answerer runs the query pipeline for one request.
type Answerer interface {
	Answer(ctx context.Context, req orchestrator.Request, sink func(chunk string)) *models.AnswerResult
}

type ChatHandler struct {
	answerer    Answerer
	repoManager *repository.RepositoryManager
	cache       *database.Cache
	cacheTTL    time.Duration
	logger      *logrus.Logger
}

func NewChatHandler(
	answerer Answerer,
	repoManager *repository.RepositoryManager,
	cache *database.Cache,
	cacheTTL time.Duration,
	logger *logrus.Logger,
) *ChatHandler {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ChatHandler{
		answerer:    answerer,
		repoManager: repoManager,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// HandleChat answers one query and returns the full response as JSON.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	startTime := time.Now()

	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	orgID := c.GetString("organization_id")

	h.logger.WithFields(logrus.Fields{
		"query":        req.Query,
		"organization": orgID,
		"documents":    len(req.DocumentIDs),
		"ip_address":   c.ClientIP(),
	}).Info("Processing chat request")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 90*time.Second)
	defer cancel()

	// Inline document context is caller-specific free text; only cache
	// responses that are reproducible from query + stored documents.
	cacheKey := ""
	if h.cache != nil && req.DocumentContext == "" {
		cacheKey = h.generateCacheKey(orgID, req.Query, req.DocumentIDs)
		if cached, err := h.cache.GetCachedChatResponse(ctx, cacheKey); err == nil {
			h.logger.Debug("Chat response served from cache")
			cached.ResponseTime = int(time.Since(startTime).Milliseconds())
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	result := h.answerer.Answer(ctx, orchestrator.Request{
		Query:           req.Query,
		DocumentIDs:     req.DocumentIDs,
		DocumentContext: req.DocumentContext,
		OrganizationID:  orgID,
		UserID:          c.GetString("user_id"),
		UserAgent:       c.GetHeader("User-Agent"),
		IPAddress:       c.ClientIP(),
	}, nil)

	responseTime := time.Since(startTime)
	response := toChatResponse(result, responseTime)

	if cacheKey != "" && !result.Error {
		if err := h.cache.CacheChatResponse(ctx, cacheKey, &response, h.cacheTTL); err != nil {
			h.logger.WithError(err).Warn("Failed to cache chat response")
		}
	}

	go h.updatePopularQueries(req.Query, responseTime)

	c.JSON(http.StatusOK, response)
}

// HandleChatStream answers one query over SSE, emitting chunk events as the
// generator produces them and one final done event carrying the sources and
// media. Client disconnect cancels the backend stream.
func (h *ChatHandler) HandleChatStream(c *gin.Context) {
	startTime := time.Now()

	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	orgID := c.GetString("organization_id")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	flusher, canFlush := c.Writer.(http.Flusher)

	sink := func(chunk string) {
		data, err := json.Marshal(chunk)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "event: chunk\ndata: %s\n\n", data)
		if canFlush {
			flusher.Flush()
		}
	}

	result := h.answerer.Answer(c.Request.Context(), orchestrator.Request{
		Query:           req.Query,
		DocumentIDs:     req.DocumentIDs,
		DocumentContext: req.DocumentContext,
		OrganizationID:  orgID,
		UserID:          c.GetString("user_id"),
		UserAgent:       c.GetHeader("User-Agent"),
		IPAddress:       c.ClientIP(),
	}, sink)

	response := toChatResponse(result, time.Since(startTime))
	// A degraded generation never reached the sink; deliver the apology as
	// a normal chunk so the client always renders something.
	if result.Error {
		sink(result.LLMResponse)
	}

	data, err := json.Marshal(response)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal stream summary")
		return
	}
	fmt.Fprintf(c.Writer, "event: done\ndata: %s\n\n", data)
	if canFlush {
		flusher.Flush()
	}

	go h.updatePopularQueries(req.Query, time.Since(startTime))
}

// HandleSuggestions returns popular queries matching the q prefix.
func (h *ChatHandler) HandleSuggestions(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query parameter 'q' is required", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if limit > 10 {
		limit = 10
	}

	suggestions, err := h.repoManager.PopularQuery.GetTop(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get suggestions")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get suggestions", nil)
		return
	}

	filtered := make([]models.PopularQuery, 0)
	queryLower := strings.ToLower(query)

	for _, suggestion := range suggestions {
		if strings.Contains(strings.ToLower(suggestion.QueryText), queryLower) {
			filtered = append(filtered, suggestion)
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "Suggestions retrieved", filtered)
}

// Helper methods

// bindRequest validates the chat body. Validation failures respond
// immediately and never reach a collaborator.
func (h *ChatHandler) bindRequest(c *gin.Context) (models.ChatRequest, bool) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Debug("Invalid chat request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return req, false
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query cannot be empty", nil)
		return req, false
	}
	if len(req.Query) > maxQueryLength {
		utils.ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("Query too long (max %d characters)", maxQueryLength), nil)
		return req, false
	}

	return req, true
}

func (h *ChatHandler) generateCacheKey(orgID, query string, documentIDs []string) string {
	return utils.MD5Hash(orgID + "|" + strings.ToLower(query) + "|" + strings.Join(documentIDs, ","))
}

func (h *ChatHandler) updatePopularQueries(query string, responseTime time.Duration) {
	if h.repoManager == nil {
		return
	}
	if err := h.repoManager.PopularQuery.IncrementCount(query); err != nil {
		h.logger.WithError(err).Error("Failed to update popular queries")
		return
	}
	if err := h.repoManager.PopularQuery.UpdateStats(query, int(responseTime.Milliseconds())); err != nil {
		h.logger.WithError(err).Error("Failed to update query stats")
	}
}

func toChatResponse(result *models.AnswerResult, responseTime time.Duration) models.ChatResponse {
	return models.ChatResponse{
		LLMResponse:   result.LLMResponse,
		Sources:       result.Sources,
		SearchResults: result.SearchResults,
		Images:        result.Images,
		Videos:        result.Videos,
		Error:         result.Error,
		ResponseTime:  int(responseTime.Milliseconds()),
	}
}
