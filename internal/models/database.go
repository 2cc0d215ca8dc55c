package models

// GORM models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Query lifecycle statuses.
const (
	QueryStatusCompleted   = "completed"
	QueryStatusFailed      = "failed"
	QueryStatusTimeout     = "timeout"
	QueryStatusRateLimited = "rate_limited"
)

// Query types. Only "search" is produced by the chat path today; the other
// values exist in stored data and stay valid.
const (
	QueryTypeSearch          = "search"
	QueryTypeFunctionCall    = "function_call"
	QueryTypeImageGeneration = "image_generation"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QueryLog is the usage/audit record written once per orchestration call.
// Rows are append-only; the query path never reads them back.
type QueryLog struct {
	BaseModel
	QueryID        string `json:"query_id" gorm:"uniqueIndex;not null"`
	OrganizationID string `json:"organization_id" gorm:"index;not null"`
	UserID         string `json:"user_id"`
	QueryText      string `json:"query_text" gorm:"not null"`
	QueryType      string `json:"query_type" gorm:"default:'search';check:query_type IN ('search','function_call','image_generation')"`
	ModelUsed      string `json:"model_used"`
	ResponseTimeMs int    `json:"response_time_ms"`
	TokensUsed     int    `json:"tokens_used"`
	CostCents      *int   `json:"cost_cents"`
	Status         string `json:"status" gorm:"default:'completed';check:status IN ('completed','failed','timeout','rate_limited')"`
	UserAgent      string `json:"user_agent"`
	IPAddress      string `json:"ip_address" gorm:"type:inet"`
}

// Document is an uploaded, text-extracted document owned by an organization.
// The chat path only reads it; writes come from the upload pipeline and the
// seeder.
type Document struct {
	BaseModel
	DocumentID     string `json:"document_id" gorm:"uniqueIndex;not null"`
	OrganizationID string `json:"organization_id" gorm:"index;not null"`
	OriginalName   string `json:"original_name" gorm:"not null"`
	TextContent    string `json:"text_content" gorm:"type:text"`
	Summary        string `json:"summary" gorm:"type:text"`
	Category       string `json:"category"`
	SourceURL      string `json:"source_url"`
	ContentHash    string `json:"content_hash"`
}

// PopularQuery tracks frequently asked questions for suggestions.
type PopularQuery struct {
	BaseModel
	QueryText         string    `json:"query_text" gorm:"unique;not null"`
	SearchCount       int       `json:"search_count" gorm:"default:1"`
	AvgResponseTimeMs int       `json:"avg_response_time_ms" gorm:"default:0"`
	LastSearched      time.Time `json:"last_searched" gorm:"default:NOW()"`
}

// SystemHealth represents service health monitoring
type SystemHealth struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceName    string    `json:"service_name" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;check:status IN ('healthy','degraded','unhealthy')"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at" gorm:"default:NOW()"`
}

// Reference returns the read-only projection handed to the query path.
func (d *Document) Reference() DocumentReference {
	return DocumentReference{
		ID:       d.DocumentID,
		Name:     d.OriginalName,
		Category: d.Category,
		Summary:  d.Summary,
	}
}

// Database interfaces for repository pattern
type QueryLogRepository interface {
	Create(entry *QueryLog) error
	GetByQueryID(queryID string) (*QueryLog, error)
	GetByOrganization(orgID string, limit int) ([]QueryLog, error)
	GetRecent(limit int) ([]QueryLog, error)
}

type DocumentRepository interface {
	GetByIDs(ids []string, orgID string) ([]Document, error)
	GetByID(id, orgID string) (*Document, error)
	Upsert(doc *Document) error
	Delete(id, orgID string) error
}

type PopularQueryRepository interface {
	IncrementCount(queryText string) error
	GetTop(limit int) ([]PopularQuery, error)
	UpdateStats(queryText string, responseTime int) error
}

type SystemHealthRepository interface {
	UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error
	GetServiceHealth(serviceName string) (*SystemHealth, error)
	GetAllServicesHealth() ([]SystemHealth, error)
}

// TableName methods for custom table names
func (QueryLog) TableName() string     { return "query_logs" }
func (Document) TableName() string     { return "documents" }
func (PopularQuery) TableName() string { return "popular_queries" }
func (SystemHealth) TableName() string { return "system_health" }

// Model validation methods
func (q *QueryLog) Validate() error {
	if q.QueryText == "" {
		return fmt.Errorf("query text is required")
	}
	if q.OrganizationID == "" {
		return fmt.Errorf("organization ID is required")
	}
	validStatuses := map[string]bool{
		QueryStatusCompleted:   true,
		QueryStatusFailed:      true,
		QueryStatusTimeout:     true,
		QueryStatusRateLimited: true,
	}
	if !validStatuses[q.Status] {
		return fmt.Errorf("invalid query status: %s", q.Status)
	}
	if q.ResponseTimeMs < 0 {
		return fmt.Errorf("response time cannot be negative")
	}
	return nil
}

func (d *Document) Validate() error {
	if d.DocumentID == "" {
		return fmt.Errorf("document ID is required")
	}
	if d.OrganizationID == "" {
		return fmt.Errorf("organization ID is required")
	}
	if d.OriginalName == "" {
		return fmt.Errorf("original name is required")
	}
	return nil
}

// GORM hooks
func (q *QueryLog) BeforeCreate(tx *gorm.DB) error {
	if q.Status == "" {
		q.Status = QueryStatusCompleted
	}
	if q.QueryType == "" {
		q.QueryType = QueryTypeSearch
	}
	return q.Validate()
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	return d.Validate()
}

func (d *Document) BeforeUpdate(tx *gorm.DB) error {
	return d.Validate()
}
