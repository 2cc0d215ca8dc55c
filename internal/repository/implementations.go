package repository

import (
	"github.com/docintel/answer-engine/internal/models"
	"gorm.io/gorm"
)

// QueryLogRepositoryImpl implements QueryLogRepository
type QueryLogRepositoryImpl struct {
	db *gorm.DB
}

func NewQueryLogRepository(db *gorm.DB) models.QueryLogRepository {
	return &QueryLogRepositoryImpl{db: db}
}

func (r *QueryLogRepositoryImpl) Create(entry *models.QueryLog) error {
	return r.db.Create(entry).Error
}

func (r *QueryLogRepositoryImpl) GetByQueryID(queryID string) (*models.QueryLog, error) {
	var entry models.QueryLog
	err := r.db.Where("query_id = ?", queryID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *QueryLogRepositoryImpl) GetByOrganization(orgID string, limit int) ([]models.QueryLog, error) {
	var entries []models.QueryLog
	err := r.db.Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *QueryLogRepositoryImpl) GetRecent(limit int) ([]models.QueryLog, error) {
	var entries []models.QueryLog
	err := r.db.Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// DocumentRepositoryImpl implements DocumentRepository
type DocumentRepositoryImpl struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) models.DocumentRepository {
	return &DocumentRepositoryImpl{db: db}
}

func (r *DocumentRepositoryImpl) GetByIDs(ids []string, orgID string) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.Where("document_id IN ? AND organization_id = ?", ids, orgID).
		Find(&docs).Error
	return docs, err
}

func (r *DocumentRepositoryImpl) GetByID(id, orgID string) (*models.Document, error) {
	var doc models.Document
	err := r.db.Where("document_id = ? AND organization_id = ?", id, orgID).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepositoryImpl) Upsert(doc *models.Document) error {
	var existing models.Document
	err := r.db.Where("document_id = ? AND organization_id = ?", doc.DocumentID, doc.OrganizationID).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(doc).Error
	}
	if err != nil {
		return err
	}

	existing.OriginalName = doc.OriginalName
	existing.TextContent = doc.TextContent
	existing.Summary = doc.Summary
	existing.Category = doc.Category
	existing.SourceURL = doc.SourceURL
	existing.ContentHash = doc.ContentHash
	return r.db.Save(&existing).Error
}

func (r *DocumentRepositoryImpl) Delete(id, orgID string) error {
	return r.db.Where("document_id = ? AND organization_id = ?", id, orgID).
		Delete(&models.Document{}).Error
}

// PopularQueryRepositoryImpl implements PopularQueryRepository
type PopularQueryRepositoryImpl struct {
	db *gorm.DB
}

func NewPopularQueryRepository(db *gorm.DB) models.PopularQueryRepository {
	return &PopularQueryRepositoryImpl{db: db}
}

func (r *PopularQueryRepositoryImpl) IncrementCount(queryText string) error {
	return r.db.Exec(`
		INSERT INTO popular_queries (query_text, search_count, last_searched, created_at, updated_at)
		VALUES (?, 1, NOW(), NOW(), NOW())
		ON CONFLICT (query_text)
		DO UPDATE SET
			search_count = popular_queries.search_count + 1,
			last_searched = NOW(),
			updated_at = NOW()
	`, queryText).Error
}

func (r *PopularQueryRepositoryImpl) GetTop(limit int) ([]models.PopularQuery, error) {
	var queries []models.PopularQuery
	err := r.db.Order("search_count DESC").
		Limit(limit).
		Find(&queries).Error
	return queries, err
}

func (r *PopularQueryRepositoryImpl) UpdateStats(queryText string, responseTime int) error {
	return r.db.Exec(`
		UPDATE popular_queries
		SET
			avg_response_time_ms = (avg_response_time_ms * (search_count - 1) + ?) / search_count,
			updated_at = NOW()
		WHERE query_text = ?
	`, responseTime, queryText).Error
}

// SystemHealthRepositoryImpl implements SystemHealthRepository
type SystemHealthRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemHealthRepository(db *gorm.DB) models.SystemHealthRepository {
	return &SystemHealthRepositoryImpl{db: db}
}

func (r *SystemHealthRepositoryImpl) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	return r.db.Exec(`
		INSERT INTO system_health (service_name, status, response_time_ms, error_message, checked_at)
		VALUES (?, ?, ?, ?, NOW())
	`, serviceName, status, responseTime, errorMsg).Error
}

func (r *SystemHealthRepositoryImpl) GetServiceHealth(serviceName string) (*models.SystemHealth, error) {
	var health models.SystemHealth
	err := r.db.Where("service_name = ?", serviceName).
		Order("checked_at DESC").
		First(&health).Error
	if err != nil {
		return nil, err
	}
	return &health, nil
}

func (r *SystemHealthRepositoryImpl) GetAllServicesHealth() ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.Raw(`
		SELECT DISTINCT ON (service_name) *
		FROM system_health
		ORDER BY service_name, checked_at DESC
	`).Scan(&health).Error
	return health, err
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	QueryLog     models.QueryLogRepository
	Document     models.DocumentRepository
	PopularQuery models.PopularQueryRepository
	SystemHealth models.SystemHealthRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		QueryLog:     NewQueryLogRepository(db),
		Document:     NewDocumentRepository(db),
		PopularQuery: NewPopularQueryRepository(db),
		SystemHealth: NewSystemHealthRepository(db),
	}
}
