// Package documents exposes the organization-scoped document content store
// consumed by the query path.
package documents

import (
	"context"

	"github.com/docintel/answer-engine/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store reads previously uploaded, text-extracted documents. The query path
// never writes through it.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewStore(db *gorm.DB, logger *logrus.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// GetDocuments fetches the documents matching ids for one organization.
// Unknown ids and ids belonging to other organizations are silently skipped;
// result order follows the requested id order.
func (s *Store) GetDocuments(ctx context.Context, ids []string, orgID string) ([]models.Document, error) {
	if len(ids) == 0 {
		return []models.Document{}, nil
	}

	var docs []models.Document
	err := s.db.WithContext(ctx).
		Where("document_id IN ? AND organization_id = ?", ids, orgID).
		Find(&docs).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Document, len(docs))
	for _, d := range docs {
		byID[d.DocumentID] = d
	}

	ordered := make([]models.Document, 0, len(docs))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			ordered = append(ordered, d)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"requested": len(ids),
		"found":     len(ordered),
	}).Debug("Document lookup completed")

	return ordered, nil
}
