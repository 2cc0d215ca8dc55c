package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docintel/answer-engine/internal/database"
	"github.com/docintel/answer-engine/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureHealthRepo struct {
	updates []models.SystemHealth
}

func (c *captureHealthRepo) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	c.updates = append(c.updates, models.SystemHealth{
		ServiceName:    serviceName,
		Status:         status,
		ResponseTimeMs: responseTime,
		ErrorMessage:   errorMsg,
	})
	return nil
}

func (c *captureHealthRepo) GetServiceHealth(serviceName string) (*models.SystemHealth, error) {
	return nil, nil
}

func (c *captureHealthRepo) GetAllServicesHealth() ([]models.SystemHealth, error) {
	return nil, nil
}

func newTestChecker(t *testing.T, repo models.SystemHealthRepository, backends map[string]string) *HealthChecker {
	t.Helper()
	return NewHealthChecker(&database.Manager{}, repo, logrus.New(), backends)
}

func TestCheckBackend_HealthyBelow500(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Auth errors still mean the host is up.
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	repo := &captureHealthRepo{}
	checker := newTestChecker(t, repo, nil)

	result := checker.CheckBackend("search_serper", server.URL)
	assert.Equal(t, "search_serper", result.Name)
	assert.Equal(t, "healthy", result.Status)
	assert.Empty(t, result.Error)

	require.Len(t, repo.updates, 1)
	assert.Equal(t, "search_serper", repo.updates[0].ServiceName)
	assert.Equal(t, "healthy", repo.updates[0].Status)
}

func TestCheckBackend_Unhealthy500(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	checker := newTestChecker(t, &captureHealthRepo{}, nil)

	result := checker.CheckBackend("llm_backend", server.URL)
	assert.Equal(t, "unhealthy", result.Status)
	assert.Contains(t, result.Error, "500")
}

func TestCheckBackend_Unreachable(t *testing.T) {
	checker := newTestChecker(t, &captureHealthRepo{}, nil)

	result := checker.CheckBackend("search_brave", "http://127.0.0.1:1")
	assert.Equal(t, "unhealthy", result.Status)
	assert.NotEmpty(t, result.Error)
}
