package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/blogem/toolshelf/audit"
	"github.com/blogem/toolshelf/models"
	"github.com/blogem/toolshelf/repositories/mocks"
)

const validBody = `{
	"categories": ["Dev"],
	"apps": [{"name": "Grafana", "href": "grafana.example.com", "category": "Dev", "tags": ["metrics"]}]
}`

// CatalogServiceTestSuite is a test suite for the catalog service
type CatalogServiceTestSuite struct {
	suite.Suite
	service         CatalogService
	mockCatalogRepo *mocks.MockCatalogRepository
	audit           *audit.Logger
}

// SetupTest sets up the test suite before each test
func (suite *CatalogServiceTestSuite) SetupTest() {
	suite.mockCatalogRepo = mocks.NewMockCatalogRepository(suite.T())
	suite.audit = audit.NewLogger(audit.DefaultCapacity, nil)
	suite.service = NewCatalogService(suite.mockCatalogRepo, suite.audit)
}

// TestSaveCatalog_Success tests that a valid body is normalised and persisted
func (suite *CatalogServiceTestSuite) TestSaveCatalog_Success() {
	var written *models.Catalog
	suite.mockCatalogRepo.EXPECT().
		Write(mock.Anything, mock.AnythingOfType("*models.Catalog")).
		Run(func(_ context.Context, c *models.Catalog) { written = c }).
		Return(nil)

	// Act
	result, err := suite.service.SaveCatalog(context.Background(), []byte(validBody), "203.0.113.1")

	// Assert
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Success)
	assert.Equal(suite.T(), models.CatalogStats{Categories: 1, Apps: 1}, result.Stats)
	assert.False(suite.T(), result.Timestamp.IsZero())
	assert.Equal(suite.T(), "https://grafana.example.com", written.Apps[0].Href)

	updates := suite.audit.LogsByEventKind(models.EventCatalogUpdated, 0)
	assert.Len(suite.T(), updates, 1)
	assert.Equal(suite.T(), "203.0.113.1", updates[0].IPAddress)
}

// TestSaveCatalog_ValidationFailure tests that invalid payloads never reach the repository
func (suite *CatalogServiceTestSuite) TestSaveCatalog_ValidationFailure() {
	body := `{"categories":["Dev"],"apps":[{"name":"Router","href":"http://192.168.1.1/admin","category":"Dev"}]}`

	// Act
	result, err := suite.service.SaveCatalog(context.Background(), []byte(body), "203.0.113.1")

	// Assert
	assert.Nil(suite.T(), result)
	var verrs models.ValidationErrors
	assert.True(suite.T(), errors.As(err, &verrs))
	assert.Contains(suite.T(), err.Error(), "SSRF")
	assert.Len(suite.T(), suite.audit.LogsByEventKind(models.EventValidationFailed, 0), 1)
	suite.mockCatalogRepo.AssertNotCalled(suite.T(), "Write", mock.Anything, mock.Anything)
}

// TestSaveCatalog_MalformedJSON tests that non-JSON bodies are validation errors
func (suite *CatalogServiceTestSuite) TestSaveCatalog_MalformedJSON() {
	_, err := suite.service.SaveCatalog(context.Background(), []byte(`{"categories":`), "203.0.113.1")

	var verrs models.ValidationErrors
	assert.True(suite.T(), errors.As(err, &verrs))
}

// TestSaveCatalog_PersistenceFailure tests that storage errors are wrapped and audited
func (suite *CatalogServiceTestSuite) TestSaveCatalog_PersistenceFailure() {
	suite.mockCatalogRepo.EXPECT().Write(mock.Anything, mock.Anything).Return(errors.New("disk full"))
	suite.mockCatalogRepo.EXPECT().Path().Return("data/catalog.json")

	// Act
	result, err := suite.service.SaveCatalog(context.Background(), []byte(validBody), "203.0.113.1")

	// Assert
	assert.Nil(suite.T(), result)
	var perr *models.PersistenceError
	assert.True(suite.T(), errors.As(err, &perr))
	assert.Contains(suite.T(), err.Error(), "disk full")
	assert.Len(suite.T(), suite.audit.LogsByEventKind(models.EventPersistenceFailed, 0), 1)
}

// TestGetCatalog_NotFound tests that the repository sentinel passes through
func (suite *CatalogServiceTestSuite) TestGetCatalog_NotFound() {
	suite.mockCatalogRepo.EXPECT().Read(mock.Anything).Return(nil, models.ErrCatalogNotFound)

	_, err := suite.service.GetCatalog(context.Background())

	assert.ErrorIs(suite.T(), err, models.ErrCatalogNotFound)
}

// TestGetCatalog_Success tests that the stored catalog is returned unchanged
func (suite *CatalogServiceTestSuite) TestGetCatalog_Success() {
	stored := &models.Catalog{Categories: []string{"Dev"}, Apps: []models.App{}}
	suite.mockCatalogRepo.EXPECT().Read(mock.Anything).Return(stored, nil)

	got, err := suite.service.GetCatalog(context.Background())

	assert.NoError(suite.T(), err)
	assert.Same(suite.T(), stored, got)
}

// TestCatalogServiceTestSuite runs the catalog service test suite
func TestCatalogServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceTestSuite))
}
