package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	crmapp "github.com/fitmanager/backend/internal/application/crm"
	ledgerapp "github.com/fitmanager/backend/internal/application/ledger"
	"github.com/fitmanager/backend/internal/domain/crm"
	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/domain/shared"
)

// stubAuditRepo swallows the audit records written alongside client mutations
type stubAuditRepo struct{}

func (s *stubAuditRepo) Create(context.Context, *ledger.AuditRecord) error { return nil }

func (s *stubAuditRepo) FindByEntityForTenant(context.Context, uuid.UUID, string, uuid.UUID) ([]*ledger.AuditRecord, error) {
	return nil, nil
}

func (s *stubAuditRepo) FindAllForTenant(context.Context, uuid.UUID, shared.Filter) ([]*ledger.AuditRecord, error) {
	return nil, nil
}

// MockClientRepository implements crm.ClientRepository for testing
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Client, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Client), args.Error(1)
}

func (m *MockClientRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter crm.ClientFilter) ([]crm.Client, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]crm.Client), args.Error(1)
}

func (m *MockClientRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter crm.ClientFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, client *crm.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Update(ctx context.Context, client *crm.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func setupClientTest() (*MockClientRepository, *gin.Engine, uuid.UUID) {
	repo := new(MockClientRepository)
	scope := ledgerapp.NewNoOpTransactionScope(nil, nil, nil, nil, &stubAuditRepo{}, repo)
	h := NewClientHandler(crmapp.NewClientService(scope))

	tenantID := uuid.New()
	userID := uuid.New()

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		setJWTContext(c, tenantID, userID)
		c.Next()
	})
	engine.POST("/clients", h.Create)
	engine.GET("/clients", h.List)
	engine.GET("/clients/:id", h.GetByID)
	engine.PUT("/clients/:id", h.Update)
	engine.DELETE("/clients/:id", h.Delete)
	engine.POST("/clients/:id/deactivate", h.Deactivate)

	return repo, engine, tenantID
}

func testClient(tenantID uuid.UUID) *crm.Client {
	client, _ := crm.NewClient(tenantID, "Ana", "Silva", "ana@example.com", "+351912345678")
	return client
}

func TestClientHandlerCreate(t *testing.T) {
	repo, engine, _ := setupClientTest()

	repo.On("Save", mock.Anything, mock.AnythingOfType("*crm.Client")).Return(nil)

	body, _ := json.Marshal(map[string]any{
		"first_name": "Ana",
		"last_name":  "Silva",
		"email":      "ana@example.com",
	})
	req := httptest.NewRequest("POST", "/clients", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Ana Silva", resp.Data["full_name"])

	repo.AssertExpectations(t)
}

func TestClientHandlerCreateValidationError(t *testing.T) {
	_, engine, _ := setupClientTest()

	body, _ := json.Marshal(map[string]any{"first_name": "Ana"})
	req := httptest.NewRequest("POST", "/clients", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "BAD_REQUEST")
}

func TestClientHandlerGetByID(t *testing.T) {
	repo, engine, tenantID := setupClientTest()

	client := testClient(tenantID)
	repo.On("FindByIDForTenant", mock.Anything, tenantID, client.ID).Return(client, nil)

	req := httptest.NewRequest("GET", "/clients/"+client.ID.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ana@example.com")
}

func TestClientHandlerGetByIDNotFound(t *testing.T) {
	repo, engine, tenantID := setupClientTest()

	clientID := uuid.New()
	repo.On("FindByIDForTenant", mock.Anything, tenantID, clientID).Return(nil, shared.ErrNotFound)

	req := httptest.NewRequest("GET", "/clients/"+clientID.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestClientHandlerGetByIDInvalidUUID(t *testing.T) {
	_, engine, _ := setupClientTest()

	req := httptest.NewRequest("GET", "/clients/not-a-uuid", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClientHandlerList(t *testing.T) {
	repo, engine, tenantID := setupClientTest()

	clients := []crm.Client{*testClient(tenantID), *testClient(tenantID)}
	repo.On("FindAllForTenant", mock.Anything, tenantID, mock.AnythingOfType("crm.ClientFilter")).Return(clients, nil)
	repo.On("CountForTenant", mock.Anything, tenantID, mock.AnythingOfType("crm.ClientFilter")).Return(int64(2), nil)

	req := httptest.NewRequest("GET", "/clients?page=1&page_size=10", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Meta    struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(2), resp.Meta.Total)
}

func TestClientHandlerUpdate(t *testing.T) {
	repo, engine, tenantID := setupClientTest()

	client := testClient(tenantID)
	repo.On("FindByIDForTenant", mock.Anything, tenantID, client.ID).Return(client, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*crm.Client")).Return(nil)

	body, _ := json.Marshal(map[string]any{
		"first_name": "Ana",
		"last_name":  "Pereira",
		"email":      "ana.pereira@example.com",
	})
	req := httptest.NewRequest("PUT", "/clients/"+client.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pereira")
}

func TestClientHandlerDeactivate(t *testing.T) {
	repo, engine, tenantID := setupClientTest()

	client := testClient(tenantID)
	repo.On("FindByIDForTenant", mock.Anything, tenantID, client.ID).Return(client, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*crm.Client")).Return(nil)

	req := httptest.NewRequest("POST", "/clients/"+client.ID.String()+"/deactivate", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active":false`)
}

func TestClientHandlerDelete(t *testing.T) {
	repo, engine, tenantID := setupClientTest()

	client := testClient(tenantID)
	repo.On("FindByIDForTenant", mock.Anything, tenantID, client.ID).Return(client, nil)
	repo.On("DeleteForTenant", mock.Anything, tenantID, client.ID).Return(nil)

	req := httptest.NewRequest("DELETE", "/clients/"+client.ID.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	repo.AssertExpectations(t)
}
