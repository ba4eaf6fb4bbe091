package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/shared"
	"github.com/erp/storesync/internal/infrastructure/logger"
	"github.com/erp/storesync/internal/infrastructure/scheduler"
	"github.com/erp/storesync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) result(args mock.Arguments) (*integration.PassResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.PassResult), args.Error(1)
}

func (m *MockSyncService) RunImport(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error) {
	return m.result(m.Called(ctx, channelID))
}

func (m *MockSyncService) RunExport(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error) {
	return m.result(m.Called(ctx, channelID))
}

func (m *MockSyncService) ImportReferenceData(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error) {
	return m.result(m.Called(ctx, channelID))
}

func (m *MockSyncService) ImportLanguages(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error) {
	return m.result(m.Called(ctx, channelID))
}

func (m *MockSyncService) ImportOrderStates(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error) {
	return m.result(m.Called(ctx, channelID))
}

func (m *MockSyncService) TestConnection(ctx context.Context, channelID uuid.UUID) error {
	return m.Called(ctx, channelID).Error(0)
}

type MockChannelReader struct {
	mock.Mock
}

func (m *MockChannelReader) FindByID(ctx context.Context, id uuid.UUID) (*integration.Channel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Channel), args.Error(1)
}

func (m *MockChannelReader) List(ctx context.Context) ([]integration.Channel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Channel), args.Error(1)
}

type staticJobs []*scheduler.SyncJob

func (s staticJobs) GetJobHistory(limit int) []*scheduler.SyncJob {
	if limit < len(s) {
		return s[:limit]
	}
	return s
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

func setupRouter(h *SyncHandler) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(logger.RequestIDKey, "req-1")
		c.Next()
	})
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestSyncHandler_PassRoutes(t *testing.T) {
	channelID := uuid.New()
	routes := map[string]string{
		"import-orders":         "RunImport",
		"export-orders":         "RunExport",
		"import-reference-data": "ImportReferenceData",
		"import-languages":      "ImportLanguages",
		"import-order-states":   "ImportOrderStates",
	}

	for path, method := range routes {
		t.Run(path, func(t *testing.T) {
			svc := new(MockSyncService)
			result := integration.NewPassResult(channelID, integration.OperationImportOrders)
			result.Created = 2
			result.AddException(integration.ResourceOrders, 7, integration.CountryNotFoundError("XX"))
			svc.On(method, mock.Anything, channelID).Return(result, nil)

			r := setupRouter(NewSyncHandler(svc, new(MockChannelReader), nil))
			w, env := do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/channels/%s/%s", channelID, path))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, env.Success)
			var got integration.PassResult
			require.NoError(t, json.Unmarshal(env.Data, &got))
			assert.Equal(t, 2, got.Created)
			require.Len(t, got.Exceptions, 1)
			assert.Equal(t, integration.CodeCountryNotFound, got.Exceptions[0].Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestSyncHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		kind   string
	}{
		{"incomplete settings", integration.ErrSettingsIncomplete, http.StatusUnprocessableEntity, integration.CodeSettingsIncomplete, "CONFIGURATION"},
		{"prerequisite", integration.ErrOrderStatesNotImported, http.StatusUnprocessableEntity, integration.CodeOrderStatesMissing, "PREREQUISITE_MISSING"},
		{"auth", integration.ErrAuthFailed, http.StatusBadGateway, integration.CodeAuthFailed, "CONNECTIVITY"},
		{"wrapped url", fmt.Errorf("listing: %w", integration.ErrWrongURL.Wrap(errors.New("dial"))), http.StatusBadGateway, integration.CodeWrongURL, "CONNECTIVITY"},
		{"duplicate", integration.DuplicateCombinationError(41, "eu"), http.StatusConflict, integration.CodeDuplicateCombination, "DUPLICATE_IDENTITY"},
		{"malformed", integration.MalformedRecordError(integration.ResourceOrders, 3, "missing id"), http.StatusUnprocessableEntity, integration.CodeMalformedRecord, "MALFORMED_RECORD"},
		{"not found", integration.ErrChannelNotFound, http.StatusNotFound, dto.ErrCodeNotFound, ""},
		{"locked", integration.ErrPassLocked, http.StatusConflict, dto.ErrCodeConflict, ""},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, dto.ErrCodeTimeout, ""},
		{"domain", shared.NewDomainError("INVALID_STATE", "bad state"), http.StatusUnprocessableEntity, "INVALID_STATE", ""},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrCodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			channelID := uuid.New()
			svc := new(MockSyncService)
			svc.On("RunExport", mock.Anything, channelID).Return(nil, tt.err)

			r := setupRouter(NewSyncHandler(svc, new(MockChannelReader), nil))
			w, env := do(t, r, http.MethodPost, "/api/v1/channels/"+channelID.String()+"/export-orders")

			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Equal(t, tt.kind, env.Error.Kind)
			assert.Equal(t, "req-1", env.Error.RequestID)
		})
	}
}

func TestSyncHandler_InvalidChannelID(t *testing.T) {
	svc := new(MockSyncService)
	r := setupRouter(NewSyncHandler(svc, new(MockChannelReader), nil))

	w, env := do(t, r, http.MethodPost, "/api/v1/channels/not-a-uuid/import-orders")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, env.Error.Code)
	svc.AssertNotCalled(t, "RunImport", mock.Anything, mock.Anything)
}

func TestSyncHandler_TestConnection(t *testing.T) {
	channelID := uuid.New()
	svc := new(MockSyncService)
	svc.On("TestConnection", mock.Anything, channelID).Return(nil).Once()
	svc.On("TestConnection", mock.Anything, channelID).Return(integration.ErrAuthFailed).Once()
	r := setupRouter(NewSyncHandler(svc, new(MockChannelReader), nil))
	path := "/api/v1/channels/" + channelID.String() + "/test-connection"

	w, env := do(t, r, http.MethodPost, path)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Connection successful"}`, string(env.Data))

	w, env = do(t, r, http.MethodPost, path)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Connection Failed! Please check URL and Key", env.Error.Message)
}

func TestSyncHandler_Channels(t *testing.T) {
	cursor := time.Date(2021, 6, 15, 12, 0, 0, 0, time.UTC)
	channel := integration.Channel{
		ID:                  uuid.New(),
		Name:                "eu-shop",
		BaseURL:             "https://shop.example",
		Key:                 "SECRETKEY",
		Timezone:            "Europe/Paris",
		Enabled:             true,
		LastOrderImportTime: &cursor,
	}
	channels := new(MockChannelReader)
	channels.On("List", mock.Anything).Return([]integration.Channel{channel}, nil)
	channels.On("FindByID", mock.Anything, channel.ID).Return(&channel, nil)
	missing := uuid.New()
	channels.On("FindByID", mock.Anything, missing).Return(nil, integration.ErrChannelNotFound)

	r := setupRouter(NewSyncHandler(new(MockSyncService), channels, nil))

	w, env := do(t, r, http.MethodGet, "/api/v1/channels")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "SECRETKEY")
	var list []dto.ChannelResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "eu-shop", list[0].Name)
	require.NotNil(t, list[0].LastOrderImportTime)
	assert.True(t, cursor.Equal(*list[0].LastOrderImportTime))
	assert.Nil(t, list[0].LastOrderExportTime)

	w, _ = do(t, r, http.MethodGet, "/api/v1/channels/"+channel.ID.String())
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/channels/"+missing.String())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSyncHandler_Jobs(t *testing.T) {
	t.Run("not mounted without a scheduler", func(t *testing.T) {
		r := setupRouter(NewSyncHandler(new(MockSyncService), new(MockChannelReader), nil))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("lists history", func(t *testing.T) {
		failed := scheduler.NewSyncJob(uuid.New(), integration.OperationImportOrders)
		failed.Start()
		failed.Fail("boom")
		done := scheduler.NewSyncJob(uuid.New(), integration.OperationExportOrders)
		done.Start()
		done.Complete(integration.NewPassResult(done.ChannelID, integration.OperationExportOrders))

		r := setupRouter(NewSyncHandler(new(MockSyncService), new(MockChannelReader), staticJobs{failed, done}))

		w, env := do(t, r, http.MethodGet, "/api/v1/jobs?limit=1")
		assert.Equal(t, http.StatusOK, w.Code)
		var jobs []dto.JobResponse
		require.NoError(t, json.Unmarshal(env.Data, &jobs))
		require.Len(t, jobs, 1)
		assert.Equal(t, "FAILED", jobs[0].Status)
		assert.Equal(t, "boom", jobs[0].Error)

		w, _ = do(t, r, http.MethodGet, "/api/v1/jobs?limit=zero")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
