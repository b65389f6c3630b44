package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SridharA16/Ghostprotocol/internal/common"
	"github.com/SridharA16/Ghostprotocol/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockContentService is a mock implementation of service.ContentService
type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) Create(ctx context.Context, req *domain.CreatePostRequest) (*domain.Post, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockContentService) Get(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockContentService) Edit(ctx context.Context, id, newContent, reason string) (*domain.Post, error) {
	args := m.Called(ctx, id, newContent, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockContentService) Schedule(ctx context.Context, id string, date time.Time) (*domain.Post, error) {
	args := m.Called(ctx, id, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockContentService) Unschedule(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockContentService) PublishNow(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockContentService) Archive(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockContentService) Restore(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockContentService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockContentService) History(ctx context.Context, id string) (domain.EditHistory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.EditHistory), args.Error(1)
}

func (m *MockContentService) ListByStatus(ctx context.Context, status domain.Status, page, limit int) ([]*domain.Post, *common.Meta, error) {
	args := m.Called(ctx, status, page, limit)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*domain.Post), args.Get(1).(*common.Meta), args.Error(2)
}

func (m *MockContentService) ListByType(ctx context.Context, contentType domain.ContentType, page, limit int) ([]*domain.Post, *common.Meta, error) {
	args := m.Called(ctx, contentType, page, limit)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*domain.Post), args.Get(1).(*common.Meta), args.Error(2)
}

func (m *MockContentService) ListByScheduledRange(ctx context.Context, from, to time.Time, page, limit int) ([]*domain.Post, *common.Meta, error) {
	args := m.Called(ctx, from, to, page, limit)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*domain.Post), args.Get(1).(*common.Meta), args.Error(2)
}

func (m *MockContentService) ListRecent(ctx context.Context, limit int) ([]*domain.Post, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Post), args.Error(1)
}

func (m *MockContentService) SweepScheduled(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func setupRouter(svc *MockContentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewPostHandler(svc)
	posts := router.Group("/api/v1/posts")
	posts.POST("", h.CreatePost)
	posts.GET("", h.ListPosts)
	posts.GET("/:id", h.GetPost)
	posts.PUT("/:id", h.EditPost)
	posts.DELETE("/:id", h.DeletePost)
	posts.GET("/:id/history", h.GetHistory)
	posts.POST("/:id/schedule", h.SchedulePost)
	posts.POST("/:id/publish", h.PublishPost)
	posts.POST("/:id/archive", h.ArchivePost)
	return router
}

func TestCreatePost_Created(t *testing.T) {
	svc := new(MockContentService)
	router := setupRouter(svc)

	post := &domain.Post{ID: "p1", Content: "Hello", Status: domain.StatusDraft}
	svc.On("Create", mock.Anything, mock.AnythingOfType("*domain.CreatePostRequest")).Return(post, nil)

	body, _ := json.Marshal(gin.H{"content": "Hello", "content_type": "create_post"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 201, w.Code)
	var resp common.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "p1", data["id"])
	assert.Equal(t, "draft", data["status"])
}

func TestCreatePost_MissingContent(t *testing.T) {
	svc := new(MockContentService)
	router := setupRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewReader([]byte(`{"content_type":"create_post"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	svc.AssertNotCalled(t, "Create")
}

func TestCreatePost_InvalidContentType(t *testing.T) {
	svc := new(MockContentService)
	router := setupRouter(svc)

	svc.On("Create", mock.Anything, mock.Anything).Return(nil, common.ErrInvalidContentType)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewReader([]byte(`{"content":"x","content_type":"bogus"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestGetPost_NotFound(t *testing.T) {
	svc := new(MockContentService)
	router := setupRouter(svc)

	svc.On("Get", mock.Anything, "ghost").Return(nil, common.ErrNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/ghost", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestEditPost_Conflict(t *testing.T) {
	svc := new(MockContentService)
	router := setupRouter(svc)

	svc.On("Edit", mock.Anything, "p1", "new", "").Return(nil, common.ErrConcurrentModification)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/posts/p1", bytes.NewReader([]byte(`{"content":"new"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 409, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")
}

func TestEditPost_ArchivedRejected(t *testing.T) {
	svc := new(MockContentService)
	router := setupRouter(svc)

	svc.On("Edit", mock.Anything, "p1", "new", "").Return(nil, common.ErrInvalidTransition)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/posts/p1", bytes.NewReader([]byte(`{"content":"new"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 409, w.Code)
}

func TestSchedulePost_PastDate(t *testing.T) {
	svc := new(MockContentService)
	router := setupRouter(svc)

	svc.On("Schedule", mock.Anything, "p1", mock.AnythingOfType("time.Time")).Return(nil, common.ErrInvalidSchedule)

	body, _ := json.Marshal(gin.H{"scheduled_date": "2020-01-01T00:00:00Z"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/p1/schedule", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestDeletePost_NoContent(t *testing.T) {
	svc := new(MockContentService)
	router := setupRouter(svc)

	svc.On("Delete", mock.Anything, "p1").Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/posts/p1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 204, w.Code)
	svc.AssertExpectations(t)
}

func TestGetHistory(t *testing.T) {
	svc := new(MockContentService)
	router := setupRouter(svc)

	history := domain.EditHistory{{PreviousContent: "v1", EditedAt: time.Now().UTC()}}
	svc.On("History", mock.Anything, "p1").Return(history, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/p1/history", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "v1")
}

func TestListPosts_ByStatus(t *testing.T) {
	svc := new(MockContentService)
	router := setupRouter(svc)

	posts := []*domain.Post{{ID: "p1", Status: domain.StatusScheduled}}
	meta := &common.Meta{Page: 1, Limit: 20, Total: 1}
	svc.On("ListByStatus", mock.Anything, domain.StatusScheduled, 1, 20).Return(posts, meta, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts?status=scheduled", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp common.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestListPosts_BadRangeTimestamp(t *testing.T) {
	svc := new(MockContentService)
	router := setupRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts?from=yesterday&to=tomorrow", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	svc.AssertNotCalled(t, "ListByScheduledRange")
}

func TestListPosts_DefaultRecent(t *testing.T) {
	svc := new(MockContentService)
	router := setupRouter(svc)

	svc.On("ListRecent", mock.Anything, 20).Return([]*domain.Post{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	svc.AssertExpectations(t)
}

func TestPublishPost_StorageUnavailable(t *testing.T) {
	svc := new(MockContentService)
	router := setupRouter(svc)

	svc.On("PublishNow", mock.Anything, "p1").Return(nil, common.ErrStorageUnavailable)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/p1/publish", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 503, w.Code)
	assert.Contains(t, w.Body.String(), "SERVICE_UNAVAILABLE")
}
