package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SridharA16/Ghostprotocol/internal/common"
	"github.com/SridharA16/Ghostprotocol/internal/domain"
	"github.com/SridharA16/Ghostprotocol/internal/lifecycle"
	"github.com/SridharA16/Ghostprotocol/internal/repository"
	"github.com/SridharA16/Ghostprotocol/pkg/cache"
	"github.com/SridharA16/Ghostprotocol/pkg/logger"
	"github.com/google/uuid"
)

// ContentService is the public API of the content lifecycle core.
// Every mutation is a single read-modify-write against one post: read
// the current record, apply the pure lifecycle function, persist with
// an optimistic version check. Callers that receive
// ErrConcurrentModification re-read and resubmit; the service never
// retries on its own.
type ContentService interface {
	Create(ctx context.Context, req *domain.CreatePostRequest) (*domain.Post, error)
	Get(ctx context.Context, id string) (*domain.Post, error)
	Edit(ctx context.Context, id, newContent, reason string) (*domain.Post, error)
	Schedule(ctx context.Context, id string, date time.Time) (*domain.Post, error)
	Unschedule(ctx context.Context, id string) (*domain.Post, error)
	PublishNow(ctx context.Context, id string) (*domain.Post, error)
	Archive(ctx context.Context, id string) (*domain.Post, error)
	Restore(ctx context.Context, id string) (*domain.Post, error)
	Delete(ctx context.Context, id string) error
	History(ctx context.Context, id string) (domain.EditHistory, error)

	ListByStatus(ctx context.Context, status domain.Status, page, limit int) ([]*domain.Post, *common.Meta, error)
	ListByType(ctx context.Context, contentType domain.ContentType, page, limit int) ([]*domain.Post, *common.Meta, error)
	ListByScheduledRange(ctx context.Context, from, to time.Time, page, limit int) ([]*domain.Post, *common.Meta, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Post, error)

	// SweepScheduled publishes every scheduled post whose date has
	// passed. Idempotent: posts already published no-op. Returns the
	// number of posts published.
	SweepScheduled(ctx context.Context) (int, error)
}

type contentService struct {
	repo           repository.PostRepository
	cache          cache.Service
	auth           Authorizer
	storageTimeout time.Duration
}

// NewContentService creates a ContentService. cache may be nil when
// Redis is unavailable; storageTimeout bounds every storage call.
func NewContentService(repo repository.PostRepository, cacheSvc cache.Service, auth Authorizer, storageTimeout time.Duration) ContentService {
	if auth == nil {
		auth = NewAllowAllAuthorizer()
	}
	if storageTimeout <= 0 {
		storageTimeout = 5 * time.Second
	}
	return &contentService{repo: repo, cache: cacheSvc, auth: auth, storageTimeout: storageTimeout}
}

// Create makes a new draft post. Fails ErrInvalidContentType for
// types outside the closed enumeration.
func (s *contentService) Create(ctx context.Context, req *domain.CreatePostRequest) (*domain.Post, error) {
	contentType := domain.ContentType(req.ContentType)
	if !contentType.Valid() {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidContentType, req.ContentType)
	}
	if req.Content == "" {
		return nil, fmt.Errorf("%w: content is required", common.ErrInvalidInput)
	}
	if err := s.auth.Authorize(ctx, "create", ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sourceData := req.SourceData
	if sourceData == nil {
		sourceData = domain.SourceData{}
	}
	post := &domain.Post{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Content:     req.Content,
		ContentType: contentType,
		Status:      domain.StatusDraft,
		SourceData:  sourceData,
		EditHistory: domain.EditHistory{},
		Platform:    req.Platform,
		Tags:        dedupeTags(req.Tags),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.invalidateLists(ctx)
	return post, nil
}

func (s *contentService) Get(ctx context.Context, id string) (*domain.Post, error) {
	if s.cache != nil {
		var cached domain.Post
		if err := s.cache.GetPost(ctx, id, &cached); err == nil {
			return &cached, nil
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetPost(ctx, post.ID, post); err != nil {
			logger.GetLogger().Warn().Err(err).Str("post_id", post.ID).Msg("cache set failed")
		}
	}
	return post, nil
}

func (s *contentService) Edit(ctx context.Context, id, newContent, reason string) (*domain.Post, error) {
	return s.mutate(ctx, id, "edit", func(p *domain.Post, now time.Time) (bool, error) {
		return lifecycle.RecordEdit(p, newContent, reason, now)
	})
}

func (s *contentService) Schedule(ctx context.Context, id string, date time.Time) (*domain.Post, error) {
	return s.mutate(ctx, id, "schedule", func(p *domain.Post, now time.Time) (bool, error) {
		if err := lifecycle.Schedule(p, date, now); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (s *contentService) Unschedule(ctx context.Context, id string) (*domain.Post, error) {
	return s.mutate(ctx, id, "unschedule", func(p *domain.Post, now time.Time) (bool, error) {
		if err := lifecycle.Unschedule(p, now); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (s *contentService) PublishNow(ctx context.Context, id string) (*domain.Post, error) {
	return s.mutate(ctx, id, "publish", func(p *domain.Post, now time.Time) (bool, error) {
		if err := lifecycle.PublishNow(p, now); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (s *contentService) Archive(ctx context.Context, id string) (*domain.Post, error) {
	return s.mutate(ctx, id, "archive", func(p *domain.Post, now time.Time) (bool, error) {
		if err := lifecycle.Archive(p, now); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (s *contentService) Restore(ctx context.Context, id string) (*domain.Post, error) {
	return s.mutate(ctx, id, "restore", func(p *domain.Post, now time.Time) (bool, error) {
		if err := lifecycle.Restore(p, now); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Delete removes the record and its history irrecoverably. Distinct
// from Archive, which is the preferred soft retirement.
func (s *contentService) Delete(ctx context.Context, id string) error {
	if err := s.auth.Authorize(ctx, "delete", id); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// History returns the append-only edit log, oldest first.
func (s *contentService) History(ctx context.Context, id string) (domain.EditHistory, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return post.EditHistory, nil
}

// listPage is the cached shape of one list query result.
type listPage struct {
	Posts []*domain.Post `json:"posts"`
	Total int64          `json:"total"`
}

func (s *contentService) ListByStatus(ctx context.Context, status domain.Status, page, limit int) ([]*domain.Post, *common.Meta, error) {
	if !status.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown status %q", common.ErrInvalidInput, status)
	}
	page, limit = clampPage(page, limit)
	key := fmt.Sprintf("status:%s:%d:%d", status, page, limit)
	if cached, ok := s.listFromCache(ctx, key); ok {
		return cached.Posts, &common.Meta{Page: page, Limit: limit, Total: cached.Total}, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	posts, total, err := s.repo.ListByStatus(ctx, status, page, limit)
	if err != nil {
		return nil, nil, err
	}
	s.storeList(ctx, key, listPage{Posts: posts, Total: total})
	return posts, &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

func (s *contentService) ListByType(ctx context.Context, contentType domain.ContentType, page, limit int) ([]*domain.Post, *common.Meta, error) {
	if !contentType.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", common.ErrInvalidContentType, contentType)
	}
	page, limit = clampPage(page, limit)
	key := fmt.Sprintf("type:%s:%d:%d", contentType, page, limit)
	if cached, ok := s.listFromCache(ctx, key); ok {
		return cached.Posts, &common.Meta{Page: page, Limit: limit, Total: cached.Total}, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	posts, total, err := s.repo.ListByType(ctx, contentType, page, limit)
	if err != nil {
		return nil, nil, err
	}
	s.storeList(ctx, key, listPage{Posts: posts, Total: total})
	return posts, &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

func (s *contentService) ListByScheduledRange(ctx context.Context, from, to time.Time, page, limit int) ([]*domain.Post, *common.Meta, error) {
	if to.Before(from) {
		return nil, nil, fmt.Errorf("%w: range end before start", common.ErrInvalidInput)
	}
	page, limit = clampPage(page, limit)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	posts, total, err := s.repo.ListByScheduledRange(ctx, from, to, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return posts, &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

func (s *contentService) ListRecent(ctx context.Context, limit int) ([]*domain.Post, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	key := fmt.Sprintf("recent:%d", limit)
	if cached, ok := s.listFromCache(ctx, key); ok {
		return cached.Posts, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	posts, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.storeList(ctx, key, listPage{Posts: posts, Total: int64(len(posts))})
	return posts, nil
}

// sweepBatchSize caps how many due posts one sweep picks up. Anything
// beyond the cap is collected by the next tick.
const sweepBatchSize = 100

func (s *contentService) SweepScheduled(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	findCtx, cancel := s.withTimeout(ctx)
	due, err := s.repo.FindDue(findCtx, now, sweepBatchSize)
	cancel()
	if err != nil {
		return 0, err
	}

	published := 0
	for _, post := range due {
		expected := post.Version
		if !lifecycle.ReachScheduledDate(post, now) {
			continue
		}
		opCtx, cancel := s.withTimeout(ctx)
		err := s.repo.UpdateIfUnchanged(opCtx, post, expected)
		cancel()
		if errors.Is(err, common.ErrConcurrentModification) || errors.Is(err, common.ErrNotFound) {
			// A competing writer already moved this post; the next
			// sweep re-evaluates whatever state it is in now.
			logger.GetLogger().Debug().Str("post_id", post.ID).Msg("sweep lost race, skipping")
			continue
		}
		if err != nil {
			return published, err
		}
		s.invalidate(ctx, post.ID)
		published++
	}
	return published, nil
}

// mutate is the shared read-apply-persist path for single-post
// mutations. apply reports whether the post changed; inert operations
// (a byte-identical edit) skip the write entirely.
func (s *contentService) mutate(ctx context.Context, id, action string, apply func(*domain.Post, time.Time) (bool, error)) (*domain.Post, error) {
	if err := s.auth.Authorize(ctx, action, id); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	expected := post.Version
	changed, err := apply(post, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !changed {
		return post, nil
	}

	if err := s.repo.UpdateIfUnchanged(ctx, post, expected); err != nil {
		return nil, err
	}
	s.invalidate(ctx, post.ID)
	return post, nil
}

func (s *contentService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storageTimeout)
}

func (s *contentService) listFromCache(ctx context.Context, key string) (*listPage, bool) {
	if s.cache == nil {
		return nil, false
	}
	var page listPage
	if err := s.cache.GetList(ctx, key, &page); err != nil {
		return nil, false
	}
	return &page, true
}

func (s *contentService) storeList(ctx context.Context, key string, page listPage) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetList(ctx, key, page); err != nil {
		logger.GetLogger().Warn().Err(err).Str("key", key).Msg("list cache set failed")
	}
}

func (s *contentService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePost(ctx, id); err != nil {
		logger.GetLogger().Warn().Err(err).Str("post_id", id).Msg("cache invalidation failed")
	}
	s.invalidateLists(ctx)
}

func (s *contentService) invalidateLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateLists(ctx); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("list cache invalidation failed")
	}
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func dedupeTags(tags []string) domain.StringList {
	if len(tags) == 0 {
		return domain.StringList{}
	}
	seen := make(map[string]struct{}, len(tags))
	out := make(domain.StringList, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
