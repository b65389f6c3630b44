package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SridharA16/Ghostprotocol/internal/common"
	"github.com/SridharA16/Ghostprotocol/internal/domain"
	"gorm.io/gorm"
)

// PostRepository is the durable storage collaborator for posts: keyed
// reads, version-guarded writes, and indexed lookups. Implementations
// must provide single-row atomicity so concurrent mutations of one
// post surface as ErrConcurrentModification instead of a lost update.
type PostRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	Create(ctx context.Context, post *domain.Post) error
	// UpdateIfUnchanged persists post only if the stored row still
	// carries expectedVersion, bumping the version on success.
	UpdateIfUnchanged(ctx context.Context, post *domain.Post, expectedVersion uint64) error
	Delete(ctx context.Context, id string) error

	ListByStatus(ctx context.Context, status domain.Status, page, limit int) ([]*domain.Post, int64, error)
	ListByType(ctx context.Context, contentType domain.ContentType, page, limit int) ([]*domain.Post, int64, error)
	ListByScheduledRange(ctx context.Context, from, to time.Time, page, limit int) ([]*domain.Post, int64, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Post, error)

	// FindDue returns scheduled posts whose scheduled date is at or
	// before now, oldest first.
	FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a GORM-backed PostRepository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// translate maps driver-level failures onto the service error taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return common.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	default:
		return err
	}
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	return translate(r.db.WithContext(ctx).Create(post).Error)
}

func (r *postRepository) UpdateIfUnchanged(ctx context.Context, post *domain.Post, expectedVersion uint64) error {
	next := *post
	next.Version = expectedVersion + 1

	res := r.db.WithContext(ctx).
		Model(&domain.Post{ID: post.ID}).
		Where("version = ?", expectedVersion).
		Select("*").Omit("id", "created_at").
		Updates(&next)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		// Row either vanished or moved past expectedVersion.
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Post{}).Where("id = ?", post.ID).Count(&count).Error; err != nil {
			return translate(err)
		}
		if count == 0 {
			return common.ErrNotFound
		}
		return common.ErrConcurrentModification
	}
	post.Version = next.Version
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Post{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *postRepository) ListByStatus(ctx context.Context, status domain.Status, page, limit int) ([]*domain.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Post{}).Where("status = ?", status)
	return r.page(query, "created_at DESC", page, limit)
}

func (r *postRepository) ListByType(ctx context.Context, contentType domain.ContentType, page, limit int) ([]*domain.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Post{}).Where("content_type = ?", contentType)
	return r.page(query, "created_at DESC", page, limit)
}

func (r *postRepository) ListByScheduledRange(ctx context.Context, from, to time.Time, page, limit int) ([]*domain.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("status = ? AND scheduled_date >= ? AND scheduled_date <= ?", domain.StatusScheduled, from, to)
	return r.page(query, "scheduled_date ASC", page, limit)
}

func (r *postRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

func (r *postRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_date <= ?", domain.StatusScheduled, now).
		Order("scheduled_date ASC").Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

// page runs a counted, ordered, paginated query. Queries are
// restartable: the same page can be re-issued after a failure.
func (r *postRepository) page(query *gorm.DB, order string, page, limit int) ([]*domain.Post, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var posts []*domain.Post
	offset := (page - 1) * limit
	if err := query.Order(order).Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, translate(err)
	}
	return posts, total, nil
}
