package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ContentType classifies what kind of content a post carries.
// Immutable after creation; changing type means creating a new post.
type ContentType string

const (
	ContentTypeCreatePost ContentType = "create_post"
	ContentTypeLeadMagnet ContentType = "lead_magnet"
)

// Valid reports whether t is a member of the closed enumeration.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeCreatePost, ContentTypeLeadMagnet:
		return true
	}
	return false
}

// Status is the lifecycle state of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// SourceData is the opaque structured payload that generated a post
// (prompt, template parameters, etc). Written once at creation and
// passed through unchanged; the lifecycle core never interprets it.
type SourceData map[string]interface{}

// Value implements driver.Valuer, serializing to a JSON column.
func (d SourceData) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (d *SourceData) Scan(value interface{}) error {
	if value == nil {
		*d = SourceData{}
		return nil
	}
	b, err := asBytes(value)
	if err != nil {
		return fmt.Errorf("source_data: %w", err)
	}
	if len(b) == 0 {
		*d = SourceData{}
		return nil
	}
	return json.Unmarshal(b, d)
}

// EditHistoryEntry is a frozen snapshot of the content as it stood
// immediately before an overwrite.
type EditHistoryEntry struct {
	PreviousContent string    `json:"previous_content"`
	EditedAt        time.Time `json:"edited_at"`
	Reason          string    `json:"reason,omitempty"`
}

// EditHistory is the append-only ordered log of prior content
// snapshots, oldest first. Entries are never mutated or removed.
type EditHistory []EditHistoryEntry

// Value implements driver.Valuer.
func (h EditHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (h *EditHistory) Scan(value interface{}) error {
	if value == nil {
		*h = EditHistory{}
		return nil
	}
	b, err := asBytes(value)
	if err != nil {
		return fmt.Errorf("edit_history: %w", err)
	}
	if len(b) == 0 {
		*h = EditHistory{}
		return nil
	}
	return json.Unmarshal(b, h)
}

// StringList is a JSON-mapped list of free-text labels. Order is not
// significant.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	b, err := asBytes(value)
	if err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	if len(b) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(b, l)
}

func asBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", value)
	}
}

// Post represents one managed content item and its metadata.
//
// Invariants maintained by the lifecycle core:
//   - ID, ContentType, SourceData and CreatedAt never change after creation
//   - EditHistory only grows, oldest first
//   - OriginalContent is set at most once (first content-changing edit)
//   - ScheduledDate is non-nil iff Status == scheduled
//   - UpdatedAt strictly increases with each accepted mutation
type Post struct {
	ID              string      `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Title           string      `gorm:"column:title;type:varchar(255)" json:"title,omitempty"`
	Content         string      `gorm:"column:content;type:mediumtext" json:"content"`
	ContentType     ContentType `gorm:"column:content_type;type:varchar(20);index" json:"content_type"`
	Status          Status      `gorm:"column:status;type:varchar(20);index" json:"status"`
	SourceData      SourceData  `gorm:"column:source_data;type:json" json:"source_data"`
	OriginalContent *string     `gorm:"column:original_content;type:mediumtext" json:"original_content,omitempty"`
	EditHistory     EditHistory `gorm:"column:edit_history;type:json" json:"edit_history"`
	ScheduledDate   *time.Time  `gorm:"column:scheduled_date;index" json:"scheduled_date,omitempty"`
	PublishedAt     *time.Time  `gorm:"column:published_at" json:"published_at,omitempty"`
	Platform        string      `gorm:"column:platform;type:varchar(50)" json:"platform,omitempty"`
	Tags            StringList  `gorm:"column:tags;type:json" json:"tags"`
	Version         uint64      `gorm:"column:version;not null;default:1" json:"version"`
	// Timestamps are managed by the lifecycle core, not by GORM:
	// auto-stamping would overwrite the strictly-increasing UpdatedAt
	// the mutation path computed and break read-back equality.
	CreatedAt time.Time `gorm:"column:created_at;index;autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
}

func (Post) TableName() string { return "posts" }

// CreatePostRequest is the payload for creating a post.
type CreatePostRequest struct {
	Title       string     `json:"title"`
	Content     string     `json:"content" binding:"required"`
	ContentType string     `json:"content_type" binding:"required"`
	SourceData  SourceData `json:"source_data"`
	Platform    string     `json:"platform"`
	Tags        []string   `json:"tags"`
}

// EditPostRequest is the payload for overwriting a post's content.
type EditPostRequest struct {
	Content string `json:"content" binding:"required"`
	Reason  string `json:"reason"`
}

// SchedulePostRequest is the payload for scheduling a post.
type SchedulePostRequest struct {
	ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
}
