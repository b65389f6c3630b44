// Package lifecycle implements the post status state machine and edit
// recording. Everything here is pure and synchronous: functions
// validate first and only mutate the record on success, so a returned
// error always means the record is untouched. Persistence is the
// caller's job.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/SridharA16/Ghostprotocol/internal/common"
	"github.com/SridharA16/Ghostprotocol/internal/domain"
)

// Event names a lifecycle transition request, used in error messages.
type Event string

const (
	EventSchedule           Event = "schedule"
	EventUnschedule         Event = "unschedule"
	EventPublishNow         Event = "publish_now"
	EventReachScheduledDate Event = "reach_scheduled_date"
	EventArchive            Event = "archive"
	EventRestore            Event = "restore"
	EventEdit               Event = "edit"
)

func invalidTransition(status domain.Status, event Event) error {
	return fmt.Errorf("%w: cannot %s while %s", common.ErrInvalidTransition, event, status)
}

// Schedule moves a draft to scheduled at the given date. The date must
// be strictly in the future relative to now.
func Schedule(p *domain.Post, date, now time.Time) error {
	if p.Status != domain.StatusDraft {
		return invalidTransition(p.Status, EventSchedule)
	}
	if !date.After(now) {
		return fmt.Errorf("%w: %s is not in the future", common.ErrInvalidSchedule, date.Format(time.RFC3339))
	}
	d := date
	p.Status = domain.StatusScheduled
	p.ScheduledDate = &d
	touch(p, now)
	return nil
}

// Unschedule moves a scheduled post back to draft and clears the
// scheduled date.
func Unschedule(p *domain.Post, now time.Time) error {
	if p.Status != domain.StatusScheduled {
		return invalidTransition(p.Status, EventUnschedule)
	}
	p.Status = domain.StatusDraft
	p.ScheduledDate = nil
	touch(p, now)
	return nil
}

// PublishNow publishes a draft or scheduled post immediately, clearing
// any pending schedule and stamping the effective publish time.
func PublishNow(p *domain.Post, now time.Time) error {
	if p.Status != domain.StatusDraft && p.Status != domain.StatusScheduled {
		return invalidTransition(p.Status, EventPublishNow)
	}
	t := now
	p.Status = domain.StatusPublished
	p.ScheduledDate = nil
	p.PublishedAt = &t
	touch(p, now)
	return nil
}

// ReachScheduledDate publishes a scheduled post whose scheduled date
// has passed. It reports whether the post changed; posts that are not
// scheduled, or not yet due, are left untouched so repeated sweeps are
// idempotent.
func ReachScheduledDate(p *domain.Post, now time.Time) bool {
	if p.Status != domain.StatusScheduled {
		return false
	}
	if p.ScheduledDate == nil || p.ScheduledDate.After(now) {
		return false
	}
	t := now
	p.Status = domain.StatusPublished
	p.ScheduledDate = nil
	p.PublishedAt = &t
	touch(p, now)
	return true
}

// Archive soft-retires a post from any active status, clearing a
// pending schedule if present.
func Archive(p *domain.Post, now time.Time) error {
	if p.Status == domain.StatusArchived {
		return invalidTransition(p.Status, EventArchive)
	}
	p.Status = domain.StatusArchived
	p.ScheduledDate = nil
	touch(p, now)
	return nil
}

// Restore brings an archived post back as a draft.
func Restore(p *domain.Post, now time.Time) error {
	if p.Status != domain.StatusArchived {
		return invalidTransition(p.Status, EventRestore)
	}
	p.Status = domain.StatusDraft
	touch(p, now)
	return nil
}

// RecordEdit overwrites the post content, capturing the prior content
// into a new history entry and setting OriginalContent on the first
// content-changing edit. Editing an archived post is rejected; the
// post must be restored first.
//
// An edit whose new content is byte-identical to the current content
// is fully inert: no history entry, no timestamp change, and changed
// is false so the caller can skip the write.
func RecordEdit(p *domain.Post, newContent, reason string, now time.Time) (changed bool, err error) {
	if p.Status == domain.StatusArchived {
		return false, invalidTransition(p.Status, EventEdit)
	}
	if newContent == p.Content {
		return false, nil
	}

	entry := domain.EditHistoryEntry{
		PreviousContent: p.Content,
		EditedAt:        now,
		Reason:          reason,
	}
	// Copy-on-append keeps previously handed-out history slices frozen.
	history := make(domain.EditHistory, len(p.EditHistory), len(p.EditHistory)+1)
	copy(history, p.EditHistory)
	p.EditHistory = append(history, entry)

	if p.OriginalContent == nil {
		original := entry.PreviousContent
		p.OriginalContent = &original
	}
	p.Content = newContent
	touch(p, now)
	return true, nil
}

// touch refreshes UpdatedAt, keeping it strictly increasing even when
// two mutations land within clock resolution.
func touch(p *domain.Post, now time.Time) {
	if !now.After(p.UpdatedAt) {
		now = p.UpdatedAt.Add(time.Microsecond)
	}
	p.UpdatedAt = now
}
