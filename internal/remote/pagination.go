package remote

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/notexe/reminders-cli/internal/reminder"
	"github.com/notexe/reminders-cli/internal/wire"
)

// DefaultCursorOffset is added to a continuation cursor before it is sent.
//
// The service leaves out reminders created at, or slightly before, the
// requested boundary. Pushing the boundary forward keeps the reminder at the
// edge of the previous page in the next one. The value was found by trial
// against the live service and may need revisiting if it changes.
const DefaultCursorOffset = 15 * time.Hour

// Boundary returns the upper creation-time filter to send for cursorMs.
// Zero means "now" and is sent as no filter at all.
func Boundary(cursorMs int64, offset time.Duration) int64 {
	if cursorMs == 0 {
		return 0
	}
	return cursorMs + offset.Milliseconds()
}

// Page is one list response.
type Page struct {
	Reminders []reminder.Reminder
	// Elements of the response that could not be decoded.
	Skipped []*wire.DecodeError
	// Smallest creation timestamp on the page, to continue listing older
	// reminders. Zero when the page is empty.
	NextCursor int64
}

// Len counts every element the server returned, decodable or not.
func (p *Page) Len() int {
	return len(p.Reminders) + len(p.Skipped)
}

// List returns up to count of the most recently created reminders. A
// non-zero cursorMs restricts the result to reminders created before it,
// typically the NextCursor of a previous page.
func (c *Client) List(ctx context.Context, count int, cursorMs int64) (*Page, error) {
	if count < 0 {
		return nil, fmt.Errorf("%s: count must not be negative, got %d", OpList, count)
	}

	boundary := Boundary(cursorMs, c.cursorOffset)
	body, err := c.codec.EncodeList(count, boundary)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, OpList, body)
	if err != nil {
		return nil, err
	}

	reminders, skipped, err := c.codec.DecodeListResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", OpList, err)
	}
	for _, derr := range skipped {
		c.logger.Warn("skipping malformed reminder", zap.Error(derr))
	}

	return &Page{
		Reminders:  reminders,
		Skipped:    skipped,
		NextCursor: oldestCreation(reminders),
	}, nil
}

func oldestCreation(reminders []reminder.Reminder) int64 {
	var oldest int64
	for _, r := range reminders {
		if r.CreationTimestampMs == nil {
			continue
		}
		if ts := *r.CreationTimestampMs; oldest == 0 || ts < oldest {
			oldest = ts
		}
	}
	return oldest
}

// maxPageGrowth bounds how many times a page request may be doubled while
// crossing a dense stretch of the list.
const maxPageGrowth = 6

// Pager walks the reminder list from newest to oldest, one page per call.
//
// Because of the cursor offset consecutive pages overlap; reminders already
// returned are dropped. When more than a page of reminders falls inside the
// offset the cursor cannot move, so the same cursor is asked again for twice
// as many. Past pageSize<<maxPageGrowth the pager gives up and reports
// Truncated.
type Pager struct {
	lister    Lister
	pageSize  int
	count     int
	maxCount  int
	cursor    int64
	seen      map[string]struct{}
	done      bool
	truncated bool
}

// Lister fetches a single page. *Client implements it.
type Lister interface {
	List(ctx context.Context, count int, cursorMs int64) (*Page, error)
}

// NewPager starts listing below cursorMs (0 for the newest reminders).
func NewPager(l Lister, pageSize int, cursorMs int64) *Pager {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Pager{
		lister:   l,
		pageSize: pageSize,
		count:    pageSize,
		maxCount: pageSize << maxPageGrowth,
		cursor:   cursorMs,
		seen:     make(map[string]struct{}),
	}
}

func (c *Client) NewPager(pageSize int, cursorMs int64) *Pager {
	return NewPager(c, pageSize, cursorMs)
}

// Done reports whether the last page has been returned.
func (p *Pager) Done() bool {
	return p.done
}

// Truncated reports whether the pager stopped before the end of the list.
func (p *Pager) Truncated() bool {
	return p.truncated
}

// Cursor is the value to resume from in a later run.
func (p *Pager) Cursor() int64 {
	return p.cursor
}

// Next returns the reminders of the next page not returned before. It
// returns an empty page once Done.
func (p *Pager) Next(ctx context.Context) (*Page, error) {
	for !p.done {
		page, err := p.lister.List(ctx, p.count, p.cursor)
		if err != nil {
			return nil, err
		}

		fresh := make([]reminder.Reminder, 0, len(page.Reminders))
		for _, r := range page.Reminders {
			if _, ok := p.seen[r.ID]; ok {
				continue
			}
			p.seen[r.ID] = struct{}{}
			fresh = append(fresh, r)
		}

		next := page.NextCursor
		moved := next != 0 && (p.cursor == 0 || next < p.cursor)
		if moved {
			p.cursor = next
		}

		if page.Len() < p.count {
			// A short page is the end of the list.
			p.done = true
			return &Page{Reminders: fresh, Skipped: page.Skipped, NextCursor: p.cursor}, nil
		}
		if len(fresh) > 0 || moved {
			return &Page{Reminders: fresh, Skipped: page.Skipped, NextCursor: p.cursor}, nil
		}

		// A full page of reminders already seen, and the cursor is stuck.
		if p.count >= p.maxCount {
			p.done = true
			p.truncated = true
			break
		}
		p.count = min(p.count*2, p.maxCount)
	}
	return &Page{NextCursor: p.cursor}, nil
}

// Collect pages until limit reminders are gathered or the list ends. A
// non-positive limit means no limit.
func (p *Pager) Collect(ctx context.Context, limit int) ([]reminder.Reminder, []*wire.DecodeError, error) {
	var all []reminder.Reminder
	var skipped []*wire.DecodeError

	for !p.done {
		page, err := p.Next(ctx)
		if err != nil {
			return all, skipped, err
		}
		all = append(all, page.Reminders...)
		skipped = append(skipped, page.Skipped...)

		if limit > 0 && len(all) >= limit {
			return all[:limit], skipped, nil
		}
	}
	return all, skipped, nil
}
