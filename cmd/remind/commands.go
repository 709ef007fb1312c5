package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/notexe/reminders-cli/internal/reminder"
	"github.com/notexe/reminders-cli/internal/remote"
	"github.com/notexe/reminders-cli/internal/timeparse"
	"github.com/notexe/reminders-cli/internal/ui"
)

const (
	msgBadTime      = "Unrecognizable time text. See help menu for legal formats"
	msgBadListCount = "argument to list command must be positive"
)

// usageError is a problem with the user's input. It is printed as is, without
// an error prefix.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

type service interface {
	Create(ctx context.Context, r reminder.Reminder) error
	Get(ctx context.Context, id string) (*reminder.Reminder, error)
	Delete(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) (*reminder.Reminder, error)
	List(ctx context.Context, count int, cursorMs int64) (*remote.Page, error)
}

type prompter interface {
	Prompt(prompt string) (string, error)
}

type runner struct {
	svc      service
	format   *ui.Formatter
	spinner  *ui.Spinner
	parser   *timeparse.Parser
	out      io.Writer
	now      func() time.Time
	pageSize int
}

func (r *runner) parseTime(text string) (time.Time, error) {
	t, err := r.parser.Parse(text, r.now())
	if err != nil {
		if errors.Is(err, timeparse.ErrUnrecognized) {
			return time.Time{}, &usageError{msg: msgBadTime}
		}
		return time.Time{}, err
	}
	return t, nil
}

func (r *runner) create(ctx context.Context, title, timeText string, allDay bool) error {
	due, err := r.parseTime(timeText)
	if err != nil {
		return err
	}
	return r.save(ctx, reminder.New(title, due, allDay))
}

// interactive asks for the title and time, echoes the result and saves it
// only after confirmation.
func (r *runner) interactive(ctx context.Context, p prompter, allDay bool) error {
	title, err := p.Prompt("What's the reminder: ")
	if err != nil {
		return err
	}
	timeText, err := p.Prompt("When do you want to be reminded: ")
	if err != nil {
		return err
	}

	due, err := r.parseTime(timeText)
	if err != nil {
		return err
	}
	rem := reminder.New(title, due, allDay)

	fmt.Fprintf(r.out, "\n%s\n\n", r.format.FormatConfirmation(rem))

	ans, err := p.Prompt("Do you want to save this? [Y/n] ")
	if err != nil {
		return err
	}
	if !isYes(ans) {
		fmt.Fprintln(r.out, r.format.FormatStatus("Not saved"))
		return nil
	}
	return r.save(ctx, rem)
}

func isYes(ans string) bool {
	switch strings.ToLower(strings.TrimSpace(ans)) {
	case "", "y", "yes":
		return true
	}
	return false
}

func (r *runner) save(ctx context.Context, rem reminder.Reminder) error {
	r.spinner.Start("Creating reminder...")
	if err := r.svc.Create(ctx, rem); err != nil {
		r.spinner.Stop()
		return err
	}
	r.spinner.Stop()

	fmt.Fprintln(r.out, r.format.FormatSuccess("Reminder set successfully:"))
	fmt.Fprintln(r.out, r.format.FormatReminder(rem))
	return nil
}

func (r *runner) get(ctx context.Context, id string) error {
	r.spinner.Start("Fetching reminder...")
	rem, err := r.svc.Get(ctx, id)
	r.spinner.Stop()
	if err != nil {
		return err
	}
	if rem == nil {
		return &usageError{msg: fmt.Sprintf("Couldn't find reminder with id=%s", id)}
	}

	fmt.Fprintln(r.out, r.format.FormatDetails(*rem))
	return nil
}

func (r *runner) delete(ctx context.Context, id string) error {
	r.spinner.Start("Deleting reminder...")
	err := r.svc.Delete(ctx, id)
	r.spinner.Stop()
	if err != nil {
		return err
	}

	fmt.Fprintln(r.out, r.format.FormatSuccess("Reminder deleted successfully"))
	return nil
}

func (r *runner) complete(ctx context.Context, id string) error {
	r.spinner.Start("Updating reminder...")
	rem, err := r.svc.Complete(ctx, id)
	r.spinner.Stop()
	if errors.Is(err, remote.ErrNotFound) {
		return &usageError{msg: fmt.Sprintf("Couldn't find reminder with id=%s", id)}
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(r.out, r.format.FormatSuccess("Reminder marked as done:"))
	fmt.Fprintln(r.out, r.format.FormatReminder(*rem))
	return nil
}

// list prints the n most recently created reminders below cursorMs, sorted
// by due time.
func (r *runner) list(ctx context.Context, n int, cursorMs int64) error {
	if n < 0 {
		return &usageError{msg: msgBadListCount}
	}

	r.spinner.Start("Listing reminders...")
	page, err := r.svc.List(ctx, n, cursorMs)
	r.spinner.Stop()
	if err != nil {
		return err
	}

	r.printList(page.Reminders, len(page.Skipped))
	if n > 0 && page.Len() >= n && page.NextCursor != 0 {
		fmt.Fprintln(r.out, r.format.FormatCursorHint(page.NextCursor))
	}
	return nil
}

// listAll walks every page below cursorMs.
func (r *runner) listAll(ctx context.Context, cursorMs int64) error {
	pager := remote.NewPager(r.svc, r.pageSize, cursorMs)

	r.spinner.Start("Listing reminders...")
	reminders, skipped, err := pager.Collect(ctx, 0)
	r.spinner.Stop()
	if err != nil {
		return err
	}

	r.printList(reminders, len(skipped))
	if pager.Truncated() {
		fmt.Fprintln(r.out, r.format.FormatTruncated())
		fmt.Fprintln(r.out, r.format.FormatCursorHint(pager.Cursor()))
	}
	return nil
}

func (r *runner) printList(reminders []reminder.Reminder, skipped int) {
	reminder.SortByDue(reminders)
	fmt.Fprintln(r.out, r.format.FormatReminderList(reminders))
	if skipped > 0 {
		fmt.Fprintln(r.out, r.format.FormatSkipped(skipped))
	}
}
