package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/notexe/reminders-cli/internal/reminder"
)

// DateFormat renders a due time as "Fri, May 24 2019, 19:30".
const DateFormat = "Mon, Jan 02 2006, 15:04"

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Medium gray
			Italic(true)

	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")). // Bright cyan
			Bold(true)

	DoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	DueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")) // Soft green

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")).
			Bold(true)

	AccentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("147")) // Light purple
)

type Formatter struct {
	colored bool
}

func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if f.colored {
		return style.Render(s)
	}
	return s
}

func (f *Formatter) FormatError(err error) string {
	return f.render(ErrorStyle, "Error: ") + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	return f.render(InfoStyle, info)
}

func (f *Formatter) FormatStatus(msg string) string {
	return f.render(StatusStyle, msg)
}

func (f *Formatter) FormatSuccess(msg string) string {
	return f.render(SuccessStyle, msg)
}

// FormatReminder renders one reminder on a single line:
//
//	2019-05-24 19:30: Pay bills ; id="cli-reminder-1558726200.123"
//
// Done reminders get a struck-through title, and a "[done]" marker when
// colour is off.
func (f *Formatter) FormatReminder(r reminder.Reminder) string {
	due := r.Due.Format("2006-01-02 15:04")
	if r.AllDay {
		due = r.Due.Format("2006-01-02") + " (all day)"
	}

	title := f.render(TitleStyle, r.Title)
	if r.Done {
		if f.colored {
			title = DoneStyle.Render(r.Title)
		} else {
			title = r.Title + " [done]"
		}
	}

	id := f.render(DimStyle, fmt.Sprintf("id=%q", r.ID))
	return fmt.Sprintf("%s: %s ; %s", f.render(DueStyle, due), title, id)
}

// FormatReminderList renders reminders in the given order, one per line.
func (f *Formatter) FormatReminderList(reminders []reminder.Reminder) string {
	if len(reminders) == 0 {
		return f.FormatStatus("No reminders found")
	}
	lines := make([]string, 0, len(reminders))
	for _, r := range reminders {
		lines = append(lines, f.FormatReminder(r))
	}
	return strings.Join(lines, "\n")
}

// FormatDetails renders the long form used for a single fetched reminder.
func (f *Formatter) FormatDetails(r reminder.Reminder) string {
	label := func(s string) string { return f.render(AccentStyle, fmt.Sprintf("%-10s", s)) }

	state := "pending"
	if r.Done {
		state = "done"
	}

	lines := []string{
		label("Title") + f.render(TitleStyle, r.Title),
		label("Due") + r.Due.Format(DateFormat),
		label("State") + state,
		label("ID") + r.ID,
	}
	if r.AllDay {
		lines[1] = label("Due") + r.Due.Format("Mon, Jan 02 2006") + " (all day)"
	}
	if created := r.CreatedAt(); !created.IsZero() {
		lines = append(lines, label("Created")+created.Local().Format(DateFormat))
	}
	return strings.Join(lines, "\n")
}

// FormatConfirmation echoes a reminder before it is saved.
func (f *Formatter) FormatConfirmation(r reminder.Reminder) string {
	when := r.Due.Format(DateFormat)
	if r.AllDay {
		when = r.Due.Format("Mon, Jan 02 2006") + " (all day)"
	}
	return fmt.Sprintf("%q on %s", r.Title, f.render(DueStyle, when))
}

// FormatCursorHint tells the user how to fetch the next, older page.
func (f *Formatter) FormatCursorHint(cursor int64) string {
	return f.FormatStatus(fmt.Sprintf("More: -l N -before %d", cursor))
}

// FormatTruncated warns that a full listing ended before the oldest reminder.
func (f *Formatter) FormatTruncated() string {
	return f.render(InfoStyle, "Listing stopped early: too many reminders were created close together")
}

// FormatSkipped reports list elements that could not be decoded.
func (f *Formatter) FormatSkipped(n int) string {
	if n == 1 {
		return f.render(InfoStyle, "1 reminder in an unrecognized format was skipped")
	}
	return f.render(InfoStyle, fmt.Sprintf("%d reminders in an unrecognized format were skipped", n))
}
