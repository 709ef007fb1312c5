// Package timeparse turns the free-form TIME argument of the CLI into an
// absolute time. Explicit timestamps are tried first, then natural phrases
// such as "tomorrow at 9am" or "in 2 days".
package timeparse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var ErrUnrecognized = errors.New("unrecognizable time text")

// Explicit layouts, most specific first. RFC 3339 keeps its own offset; the
// rest are read in the parser's location.
var layouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	// Slash dates are day first, as the when common rules read them.
	"02/01/2006 15:04",
}

// Help lists example inputs, shown in the CLI usage text.
const Help = `The TIME argument can be written in many ways, for example:

* "in 2 days at 14:56"
* "in 5 days at 9am"
* "tomorrow"
* "today at 19:00"
* "next friday 5pm"
* "2019-05-25 10:42"
* "2019-05-25T10:42:00+02:00"
* "25/05/2019 10:42" (day/month/year)
`

type Parser struct {
	w   *when.Parser
	loc *time.Location
}

func New(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{w: w, loc: loc}
}

// Parse resolves text relative to now.
func (p *Parser) Parse(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, ErrUnrecognized
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, text, p.loc); err == nil {
			return t, nil
		}
	}

	r, err := p.w.Parse(text, now.In(p.loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnrecognized, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognized, text)
	}
	return r.Time.Truncate(time.Minute), nil
}
