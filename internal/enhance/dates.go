package enhance

import (
	"strings"
	"time"

	"github.com/jonathan/chat-resume/internal/types"
)

// dateLayouts are the résumé date spellings recognised when ordering entries
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006/01",
	"01/2006",
	"1/2006",
	"Jan 2006",
	"January 2006",
	"Jan. 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006",
}

// dateKey orders résumé dates. Unparsable dates rank below every parsed date and
// "Present" ranks above all of them.
type dateKey struct {
	present bool
	valid   bool
	t       time.Time
}

func parseDate(s string) dateKey {
	s = strings.TrimSpace(s)
	if IsPresent(s) {
		return dateKey{present: true, valid: true}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateKey{valid: true, t: t}
		}
	}
	return dateKey{}
}

// IsPresent reports whether s is the current-position marker, ignoring case
func IsPresent(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), types.PresentEndDate)
}

// compare returns a positive number when a is more recent than b, negative when older
// and zero when they rank equally.
func (a dateKey) compare(b dateKey) int {
	switch {
	case a.present != b.present:
		if a.present {
			return 1
		}
		return -1
	case a.present:
		return 0
	case a.valid != b.valid:
		if a.valid {
			return 1
		}
		return -1
	case !a.valid:
		return 0
	default:
		return a.t.Compare(b.t)
	}
}
