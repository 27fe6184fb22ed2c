// Package milestone holds the milestone catalog: the ordered list of
// milestones per gender variant, loaded once per run from the
// configuration store.
package milestone

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/attr"
)

// Gender selects the milestone variant.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ParseGender accepts "male" and "female" in any case. An empty value is
// treated as male; anything else is rejected.
func ParseGender(s string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "male":
		return Male, true
	case "female":
		return Female, true
	default:
		return "", false
	}
}

// FinalRankTitle is the display title for the final rank.
func (g Gender) FinalRankTitle() string {
	if g == Female {
		return "Queen"
	}
	return "King"
}

var (
	ErrEmptyCatalog     = errors.New("milestone catalog is empty")
	ErrDuplicateDay     = errors.New("duplicate milestone day")
	ErrMissingDayZero   = errors.New("milestone catalog has no day 0")
	ErrInvalidMilestone = errors.New("invalid milestone")
)

// Milestone is one catalog entry.
type Milestone struct {
	Gene          Gender `json:"gene"`
	Day           int    `json:"milestone_day"`
	Title         string `json:"title"`
	Emoji         string `json:"emoji"`
	LevelTemplate string `json:"level_template,omitempty"`
	MediaURL      string `json:"media_url,omitempty"`
}

// Label is the title followed by the emoji, e.g. "Fighter 🥊".
func (m Milestone) Label() string {
	return strings.TrimSpace(m.Title + " " + m.Emoji)
}

// Catalog is the read-only milestone catalog. Each gender's list is sorted
// ascending by Day with strictly increasing days.
type Catalog struct {
	byGender map[Gender][]Milestone
}

// New validates and indexes the given milestones. Every problem found is
// reported; any problem rejects the catalog.
func New(items []Milestone) (*Catalog, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCatalog
	}

	var result error
	byGender := make(map[Gender][]Milestone)
	seen := make(map[Gender]map[int]struct{})
	for _, m := range items {
		if m.Gene != Male && m.Gene != Female {
			result = multierror.Append(result, fmt.Errorf("%w: unknown gene %q (day %d)", ErrInvalidMilestone, m.Gene, m.Day))
			continue
		}
		if m.Day < 0 {
			result = multierror.Append(result, fmt.Errorf("%w: negative day %d (%s)", ErrInvalidMilestone, m.Day, m.Gene))
			continue
		}
		if seen[m.Gene] == nil {
			seen[m.Gene] = make(map[int]struct{})
		}
		if _, dup := seen[m.Gene][m.Day]; dup {
			result = multierror.Append(result, fmt.Errorf("%w: %s day %d", ErrDuplicateDay, m.Gene, m.Day))
			continue
		}
		seen[m.Gene][m.Day] = struct{}{}
		byGender[m.Gene] = append(byGender[m.Gene], m)
	}

	for g, list := range byGender {
		sort.Slice(list, func(i, j int) bool { return list[i].Day < list[j].Day })
		if list[0].Day != 0 {
			result = multierror.Append(result, fmt.Errorf("%w: %s", ErrMissingDayZero, g))
		}
	}

	if result != nil {
		return nil, result
	}
	return &Catalog{byGender: byGender}, nil
}

// Milestones returns the sorted list for a gender.
func (c *Catalog) Milestones(g Gender) []Milestone {
	return c.byGender[g]
}

// Current returns the milestone with the largest Day <= days.
func (c *Catalog) Current(g Gender, days int) (Milestone, bool) {
	list := c.byGender[g]
	// first index with Day > days
	i := sort.Search(len(list), func(i int) bool { return list[i].Day > days })
	if i == 0 {
		return Milestone{}, false
	}
	return list[i-1], true
}

// Next returns the milestone with the smallest Day > days.
func (c *Catalog) Next(g Gender, days int) (Milestone, bool) {
	list := c.byGender[g]
	i := sort.Search(len(list), func(i int) bool { return list[i].Day > days })
	if i == len(list) {
		return Milestone{}, false
	}
	return list[i], true
}

// Final returns the milestone with the largest Day.
func (c *Catalog) Final(g Gender) (Milestone, bool) {
	list := c.byGender[g]
	if len(list) == 0 {
		return Milestone{}, false
	}
	return list[len(list)-1], true
}

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// FromItems decodes raw catalog entries. Typed wrappers are unwrapped and
// numeric days may arrive as numbers or strings.
func FromItems(raw []any) ([]Milestone, error) {
	var result error
	items := make([]Milestone, 0, len(raw))
	for i, r := range raw {
		m, ok := attr.Normalize(r).(map[string]any)
		if !ok {
			result = multierror.Append(result, fmt.Errorf("%w: entry %d is not an object", ErrInvalidMilestone, i))
			continue
		}
		day, ok := attr.Float(m["milestone_day"])
		if !ok || day != float64(int(day)) {
			result = multierror.Append(result, fmt.Errorf("%w: entry %d has no integer milestone_day", ErrInvalidMilestone, i))
			continue
		}
		items = append(items, Milestone{
			Gene:          Gender(strings.ToLower(attr.String(m, "gene"))),
			Day:           int(day),
			Title:         attr.String(m, "title"),
			Emoji:         attr.String(m, "emoji"),
			LevelTemplate: attr.String(m, "level_template"),
			MediaURL:      attr.String(m, "media_url"),
		})
	}
	if result != nil {
		return nil, result
	}
	return items, nil
}
