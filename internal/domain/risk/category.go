// Package risk maps a model score onto the three categories shown to users.
package risk

import (
	"fmt"
	"math"
	"strings"
)

// Thresholds are lower bounds, inclusive.
const (
	ModerateThreshold = 0.4
	HighThreshold     = 0.7
)

// Category is ordered by severity: Low < Moderate < High.
type Category int

const (
	Low Category = iota
	Moderate
	High
)

var categoryNames = [...]string{"Low", "Moderate", "High"}

var categoryLabels = [...]string{"Low Risk", "Moderate Risk", "High Risk"}

var categoryMessages = [...]string{
	"Based on the provided data, the prediction model indicates a lower likelihood of Alzheimer's disease progression.",
	"The assessment indicates a moderate risk level. Further clinical evaluation is recommended.",
	"The assessment indicates a higher risk level. We strongly recommend consulting with a healthcare professional specializing in neurodegenerative diseases.",
}

// Categories lists every category in severity order.
func Categories() []Category {
	return []Category{Low, Moderate, High}
}

// Classify never fails. Scores outside [0,1] are not special-cased and NaN
// falls through to Low.
func Classify(score float64) Category {
	switch {
	case score >= HighThreshold:
		return High
	case score >= ModerateThreshold:
		return Moderate
	default:
		return Low
	}
}

func (c Category) valid() bool {
	return c >= Low && c <= High
}

// String returns the bare name ("Low", "Moderate", "High").
func (c Category) String() string {
	if !c.valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Label is the display label, e.g. "Moderate Risk".
func (c Category) Label() string {
	if !c.valid() {
		return ""
	}
	return categoryLabels[c]
}

// Message is the advisory text for the category.
func (c Category) Message() string {
	if !c.valid() {
		return ""
	}
	return categoryMessages[c]
}

func (c Category) Severity() int {
	return int(c)
}

// Compare returns -1, 0 or 1 by severity.
func (c Category) Compare(other Category) int {
	switch {
	case c < other:
		return -1
	case c > other:
		return 1
	default:
		return 0
	}
}

// Bounds returns the half-open score interval [lo, hi) of the category. Low
// starts at -Inf and High ends at +Inf.
func (c Category) Bounds() (lo, hi float64) {
	switch c {
	case Low:
		return math.Inf(-1), ModerateThreshold
	case Moderate:
		return ModerateThreshold, HighThreshold
	default:
		return HighThreshold, math.Inf(1)
	}
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.valid() {
		return nil, fmt.Errorf("invalid risk category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Parse accepts the name or the label, case-insensitively.
func Parse(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, c.String()) || strings.EqualFold(s, c.Label()) {
			return c, nil
		}
	}
	return Low, fmt.Errorf("invalid risk category: %q", s)
}
