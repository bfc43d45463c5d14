package risk

import "math"

// Disclaimer accompanies every assessment shown to a user.
const Disclaimer = "This prediction is based on a machine learning model trained on clinical data. " +
	"It should be used as a screening tool only and not as a definitive diagnosis. " +
	"Always consult with healthcare professionals for proper evaluation and diagnosis."

// Assessment is the classified form of a single score.
type Assessment struct {
	Score    float64  `json:"score"`
	Percent  int      `json:"percent"`
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Severity int      `json:"severity"`
	Message  string   `json:"message"`
}

// Evaluate classifies score and fills in the display fields.
func Evaluate(score float64) Assessment {
	c := Classify(score)
	return Assessment{
		Score:    score,
		Percent:  Percent(score),
		Category: c,
		Label:    c.Label(),
		Severity: c.Severity(),
		Message:  c.Message(),
	}
}

// Percent rounds score*100 half away from zero. Non-finite scores give 0 and
// the result is clamped to the int32 range.
func Percent(score float64) int {
	p := math.Round(score * 100)
	switch {
	case math.IsNaN(p) || math.IsInf(p, 0):
		return 0
	case p > math.MaxInt32:
		return math.MaxInt32
	case p < math.MinInt32:
		return math.MinInt32
	}
	return int(p)
}
