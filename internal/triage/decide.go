package triage

import (
	"github.com/sebrandon1/pulsepoint/internal/alert"
)

// Decide turns a model reply into an alert decision. It has no side effects:
// identical inputs always give identical decisions. An unclassifiable reply is
// not critical.
func Decide(text string, classifier Classifier, loc *alert.Location, maps alert.MapLink) (alert.Decision, Classification) {
	c, err := classifier.Classify(text)
	if err != nil {
		c = Classification{Method: MethodNone}
	}

	d := alert.Decision{
		Critical: c.Critical,
		Level:    c.Level,
		Method:   c.Method,
	}
	if d.Critical && loc != nil {
		d.MapURL = maps.URL(*loc)
	}
	return d, c
}
