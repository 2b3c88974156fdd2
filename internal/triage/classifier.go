package triage

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/sebrandon1/pulsepoint/internal/assessment"
)

// Classification methods.
const (
	MethodStructured = "structured"
	MethodSubstring  = "substring"
	MethodNone       = "none"
)

var errUnclassified = errors.New("reply could not be classified")

// Classification is a classifier's reading of a model reply.
type Classification struct {
	// Level is 1-5, or 0 when the reply names no level.
	Level    int
	Critical bool
	Method   string
	// Assessment is set when the reply was a structured assessment.
	Assessment *assessment.Assessment
}

// Classifier reads urgency out of a model reply.
type Classifier interface {
	Classify(text string) (Classification, error)
}

// StructuredClassifier accepts only JSON assessments.
type StructuredClassifier struct{}

// Classify implements Classifier.
func (StructuredClassifier) Classify(text string) (Classification, error) {
	a, err := assessment.Parse(text)
	if err != nil {
		return Classification{}, err
	}
	return Classification{
		Level:      a.Level,
		Critical:   a.Critical(),
		Method:     MethodStructured,
		Assessment: a,
	}, nil
}

// DefaultTriggers are the case-sensitive markers of a critical free-text reply.
var DefaultTriggers = []string{"Level 1", "Level 2"}

var levelPattern = regexp.MustCompile(`Level ([1-5])`)

// SubstringClassifier marks a reply critical when it contains any trigger
// anywhere. It never fails.
type SubstringClassifier struct {
	Triggers []string
}

// Classify implements Classifier.
func (s SubstringClassifier) Classify(text string) (Classification, error) {
	triggers := s.Triggers
	if triggers == nil {
		triggers = DefaultTriggers
	}

	c := Classification{Method: MethodSubstring}
	for i, trigger := range triggers {
		if strings.Contains(text, trigger) {
			c.Critical = true
			c.Level = triggerLevel(trigger, i+1)
			return c, nil
		}
	}
	if m := levelPattern.FindStringSubmatch(text); m != nil {
		c.Level, _ = strconv.Atoi(m[1])
	}
	return c, nil
}

func triggerLevel(trigger string, fallback int) int {
	if m := levelPattern.FindStringSubmatch(trigger); m != nil {
		level, _ := strconv.Atoi(m[1])
		return level
	}
	return fallback
}

// ChainClassifier tries each classifier in order and returns the first success.
type ChainClassifier []Classifier

// DefaultClassifier reads structured assessments and falls back to triggers.
func DefaultClassifier() ChainClassifier {
	return ChainClassifier{StructuredClassifier{}, SubstringClassifier{}}
}

// Classify implements Classifier.
func (c ChainClassifier) Classify(text string) (Classification, error) {
	errs := []error{errUnclassified}
	for _, classifier := range c {
		result, err := classifier.Classify(text)
		if err == nil {
			return result, nil
		}
		errs = append(errs, err)
	}
	return Classification{Method: MethodNone}, errors.Join(errs...)
}
