package assessment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// Levels run from 1 (resuscitation) to 5 (non-urgent). Levels at or below
// CriticalLevel trigger alerting.
const (
	MinLevel      = 1
	MaxLevel      = 5
	CriticalLevel = 2
)

// Assessment is the structured triage answer requested from providers that
// support constrained output.
type Assessment struct {
	Level     int    `json:"level" jsonschema:"minimum=1,maximum=5,description=Urgency level where 1 is immediate resuscitation and 5 is non-urgent"`
	Reasoning string `json:"reasoning" jsonschema:"description=Clinical reasoning behind the urgency level"`
	NextStep  string `json:"next_step" jsonschema:"description=The single most important next step for the patient"`
}

// Parse decodes a model reply into an Assessment. Markdown code fences around
// the JSON are tolerated.
func Parse(text string) (*Assessment, error) {
	body := strings.TrimSpace(text)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "{") {
		return nil, fmt.Errorf("assessment: not a JSON object")
	}

	var a Assessment
	if err := json.Unmarshal([]byte(body), &a); err != nil {
		return nil, fmt.Errorf("assessment: %w", err)
	}
	if a.Level < MinLevel || a.Level > MaxLevel {
		return nil, fmt.Errorf("assessment: level %d out of range", a.Level)
	}
	return &a, nil
}

// Critical reports whether the level calls for emergency alerting.
func (a *Assessment) Critical() bool {
	return a.Level <= CriticalLevel
}

// String renders the assessment the way the free-text prompt asks for it, so
// structured and unstructured replies read the same to the user.
func (a *Assessment) String() string {
	return fmt.Sprintf("Urgency: Level %d\n\nReasoning: %s\n\nNext step: %s", a.Level, a.Reasoning, a.NextStep)
}

// JSONSchema returns the JSON schema of Assessment.
func JSONSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	return r.Reflect(&Assessment{})
}
