package triage

import "fmt"

// Instruction is sent ahead of every patient summary.
const Instruction = `You are an emergency triage physician. Assess the patient below and return:
(a) the urgency level, written exactly as "Level 1" (immediate resuscitation), "Level 2" (emergent), "Level 3" (urgent), "Level 4" (less urgent) or "Level 5" (non-urgent);
(b) your reasoning;
(c) the single most important next step.
Any attached photo or audio recording belongs to the same patient.`

// Summary renders the patient line of the request.
func Summary(age int, symptoms string) string {
	return fmt.Sprintf("Triage for %dyo. Symptoms: %s.", age, symptoms)
}
