package simulation

import (
	"slices"
	"strings"
)

// Stage is a canonical funnel position.
type Stage string

const (
	StageApplied   Stage = "APPLIED"
	StageScreen    Stage = "SCREEN"
	StageHMScreen  Stage = "HM_SCREEN"
	StageOnsite    Stage = "ONSITE"
	StageOffer     Stage = "OFFER"
	StageHired     Stage = "HIRED"
	StageRejected  Stage = "REJECTED"
	StageWithdrawn Stage = "WITHDRAWN"
)

// FunnelStages is the ordered chain every candidate walks before HIRED.
var FunnelStages = []Stage{StageScreen, StageHMScreen, StageOnsite, StageOffer}

// globalPriorMedianDays is the typical residency used when a stage has too
// little duration history to fit.
var globalPriorMedianDays = map[Stage]float64{
	StageScreen:   5,
	StageHMScreen: 7,
	StageOnsite:   10,
	StageOffer:    5,
}

const (
	defaultPriorMedianDays = 7.0
	globalPriorCV          = 0.5
)

// IsTerminal reports whether a candidate in this stage has left the funnel.
func (s Stage) IsTerminal() bool {
	switch s {
	case StageHired, StageRejected, StageWithdrawn:
		return true
	}
	return false
}

// FunnelIndex returns the position in FunnelStages where a candidate in s
// resumes. APPLIED enters at SCREEN. ok is false for terminal or unknown stages.
func FunnelIndex(s Stage) (int, bool) {
	if s == StageApplied {
		return 0, true
	}
	for i, fs := range FunnelStages {
		if fs == s {
			return i, true
		}
	}
	return -1, false
}

// stageKeywords is checked in order; later funnel stages come first so that
// "Hiring Manager Screen" is not swallowed by the generic screen match.
var stageKeywords = []struct {
	stage    Stage
	keywords []string
}{
	{StageHired, []string{"hired", "accepted", "onboard"}},
	{StageRejected, []string{"reject", "declined by us", "not selected", "archived"}},
	{StageWithdrawn, []string{"withdr", "declined", "dropped", "ghost"}},
	{StageOffer, []string{"offer"}},
	{StageOnsite, []string{"onsite", "on-site", "final", "panel", "loop", "superday"}},
	{StageHMScreen, []string{"hiring manager", "hm", "manager"}},
	{StageScreen, []string{"screen", "phone", "recruiter", "intro"}},
	{StageApplied, []string{"appl", "sourced", "inbound"}},
}

// NormalizeStage maps an organisation's raw stage label onto a canonical stage.
// Unrecognised labels are kept, upper-cased with spaces replaced by underscores.
func NormalizeStage(raw string) Stage {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	canonical := Stage(strings.ToUpper(strings.ReplaceAll(trimmed, " ", "_")))
	switch canonical {
	case StageApplied, StageScreen, StageHMScreen, StageOnsite, StageOffer, StageHired, StageRejected, StageWithdrawn:
		return canonical
	}

	lower := strings.ToLower(trimmed)
	for _, entry := range stageKeywords {
		if matchesAny(lower, entry.keywords) {
			return entry.stage
		}
	}
	return canonical
}

// wholeWordKeywords are too short to match as substrings.
var wholeWordKeywords = map[string]bool{"hm": true}

func matchesAny(s string, keywords []string) bool {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '_' || r == '-' })
	for _, k := range keywords {
		if !wholeWordKeywords[k] {
			if strings.Contains(s, k) {
				return true
			}
			continue
		}
		if slices.Contains(words, k) {
			return true
		}
	}
	return false
}
