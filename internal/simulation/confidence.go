package simulation

// ConfidenceLevel grades how much a forecast can be trusted.
type ConfidenceLevel string

const (
	ConfidenceHigh         ConfidenceLevel = "HIGH"
	ConfidenceMedium       ConfidenceLevel = "MEDIUM"
	ConfidenceLow          ConfidenceLevel = "LOW"
	ConfidenceInsufficient ConfidenceLevel = "INSUFFICIENT"
)

// Default confidence thresholds, mirrored in the struct tags below.
const (
	defaultHighMinObservations   = 20
	defaultHighMinSuccess        = 0.8
	defaultMediumMinObservations = 10
	defaultMediumMinSuccess      = 0.5
	defaultLowMinObservations    = 5
)

// ConfidenceThresholds are product risk-tolerance settings, not derived
// constants. Observation counts refer to the thinnest conversion posterior
// on the stages the pipeline can still traverse. Fields are pointers so an
// explicit 0 is kept; nil takes the default.
type ConfidenceThresholds struct {
	HighMinObservations   *int     `json:"high_min_observations,omitempty" yaml:"high_min_observations,omitempty" default:"20" validate:"omitempty,gte=0"`
	HighMinSuccess        *float64 `json:"high_min_success,omitempty" yaml:"high_min_success,omitempty" default:"0.8" validate:"omitempty,gte=0,lte=1"`
	MediumMinObservations *int     `json:"medium_min_observations,omitempty" yaml:"medium_min_observations,omitempty" default:"10" validate:"omitempty,gte=0"`
	MediumMinSuccess      *float64 `json:"medium_min_success,omitempty" yaml:"medium_min_success,omitempty" default:"0.5" validate:"omitempty,gte=0,lte=1"`
	LowMinObservations    *int     `json:"low_min_observations,omitempty" yaml:"low_min_observations,omitempty" default:"5" validate:"omitempty,gte=0"`
}

// Ptr returns a pointer to v, for setting threshold overrides.
func Ptr[T any](v T) *T {
	return &v
}

func valueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// Classify grades a forecast from its thinnest stage sample and hire probability.
func (c ConfidenceThresholds) Classify(minObservations int, successProbability float64) ConfidenceLevel {
	switch {
	case minObservations >= valueOr(c.HighMinObservations, defaultHighMinObservations) && successProbability >= valueOr(c.HighMinSuccess, defaultHighMinSuccess):
		return ConfidenceHigh
	case minObservations >= valueOr(c.MediumMinObservations, defaultMediumMinObservations) && successProbability >= valueOr(c.MediumMinSuccess, defaultMediumMinSuccess):
		return ConfidenceMedium
	case minObservations >= valueOr(c.LowMinObservations, defaultLowMinObservations):
		return ConfidenceLow
	default:
		return ConfidenceInsufficient
	}
}

// merge applies every non-nil field of o.
func (c ConfidenceThresholds) merge(o ConfidenceThresholds) ConfidenceThresholds {
	if o.HighMinObservations != nil {
		c.HighMinObservations = o.HighMinObservations
	}
	if o.HighMinSuccess != nil {
		c.HighMinSuccess = o.HighMinSuccess
	}
	if o.MediumMinObservations != nil {
		c.MediumMinObservations = o.MediumMinObservations
	}
	if o.MediumMinSuccess != nil {
		c.MediumMinSuccess = o.MediumMinSuccess
	}
	if o.LowMinObservations != nil {
		c.LowMinObservations = o.LowMinObservations
	}
	return c
}

// minObservations returns the smallest conversion sample among the stages
// reachable from the earliest active candidate.
func minObservations(params StageParamTable, fromIndex int) int {
	if fromIndex < 0 || fromIndex >= len(FunnelStages) {
		return 0
	}
	minN := -1
	for _, stage := range FunnelStages[fromIndex:] {
		n := params[stage].ConversionRate.N
		if minN < 0 || n < minN {
			minN = n
		}
	}
	return max(minN, 0)
}
