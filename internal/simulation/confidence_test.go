package simulation

import "testing"

func TestConfidenceThresholds_Classify(t *testing.T) {
	thresholds := DefaultForecastConfig().Confidence

	tests := []struct {
		name     string
		minN     int
		success  float64
		expected ConfidenceLevel
	}{
		{"High", 20, 0.8, ConfidenceHigh},
		{"HighNeedsSuccess", 50, 0.79, ConfidenceMedium},
		{"Medium", 10, 0.5, ConfidenceMedium},
		{"MediumNeedsSuccess", 15, 0.4, ConfidenceLow},
		{"LowFloor", 5, 0.99, ConfidenceLow},
		{"ZeroSuccessStillGraded", 50, 0, ConfidenceLow},
		{"Insufficient", 4, 1, ConfidenceInsufficient},
		{"NoData", 0, 0, ConfidenceInsufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := thresholds.Classify(tt.minN, tt.success); got != tt.expected {
				t.Errorf("Classify(%d, %.2f) = %s, want %s", tt.minN, tt.success, got, tt.expected)
			}
		})
	}
}

func TestConfidenceThresholds_Custom(t *testing.T) {
	strict := ConfidenceThresholds{
		HighMinObservations:   Ptr(100),
		HighMinSuccess:        Ptr(0.95),
		MediumMinObservations: Ptr(50),
		MediumMinSuccess:      Ptr(0.7),
		LowMinObservations:    Ptr(20),
	}
	if got := strict.Classify(40, 0.99); got != ConfidenceLow {
		t.Errorf("Expected LOW under strict thresholds, got %s", got)
	}
	if got := strict.Classify(19, 0.99); got != ConfidenceInsufficient {
		t.Errorf("Expected INSUFFICIENT under strict thresholds, got %s", got)
	}
}

func TestConfidenceThresholds_ZeroFloor(t *testing.T) {
	cfg, err := ForecastConfig{Confidence: ConfidenceThresholds{LowMinObservations: Ptr(0)}}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := *cfg.Confidence.LowMinObservations; got != 0 {
		t.Fatalf("Expected the explicit 0 floor to survive defaults, got %d", got)
	}
	if got := cfg.Confidence.Classify(0, 0); got != ConfidenceLow {
		t.Errorf("Expected LOW with no observation floor, got %s", got)
	}

	merged := DefaultForecastConfig().Merge(ForecastConfig{Confidence: ConfidenceThresholds{HighMinObservations: Ptr(0)}})
	if got := *merged.Confidence.HighMinObservations; got != 0 {
		t.Errorf("Expected Merge to apply an explicit 0, got %d", got)
	}
	if got := *merged.Confidence.MediumMinObservations; got != 10 {
		t.Errorf("Expected unset thresholds to keep their value, got %d", got)
	}
}

func TestConfidenceThresholds_NilUsesDefaults(t *testing.T) {
	var empty ConfidenceThresholds
	if got := empty.Classify(20, 0.8); got != ConfidenceHigh {
		t.Errorf("Expected HIGH with default thresholds, got %s", got)
	}
	if got := empty.Classify(4, 1); got != ConfidenceInsufficient {
		t.Errorf("Expected INSUFFICIENT below the default floor, got %s", got)
	}
}

func TestMinObservations(t *testing.T) {
	params := BuildStageParams([]StageHistoricalData{
		{Stage: "SCREEN", Entered: 8, Passed: 4},
		{Stage: "HM_SCREEN", Entered: 30, Passed: 20},
		{Stage: "ONSITE", Entered: 25, Passed: 10},
		{Stage: "OFFER", Entered: 12, Passed: 9},
	}, 2, 5)

	if got := minObservations(params, 0); got != 8 {
		t.Errorf("From SCREEN expected 8, got %d", got)
	}
	if got := minObservations(params, 1); got != 12 {
		t.Errorf("From HM_SCREEN expected 12, got %d", got)
	}
	if got := minObservations(params, len(FunnelStages)); got != 0 {
		t.Errorf("Out of range index expected 0, got %d", got)
	}
}
