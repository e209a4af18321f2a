package stats

import "math"

// Wheeler's scaling constant for an Individuals chart.
const xmrScale = 2.66

// shiftRun is the number of consecutive points on one side of the average
// that signals a sustained shift.
const shiftRun = 8

// XmRResult represents the output of a Process Behavior Chart analysis.
type XmRResult struct {
	Average     float64   `json:"average"`
	AmR         float64   `json:"average_moving_range"`
	UNPL        float64   `json:"upper_natural_process_limit"`
	LNPL        float64   `json:"lower_natural_process_limit"`
	Values      []float64 `json:"values"`
	MovingRange []float64 `json:"moving_ranges"`
	Signals     []Signal  `json:"signals"`
}

// Signal represents a detected special cause variation.
type Signal struct {
	Index       int    `json:"index"`
	Key         string `json:"key"`
	Type        string `json:"type"` // "outlier", "shift"
	Description string `json:"description"`
}

// HasShift reports whether the chart contains a sustained shift.
func (r XmRResult) HasShift() bool {
	for _, s := range r.Signals {
		if s.Type == "shift" {
			return true
		}
	}
	return false
}

// Outliers returns the outlier signals.
func (r XmRResult) Outliers() []Signal {
	var out []Signal
	for _, s := range r.Signals {
		if s.Type == "outlier" {
			out = append(out, s)
		}
	}
	return out
}

// CalculateXmR builds an Individuals and Moving Range chart over values.
// keys, when given, label the points that raise signals. Limits are not
// clamped, so signed series such as forecast errors are supported.
func CalculateXmR(values []float64, keys []string) XmRResult {
	if len(values) == 0 {
		return XmRResult{}
	}

	result := XmRResult{Values: values}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	result.Average = sum / float64(len(values))

	if len(values) > 1 {
		mrSum := 0.0
		result.MovingRange = make([]float64, len(values)-1)
		for i := 0; i < len(values)-1; i++ {
			mr := math.Abs(values[i+1] - values[i])
			result.MovingRange[i] = mr
			mrSum += mr
		}
		result.AmR = mrSum / float64(len(values)-1)
	}

	result.UNPL = result.Average + xmrScale*result.AmR
	result.LNPL = result.Average - xmrScale*result.AmR
	result.Signals = detectSignals(values, result.Average, result.UNPL, result.LNPL, keys)
	return result
}

func detectSignals(values []float64, avg, unpl, lnpl float64, keys []string) []Signal {
	var signals []Signal
	keyAt := func(i int) string {
		if i < len(keys) {
			return keys[i]
		}
		return ""
	}

	for i, v := range values {
		if v > unpl {
			signals = append(signals, Signal{
				Index:       i,
				Key:         keyAt(i),
				Type:        "outlier",
				Description: "Point above Upper Natural Process Limit (UNPL)",
			})
		} else if v < lnpl {
			signals = append(signals, Signal{
				Index:       i,
				Key:         keyAt(i),
				Type:        "outlier",
				Description: "Point below Lower Natural Process Limit (LNPL)",
			})
		}
	}

	if len(values) < shiftRun {
		return signals
	}

	side, count := 0, 0
	for i, v := range values {
		current := 0
		if v > avg {
			current = 1
		} else if v < avg {
			current = -1
		}

		if current == side && current != 0 {
			count++
		} else {
			side = current
			count = 1
		}

		if count == shiftRun {
			signals = append(signals, Signal{
				Index:       i,
				Key:         keyAt(i),
				Type:        "shift",
				Description: "8 consecutive points on one side of the average (Process Shift)",
			})
		}
	}
	return signals
}
