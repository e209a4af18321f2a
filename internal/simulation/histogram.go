package simulation

import "math"

// HistogramBin counts trials whose time-to-hire fell in [From, To).
type HistogramBin struct {
	From  int `json:"from"`
	To    int `json:"to"`
	Count int `json:"count"`
}

// Histogram is the distribution of simulated days-to-next-hire.
type Histogram struct {
	Bins      []HistogramBin `json:"bins"`
	Total     int            `json:"total"`
	BinWidth  int            `json:"bin_width"`
	MinDays   int            `json:"min_days"`
	MaxDays   int            `json:"max_days"`
	ModalFrom int            `json:"modal_from"`
}

// NewHistogram bins ascending day samples into at most maxBins integer-width buckets.
func NewHistogram(sortedDays []int, maxBins int) Histogram {
	if len(sortedDays) == 0 || maxBins <= 0 {
		return Histogram{}
	}

	lo := sortedDays[0]
	hi := sortedDays[len(sortedDays)-1]
	span := hi - lo + 1
	width := int(math.Ceil(float64(span) / float64(maxBins)))
	if width < 1 {
		width = 1
	}
	binCount := int(math.Ceil(float64(span) / float64(width)))

	bins := make([]HistogramBin, binCount)
	for i := range bins {
		bins[i].From = lo + i*width
		bins[i].To = bins[i].From + width
	}
	for _, d := range sortedDays {
		idx := (d - lo) / width
		if idx >= binCount {
			idx = binCount - 1
		}
		bins[idx].Count++
	}

	modal := 0
	for i, b := range bins {
		if b.Count > bins[modal].Count {
			modal = i
		}
	}

	return Histogram{
		Bins:      bins,
		Total:     len(sortedDays),
		BinWidth:  width,
		MinDays:   lo,
		MaxDays:   hi,
		ModalFrom: bins[modal].From,
	}
}
