package simulation

import "testing"

func TestNewHistogram(t *testing.T) {
	days := []int{3, 4, 5, 5, 5, 6, 9, 12}
	h := NewHistogram(days, 5)

	if h.Total != len(days) {
		t.Errorf("Expected total %d, got %d", len(days), h.Total)
	}
	if h.MinDays != 3 || h.MaxDays != 12 {
		t.Errorf("Expected range 3-12, got %d-%d", h.MinDays, h.MaxDays)
	}
	if h.BinWidth != 2 {
		t.Errorf("Expected bin width 2, got %d", h.BinWidth)
	}
	if len(h.Bins) != 5 {
		t.Fatalf("Expected 5 bins, got %d", len(h.Bins))
	}

	sum := 0
	for _, b := range h.Bins {
		sum += b.Count
		if b.To-b.From != h.BinWidth {
			t.Errorf("Bin [%d,%d) does not match width %d", b.From, b.To, h.BinWidth)
		}
	}
	if sum != len(days) {
		t.Errorf("Bin counts sum to %d, want %d", sum, len(days))
	}
	// [5,7) holds four trials.
	if h.ModalFrom != 5 {
		t.Errorf("Expected modal bin at 5, got %d", h.ModalFrom)
	}
}

func TestNewHistogram_SingleValue(t *testing.T) {
	h := NewHistogram([]int{7, 7, 7}, 20)
	if len(h.Bins) != 1 || h.Bins[0].Count != 3 || h.BinWidth != 1 {
		t.Errorf("Expected one unit bin holding 3 trials, got %+v", h)
	}
}

func TestNewHistogram_Empty(t *testing.T) {
	if h := NewHistogram(nil, 10); len(h.Bins) != 0 || h.Total != 0 {
		t.Errorf("Expected empty histogram, got %+v", h)
	}
	if h := NewHistogram([]int{1, 2}, 0); len(h.Bins) != 0 {
		t.Errorf("Expected no bins for maxBins=0, got %+v", h)
	}
}
