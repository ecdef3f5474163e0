package indicators

import (
	"testing"

	"cryptoSRBounce/internal/domain"
)

func TestNewTrend_Validation(t *testing.T) {
	if _, err := NewTrend(TrendConfig{Lookback: 3}); err == nil {
		t.Error("expected error for lookback below 4")
	}
	if _, err := NewTrend(TrendConfig{Lookback: 10, DeadbandPct: -1}); err == nil {
		t.Error("expected error for negative deadband")
	}
}

func TestTrend_Series(t *testing.T) {
	tests := []struct {
		name     string
		closes   []float64
		deadband float64
		want     domain.TrendDirection
	}{
		{
			name:   "steady rise is up",
			closes: []float64{100, 101, 102, 103},
			want:   domain.TrendUp,
		},
		{
			name:   "steady fall is down",
			closes: []float64{103, 102, 101, 100},
			want:   domain.TrendDown,
		},
		{
			name:   "sideways is flat",
			closes: []float64{100, 101, 100, 101},
			want:   domain.TrendFlat,
		},
		{
			name:     "rise inside the deadband is flat",
			closes:   []float64{100, 100.1, 100.2, 100.3},
			deadband: 1.0, // 1% of ~100 dwarfs a 0.2 mean-close move
			want:     domain.TrendFlat,
		},
		{
			name:   "higher closes without higher lows is flat",
			closes: []float64{100, 101, 108, 94},
			want:   domain.TrendFlat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend, err := NewTrend(TrendConfig{Lookback: 4, DeadbandPct: tt.deadband})
			if err != nil {
				t.Fatalf("NewTrend: %v", err)
			}
			out := trend.Series(barsFromCloses(tt.closes))
			if got := out[len(out)-1]; got != tt.want {
				t.Errorf("trend = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTrend_Series_WarmupIsEmpty(t *testing.T) {
	trend, err := NewTrend(TrendConfig{Lookback: 4})
	if err != nil {
		t.Fatalf("NewTrend: %v", err)
	}
	out := trend.Series(barsFromCloses([]float64{100, 101, 102, 103, 104}))
	for i := 0; i < 3; i++ {
		if out[i] != "" {
			t.Errorf("out[%d] = %s, want undefined before the lookback fills", i, out[i])
		}
	}
	if out[3] == "" || out[4] == "" {
		t.Error("expected defined values from index lookback-1 onward")
	}
}
