package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskManager(t *testing.T) {
	manager := NewRiskManager(RiskConfig{
		StopLossPercent: 0.02,
		RiskPercentage:  1.0,
		TrailCallback:   0.005,
	})

	// Position sizing: 1000 USDT * 1% / 30000 = 0.000333.. -> 0.000
	if got := manager.GetPositionSize(1000, 30000); got != 0 {
		t.Errorf("Expected size 0 for tiny balance, got %f", got)
	}
	// 100000 * 1% / 20000 = 0.05
	if got := manager.GetPositionSize(100000, 20000); got != 0.05 {
		t.Errorf("Expected size 0.05, got %f", got)
	}
	if got := manager.GetPositionSize(0, 20000); got != 0 {
		t.Errorf("Expected zero size for zero balance, got %f", got)
	}

	// Stop loss prices
	if got := manager.GetStopLoss(50000, true, 2); got != 49000 {
		t.Errorf("Expected long stop 49000, got %f", got)
	}
	if got := manager.GetStopLoss(50000, false, 2); got != 51000 {
		t.Errorf("Expected short stop 51000, got %f", got)
	}

	// Breakeven prices
	if got := manager.GetBreakevenPrice(100, true, 2); got != 100.1 {
		t.Errorf("Expected long breakeven 100.1, got %f", got)
	}
	if got := manager.GetBreakevenPrice(100, false, 2); got != 99.9 {
		t.Errorf("Expected short breakeven 99.9, got %f", got)
	}
}

func TestGetPositionSize_Rounding(t *testing.T) {
	manager := NewRiskManager(RiskConfig{RiskPercentage: 1.0})
	// 10000 * 1% / 27345.67 = 0.0036569... -> 0.004
	assert.Equal(t, 0.004, manager.GetPositionSize(10000, 27345.67))
	assert.Equal(t, 0.0, manager.GetPositionSize(10000, 0))
}

func TestGetStopLoss_PricePrecision(t *testing.T) {
	manager := NewRiskManager(RiskConfig{StopLossPercent: 0.02})
	assert.Equal(t, 1.2249, manager.GetStopLoss(1.24987, true, 4))
	assert.Equal(t, 1.2749, manager.GetStopLoss(1.24987, false, 4))
	assert.Equal(t, 27000.0, manager.GetStopLoss(27551.02, true, 0))
}

func TestGetStopLoss_MonotonicInStopPercent(t *testing.T) {
	mark := 43210.55
	prevLong, prevShort := mark, mark
	for _, sl := range []float64{0.005, 0.01, 0.02, 0.05, 0.1} {
		m := NewRiskManager(RiskConfig{StopLossPercent: sl})
		long := m.GetStopLoss(mark, true, 2)
		short := m.GetStopLoss(mark, false, 2)
		assert.Less(t, long, prevLong, "long stop must move away as sl grows (sl=%v)", sl)
		assert.Greater(t, short, prevShort, "short stop must move away as sl grows (sl=%v)", sl)
		prevLong, prevShort = long, short
	}
}

func TestProfitFraction(t *testing.T) {
	tests := []struct {
		name   string
		entry  float64
		mark   float64
		isLong bool
		want   float64
	}{
		{"long in profit", 100, 100.6, true, 0.006},
		{"long in loss", 100, 99, true, -0.01},
		{"short in profit", 100.6, 100, false, 0.006},
		{"short in loss", 99, 100, false, -0.01},
		{"zero entry", 0, 100, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ProfitFraction(tt.entry, tt.mark, tt.isLong), 1e-9)
		})
	}
}

func TestTrailArmed(t *testing.T) {
	m := NewRiskManager(RiskConfig{TrailCallback: 0.005})
	assert.True(t, m.TrailArmed(0.006))
	assert.True(t, m.TrailArmed(0.005))
	assert.False(t, m.TrailArmed(0.0049))
}

func TestTrailArmed_ExactThreshold(t *testing.T) {
	m := NewRiskManager(RiskConfig{TrailCallback: 0.005})
	tests := []struct {
		name   string
		entry  float64
		mark   float64
		isLong bool
	}{
		{"long 30000 -> 30150", 30000, 30150, true},
		{"long 100 -> 100.5", 100, 100.5, true},
		{"short 30150 -> 30000", 30150, 30000, false},
		{"short 100.5 -> 100", 100.5, 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profit := ProfitFraction(tt.entry, tt.mark, tt.isLong)
			assert.Equal(t, 0.005, profit)
			assert.True(t, m.TrailArmed(profit))
		})
	}
}

func TestIsAtLeastAsFavorable(t *testing.T) {
	assert.True(t, IsAtLeastAsFavorable(101, 100.1, true))
	assert.True(t, IsAtLeastAsFavorable(100.1, 100.1, true))
	assert.False(t, IsAtLeastAsFavorable(98, 100.1, true))

	assert.True(t, IsAtLeastAsFavorable(99, 99.9, false))
	assert.True(t, IsAtLeastAsFavorable(99.9, 99.9, false))
	assert.False(t, IsAtLeastAsFavorable(102, 99.9, false))
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "0.003", FormatDecimal(0.003, 3))
	assert.Equal(t, "49000.00", FormatDecimal(49000, 2))
	assert.Equal(t, "1.250", FormatDecimal(1.25, 3))
}
