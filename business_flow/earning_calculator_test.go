package businessflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saathi-care/listener-platform/config"
)

func TestCallEarningBands(t *testing.T) {
	policy := DefaultPricingPolicy()

	tests := []struct {
		name         string
		duration     time.Duration
		wantListener float64
		wantPlatform float64
	}{
		{
			name:         "short call uses the lowest band",
			duration:     4 * time.Minute,
			wantListener: 8.00,  // 4 * 2.0
			wantPlatform: 29.60, // 4 * 9.4 - 8.00
		},
		{
			name:         "five minutes stays in the first band",
			duration:     5 * time.Minute,
			wantListener: 10.00,
			wantPlatform: 37.00,
		},
		{
			name:         "twelve minute call pays the second band for the whole call",
			duration:     12 * time.Minute,
			wantListener: 30.00, // 12 * 2.5
			wantPlatform: 82.80, // 112.80 - 30.00
		},
		{
			name:         "twenty minute call pays the third band",
			duration:     20 * time.Minute,
			wantListener: 60.00,  // 20 * 3.0
			wantPlatform: 128.00, // 188.00 - 60.00
		},
		{
			name:         "forty minute call pays the fourth band",
			duration:     40 * time.Minute,
			wantListener: 140.00, // 40 * 3.5
			wantPlatform: 236.00, // 376.00 - 140.00
		},
		{
			name:         "hour long call pays the top band",
			duration:     60 * time.Minute,
			wantListener: 216.00, // 60 * 3.6
			wantPlatform: 348.00, // 564.00 - 216.00
		},
		{
			name:         "partial minutes are paid pro rata",
			duration:     90 * time.Second,
			wantListener: 3.00,  // 1.5 * 2.0
			wantPlatform: 11.10, // 14.10 - 3.00
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			earning, err := policy.CallEarning(tt.duration)
			require.NoError(t, err)
			assert.Equal(t, tt.wantListener, earning.ListenerAmount)
			assert.Equal(t, tt.wantPlatform, earning.PlatformAmount)
		})
	}
}

func TestCallEarningRoundsHalfUp(t *testing.T) {
	policy := DefaultPricingPolicy()

	// 3.75 seconds is 0.0625 minutes; at 2.0/min that is 0.125, which must
	// round up to 0.13, not down to 0.12.
	earning, err := policy.CallEarning(3750 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 0.13, earning.ListenerAmount)
}

func TestCallEarningZeroDuration(t *testing.T) {
	policy := DefaultPricingPolicy()

	earning, err := policy.CallEarning(0)
	require.NoError(t, err)
	assert.Zero(t, earning.ListenerAmount)
	assert.Zero(t, earning.PlatformAmount)
	assert.Zero(t, earning.Total())
}

func TestCallEarningNegativeDuration(t *testing.T) {
	policy := DefaultPricingPolicy()

	_, err := policy.CallEarning(-1 * time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNegativeDuration)
}

func TestCallEarningBelowBillableThreshold(t *testing.T) {
	policy := NewPricingPolicy(config.PricingConfig{
		CallBand5:       2.0,
		CallBand15:      2.5,
		CallBand30:      3.0,
		CallBand45:      3.5,
		CallBandMax:     3.6,
		CallGrossRate:   9.4,
		MinBillableSecs: 30,
	})

	earning, err := policy.CallEarning(20 * time.Second)
	require.NoError(t, err)
	assert.Zero(t, earning.ListenerAmount)
	assert.Zero(t, earning.PlatformAmount)
}

func TestCallEarningPlatformNeverNegative(t *testing.T) {
	// Listener rate above the gross rate would make the margin negative; it
	// is clamped to zero instead.
	policy := NewPricingPolicy(config.PricingConfig{
		CallBand5:     10.0,
		CallGrossRate: 5.0,
	})

	earning, err := policy.CallEarning(2 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 20.00, earning.ListenerAmount)
	assert.Zero(t, earning.PlatformAmount)
}

func TestMessageEarning(t *testing.T) {
	policy := DefaultPricingPolicy()

	earning := policy.MessageEarning()
	assert.Equal(t, 0.20, earning.ListenerAmount)
	assert.Equal(t, 2.15, earning.PlatformAmount)
	assert.Equal(t, 2.35, earning.Total())
}
