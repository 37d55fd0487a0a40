// Package businessflow contains the core business logic and use cases for listener workflows
package businessflow

import (
	"time"

	"github.com/saathi-care/listener-platform/config"
	"github.com/saathi-care/listener-platform/utils"
)

// Earning is the split of a session's value between the listener and the
// platform. Both amounts are rounded to two decimal places.
type Earning struct {
	ListenerAmount float64
	PlatformAmount float64
}

// Total returns the gross value of the session.
func (e Earning) Total() float64 {
	return utils.RoundMoney(e.ListenerAmount + e.PlatformAmount)
}

// PricingPolicy converts session durations and message counts into earnings.
// Call payouts use tiered per-minute rates that grow with the call length;
// the rate for the whole call is picked from the band its total duration
// falls into. Messages pay a flat rate per user-authored message.
type PricingPolicy struct {
	cfg config.PricingConfig
}

// NewPricingPolicy builds a policy from configuration
func NewPricingPolicy(cfg config.PricingConfig) PricingPolicy {
	return PricingPolicy{cfg: cfg}
}

// DefaultPricingPolicy returns the canonical production rates.
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{cfg: config.PricingConfig{
		CallBand5:     2.0,
		CallBand15:    2.5,
		CallBand30:    3.0,
		CallBand45:    3.5,
		CallBandMax:   3.6,
		CallGrossRate: 9.4,
		MessageRate:   0.20,
		MessageGross:  2.35,
	}}
}

// CallEarning computes the payout for a completed call of the given duration.
// A zero duration yields a zero earning. A negative duration is rejected.
func (p PricingPolicy) CallEarning(duration time.Duration) (Earning, error) {
	if duration < 0 {
		return Earning{}, ErrNegativeDuration
	}
	if duration == 0 {
		return Earning{}, nil
	}
	if p.cfg.MinBillableSecs > 0 && duration < time.Duration(p.cfg.MinBillableSecs)*time.Second {
		return Earning{}, nil
	}

	minutes := duration.Minutes()
	rate := p.callRate(minutes)

	listener := utils.RoundMoney(minutes * rate)
	gross := utils.RoundMoney(minutes * p.cfg.CallGrossRate)
	platform := utils.RoundMoney(gross - listener)
	if platform < 0 {
		platform = 0
	}

	return Earning{ListenerAmount: listener, PlatformAmount: platform}, nil
}

// MessageEarning computes the payout for a single user-authored chat message.
func (p PricingPolicy) MessageEarning() Earning {
	listener := utils.RoundMoney(p.cfg.MessageRate)
	platform := utils.RoundMoney(p.cfg.MessageGross - p.cfg.MessageRate)
	if platform < 0 {
		platform = 0
	}
	return Earning{ListenerAmount: listener, PlatformAmount: platform}
}

// callRate picks the per-minute rate band for the call's total length.
func (p PricingPolicy) callRate(minutes float64) float64 {
	switch {
	case minutes <= 5:
		return p.cfg.CallBand5
	case minutes <= 15:
		return p.cfg.CallBand15
	case minutes <= 30:
		return p.cfg.CallBand30
	case minutes <= 45:
		return p.cfg.CallBand45
	default:
		return p.cfg.CallBandMax
	}
}
