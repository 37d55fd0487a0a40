package scheduler

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/saathi-care/listener-platform/app/middleware"
	businessflow "github.com/saathi-care/listener-platform/business_flow"
	"github.com/saathi-care/listener-platform/config"
	"github.com/saathi-care/listener-platform/utils"
)

// OnboardingWatcher sweeps listeners who completed onboarding but whose status
// transition was missed (a crash between the profile update and the status
// flip) and advances them to the configured target status.
type OnboardingWatcher struct {
	onboardingFlow businessflow.OnboardingFlow
	logger         *log.Logger
	interval       time.Duration
}

func NewOnboardingWatcher(onboardingFlow businessflow.OnboardingFlow, cfg config.OnboardingConfig) *OnboardingWatcher {
	interval := cfg.WatcherInterval
	if interval <= 0 {
		interval = utils.DefaultWatcherInterval
	}

	return &OnboardingWatcher{
		onboardingFlow: onboardingFlow,
		logger:         log.New(os.Stdout, "onboarding-watcher ", log.LstdFlags|log.LUTC),
		interval:       interval,
	}
}

// Start launches the watcher loop in a background goroutine and returns a stop function
func (w *OnboardingWatcher) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (w *OnboardingWatcher) runOnce(ctx context.Context) {
	advanced, err := w.onboardingFlow.ActivateEligible(ctx)
	if err != nil {
		w.logger.Printf("watcher: activation sweep failed: %v", err)
		return
	}
	if advanced > 0 {
		middleware.RecordWatcherActivations(advanced)
		w.logger.Printf("watcher: advanced %d listeners", advanced)
	}
}
