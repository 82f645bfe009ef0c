package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitechecker/internal/domain"
	"github.com/hamed0406/sitechecker/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
}

// Alerter compares each run with the last known state per URL and notifies
// on DOWN and, optionally, on recovery.
type Alerter struct {
	logger   *zap.Logger
	alertDB  repo.AlertStore
	notifier interface {
		Send(context.Context, string, string) error
	}
	cfg AlerterConfig
	now func() time.Time
}

func NewAlerter(
	logger *zap.Logger,
	alertDB repo.AlertStore,
	notifier interface {
		Send(context.Context, string, string) error
	},
	cfg AlerterConfig,
) *Alerter {
	return &Alerter{
		logger:   logger,
		alertDB:  alertDB,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Observe processes one run's outcomes. Notification failures are logged
// and do not stop the scan.
func (a *Alerter) Observe(ctx context.Context, outcomes []domain.CheckOutcome) error {
	now := a.now()

	for _, o := range outcomes {
		up := o.OK()
		rec, err := a.alertDB.Get(ctx, o.URL)
		if err != nil {
			return fmt.Errorf("alert state %s: %w", o.URL, err)
		}

		// Has the up/down state changed compared to what we last recorded?
		stateChanged := rec == nil || rec.LastState != up

		// Cooldown only matters for DOWN alerts (suppresses noisy repeats).
		cooled := true
		if rec != nil && rec.LastSentAt != nil {
			cooled = now.Sub(*rec.LastSentAt) >= a.cfg.Cooldown
		}

		downAlert := stateChanged && !up && cooled
		// a first sighting that is UP is not a recovery
		recoveryAlert := stateChanged && up && rec != nil && a.cfg.AlertOnRecovery

		if downAlert || recoveryAlert {
			title := "🔴 Target DOWN"
			if up {
				title = "🟢 Target RECOVERED"
			}
			status := o.Error
			if up {
				status = fmt.Sprintf("%d", o.StatusCode)
			}
			text := fmt.Sprintf(
				"URL: %s\nStatus: %s\nResponse Time: %s\nChecked: %s",
				o.URL, status, o.Elapsed, o.ObservedAt.Format(time.RFC3339),
			)

			if err := a.notifier.Send(ctx, title, text); err != nil {
				a.logger.Warn("alert_send_failed", zap.String("url", o.URL), zap.Error(err))
			}
			if err := a.alertDB.Set(ctx, o.URL, up, now); err != nil {
				return fmt.Errorf("save alert state %s: %w", o.URL, err)
			}
			continue
		}

		// If state changed but we did not send (e.g., DOWN within cooldown or
		// recovery alerts disabled), still record the new state. The last
		// send time is kept so the cooldown keeps working.
		if stateChanged {
			var sentAt time.Time
			if rec != nil && rec.LastSentAt != nil {
				sentAt = *rec.LastSentAt
			}
			if err := a.alertDB.Set(ctx, o.URL, up, sentAt); err != nil {
				return fmt.Errorf("save alert state %s: %w", o.URL, err)
			}
		}
	}
	return nil
}
