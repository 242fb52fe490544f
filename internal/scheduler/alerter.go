package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/neosoob/clash-test/internal/domain"
	"github.com/neosoob/clash-test/internal/logstore"
	"github.com/neosoob/clash-test/internal/notify"
)

type AlerterConfig struct {
	Target          string
	AlertOnRecovery bool
	Cooldown        time.Duration
	PollInterval    time.Duration
}

// Alerter tails the probe log and notifies when connectivity flips.
// Down alerts respect a cooldown so a flapping link does not spam the
// channel; recovery alerts bypass it. State lives in memory only; a
// restart re-learns the current state from the next scan.
type Alerter struct {
	log      *zap.Logger
	store    logstore.Store
	notifier notify.Notifier
	cfg      AlerterConfig

	lastUp     *bool
	lastSentAt time.Time
}

func NewAlerter(log *zap.Logger, store logstore.Store, notifier notify.Notifier, cfg AlerterConfig) *Alerter {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	return &Alerter{
		log:      log,
		store:    store,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (a *Alerter) Run(ctx context.Context) error {
	t := time.NewTicker(a.cfg.PollInterval)
	defer t.Stop()

	// initial pass
	_ = a.scanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			_ = a.scanOnce(ctx)
		}
	}
}

func (a *Alerter) scanOnce(ctx context.Context) error {
	records, err := a.store.ReadAll(ctx)
	if err != nil {
		a.log.Warn("alerter_read_error", zap.Error(err))
		return err
	}
	if len(records) == 0 {
		return nil
	}

	latest := records[len(records)-1]
	up := latest.Status == domain.StatusSuccess
	now := time.Now()

	stateChanged := a.lastUp == nil || *a.lastUp != up

	// Cooldown only matters for DOWN alerts (suppresses noisy repeats).
	cooled := a.lastSentAt.IsZero() || now.Sub(a.lastSentAt) >= a.cfg.Cooldown

	downAlert := stateChanged && !up && cooled
	recoveryAlert := stateChanged && up && a.cfg.AlertOnRecovery // bypass cooldown

	if downAlert || recoveryAlert {
		title := "🔴 Connectivity LOST"
		if up {
			title = "🟢 Connectivity RESTORED"
		}

		latencyTxt := "n/a"
		if latest.LatencyMS != nil {
			latencyTxt = fmt.Sprintf("%.0f ms", *latest.LatencyMS)
		}

		text := fmt.Sprintf(
			"Target: %s\nStatus: %s\nLatency: %s\nDetail: %s\nAt: %s",
			a.cfg.Target, latest.Status, latencyTxt, latest.Detail, latest.Timestamp,
		)

		if err := a.notifier.Send(ctx, title, text); err != nil {
			a.log.Warn("alert_send_failed", zap.Error(err))
		} else {
			a.log.Info("alert_sent", zap.String("title", title), zap.Bool("up", up))
		}
		a.lastUp = &up
		a.lastSentAt = now
		return nil
	}

	// State changed but nothing was sent (cooldown hit, or recovery
	// alerts are off): record the new state and rearm the cooldown.
	if stateChanged {
		a.lastUp = &up
		a.lastSentAt = time.Time{}
	}
	return nil
}
