package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SubscriptionExpirer is implemented by services.OrganizationService.
type SubscriptionExpirer interface {
	ExpireLapsedSubscriptions(ctx context.Context, batch int) (int, error)
}

// SubscriptionExpiryJob moves organizations whose subscription end date has
// passed to the expired state, one batch per run.
type SubscriptionExpiryJob struct {
	expirer SubscriptionExpirer
	batch   int
	timeout time.Duration
	logger  zerolog.Logger
}

func NewSubscriptionExpiryJob(expirer SubscriptionExpirer, batch int, timeout time.Duration, logger zerolog.Logger) *SubscriptionExpiryJob {
	if batch <= 0 {
		batch = 100
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &SubscriptionExpiryJob{
		expirer: expirer,
		batch:   batch,
		timeout: timeout,
		logger:  logger.With().Str("job", "subscription-expiry").Logger(),
	}
}

func (j *SubscriptionExpiryJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	expired, err := j.expirer.ExpireLapsedSubscriptions(ctx, j.batch)
	if err != nil {
		j.logger.Error().Err(err).Int("expired", expired).Msg("subscription expiry sweep failed")
		return err
	}

	event := j.logger.Debug()
	if expired > 0 {
		event = j.logger.Info()
	}
	event.Int("expired", expired).Dur("took", time.Since(start)).Msg("subscription expiry sweep completed")
	return nil
}
