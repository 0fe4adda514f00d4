package workers

import (
	"time"

	"github.com/rs/zerolog/log"

	"deskcore/internal/engine/analytics"
	"deskcore/internal/platform/repositories"
)

// Jobs holds the scheduled maintenance work: nightly usage rollups and
// retention purges for request logs and delivery attempts.
type Jobs struct {
	usage         *analytics.Repository
	deliveries    *repositories.DeliveryRepository
	retentionDays int
}

func NewJobs(usage *analytics.Repository, deliveries *repositories.DeliveryRepository, retentionDays int) *Jobs {
	return &Jobs{usage: usage, deliveries: deliveries, retentionDays: retentionDays}
}

// RollupUsage aggregates yesterday's request logs into usage_daily.
func (j *Jobs) RollupUsage() {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	if err := j.usage.RollupDaily(yesterday); err != nil {
		log.Error().Err(err).Msg("usage rollup failed")
		return
	}
	log.Info().Str("day", yesterday.Format("2006-01-02")).Msg("usage rollup completed")
}

// PurgeOldRecords drops request logs and delivery attempts older than
// the retention window. Rolled-up daily numbers survive the purge.
func (j *Jobs) PurgeOldRecords() {
	cutoff := time.Now().AddDate(0, 0, -j.retentionDays).Unix()

	logsPurged, err := j.usage.PurgeBefore(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("request log purge failed")
	}

	attemptsPurged, err := j.deliveries.PurgeBefore(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("delivery attempt purge failed")
	}

	log.Info().
		Int64("request_logs", logsPurged).
		Int64("delivery_attempts", attemptsPurged).
		Msg("retention purge completed")
}
