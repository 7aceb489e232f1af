package agent

import (
	"log/slog"
	"time"

	"taglift/internal/logging"
)

// Stats tracks a run's progress. All fields are owned by the control loop;
// workers report results over a channel and never touch this directly.
type Stats struct {
	StartedAt time.Time

	Processed     int
	Found         int
	LowConfidence int
	NotFound      int
	Errors        int
	Saved         int

	ConsecutiveErrors int
	ServerDownRounds  int
	CurrentCategory   int64
}

// FoundRate is the share of processed questions that produced an official
// classification.
func (s *Stats) FoundRate() float64 {
	if s.Processed <= 0 {
		return 0
	}
	return float64(s.Found) / float64(s.Processed)
}

// LogSummary emits the session counters in one structured line.
func (s *Stats) LogSummary(logger *slog.Logger, now time.Time) {
	logger.Info("session summary",
		logging.Duration("elapsed", now.Sub(s.StartedAt).Round(time.Second)),
		logging.Int("processed", s.Processed),
		logging.Int("found", s.Found),
		logging.Int("low_confidence", s.LowConfidence),
		logging.Int("not_found", s.NotFound),
		logging.Int("errors", s.Errors),
		logging.Int("saved", s.Saved),
		logging.Float64("found_rate", s.FoundRate()))
}
