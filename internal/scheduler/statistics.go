package scheduler

import (
	"time"

	"github.com/vk/stepwave/internal/resource"
)

// Statistics is a derived view over the scheduler's accumulated result
// history since the last Reset.
type Statistics struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	// SuccessRate is Succeeded over Total, zero when nothing ran yet.
	SuccessRate     float64        `json:"success_rate"`
	TotalDuration   time.Duration  `json:"total_duration"`
	AverageDuration time.Duration  `json:"average_duration"`
	Runs            int            `json:"runs"`
	Locks           resource.Stats `json:"lock_statistics"`
}

// Statistics aggregates over every StepResult accumulated since the last
// Reset, plus the current lock registry counts.
func (s *Scheduler) Statistics() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Statistics{
		Runs:  s.runs,
		Locks: s.resources.Stats(),
	}
	for _, r := range s.history {
		stats.Total++
		switch r.Status {
		case Completed:
			stats.Succeeded++
		case Failed:
			stats.Failed++
		}
		stats.TotalDuration += r.Duration()
	}
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Succeeded) / float64(stats.Total)
		stats.AverageDuration = stats.TotalDuration / time.Duration(stats.Total)
	}
	return stats
}

// History returns a copy of the accumulated results since the last Reset.
func (s *Scheduler) History() []StepResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StepResult, len(s.history))
	copy(out, s.history)
	return out
}
