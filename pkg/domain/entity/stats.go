package entity

import "time"

// RunStats holds the counters of a run. It is not safe for concurrent use;
// the sink serializes every update.
type RunStats struct {
	TotalChecked int64 `json:"total_checked"`
	Available    int64 `json:"available"`
	Taken        int64 `json:"taken"`
	OnAuction    int64 `json:"on_auction"`
	Unavailable  int64 `json:"unavailable"`
	Errors       int64 `json:"errors"`
}

// Record counts one result
func (s *RunStats) Record(status Status) {
	s.TotalChecked++
	switch status {
	case StatusAvailable:
		s.Available++
	case StatusTaken:
		s.Taken++
	case StatusOnAuction:
		s.OnAuction++
	case StatusUnavailable:
		s.Unavailable++
	default:
		s.Errors++
	}
}

// Metrics represents a point-in-time view of a running check
type Metrics struct {
	Stats          RunStats
	Total          int
	InFlight       int
	TotalSlots     int
	BatchesDone    int
	Batches        int
	Paused         bool
	StartTime      time.Time
	LastUpdateTime time.Time
}

// Completed returns the number of identifiers that finished
func (m *Metrics) Completed() int64 {
	return m.Stats.TotalChecked
}

// Ratio returns completed/total in [0, 1]
func (m *Metrics) Ratio() float64 {
	if m.Total == 0 {
		return 0
	}
	r := float64(m.Stats.TotalChecked) / float64(m.Total)
	if r > 1 {
		return 1
	}
	return r
}

// RatePerMinute returns the overall throughput since StartTime
func (m *Metrics) RatePerMinute() float64 {
	if m.StartTime.IsZero() {
		return 0
	}
	end := m.LastUpdateTime
	if end.IsZero() {
		end = time.Now()
	}
	return PerMinute(m.Stats.TotalChecked, end.Sub(m.StartTime))
}

// PerMinute converts a count over a duration into a per-minute rate
func PerMinute(count int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(count) / elapsed.Minutes()
}
