// Package booking holds the reservation validity engine and cost calculator.
package booking

import (
	"fmt"
	"time"

	"github.com/courtsidehq/courtside/internal/config"
)

// Policy carries the facility's booking rules. It is plain data so tests can
// exercise alternate policies without touching configuration files.
// Location is the facility's wall clock; opening hours and the same-day rule
// are judged against it, whatever offset the client sent the timestamps in.
type Policy struct {
	OpensAt     time.Duration // offset from midnight on the facility clock
	ClosesAt    time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration
	DailyQuota  int
	Location    *time.Location
}

// DefaultPolicy matches the facility's standing rules: open 08:00-23:00,
// bookings of 1-4 hours, at most 3 active reservations per client per day.
func DefaultPolicy() Policy {
	return Policy{
		OpensAt:     8 * time.Hour,
		ClosesAt:    23 * time.Hour,
		MinDuration: time.Hour,
		MaxDuration: 4 * time.Hour,
		DailyQuota:  3,
		Location:    time.UTC,
	}
}

// PolicyFromConfig builds a Policy from the loaded booking configuration and
// the configured facility timezone.
func PolicyFromConfig(cfg config.BookingConfig, timezone string) (Policy, error) {
	opens, err := parseClock(cfg.OpensAt)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid opens_at: %w", err)
	}
	closes, err := parseClock(cfg.ClosesAt)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid closes_at: %w", err)
	}
	if closes <= opens {
		return Policy{}, fmt.Errorf("closes_at must be after opens_at")
	}
	if timezone == "" {
		timezone = "Local"
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid timezone: %w", err)
	}
	return Policy{
		OpensAt:     opens,
		ClosesAt:    closes,
		MinDuration: time.Duration(cfg.MinDurationHours) * time.Hour,
		MaxDuration: time.Duration(cfg.MaxDurationHours) * time.Hour,
		DailyQuota:  cfg.DailyQuota,
		Location:    location,
	}, nil
}

func parseClock(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func clockOffset(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}

func formatClock(offset time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(offset.Hours()), int(offset.Minutes())%60)
}
