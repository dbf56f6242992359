package prayer

//go:generate $MOCKGEN -source=provider.go -destination=mocks/provider_mock.go

import (
	"context"
	"time"
)

// Provider computes prayer schedules for a fixed location and offset.
type Provider interface {
	// Schedule returns the prayer times for the calendar date of date.
	Schedule(ctx context.Context, date time.Time) (*Schedule, error)
}
