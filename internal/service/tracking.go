package service

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"time"
)

const trackingPrefix = "SHP-"

// suffix has no leading zeros so parse-then-format gives back the same string
var trackingPattern = regexp.MustCompile(`^SHP-(\d{6})-(0|[1-9]\d{0,2})$`)

// TrackingNumber is the parsed form of SHP-<stamp>-<suffix>.
type TrackingNumber struct {
	Stamp  int // low six digits of the creation time in unix milliseconds
	Suffix int // random 0..999
}

func (t TrackingNumber) String() string {
	return fmt.Sprintf("%s%06d-%d", trackingPrefix, t.Stamp, t.Suffix)
}

// GenerateTrackingNumber builds a human-readable tracking number. It is not
// checked against existing shipments; the unique index on shipments rejects a collision.
func GenerateTrackingNumber(now time.Time) string {
	return TrackingNumber{
		Stamp:  int(now.UnixMilli() % 1_000_000),
		Suffix: rand.IntN(1000),
	}.String()
}

func ParseTrackingNumber(s string) (TrackingNumber, error) {
	m := trackingPattern.FindStringSubmatch(s)
	if m == nil {
		return TrackingNumber{}, fmt.Errorf("%w: %q", ErrInvalidTrackingNumber, s)
	}
	stamp, _ := strconv.Atoi(m[1])
	suffix, _ := strconv.Atoi(m[2])
	return TrackingNumber{Stamp: stamp, Suffix: suffix}, nil
}

const (
	defaultDepartureBuffer = 3 * 24 * time.Hour
	defaultTransitDays     = 30
)

// EstimateSchedule returns the departure and estimated arrival for an offer.
// Missing departure defaults to now + 3 days, missing transit to 30 days.
// Arrival is never before departure.
func EstimateSchedule(departure *time.Time, transitDays *int, now time.Time) (time.Time, time.Time) {
	dep := now.Add(defaultDepartureBuffer)
	if departure != nil && !departure.IsZero() {
		dep = *departure
	}

	days := defaultTransitDays
	if transitDays != nil {
		days = *transitDays
	}
	if days < 0 {
		days = 0
	}

	return dep, dep.AddDate(0, 0, days)
}
