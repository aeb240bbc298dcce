package models

import (
	"fmt"

	dErrors "accredis/pkg/domain-errors"
)

const (
	MinLevel = 1
	MaxLevel = 5

	highThreshold   = 15
	mediumThreshold = 10
)

// Level is a validated 1..5 rating for severity or likelihood. Scoring has
// no error path because out-of-range values cannot be constructed through
// NewLevel.
type Level int

func NewLevel(n int) (Level, error) {
	if n < MinLevel || n > MaxLevel {
		return 0, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("level must be between %d and %d", MinLevel, MaxLevel))
	}
	return Level(n), nil
}

func (l Level) IsValid() bool {
	return l >= MinLevel && l <= MaxLevel
}

// Tier buckets a risk score.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Score is severity times likelihood, 1..25.
func Score(severity, likelihood Level) int {
	return int(severity) * int(likelihood)
}

// TierFor maps a score to its tier: 15 and above is high, 10 to 14 medium,
// anything lower low.
func TierFor(score int) Tier {
	switch {
	case score >= highThreshold:
		return TierHigh
	case score >= mediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}
