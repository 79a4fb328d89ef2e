package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const anyTime = "ANY"

// TimeOfDay is the start of an access code's rotation slot, or the ANY
// wildcard.
type TimeOfDay struct {
	Any    bool
	Minute int // minutes since midnight
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, anyTime) {
		return TimeOfDay{Any: true}, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Minute: t.Hour()*60 + t.Minute()}, nil
}

// MustTimeOfDay is ParseTimeOfDay for static tables.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// OpenAt reports whether the slot has started by the wall-clock time of now.
func (t TimeOfDay) OpenAt(now time.Time) bool {
	if t.Any {
		return true
	}
	return now.Hour()*60+now.Minute() >= t.Minute
}

func (t TimeOfDay) String() string {
	if t.Any {
		return anyTime
	}
	return fmt.Sprintf("%02d:%02d", t.Minute/60, t.Minute%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

type AccessCode struct {
	Code      string    `json:"code"`
	ValidFrom TimeOfDay `json:"time"`
}
