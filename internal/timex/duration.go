// Package timex contains time helpers shared by configuration code.
package timex

import (
	"encoding/json"
	"errors"
	"time"
)

// Duration is a time.Duration that unmarshals from either a Go duration
// string ("15m", "1h30m") or an integer number of nanoseconds.
type Duration struct {
	Duration time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}
