// Package time holds the duration type used by the config files.
package time

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration is written as "15m" in config files and environment variables.
// A bare JSON number is read as whole seconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var secs int64
	if err := json.Unmarshal(b, &secs); err == nil {
		d.Duration = time.Duration(secs) * time.Second
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string or a number of seconds: %s", b)
	}
	return d.UnmarshalText([]byte(s))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration %q is negative", text)
	}

	d.Duration = parsed
	return nil
}
