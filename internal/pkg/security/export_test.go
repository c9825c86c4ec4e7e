package security

import "time"

// SetClock replaces the baker's clock.
func (c *CSRFCookieBaker) SetClock(now func() time.Time) { c.now = now }
