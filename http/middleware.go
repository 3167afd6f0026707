package http

import (
	"time"

	"github.com/sagarc03/switchyard"
)

// RequestTimeKey is the attachment RequestTimer stores the receipt time
// under.
const RequestTimeKey = "requestTime"

// RequestTimer records when the request reached the chain and logs it.
func RequestTimer(c *switchyard.Context, next switchyard.Next) {
	now := time.Now()
	c.Set(RequestTimeKey, now)
	c.Logger().Debug("request received", "request_time", now)
	next(nil)
}

// RequestTime returns the time recorded by RequestTimer.
func RequestTime(c *switchyard.Context) (time.Time, bool) {
	return switchyard.Value[time.Time](c, RequestTimeKey)
}
