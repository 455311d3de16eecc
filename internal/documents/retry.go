package documents

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"time"

	"github.com/aws/smithy-go"
)

// transientCodes are the store error classes worth retrying. Anything
// else fails immediately without consuming further attempts.
var transientCodes = map[string]bool{
	"ThrottlingException":                   true,
	"ProvisionedThroughputExceededException": true,
	"RequestTimeout":                        true,
	"RequestTimeoutException":               true,
	"ServiceUnavailable":                    true,
	"SlowDown":                              true,
	"InternalError":                         true,
	"InternalServerError":                   true,
}

func isTransient(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return transientCodes[apiErr.ErrorCode()]
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// backoffDelay computes base * 2^(attempt-1) plus random jitter.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	delay := base << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(base)))
	return delay + jitter
}
