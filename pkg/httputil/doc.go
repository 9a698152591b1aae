// Package httputil provides outbound HTTP plumbing for the generation client.
//
// # Overview
//
//   - [Retry]: retry with exponential backoff for transient failures
//   - [Guard]: a rate limiter and circuit breaker in front of every call
//   - [Transport]: an http.RoundTripper that reports requests to the
//     observability HTTP hooks
//
// # Retry
//
// [Retry] only repeats errors wrapped with [RetryableError]. Wrap network
// errors and 5xx responses with [Retryable]; return 4xx responses as plain
// errors so they surface immediately:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// # Guard
//
// A [Guard] waits on a token bucket ([golang.org/x/time/rate]) before each
// attempt and runs the attempt through a circuit breaker
// ([github.com/sony/gobreaker]). Only retryable failures count towards
// tripping the breaker. While the breaker is open calls fail fast with a
// NETWORK_ERROR.
package httputil
