package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unixblacksteel/mindmap/pkg/httputil"
)

func ExampleRetry() {
	calls := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return httputil.Retryable(errors.New("503 service unavailable"))
		}
		return nil
	})
	fmt.Println("calls:", calls)
	fmt.Println("error:", err)
	// Output:
	// calls: 3
	// error: <nil>
}

func ExampleGuard() {
	g := httputil.NewGuard(httputil.GuardConfig{Name: "gemini", RateLimit: 100, Burst: 10}, nil)
	err := g.Do(context.Background(), func(ctx context.Context) error {
		return nil
	})
	fmt.Println(err, g.State())
	// Output:
	// <nil> closed
}
