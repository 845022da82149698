package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/googleapis/gax-go/v2/apierror"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"

	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/metrics"
)

// Policy 描述有限次数的重试。
type Policy struct {
	MaxAttempts int
	// Backoff 返回第 attempt 次失败后的等待时长，attempt 从 1 开始。
	Backoff   func(attempt int) time.Duration
	Retryable func(error) bool
}

// LinearBackoff 第 n 次失败后等待 n*step。
func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// DefaultPolicy 最多 3 次，线性退避 1s、2s，只在过载时重试。
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Backoff: LinearBackoff(time.Second), Retryable: IsOverloaded}
}

// IsOverloaded 判断错误是否为服务过载（HTTP 503 / gRPC Unavailable）。
func IsOverloaded(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrOverloaded) {
		return true
	}
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPCode() == http.StatusServiceUnavailable {
			return true
		}
		if st := apiErr.GRPCStatus(); st != nil && st.Code() == codes.Unavailable {
			return true
		}
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code == http.StatusServiceUnavailable {
		return true
	}
	var oErr *openai.APIError
	if errors.As(err, &oErr) && oErr.HTTPStatusCode == http.StatusServiceUnavailable {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusServiceUnavailable {
		return true
	}
	return false
}

// Retrying 在过载时按 Policy 重试下游 Generator。
type Retrying struct {
	next   Generator
	policy Policy
	sleep  func(ctx context.Context, d time.Duration) error
	logger *slog.Logger
}

// RetryOption 调整 Retrying。
type RetryOption func(*Retrying)

// WithSleep 替换等待函数，测试中使用。
func WithSleep(fn func(ctx context.Context, d time.Duration) error) RetryOption {
	return func(r *Retrying) { r.sleep = fn }
}

func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(r *Retrying) { r.logger = logger }
}

// WithRetry 包装 Generator。
func WithRetry(next Generator, policy Policy, opts ...RetryOption) *Retrying {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.Backoff == nil {
		policy.Backoff = func(int) time.Duration { return 0 }
	}
	if policy.Retryable == nil {
		policy.Retryable = IsOverloaded
	}
	r := &Retrying{next: next, policy: policy, sleep: sleepContext, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		text, err := r.next.Generate(ctx, prompt)
		if err == nil {
			metrics.ObserveAIAttempt("ok")
			return text, nil
		}
		lastErr = err
		if !r.policy.Retryable(err) {
			metrics.ObserveAIAttempt("error")
			return "", err
		}
		metrics.ObserveAIAttempt("overloaded")
		if attempt == r.policy.MaxAttempts {
			break
		}

		wait := r.policy.Backoff(attempt)
		r.logger.Warn("ai service overloaded, retrying",
			"attempt", attempt,
			"max_attempts", r.policy.MaxAttempts,
			"wait", wait)
		if err := r.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", errcode.Wrap(errcode.Unavailable, "ai service is overloaded, try again later", lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
