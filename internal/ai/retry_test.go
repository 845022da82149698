package ai

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"

	"resumeBuilder/internal/errcode"
)

type scriptedGenerator struct {
	errs  []error
	text  string
	calls int
}

func (g *scriptedGenerator) Generate(context.Context, string) (string, error) {
	g.calls++
	if g.calls <= len(g.errs) {
		return "", g.errs[g.calls-1]
	}
	return g.text, nil
}

func recordSleeps(waits *[]time.Duration) RetryOption {
	return WithSleep(func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	})
}

func TestRetryRecoversAfterTwoOverloads(t *testing.T) {
	gen := &scriptedGenerator{
		errs: []error{ErrOverloaded, &googleapi.Error{Code: http.StatusServiceUnavailable}},
		text: "done",
	}
	var waits []time.Duration
	r := WithRetry(gen, DefaultPolicy(), recordSleeps(&waits))

	got, err := r.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "done" {
		t.Fatalf("got %q", got)
	}
	if gen.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", gen.calls)
	}
	if len(waits) != 2 || waits[0] != time.Second || waits[1] != 2*time.Second {
		t.Fatalf("expected linear backoff 1s, 2s; got %v", waits)
	}
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{ErrOverloaded, ErrOverloaded, ErrOverloaded, ErrOverloaded}}
	var waits []time.Duration
	r := WithRetry(gen, DefaultPolicy(), recordSleeps(&waits))

	_, err := r.Generate(context.Background(), "hello")
	if errcode.KindOf(err) != errcode.Unavailable {
		t.Fatalf("expected Unavailable, got %v", err)
	}
	if !errors.Is(err, ErrOverloaded) {
		t.Fatalf("expected cause to be kept, got %v", err)
	}
	if gen.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", gen.calls)
	}
	if len(waits) != 2 {
		t.Fatalf("expected no wait after the last attempt, got %v", waits)
	}
}

func TestRetryDoesNotRetryOtherErrors(t *testing.T) {
	boom := errors.New("bad request")
	gen := &scriptedGenerator{errs: []error{boom}}
	r := WithRetry(gen, DefaultPolicy(), recordSleeps(new([]time.Duration)))

	if _, err := r.Generate(context.Background(), "hello"); !errors.Is(err, boom) {
		t.Fatalf("expected original error, got %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", gen.calls)
	}
}

func TestRetryStopsWhenContextEnds(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{ErrOverloaded, ErrOverloaded}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := WithRetry(gen, Policy{MaxAttempts: 3, Backoff: LinearBackoff(time.Hour)})

	if _, err := r.Generate(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected one attempt before cancellation, got %d", gen.calls)
	}
}

func TestIsOverloaded(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"nil":             {nil, false},
		"sentinel":        {ErrOverloaded, true},
		"wrapped":         {errors.Join(errors.New("ctx"), ErrOverloaded), true},
		"googleapi 503":   {&googleapi.Error{Code: 503}, true},
		"googleapi 429":   {&googleapi.Error{Code: 429}, false},
		"openai 503":      {&openai.APIError{HTTPStatusCode: 503}, true},
		"openai 500":      {&openai.APIError{HTTPStatusCode: 500}, false},
		"openai request":  {&openai.RequestError{HTTPStatusCode: 503}, true},
		"plain error":     {errors.New("503"), false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := IsOverloaded(tc.err); got != tc.want {
				t.Fatalf("IsOverloaded(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
