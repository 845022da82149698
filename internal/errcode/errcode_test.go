package errcode

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfWrappedError(t *testing.T) {
	base := New(NotFound, "resume not found")
	wrapped := fmt.Errorf("load graph: %w", base)

	if got := KindOf(wrapped); got != NotFound {
		t.Fatalf("expected NotFound, got %s", got)
	}
	if !Is(wrapped, NotFound) {
		t.Fatal("expected Is to match NotFound")
	}
	if got := KindOf(errors.New("boom")); got != Internal {
		t.Fatalf("expected Internal for unclassified error, got %s", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{Unauthorized, http.StatusUnauthorized},
		{NotFound, http.StatusNotFound},
		{InvalidInput, http.StatusBadRequest},
		{Conflict, http.StatusConflict},
		{UnsupportedMediaType, http.StatusUnsupportedMediaType},
		{ExtractionFailed, http.StatusUnprocessableEntity},
		{ParseFailed, http.StatusBadGateway},
		{Unavailable, http.StatusServiceUnavailable},
		{Forbidden, http.StatusForbidden},
		{RateLimited, http.StatusTooManyRequests},
		{Internal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.kind.HTTPStatus(); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.kind, tc.want, got)
		}
	}
}

func TestPublicMessageHidesInternalCause(t *testing.T) {
	err := Wrap(Internal, "render pdf", errors.New("chrome crashed at 0xdeadbeef"))
	if got := PublicMessage(err); got != "internal error" {
		t.Fatalf("expected generic message, got %q", got)
	}
	if got := PublicMessage(New(InvalidInput, "title is required")); got != "title is required" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestNotifyCodes(t *testing.T) {
	if Notify(nil) != OK {
		t.Fatal("nil error should map to OK")
	}
	if Notify(New(NotFound, "x")) != ResourceMissing {
		t.Fatal("not found should map to ResourceMissing")
	}
	if Notify(errors.New("x")) != SystemError {
		t.Fatal("other errors should map to SystemError")
	}
}
