package pdf

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSession struct {
	setErr   error
	printErr error
	output   []byte
	panicOn  string
	closed   int
	content  string
}

func (s *fakeSession) SetContent(_ context.Context, html string) error {
	if s.panicOn == "set" {
		panic("renderer crashed")
	}
	s.content = html
	return s.setErr
}

func (s *fakeSession) PrintA4(_ context.Context) ([]byte, error) {
	if s.printErr != nil {
		return nil, s.printErr
	}
	return s.output, nil
}

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

func launcherFor(s *fakeSession) Launcher {
	return func(context.Context) (Session, error) { return s, nil }
}

func TestRenderPDFClosesSessionOnEveryPath(t *testing.T) {
	cases := map[string]struct {
		session *fakeSession
		wantErr bool
	}{
		"success":     {session: &fakeSession{output: []byte("%PDF-1.7")}},
		"set content": {session: &fakeSession{setErr: errors.New("bad html")}, wantErr: true},
		"print":       {session: &fakeSession{printErr: errors.New("target crashed")}, wantErr: true},
		"empty":       {session: &fakeSession{}, wantErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := New("fake", launcherFor(tc.session))
			data, err := r.RenderPDF(context.Background(), "<html></html>")
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && (err != nil || string(data) != "%PDF-1.7") {
				t.Fatalf("unexpected result %q, %v", data, err)
			}
			if tc.session.closed != 1 {
				t.Fatalf("expected session closed once, got %d", tc.session.closed)
			}
		})
	}
}

func TestRenderPDFClosesSessionOnPanic(t *testing.T) {
	session := &fakeSession{panicOn: "set"}
	r := New("fake", launcherFor(session))

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_, _ = r.RenderPDF(context.Background(), "<html></html>")
	}()

	if session.closed != 1 {
		t.Fatalf("expected session closed after panic, got %d", session.closed)
	}
}

func TestRenderPDFLaunchFailure(t *testing.T) {
	r := New("fake", func(context.Context) (Session, error) {
		return nil, errors.New("no chromium")
	})
	if _, err := r.RenderPDF(context.Background(), "x"); err == nil {
		t.Fatal("expected launch error")
	}
}

func TestRenderPDFAppliesTimeout(t *testing.T) {
	var deadline time.Time
	r := New("fake", func(ctx context.Context) (Session, error) {
		deadline, _ = ctx.Deadline()
		return &fakeSession{output: []byte("pdf")}, nil
	}, WithTimeout(time.Second))

	start := time.Now()
	if _, err := r.RenderPDF(context.Background(), "x"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if deadline.IsZero() || deadline.Sub(start) > 2*time.Second {
		t.Fatalf("expected deadline within timeout, got %v", deadline)
	}
}

func TestRenderPDFUsesSessionPerCall(t *testing.T) {
	var (
		mu       sync.Mutex
		sessions []*fakeSession
	)
	r := New("fake", func(context.Context) (Session, error) {
		s := &fakeSession{output: []byte("pdf")}
		mu.Lock()
		sessions = append(sessions, s)
		mu.Unlock()
		return s, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.RenderPDF(context.Background(), "x")
		}()
	}
	wg.Wait()

	if len(sessions) != 5 {
		t.Fatalf("expected 5 sessions, got %d", len(sessions))
	}
	for i, s := range sessions {
		if s.closed != 1 {
			t.Fatalf("session %d closed %d times", i, s.closed)
		}
	}
}
