package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"resumeBuilder/internal/database"
	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/export"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/tasks"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeExporter struct {
	err error
}

func (e *fakeExporter) PDF(context.Context, uint, uint, string) (*export.Document, error) {
	if e.err != nil {
		return nil, e.err
	}
	return &export.Document{Filename: "cv.pdf", ContentType: export.PDFContentType, Data: []byte("%PDF")}, nil
}

type fakeUploader struct {
	keys []string
	data map[string][]byte
}

func (u *fakeUploader) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	b, _ := io.ReadAll(body)
	if u.data == nil {
		u.data = map[string][]byte{}
	}
	u.data[key] = b
	u.keys = append(u.keys, key)
	return "http://minio.local/" + key, nil
}

type stateChange struct {
	status string
	key    string
}

type fakeState struct {
	changes []stateChange
	missing bool
}

func (s *fakeState) SetExportState(_ context.Context, _ uint, status, key string) error {
	if s.missing {
		return errcode.New(errcode.NotFound, "resume not found")
	}
	s.changes = append(s.changes, stateChange{status, key})
	return nil
}

type fakeNotifier struct {
	users    []uint
	messages []ExportNotifyMessage
}

func (n *fakeNotifier) Notify(_ context.Context, userID uint, msg ExportNotifyMessage) error {
	n.users = append(n.users, userID)
	n.messages = append(n.messages, msg)
	return nil
}

func exportTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := tasks.NewExportPDFTask(tasks.ExportPDFPayload{UserID: 3, ResumeID: 9, TemplateName: "Modern", CorrelationID: "cid"})
	if err != nil {
		t.Fatal(err)
	}
	return task
}

func TestExportTaskStoresPDFAndNotifies(t *testing.T) {
	up, state, notifier := &fakeUploader{}, &fakeState{}, &fakeNotifier{}
	h := NewExportTaskHandler(&fakeExporter{}, up, state, notifier, discard)

	if err := h.ProcessTask(context.Background(), exportTask(t)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(up.keys) != 1 || !strings.HasPrefix(up.keys[0], "exports/3/9/") || string(up.data[up.keys[0]]) != "%PDF" {
		t.Fatalf("unexpected upload %v", up.keys)
	}
	want := []stateChange{
		{database.ExportStatusProcessing, ""},
		{database.ExportStatusCompleted, up.keys[0]},
	}
	if len(state.changes) != 2 || state.changes[0] != want[0] || state.changes[1] != want[1] {
		t.Fatalf("state changes = %+v", state.changes)
	}
	if len(notifier.messages) != 1 || notifier.users[0] != 3 {
		t.Fatalf("notifications = %+v", notifier.messages)
	}
	msg := notifier.messages[0]
	if msg.Status != NotifyCompleted || msg.ResumeID != 9 || msg.CorrelationID != "cid" || msg.ErrorCode != errcode.OK {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestExportTaskFailureMarksFailedAndNotifies(t *testing.T) {
	state, notifier := &fakeState{}, &fakeNotifier{}
	h := NewExportTaskHandler(&fakeExporter{err: errors.New("browser crashed")}, &fakeUploader{}, state, notifier, discard)

	if err := h.ProcessTask(context.Background(), exportTask(t)); err == nil {
		t.Fatal("expected error")
	}
	last := state.changes[len(state.changes)-1]
	if last.status != database.ExportStatusFailed {
		t.Fatalf("expected failed state, got %+v", state.changes)
	}
	if len(notifier.messages) != 1 || notifier.messages[0].Status != NotifyError || notifier.messages[0].ErrorCode != errcode.SystemError {
		t.Fatalf("unexpected notifications %+v", notifier.messages)
	}
	if notifier.messages[0].ErrorMessage != "internal error" {
		t.Fatalf("internal cause leaked: %q", notifier.messages[0].ErrorMessage)
	}
}

func TestExportTaskForMissingResumeSkipsRetry(t *testing.T) {
	notifier := &fakeNotifier{}
	h := NewExportTaskHandler(&fakeExporter{}, &fakeUploader{}, &fakeState{missing: true}, notifier, discard)

	err := h.ProcessTask(context.Background(), exportTask(t))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	if len(notifier.messages) != 1 || notifier.messages[0].ErrorCode != errcode.ResourceMissing {
		t.Fatalf("unexpected notifications %+v", notifier.messages)
	}
}

func TestExportTaskRejectsBadPayload(t *testing.T) {
	h := NewExportTaskHandler(&fakeExporter{}, &fakeUploader{}, &fakeState{}, &fakeNotifier{}, discard)
	err := h.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeExportPDF, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

type fakeExpired struct {
	objects []storage.ObjectMeta
	cutoff  time.Time
	prefix  string
	deleted []string
}

func (f *fakeExpired) ListOlderThan(_ context.Context, prefix string, cutoff time.Time) ([]storage.ObjectMeta, error) {
	f.prefix, f.cutoff = prefix, cutoff
	return f.objects, nil
}

func (f *fakeExpired) DeleteObject(_ context.Context, key string) error {
	if strings.HasSuffix(key, "locked.pdf") {
		return errors.New("access denied")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeExpirer struct{ keys []string }

func (f *fakeExpirer) ExpireExport(_ context.Context, key string) (int64, error) {
	f.keys = append(f.keys, key)
	return 1, nil
}

func TestCleanupRemovesExpiredExports(t *testing.T) {
	store := &fakeExpired{objects: []storage.ObjectMeta{
		{Key: "exports/1/2/a.pdf"},
		{Key: "exports/1/2/locked.pdf"},
		{Key: "exports/1/3/b.pdf"},
	}}
	exports := &fakeExpirer{}
	h := NewCleanupTaskHandler(store, exports, 7*24*time.Hour, discard)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	if err := h.ProcessTask(context.Background(), tasks.NewCleanupExportsTask()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if store.prefix != storage.ExportsPrefix || !store.cutoff.Equal(now.Add(-7*24*time.Hour)) {
		t.Fatalf("unexpected listing %q %v", store.prefix, store.cutoff)
	}
	if len(store.deleted) != 2 {
		t.Fatalf("deleted = %v", store.deleted)
	}
	if len(exports.keys) != 2 || exports.keys[0] != "exports/1/2/a.pdf" || exports.keys[1] != "exports/1/3/b.pdf" {
		t.Fatalf("records expired for %v, want only deleted objects", exports.keys)
	}
}
