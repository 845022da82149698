package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"resumeBuilder/internal/docx"
	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/style"
)

type fakeLoader struct {
	owner     uint
	graph     *resume.Graph
	overrides map[string]style.Overrides
	asked     []string
}

func (l *fakeLoader) LoadGraph(_ context.Context, userID, resumeID uint) (*resume.Graph, error) {
	if userID != l.owner || resumeID != l.graph.ID {
		return nil, errcode.New(errcode.NotFound, "resume not found")
	}
	return l.graph, nil
}

func (l *fakeLoader) FindCustomization(_ context.Context, _ uint, _ uint, templateName string) (style.Overrides, error) {
	l.asked = append(l.asked, templateName)
	return l.overrides[templateName], nil
}

type fakePDF struct {
	html  string
	calls int
	err   error
}

func (p *fakePDF) RenderPDF(_ context.Context, html string) ([]byte, error) {
	p.calls++
	p.html = html
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.7 fake"), nil
}

type fakePictures struct {
	data        []byte
	contentType string
}

func (f *fakePictures) KeyFromURL(raw string) (string, bool) {
	const prefix = "http://minio.local/resumes/"
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	return strings.TrimPrefix(raw, prefix), true
}

func (f *fakePictures) ReadObject(context.Context, string, int64) ([]byte, string, error) {
	return f.data, f.contentType, nil
}

func engineerAtAcme(t *testing.T) *resume.Graph {
	t.Helper()
	start, err := resume.ParseDate("2020-01-01")
	if err != nil {
		t.Fatal(err)
	}
	return &resume.Graph{
		Resume:       resume.Resume{ID: 10, UserID: 1, Title: "Backend CV"},
		PersonalInfo: &resume.PersonalInfo{FullName: "Ada Lovelace", Email: "ada@example.com"},
		Experiences: []resume.Experience{
			{ID: 1, Title: "Engineer", Company: "Acme", StartDate: start},
		},
	}
}

func newService(loader Loader, pdf PDFRenderer, opts ...Option) *Service {
	return NewService(loader, render.NewHTMLRenderer(render.DefaultRegistry(), render.Options{Locale: render.English}), pdf, opts...)
}

func TestPDFExportOfOngoingExperience(t *testing.T) {
	loader := &fakeLoader{owner: 1, graph: engineerAtAcme(t)}
	pdf := &fakePDF{}
	svc := newService(loader, pdf)

	doc, err := svc.PDF(context.Background(), 1, 10, "Modern")
	if err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	if doc.ContentType != "application/pdf" {
		t.Fatalf("content type = %q", doc.ContentType)
	}
	if doc.Filename != "Backend CV.pdf" {
		t.Fatalf("filename = %q", doc.Filename)
	}
	if !bytes.HasPrefix(doc.Data, []byte("%PDF")) {
		t.Fatal("expected pdf bytes from renderer")
	}
	for _, want := range []string{"Engineer", "Acme", "Present", "<!DOCTYPE html>"} {
		if !strings.Contains(pdf.html, want) {
			t.Fatalf("intermediate html missing %q", want)
		}
	}
	if strings.Contains(pdf.html, "Jan 2020 - Jan") {
		t.Fatal("ongoing experience rendered with an end date")
	}
	if len(loader.asked) != 1 || loader.asked[0] != "Modern" {
		t.Fatalf("customization lookup = %v", loader.asked)
	}
}

func TestExportOfAnotherUsersResumeIsNotFound(t *testing.T) {
	loader := &fakeLoader{owner: 1, graph: engineerAtAcme(t)}
	pdf := &fakePDF{}
	svc := newService(loader, pdf)

	if _, err := svc.PDF(context.Background(), 2, 10, "Modern"); errcode.KindOf(err) != errcode.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if _, err := svc.DOCX(context.Background(), 2, 10); errcode.KindOf(err) != errcode.NotFound {
		t.Fatalf("expected NotFound for docx, got %v", err)
	}
	if pdf.calls != 0 {
		t.Fatal("renderer must not be launched for a foreign resume")
	}
}

func TestUnknownTemplateFallsBackToModern(t *testing.T) {
	loader := &fakeLoader{
		owner: 1,
		graph: engineerAtAcme(t),
		overrides: map[string]style.Overrides{
			"Modern": {"h1": {"color": "#123456"}},
		},
	}
	pdf := &fakePDF{}
	svc := newService(loader, pdf)

	if _, err := svc.PDF(context.Background(), 1, 10, "Baroque"); err != nil {
		t.Fatalf("export: %v", err)
	}
	if loader.asked[0] != "Modern" {
		t.Fatalf("expected Modern customization, got %v", loader.asked)
	}
	if !strings.Contains(pdf.html, "color: #123456;") {
		t.Fatal("expected Modern overrides applied")
	}
}

func TestRendererFailureIsReturned(t *testing.T) {
	loader := &fakeLoader{owner: 1, graph: engineerAtAcme(t)}
	boom := errors.New("browser crashed")
	svc := newService(loader, &fakePDF{err: boom})
	if _, err := svc.PDF(context.Background(), 1, 10, ""); !errors.Is(err, boom) {
		t.Fatalf("expected renderer error, got %v", err)
	}
}

func TestPreviewUnknownTemplateRendersNotFoundState(t *testing.T) {
	svc := newService(&fakeLoader{owner: 1, graph: engineerAtAcme(t)}, &fakePDF{})

	var buf bytes.Buffer
	found, err := svc.Preview(context.Background(), &buf, 1, 10, "Baroque")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if found {
		t.Fatal("expected not found")
	}
	if !strings.Contains(buf.String(), "Template not found.") {
		t.Fatalf("unexpected preview %s", buf.String())
	}

	buf.Reset()
	found, err = svc.Preview(context.Background(), &buf, 1, 10, "classic")
	if err != nil || !found || !strings.Contains(buf.String(), "Acme") {
		t.Fatalf("classic preview failed: %v %v", found, err)
	}
}

func TestPreviewWithoutTemplateUsesFallback(t *testing.T) {
	svc := newService(&fakeLoader{owner: 1, graph: engineerAtAcme(t)}, &fakePDF{})

	for _, name := range []string{"", "  "} {
		var buf bytes.Buffer
		found, err := svc.Preview(context.Background(), &buf, 1, 10, name)
		if err != nil {
			t.Fatalf("preview %q: %v", name, err)
		}
		if !found || strings.Contains(buf.String(), "Template not found.") {
			t.Fatalf("preview %q should render the fallback template", name)
		}
		if !strings.Contains(buf.String(), "Acme") {
			t.Fatalf("preview %q missing resume content", name)
		}
	}
}

func TestDOCXExport(t *testing.T) {
	loader := &fakeLoader{owner: 1, graph: engineerAtAcme(t)}
	svc := newService(loader, &fakePDF{})

	doc, err := svc.DOCX(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("docx: %v", err)
	}
	if doc.ContentType != docx.ContentType || doc.Filename != "Backend CV.docx" {
		t.Fatalf("unexpected document %q %q", doc.ContentType, doc.Filename)
	}
	if !bytes.HasPrefix(doc.Data, []byte("PK")) {
		t.Fatal("expected zip archive")
	}
	if len(loader.asked) != 0 {
		t.Fatal("docx must not read customization")
	}
}

func TestProfilePictureIsInlined(t *testing.T) {
	g := engineerAtAcme(t)
	g.PersonalInfo.ProfilePicture = "http://minio.local/resumes/uploads/1/me.png"
	pdf := &fakePDF{}
	svc := newService(&fakeLoader{owner: 1, graph: g}, pdf,
		WithPictures(&fakePictures{data: []byte{0x89, 'P', 'N', 'G'}, contentType: "image/png"}))

	if _, err := svc.PDF(context.Background(), 1, 10, "Modern"); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(pdf.html, "data:image/png;base64,iVBORw==") {
		t.Fatal("expected inlined picture")
	}
	if strings.Contains(pdf.html, "minio.local") {
		t.Fatal("remote picture url left in document")
	}
}

func TestFilename(t *testing.T) {
	cases := map[string]string{
		"":              "resume.pdf",
		"   ":           "resume.pdf",
		"My CV":         "My CV.pdf",
		"a/b\\c\"d":     "a_b_c_d.pdf",
		"line\nbreak":   "linebreak.pdf",
		"..":            "resume.pdf",
		"Currículo":     "Currículo.pdf",
	}
	for title, want := range cases {
		if got := Filename(title, ".pdf"); got != want {
			t.Errorf("Filename(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestContentDisposition(t *testing.T) {
	if got := ContentDisposition("My CV.pdf"); got != `attachment; filename="My CV.pdf"` {
		t.Fatalf("ascii = %q", got)
	}
	if got := ContentDisposition("Currículo.pdf"); !strings.HasPrefix(got, "attachment; filename*=utf-8''Curr%C3%ADculo.pdf") {
		t.Fatalf("utf-8 = %q", got)
	}
}
