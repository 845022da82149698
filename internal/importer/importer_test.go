package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"resumeBuilder/internal/ai"
	"resumeBuilder/internal/docx"
	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/resume"
)

type countingExtractor struct {
	text  string
	err   error
	calls int
}

func (e *countingExtractor) Extract(context.Context, []byte) (string, error) {
	e.calls++
	return e.text, e.err
}

type countingGenerator struct {
	answer string
	err    error
	calls  int
	prompt string
}

func (g *countingGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompt = prompt
	return g.answer, g.err
}

func TestUnsupportedMediaTypeSkipsCollaborators(t *testing.T) {
	ex := &countingExtractor{text: "resume"}
	gen := &countingGenerator{answer: "{}"}
	im := New(gen, WithExtractor(MediaTypePDF, ex), WithExtractor(MediaTypeDOCX, ex))

	_, err := im.Import(context.Background(), "image/png", []byte("\x89PNG\r\n\x1a\n"))
	if errcode.KindOf(err) != errcode.UnsupportedMediaType {
		t.Fatalf("expected UnsupportedMediaType, got %v", err)
	}
	if ex.calls != 0 || gen.calls != 0 {
		t.Fatalf("collaborators called: extractor=%d generator=%d", ex.calls, gen.calls)
	}
}

func TestEmptyTextIsExtractionFailed(t *testing.T) {
	gen := &countingGenerator{answer: "{}"}
	im := New(gen, WithExtractor(MediaTypePDF, &countingExtractor{text: "  \n\t"}))

	_, err := im.Import(context.Background(), "application/pdf", []byte("%PDF"))
	if errcode.KindOf(err) != errcode.ExtractionFailed {
		t.Fatalf("expected ExtractionFailed, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatal("generator must not be called without text")
	}
}

func TestExtractorErrorIsExtractionFailed(t *testing.T) {
	im := New(&countingGenerator{}, WithExtractor(MediaTypePDF, &countingExtractor{err: errors.New("corrupt")}))
	if _, err := im.Import(context.Background(), "application/pdf", nil); errcode.KindOf(err) != errcode.ExtractionFailed {
		t.Fatalf("expected ExtractionFailed, got %v", err)
	}
}

func TestInvalidJSONIsParseFailed(t *testing.T) {
	gen := &countingGenerator{answer: "```json\n{\"personalInfo\": {}}\n```"}
	im := New(gen, WithExtractor(MediaTypePDF, &countingExtractor{text: "Ada Lovelace"}))

	_, err := im.Import(context.Background(), "application/pdf", []byte("%PDF"))
	if errcode.KindOf(err) != errcode.ParseFailed {
		t.Fatalf("expected ParseFailed, got %v", err)
	}
}

func TestValidJSONReturnedUnmodified(t *testing.T) {
	answer := `{"personalInfo":{"fullName":"Ada"},"experiences":[],"unexpected":42}`
	gen := &countingGenerator{answer: answer}
	im := New(gen, WithExtractor(MediaTypePDF, &countingExtractor{text: "Ada Lovelace"}))

	got, err := im.Import(context.Background(), "application/pdf; charset=binary", []byte("%PDF"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if string(got) != answer {
		t.Fatalf("expected response returned as-is, got %s", got)
	}
	if !strings.Contains(gen.prompt, "\"\"\"\nAda Lovelace\n\"\"\"") {
		t.Fatalf("extracted text not embedded in prompt:\n%s", gen.prompt)
	}
	if !strings.Contains(gen.prompt, `"endDate": "YYYY-MM-DD | null"`) {
		t.Fatal("prompt is missing the target shape")
	}
}

func TestGeneratorErrorKindIsKept(t *testing.T) {
	gen := &countingGenerator{err: errcode.Wrap(errcode.Unavailable, "ai service is overloaded", ai.ErrOverloaded)}
	im := New(gen, WithExtractor(MediaTypePDF, &countingExtractor{text: "Ada"}))
	if _, err := im.Import(context.Background(), "application/pdf", nil); errcode.KindOf(err) != errcode.Unavailable {
		t.Fatalf("expected Unavailable, got %v", err)
	}
}

func TestDOCXTextExtraction(t *testing.T) {
	start, _ := resume.ParseDate("2020-01-01")
	view := render.BuildView(&resume.Graph{
		PersonalInfo: &resume.PersonalInfo{FullName: "Ada Lovelace", Email: "ada@example.com"},
		Experiences: []resume.Experience{
			{Title: "Engineer", Company: "Acme & Co", StartDate: start, Description: "first\nsecond"},
		},
	}, render.English)
	data, err := docx.FromView(view).Bytes()
	if err != nil {
		t.Fatalf("build docx: %v", err)
	}

	text, err := DOCXText{}.Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	for _, want := range []string{"Ada Lovelace", "Engineer at Acme & Co", "first\nsecond"} {
		if !strings.Contains(text, want) {
			t.Fatalf("extracted text missing %q:\n%s", want, text)
		}
	}
}

func TestDOCXTextRejectsOversizedBody(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(bytes.Repeat([]byte(" "), maxDocumentXML+1)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() > 1<<20 {
		t.Fatalf("fixture should compress well, got %d bytes", buf.Len())
	}

	if _, err := (DOCXText{}).Extract(context.Background(), buf.Bytes()); err == nil || !strings.Contains(err.Error(), "limit") {
		t.Fatalf("expected size limit error, got %v", err)
	}
}

func TestDOCXTextRejectsNonZip(t *testing.T) {
	if _, err := (DOCXText{}).Extract(context.Background(), []byte("not a zip")); err == nil {
		t.Fatal("expected error")
	}
}

func TestDetectMediaType(t *testing.T) {
	cases := map[string]struct {
		declared string
		data     []byte
		want     string
	}{
		"declared pdf":      {"application/pdf", nil, MediaTypePDF},
		"declared params":   {"Application/PDF; name=x", nil, MediaTypePDF},
		"sniffed pdf":       {"", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"), MediaTypePDF},
		"octet stream pdf":  {"application/octet-stream", []byte("%PDF-1.4\n"), MediaTypePDF},
		"declared png wins": {"image/png", []byte("%PDF-1.4\n"), "image/png"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := DetectMediaType(tc.declared, tc.data); got != tc.want {
				t.Fatalf("DetectMediaType = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPromptIsValidAroundText(t *testing.T) {
	p := BuildPrompt("text")
	if !strings.HasPrefix(p, "Extract the following information") {
		t.Fatal("unexpected prompt head")
	}
	idx := strings.Index(p, "{\n  \"personalInfo\"")
	if idx < 0 {
		t.Fatal("shape missing")
	}
	var shape map[string]any
	if err := json.Unmarshal([]byte(strings.ReplaceAll(p[idx:], " | null", "")), &shape); err != nil {
		t.Fatalf("shape is not json: %v", err)
	}
}
