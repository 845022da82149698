package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"resumeBuilder/internal/render"
	"resumeBuilder/internal/resume"
)

func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		body, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(body)
	}
	t.Fatalf("part %s missing", name)
	return ""
}

func paragraphs(t *testing.T, documentXML string) []string {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(documentXML))
	var (
		out     []string
		current strings.Builder
		inText  bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("document.xml is not well formed: %v", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
			if el.Name.Local == "br" {
				current.WriteString("\n")
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				out = append(out, current.String())
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		}
	}
	return out
}

func sampleView(t *testing.T) render.View {
	start, _ := resume.ParseDate("2020-01-01")
	level := "Advanced"
	return render.BuildView(&resume.Graph{
		Resume: resume.Resume{Title: "R&D CV"},
		PersonalInfo: &resume.PersonalInfo{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Phone:    "555-0100",
			LinkedIn: "https://linkedin.com/in/ada",
			Summary:  "Builds <engines> & tools",
		},
		Experiences: []resume.Experience{
			{Title: "Engineer", Company: "Acme", StartDate: start, Description: "line one\nline two"},
		},
		Skills: []resume.Skill{{Name: "Go", Level: &level}, {Name: "SQL"}},
	}, render.English)
}

func TestFromViewStructure(t *testing.T) {
	data, err := FromView(sampleView(t)).Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	got := paragraphs(t, readPart(t, data, "word/document.xml"))
	want := []string{
		"Ada Lovelace",
		"ada@example.com | 555-0100",
		"https://linkedin.com/in/ada",
		"Builds <engines> & tools",
		"Experience",
		"Engineer at Acme",
		"Jan 2020 - Present",
		"line one\nline two",
		"Skills",
		"Go (Advanced), SQL",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected paragraphs:\n got %q\nwant %q", got, want)
	}
}

func TestFromViewOmitsEmptySections(t *testing.T) {
	v := render.BuildView(&resume.Graph{
		PersonalInfo: &resume.PersonalInfo{FullName: "Ada", Email: "ada@example.com"},
	}, render.English)
	data, err := FromView(v).Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	doc := readPart(t, data, "word/document.xml")
	for _, heading := range []string{"Experience", "Education", "Skills"} {
		if strings.Contains(doc, ">"+heading+"<") {
			t.Fatalf("empty %s section rendered", heading)
		}
	}
}

func TestPackageParts(t *testing.T) {
	data, err := FromView(sampleView(t)).Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	if !strings.Contains(readPart(t, data, "[Content_Types].xml"), "wordprocessingml.document.main+xml") {
		t.Fatal("content types missing document override")
	}
	if !strings.Contains(readPart(t, data, "_rels/.rels"), `Target="word/document.xml"`) {
		t.Fatal("root relationships missing document")
	}
	if !strings.Contains(readPart(t, data, "docProps/core.xml"), "R&amp;D CV") {
		t.Fatal("title not escaped in core properties")
	}
	doc := readPart(t, data, "word/document.xml")
	if !strings.Contains(doc, `<w:b/><w:sz w:val="32"/>`) {
		t.Fatal("expected bold 16pt title run")
	}
}
