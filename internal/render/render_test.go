package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/style"
)

func strPtr(s string) *string { return &s }

func date(t *testing.T, s string) resume.Date {
	t.Helper()
	d, err := resume.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}

func sampleGraph(t *testing.T) *resume.Graph {
	end := date(t, "2019-12-31")
	return &resume.Graph{
		Resume: resume.Resume{ID: 1, Title: "Backend CV"},
		PersonalInfo: &resume.PersonalInfo{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Phone:    "555-0100",
			LinkedIn: "https://linkedin.com/in/ada",
			Summary:  "Engineer & analyst",
		},
		Experiences: []resume.Experience{
			{Title: "Engineer", Company: "Acme", StartDate: date(t, "2020-01-01")},
			{Title: "Intern", Company: "Initech", Location: strPtr("Remote"), StartDate: date(t, "2018-06-01"), EndDate: &end},
		},
		Educations: []resume.Education{
			{Institution: "MIT", Degree: "BSc", FieldOfStudy: strPtr("Mathematics"), StartDate: date(t, "2014-09-01"), EndDate: &end},
		},
		Skills: []resume.Skill{
			{Name: "Go", Level: strPtr("Advanced")},
			{Name: "SQL"},
		},
	}
}

func renderDoc(t *testing.T, r *HTMLRenderer, theme Theme, g *resume.Graph, o style.Overrides) (string, *goquery.Document) {
	t.Helper()
	html, err := r.RenderString(theme, BuildView(g, r.Locale()), o)
	if err != nil {
		t.Fatalf("render %s: %v", theme.Name, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return html, doc
}

func TestEmptySectionsOmittedInEveryTheme(t *testing.T) {
	r := NewHTMLRenderer(nil, Options{})
	g := &resume.Graph{
		Resume:       resume.Resume{Title: "Empty"},
		PersonalInfo: &resume.PersonalInfo{FullName: "Ada", Email: "ada@example.com"},
	}
	for _, theme := range r.Registry().Themes() {
		t.Run(theme.Name, func(t *testing.T) {
			html, doc := renderDoc(t, r, theme, g, nil)
			for _, heading := range []string{"Experience", "Education", "Skills", "Summary"} {
				doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
					if strings.TrimSpace(s.Text()) == heading {
						t.Fatalf("%s heading rendered for empty section", heading)
					}
				})
			}
			if strings.Contains(html, "undefined") || strings.Contains(html, "<nil>") {
				t.Fatal("missing fields leaked placeholder text")
			}
		})
	}
}

func TestOngoingMarkerInEveryTheme(t *testing.T) {
	r := NewHTMLRenderer(nil, Options{})
	g := sampleGraph(t)
	for _, theme := range r.Registry().Themes() {
		t.Run(theme.Name, func(t *testing.T) {
			html, doc := renderDoc(t, r, theme, g, nil)
			if !strings.Contains(html, "Engineer") || !strings.Contains(html, "Acme") {
				t.Fatal("experience title/company missing")
			}
			first := doc.Find("h2").FilterFunction(func(_ int, s *goquery.Selection) bool {
				return s.Text() == "Experience"
			}).Parent().Find(".item").First()
			dates := first.Find("p").First().Text()
			if dates != "Jan 2020 - Present" {
				t.Fatalf("unexpected dates %q", dates)
			}
		})
	}
}

func TestChildOrderIsPreserved(t *testing.T) {
	r := NewHTMLRenderer(nil, Options{})
	html, _ := renderDoc(t, r, Modern, sampleGraph(t), nil)
	if strings.Index(html, "Engineer at Acme") > strings.Index(html, "Intern at Initech") {
		t.Fatal("experiences were reordered")
	}
}

func TestFreeTextIsEscaped(t *testing.T) {
	r := NewHTMLRenderer(nil, Options{})
	g := sampleGraph(t)
	g.Experiences[0].Description = `<script>alert("x")</script><b>bold</b>`
	g.PersonalInfo.Summary = `<img src=x onerror=alert(1)>`
	g.PersonalInfo.LinkedIn = "javascript:alert(1)"

	for _, theme := range r.Registry().Themes() {
		html, doc := renderDoc(t, r, theme, g, nil)
		if doc.Find("script").Length() != 0 || doc.Find("b").Length() != 0 {
			t.Fatalf("%s: description interpreted as markup", theme.Name)
		}
		if doc.Find("img[onerror]").Length() != 0 {
			t.Fatalf("%s: summary interpreted as markup", theme.Name)
		}
		if strings.Contains(html, `href="javascript:`) {
			t.Fatalf("%s: unsafe link scheme rendered", theme.Name)
		}
		if !strings.Contains(html, "&lt;script&gt;") {
			t.Fatalf("%s: expected escaped description", theme.Name)
		}
	}
}

func TestStyleOverrideWinsAndEmptyOverrideIsIdentity(t *testing.T) {
	r := NewHTMLRenderer(nil, Options{})
	g := sampleGraph(t)

	plain, _ := renderDoc(t, r, Modern, g, nil)
	empty, _ := renderDoc(t, r, Modern, g, style.Overrides{})
	if plain != empty {
		t.Fatal("empty override changed output")
	}

	_, doc := renderDoc(t, r, Modern, g, style.Overrides{
		"fullName":  {"color": "red"},
		"skillItem": {"fontSize": 14},
	})
	nameStyle, _ := doc.Find("h1").Attr("style")
	base := Modern.BaseStyles()["fullName"]
	if !strings.HasPrefix(nameStyle, base) || !strings.HasSuffix(nameStyle, "color: red;") {
		t.Fatalf("unexpected fullName style %q", nameStyle)
	}
	skillStyle, _ := doc.Find("span").First().Attr("style")
	if !strings.HasSuffix(skillStyle, "font-size: 14;") {
		t.Fatalf("unexpected skill style %q", skillStyle)
	}
}

func TestGenericOverrideAppliesBeforeSpecific(t *testing.T) {
	r := NewHTMLRenderer(nil, Options{})
	_, doc := renderDoc(t, r, Modern, sampleGraph(t), style.Overrides{
		"h2":               {"color": "green"},
		"experiencesTitle": {"color": "purple"},
	})
	var titles []string
	doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
		css, _ := s.Attr("style")
		titles = append(titles, css)
	})
	if len(titles) != 3 {
		t.Fatalf("expected 3 section titles, got %d", len(titles))
	}
	if !strings.HasSuffix(titles[0], "color: green; color: purple;") {
		t.Fatalf("unexpected experience title style %q", titles[0])
	}
	if !strings.HasSuffix(titles[1], "color: green;") {
		t.Fatalf("unexpected education title style %q", titles[1])
	}
}

func TestOverrideValueCannotBreakOutOfAttribute(t *testing.T) {
	r := NewHTMLRenderer(nil, Options{})
	_, doc := renderDoc(t, r, Modern, sampleGraph(t), style.Overrides{
		"fullName": {"color": `red" onclick="alert(1)`},
	})
	if doc.Find("h1[onclick]").Length() != 0 {
		t.Fatal("override escaped its style attribute")
	}
}

func TestCreativeUsesSidebarLayout(t *testing.T) {
	r := NewHTMLRenderer(nil, Options{})
	_, doc := renderDoc(t, r, Creative, sampleGraph(t), nil)
	if doc.Find("li").Length() != 2 {
		t.Fatalf("expected skills rendered as list items, got %d", doc.Find("li").Length())
	}
	if got := doc.Find("li").First().Text(); got != "Go (Advanced)" {
		t.Fatalf("unexpected skill label %q", got)
	}
	found := false
	doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
		if s.Text() == "Contact" {
			found = true
		}
	})
	if !found {
		t.Fatal("expected contact heading in sidebar")
	}
}

func TestPortugueseLocale(t *testing.T) {
	r := NewHTMLRenderer(nil, Options{Locale: Portuguese})
	html, _ := renderDoc(t, r, Elegant, sampleGraph(t), nil)
	for _, want := range []string{"Experiência", "Engineer em Acme", "01/2020 - Presente", "Habilidades"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
}

func TestMarkdownDescriptions(t *testing.T) {
	r := NewHTMLRenderer(nil, Options{Markdown: true})
	g := sampleGraph(t)
	g.Experiences[0].Description = "Shipped **billing**\n\n<script>alert(1)</script>"
	_, doc := renderDoc(t, r, Modern, g, nil)
	if doc.Find("strong").Text() != "billing" {
		t.Fatal("expected markdown emphasis rendered")
	}
	if doc.Find("script").Length() != 0 {
		t.Fatal("raw html survived markdown rendering")
	}
}

func TestInlinedPictureIsKept(t *testing.T) {
	r := NewHTMLRenderer(nil, Options{})
	g := sampleGraph(t)
	g.PersonalInfo.ProfilePicture = "data:image/png;base64,iVBORw0KGgo="
	_, doc := renderDoc(t, r, Modern, g, nil)
	src, _ := doc.Find("img").Attr("src")
	if src != g.PersonalInfo.ProfilePicture {
		t.Fatalf("unexpected img src %q", src)
	}
}

func TestRegistry(t *testing.T) {
	reg := DefaultRegistry()
	if _, ok := reg.Lookup("ModernTemplate"); !ok {
		t.Fatal("expected legacy template name to resolve")
	}
	if _, ok := reg.Lookup("creative"); !ok {
		t.Fatal("expected case-insensitive lookup")
	}
	if _, ok := reg.Lookup("Brutalist"); ok {
		t.Fatal("unknown template should not be found")
	}
	if got := reg.Resolve("Brutalist"); got.Name != DefaultTemplate {
		t.Fatalf("expected fallback to %s, got %s", DefaultTemplate, got.Name)
	}
	if got := reg.Resolve(""); got.Name != DefaultTemplate {
		t.Fatalf("expected empty name to fall back, got %s", got.Name)
	}
	if len(reg.Themes()) != 4 {
		t.Fatalf("expected 4 themes, got %d", len(reg.Themes()))
	}
}

func TestRegistryFallbackCanBeChanged(t *testing.T) {
	reg := DefaultRegistry()
	if got := reg.Fallback().Name; got != DefaultTemplate {
		t.Fatalf("expected default fallback %s, got %s", DefaultTemplate, got)
	}
	if reg.SetFallback("Baroque") {
		t.Fatal("unknown template must not become the fallback")
	}
	if !reg.SetFallback("ClassicTemplate") {
		t.Fatal("expected Classic to be accepted")
	}
	if got := reg.Fallback().Name; got != "Classic" {
		t.Fatalf("expected Classic fallback, got %s", got)
	}
	if got := reg.Resolve("").Name; got != "Classic" {
		t.Fatalf("expected empty name to resolve to Classic, got %s", got)
	}
}

func TestRenderNotFound(t *testing.T) {
	r := NewHTMLRenderer(nil, Options{Locale: Portuguese})
	var buf bytes.Buffer
	if err := r.RenderNotFound(&buf, "<Brutalist>"); err != nil {
		t.Fatalf("render not found: %v", err)
	}
	if !strings.Contains(buf.String(), "Template não encontrado.") {
		t.Fatalf("missing not found message: %s", buf.String())
	}
	if strings.Contains(buf.String(), "<Brutalist>") {
		t.Fatal("template name must be escaped")
	}
}

func TestBuildView(t *testing.T) {
	v := BuildView(sampleGraph(t), English)
	if v.Personal.ContactLine() != "ada@example.com | 555-0100" {
		t.Fatalf("unexpected contact line %q", v.Personal.ContactLine())
	}
	if v.Educations[0].Heading != "BSc in Mathematics from MIT" {
		t.Fatalf("unexpected education heading %q", v.Educations[0].Heading)
	}
	if v.SkillsLine() != "Go (Advanced), SQL" {
		t.Fatalf("unexpected skills line %q", v.SkillsLine())
	}
	if !v.Experiences[0].Ongoing || v.Experiences[0].End != "Present" {
		t.Fatal("expected ongoing experience")
	}
	if v.Experiences[1].End != English.FormatDate(time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end date %q", v.Experiences[1].End)
	}
	if empty := BuildView(nil, English); empty.Title != "" || len(empty.Skills) != 0 {
		t.Fatal("nil graph should build an empty view")
	}
}
