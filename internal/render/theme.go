package render

import (
	"fmt"
	"strings"
)

// Layout 决定元素排布。
type Layout string

const (
	LayoutSingle  Layout = "single"
	LayoutSidebar Layout = "sidebar"
)

// Palette 是主题的配色。
type Palette struct {
	Name        string
	Heading     string
	ItemTitle   string
	Meta        string
	Text        string
	Link        string
	Rule        string
	SkillBg     string
	SkillText   string
	SkillBorder string
	Page        string
	Sidebar     string
	SidebarText string
}

// Theme 是一个模板预设，所有模板共用同一份 HTML，仅由这些参数区分。
type Theme struct {
	Name             string
	Label            string
	Layout           Layout
	FontFamily       string
	HeaderAlign      string
	HeaderRule       bool
	NameSize         string
	SectionTitleSize string
	ItemTitleSize    string
	SectionGap       string
	SummaryLeading   string
	SkillRadius      string
	Palette          Palette
	PageExtra        string
}

// Sheet 生成主题的基础样式表。
func (t Theme) Sheet() string {
	p := t.Palette
	rules := []string{
		"@page { size: A4; margin: 12mm; }",
		"* { box-sizing: border-box; }",
		fmt.Sprintf("body { font-family: %s; margin: 20px; color: %s; -webkit-print-color-adjust: exact; print-color-adjust: exact;%s }", t.FontFamily, p.Text, prefixSpace(t.PageExtra)),
		fmt.Sprintf("h1 { color: %s; }", p.Name),
		fmt.Sprintf("h2 { color: %s; }", p.Heading),
		"p { margin-bottom: 5px; }",
		fmt.Sprintf("a { color: %s; }", p.Link),
		fmt.Sprintf(".section { margin-bottom: %s; }", t.SectionGap),
		".item { margin-bottom: 15px; }",
		".item h3 { margin: 0; }",
		".item p { margin: 5px 0; }",
	}
	return strings.Join(rules, "\n")
}

// BaseStyles 返回每个可定制元素的基础内联样式。
func (t Theme) BaseStyles() map[string]string {
	p := t.Palette
	sectionTitle := fmt.Sprintf("font-size: %s; border-bottom: %s; padding-bottom: 5px; margin-bottom: 15px; color: %s;", t.SectionTitleSize, t.ruleFor(2), p.Heading)
	headerRule := ""
	if t.HeaderRule {
		headerRule = fmt.Sprintf(" border-bottom: 1px solid %s; padding-bottom: 15px;", p.Rule)
	}

	base := map[string]string{
		"body":                  "",
		"personalInfoContainer": fmt.Sprintf("text-align: %s; margin-bottom: %s;%s", t.HeaderAlign, t.SectionGap, headerRule),
		"profilePicture":        "width: 120px; height: 120px; border-radius: 50%; margin: 0 auto 10px; object-fit: cover; border: 4px solid #ccc; display: block;",
		"fullName":              fmt.Sprintf("font-size: %s; margin: 0; color: %s;", t.NameSize, p.Name),
		"contactInfo":           fmt.Sprintf("margin: 5px 0; color: %s;", p.Meta),
		"address":               fmt.Sprintf("margin: 5px 0; color: %s;", p.Meta),
		"socialLinksContainer":  "margin-top: 10px;",
		"linkedin":              fmt.Sprintf("color: %s; margin-right: 15px;", p.Link),
		"github":                fmt.Sprintf("color: %s; margin-right: 15px;", p.Link),
		"portfolio":             fmt.Sprintf("color: %s;", p.Link),
		"summary":               fmt.Sprintf("margin-top: 20px; line-height: %s; color: %s; white-space: pre-line;", t.SummaryLeading, p.Text),
		"summaryTitle":          sectionTitle,
		"experiencesContainer":  fmt.Sprintf("margin-bottom: %s;", t.SectionGap),
		"experiencesTitle":      sectionTitle,
		"experienceItem":        "margin-bottom: 15px;",
		"experienceTitle":       fmt.Sprintf("font-size: %s; margin: 0; color: %s;", t.ItemTitleSize, p.ItemTitle),
		"experienceDates":       fmt.Sprintf("margin: 5px 0; color: %s;", p.Meta),
		"experienceLocation":    fmt.Sprintf("margin: 5px 0; color: %s;", p.Meta),
		"experienceDescription": fmt.Sprintf("margin: 5px 0; color: %s; white-space: pre-line;", p.Text),
		"educationsContainer":   fmt.Sprintf("margin-bottom: %s;", t.SectionGap),
		"educationsTitle":       sectionTitle,
		"educationItem":         "margin-bottom: 15px;",
		"educationTitle":        fmt.Sprintf("font-size: %s; margin: 0; color: %s;", t.ItemTitleSize, p.ItemTitle),
		"educationDates":        fmt.Sprintf("margin: 5px 0; color: %s;", p.Meta),
		"educationDescription":  fmt.Sprintf("margin: 5px 0; color: %s; white-space: pre-line;", p.Text),
		"skillsTitle":           sectionTitle,
		"skillsContainer":       "display: flex; flex-wrap: wrap; gap: 10px;",
		"skillItem":             fmt.Sprintf("background: %s; color: %s; padding: 5px 10px; border-radius: %s; font-size: 0.9em;%s", p.SkillBg, p.SkillText, t.SkillRadius, t.skillBorder()),
	}

	if t.Layout == LayoutSidebar {
		base["page"] = fmt.Sprintf("display: grid; grid-template-columns: repeat(3, minmax(0, 1fr)); gap: 32px; background: %s; padding: 32px;", p.Page)
		base["sidebar"] = fmt.Sprintf("grid-column: span 1 / span 1; background: %s; color: %s; padding: 24px; border-radius: 8px;", p.Sidebar, p.SidebarText)
		base["mainColumn"] = "grid-column: span 2 / span 2;"
		base["personalInfoContainer"] = "text-align: center; margin-bottom: 32px;"
		base["fullName"] = fmt.Sprintf("font-size: %s; font-weight: 700; margin: 0; color: %s;", t.NameSize, p.SidebarText)
		base["contactTitle"] = fmt.Sprintf("font-size: 1.25em; font-weight: 600; border-bottom: 2px solid %s; padding-bottom: 8px; margin-bottom: 16px;", p.SidebarText)
		base["contactInfo"] = "margin: 4px 0;"
		base["address"] = "margin: 4px 0;"
		base["linkedin"] = fmt.Sprintf("color: %s; display: block;", p.SidebarText)
		base["github"] = fmt.Sprintf("color: %s; display: block;", p.SidebarText)
		base["portfolio"] = fmt.Sprintf("color: %s; display: block;", p.SidebarText)
		base["skillsTitle"] = base["contactTitle"]
		base["skillsContainer"] = "list-style: none; padding: 0; margin: 0;"
		base["skillItem"] = "margin-bottom: 8px;"
		base["summary"] = fmt.Sprintf("color: %s; line-height: %s; white-space: pre-line;", p.Text, t.SummaryLeading)
	}

	return base
}

func (t Theme) ruleFor(width int) string {
	return fmt.Sprintf("%dpx solid %s", width, t.Palette.Rule)
}

func (t Theme) skillBorder() string {
	if t.Palette.SkillBorder == "" {
		return ""
	}
	return " border: 1px solid " + t.Palette.SkillBorder + ";"
}

func prefixSpace(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}

// 预设主题。
var (
	Modern = Theme{
		Name:             "Modern",
		Label:            "Modern",
		Layout:           LayoutSingle,
		FontFamily:       "Arial, sans-serif",
		HeaderAlign:      "center",
		NameSize:         "2.5em",
		SectionTitleSize: "1.8em",
		ItemTitleSize:    "1.2em",
		SectionGap:       "20px",
		SummaryLeading:   "1.6",
		SkillRadius:      "5px",
		Palette: Palette{
			Name:      "#333",
			Heading:   "#333",
			ItemTitle: "#555",
			Meta:      "#777",
			Text:      "#444",
			Link:      "#007bff",
			Rule:      "#eee",
			SkillBg:   "#e0e0e0",
			SkillText: "#333",
		},
	}

	Elegant = Theme{
		Name:             "Elegant",
		Label:            "Elegant",
		Layout:           LayoutSingle,
		FontFamily:       "Georgia, serif",
		HeaderAlign:      "left",
		HeaderRule:       true,
		NameSize:         "2.8em",
		SectionTitleSize: "2em",
		ItemTitleSize:    "1.3em",
		SectionGap:       "25px",
		SummaryLeading:   "1.7",
		SkillRadius:      "3px",
		Palette: Palette{
			Name:        "#222",
			Heading:     "#222",
			ItemTitle:   "#444",
			Meta:        "#666",
			Text:        "#333",
			Link:        "#0056b3",
			Rule:        "#ddd",
			SkillBg:     "#e0e0e0",
			SkillText:   "#333",
			SkillBorder: "#ccc",
		},
	}

	Classic = Theme{
		Name:             "Classic",
		Label:            "Classic",
		Layout:           LayoutSingle,
		FontFamily:       "Georgia, serif",
		HeaderAlign:      "left",
		HeaderRule:       true,
		NameSize:         "2.8em",
		SectionTitleSize: "2em",
		ItemTitleSize:    "1.3em",
		SectionGap:       "25px",
		SummaryLeading:   "1.7",
		SkillRadius:      "3px",
		PageExtra:        "max-width: 700px; padding: 30px; border: 1px solid #ccc; box-shadow: 0 0 15px rgba(0,0,0,0.15); background-color: #f9f9f9;",
		Palette: Palette{
			Name:        "#222",
			Heading:     "#222",
			ItemTitle:   "#444",
			Meta:        "#666",
			Text:        "#333",
			Link:        "#0056b3",
			Rule:        "#ddd",
			SkillBg:     "#e0e0e0",
			SkillText:   "#333",
			SkillBorder: "#ccc",
		},
	}

	Creative = Theme{
		Name:             "Creative",
		Label:            "Creative",
		Layout:           LayoutSidebar,
		FontFamily:       "Helvetica, Arial, sans-serif",
		HeaderAlign:      "center",
		NameSize:         "1.875em",
		SectionTitleSize: "1.875em",
		ItemTitleSize:    "1.5em",
		SectionGap:       "32px",
		SummaryLeading:   "1.6",
		SkillRadius:      "0",
		Palette: Palette{
			Name:        "#ffffff",
			Heading:     "#3b82f6",
			ItemTitle:   "#1f2937",
			Meta:        "#6b7280",
			Text:        "#374151",
			Link:        "#ffffff",
			Rule:        "#bfdbfe",
			Page:        "#f9fafb",
			Sidebar:     "#3b82f6",
			SidebarText: "#ffffff",
		},
	}
)
