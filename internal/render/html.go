package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"resumeBuilder/internal/style"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// 通用样式键会叠加到具体元素上，具体元素的覆盖最后生效。
var inherits = map[string][]string{
	"fullName":              {"h1"},
	"summaryTitle":          {"h2"},
	"contactTitle":          {"h2"},
	"experiencesTitle":      {"h2"},
	"educationsTitle":       {"h2"},
	"skillsTitle":           {"h2"},
	"experienceTitle":       {"h3", "itemH3"},
	"educationTitle":        {"h3", "itemH3"},
	"contactInfo":           {"p"},
	"address":               {"p"},
	"summary":               {"p"},
	"experienceDates":       {"p", "itemP"},
	"experienceLocation":    {"p", "itemP"},
	"experienceDescription": {"p", "itemP"},
	"educationDates":        {"p", "itemP"},
	"educationDescription":  {"p", "itemP"},
	"experienceItem":        {"item"},
	"educationItem":         {"item"},
	"experiencesContainer":  {"section"},
	"educationsContainer":   {"section"},
	"skillsSection":         {"section"},
	"linkedin":              {"a"},
	"github":                {"a"},
	"portfolio":             {"a"},
}

// Options 控制 HTML 渲染行为。
type Options struct {
	Locale   Locale
	Markdown bool
}

// HTMLRenderer 使用同一份参数化模板渲染全部主题。
type HTMLRenderer struct {
	tmpl     *template.Template
	registry *Registry
	opts     Options
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewHTMLRenderer 解析内嵌模板。
func NewHTMLRenderer(registry *Registry, opts Options) *HTMLRenderer {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if opts.Locale.Code == "" {
		opts.Locale = English
	}
	return &HTMLRenderer{
		tmpl:     template.Must(template.ParseFS(templateFS, "templates/*.tmpl")),
		registry: registry,
		opts:     opts,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Registry 返回渲染器使用的主题注册表。
func (r *HTMLRenderer) Registry() *Registry { return r.registry }

// Locale 返回渲染器使用的语言设置。
func (r *HTMLRenderer) Locale() Locale { return r.opts.Locale }

// Render 以主题与样式覆盖渲染完整的 HTML 文档。
func (r *HTMLRenderer) Render(w io.Writer, theme Theme, view View, overrides style.Overrides) error {
	data := &page{
		Theme:     theme,
		View:      view,
		Lang:      r.opts.Locale.Code,
		base:      theme.BaseStyles(),
		overrides: overrides,
		renderer:  r,
	}
	if err := r.tmpl.ExecuteTemplate(w, "resume", data); err != nil {
		return fmt.Errorf("execute %s template: %w", theme.Name, err)
	}
	return nil
}

// RenderString 渲染为字符串。
func (r *HTMLRenderer) RenderString(theme Theme, view View, overrides style.Overrides) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, theme, view, overrides); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderNotFound 渲染 "模板不存在" 的文档。
func (r *HTMLRenderer) RenderNotFound(w io.Writer, name string) error {
	data := struct {
		Lang    string
		Name    string
		Message string
	}{
		Lang:    r.opts.Locale.Code,
		Name:    name,
		Message: r.opts.Locale.Labels.TemplateNotFound,
	}
	if err := r.tmpl.ExecuteTemplate(w, "notFound", data); err != nil {
		return fmt.Errorf("execute not found template: %w", err)
	}
	return nil
}

type page struct {
	Theme     Theme
	View      View
	Lang      string
	base      map[string]string
	overrides style.Overrides
	renderer  *HTMLRenderer
}

// Sheet 只包含主题常量，不包含用户输入。
func (p *page) Sheet() template.CSS {
	return template.CSS(p.Theme.Sheet())
}

// Style 合并基础样式、通用覆盖与元素覆盖。
func (p *page) Style(element string) template.CSS {
	decl := p.base[element]
	for _, parent := range inherits[element] {
		decl = style.Merge(decl, p.overrides.For(parent))
	}
	return template.CSS(style.Merge(decl, p.overrides.For(element)))
}

// Text 返回自由文本；启用 Markdown 时输出经过清洗的 HTML。
func (p *page) Text(s string) any {
	if !p.renderer.opts.Markdown {
		return s
	}
	var buf bytes.Buffer
	if err := p.renderer.markdown.Convert([]byte(s), &buf); err != nil {
		return s
	}
	return template.HTML(p.renderer.policy.Sanitize(buf.String()))
}

// Picture 允许内联的 data:image 头像，其余地址交给模板按 URL 转义。
func (p *page) Picture() any {
	src := p.View.Personal.ProfilePicture
	if strings.HasPrefix(src, "data:image/") && strings.Contains(src, ";base64,") {
		return template.URL(src)
	}
	return src
}
