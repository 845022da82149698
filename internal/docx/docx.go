// Package docx writes WordprocessingML documents from the resume view model.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"resumeBuilder/internal/render"
)

// ContentType 是 DOCX 的 MIME 类型。
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// 字号单位为半磅。
const (
	titleSize   = 32
	headingSize = 28
)

// Run 是一段格式一致的文字。
type Run struct {
	Text string
	Bold bool
	Size int
}

// Paragraph 由若干 Run 组成。
type Paragraph struct {
	Runs []Run
}

// Document 是按顺序排列的段落。
type Document struct {
	Title      string
	Paragraphs []Paragraph
}

// Add 追加一个段落。
func (d *Document) Add(runs ...Run) {
	d.Paragraphs = append(d.Paragraphs, Paragraph{Runs: runs})
}

// addText 追加非空的普通段落。
func (d *Document) addText(text string) {
	if text != "" {
		d.Add(Run{Text: text})
	}
}

// FromView 根据视图模型构建文档。样式覆盖不作用于 DOCX。
func FromView(v render.View) *Document {
	doc := &Document{Title: v.Title}
	p := v.Personal

	doc.Add(Run{Text: p.FullName, Bold: true, Size: titleSize})
	doc.addText(p.ContactLine())
	doc.addText(p.Address)
	doc.addText(joinLinks(p))
	doc.addText(p.Summary)

	if len(v.Experiences) > 0 {
		doc.Add(Run{Text: v.Labels.Experience, Bold: true, Size: headingSize})
		for _, e := range v.Experiences {
			doc.Add(Run{Text: e.Heading, Bold: true})
			doc.addText(e.Dates())
			doc.addText(e.Location)
			doc.addText(e.Description)
		}
	}

	if len(v.Educations) > 0 {
		doc.Add(Run{Text: v.Labels.Education, Bold: true, Size: headingSize})
		for _, e := range v.Educations {
			doc.Add(Run{Text: e.Heading, Bold: true})
			doc.addText(e.Dates())
			doc.addText(e.Description)
		}
	}

	if len(v.Skills) > 0 {
		doc.Add(Run{Text: v.Labels.Skills, Bold: true, Size: headingSize})
		doc.addText(v.SkillsLine())
	}

	return doc
}

func joinLinks(p render.PersonalView) string {
	var links []string
	for _, l := range []string{p.LinkedIn, p.GitHub, p.Portfolio} {
		if l != "" {
			links = append(links, l)
		}
	}
	return strings.Join(links, " | ")
}

// Bytes 序列化为 DOCX 压缩包。
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		body []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(rootRelsXML)},
		{"docProps/core.xml", d.coreXML()},
		{"word/document.xml", d.documentXML()},
	}
	for _, part := range parts {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     part.name,
			Method:   zip.Deflate,
			Modified: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := w.Write(part.body); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *Document) documentXML() []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range d.Paragraphs {
		b.WriteString("<w:p>")
		for _, r := range p.Runs {
			writeRun(&b, r)
		}
		b.WriteString("</w:p>")
	}
	b.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>`)
	b.WriteString("</w:body></w:document>")
	return b.Bytes()
}

func writeRun(b *bytes.Buffer, r Run) {
	b.WriteString("<w:r>")
	if r.Bold || r.Size > 0 {
		b.WriteString("<w:rPr>")
		if r.Bold {
			b.WriteString("<w:b/>")
		}
		if r.Size > 0 {
			fmt.Fprintf(b, `<w:sz w:val="%d"/>`, r.Size)
		}
		b.WriteString("</w:rPr>")
	}
	for i, line := range strings.Split(r.Text, "\n") {
		if i > 0 {
			b.WriteString("<w:br/>")
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(b, []byte(line))
		b.WriteString("</w:t>")
	}
	b.WriteString("</w:r>")
}

func (d *Document) coreXML() []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>`)
	_ = xml.EscapeText(&b, []byte(d.Title))
	b.WriteString(`</dc:title></cp:coreProperties>`)
	return b.Bytes()
}

const contentTypesXML = xml.Header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`</Types>`

const rootRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`</Relationships>`
