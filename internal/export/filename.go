package export

import (
	"mime"
	"strings"
	"unicode"
)

// Filename 由简历标题生成下载文件名，空标题使用 "resume"。
func Filename(title, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == '"':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, title)
	name = strings.Trim(strings.TrimSpace(name), ".")
	if name == "" {
		name = "resume"
	}
	return name + ext
}

// ContentDisposition 返回 attachment 头，非 ASCII 文件名按 RFC 2231 编码。
func ContentDisposition(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
