package render

import "time"

// Labels 是渲染使用的固定文案。
type Labels struct {
	Experience       string
	Education        string
	Skills           string
	Contact          string
	Summary          string
	Present          string
	At               string
	In               string
	From             string
	LinkedIn         string
	GitHub           string
	Portfolio        string
	ProfilePicture   string
	TemplateNotFound string
}

// Locale 决定文案与日期格式，所有模板与 DOCX 共用同一种日期格式。
type Locale struct {
	Code       string
	Labels     Labels
	DateLayout string
}

// FormatDate 格式化日期。
func (l Locale) FormatDate(t time.Time) string {
	return t.Format(l.DateLayout)
}

var English = Locale{
	Code:       "en",
	DateLayout: "Jan 2006",
	Labels: Labels{
		Experience:       "Experience",
		Education:        "Education",
		Skills:           "Skills",
		Contact:          "Contact",
		Summary:          "Summary",
		Present:          "Present",
		At:               "at",
		In:               "in",
		From:             "from",
		LinkedIn:         "LinkedIn",
		GitHub:           "GitHub",
		Portfolio:        "Portfolio",
		ProfilePicture:   "Profile picture",
		TemplateNotFound: "Template not found.",
	},
}

var Portuguese = Locale{
	Code:       "pt-BR",
	DateLayout: "01/2006",
	Labels: Labels{
		Experience:       "Experiência",
		Education:        "Educação",
		Skills:           "Habilidades",
		Contact:          "Contato",
		Summary:          "Resumo",
		Present:          "Presente",
		At:               "em",
		In:               "em",
		From:             "de",
		LinkedIn:         "LinkedIn",
		GitHub:           "GitHub",
		Portfolio:        "Portfólio",
		ProfilePicture:   "Foto de Perfil",
		TemplateNotFound: "Template não encontrado.",
	},
}

// LocaleFor 返回语言代码对应的 Locale，未知代码使用英文。
func LocaleFor(code string) Locale {
	if code == Portuguese.Code {
		return Portuguese
	}
	return English
}
