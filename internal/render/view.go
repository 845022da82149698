package render

import (
	"strings"

	"resumeBuilder/internal/resume"
)

// View 是 HTML 与 DOCX 共用的中间视图模型。
type View struct {
	Title       string
	Personal    PersonalView
	Experiences []EntryView
	Educations  []EntryView
	Skills      []SkillView
	Labels      Labels
}

// PersonalView 中缺失的字段为空串。
type PersonalView struct {
	FullName       string
	Email          string
	Phone          string
	Address        string
	LinkedIn       string
	GitHub         string
	Portfolio      string
	ProfilePicture string
	Summary        string
}

// ContactLine 用 " | " 连接非空的邮箱与电话。
func (p PersonalView) ContactLine() string {
	return joinNonEmpty(" | ", p.Email, p.Phone)
}

// HasLinks 表示是否存在任何社交链接。
func (p PersonalView) HasLinks() bool {
	return p.LinkedIn != "" || p.GitHub != "" || p.Portfolio != ""
}

// EntryView 表示一条经历或教育记录。
type EntryView struct {
	Heading     string
	Primary     string
	Secondary   string
	Location    string
	Start       string
	End         string
	Ongoing     bool
	Description string
}

// Dates 返回 "start - end"。
func (e EntryView) Dates() string {
	return e.Start + " - " + e.End
}

type SkillView struct {
	Name  string
	Level string
}

// Label 返回 "name (level)"，无等级时只有名称。
func (s SkillView) Label() string {
	if s.Level == "" {
		return s.Name
	}
	return s.Name + " (" + s.Level + ")"
}

// BuildView 将简历数据转换为视图模型，子记录保持原有顺序。
func BuildView(g *resume.Graph, loc Locale) View {
	v := View{Labels: loc.Labels}
	if g == nil {
		return v
	}
	v.Title = g.Title

	if pi := g.PersonalInfo; pi != nil {
		v.Personal = PersonalView{
			FullName:       pi.FullName,
			Email:          pi.Email,
			Phone:          pi.Phone,
			Address:        pi.Address,
			LinkedIn:       pi.LinkedIn,
			GitHub:         pi.GitHub,
			Portfolio:      pi.Portfolio,
			ProfilePicture: pi.ProfilePicture,
			Summary:        pi.Summary,
		}
	}

	for _, exp := range g.Experiences {
		entry := EntryView{
			Heading:     exp.Title + " " + loc.Labels.At + " " + exp.Company,
			Primary:     exp.Title,
			Secondary:   exp.Company,
			Location:    deref(exp.Location),
			Description: exp.Description,
		}
		entry.Start, entry.End, entry.Ongoing = dateRange(loc, exp.StartDate, exp.EndDate)
		v.Experiences = append(v.Experiences, entry)
	}

	for _, edu := range g.Educations {
		field := deref(edu.FieldOfStudy)
		heading := edu.Degree
		if field != "" {
			heading += " " + loc.Labels.In + " " + field
		}
		heading += " " + loc.Labels.From + " " + edu.Institution

		entry := EntryView{
			Heading:     heading,
			Primary:     edu.Institution,
			Secondary:   joinNonEmpty(", ", edu.Degree, field),
			Description: edu.Description,
		}
		entry.Start, entry.End, entry.Ongoing = dateRange(loc, edu.StartDate, edu.EndDate)
		v.Educations = append(v.Educations, entry)
	}

	for _, s := range g.Skills {
		v.Skills = append(v.Skills, SkillView{Name: s.Name, Level: deref(s.Level)})
	}

	return v
}

// SkillsLine 将全部技能合并为一行。
func (v View) SkillsLine() string {
	labels := make([]string, 0, len(v.Skills))
	for _, s := range v.Skills {
		labels = append(labels, s.Label())
	}
	return strings.Join(labels, ", ")
}

func dateRange(loc Locale, start resume.Date, end *resume.Date) (string, string, bool) {
	from := loc.FormatDate(start.Time)
	if end == nil {
		return from, loc.Labels.Present, true
	}
	return from, loc.FormatDate(end.Time), false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
