package ai

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/resume"
)

// TextService 生成简历中的描述与摘要，输出为不含标记的纯文本。
type TextService struct {
	gen     Generator
	timeout time.Duration
	locale  string
	strip   *bluemonday.Policy
}

// NewTextService 的 gen 通常已经包装了重试策略。
func NewTextService(gen Generator, timeout time.Duration, locale string) *TextService {
	return &TextService{gen: gen, timeout: timeout, locale: locale, strip: bluemonday.StrictPolicy()}
}

// Generate 直接转发提示词。
func (s *TextService) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errcode.New(errcode.InvalidInput, "prompt is required")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		if errcode.KindOf(err) != errcode.Internal {
			return "", err
		}
		return "", fmt.Errorf("generate text: %w", err)
	}
	return s.plain(text), nil
}

// DescribeExperience 为一段工作经历生成职位描述。
func (s *TextService) DescribeExperience(ctx context.Context, title, company string) (string, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(company) == "" {
		return "", errcode.New(errcode.InvalidInput, "title and company are required")
	}
	return s.Generate(ctx, s.experiencePrompt(title, company))
}

// Summarize 根据简历内容生成职业摘要。
func (s *TextService) Summarize(ctx context.Context, g *resume.Graph) (string, error) {
	return s.Generate(ctx, s.summaryPrompt(g))
}

func (s *TextService) experiencePrompt(title, company string) string {
	if s.locale == "pt-BR" {
		return fmt.Sprintf("Gere uma descrição de cargo concisa para um currículo para a função de %s na %s. "+
			"Concentre-se nas principais responsabilidades e conquistas. Não use negrito.", title, company)
	}
	return fmt.Sprintf("Write a concise resume job description for the role of %s at %s. "+
		"Focus on key responsibilities and achievements. Do not use bold text.", title, company)
}

func (s *TextService) summaryPrompt(g *resume.Graph) string {
	skills := make([]string, 0, len(g.Skills))
	for _, sk := range g.Skills {
		skills = append(skills, sk.Name)
	}
	exps := make([]string, 0, len(g.Experiences))
	edus := make([]string, 0, len(g.Educations))

	if s.locale == "pt-BR" {
		for _, e := range g.Experiences {
			exps = append(exps, e.Title+" na "+e.Company)
		}
		for _, e := range g.Educations {
			edus = append(edus, e.Degree+" de "+e.Institution)
		}
		return fmt.Sprintf("Escreva um resumo profissional conciso para um currículo em português. Não use negrito. "+
			"Habilidades principais: %s. Experiência: %s. Educação: %s.",
			strings.Join(skills, ", "), strings.Join(exps, ", "), strings.Join(edus, ", "))
	}

	for _, e := range g.Experiences {
		exps = append(exps, e.Title+" at "+e.Company)
	}
	for _, e := range g.Educations {
		edus = append(edus, e.Degree+" from "+e.Institution)
	}
	return fmt.Sprintf("Write a concise professional summary for a resume. Do not use bold text. "+
		"Key skills: %s. Experience: %s. Education: %s.",
		strings.Join(skills, ", "), strings.Join(exps, ", "), strings.Join(edus, ", "))
}

// plain 去掉 HTML 标签与 markdown 加粗标记。
func (s *TextService) plain(text string) string {
	text = html.UnescapeString(s.strip.Sanitize(text))
	text = strings.ReplaceAll(text, "**", "")
	return strings.TrimSpace(text)
}
