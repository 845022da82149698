package ai

import (
	"context"
	"strings"
	"testing"

	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/resume"
)

func TestTextServiceStripsMarkup(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, string) (string, error) {
		return "<p>Led **platform** work &amp; <script>alert(1)</script>hiring</p>", nil
	})
	s := NewTextService(gen, 0, "en")

	got, err := s.Generate(context.Background(), "write")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "Led platform work & hiring" {
		t.Fatalf("got %q", got)
	}
}

func TestTextServiceRejectsEmptyPrompt(t *testing.T) {
	s := NewTextService(GeneratorFunc(func(context.Context, string) (string, error) {
		t.Fatal("generator must not be called")
		return "", nil
	}), 0, "en")
	if _, err := s.Generate(context.Background(), "   "); errcode.KindOf(err) != errcode.InvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestPromptsFollowLocale(t *testing.T) {
	var prompts []string
	gen := GeneratorFunc(func(_ context.Context, p string) (string, error) {
		prompts = append(prompts, p)
		return "ok", nil
	})
	g := &resume.Graph{
		Experiences: []resume.Experience{{Title: "Engineer", Company: "Acme"}},
		Skills:      []resume.Skill{{Name: "Go"}},
	}

	_, _ = NewTextService(gen, 0, "pt-BR").DescribeExperience(context.Background(), "Engineer", "Acme")
	_, _ = NewTextService(gen, 0, "en").Summarize(context.Background(), g)

	if len(prompts) != 2 {
		t.Fatalf("expected 2 prompts, got %d", len(prompts))
	}
	if !strings.Contains(prompts[0], "Engineer na Acme") {
		t.Fatalf("unexpected pt-BR prompt %q", prompts[0])
	}
	if !strings.Contains(prompts[1], "Engineer at Acme") || !strings.Contains(prompts[1], "Key skills: Go") {
		t.Fatalf("unexpected summary prompt %q", prompts[1])
	}
}
