package style

import (
	"strings"
	"testing"
)

func TestKebab(t *testing.T) {
	cases := map[string]string{
		"fontSize":        "font-size",
		"color":           "color",
		"borderTopWidth":  "border-top-width",
		"gridTemplateCol": "grid-template-col",
		"":                "",
	}
	for in, want := range cases {
		if got := Kebab(in); got != want {
			t.Errorf("Kebab(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInline(t *testing.T) {
	got := Inline(Declarations{"fontSize": "12px", "lineHeight": 1.5, "marginTop": 0})
	want := "font-size: 12px; line-height: 1.5; margin-top: 0;"
	if got != want {
		t.Fatalf("Inline = %q, want %q", got, want)
	}
	if Inline(nil) != "" || Inline(Declarations{}) != "" {
		t.Fatal("empty declarations should render empty string")
	}
}

func TestInlinePassesValuesVerbatim(t *testing.T) {
	got := Inline(Declarations{"notAProperty": "???"})
	if got != "not-a-property: ???;" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestMergeEmptyOverrideIsIdentity(t *testing.T) {
	base := "color: #333; font-size: 2.5em;"
	if got := Merge(base, nil); got != base {
		t.Fatalf("nil override changed base: %q", got)
	}
	if got := Merge(base, Declarations{}); got != base {
		t.Fatalf("empty override changed base: %q", got)
	}
}

func TestMergeOverrideWins(t *testing.T) {
	base := "color: #333; font-size: 2.5em;"
	merged := Merge(base, Declarations{"color": "red"})

	if !strings.HasPrefix(merged, base) {
		t.Fatalf("base declarations must come first: %q", merged)
	}
	if got := effective(merged, "color"); got != "red" {
		t.Fatalf("effective color = %q, want red", got)
	}
	if got := effective(merged, "font-size"); got != "2.5em" {
		t.Fatalf("untouched property changed: %q", got)
	}
}

func TestMergeIntoEmptyBase(t *testing.T) {
	if got := Merge("", Declarations{"color": "red"}); got != "color: red;" {
		t.Fatalf("unexpected merge %q", got)
	}
}

func TestOverridesFor(t *testing.T) {
	var empty Overrides
	if empty.For("h1") != nil {
		t.Fatal("nil overrides should yield nil declarations")
	}
	o := Overrides{"h1": {"color": "blue"}}
	if o.For("h1")["color"] != "blue" {
		t.Fatal("expected h1 declarations")
	}
}

// effective mimics CSS last-declaration-wins for a single property.
func effective(css, prop string) string {
	value := ""
	for _, decl := range strings.Split(css, ";") {
		name, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(name) == prop {
			value = strings.TrimSpace(val)
		}
	}
	return value
}
