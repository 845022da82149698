// Package style turns camelCase style mappings into inline CSS declarations
// and layers per-resume overrides on top of template base styles.
package style

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Declarations maps camelCase property names to string or numeric values.
type Declarations map[string]any

// Overrides maps a symbolic element name (e.g. "h1", "experienceItem") to its declarations.
type Overrides map[string]Declarations

// Kebab converts fontSize to font-size.
func Kebab(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Inline renders declarations as "key: value;" pairs separated by a space.
// Keys are emitted in sorted order so output is stable. Values are not validated.
func Inline(decls Declarations) string {
	if len(decls) == 0 {
		return ""
	}
	keys := make([]string, 0, len(decls))
	for k := range decls {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s;", Kebab(k), formatValue(decls[k])))
	}
	return strings.Join(parts, " ")
}

// Merge appends the override declarations after the base declarations.
// An empty override returns base unchanged; later declarations win in CSS.
func Merge(base string, override Declarations) string {
	extra := Inline(override)
	switch {
	case extra == "":
		return base
	case base == "":
		return extra
	default:
		return base + " " + extra
	}
}

// For returns the declarations stored for element, or nil.
func (o Overrides) For(element string) Declarations {
	if o == nil {
		return nil
	}
	return o[element]
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
