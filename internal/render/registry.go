package render

import "strings"

// DefaultTemplate 是未知模板名的回退模板。
const DefaultTemplate = "Modern"

// Registry 按名称查找主题。
type Registry struct {
	themes   map[string]Theme
	order    []string
	fallback string
}

// NewRegistry 按给定顺序注册主题，第一个主题作为回退。
func NewRegistry(themes ...Theme) *Registry {
	r := &Registry{themes: make(map[string]Theme, len(themes))}
	for _, t := range themes {
		key := CanonicalName(t.Name)
		if _, exists := r.themes[key]; !exists {
			r.order = append(r.order, key)
		}
		r.themes[key] = t
	}
	if len(r.order) > 0 {
		r.fallback = r.order[0]
	}
	return r
}

// DefaultRegistry 包含四个内置主题，Modern 为回退。
func DefaultRegistry() *Registry {
	return NewRegistry(Modern, Classic, Elegant, Creative)
}

// CanonicalName 兼容 "ModernTemplate" 与大小写差异。
func CanonicalName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, "template")
}

// Lookup 精确查找主题，未知名称返回 false。
func (r *Registry) Lookup(name string) (Theme, bool) {
	t, ok := r.themes[CanonicalName(name)]
	return t, ok
}

// Resolve 查找主题，未知或空名称回退到默认主题。
func (r *Registry) Resolve(name string) Theme {
	if t, ok := r.Lookup(name); ok {
		return t
	}
	return r.Fallback()
}

// Fallback 返回当前回退主题。
func (r *Registry) Fallback() Theme {
	return r.themes[r.fallback]
}

// SetFallback 修改回退主题，未注册的名称返回 false。
func (r *Registry) SetFallback(name string) bool {
	key := CanonicalName(name)
	if _, ok := r.themes[key]; !ok {
		return false
	}
	r.fallback = key
	return true
}

// Themes 按注册顺序返回全部主题。
func (r *Registry) Themes() []Theme {
	out := make([]Theme, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.themes[key])
	}
	return out
}
