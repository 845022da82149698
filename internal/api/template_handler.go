package api

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/export"
	"resumeBuilder/internal/render"
)

// TemplateHandler 列出模板并渲染 HTML 预览。
type TemplateHandler struct {
	registry *render.Registry
	exporter *export.Service
}

// NewTemplateHandler 构造 TemplateHandler。
func NewTemplateHandler(registry *render.Registry, exporter *export.Service) *TemplateHandler {
	return &TemplateHandler{registry: registry, exporter: exporter}
}

type templateItem struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// ListTemplates 按注册顺序返回内置模板。
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	themes := h.registry.Themes()
	items := make([]templateItem, 0, len(themes))
	for _, t := range themes {
		items = append(items, templateItem{Name: t.Name, Label: t.Label})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "default": h.registry.Fallback().Name})
}

// Preview 渲染简历 HTML。未知模板返回 200 与 "模板不存在" 页面。
func (h *TemplateHandler) Preview(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	found, err := h.exporter.Preview(c.Request.Context(), &buf, userID, resumeID, c.Query("templateName"))
	if err != nil {
		Fail(c, err)
		return
	}
	if !found {
		c.Header("X-Template-Found", "false")
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
