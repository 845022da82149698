package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/store"
	"resumeBuilder/internal/style"
)

const maxCustomizationBytes = 64 << 10

// customizationSchema 约束样式覆盖：元素名 → (属性名 → 字符串或数字)。
const customizationSchema = `{
  "type": "object",
  "required": ["templateName", "styles"],
  "properties": {
    "templateName": {"type": "string", "minLength": 1, "maxLength": 64},
    "styles": {
      "type": "object",
      "maxProperties": 64,
      "additionalProperties": {
        "type": "object",
        "maxProperties": 64,
        "additionalProperties": {"type": ["string", "number"]}
      }
    }
  }
}`

var customizationSchemaLoader = gojsonschema.NewStringLoader(customizationSchema)

// CustomizationHandler 读写简历在某模板下的样式覆盖。
type CustomizationHandler struct {
	store    *store.Store
	registry *render.Registry
	schema   *gojsonschema.Schema
}

// NewCustomizationHandler 构造处理器并编译校验 schema。
func NewCustomizationHandler(s *store.Store, registry *render.Registry) (*CustomizationHandler, error) {
	schema, err := gojsonschema.NewSchema(customizationSchemaLoader)
	if err != nil {
		return nil, err
	}
	return &CustomizationHandler{store: s, registry: registry, schema: schema}, nil
}

type customizationPayload struct {
	TemplateName string          `json:"templateName"`
	Styles       style.Overrides `json:"styles"`
}

// GetCustomization 按 templateName 查询样式覆盖。
func (h *CustomizationHandler) GetCustomization(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	name := strings.TrimSpace(c.Query("templateName"))
	if name == "" {
		Fail(c, errcode.New(errcode.InvalidInput, "templateName is required"))
		return
	}
	if theme, ok := h.registry.Lookup(name); ok {
		name = theme.Name
	}
	styles, err := h.store.GetCustomization(c.Request.Context(), userID, resumeID, name)
	if err != nil {
		Fail(c, err)
		return
	}
	if styles == nil {
		styles = style.Overrides{}
	}
	c.JSON(http.StatusOK, customizationPayload{TemplateName: name, Styles: styles})
}

// PutCustomization 整体替换样式覆盖。
func (h *CustomizationHandler) PutCustomization(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCustomizationBytes+1))
	if err != nil {
		Fail(c, errcode.Wrap(errcode.InvalidInput, "invalid request body", err))
		return
	}
	if len(body) > maxCustomizationBytes {
		Fail(c, errcode.New(errcode.InvalidInput, "styles payload is too large"))
		return
	}
	if err := h.validate(body); err != nil {
		Fail(c, err)
		return
	}

	var req customizationPayload
	if err := json.Unmarshal(body, &req); err != nil {
		Fail(c, errcode.Wrap(errcode.InvalidInput, "invalid request body", err))
		return
	}
	theme, ok := h.registry.Lookup(req.TemplateName)
	if !ok {
		Fail(c, errcode.New(errcode.InvalidInput, "unknown template: "+req.TemplateName))
		return
	}
	if err := h.store.UpsertCustomization(c.Request.Context(), userID, resumeID, theme.Name, req.Styles); err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, customizationPayload{TemplateName: theme.Name, Styles: req.Styles})
}

func (h *CustomizationHandler) validate(body []byte) error {
	res, err := h.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errcode.Wrap(errcode.InvalidInput, "invalid request body", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return errcode.New(errcode.InvalidInput, strings.Join(msgs, "; "))
}
