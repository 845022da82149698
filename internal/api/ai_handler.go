package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/ai"
	"resumeBuilder/internal/store"
)

// AIHandler 暴露文本生成接口。
type AIHandler struct {
	text  *ai.TextService
	store *store.Store
}

// NewAIHandler 构造 AIHandler。
func NewAIHandler(text *ai.TextService, s *store.Store) *AIHandler {
	return &AIHandler{text: text, store: s}
}

type generateRequest struct {
	Prompt string `json:"prompt" binding:"required,max=8000"`
}

type describeExperienceRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Company string `json:"company" binding:"required,max=255"`
}

// Generate 转发提示词，服务过载时按重试策略重试。
func (h *AIHandler) Generate(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailBinding(c, err)
		return
	}
	text, err := h.text.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// DescribeExperience 为职位与公司生成经历描述。
func (h *AIHandler) DescribeExperience(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	var req describeExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailBinding(c, err)
		return
	}
	text, err := h.text.DescribeExperience(c.Request.Context(), req.Title, req.Company)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// Summarize 根据简历现有内容生成职业摘要，不写回简历。
func (h *AIHandler) Summarize(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	g, err := h.store.LoadGraph(c.Request.Context(), userID, resumeID)
	if err != nil {
		Fail(c, err)
		return
	}
	text, err := h.text.Summarize(c.Request.Context(), g)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}
