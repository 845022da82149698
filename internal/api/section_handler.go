package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/store"
)

// SectionHandler 处理个人信息、工作经历、教育经历与技能。
type SectionHandler struct {
	store *store.Store
}

// NewSectionHandler 构造 SectionHandler。
func NewSectionHandler(s *store.Store) *SectionHandler {
	return &SectionHandler{store: s}
}

type personalInfoRequest struct {
	FullName       string `json:"fullName" binding:"required,max=255"`
	Email          string `json:"email" binding:"required,email,max=255"`
	Phone          string `json:"phone" binding:"max=64"`
	Address        string `json:"address" binding:"max=512"`
	LinkedIn       string `json:"linkedin" binding:"max=512"`
	GitHub         string `json:"github" binding:"max=512"`
	Portfolio      string `json:"portfolio" binding:"max=512"`
	ProfilePicture string `json:"profilePicture" binding:"max=1024"`
	Summary        string `json:"summary"`
}

func (r personalInfoRequest) model() resume.PersonalInfo {
	return resume.PersonalInfo{
		FullName:       r.FullName,
		Email:          r.Email,
		Phone:          r.Phone,
		Address:        r.Address,
		LinkedIn:       r.LinkedIn,
		GitHub:         r.GitHub,
		Portfolio:      r.Portfolio,
		ProfilePicture: r.ProfilePicture,
		Summary:        r.Summary,
	}
}

type experienceRequest struct {
	Title       string       `json:"title" binding:"required,max=255"`
	Company     string       `json:"company" binding:"required,max=255"`
	Location    *string      `json:"location" binding:"omitempty,max=255"`
	StartDate   resume.Date  `json:"startDate"`
	EndDate     *resume.Date `json:"endDate"`
	Description string       `json:"description"`
}

func (r experienceRequest) model() resume.Experience {
	return resume.Experience{
		Title:       r.Title,
		Company:     r.Company,
		Location:    r.Location,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Description: r.Description,
	}
}

type educationRequest struct {
	Institution  string       `json:"institution" binding:"required,max=255"`
	Degree       string       `json:"degree" binding:"required,max=255"`
	FieldOfStudy *string      `json:"fieldOfStudy" binding:"omitempty,max=255"`
	StartDate    resume.Date  `json:"startDate"`
	EndDate      *resume.Date `json:"endDate"`
	Description  string       `json:"description"`
}

func (r educationRequest) model() resume.Education {
	return resume.Education{
		Institution:  r.Institution,
		Degree:       r.Degree,
		FieldOfStudy: r.FieldOfStudy,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Description:  r.Description,
	}
}

type skillRequest struct {
	Name  string  `json:"name" binding:"required,max=255"`
	Level *string `json:"level" binding:"omitempty,max=255"`
}

// GetPersonalInfo 返回个人信息。
func (h *SectionHandler) GetPersonalInfo(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	info, err := h.store.GetPersonalInfo(c.Request.Context(), userID, resumeID)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// CreatePersonalInfo 创建个人信息，已存在返回 409。
func (h *SectionHandler) CreatePersonalInfo(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	var req personalInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailBinding(c, err)
		return
	}
	info, err := h.store.CreatePersonalInfo(c.Request.Context(), userID, resumeID, req.model())
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// UpdatePersonalInfo 整体替换个人信息。
func (h *SectionHandler) UpdatePersonalInfo(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	var req personalInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailBinding(c, err)
		return
	}
	info, err := h.store.UpdatePersonalInfo(c.Request.Context(), userID, resumeID, req.model())
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *SectionHandler) ListExperiences(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	items, err := h.store.ListExperiences(c.Request.Context(), userID, resumeID)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *SectionHandler) CreateExperience(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	var req experienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailBinding(c, err)
		return
	}
	item, err := h.store.CreateExperience(c.Request.Context(), userID, resumeID, req.model())
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *SectionHandler) UpdateExperience(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	id, err := idParam(c, "itemID")
	if err != nil {
		Fail(c, err)
		return
	}
	var req experienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailBinding(c, err)
		return
	}
	item, err := h.store.UpdateExperience(c.Request.Context(), userID, resumeID, id, req.model())
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *SectionHandler) DeleteExperience(c *gin.Context) {
	h.deleteItem(c, h.store.DeleteExperience)
}

func (h *SectionHandler) ListEducations(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	items, err := h.store.ListEducations(c.Request.Context(), userID, resumeID)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *SectionHandler) CreateEducation(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	var req educationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailBinding(c, err)
		return
	}
	item, err := h.store.CreateEducation(c.Request.Context(), userID, resumeID, req.model())
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *SectionHandler) UpdateEducation(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	id, err := idParam(c, "itemID")
	if err != nil {
		Fail(c, err)
		return
	}
	var req educationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailBinding(c, err)
		return
	}
	item, err := h.store.UpdateEducation(c.Request.Context(), userID, resumeID, id, req.model())
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *SectionHandler) DeleteEducation(c *gin.Context) {
	h.deleteItem(c, h.store.DeleteEducation)
}

func (h *SectionHandler) ListSkills(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	items, err := h.store.ListSkills(c.Request.Context(), userID, resumeID)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *SectionHandler) CreateSkill(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailBinding(c, err)
		return
	}
	item, err := h.store.CreateSkill(c.Request.Context(), userID, resumeID, resume.Skill{Name: req.Name, Level: req.Level})
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateSkill 整体替换技能，level 为 null 时清空。
func (h *SectionHandler) UpdateSkill(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	id, err := idParam(c, "itemID")
	if err != nil {
		Fail(c, err)
		return
	}
	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailBinding(c, err)
		return
	}
	item, err := h.store.UpdateSkill(c.Request.Context(), userID, resumeID, id, resume.Skill{Name: req.Name, Level: req.Level})
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *SectionHandler) DeleteSkill(c *gin.Context) {
	h.deleteItem(c, h.store.DeleteSkill)
}

func (h *SectionHandler) deleteItem(c *gin.Context, del func(ctx context.Context, userID, resumeID, id uint) error) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	id, err := idParam(c, "itemID")
	if err != nil {
		Fail(c, errcode.New(errcode.NotFound, "record not found"))
		return
	}
	if err := del(c.Request.Context(), userID, resumeID, id); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
