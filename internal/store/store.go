// Package store 提供按所有者隔离的简历持久化操作。
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resumeBuilder/internal/database"
	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/style"
)

var (
	errResumeNotFound       = errcode.New(errcode.NotFound, "resume not found")
	errPersonalInfoNotFound = errcode.New(errcode.NotFound, "personal info not found")
	errPersonalInfoExists   = errcode.New(errcode.Conflict, "personal info already exists")
	errCustomizationMissing = errcode.New(errcode.NotFound, "customization not found")
)

// Store 封装 gorm 句柄，所有操作都校验简历归属。
type Store struct {
	db *gorm.DB
}

// New 构造 Store。
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListResumes 返回用户的简历，最近更新的在前。
func (s *Store) ListResumes(ctx context.Context, userID uint) ([]resume.Resume, error) {
	var rows []database.Resume
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	out := make([]resume.Resume, 0, len(rows))
	for _, r := range rows {
		out = append(out, toResume(r))
	}
	return out, nil
}

// CreateResume 创建空简历。
func (s *Store) CreateResume(ctx context.Context, userID uint, title string) (resume.Resume, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return resume.Resume{}, errcode.New(errcode.InvalidInput, "title is required")
	}
	row := database.Resume{Title: title, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return resume.Resume{}, fmt.Errorf("create resume: %w", err)
	}
	return toResume(row), nil
}

// GetResume 读取属于用户的简历。
func (s *Store) GetResume(ctx context.Context, userID, resumeID uint) (resume.Resume, error) {
	row, err := s.ownedResume(ctx, s.db, userID, resumeID)
	if err != nil {
		return resume.Resume{}, err
	}
	return toResume(*row), nil
}

// RenameResume 只修改标题。
func (s *Store) RenameResume(ctx context.Context, userID, resumeID uint, title string) (resume.Resume, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return resume.Resume{}, errcode.New(errcode.InvalidInput, "title is required")
	}
	row, err := s.ownedResume(ctx, s.db, userID, resumeID)
	if err != nil {
		return resume.Resume{}, err
	}
	if err := s.db.WithContext(ctx).Model(row).Update("title", title).Error; err != nil {
		return resume.Resume{}, fmt.Errorf("rename resume: %w", err)
	}
	row.Title = title
	return toResume(*row), nil
}

// DeleteResume 删除简历及其全部子记录。
func (s *Store) DeleteResume(ctx context.Context, userID, resumeID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.ownedResume(ctx, tx, userID, resumeID)
		if err != nil {
			return err
		}
		children := []any{
			&database.PersonalInfo{},
			&database.Experience{},
			&database.Education{},
			&database.Skill{},
			&database.Customization{},
		}
		for _, model := range children {
			if err := tx.Where("resume_id = ?", row.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("delete resume children: %w", err)
			}
		}
		if err := tx.Delete(row).Error; err != nil {
			return fmt.Errorf("delete resume: %w", err)
		}
		return nil
	})
}

// LoadGraph 读取简历及全部子记录，子记录按创建顺序排列。
func (s *Store) LoadGraph(ctx context.Context, userID, resumeID uint) (*resume.Graph, error) {
	var row database.Resume
	err := s.db.WithContext(ctx).
		Preload("PersonalInfo").
		Preload("Experiences", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Educations", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Skills", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ? AND user_id = ?", resumeID, userID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errResumeNotFound
		}
		return nil, fmt.Errorf("load resume graph: %w", err)
	}

	g := &resume.Graph{Resume: toResume(row)}
	if row.PersonalInfo != nil {
		pi := toPersonalInfo(*row.PersonalInfo)
		g.PersonalInfo = &pi
	}
	for _, e := range row.Experiences {
		g.Experiences = append(g.Experiences, toExperience(e))
	}
	for _, e := range row.Educations {
		g.Educations = append(g.Educations, toEducation(e))
	}
	for _, sk := range row.Skills {
		g.Skills = append(g.Skills, toSkill(sk))
	}
	return g, nil
}

// SetExportState 记录异步导出的状态与对象键。
func (s *Store) SetExportState(ctx context.Context, resumeID uint, status, objectKey string) error {
	updates := map[string]any{"export_status": status}
	if objectKey != "" {
		updates["export_object_key"] = objectKey
	}
	res := s.db.WithContext(ctx).Model(&database.Resume{}).Where("id = ?", resumeID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update export state: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errResumeNotFound
	}
	return nil
}

// ExpireExport 在对象被清理后解除简历与该对象键的关联，已完成的状态改为 expired。
// 返回受影响的简历数。
func (s *Store) ExpireExport(ctx context.Context, objectKey string) (int64, error) {
	if objectKey == "" {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Model(&database.Resume{}).
		Where("export_object_key = ?", objectKey).
		Updates(map[string]any{
			"export_object_key": "",
			"export_status": gorm.Expr("CASE WHEN export_status = ? THEN ? ELSE export_status END",
				database.ExportStatusCompleted, database.ExportStatusExpired),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("expire export: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ExportObjectKey 返回最近一次导出的对象键。
func (s *Store) ExportObjectKey(ctx context.Context, userID, resumeID uint) (string, string, error) {
	row, err := s.ownedResume(ctx, s.db, userID, resumeID)
	if err != nil {
		return "", "", err
	}
	return row.ExportObjectKey, row.ExportStatus, nil
}

// GetCustomization 读取 (简历, 模板) 的样式覆盖。
func (s *Store) GetCustomization(ctx context.Context, userID, resumeID uint, templateName string) (style.Overrides, error) {
	if _, err := s.ownedResume(ctx, s.db, userID, resumeID); err != nil {
		return nil, err
	}
	var row database.Customization
	err := s.db.WithContext(ctx).
		Where("resume_id = ? AND template_name = ?", resumeID, templateName).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errCustomizationMissing
		}
		return nil, fmt.Errorf("get customization: %w", err)
	}
	var overrides style.Overrides
	if len(row.Styles) > 0 {
		if err := json.Unmarshal(row.Styles, &overrides); err != nil {
			return nil, fmt.Errorf("decode customization styles: %w", err)
		}
	}
	return overrides, nil
}

// FindCustomization 与 GetCustomization 相同，但不存在时返回空覆盖。
func (s *Store) FindCustomization(ctx context.Context, userID, resumeID uint, templateName string) (style.Overrides, error) {
	overrides, err := s.GetCustomization(ctx, userID, resumeID, templateName)
	if errors.Is(err, errCustomizationMissing) {
		return nil, nil
	}
	return overrides, err
}

// UpsertCustomization 整体替换样式覆盖。
func (s *Store) UpsertCustomization(ctx context.Context, userID, resumeID uint, templateName string, overrides style.Overrides) error {
	if _, err := s.ownedResume(ctx, s.db, userID, resumeID); err != nil {
		return err
	}
	raw, err := json.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("encode customization styles: %w", err)
	}
	row := database.Customization{
		ResumeID:     resumeID,
		TemplateName: templateName,
		Styles:       datatypes.JSON(raw),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resume_id"}, {Name: "template_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"styles", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert customization: %w", err)
	}
	return nil
}

func (s *Store) ownedResume(ctx context.Context, db *gorm.DB, userID, resumeID uint) (*database.Resume, error) {
	var row database.Resume
	if err := db.WithContext(ctx).Where("id = ? AND user_id = ?", resumeID, userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errResumeNotFound
		}
		return nil, fmt.Errorf("query resume: %w", err)
	}
	return &row, nil
}

func toResume(r database.Resume) resume.Resume {
	return resume.Resume{
		ID:           r.ID,
		UserID:       r.UserID,
		Title:        r.Title,
		ExportStatus: r.ExportStatus,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
