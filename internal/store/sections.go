package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"resumeBuilder/internal/database"
	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/resume"
)

// GetPersonalInfo 读取个人信息。
func (s *Store) GetPersonalInfo(ctx context.Context, userID, resumeID uint) (resume.PersonalInfo, error) {
	if _, err := s.ownedResume(ctx, s.db, userID, resumeID); err != nil {
		return resume.PersonalInfo{}, err
	}
	var row database.PersonalInfo
	if err := s.db.WithContext(ctx).Where("resume_id = ?", resumeID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resume.PersonalInfo{}, errPersonalInfoNotFound
		}
		return resume.PersonalInfo{}, fmt.Errorf("get personal info: %w", err)
	}
	return toPersonalInfo(row), nil
}

// CreatePersonalInfo 创建个人信息，已存在时返回 Conflict。
func (s *Store) CreatePersonalInfo(ctx context.Context, userID, resumeID uint, in resume.PersonalInfo) (resume.PersonalInfo, error) {
	if err := validatePersonalInfo(in); err != nil {
		return resume.PersonalInfo{}, err
	}
	var out resume.PersonalInfo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ownedResume(ctx, tx, userID, resumeID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&database.PersonalInfo{}).Where("resume_id = ?", resumeID).Count(&count).Error; err != nil {
			return fmt.Errorf("count personal info: %w", err)
		}
		if count > 0 {
			return errPersonalInfoExists
		}
		row := fromPersonalInfo(in)
		row.ResumeID = resumeID
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create personal info: %w", err)
		}
		out = toPersonalInfo(row)
		return nil
	})
	return out, err
}

// UpdatePersonalInfo 整体替换个人信息。
func (s *Store) UpdatePersonalInfo(ctx context.Context, userID, resumeID uint, in resume.PersonalInfo) (resume.PersonalInfo, error) {
	if err := validatePersonalInfo(in); err != nil {
		return resume.PersonalInfo{}, err
	}
	if _, err := s.ownedResume(ctx, s.db, userID, resumeID); err != nil {
		return resume.PersonalInfo{}, err
	}
	row := fromPersonalInfo(in)
	res := s.db.WithContext(ctx).Model(&database.PersonalInfo{}).
		Where("resume_id = ?", resumeID).
		Select("full_name", "email", "phone", "address", "linked_in", "git_hub", "portfolio", "profile_picture", "summary").
		Updates(&row)
	if res.Error != nil {
		return resume.PersonalInfo{}, fmt.Errorf("update personal info: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return resume.PersonalInfo{}, errPersonalInfoNotFound
	}
	return in, nil
}

// ListExperiences 按创建顺序返回工作经历。
func (s *Store) ListExperiences(ctx context.Context, userID, resumeID uint) ([]resume.Experience, error) {
	if _, err := s.ownedResume(ctx, s.db, userID, resumeID); err != nil {
		return nil, err
	}
	var rows []database.Experience
	if err := s.db.WithContext(ctx).Where("resume_id = ?", resumeID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list experiences: %w", err)
	}
	out := make([]resume.Experience, 0, len(rows))
	for _, r := range rows {
		out = append(out, toExperience(r))
	}
	return out, nil
}

// CreateExperience 新增工作经历。
func (s *Store) CreateExperience(ctx context.Context, userID, resumeID uint, in resume.Experience) (resume.Experience, error) {
	if err := validateExperience(in); err != nil {
		return resume.Experience{}, err
	}
	if _, err := s.ownedResume(ctx, s.db, userID, resumeID); err != nil {
		return resume.Experience{}, err
	}
	row := fromExperience(in)
	row.ResumeID = resumeID
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return resume.Experience{}, fmt.Errorf("create experience: %w", err)
	}
	return toExperience(row), nil
}

// UpdateExperience 整体替换工作经历，EndDate 为 nil 时清空。
func (s *Store) UpdateExperience(ctx context.Context, userID, resumeID, id uint, in resume.Experience) (resume.Experience, error) {
	if err := validateExperience(in); err != nil {
		return resume.Experience{}, err
	}
	row := fromExperience(in)
	if err := s.updateChild(ctx, userID, resumeID, id, &database.Experience{}, &row,
		"title", "company", "location", "start_date", "end_date", "description"); err != nil {
		return resume.Experience{}, err
	}
	in.ID = id
	return in, nil
}

// DeleteExperience 删除工作经历。
func (s *Store) DeleteExperience(ctx context.Context, userID, resumeID, id uint) error {
	return s.deleteChild(ctx, userID, resumeID, id, &database.Experience{})
}

// ListEducations 按创建顺序返回教育经历。
func (s *Store) ListEducations(ctx context.Context, userID, resumeID uint) ([]resume.Education, error) {
	if _, err := s.ownedResume(ctx, s.db, userID, resumeID); err != nil {
		return nil, err
	}
	var rows []database.Education
	if err := s.db.WithContext(ctx).Where("resume_id = ?", resumeID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list educations: %w", err)
	}
	out := make([]resume.Education, 0, len(rows))
	for _, r := range rows {
		out = append(out, toEducation(r))
	}
	return out, nil
}

// CreateEducation 新增教育经历。
func (s *Store) CreateEducation(ctx context.Context, userID, resumeID uint, in resume.Education) (resume.Education, error) {
	if err := validateEducation(in); err != nil {
		return resume.Education{}, err
	}
	if _, err := s.ownedResume(ctx, s.db, userID, resumeID); err != nil {
		return resume.Education{}, err
	}
	row := fromEducation(in)
	row.ResumeID = resumeID
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return resume.Education{}, fmt.Errorf("create education: %w", err)
	}
	return toEducation(row), nil
}

func (s *Store) UpdateEducation(ctx context.Context, userID, resumeID, id uint, in resume.Education) (resume.Education, error) {
	if err := validateEducation(in); err != nil {
		return resume.Education{}, err
	}
	row := fromEducation(in)
	if err := s.updateChild(ctx, userID, resumeID, id, &database.Education{}, &row,
		"institution", "degree", "field_of_study", "start_date", "end_date", "description"); err != nil {
		return resume.Education{}, err
	}
	in.ID = id
	return in, nil
}

func (s *Store) DeleteEducation(ctx context.Context, userID, resumeID, id uint) error {
	return s.deleteChild(ctx, userID, resumeID, id, &database.Education{})
}

// ListSkills 按创建顺序返回技能。
func (s *Store) ListSkills(ctx context.Context, userID, resumeID uint) ([]resume.Skill, error) {
	if _, err := s.ownedResume(ctx, s.db, userID, resumeID); err != nil {
		return nil, err
	}
	var rows []database.Skill
	if err := s.db.WithContext(ctx).Where("resume_id = ?", resumeID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	out := make([]resume.Skill, 0, len(rows))
	for _, r := range rows {
		out = append(out, toSkill(r))
	}
	return out, nil
}

// GetSkill 读取单个技能。
func (s *Store) GetSkill(ctx context.Context, userID, resumeID, id uint) (resume.Skill, error) {
	if _, err := s.ownedResume(ctx, s.db, userID, resumeID); err != nil {
		return resume.Skill{}, err
	}
	var row database.Skill
	if err := s.db.WithContext(ctx).Where("id = ? AND resume_id = ?", id, resumeID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resume.Skill{}, errcode.New(errcode.NotFound, "skill not found")
		}
		return resume.Skill{}, fmt.Errorf("get skill: %w", err)
	}
	return toSkill(row), nil
}

func (s *Store) CreateSkill(ctx context.Context, userID, resumeID uint, in resume.Skill) (resume.Skill, error) {
	if strings.TrimSpace(in.Name) == "" {
		return resume.Skill{}, errcode.New(errcode.InvalidInput, "name is required")
	}
	if _, err := s.ownedResume(ctx, s.db, userID, resumeID); err != nil {
		return resume.Skill{}, err
	}
	row := database.Skill{ResumeID: resumeID, Name: in.Name, Level: in.Level}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return resume.Skill{}, fmt.Errorf("create skill: %w", err)
	}
	return toSkill(row), nil
}

// UpdateSkill 整体替换技能，Level 为 nil 时写入 NULL。
func (s *Store) UpdateSkill(ctx context.Context, userID, resumeID, id uint, in resume.Skill) (resume.Skill, error) {
	if strings.TrimSpace(in.Name) == "" {
		return resume.Skill{}, errcode.New(errcode.InvalidInput, "name is required")
	}
	row := database.Skill{Name: in.Name, Level: in.Level}
	if err := s.updateChild(ctx, userID, resumeID, id, &database.Skill{}, &row, "name", "level"); err != nil {
		return resume.Skill{}, err
	}
	in.ID = id
	return in, nil
}

func (s *Store) DeleteSkill(ctx context.Context, userID, resumeID, id uint) error {
	return s.deleteChild(ctx, userID, resumeID, id, &database.Skill{})
}

func (s *Store) updateChild(ctx context.Context, userID, resumeID, id uint, model, values any, columns ...string) error {
	if _, err := s.ownedResume(ctx, s.db, userID, resumeID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(model).
		Where("id = ? AND resume_id = ?", id, resumeID).
		Select(columns).
		Updates(values)
	if res.Error != nil {
		return fmt.Errorf("update record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errcode.New(errcode.NotFound, "record not found")
	}
	return nil
}

func (s *Store) deleteChild(ctx context.Context, userID, resumeID, id uint, model any) error {
	if _, err := s.ownedResume(ctx, s.db, userID, resumeID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ? AND resume_id = ?", id, resumeID).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("delete record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errcode.New(errcode.NotFound, "record not found")
	}
	return nil
}

func validatePersonalInfo(in resume.PersonalInfo) error {
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.Email) == "" {
		return errcode.New(errcode.InvalidInput, "fullName and email are required")
	}
	return nil
}

func validateExperience(in resume.Experience) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return errcode.New(errcode.InvalidInput, "title is required")
	case strings.TrimSpace(in.Company) == "":
		return errcode.New(errcode.InvalidInput, "company is required")
	case in.StartDate.IsZero():
		return errcode.New(errcode.InvalidInput, "startDate is required")
	}
	return nil
}

func validateEducation(in resume.Education) error {
	switch {
	case strings.TrimSpace(in.Institution) == "":
		return errcode.New(errcode.InvalidInput, "institution is required")
	case strings.TrimSpace(in.Degree) == "":
		return errcode.New(errcode.InvalidInput, "degree is required")
	case in.StartDate.IsZero():
		return errcode.New(errcode.InvalidInput, "startDate is required")
	}
	return nil
}
