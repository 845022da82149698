package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 导出任务状态。
const (
	ExportStatusPending    = "pending"
	ExportStatusProcessing = "processing"
	ExportStatusCompleted  = "completed"
	ExportStatusFailed     = "failed"
	ExportStatusExpired    = "expired"
)

// User 表示系统中的账号信息，邮箱是稳定的唯一标识。
type User struct {
	gorm.Model
	Email              string   `gorm:"uniqueIndex;size:255"`
	PasswordHash       string   `gorm:"size:255"`
	MustChangePassword bool     `gorm:"default:false"`
	Resumes            []Resume `gorm:"constraint:OnDelete:CASCADE"`
}

// Resume 表示用户创建的简历。删除为硬删除，子记录随之删除。
type Resume struct {
	ID              uint `gorm:"primaryKey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Title           string          `gorm:"size:255;not null"`
	UserID          uint            `gorm:"index;not null"`
	PersonalInfo    *PersonalInfo   `gorm:"constraint:OnDelete:CASCADE"`
	Experiences     []Experience    `gorm:"constraint:OnDelete:CASCADE"`
	Educations      []Education     `gorm:"constraint:OnDelete:CASCADE"`
	Skills          []Skill         `gorm:"constraint:OnDelete:CASCADE"`
	Customizations  []Customization `gorm:"constraint:OnDelete:CASCADE"`
	ExportObjectKey string          `gorm:"size:512"`
	ExportStatus    string          `gorm:"size:32"`
}

// PersonalInfo 与 Resume 一对一。
type PersonalInfo struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResumeID       uint   `gorm:"uniqueIndex;not null"`
	FullName       string `gorm:"size:255;not null"`
	Email          string `gorm:"size:255;not null"`
	Phone          string `gorm:"size:64"`
	Address        string `gorm:"size:512"`
	LinkedIn       string `gorm:"size:512"`
	GitHub         string `gorm:"size:512"`
	Portfolio      string `gorm:"size:512"`
	ProfilePicture string `gorm:"size:1024"`
	Summary        string `gorm:"type:text"`
}

// Experience 表示一段工作经历，EndDate 为空表示至今。
type Experience struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResumeID    uint       `gorm:"index;not null"`
	Title       string     `gorm:"size:255;not null"`
	Company     string     `gorm:"size:255;not null"`
	Location    *string    `gorm:"size:255"`
	StartDate   time.Time  `gorm:"type:date;not null"`
	EndDate     *time.Time `gorm:"type:date"`
	Description string     `gorm:"type:text"`
}

// Education 表示一段教育经历。
type Education struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResumeID     uint       `gorm:"index;not null"`
	Institution  string     `gorm:"size:255;not null"`
	Degree       string     `gorm:"size:255;not null"`
	FieldOfStudy *string    `gorm:"size:255"`
	StartDate    time.Time  `gorm:"type:date;not null"`
	EndDate      *time.Time `gorm:"type:date"`
	Description  string     `gorm:"type:text"`
}

// Skill 表示技能，Level 为自由文本且可为空。
type Skill struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	ResumeID  uint    `gorm:"index;not null"`
	Name      string  `gorm:"size:255;not null"`
	Level     *string `gorm:"size:255"`
}

// Customization 保存某简历在某模板下的样式覆盖，(ResumeID, TemplateName) 唯一。
type Customization struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResumeID     uint           `gorm:"uniqueIndex:idx_customization_resume_template;not null"`
	TemplateName string         `gorm:"uniqueIndex:idx_customization_resume_template;size:64;not null"`
	Styles       datatypes.JSON `gorm:"type:jsonb"`
}
