package resume

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout 是日期在 JSON 与存储中的格式。
const DateLayout = "2006-01-02"

// Date 表示不含时间部分的日期。
type Date struct {
	time.Time
}

// NewDate 截断为 UTC 日期。
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate 解析 YYYY-MM-DD。
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

// DateFrom 转换可空的时间。
func DateFrom(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := NewDate(*t)
	return &d
}

// TimePtr 返回可空日期对应的时间。
func (d *Date) TimePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Resume 是简历的基础信息。
type Resume struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"-"`
	Title        string    `json:"title"`
	ExportStatus string    `json:"exportStatus,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Graph 是一份简历及其全部子记录，子记录保持存储顺序。
type Graph struct {
	Resume
	PersonalInfo *PersonalInfo `json:"personalInfo"`
	Experiences  []Experience  `json:"experiences"`
	Educations   []Education   `json:"educations"`
	Skills       []Skill       `json:"skills"`
}

// PersonalInfo 与简历一对一。
type PersonalInfo struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	LinkedIn       string `json:"linkedin"`
	GitHub         string `json:"github"`
	Portfolio      string `json:"portfolio"`
	ProfilePicture string `json:"profilePicture"`
	Summary        string `json:"summary"`
}

// Experience 的 EndDate 为 nil 表示仍在进行。
type Experience struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	Location    *string `json:"location"`
	StartDate   Date    `json:"startDate"`
	EndDate     *Date   `json:"endDate"`
	Description string  `json:"description"`
}

type Education struct {
	ID           uint    `json:"id"`
	Institution  string  `json:"institution"`
	Degree       string  `json:"degree"`
	FieldOfStudy *string `json:"fieldOfStudy"`
	StartDate    Date    `json:"startDate"`
	EndDate      *Date   `json:"endDate"`
	Description  string  `json:"description"`
}

type Skill struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Level *string `json:"level"`
}
