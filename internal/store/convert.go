package store

import (
	"resumeBuilder/internal/database"
	"resumeBuilder/internal/resume"
)

func toPersonalInfo(p database.PersonalInfo) resume.PersonalInfo {
	return resume.PersonalInfo{
		FullName:       p.FullName,
		Email:          p.Email,
		Phone:          p.Phone,
		Address:        p.Address,
		LinkedIn:       p.LinkedIn,
		GitHub:         p.GitHub,
		Portfolio:      p.Portfolio,
		ProfilePicture: p.ProfilePicture,
		Summary:        p.Summary,
	}
}

func fromPersonalInfo(p resume.PersonalInfo) database.PersonalInfo {
	return database.PersonalInfo{
		FullName:       p.FullName,
		Email:          p.Email,
		Phone:          p.Phone,
		Address:        p.Address,
		LinkedIn:       p.LinkedIn,
		GitHub:         p.GitHub,
		Portfolio:      p.Portfolio,
		ProfilePicture: p.ProfilePicture,
		Summary:        p.Summary,
	}
}

func toExperience(e database.Experience) resume.Experience {
	return resume.Experience{
		ID:          e.ID,
		Title:       e.Title,
		Company:     e.Company,
		Location:    e.Location,
		StartDate:   resume.NewDate(e.StartDate),
		EndDate:     resume.DateFrom(e.EndDate),
		Description: e.Description,
	}
}

func fromExperience(e resume.Experience) database.Experience {
	return database.Experience{
		Title:       e.Title,
		Company:     e.Company,
		Location:    e.Location,
		StartDate:   e.StartDate.Time,
		EndDate:     e.EndDate.TimePtr(),
		Description: e.Description,
	}
}

func toEducation(e database.Education) resume.Education {
	return resume.Education{
		ID:           e.ID,
		Institution:  e.Institution,
		Degree:       e.Degree,
		FieldOfStudy: e.FieldOfStudy,
		StartDate:    resume.NewDate(e.StartDate),
		EndDate:      resume.DateFrom(e.EndDate),
		Description:  e.Description,
	}
}

func fromEducation(e resume.Education) database.Education {
	return database.Education{
		Institution:  e.Institution,
		Degree:       e.Degree,
		FieldOfStudy: e.FieldOfStudy,
		StartDate:    e.StartDate.Time,
		EndDate:      e.EndDate.TimePtr(),
		Description:  e.Description,
	}
}

func toSkill(s database.Skill) resume.Skill {
	return resume.Skill{ID: s.ID, Name: s.Name, Level: s.Level}
}
