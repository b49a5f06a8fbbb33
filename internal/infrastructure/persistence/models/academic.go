package models

import (
	"time"

	"github.com/sanable/backend/internal/domain/academic"
)

// AcademicYearModel is the persistence model for the AcademicYear aggregate root.
type AcademicYearModel struct {
	AggregateModel
	Year      int       `gorm:"not null;uniqueIndex"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AcademicYearModel) TableName() string {
	return "academic_years"
}

// ToDomain converts the persistence model to a domain AcademicYear entity.
func (m *AcademicYearModel) ToDomain() *academic.AcademicYear {
	return &academic.AcademicYear{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Year:              m.Year,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
	}
}

// FromDomain populates the persistence model from a domain AcademicYear entity.
func (m *AcademicYearModel) FromDomain(y *academic.AcademicYear) {
	m.FromDomainAggregateRoot(y.BaseAggregateRoot)
	m.Year = y.Year
	m.StartDate = y.StartDate
	m.EndDate = y.EndDate
}

// AcademicYearModelFromDomain creates a new persistence model from a domain AcademicYear.
func AcademicYearModelFromDomain(y *academic.AcademicYear) *AcademicYearModel {
	m := &AcademicYearModel{}
	m.FromDomain(y)
	return m
}
