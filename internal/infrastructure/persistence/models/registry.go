package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sanable/backend/internal/domain/registry"
)

// StudentModel is the persistence model for the Student aggregate root.
type StudentModel struct {
	AggregateModel
	FirstName      string              `gorm:"type:varchar(100);not null"`
	SecondName     string              `gorm:"type:varchar(100);not null"`
	ThirdName      string              `gorm:"type:varchar(100)"`
	FourthName     string              `gorm:"type:varchar(100)"`
	Gender         registry.Gender     `gorm:"type:varchar(10);not null"`
	IdentityNumber string              `gorm:"type:varchar(50);not null;index"`
	ClassLevel     registry.ClassLevel `gorm:"type:varchar(20);not null;index"`
	Address        string              `gorm:"type:varchar(500);not null"`
	DateOfBirth    time.Time           `gorm:"not null"`
	FatherPhone    string              `gorm:"type:varchar(50)"`
	MotherPhone    string              `gorm:"type:varchar(50)"`
	Fee            decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	AcademicYearID *uuid.UUID          `gorm:"type:uuid;index"`
	Payments       []PaymentModel      `gorm:"foreignKey:StudentID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (StudentModel) TableName() string {
	return "students"
}

// ToDomain converts the persistence model to a domain Student entity.
func (m *StudentModel) ToDomain() *registry.Student {
	return &registry.Student{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		FirstName:         m.FirstName,
		SecondName:        m.SecondName,
		ThirdName:         m.ThirdName,
		FourthName:        m.FourthName,
		Gender:            m.Gender,
		IdentityNumber:    m.IdentityNumber,
		ClassLevel:        m.ClassLevel,
		Address:           m.Address,
		DateOfBirth:       m.DateOfBirth,
		FatherPhone:       m.FatherPhone,
		MotherPhone:       m.MotherPhone,
		Fee:               m.Fee,
		AcademicYearID:    m.AcademicYearID,
	}
}

// FromDomain populates the persistence model from a domain Student entity.
func (m *StudentModel) FromDomain(s *registry.Student) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.FirstName = s.FirstName
	m.SecondName = s.SecondName
	m.ThirdName = s.ThirdName
	m.FourthName = s.FourthName
	m.Gender = s.Gender
	m.IdentityNumber = s.IdentityNumber
	m.ClassLevel = s.ClassLevel
	m.Address = s.Address
	m.DateOfBirth = s.DateOfBirth
	m.FatherPhone = s.FatherPhone
	m.MotherPhone = s.MotherPhone
	m.Fee = s.Fee
	m.AcademicYearID = s.AcademicYearID
}

// StudentModelFromDomain creates a new persistence model from a domain Student.
func StudentModelFromDomain(s *registry.Student) *StudentModel {
	m := &StudentModel{}
	m.FromDomain(s)
	return m
}

// PaymentModel is the persistence model for the Payment entity.
type PaymentModel struct {
	BaseModel
	StudentID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Comment         string          `gorm:"type:varchar(500)"`
	AmountInWords   string          `gorm:"type:varchar(200)"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAt          time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *registry.Payment {
	return &registry.Payment{
		BaseEntity:      m.BaseModel.ToDomain(),
		StudentID:       m.StudentID,
		Amount:          m.Amount,
		Comment:         m.Comment,
		AmountInWords:   m.AmountInWords,
		RemainingAmount: m.RemainingAmount,
		PaidAt:          m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *registry.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.StudentID = p.StudentID
	m.Amount = p.Amount
	m.Comment = p.Comment
	m.AmountInWords = p.AmountInWords
	m.RemainingAmount = p.RemainingAmount
	m.PaidAt = p.PaidAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *registry.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
