package registry

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sanable/backend/internal/domain/registry"
)

// =============================================================================
// Student DTOs
// =============================================================================

// CreateStudentRequest represents a request to create a new student
type CreateStudentRequest struct {
	FirstName      string          `json:"first_name" binding:"required,min=1,max=100"`
	SecondName     string          `json:"second_name" binding:"required,min=1,max=100"`
	ThirdName      string          `json:"third_name" binding:"max=100"`
	FourthName     string          `json:"fourth_name" binding:"max=100"`
	Gender         string          `json:"gender" binding:"required,oneof=Male Female"`
	IdentityNumber string          `json:"identity_number" binding:"required,min=1,max=50"`
	ClassLevel     string          `json:"class_level" binding:"required,oneof=Orchard Introductory"`
	Address        string          `json:"address" binding:"required,min=1,max=500"`
	DateOfBirth    time.Time       `json:"date_of_birth" binding:"required"`
	FatherPhone    string          `json:"father_phone" binding:"max=50"`
	MotherPhone    string          `json:"mother_phone" binding:"max=50"`
	Fee            decimal.Decimal `json:"fee"`
	AcademicYearID *uuid.UUID      `json:"academic_year_id"`
}

// UpdateStudentRequest represents a request to update a student
type UpdateStudentRequest struct {
	FirstName      *string          `json:"first_name" binding:"omitempty,min=1,max=100"`
	SecondName     *string          `json:"second_name" binding:"omitempty,min=1,max=100"`
	ThirdName      *string          `json:"third_name" binding:"omitempty,max=100"`
	FourthName     *string          `json:"fourth_name" binding:"omitempty,max=100"`
	Gender         *string          `json:"gender" binding:"omitempty,oneof=Male Female"`
	IdentityNumber *string          `json:"identity_number" binding:"omitempty,min=1,max=50"`
	ClassLevel     *string          `json:"class_level" binding:"omitempty,oneof=Orchard Introductory"`
	Address        *string          `json:"address" binding:"omitempty,min=1,max=500"`
	DateOfBirth    *time.Time       `json:"date_of_birth"`
	FatherPhone    *string          `json:"father_phone" binding:"omitempty,max=50"`
	MotherPhone    *string          `json:"mother_phone" binding:"omitempty,max=50"`
	Fee            *decimal.Decimal `json:"fee"`
	AcademicYearID *uuid.UUID       `json:"academic_year_id"`
}

// StudentResponse represents a student in API responses
type StudentResponse struct {
	ID             uuid.UUID       `json:"id"`
	FirstName      string          `json:"first_name"`
	SecondName     string          `json:"second_name"`
	ThirdName      string          `json:"third_name"`
	FourthName     string          `json:"fourth_name"`
	FullName       string          `json:"full_name"`
	Gender         string          `json:"gender"`
	IdentityNumber string          `json:"identity_number"`
	ClassLevel     string          `json:"class_level"`
	Address        string          `json:"address"`
	DateOfBirth    time.Time       `json:"date_of_birth"`
	FatherPhone    string          `json:"father_phone"`
	MotherPhone    string          `json:"mother_phone"`
	Fee            decimal.Decimal `json:"fee"`
	AcademicYearID *uuid.UUID      `json:"academic_year_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// StudentListFilter represents filter options for student list
type StudentListFilter struct {
	Search     string `form:"search"`
	ClassLevel string `form:"class_level" binding:"omitempty,oneof=Orchard Introductory"`
	Gender     string `form:"gender" binding:"omitempty,oneof=Male Female"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PerPage    int    `form:"per_page" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToStudentResponse converts a domain student to a response DTO
func ToStudentResponse(s *registry.Student) StudentResponse {
	return StudentResponse{
		ID:             s.ID,
		FirstName:      s.FirstName,
		SecondName:     s.SecondName,
		ThirdName:      s.ThirdName,
		FourthName:     s.FourthName,
		FullName:       s.FullName(),
		Gender:         s.Gender.String(),
		IdentityNumber: s.IdentityNumber,
		ClassLevel:     s.ClassLevel.String(),
		Address:        s.Address,
		DateOfBirth:    s.DateOfBirth,
		FatherPhone:    s.FatherPhone,
		MotherPhone:    s.MotherPhone,
		Fee:            s.Fee,
		AcademicYearID: s.AcademicYearID,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		Version:        s.Version,
	}
}

// ToStudentResponses converts a slice of domain students
func ToStudentResponses(students []registry.Student) []StudentResponse {
	responses := make([]StudentResponse, len(students))
	for i := range students {
		responses[i] = ToStudentResponse(&students[i])
	}
	return responses
}

// =============================================================================
// Payment DTOs
// =============================================================================

// RecordPaymentRequest represents a request to record a tuition payment
type RecordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Comment       string          `json:"comment" binding:"max=500"`
	AmountInWords string          `json:"amount_in_words" binding:"max=500"`
	PaidAt        *time.Time      `json:"paid_at"`

	// IdempotencyKey is set from the Idempotency-Key header, not the body
	IdempotencyKey string `json:"-"`
}

// AmendPaymentRequest represents a request to correct a recorded payment
type AmendPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Comment       string          `json:"comment" binding:"max=500"`
	AmountInWords string          `json:"amount_in_words" binding:"max=500"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	StudentID       uuid.UUID       `json:"student_id"`
	Amount          decimal.Decimal `json:"amount"`
	Comment         string          `json:"comment"`
	AmountInWords   string          `json:"amount_in_words"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	PaidAt          time.Time       `json:"paid_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToPaymentResponse converts a domain payment to a response DTO
func ToPaymentResponse(p *registry.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		StudentID:       p.StudentID,
		Amount:          p.Amount,
		Comment:         p.Comment,
		AmountInWords:   p.AmountInWords,
		RemainingAmount: p.RemainingAmount,
		PaidAt:          p.PaidAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToPaymentResponses converts a slice of domain payments
func ToPaymentResponses(payments []registry.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}
