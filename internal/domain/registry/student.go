package registry

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sanable/backend/internal/domain/shared"
	"github.com/sanable/backend/internal/domain/shared/valueobject"
)

// Gender represents a student's gender
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// IsValid checks if the gender is a valid Gender
func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

// String returns the string representation of Gender
func (g Gender) String() string {
	return string(g)
}

// ClassLevel represents the academic stage a student is enrolled in
type ClassLevel string

const (
	ClassLevelOrchard      ClassLevel = "Orchard"
	ClassLevelIntroductory ClassLevel = "Introductory"
)

// OrchardPromotionFilter selects the class level moved by year-to-year
// promotion. The legacy admin system matched the literal "Orchard level",
// which never equalled the stored "Orchard" value; the filter here
// matches the stored value.
const OrchardPromotionFilter = ClassLevelOrchard

// IsValid checks if the class level is a valid ClassLevel
func (c ClassLevel) IsValid() bool {
	return c == ClassLevelOrchard || c == ClassLevelIntroductory
}

// String returns the string representation of ClassLevel
func (c ClassLevel) String() string {
	return string(c)
}

// Student represents a student aggregate root. Fee is the outstanding
// tuition balance; every recorded payment reduces it and a reversal
// restores it. The balance never goes negative.
type Student struct {
	shared.BaseAggregateRoot
	FirstName      string          `json:"first_name"`
	SecondName     string          `json:"second_name"`
	ThirdName      string          `json:"third_name"`
	FourthName     string          `json:"fourth_name"`
	Gender         Gender          `json:"gender"`
	IdentityNumber string          `json:"identity_number"`
	ClassLevel     ClassLevel      `json:"class_level"`
	Address        string          `json:"address"`
	DateOfBirth    time.Time       `json:"date_of_birth"`
	FatherPhone    string          `json:"father_phone"`
	MotherPhone    string          `json:"mother_phone"`
	Fee            decimal.Decimal `json:"fee"`
	AcademicYearID *uuid.UUID      `json:"academic_year_id"` // at most one enrollment at a time
}

// NewStudent creates a new student with the given profile and opening balance
func NewStudent(
	firstName string,
	secondName string,
	thirdName string,
	fourthName string,
	gender Gender,
	identityNumber string,
	classLevel ClassLevel,
	address string,
	dateOfBirth time.Time,
	fatherPhone string,
	motherPhone string,
	fee valueobject.Money,
) (*Student, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	if strings.TrimSpace(secondName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Second name cannot be empty")
	}
	if !gender.IsValid() {
		return nil, shared.NewDomainError("INVALID_GENDER", fmt.Sprintf("Gender %q is not valid", gender))
	}
	if strings.TrimSpace(identityNumber) == "" {
		return nil, shared.NewDomainError("INVALID_IDENTITY_NUMBER", "Identity number cannot be empty")
	}
	if !classLevel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CLASS_LEVEL", fmt.Sprintf("Class level %q is not valid", classLevel))
	}
	if strings.TrimSpace(address) == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Address cannot be empty")
	}
	if dateOfBirth.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE_OF_BIRTH", "Date of birth is required")
	}
	if fee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FEE", "Fee cannot be negative")
	}

	return &Student{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         strings.TrimSpace(firstName),
		SecondName:        strings.TrimSpace(secondName),
		ThirdName:         strings.TrimSpace(thirdName),
		FourthName:        strings.TrimSpace(fourthName),
		Gender:            gender,
		IdentityNumber:    strings.TrimSpace(identityNumber),
		ClassLevel:        classLevel,
		Address:           strings.TrimSpace(address),
		DateOfBirth:       dateOfBirth,
		FatherPhone:       strings.TrimSpace(fatherPhone),
		MotherPhone:       strings.TrimSpace(motherPhone),
		Fee:               fee.Amount(),
	}, nil
}

// RecordPayment applies a payment against the outstanding balance.
// The payment carries a snapshot of the balance remaining after it was
// applied. Returns error if the amount is not positive or exceeds the
// current balance; the student is left unchanged on error.
func (s *Student) RecordPayment(amount valueobject.Money, comment, amountInWords string, paidAt time.Time) (*Payment, error) {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(s.Fee) {
		return nil, shared.NewDomainError("EXCEEDS_BALANCE", "Payment amount exceeds student's fee")
	}

	s.Fee = s.Fee.Sub(amount.Amount())

	payment := NewPayment(s.ID, amount, comment, amountInWords, s.Fee, paidAt)

	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return payment, nil
}

// AmendPayment corrects a previously recorded payment. The balance
// absorbs the difference between the new and old amount, validated the
// same way a fresh payment would be so the fee cannot go negative.
func (s *Student) AmendPayment(payment *Payment, newAmount valueobject.Money, newComment, newAmountInWords string) error {
	if payment == nil || payment.StudentID != s.ID {
		return shared.NewDomainError("NOT_FOUND", "Payment does not belong to this student")
	}
	if newAmount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	delta := newAmount.Amount().Sub(payment.Amount)
	if delta.GreaterThan(s.Fee) {
		return shared.NewDomainError("EXCEEDS_BALANCE", "Payment amount exceeds student's fee")
	}

	s.Fee = s.Fee.Sub(delta)
	payment.Amend(newAmount, newComment, newAmountInWords, s.Fee)

	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// ReversePayment undoes a recorded payment, restoring its amount to the
// outstanding balance. The caller is responsible for removing the
// payment itself in the same transaction.
func (s *Student) ReversePayment(payment *Payment) error {
	if payment == nil || payment.StudentID != s.ID {
		return shared.NewDomainError("NOT_FOUND", "Payment does not belong to this student")
	}

	s.Fee = s.Fee.Add(payment.Amount)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// UpdateProfile replaces the student's profile fields
func (s *Student) UpdateProfile(
	firstName string,
	secondName string,
	thirdName string,
	fourthName string,
	gender Gender,
	identityNumber string,
	classLevel ClassLevel,
	address string,
	dateOfBirth time.Time,
	fatherPhone string,
	motherPhone string,
) error {
	if strings.TrimSpace(firstName) == "" {
		return shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	if strings.TrimSpace(secondName) == "" {
		return shared.NewDomainError("INVALID_NAME", "Second name cannot be empty")
	}
	if !gender.IsValid() {
		return shared.NewDomainError("INVALID_GENDER", fmt.Sprintf("Gender %q is not valid", gender))
	}
	if strings.TrimSpace(identityNumber) == "" {
		return shared.NewDomainError("INVALID_IDENTITY_NUMBER", "Identity number cannot be empty")
	}
	if !classLevel.IsValid() {
		return shared.NewDomainError("INVALID_CLASS_LEVEL", fmt.Sprintf("Class level %q is not valid", classLevel))
	}
	if strings.TrimSpace(address) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot be empty")
	}

	s.FirstName = strings.TrimSpace(firstName)
	s.SecondName = strings.TrimSpace(secondName)
	s.ThirdName = strings.TrimSpace(thirdName)
	s.FourthName = strings.TrimSpace(fourthName)
	s.Gender = gender
	s.IdentityNumber = strings.TrimSpace(identityNumber)
	s.ClassLevel = classLevel
	s.Address = strings.TrimSpace(address)
	if !dateOfBirth.IsZero() {
		s.DateOfBirth = dateOfBirth
	}
	s.FatherPhone = strings.TrimSpace(fatherPhone)
	s.MotherPhone = strings.TrimSpace(motherPhone)

	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetFee replaces the outstanding balance directly (administrative correction)
func (s *Student) SetFee(fee valueobject.Money) error {
	if fee.IsNegative() {
		return shared.NewDomainError("INVALID_FEE", "Fee cannot be negative")
	}
	s.Fee = fee.Amount()
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Enroll assigns the student to an academic year, replacing any
// previous enrollment
func (s *Student) Enroll(yearID uuid.UUID) {
	s.AcademicYearID = &yearID
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Withdraw removes the student from their current academic year
func (s *Student) Withdraw() {
	s.AcademicYearID = nil
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// IsEnrolledIn returns true if the student belongs to the given year
func (s *Student) IsEnrolledIn(yearID uuid.UUID) bool {
	return s.AcademicYearID != nil && *s.AcademicYearID == yearID
}

// GetFeeMoney returns the outstanding balance as Money
func (s *Student) GetFeeMoney() valueobject.Money {
	return valueobject.NewMoneyEGP(s.Fee)
}

// FullName returns the student's name parts joined with spaces
func (s *Student) FullName() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{s.FirstName, s.SecondName, s.ThirdName, s.FourthName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
