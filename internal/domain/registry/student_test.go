package registry

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanable/backend/internal/domain/shared"
	"github.com/sanable/backend/internal/domain/shared/valueobject"
)

func createTestStudent(t *testing.T, fee float64) *Student {
	t.Helper()
	s, err := NewStudent(
		"Ahmed", "Mohamed", "Ali", "Hassan",
		GenderMale,
		"29805120101234",
		ClassLevelOrchard,
		"12 El Nasr St, Cairo",
		time.Date(2019, 5, 12, 0, 0, 0, 0, time.UTC),
		"+201001234567",
		"+201007654321",
		valueobject.NewMoneyEGPFromFloat(fee),
	)
	require.NoError(t, err)
	return s
}

func TestNewStudent(t *testing.T) {
	t.Run("creates student with valid data", func(t *testing.T) {
		s := createTestStudent(t, 500)
		assert.NotEqual(t, uuid.Nil, s.ID)
		assert.Equal(t, "Ahmed", s.FirstName)
		assert.Equal(t, ClassLevelOrchard, s.ClassLevel)
		assert.True(t, s.Fee.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, 1, s.Version)
		assert.Nil(t, s.AcademicYearID)
	})

	t.Run("fails with empty first name", func(t *testing.T) {
		_, err := NewStudent("", "Mohamed", "", "", GenderMale, "123", ClassLevelOrchard,
			"Cairo", time.Now(), "", "", valueobject.ZeroEGP())
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_NAME", domainErr.Code)
	})

	t.Run("fails with invalid gender", func(t *testing.T) {
		_, err := NewStudent("Ahmed", "Mohamed", "", "", Gender("Other"), "123", ClassLevelOrchard,
			"Cairo", time.Now(), "", "", valueobject.ZeroEGP())
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_GENDER", domainErr.Code)
	})

	t.Run("fails with invalid class level", func(t *testing.T) {
		_, err := NewStudent("Ahmed", "Mohamed", "", "", GenderMale, "123", ClassLevel("Senior"),
			"Cairo", time.Now(), "", "", valueobject.ZeroEGP())
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CLASS_LEVEL", domainErr.Code)
	})

	t.Run("fails with negative fee", func(t *testing.T) {
		_, err := NewStudent("Ahmed", "Mohamed", "", "", GenderMale, "123", ClassLevelOrchard,
			"Cairo", time.Now(), "", "", valueobject.NewMoneyEGPFromFloat(-1))
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_FEE", domainErr.Code)
	})

	t.Run("zero fee is allowed", func(t *testing.T) {
		s := createTestStudent(t, 0)
		assert.True(t, s.Fee.IsZero())
	})
}

func TestStudentRecordPayment(t *testing.T) {
	t.Run("reduces fee and snapshots remaining balance", func(t *testing.T) {
		s := createTestStudent(t, 500)

		p, err := s.RecordPayment(valueobject.NewMoneyEGPFromFloat(300), "first installment", "three hundred", time.Time{})
		require.NoError(t, err)

		assert.True(t, s.Fee.Equal(decimal.NewFromInt(200)))
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(300)))
		assert.True(t, p.RemainingAmount.Equal(decimal.NewFromInt(200)))
		assert.Equal(t, s.ID, p.StudentID)
		assert.Equal(t, "first installment", p.Comment)
		assert.False(t, p.PaidAt.IsZero())
		assert.Equal(t, 2, s.Version)
	})

	t.Run("rejects payment exceeding balance and leaves state unchanged", func(t *testing.T) {
		s := createTestStudent(t, 500)
		_, err := s.RecordPayment(valueobject.NewMoneyEGPFromFloat(300), "", "", time.Time{})
		require.NoError(t, err)

		_, err = s.RecordPayment(valueobject.NewMoneyEGPFromFloat(250), "", "", time.Time{})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EXCEEDS_BALANCE", domainErr.Code)
		assert.True(t, s.Fee.Equal(decimal.NewFromInt(200)))
	})

	t.Run("balance can be paid down to exactly zero", func(t *testing.T) {
		s := createTestStudent(t, 500)
		_, err := s.RecordPayment(valueobject.NewMoneyEGPFromFloat(300), "", "", time.Time{})
		require.NoError(t, err)
		_, err = s.RecordPayment(valueobject.NewMoneyEGPFromFloat(200), "", "", time.Time{})
		require.NoError(t, err)
		assert.True(t, s.Fee.IsZero())
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		s := createTestStudent(t, 500)
		_, err := s.RecordPayment(valueobject.ZeroEGP(), "", "", time.Time{})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
		assert.True(t, s.Fee.Equal(decimal.NewFromInt(500)))
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		s := createTestStudent(t, 500)
		_, err := s.RecordPayment(valueobject.NewMoneyEGPFromFloat(-50), "", "", time.Time{})
		require.Error(t, err)
	})

	t.Run("any positive amount exceeds a zero balance", func(t *testing.T) {
		s := createTestStudent(t, 0)
		_, err := s.RecordPayment(valueobject.NewMoneyEGPFromFloat(1), "", "", time.Time{})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EXCEEDS_BALANCE", domainErr.Code)
	})

	t.Run("uses provided paid-at timestamp", func(t *testing.T) {
		s := createTestStudent(t, 500)
		paidAt := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
		p, err := s.RecordPayment(valueobject.NewMoneyEGPFromFloat(100), "", "", paidAt)
		require.NoError(t, err)
		assert.Equal(t, paidAt, p.PaidAt)
	})
}

func TestStudentAmendPayment(t *testing.T) {
	t.Run("amending up absorbs the difference", func(t *testing.T) {
		s := createTestStudent(t, 500)
		p, err := s.RecordPayment(valueobject.NewMoneyEGPFromFloat(100), "", "", time.Time{})
		require.NoError(t, err)

		err = s.AmendPayment(p, valueobject.NewMoneyEGPFromFloat(150), "corrected", "")
		require.NoError(t, err)

		assert.True(t, s.Fee.Equal(decimal.NewFromInt(350)))
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(150)))
		assert.True(t, p.RemainingAmount.Equal(decimal.NewFromInt(350)))
		assert.Equal(t, "corrected", p.Comment)
	})

	t.Run("amending down restores the difference", func(t *testing.T) {
		s := createTestStudent(t, 500)
		p, err := s.RecordPayment(valueobject.NewMoneyEGPFromFloat(300), "", "", time.Time{})
		require.NoError(t, err)

		err = s.AmendPayment(p, valueobject.NewMoneyEGPFromFloat(200), "", "")
		require.NoError(t, err)
		assert.True(t, s.Fee.Equal(decimal.NewFromInt(300)))
	})

	t.Run("amend round trip leaves fee unchanged", func(t *testing.T) {
		s := createTestStudent(t, 500)
		p, err := s.RecordPayment(valueobject.NewMoneyEGPFromFloat(200), "", "", time.Time{})
		require.NoError(t, err)

		require.NoError(t, s.AmendPayment(p, valueobject.NewMoneyEGPFromFloat(350), "", ""))
		require.NoError(t, s.AmendPayment(p, valueobject.NewMoneyEGPFromFloat(200), "", ""))
		assert.True(t, s.Fee.Equal(decimal.NewFromInt(300)))
	})

	t.Run("rejects increase that would push fee negative", func(t *testing.T) {
		s := createTestStudent(t, 500)
		p, err := s.RecordPayment(valueobject.NewMoneyEGPFromFloat(400), "", "", time.Time{})
		require.NoError(t, err)

		err = s.AmendPayment(p, valueobject.NewMoneyEGPFromFloat(550), "", "")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EXCEEDS_BALANCE", domainErr.Code)
		assert.True(t, s.Fee.Equal(decimal.NewFromInt(100)))
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(400)))
	})

	t.Run("rejects non-positive new amount", func(t *testing.T) {
		s := createTestStudent(t, 500)
		p, err := s.RecordPayment(valueobject.NewMoneyEGPFromFloat(100), "", "", time.Time{})
		require.NoError(t, err)

		err = s.AmendPayment(p, valueobject.ZeroEGP(), "", "")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	})

	t.Run("rejects payment of another student", func(t *testing.T) {
		s := createTestStudent(t, 500)
		other := createTestStudent(t, 500)
		p, err := other.RecordPayment(valueobject.NewMoneyEGPFromFloat(100), "", "", time.Time{})
		require.NoError(t, err)

		err = s.AmendPayment(p, valueobject.NewMoneyEGPFromFloat(50), "", "")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestStudentReversePayment(t *testing.T) {
	t.Run("restores the paid amount", func(t *testing.T) {
		s := createTestStudent(t, 500)
		p, err := s.RecordPayment(valueobject.NewMoneyEGPFromFloat(300), "", "", time.Time{})
		require.NoError(t, err)

		require.NoError(t, s.ReversePayment(p))
		assert.True(t, s.Fee.Equal(decimal.NewFromInt(500)))
	})

	t.Run("rejects payment of another student", func(t *testing.T) {
		s := createTestStudent(t, 500)
		other := createTestStudent(t, 500)
		p, err := other.RecordPayment(valueobject.NewMoneyEGPFromFloat(100), "", "", time.Time{})
		require.NoError(t, err)

		err = s.ReversePayment(p)
		require.Error(t, err)
	})
}

func TestStudentEnrollment(t *testing.T) {
	t.Run("enroll assigns the year", func(t *testing.T) {
		s := createTestStudent(t, 0)
		yearID := uuid.New()

		s.Enroll(yearID)
		require.NotNil(t, s.AcademicYearID)
		assert.Equal(t, yearID, *s.AcademicYearID)
		assert.True(t, s.IsEnrolledIn(yearID))
	})

	t.Run("enroll replaces a previous year", func(t *testing.T) {
		s := createTestStudent(t, 0)
		oldYear := uuid.New()
		newYear := uuid.New()

		s.Enroll(oldYear)
		s.Enroll(newYear)
		assert.False(t, s.IsEnrolledIn(oldYear))
		assert.True(t, s.IsEnrolledIn(newYear))
	})

	t.Run("withdraw clears the year", func(t *testing.T) {
		s := createTestStudent(t, 0)
		s.Enroll(uuid.New())
		s.Withdraw()
		assert.Nil(t, s.AcademicYearID)
	})
}

func TestStudentUpdateProfile(t *testing.T) {
	s := createTestStudent(t, 500)

	err := s.UpdateProfile("Sara", "Ibrahim", "", "", GenderFemale, "30001010101234",
		ClassLevelIntroductory, "5 Tahrir Sq, Giza", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		"+20100000001", "+20100000002")
	require.NoError(t, err)

	assert.Equal(t, "Sara", s.FirstName)
	assert.Equal(t, GenderFemale, s.Gender)
	assert.Equal(t, ClassLevelIntroductory, s.ClassLevel)
	assert.True(t, s.Fee.Equal(decimal.NewFromInt(500)), "profile update must not touch the balance")
}

func TestStudentFullName(t *testing.T) {
	s := createTestStudent(t, 0)
	assert.Equal(t, "Ahmed Mohamed Ali Hassan", s.FullName())

	s.ThirdName = ""
	s.FourthName = ""
	assert.Equal(t, "Ahmed Mohamed", s.FullName())
}

func TestGenderAndClassLevelValidation(t *testing.T) {
	assert.True(t, GenderMale.IsValid())
	assert.True(t, GenderFemale.IsValid())
	assert.False(t, Gender("").IsValid())

	assert.True(t, ClassLevelOrchard.IsValid())
	assert.True(t, ClassLevelIntroductory.IsValid())
	assert.False(t, ClassLevel("Orchard level").IsValid())
}
