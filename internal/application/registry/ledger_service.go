package registry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sanable/backend/internal/domain/registry"
	"github.com/sanable/backend/internal/domain/shared"
	"github.com/sanable/backend/internal/domain/shared/valueobject"
)

// idempotencyTTL is how long a payment request key blocks replays
const idempotencyTTL = 24 * time.Hour

// LedgerService handles tuition payment bookkeeping. Every mutation runs
// the student balance update and the payment row change in one
// transaction, with the student saved under an optimistic version check.
type LedgerService struct {
	uow         registry.UnitOfWork
	studentRepo registry.StudentRepository
	paymentRepo registry.PaymentRepository
	idempotency shared.IdempotencyStore
}

// NewLedgerService creates a new LedgerService. The idempotency store is
// optional; pass nil to disable request deduplication.
func NewLedgerService(
	uow registry.UnitOfWork,
	studentRepo registry.StudentRepository,
	paymentRepo registry.PaymentRepository,
	idempotency shared.IdempotencyStore,
) *LedgerService {
	return &LedgerService{
		uow:         uow,
		studentRepo: studentRepo,
		paymentRepo: paymentRepo,
		idempotency: idempotency,
	}
}

// RecordPayment applies a payment against a student's outstanding balance
func (s *LedgerService) RecordPayment(ctx context.Context, studentID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	if req.IdempotencyKey != "" && s.idempotency != nil {
		fresh, err := s.idempotency.MarkProcessed(ctx, req.IdempotencyKey, idempotencyTTL)
		if err != nil {
			return nil, err
		}
		if !fresh {
			return nil, shared.NewDomainError("DUPLICATE_REQUEST", "This payment was already submitted")
		}
	}

	paidAt := time.Time{}
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	var payment *registry.Payment
	err := s.uow.WithinTx(ctx, func(students registry.StudentRepository, payments registry.PaymentRepository) error {
		student, err := students.FindByID(ctx, studentID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if student == nil {
			return shared.NewDomainError("NOT_FOUND", "Student not found")
		}

		payment, err = student.RecordPayment(valueobject.NewMoneyEGP(req.Amount), req.Comment, req.AmountInWords, paidAt)
		if err != nil {
			return err
		}

		if err := students.SaveWithLock(ctx, student); err != nil {
			return err
		}
		return payments.Save(ctx, payment)
	})
	if err != nil {
		// A rejected payment must not burn the key, or the caller's
		// retry would come back as a duplicate.
		if req.IdempotencyKey != "" && s.idempotency != nil {
			_ = s.idempotency.Release(ctx, req.IdempotencyKey)
		}
		return nil, err
	}

	response := ToPaymentResponse(payment)
	return &response, nil
}

// AmendPayment corrects a recorded payment, applying the amount delta to
// the student's balance with the same guards as a fresh payment
func (s *LedgerService) AmendPayment(ctx context.Context, studentID, paymentID uuid.UUID, req AmendPaymentRequest) (*PaymentResponse, error) {
	var payment *registry.Payment
	err := s.uow.WithinTx(ctx, func(students registry.StudentRepository, payments registry.PaymentRepository) error {
		student, err := students.FindByID(ctx, studentID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if student == nil {
			return shared.NewDomainError("NOT_FOUND", "Student not found")
		}

		payment, err = payments.FindByID(ctx, paymentID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if payment == nil || payment.StudentID != studentID {
			return shared.NewDomainError("NOT_FOUND", "Payment not found")
		}

		if err := student.AmendPayment(payment, valueobject.NewMoneyEGP(req.Amount), req.Comment, req.AmountInWords); err != nil {
			return err
		}

		if err := students.SaveWithLock(ctx, student); err != nil {
			return err
		}
		return payments.Save(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	response := ToPaymentResponse(payment)
	return &response, nil
}

// ReversePayment undoes a recorded payment: the amount returns to the
// student's balance and the payment row is removed
func (s *LedgerService) ReversePayment(ctx context.Context, studentID, paymentID uuid.UUID) error {
	return s.uow.WithinTx(ctx, func(students registry.StudentRepository, payments registry.PaymentRepository) error {
		student, err := students.FindByID(ctx, studentID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if student == nil {
			return shared.NewDomainError("NOT_FOUND", "Student not found")
		}

		payment, err := payments.FindByID(ctx, paymentID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if payment == nil || payment.StudentID != studentID {
			return shared.NewDomainError("NOT_FOUND", "Payment not found")
		}

		if err := student.ReversePayment(payment); err != nil {
			return err
		}

		if err := students.SaveWithLock(ctx, student); err != nil {
			return err
		}
		return payments.Delete(ctx, payment.ID)
	})
}

// GetPayment retrieves a single payment belonging to a student
func (s *LedgerService) GetPayment(ctx context.Context, studentID, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if payment == nil || payment.StudentID != studentID {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment not found")
	}

	response := ToPaymentResponse(payment)
	return &response, nil
}

// ListPayments retrieves a student's payments, newest first, paginated
func (s *LedgerService) ListPayments(ctx context.Context, studentID uuid.UUID, page, perPage int) (*shared.Paginated[PaymentResponse], error) {
	student, err := s.studentRepo.FindByID(ctx, studentID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if student == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Student not found")
	}

	filter := shared.Filter{Page: page, PageSize: perPage}
	filter.Normalize()

	payments, err := s.paymentRepo.FindByStudent(ctx, studentID, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.paymentRepo.CountByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToPaymentResponses(payments), total, filter.Page, filter.PageSize)
	return &result, nil
}
