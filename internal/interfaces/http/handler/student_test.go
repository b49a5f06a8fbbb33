package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appregistry "github.com/sanable/backend/internal/application/registry"
	"github.com/sanable/backend/internal/domain/academic"
	"github.com/sanable/backend/internal/domain/registry"
	"github.com/sanable/backend/internal/domain/shared"
	"github.com/sanable/backend/internal/domain/shared/valueobject"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockStudentRepository is a mock implementation of registry.StudentRepository
type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*registry.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]registry.Student, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]registry.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByIdentityNumber(ctx context.Context, identityNumber string) (*registry.Student, error) {
	args := m.Called(ctx, identityNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Student), args.Error(1)
}

func (m *MockStudentRepository) FindAll(ctx context.Context, filter registry.StudentFilter) ([]registry.Student, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]registry.Student), args.Error(1)
}

func (m *MockStudentRepository) Search(ctx context.Context, query string, filter shared.Filter) ([]registry.Student, error) {
	args := m.Called(ctx, query, filter)
	return args.Get(0).([]registry.Student), args.Error(1)
}

func (m *MockStudentRepository) CountSearch(ctx context.Context, query string) (int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStudentRepository) Save(ctx context.Context, student *registry.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) SaveWithLock(ctx context.Context, student *registry.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStudentRepository) Count(ctx context.Context, filter registry.StudentFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStudentRepository) ReassignYear(ctx context.Context, sourceYearID, targetYearID uuid.UUID, classLevel registry.ClassLevel) (int64, error) {
	args := m.Called(ctx, sourceYearID, targetYearID, classLevel)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStudentRepository) ClearYear(ctx context.Context, yearID uuid.UUID) error {
	args := m.Called(ctx, yearID)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of registry.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*registry.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]registry.Payment, error) {
	args := m.Called(ctx, studentID, filter)
	return args.Get(0).([]registry.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountByStudent(ctx context.Context, studentID uuid.UUID) (int64, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *registry.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAcademicYearRepository is a mock implementation of academic.AcademicYearRepository
type MockAcademicYearRepository struct {
	mock.Mock
}

func (m *MockAcademicYearRepository) FindByID(ctx context.Context, id uuid.UUID) (*academic.AcademicYear, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.AcademicYear), args.Error(1)
}

func (m *MockAcademicYearRepository) FindByYear(ctx context.Context, year int) (*academic.AcademicYear, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.AcademicYear), args.Error(1)
}

func (m *MockAcademicYearRepository) FindAll(ctx context.Context, filter shared.Filter) ([]academic.AcademicYear, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]academic.AcademicYear), args.Error(1)
}

func (m *MockAcademicYearRepository) Save(ctx context.Context, year *academic.AcademicYear) error {
	args := m.Called(ctx, year)
	return args.Error(0)
}

func (m *MockAcademicYearRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAcademicYearRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// fakeUnitOfWork runs the closure against the supplied repositories
// without transaction machinery
type fakeUnitOfWork struct {
	students registry.StudentRepository
	payments registry.PaymentRepository
}

func (u *fakeUnitOfWork) WithinTx(ctx context.Context, fn func(students registry.StudentRepository, payments registry.PaymentRepository) error) error {
	return fn(u.students, u.payments)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// =============================================================================
// Test helpers
// =============================================================================

type studentTestMocks struct {
	students    *MockStudentRepository
	payments    *MockPaymentRepository
	years       *MockAcademicYearRepository
	idempotency *MockIdempotencyStore
}

func setupStudentTestRouter() (*gin.Engine, *studentTestMocks, *StudentHandler) {
	gin.SetMode(gin.TestMode)

	mocks := &studentTestMocks{
		students:    new(MockStudentRepository),
		payments:    new(MockPaymentRepository),
		years:       new(MockAcademicYearRepository),
		idempotency: new(MockIdempotencyStore),
	}

	studentService := appregistry.NewStudentService(mocks.students, mocks.years)
	uow := &fakeUnitOfWork{students: mocks.students, payments: mocks.payments}
	ledgerService := appregistry.NewLedgerService(uow, mocks.students, mocks.payments, mocks.idempotency)
	handler := NewStudentHandler(studentService, ledgerService)

	router := gin.New()
	userID := uuid.New()
	router.Use(func(c *gin.Context) {
		setJWTContext(c, userID)
		c.Next()
	})

	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return router, mocks, handler
}

func newStudentFixture(t *testing.T, fee int64) *registry.Student {
	t.Helper()
	student, err := registry.NewStudent(
		"Ahmed", "Hassan", "Ali", "",
		registry.GenderMale,
		"29901011234567",
		registry.ClassLevelOrchard,
		"12 El Nasr St, Cairo",
		time.Date(2019, 5, 14, 0, 0, 0, 0, time.UTC),
		"01001234567", "01007654321",
		valueobject.NewMoneyEGP(decimal.NewFromInt(fee)),
	)
	require.NoError(t, err)
	return student
}

func newCreateStudentBody() map[string]any {
	return map[string]any{
		"first_name":      "Ahmed",
		"second_name":     "Hassan",
		"third_name":      "Ali",
		"gender":          "Male",
		"identity_number": "29901011234567",
		"class_level":     "Orchard",
		"address":         "12 El Nasr St, Cairo",
		"date_of_birth":   "2019-05-14T00:00:00Z",
		"father_phone":    "01001234567",
		"mother_phone":    "01007654321",
		"fee":             "5000",
	}
}

func performJSON(router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// =============================================================================
// Student CRUD
// =============================================================================

func TestStudentHandlerCreate(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		router, mocks, _ := setupStudentTestRouter()

		mocks.students.On("FindByIdentityNumber", mock.Anything, "29901011234567").Return(nil, nil)
		mocks.students.On("Save", mock.Anything, mock.AnythingOfType("*registry.Student")).Return(nil)

		w := performJSON(router, "POST", "/api/v1/students", newCreateStudentBody(), nil)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]any
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.True(t, response["success"].(bool))

		data := response["data"].(map[string]any)
		assert.Equal(t, "Ahmed Hassan Ali", data["full_name"])
		assert.Equal(t, "Orchard", data["class_level"])

		mocks.students.AssertExpectations(t)
	})

	t.Run("duplicate identity number", func(t *testing.T) {
		router, mocks, _ := setupStudentTestRouter()

		existing := newStudentFixture(t, 5000)
		mocks.students.On("FindByIdentityNumber", mock.Anything, "29901011234567").Return(existing, nil)

		w := performJSON(router, "POST", "/api/v1/students", newCreateStudentBody(), nil)

		assert.Equal(t, http.StatusConflict, w.Code)

		var response map[string]any
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.False(t, response["success"].(bool))

		mocks.students.AssertExpectations(t)
	})

	t.Run("missing required fields", func(t *testing.T) {
		router, _, _ := setupStudentTestRouter()

		body := newCreateStudentBody()
		delete(body, "first_name")

		w := performJSON(router, "POST", "/api/v1/students", body, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid gender rejected by binding", func(t *testing.T) {
		router, _, _ := setupStudentTestRouter()

		body := newCreateStudentBody()
		body["gender"] = "Other"

		w := performJSON(router, "POST", "/api/v1/students", body, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStudentHandlerGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		router, mocks, _ := setupStudentTestRouter()

		student := newStudentFixture(t, 5000)
		mocks.students.On("FindByID", mock.Anything, student.ID).Return(student, nil)

		w := performJSON(router, "GET", "/api/v1/students/"+student.ID.String(), nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.True(t, response["success"].(bool))

		data := response["data"].(map[string]any)
		assert.Equal(t, student.ID.String(), data["id"])

		mocks.students.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		router, mocks, _ := setupStudentTestRouter()

		id := uuid.New()
		mocks.students.On("FindByID", mock.Anything, id).Return(nil, nil)

		w := performJSON(router, "GET", "/api/v1/students/"+id.String(), nil, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		router, _, _ := setupStudentTestRouter()

		w := performJSON(router, "GET", "/api/v1/students/not-a-uuid", nil, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStudentHandlerList(t *testing.T) {
	router, mocks, _ := setupStudentTestRouter()

	students := []registry.Student{*newStudentFixture(t, 5000)}
	mocks.students.On("FindAll", mock.Anything, mock.AnythingOfType("registry.StudentFilter")).Return(students, nil)
	mocks.students.On("Count", mock.Anything, mock.AnythingOfType("registry.StudentFilter")).Return(int64(1), nil)

	w := performJSON(router, "GET", "/api/v1/students?page=1&per_page=20", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.True(t, response["success"].(bool))

	meta := response["meta"].(map[string]any)
	assert.Equal(t, float64(1), meta["total"])

	mocks.students.AssertExpectations(t)
}

func TestStudentHandlerListByClassLevel(t *testing.T) {
	router, mocks, _ := setupStudentTestRouter()

	matcher := mock.MatchedBy(func(f registry.StudentFilter) bool {
		return f.ClassLevel != nil && *f.ClassLevel == registry.ClassLevelOrchard
	})
	mocks.students.On("FindAll", mock.Anything, matcher).Return([]registry.Student{}, nil)
	mocks.students.On("Count", mock.Anything, matcher).Return(int64(0), nil)

	w := performJSON(router, "GET", "/api/v1/students/orchard", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	mocks.students.AssertExpectations(t)
}

func TestStudentHandlerSearch(t *testing.T) {
	t.Run("with query", func(t *testing.T) {
		router, mocks, _ := setupStudentTestRouter()

		students := []registry.Student{*newStudentFixture(t, 5000)}
		mocks.students.On("Search", mock.Anything, "Ahmed", mock.AnythingOfType("shared.Filter")).Return(students, nil)
		mocks.students.On("CountSearch", mock.Anything, "Ahmed").Return(int64(1), nil)

		w := performJSON(router, "GET", "/api/v1/students/search/students?query=Ahmed", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		mocks.students.AssertExpectations(t)
	})

	t.Run("missing query", func(t *testing.T) {
		router, _, _ := setupStudentTestRouter()

		w := performJSON(router, "GET", "/api/v1/students/search/students", nil, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStudentHandlerUpdate(t *testing.T) {
	t.Run("successful update", func(t *testing.T) {
		router, mocks, _ := setupStudentTestRouter()

		student := newStudentFixture(t, 5000)
		mocks.students.On("FindByID", mock.Anything, student.ID).Return(student, nil)
		mocks.students.On("SaveWithLock", mock.Anything, student).Return(nil)

		body := map[string]any{"address": "45 Tahrir Sq, Giza"}
		w := performJSON(router, "PUT", "/api/v1/students/"+student.ID.String(), body, nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		data := response["data"].(map[string]any)
		assert.Equal(t, "45 Tahrir Sq, Giza", data["address"])

		mocks.students.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		router, mocks, _ := setupStudentTestRouter()

		id := uuid.New()
		mocks.students.On("FindByID", mock.Anything, id).Return(nil, nil)

		body := map[string]any{"address": "45 Tahrir Sq, Giza"}
		w := performJSON(router, "PUT", "/api/v1/students/"+id.String(), body, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStudentHandlerDelete(t *testing.T) {
	router, mocks, _ := setupStudentTestRouter()

	student := newStudentFixture(t, 5000)
	mocks.students.On("FindByID", mock.Anything, student.ID).Return(student, nil)
	mocks.students.On("Delete", mock.Anything, student.ID).Return(nil)

	w := performJSON(router, "DELETE", "/api/v1/students/"+student.ID.String(), nil, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mocks.students.AssertExpectations(t)
}

// =============================================================================
// Payments
// =============================================================================

func TestStudentHandlerRecordPayment(t *testing.T) {
	t.Run("successful payment", func(t *testing.T) {
		router, mocks, _ := setupStudentTestRouter()

		student := newStudentFixture(t, 5000)
		mocks.students.On("FindByID", mock.Anything, student.ID).Return(student, nil)
		mocks.students.On("SaveWithLock", mock.Anything, student).Return(nil)
		mocks.payments.On("Save", mock.Anything, mock.AnythingOfType("*registry.Payment")).Return(nil)

		body := map[string]any{
			"amount":          "1500",
			"comment":         "First installment",
			"amount_in_words": "One thousand five hundred pounds",
		}
		w := performJSON(router, "POST", fmt.Sprintf("/api/v1/students/%s/payments", student.ID), body, nil)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]any
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.True(t, response["success"].(bool))

		data := response["data"].(map[string]any)
		assert.Equal(t, "3500", data["remaining_amount"])

		mocks.students.AssertExpectations(t)
		mocks.payments.AssertExpectations(t)
	})

	t.Run("idempotency key blocks replay", func(t *testing.T) {
		router, mocks, _ := setupStudentTestRouter()

		mocks.idempotency.On("MarkProcessed", mock.Anything, "pay-abc-123", mock.AnythingOfType("time.Duration")).Return(false, nil)

		body := map[string]any{"amount": "1500"}
		headers := map[string]string{"Idempotency-Key": "pay-abc-123"}
		w := performJSON(router, "POST", fmt.Sprintf("/api/v1/students/%s/payments", uuid.New()), body, headers)

		assert.Equal(t, http.StatusConflict, w.Code)

		var response map[string]any
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.False(t, response["success"].(bool))

		mocks.idempotency.AssertExpectations(t)
		mocks.students.AssertNotCalled(t, "FindByID")
	})

	t.Run("amount exceeding balance", func(t *testing.T) {
		router, mocks, _ := setupStudentTestRouter()

		student := newStudentFixture(t, 1000)
		mocks.students.On("FindByID", mock.Anything, student.ID).Return(student, nil)

		body := map[string]any{"amount": "2000"}
		w := performJSON(router, "POST", fmt.Sprintf("/api/v1/students/%s/payments", student.ID), body, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]any
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		errObj := response["error"].(map[string]any)
		assert.Equal(t, "ERR_EXCEEDS_BALANCE", errObj["code"])
	})

	t.Run("student not found", func(t *testing.T) {
		router, mocks, _ := setupStudentTestRouter()

		id := uuid.New()
		mocks.students.On("FindByID", mock.Anything, id).Return(nil, nil)

		body := map[string]any{"amount": "1500"}
		w := performJSON(router, "POST", fmt.Sprintf("/api/v1/students/%s/payments", id), body, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStudentHandlerListPayments(t *testing.T) {
	router, mocks, _ := setupStudentTestRouter()

	student := newStudentFixture(t, 5000)
	payment, err := student.RecordPayment(valueobject.NewMoneyEGP(decimal.NewFromInt(1200)), "", "", time.Time{})
	require.NoError(t, err)

	mocks.students.On("FindByID", mock.Anything, student.ID).Return(student, nil)
	mocks.payments.On("FindByStudent", mock.Anything, student.ID, mock.AnythingOfType("shared.Filter")).Return([]registry.Payment{*payment}, nil)
	mocks.payments.On("CountByStudent", mock.Anything, student.ID).Return(int64(1), nil)

	w := performJSON(router, "GET", fmt.Sprintf("/api/v1/students/%s/payments", student.ID), nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	meta := response["meta"].(map[string]any)
	assert.Equal(t, float64(1), meta["total"])

	mocks.payments.AssertExpectations(t)
}

func TestStudentHandlerGetPayment(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		router, mocks, _ := setupStudentTestRouter()

		student := newStudentFixture(t, 5000)
		payment, err := student.RecordPayment(valueobject.NewMoneyEGP(decimal.NewFromInt(1200)), "", "", time.Time{})
		require.NoError(t, err)

		mocks.payments.On("FindByID", mock.Anything, payment.ID).Return(payment, nil)

		w := performJSON(router, "GET", fmt.Sprintf("/api/v1/students/%s/payments/%s", student.ID, payment.ID), nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		mocks.payments.AssertExpectations(t)
	})

	t.Run("payment belongs to another student", func(t *testing.T) {
		router, mocks, _ := setupStudentTestRouter()

		student := newStudentFixture(t, 5000)
		payment, err := student.RecordPayment(valueobject.NewMoneyEGP(decimal.NewFromInt(1200)), "", "", time.Time{})
		require.NoError(t, err)

		mocks.payments.On("FindByID", mock.Anything, payment.ID).Return(payment, nil)

		w := performJSON(router, "GET", fmt.Sprintf("/api/v1/students/%s/payments/%s", uuid.New(), payment.ID), nil, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStudentHandlerAmendPayment(t *testing.T) {
	router, mocks, _ := setupStudentTestRouter()

	student := newStudentFixture(t, 5000)
	payment, err := student.RecordPayment(valueobject.NewMoneyEGP(decimal.NewFromInt(1200)), "", "", time.Time{})
	require.NoError(t, err)

	mocks.students.On("FindByID", mock.Anything, student.ID).Return(student, nil)
	mocks.payments.On("FindByID", mock.Anything, payment.ID).Return(payment, nil)
	mocks.students.On("SaveWithLock", mock.Anything, student).Return(nil)
	mocks.payments.On("Save", mock.Anything, payment).Return(nil)

	body := map[string]any{"amount": "1800", "comment": "Corrected amount"}
	w := performJSON(router, "PUT", fmt.Sprintf("/api/v1/students/%s/payments/%s", student.ID, payment.ID), body, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	data := response["data"].(map[string]any)
	assert.Equal(t, "3200", data["remaining_amount"])

	mocks.students.AssertExpectations(t)
	mocks.payments.AssertExpectations(t)
}

func TestStudentHandlerReversePayment(t *testing.T) {
	router, mocks, _ := setupStudentTestRouter()

	student := newStudentFixture(t, 5000)
	payment, err := student.RecordPayment(valueobject.NewMoneyEGP(decimal.NewFromInt(1200)), "", "", time.Time{})
	require.NoError(t, err)

	mocks.students.On("FindByID", mock.Anything, student.ID).Return(student, nil)
	mocks.payments.On("FindByID", mock.Anything, payment.ID).Return(payment, nil)
	mocks.students.On("SaveWithLock", mock.Anything, student).Return(nil)
	mocks.payments.On("Delete", mock.Anything, payment.ID).Return(nil)

	w := performJSON(router, "DELETE", fmt.Sprintf("/api/v1/students/%s/payments/%s", student.ID, payment.ID), nil, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)

	mocks.students.AssertExpectations(t)
	mocks.payments.AssertExpectations(t)
}
