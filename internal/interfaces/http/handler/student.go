package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appregistry "github.com/sanable/backend/internal/application/registry"
	"github.com/sanable/backend/internal/domain/registry"
	"github.com/sanable/backend/internal/interfaces/http/dto"
)

// StudentHandler handles student record and tuition payment HTTP requests
type StudentHandler struct {
	BaseHandler
	studentService *appregistry.StudentService
	ledgerService  *appregistry.LedgerService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(studentService *appregistry.StudentService, ledgerService *appregistry.LedgerService) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
		ledgerService:  ledgerService,
	}
}

// Create godoc
// @Summary      Create student
// @Description  Register a new student record
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        request body registry.CreateStudentRequest true "Student details"
// @Success      201 {object} dto.Response{data=registry.StudentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req appregistry.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, student)
}

// List godoc
// @Summary      List students
// @Description  List students with optional class level, gender and search filters
// @Tags         students
// @Produce      json
// @Param        class_level query string false "Class level filter"
// @Param        gender query string false "Gender filter"
// @Param        search query string false "Name or identity number search"
// @Param        page query int false "Page number"
// @Param        per_page query int false "Page size"
// @Success      200 {object} dto.Response{data=[]registry.StudentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	var filter appregistry.StudentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.studentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get godoc
// @Summary      Get student
// @Description  Get a single student by ID
// @Tags         students
// @Produce      json
// @Param        id path string true "Student ID"
// @Success      200 {object} dto.Response{data=registry.StudentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, student)
}

// Update godoc
// @Summary      Update student
// @Description  Update a student record. Only the provided fields change.
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        id path string true "Student ID"
// @Param        request body registry.UpdateStudentRequest true "Fields to update"
// @Success      200 {object} dto.Response{data=registry.StudentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	var req appregistry.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, student)
}

// Delete godoc
// @Summary      Delete student
// @Description  Delete a student record and its payment history
// @Tags         students
// @Produce      json
// @Param        id path string true "Student ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListOrchard godoc
// @Summary      List orchard students
// @Tags         students
// @Produce      json
// @Param        page query int false "Page number"
// @Param        per_page query int false "Page size"
// @Success      200 {object} dto.Response{data=[]registry.StudentResponse}
// @Security     BearerAuth
// @Router       /students/orchard [get]
func (h *StudentHandler) ListOrchard(c *gin.Context) {
	h.listByClassLevel(c, registry.ClassLevelOrchard)
}

// ListIntroductory godoc
// @Summary      List introductory students
// @Tags         students
// @Produce      json
// @Param        page query int false "Page number"
// @Param        per_page query int false "Page size"
// @Success      200 {object} dto.Response{data=[]registry.StudentResponse}
// @Security     BearerAuth
// @Router       /students/introductory [get]
func (h *StudentHandler) ListIntroductory(c *gin.Context) {
	h.listByClassLevel(c, registry.ClassLevelIntroductory)
}

func (h *StudentHandler) listByClassLevel(c *gin.Context, classLevel registry.ClassLevel) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.studentService.ListByClassLevel(c.Request.Context(), classLevel, req.Page, req.PerPage)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Search godoc
// @Summary      Search students
// @Description  Search students by name or identity number
// @Tags         students
// @Produce      json
// @Param        query query string true "Search text"
// @Param        page query int false "Page number"
// @Param        per_page query int false "Page size"
// @Success      200 {object} dto.Response{data=[]registry.StudentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /students/search/students [get]
func (h *StudentHandler) Search(c *gin.Context) {
	var req struct {
		Query   string `form:"query" binding:"required"`
		Page    int    `form:"page" binding:"omitempty,min=1"`
		PerPage int    `form:"per_page" binding:"omitempty,min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Search query is required")
		return
	}

	result, err := h.studentService.Search(c.Request.Context(), req.Query, req.Page, req.PerPage)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// RecordPayment godoc
// @Summary      Record tuition payment
// @Description  Record a payment against a student's outstanding balance.
// @Description  An Idempotency-Key header guards against duplicate submission.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Student ID"
// @Param        Idempotency-Key header string false "Duplicate submission guard"
// @Param        request body registry.RecordPaymentRequest true "Payment details"
// @Success      201 {object} dto.Response{data=registry.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /students/{id}/payments [post]
func (h *StudentHandler) RecordPayment(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	var req appregistry.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader("Idempotency-Key")

	payment, err := h.ledgerService.RecordPayment(c.Request.Context(), studentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, payment)
}

// ListPayments godoc
// @Summary      List payments
// @Description  List a student's payments, newest first
// @Tags         payments
// @Produce      json
// @Param        id path string true "Student ID"
// @Param        page query int false "Page number"
// @Param        per_page query int false "Page size"
// @Success      200 {object} dto.Response{data=[]registry.PaymentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /students/{id}/payments [get]
func (h *StudentHandler) ListPayments(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.ledgerService.ListPayments(c.Request.Context(), studentID, req.Page, req.PerPage)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetPayment godoc
// @Summary      Get payment
// @Tags         payments
// @Produce      json
// @Param        id path string true "Student ID"
// @Param        paymentId path string true "Payment ID"
// @Success      200 {object} dto.Response{data=registry.PaymentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /students/{id}/payments/{paymentId} [get]
func (h *StudentHandler) GetPayment(c *gin.Context) {
	studentID, paymentID, ok := h.paymentIDs(c)
	if !ok {
		return
	}

	payment, err := h.ledgerService.GetPayment(c.Request.Context(), studentID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// AmendPayment godoc
// @Summary      Amend payment
// @Description  Correct a recorded payment. The amount delta is applied to the balance.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Student ID"
// @Param        paymentId path string true "Payment ID"
// @Param        request body registry.AmendPaymentRequest true "Corrected payment"
// @Success      200 {object} dto.Response{data=registry.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /students/{id}/payments/{paymentId} [put]
func (h *StudentHandler) AmendPayment(c *gin.Context) {
	studentID, paymentID, ok := h.paymentIDs(c)
	if !ok {
		return
	}

	var req appregistry.AmendPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	payment, err := h.ledgerService.AmendPayment(c.Request.Context(), studentID, paymentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// ReversePayment godoc
// @Summary      Reverse payment
// @Description  Undo a recorded payment and restore the student's balance
// @Tags         payments
// @Produce      json
// @Param        id path string true "Student ID"
// @Param        paymentId path string true "Payment ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /students/{id}/payments/{paymentId} [delete]
func (h *StudentHandler) ReversePayment(c *gin.Context) {
	studentID, paymentID, ok := h.paymentIDs(c)
	if !ok {
		return
	}

	if err := h.ledgerService.ReversePayment(c.Request.Context(), studentID, paymentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *StudentHandler) paymentIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return uuid.Nil, uuid.Nil, false
	}

	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return uuid.Nil, uuid.Nil, false
	}

	return studentID, paymentID, true
}

// RegisterRoutes registers student and payment routes on the given router group
func (h *StudentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	students := rg.Group("/students")
	{
		students.POST("", h.Create)
		students.GET("", h.List)
		students.GET("/orchard", h.ListOrchard)
		students.GET("/introductory", h.ListIntroductory)
		students.GET("/search/students", h.Search)

		students.GET("/:id", h.Get)
		students.PUT("/:id", h.Update)
		students.DELETE("/:id", h.Delete)

		students.POST("/:id/payments", h.RecordPayment)
		students.GET("/:id/payments", h.ListPayments)
		students.GET("/:id/payments/:paymentId", h.GetPayment)
		students.PUT("/:id/payments/:paymentId", h.AmendPayment)
		students.DELETE("/:id/payments/:paymentId", h.ReversePayment)
	}
}
