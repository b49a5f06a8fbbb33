package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appacademic "github.com/sanable/backend/internal/application/academic"
	"github.com/sanable/backend/internal/domain/registry"
	"github.com/sanable/backend/internal/interfaces/http/dto"
)

// AcademicYearHandler handles academic year and roster HTTP requests
type AcademicYearHandler struct {
	BaseHandler
	rosterService *appacademic.RosterService
}

// NewAcademicYearHandler creates a new academic year handler
func NewAcademicYearHandler(rosterService *appacademic.RosterService) *AcademicYearHandler {
	return &AcademicYearHandler{
		rosterService: rosterService,
	}
}

// Create godoc
// @Summary      Create academic year
// @Tags         academic-years
// @Accept       json
// @Produce      json
// @Param        request body academic.CreateAcademicYearRequest true "Academic year details"
// @Success      201 {object} dto.Response{data=academic.AcademicYearResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /academic-years [post]
func (h *AcademicYearHandler) Create(c *gin.Context) {
	var req appacademic.CreateAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	year, err := h.rosterService.CreateYear(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, year)
}

// List godoc
// @Summary      List academic years
// @Tags         academic-years
// @Produce      json
// @Param        page query int false "Page number"
// @Param        per_page query int false "Page size"
// @Success      200 {object} dto.Response{data=[]academic.AcademicYearResponse}
// @Security     BearerAuth
// @Router       /academic-years [get]
func (h *AcademicYearHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.rosterService.ListYears(c.Request.Context(), req.Page, req.PerPage)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get godoc
// @Summary      Get academic year
// @Tags         academic-years
// @Produce      json
// @Param        id path string true "Academic year ID"
// @Success      200 {object} dto.Response{data=academic.AcademicYearResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /academic-years/{id} [get]
func (h *AcademicYearHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid academic year ID")
		return
	}

	year, err := h.rosterService.GetYear(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, year)
}

// Update godoc
// @Summary      Update academic year
// @Tags         academic-years
// @Accept       json
// @Produce      json
// @Param        id path string true "Academic year ID"
// @Param        request body academic.UpdateAcademicYearRequest true "Fields to update"
// @Success      200 {object} dto.Response{data=academic.AcademicYearResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /academic-years/{id} [put]
func (h *AcademicYearHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid academic year ID")
		return
	}

	var req appacademic.UpdateAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	year, err := h.rosterService.UpdateYear(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, year)
}

// Delete godoc
// @Summary      Delete academic year
// @Description  Delete an academic year. Enrolled students are detached, not deleted.
// @Tags         academic-years
// @Produce      json
// @Param        id path string true "Academic year ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /academic-years/{id} [delete]
func (h *AcademicYearHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid academic year ID")
		return
	}

	if err := h.rosterService.DeleteYear(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AddStudents godoc
// @Summary      Add students to a year
// @Description  Enroll students in the year. Students that cannot be added are
// @Description  reported as skipped without failing the request.
// @Tags         academic-years
// @Accept       json
// @Produce      json
// @Param        id path string true "Academic year ID"
// @Param        request body academic.ModifyRosterRequest true "Student IDs"
// @Success      200 {object} dto.Response{data=academic.RosterChangeResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /academic-years/{id}/add-students [post]
func (h *AcademicYearHandler) AddStudents(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid academic year ID")
		return
	}

	var req appacademic.ModifyRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.rosterService.AddStudents(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RemoveStudents godoc
// @Summary      Remove students from a year
// @Tags         academic-years
// @Accept       json
// @Produce      json
// @Param        id path string true "Academic year ID"
// @Param        request body academic.ModifyRosterRequest true "Student IDs"
// @Success      200 {object} dto.Response{data=academic.RosterChangeResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /academic-years/{id}/remove-students [post]
func (h *AcademicYearHandler) RemoveStudents(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid academic year ID")
		return
	}

	var req appacademic.ModifyRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.rosterService.RemoveStudents(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Roster godoc
// @Summary      List enrolled students
// @Tags         academic-years
// @Produce      json
// @Param        id path string true "Academic year ID"
// @Param        page query int false "Page number"
// @Param        per_page query int false "Page size"
// @Success      200 {object} dto.Response{data=[]registry.StudentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /academic-years/{id}/students [get]
func (h *AcademicYearHandler) Roster(c *gin.Context) {
	h.roster(c, nil)
}

// OrchardRoster godoc
// @Summary      List enrolled orchard students
// @Tags         academic-years
// @Produce      json
// @Param        id path string true "Academic year ID"
// @Success      200 {object} dto.Response{data=[]registry.StudentResponse}
// @Security     BearerAuth
// @Router       /academic-years/{id}/orchard-students [get]
func (h *AcademicYearHandler) OrchardRoster(c *gin.Context) {
	level := registry.ClassLevelOrchard
	h.roster(c, &level)
}

// IntroductoryRoster godoc
// @Summary      List enrolled introductory students
// @Tags         academic-years
// @Produce      json
// @Param        id path string true "Academic year ID"
// @Success      200 {object} dto.Response{data=[]registry.StudentResponse}
// @Security     BearerAuth
// @Router       /academic-years/{id}/introductory-students [get]
func (h *AcademicYearHandler) IntroductoryRoster(c *gin.Context) {
	level := registry.ClassLevelIntroductory
	h.roster(c, &level)
}

func (h *AcademicYearHandler) roster(c *gin.Context, classLevel *registry.ClassLevel) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid academic year ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.rosterService.Roster(c.Request.Context(), id, classLevel, req.Page, req.PerPage)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// PromoteOrchard godoc
// @Summary      Promote orchard students
// @Description  Move all orchard students from the source year to the target year
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        request body academic.PromoteRequest true "Source and target years"
// @Success      200 {object} dto.Response{data=academic.PromoteResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /students/import-orchard-students [post]
func (h *AcademicYearHandler) PromoteOrchard(c *gin.Context) {
	var req appacademic.PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.rosterService.PromoteOrchard(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers academic year routes on the given router group
func (h *AcademicYearHandler) RegisterRoutes(rg *gin.RouterGroup) {
	years := rg.Group("/academic-years")
	{
		years.POST("", h.Create)
		years.GET("", h.List)
		years.GET("/:id", h.Get)
		years.PUT("/:id", h.Update)
		years.DELETE("/:id", h.Delete)

		years.POST("/:id/add-students", h.AddStudents)
		years.POST("/:id/remove-students", h.RemoveStudents)
		years.GET("/:id/students", h.Roster)
		years.GET("/:id/orchard-students", h.OrchardRoster)
		years.GET("/:id/introductory-students", h.IntroductoryRoster)
	}

	// The promotion endpoint lives under /students for compatibility with
	// the previous system's API surface.
	rg.POST("/students/import-orchard-students", h.PromoteOrchard)
}
