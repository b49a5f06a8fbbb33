package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sanable/backend/internal/interfaces/http/dto"
)

const (
	serviceName    = "Sanable Backend API"
	serviceVersion = "1.0.0"
)

// SystemHandler answers the service introspection endpoints.
type SystemHandler struct {
	BaseHandler
	started time.Time
}

// NewSystemHandler creates a SystemHandler anchored at the current time,
// so uptime counts from process start.
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{started: time.Now()}
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name       string `json:"name" example:"Sanable Backend API"`
	Version    string `json:"version" example:"1.0.0"`
	GoVersion  string `json:"go_version" example:"go1.25.5"`
	Uptime     string `json:"uptime" example:"1h30m45s"`
	Goroutines int    `json:"goroutines" example:"12"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns service name, version, Go runtime version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(SystemInfoResponse{
		Name:       serviceName,
		Version:    serviceVersion,
		GoVersion:  runtime.Version(),
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	}))
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Liveness check that answers without touching any backend
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

// RegisterRoutes mounts the system endpoints under /system.
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", h.GetSystemInfo)
		system.GET("/ping", h.Ping)
	}
}
