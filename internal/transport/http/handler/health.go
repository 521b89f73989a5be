package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"anonymizer-api/internal/bootstrap"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": h.app.Config.App.Name + " is working!"})
}

// Test lists the public routes; the frontend uses it as a connectivity probe.
func (h *HealthHandler) Test(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "API is working!",
		"endpoints": gin.H{
			"POST /register/": "User registration",
			"POST /login/":    "User login",
			"GET /profile/":   "Get user profile",
			"POST /upload/":   "Upload and process image",
			"GET /test":       "Test endpoint",
		},
	})
}

func (h *HealthHandler) Check(c *gin.Context) {
	staticStatus := h.checkStaticDir()

	statusCode := http.StatusOK
	if !staticStatus.OK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":        h.app.Config.App.Name,
		"version":    h.app.Config.App.Version,
		"env":        h.app.Config.App.Env,
		"uptime_sec": int(time.Since(h.app.StartedAt).Seconds()),
		"users":      h.app.Users.Count(),
		"dependencies": gin.H{
			"static_dir": staticStatus,
		},
	})
}

func (h *HealthHandler) checkStaticDir() dependencyStatus {
	if err := h.app.Static.Writable(); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}
