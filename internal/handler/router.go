package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brunovinte3/controlsst/internal/middleware"
	"github.com/brunovinte3/controlsst/internal/models"
	"github.com/brunovinte3/controlsst/internal/service"
)

// Deps bundles everything the router needs.
type Deps struct {
	Auth      *service.AuthService
	Employees *service.EmployeeService
	Sync      *service.SyncService
	Dashboard *service.DashboardService
	Settings  *service.SettingsService
	Photos    *service.PhotoService
	Reports   *service.ReportService
	Metrics   *service.MetricsService
}

// Register wires every route under the given prefix. Write operations require
// an admin token; consultation endpoints stay public so visitors can check
// compliance by registration number.
func Register(r *gin.Engine, prefix string, deps Deps) {
	authHandler := NewAuthHandler(deps.Auth)
	employeeHandler := NewEmployeeHandler(deps.Employees)
	syncHandler := NewSyncHandler(deps.Sync)
	dashboardHandler := NewDashboardHandler(deps.Dashboard)
	settingsHandler := NewSettingsHandler(deps.Settings)
	photoHandler := NewPhotoHandler(deps.Photos)
	reportHandler := NewReportHandler(deps.Reports)
	metricsHandler := NewMetricsHandler(deps.Metrics)
	courseHandler := NewCourseHandler()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(prefix)

	api.POST("/auth/login", authHandler.Login)
	api.GET("/courses", courseHandler.List)
	api.GET("/employees/lookup", employeeHandler.Lookup)
	api.GET("/photos", photoHandler.List)
	api.GET("/reports/download", reportHandler.Download)

	admin := api.Group("")
	admin.Use(middleware.JWT(deps.Auth), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/auth/me", authHandler.Me)

		admin.GET("/employees", employeeHandler.List)
		admin.GET("/employees/backup", employeeHandler.Backup)
		admin.GET("/employees/sectors", employeeHandler.Sectors)
		admin.POST("/employees", employeeHandler.Create)
		admin.GET("/employees/:id", employeeHandler.Get)
		admin.PATCH("/employees/:id", employeeHandler.Update)
		admin.PUT("/employees/:id/trainings", employeeHandler.UpdateTraining)
		admin.DELETE("/employees/:id", employeeHandler.Delete)

		admin.POST("/sync", syncHandler.Trigger)
		admin.GET("/sync/status", syncHandler.Status)
		admin.POST("/import", syncHandler.Import)

		admin.GET("/dashboard", dashboardHandler.Summary)

		admin.GET("/settings/company", settingsHandler.CompanyProfile)
		admin.PUT("/settings/company", settingsHandler.UpdateCompanyProfile)
		admin.GET("/settings/admin", settingsHandler.AdminProfile)
		admin.PUT("/settings/admin", settingsHandler.UpdateAdminProfile)
		admin.GET("/settings/sheets-url", settingsHandler.SheetsURL)
		admin.PUT("/settings/sheets-url", settingsHandler.UpdateSheetsURL)

		admin.POST("/photos", photoHandler.Save)
		admin.DELETE("/photos/:id", photoHandler.Delete)

		admin.POST("/reports", reportHandler.Create)
		admin.GET("/reports/:id", reportHandler.Status)
	}
}
