package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-app-server/internal/config"
	"clinic-app-server/internal/handlers"
	"clinic-app-server/internal/middleware"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	panelHandler := handlers.NewPanelHandler(db)
	medicationHandler := handlers.NewMedicationHandler(db)
	dashboardHandler := handlers.NewDashboardHandler(db)

	// Public routes (no authentication required)
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"page": "home"})
	})
	router.GET("/sobre/", func(c *gin.Context) {
		c.JSON(200, gin.H{"page": "sobre"})
	})
	router.POST("/cadastrar_usuario/", authHandler.Register)
	router.POST("/login/", authHandler.Login)
	router.POST("/token/refresh/", authHandler.RefreshToken)

	// Authenticated routes
	private := router.Group("")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		private.POST("/logout/", authHandler.Logout)
		private.GET("/perfil/", authHandler.GetProfile)

		// Panel gate and role panels
		private.GET("/painel/", panelHandler.Panel)
		private.GET("/painel/medico/", panelHandler.DoctorPanel)
		private.GET("/painel/paciente/", panelHandler.PatientPanel)
		private.POST("/painel/paciente/", panelHandler.ScheduleAppointment)
		private.GET("/painel/atendente/", panelHandler.AttendantPanel)
		private.POST("/painel/atendente/", panelHandler.AttendantScheduleAppointment)

		// Doctor report authoring
		private.GET("/consulta/:id/relatorio/", panelHandler.GetReport)
		private.POST("/consulta/:id/relatorio/", panelHandler.WriteReport)

		// Medication catalog
		private.GET("/medicamentos/", medicationHandler.ListMedications)
		private.POST("/medicamentos/cadastrar/", medicationHandler.CreateMedication)
		private.POST("/medicamentos/:id/excluir/", medicationHandler.DeleteMedication)

		// Administrative dashboard. Staff verification happens inside every
		// handler rather than in a shared middleware chain.
		private.GET("/dashboard/", dashboardHandler.Dashboard)
		private.GET("/dashboard/produtos/", dashboardHandler.DashboardProducts)
		private.GET("/dashboard/consultas/", dashboardHandler.DashboardAppointments)
		private.GET("/dashboard/ocupacao/", dashboardHandler.DashboardOccupancy)
		private.GET("/dashboard/pacientes/", dashboardHandler.DashboardPatients)
		private.GET("/dashboard/medicos/", dashboardHandler.DashboardDoctors)
		private.PUT("/dashboard/medicamento/:id/editar/", dashboardHandler.EditMedication)
		private.POST("/dashboard/consulta/:id/cancelar/", dashboardHandler.CancelAppointment)
		private.POST("/dashboard/medico/:id/remover/", dashboardHandler.RemoveDoctor)
		private.POST("/dashboard/paciente/:id/remover/", dashboardHandler.RemovePatient)
		private.GET("/dashboard/usuario/:id/cargos/", dashboardHandler.GetManageRoles)
		private.POST("/dashboard/usuario/:id/cargos/", dashboardHandler.ManageRoles)
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
