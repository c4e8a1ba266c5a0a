package handlers

import (
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"clinic-app-server/internal/config"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"
)

// TestMain sets a consistent Gin mode for all tests in the package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:               "development",
		JWTSecret:                 "test-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
	}
}

// setupTestDB creates an in-memory SQLite database and migrates the full
// schema. The database name is uniquified with the current Unix nanosecond
// timestamp to prevent cross-test contamination.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, models.Migrate(db), "failed to migrate test schema")
	return db
}

// newTestServer wires the full route surface against a fresh database.
func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB, *config.Config) {
	t.Helper()
	db := setupTestDB(t)
	cfg := testConfig()

	authHandler := NewAuthHandler(db, cfg)
	panelHandler := NewPanelHandler(db)
	medicationHandler := NewMedicationHandler(db)
	dashboardHandler := NewDashboardHandler(db)

	r := gin.New()
	r.POST("/cadastrar_usuario/", authHandler.Register)
	r.POST("/login/", authHandler.Login)
	r.POST("/token/refresh/", authHandler.RefreshToken)

	private := r.Group("")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		private.POST("/logout/", authHandler.Logout)
		private.GET("/perfil/", authHandler.GetProfile)
		private.GET("/painel/", panelHandler.Panel)
		private.GET("/painel/medico/", panelHandler.DoctorPanel)
		private.GET("/painel/paciente/", panelHandler.PatientPanel)
		private.POST("/painel/paciente/", panelHandler.ScheduleAppointment)
		private.GET("/painel/atendente/", panelHandler.AttendantPanel)
		private.POST("/painel/atendente/", panelHandler.AttendantScheduleAppointment)
		private.GET("/consulta/:id/relatorio/", panelHandler.GetReport)
		private.POST("/consulta/:id/relatorio/", panelHandler.WriteReport)
		private.GET("/medicamentos/", medicationHandler.ListMedications)
		private.POST("/medicamentos/cadastrar/", medicationHandler.CreateMedication)
		private.POST("/medicamentos/:id/excluir/", medicationHandler.DeleteMedication)
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

	return r, db, cfg
}

// createTestUser creates a user and, unless role is empty, a profile with
// that role.
func createTestUser(t *testing.T, db *gorm.DB, username string, role models.ProfileRole, isStaff bool) models.User {
	t.Helper()
	user := models.User{
		Username:  username,
		Email:     username + "@clinic.test",
		FirstName: username,
		LastName:  "Test",
		IsStaff:   isStaff,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(&user).Error)

	if role != "" {
		profile := models.Profile{UserID: user.ID, Role: role}
		require.NoError(t, db.Create(&profile).Error)
	}
	return user
}

func createTestAppointment(t *testing.T, db *gorm.DB, patientID, doctorID string, at time.Time, status models.AppointmentStatus) models.Appointment {
	t.Helper()
	appointment := models.Appointment{
		PatientID:   patientID,
		DoctorID:    doctorID,
		ScheduledAt: at,
		Status:      status,
	}
	require.NoError(t, db.Create(&appointment).Error)
	return appointment
}

// bearerToken returns an Authorization header value for the user.
func bearerToken(t *testing.T, cfg *config.Config, user *models.User) string {
	t.Helper()
	accessToken, _, err := utils.GenerateTokens(user, cfg)
	require.NoError(t, err)
	return "Bearer " + accessToken
}

// doRequest performs a request against the test router, optionally with a
// JSON body and Authorization header.
func doRequest(r *gin.Engine, method, path, body, authorization string) *httptest.ResponseRecorder {
	var req = httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
