package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"
)

// Panel destinations used by the authorization gate and the permission
// checks on administrative views.
const (
	pathHome           = "/"
	pathLogin          = "/login/"
	pathPanel          = "/painel/"
	pathDoctorPanel    = "/painel/medico/"
	pathAttendantPanel = "/painel/atendente/"
	pathDashboard      = "/dashboard/"
	pathDashConsultas  = "/dashboard/consultas/"
	pathDashPacientes  = "/dashboard/pacientes/"
	pathDashMedicos    = "/dashboard/medicos/"
)

// PanelHandler routes authenticated users to their panel and serves the
// patient, doctor and attendant panels.
type PanelHandler struct {
	DB *gorm.DB
}

// NewPanelHandler creates a new PanelHandler.
func NewPanelHandler(db *gorm.DB) *PanelHandler {
	return &PanelHandler{DB: db}
}

// resolvePanelDestination decides which panel an authenticated identity may
// reach, first match wins. A missing profile sends the user back to login;
// so does a role value outside the recognized set, which can only appear
// through data corruption since the schema constrains the column.
func resolvePanelDestination(isStaff bool, profile *models.Profile) string {
	if profile == nil || !profile.Role.Valid() {
		return pathLogin
	}
	if isStaff {
		return pathDashConsultas
	}
	switch profile.Role {
	case models.RoleDoctor:
		return pathDoctorPanel
	case models.RolePatient:
		return pathHome
	default:
		return pathAttendantPanel
	}
}

// profileForUser loads the profile attached to a user, returning nil when
// none exists.
func profileForUser(db *gorm.DB, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// usersWithRole returns all users whose profile carries the given role at
// query time. The role predicate lives in the join itself, so the result is
// exactly the role-filtered set and nothing else.
func usersWithRole(db *gorm.DB, role models.ProfileRole) ([]models.User, error) {
	var users []models.User
	err := db.
		Joins("JOIN profiles ON profiles.user_id = users.id AND profiles.role = ?", role).
		Order("users.first_name asc").
		Find(&users).Error
	return users, err
}

// userWithRole fetches a single user by id constrained to a role in one
// query. A miss means either the user does not exist or holds a different
// role; callers cannot tell which.
func userWithRole(db *gorm.DB, userID string, role models.ProfileRole) (*models.User, error) {
	var user models.User
	err := db.
		Joins("JOIN profiles ON profiles.user_id = users.id AND profiles.role = ?", role).
		Where("users.id = ?", userID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Panel is the authorization gate: it inspects the caller's staff flag and
// profile role and redirects to the matching panel.
func (h *PanelHandler) Panel(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Redirect(c, pathLogin)
		return
	}

	profile, err := profileForUser(h.DB, userID)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	utils.Redirect(c, resolvePanelDestination(middleware.IsStaffFromContext(c), profile))
}

// DoctorPanel lists the requesting doctor's appointments ordered by time.
func (h *PanelHandler) DoctorPanel(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var appointments []models.Appointment
	if err := h.DB.Preload("Patient").
		Where("doctor_id = ?", userID).
		Order("scheduled_at asc").
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Doctor panel", gin.H{"appointments": appointments})
}

// PatientPanel lists the patient's own appointments together with the set
// of doctors available for scheduling.
func (h *PanelHandler) PatientPanel(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	profile, err := profileForUser(h.DB, userID)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if profile == nil {
		utils.Redirect(c, pathLogin)
		return
	}

	var appointments []models.Appointment
	if err := h.DB.Preload("Doctor").
		Where("patient_id = ?", userID).
		Order("scheduled_at asc").
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	doctors, err := usersWithRole(h.DB, models.RoleDoctor)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	sanitizedDoctors := make([]models.UserSanitized, len(doctors))
	for i, doctor := range doctors {
		sanitizedDoctors[i] = doctor.Sanitize()
	}

	utils.Success(c, "Patient panel", gin.H{
		"appointments": appointments,
		"doctors":      sanitizedDoctors,
		"profile":      profile,
	})
}

// ScheduleAppointmentRequest represents the scheduling form a patient
// submits: the chosen doctor and time plus optional profile updates.
type ScheduleAppointmentRequest struct {
	DoctorID    string     `json:"doctorId" binding:"required,uuid"`
	ScheduledAt time.Time  `json:"scheduledAt" binding:"required"`
	BirthDate   *time.Time `json:"birthDate"`
	NationalID  string     `json:"nationalId"`
	Address     string     `json:"address"`
}

// ScheduleAppointment creates an appointment for the requesting patient.
// The doctor must belong to the role=doctor set; the lookup that enforces
// this is the eligible-choices query itself. The scheduled time is taken as
// submitted: past dates and overlapping slots for the same doctor are
// accepted.
func (h *PanelHandler) ScheduleAppointment(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req ScheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	profile, err := profileForUser(h.DB, userID)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if profile == nil {
		utils.Redirect(c, pathLogin)
		return
	}

	doctor, err := userWithRole(h.DB, req.DoctorID, models.RoleDoctor)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.BadRequest(c, "Selected doctor is not available")
		} else {
			utils.InternalServerError(c, "Database error verifying doctor: "+err.Error())
		}
		return
	}

	appointment := models.Appointment{
		PatientID:   userID,
		DoctorID:    doctor.ID,
		ScheduledAt: req.ScheduledAt,
		Status:      models.StatusScheduled,
	}

	// The appointment and the profile updates land together or not at all.
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&appointment).Error; err != nil {
			return err
		}
		if req.BirthDate != nil {
			profile.BirthDate = req.BirthDate
		}
		if req.NationalID != "" {
			profile.NationalID = req.NationalID
		}
		if req.Address != "" {
			profile.Address = req.Address
		}
		return tx.Save(profile).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to schedule appointment: "+err.Error())
		return
	}

	utils.Created(c, "Appointment scheduled successfully", appointment)
}

// requireAttendant verifies the caller holds the attendant role, redirecting
// to the panel gate otherwise. Returns false when the request has been
// answered.
func (h *PanelHandler) requireAttendant(c *gin.Context) bool {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Redirect(c, pathLogin)
		return false
	}

	profile, err := profileForUser(h.DB, userID)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return false
	}
	if profile == nil || profile.Role != models.RoleAttendant {
		utils.Redirect(c, pathPanel)
		return false
	}
	return true
}

// AttendantPanel lists every appointment together with the role-filtered
// patient and doctor sets used by the attendant's scheduling form.
func (h *PanelHandler) AttendantPanel(c *gin.Context) {
	if !h.requireAttendant(c) {
		return
	}

	var appointments []models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor").
		Order("scheduled_at asc").
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	patients, err := usersWithRole(h.DB, models.RolePatient)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}
	doctors, err := usersWithRole(h.DB, models.RoleDoctor)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	sanitizedPatients := make([]models.UserSanitized, len(patients))
	for i, patient := range patients {
		sanitizedPatients[i] = patient.Sanitize()
	}
	sanitizedDoctors := make([]models.UserSanitized, len(doctors))
	for i, doctor := range doctors {
		sanitizedDoctors[i] = doctor.Sanitize()
	}

	utils.Success(c, "Attendant panel", gin.H{
		"appointments": appointments,
		"patients":     sanitizedPatients,
		"doctors":      sanitizedDoctors,
	})
}

// AttendantScheduleRequest represents the attendant's scheduling form, where
// both parties are chosen explicitly.
type AttendantScheduleRequest struct {
	PatientID   string    `json:"patientId" binding:"required,uuid"`
	DoctorID    string    `json:"doctorId" binding:"required,uuid"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
}

// AttendantScheduleAppointment creates an appointment on behalf of a
// patient. Both identities are validated against their role-filtered sets;
// no profile side-update happens here.
func (h *PanelHandler) AttendantScheduleAppointment(c *gin.Context) {
	if !h.requireAttendant(c) {
		return
	}

	var req AttendantScheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient, err := userWithRole(h.DB, req.PatientID, models.RolePatient)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.BadRequest(c, "Selected patient is not available")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}

	doctor, err := userWithRole(h.DB, req.DoctorID, models.RoleDoctor)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.BadRequest(c, "Selected doctor is not available")
		} else {
			utils.InternalServerError(c, "Database error verifying doctor: "+err.Error())
		}
		return
	}

	appointment := models.Appointment{
		PatientID:   patient.ID,
		DoctorID:    doctor.ID,
		ScheduledAt: req.ScheduledAt,
		Status:      models.StatusScheduled,
	}
	if err := h.DB.Create(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to schedule appointment: "+err.Error())
		return
	}

	utils.Created(c, "Appointment scheduled successfully", appointment)
}

// GetReport fetches the appointment a doctor is about to report on. The
// lookup is a single query filtered by appointment id and requesting
// doctor; a nonexistent id and someone else's appointment are
// indistinguishable to the caller.
func (h *PanelHandler) GetReport(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var appointment models.Appointment
	if err := h.DB.Preload("Patient").
		Where("id = ? AND doctor_id = ?", c.Param("id"), userID).
		First(&appointment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// WriteReportRequest carries the report text the doctor submits.
type WriteReportRequest struct {
	Report string `json:"report" binding:"required"`
}

// WriteReport stores the visit report and marks the appointment completed
// in one save. Only the doctor the appointment references can reach it; the
// ownership predicate is part of the lookup query.
func (h *PanelHandler) WriteReport(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req WriteReportRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var appointment models.Appointment
	if err := h.DB.Where("id = ? AND doctor_id = ?", c.Param("id"), userID).
		First(&appointment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	appointment.Report = req.Report
	appointment.Status = models.StatusCompleted
	if err := h.DB.Save(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to save report: "+err.Error())
		return
	}

	utils.Success(c, "Report saved successfully", appointment)
}
