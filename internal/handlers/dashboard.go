package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"
)

// DashboardHandler serves the administrative dashboard. Every view
// re-verifies the staff flag on its own and sends non-staff users back to
// the ordinary panel.
type DashboardHandler struct {
	DB *gorm.DB
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db}
}

// requireStaff redirects non-staff callers to the panel gate. Returns false
// when the request has been answered.
func requireStaff(c *gin.Context) bool {
	if !middleware.IsStaffFromContext(c) {
		utils.Redirect(c, pathPanel)
		return false
	}
	return true
}

// Dashboard redirects to the consultations statistics page.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	if !requireStaff(c) {
		return
	}
	utils.Redirect(c, pathDashConsultas)
}

// DashboardProducts lists all medications for editing.
func (h *DashboardHandler) DashboardProducts(c *gin.Context) {
	if !requireStaff(c) {
		return
	}

	var medications []models.Medication
	if err := h.DB.Order("name asc").Find(&medications).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch medications: "+err.Error())
		return
	}

	utils.Success(c, "Medications fetched successfully", medications)
}

// AppointmentStats aggregates the consultation counters shown on the
// statistics page.
type AppointmentStats struct {
	Total         int64  `json:"total"`
	Completed     int64  `json:"completed"`
	Scheduled     int64  `json:"scheduled"`
	Cancelled     int64  `json:"cancelled"`
	Today         int64  `json:"today"`
	BusiestDoctor string `json:"busiestDoctor"`
}

// DashboardAppointments computes the consultation statistics: overall and
// per-status counts, today's appointment count, and the doctor holding the
// most scheduled appointments. On an exact tie the busiest doctor is
// whichever row the ordered query returns first.
func (h *DashboardHandler) DashboardAppointments(c *gin.Context) {
	if !requireStaff(c) {
		return
	}

	var stats AppointmentStats
	counts := []struct {
		status models.AppointmentStatus
		dest   *int64
	}{
		{models.StatusCompleted, &stats.Completed},
		{models.StatusScheduled, &stats.Scheduled},
		{models.StatusCancelled, &stats.Cancelled},
	}

	if err := h.DB.Model(&models.Appointment{}).Count(&stats.Total).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute statistics: "+err.Error())
		return
	}
	for _, cnt := range counts {
		if err := h.DB.Model(&models.Appointment{}).
			Where("status = ?", cnt.status).
			Count(cnt.dest).Error; err != nil {
			utils.InternalServerError(c, "Failed to compute statistics: "+err.Error())
			return
		}
	}

	dayStart := time.Now().Truncate(24 * time.Hour)
	if err := h.DB.Model(&models.Appointment{}).
		Where("scheduled_at >= ? AND scheduled_at < ?", dayStart, dayStart.Add(24*time.Hour)).
		Count(&stats.Today).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute statistics: "+err.Error())
		return
	}

	var busiest struct {
		FirstName string
		LastName  string
		Total     int64
	}
	err := h.DB.Model(&models.Appointment{}).
		Select("users.first_name, users.last_name, COUNT(appointments.id) AS total").
		Joins("JOIN users ON users.id = appointments.doctor_id").
		Where("appointments.status = ?", models.StatusScheduled).
		Group("appointments.doctor_id, users.first_name, users.last_name").
		Order("total DESC").
		Limit(1).
		Scan(&busiest).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to compute statistics: "+err.Error())
		return
	}

	stats.BusiestDoctor = "N/A"
	if busiest.Total > 0 {
		stats.BusiestDoctor = busiest.FirstName + " " + busiest.LastName
	}

	utils.Success(c, "Statistics computed successfully", stats)
}

// DashboardOccupancy lists all currently scheduled appointments.
func (h *DashboardHandler) DashboardOccupancy(c *gin.Context) {
	if !requireStaff(c) {
		return
	}

	var appointments []models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor").
		Where("status = ?", models.StatusScheduled).
		Order("scheduled_at asc").
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Scheduled appointments fetched successfully", appointments)
}

// DashboardPatients lists all registered patients.
func (h *DashboardHandler) DashboardPatients(c *gin.Context) {
	if !requireStaff(c) {
		return
	}
	h.listUsersByRole(c, models.RolePatient, "Patients fetched successfully")
}

// DashboardDoctors lists all registered doctors.
func (h *DashboardHandler) DashboardDoctors(c *gin.Context) {
	if !requireStaff(c) {
		return
	}
	h.listUsersByRole(c, models.RoleDoctor, "Doctors fetched successfully")
}

func (h *DashboardHandler) listUsersByRole(c *gin.Context, role models.ProfileRole, message string) {
	users, err := usersWithRole(h.DB, role)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, len(users))
	for i, user := range users {
		sanitized[i] = user.Sanitize()
	}

	utils.Success(c, message, sanitized)
}

// EditMedicationRequest represents a partial medication update.
type EditMedicationRequest struct {
	Name                 string   `json:"name" binding:"omitempty,max=200"`
	Photo                *string  `json:"photo"`
	Price                *float64 `json:"price"`
	RequiresPrescription *bool    `json:"requiresPrescription"`
}

// EditMedication updates an existing medication. Staff only; the same
// validation as creation applies to the submitted fields.
func (h *DashboardHandler) EditMedication(c *gin.Context) {
	if !requireStaff(c) {
		return
	}

	var req EditMedicationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	// omitempty would wave an explicit zero through, so the minimum price is
	// checked here rather than in the binding tag.
	if req.Price != nil && *req.Price < 0.01 {
		utils.BadRequest(c, "Price must be at least 0.01")
		return
	}

	var medication models.Medication
	if err := h.DB.First(&medication, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Medication not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Name != "" && req.Name != medication.Name {
		var existing models.Medication
		if err := h.DB.Where("name = ? AND id != ?", req.Name, medication.ID).First(&existing).Error; err == nil {
			utils.BadRequest(c, "Medication with this name already exists")
			return
		} else if err != gorm.ErrRecordNotFound {
			utils.InternalServerError(c, "Database error checking name: "+err.Error())
			return
		}
		medication.Name = req.Name
	}
	if req.Photo != nil {
		medication.Photo = *req.Photo
	}
	if req.Price != nil {
		medication.Price = *req.Price
	}
	if req.RequiresPrescription != nil {
		medication.RequiresPrescription = *req.RequiresPrescription
	}

	if err := h.DB.Save(&medication).Error; err != nil {
		utils.InternalServerError(c, "Failed to update medication: "+err.Error())
		return
	}

	utils.Success(c, "Medication updated successfully", medication)
}

// CancelAppointment unconditionally marks an appointment cancelled,
// whatever its current status. Repeating the action leaves it cancelled.
func (h *DashboardHandler) CancelAppointment(c *gin.Context) {
	if !requireStaff(c) {
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	appointment.Status = models.StatusCancelled
	if err := h.DB.Save(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to cancel appointment: "+err.Error())
		return
	}

	utils.Success(c, "Appointment cancelled successfully", appointment)
}

// RemoveDoctor deletes a doctor and everything that references them.
func (h *DashboardHandler) RemoveDoctor(c *gin.Context) {
	if !requireStaff(c) {
		return
	}
	h.removeUserWithRole(c, models.RoleDoctor, "Doctor")
}

// RemovePatient deletes a patient and everything that references them.
func (h *DashboardHandler) RemovePatient(c *gin.Context) {
	if !requireStaff(c) {
		return
	}
	h.removeUserWithRole(c, models.RolePatient, "Patient")
}

// removeUserWithRole deletes a user looked up by id and expected role in a
// single query, so a wrong-role id reads as not found. The appointments,
// profile and refresh tokens referencing the user go with it.
func (h *DashboardHandler) removeUserWithRole(c *gin.Context, role models.ProfileRole, label string) {
	user, err := userWithRole(h.DB, c.Param("id"), role)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, label+" not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("patient_id = ? OR doctor_id = ?", user.ID, user.ID).
			Delete(&models.Appointment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", user.ID).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to remove "+label+": "+err.Error())
		return
	}

	utils.Success(c, label+" removed successfully", nil)
}

// GetManageRoles returns the target user, their profile (created with the
// patient role when missing) and the set of assignable roles.
func (h *DashboardHandler) GetManageRoles(c *gin.Context) {
	if !requireStaff(c) {
		return
	}

	user, profile, ok := h.userAndProfile(c)
	if !ok {
		return
	}

	utils.Success(c, "User roles fetched successfully", gin.H{
		"user":    user.Sanitize(),
		"profile": profile,
		"roles":   []models.ProfileRole{models.RoleDoctor, models.RolePatient, models.RoleAttendant},
	})
}

// ManageRolesRequest carries the role a staff member assigns to a user.
type ManageRolesRequest struct {
	Role string `json:"role" binding:"required"`
}

// ManageRoles assigns a role to a user's profile. A value outside the
// recognized set is ignored without an error; a recognized value is saved
// and the response redirects to the matching listing.
func (h *DashboardHandler) ManageRoles(c *gin.Context) {
	if !requireStaff(c) {
		return
	}

	var req ManageRolesRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	_, profile, ok := h.userAndProfile(c)
	if !ok {
		return
	}

	newRole := models.ProfileRole(req.Role)
	if !newRole.Valid() {
		// Out-of-set values are dropped silently; the profile keeps its role.
		utils.Success(c, "User roles fetched successfully", gin.H{"profile": profile})
		return
	}

	profile.Role = newRole
	if err := h.DB.Save(profile).Error; err != nil {
		utils.InternalServerError(c, "Failed to update role: "+err.Error())
		return
	}

	switch newRole {
	case models.RoleDoctor:
		utils.Redirect(c, pathDashMedicos)
	case models.RolePatient:
		utils.Redirect(c, pathDashPacientes)
	default:
		utils.Redirect(c, pathDashboard)
	}
}

// userAndProfile loads the user targeted by the route and their profile,
// lazily creating a patient profile when none exists. Returns ok=false when
// the request has been answered.
func (h *DashboardHandler) userAndProfile(c *gin.Context) (*models.User, *models.Profile, bool) {
	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, nil, false
	}

	profile, err := profileForUser(h.DB, user.ID)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return nil, nil, false
	}
	if profile == nil {
		profile = &models.Profile{UserID: user.ID, Role: models.RolePatient}
		if err := h.DB.Create(profile).Error; err != nil {
			utils.InternalServerError(c, "Failed to create profile: "+err.Error())
			return nil, nil, false
		}
	}

	return &user, profile, true
}
