package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"
)

// MedicationHandler handles the medication catalog.
type MedicationHandler struct {
	DB *gorm.DB
}

// NewMedicationHandler creates a new MedicationHandler.
func NewMedicationHandler(db *gorm.DB) *MedicationHandler {
	return &MedicationHandler{DB: db}
}

// ListMedications returns the catalog ordered alphabetically by name.
func (h *MedicationHandler) ListMedications(c *gin.Context) {
	var medications []models.Medication
	if err := h.DB.Order("name asc").Find(&medications).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch medications: "+err.Error())
		return
	}

	utils.Success(c, "Medications fetched successfully", medications)
}

// CreateMedicationRequest represents the medication registration form.
// RequiresPrescription defaults to true when omitted.
type CreateMedicationRequest struct {
	Name                 string  `json:"name" binding:"required,max=200"`
	Photo                string  `json:"photo"`
	Price                float64 `json:"price" binding:"required,gte=0.01"`
	RequiresPrescription *bool   `json:"requiresPrescription"`
}

// CreateMedication registers a new medication. Staff only.
func (h *MedicationHandler) CreateMedication(c *gin.Context) {
	if !requireStaff(c) {
		return
	}

	var req CreateMedicationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.Medication
	if err := h.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		utils.BadRequest(c, "Medication with this name already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	medication := models.Medication{
		Name:                 req.Name,
		Photo:                req.Photo,
		Price:                req.Price,
		RequiresPrescription: true,
	}
	if req.RequiresPrescription != nil {
		medication.RequiresPrescription = *req.RequiresPrescription
	}

	if err := h.DB.Create(&medication).Error; err != nil {
		utils.InternalServerError(c, "Failed to create medication: "+err.Error())
		return
	}

	utils.Created(c, "Medication created successfully", medication)
}

// DeleteMedication removes a medication from the catalog. Staff only; the
// delete is unconditional since nothing else references the catalog.
func (h *MedicationHandler) DeleteMedication(c *gin.Context) {
	if !requireStaff(c) {
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

	if err := h.DB.Delete(&medication).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete medication: "+err.Error())
		return
	}

	utils.Success(c, "Medication deleted successfully", nil)
}
