package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cardindex/database"
	apperrors "cardindex/server/errors"
)

// PatientsHandler обработчики sqlite-архива пациентов
type PatientsHandler struct {
	db *database.PatientsDB
}

// InsertPatientRequest запрос на вставку пациента в архив
type InsertPatientRequest struct {
	BoxNumber string `json:"box_number"`
	Name      string `json:"name" binding:"required"`
	DOB       string `json:"dob" binding:"required"`
	LastVisit string `json:"last_visit"`
}

// NewPatientsHandler создает обработчик архива
func NewPatientsHandler(db *database.PatientsDB) *PatientsHandler {
	return &PatientsHandler{db: db}
}

// HandleInsertPatient вставляет пациента с дедупликацией по имени и дате
func (h *PatientsHandler) HandleInsertPatient(c *gin.Context) {
	var req InsertPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := apperrors.NewValidationError("name and dob are required", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}

	outcome, err := h.db.InsertPatient(req.BoxNumber, req.Name, req.DOB, req.LastVisit)
	if err != nil {
		appErr := apperrors.NewInternalError("failed to insert patient", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}
	SendJSONResponse(c, http.StatusOK, gin.H{"outcome": outcome})
}

// HandleSearchPatients ищет пациентов по части имени и опциональной дате
func (h *PatientsHandler) HandleSearchPatients(c *gin.Context) {
	namePartial := c.Query("name")
	if namePartial == "" {
		SendJSONError(c, http.StatusBadRequest, "name query parameter is required")
		return
	}

	patients, err := h.db.SearchPatients(namePartial, c.Query("dob"))
	if err != nil {
		appErr := apperrors.NewInternalError("failed to search patients", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}
	SendJSONResponse(c, http.StatusOK, patients)
}

// HandleFindDuplicates отдает записи с одинаковым именем для ручного ревью
func (h *PatientsHandler) HandleFindDuplicates(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		SendJSONError(c, http.StatusBadRequest, "name query parameter is required")
		return
	}

	duplicates, err := h.db.FindDuplicates(name)
	if err != nil {
		appErr := apperrors.NewInternalError("failed to find duplicates", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}
	SendJSONResponse(c, http.StatusOK, gin.H{
		"name":       name,
		"duplicates": duplicates,
	})
}
