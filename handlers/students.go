package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"student-track-backend/models"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type StudentHandler struct {
	db *gorm.DB
}

func NewStudentHandler(db *gorm.DB) *StudentHandler {
	return &StudentHandler{db: db}
}

func (h *StudentHandler) GetStudents(w http.ResponseWriter, r *http.Request) {
	var students []models.Student
	if err := h.db.Preload("Groups").Preload("Payments").Order("id ASC").Find(&students).Error; err != nil {
		log.Printf("❌ Error fetching students: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	for i := range students {
		students[i].EnsureLists()
	}
	respondJSON(w, http.StatusOK, students)
}

func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "Invalid student ID")
		return
	}

	var student models.Student
	if err := h.db.Preload("Groups").Preload("Payments").First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Student not found")
			return
		}
		log.Printf("❌ Error fetching student: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	student.EnsureLists()
	respondJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var createReq struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}

	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		log.Printf("❌ Error decoding request body: %v", err)
		respondError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON format")
		return
	}

	log.Printf("➕ Creating student: Name='%s'", createReq.Name)

	if strings.TrimSpace(createReq.Name) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Name is required and cannot be blank")
		return
	}

	if strings.TrimSpace(createReq.Phone) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Phone is required and cannot be blank")
		return
	}

	student := models.Student{
		Name:  createReq.Name,
		Phone: createReq.Phone,
	}

	if err := h.db.Create(&student).Error; err != nil {
		log.Printf("❌ Database error creating student: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to create student in database")
		return
	}

	log.Printf("✅ Student created successfully with ID: %d", student.ID)
	student.EnsureLists()
	respondJSON(w, http.StatusCreated, student)
}

func (h *StudentHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	student, ok := h.findStudent(w, r)
	if !ok {
		return
	}

	// Частичное обновление: меняются только переданные поля
	var updateReq struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
	}

	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		log.Printf("❌ Error decoding request body: %v", err)
		respondError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	if updateReq.Name != nil {
		if strings.TrimSpace(*updateReq.Name) == "" {
			respondError(w, http.StatusBadRequest, "validation_error", "Name cannot be blank")
			return
		}
		student.Name = *updateReq.Name
	}

	if updateReq.Phone != nil {
		if strings.TrimSpace(*updateReq.Phone) == "" {
			respondError(w, http.StatusBadRequest, "validation_error", "Phone cannot be blank")
			return
		}
		student.Phone = *updateReq.Phone
	}

	if err := h.db.Save(&student).Error; err != nil {
		log.Printf("❌ Error updating student in database: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	if err := h.db.Preload("Groups").Preload("Payments").First(&student, student.ID).Error; err != nil {
		log.Printf("❌ Error reloading student %d: %v", student.ID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	log.Printf("✅ Student %d updated successfully", student.ID)
	student.EnsureLists()
	respondJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	student, ok := h.findStudent(w, r)
	if !ok {
		return
	}

	// Каскадное удаление одной транзакцией: платежи, членство, студент
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", student.ID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&student).Association("Groups").Clear(); err != nil {
			return err
		}
		return tx.Delete(&student).Error
	})
	if err != nil {
		log.Printf("❌ Error deleting student %d: %v", student.ID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	log.Printf("🗑️ Student %d deleted with payments and memberships", student.ID)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Student deleted"})
}

// findStudent ищет студента по {id} из пути и сам пишет ответ при ошибке
func (h *StudentHandler) findStudent(w http.ResponseWriter, r *http.Request) (models.Student, bool) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "Invalid student ID")
		return models.Student{}, false
	}

	var student models.Student
	if err := h.db.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Student not found")
			return models.Student{}, false
		}
		log.Printf("❌ Error checking student existence: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return models.Student{}, false
	}

	return student, true
}
