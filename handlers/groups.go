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

type GroupHandler struct {
	db *gorm.DB
}

func NewGroupHandler(db *gorm.DB) *GroupHandler {
	return &GroupHandler{db: db}
}

func (h *GroupHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	var groups []models.Group
	if err := h.db.Preload("Students").Order("id ASC").Find(&groups).Error; err != nil {
		log.Printf("❌ Error fetching groups: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	for i := range groups {
		groups[i].EnsureLists()
	}
	respondJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, ok := h.findGroup(w, r)
	if !ok {
		return
	}

	if err := h.db.Model(&group).Association("Students").Find(&group.Students); err != nil {
		log.Printf("❌ Error fetching students of group %d: %v", group.ID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	group.EnsureLists()
	respondJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) GetGroupStudents(w http.ResponseWriter, r *http.Request) {
	group, ok := h.findGroup(w, r)
	if !ok {
		return
	}

	students := []models.Student{}
	if err := h.db.Model(&group).Association("Students").Find(&students); err != nil {
		log.Printf("❌ Error fetching students of group %d: %v", group.ID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	for i := range students {
		students[i].EnsureLists()
	}
	respondJSON(w, http.StatusOK, students)
}

func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var createReq struct {
		Title string `json:"title"`
		Cost  *int   `json:"cost"`
	}

	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		log.Printf("❌ Error decoding request body: %v", err)
		respondError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON format")
		return
	}

	log.Printf("➕ Creating group: Title='%s'", createReq.Title)

	if strings.TrimSpace(createReq.Title) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Title is required and cannot be blank")
		return
	}

	if createReq.Cost == nil || *createReq.Cost < 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "Cost is required and must be a non-negative integer")
		return
	}

	group := models.Group{
		Title: createReq.Title,
		Cost:  *createReq.Cost,
	}

	if err := h.db.Create(&group).Error; err != nil {
		log.Printf("❌ Database error creating group: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to create group in database")
		return
	}

	log.Printf("✅ Group created successfully with ID: %d", group.ID)
	group.EnsureLists()
	respondJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	group, ok := h.findGroup(w, r)
	if !ok {
		return
	}

	// Частичное обновление: меняются только переданные поля
	var updateReq struct {
		Title *string `json:"title"`
		Cost  *int    `json:"cost"`
	}

	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		log.Printf("❌ Error decoding request body: %v", err)
		respondError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	if updateReq.Title != nil {
		if strings.TrimSpace(*updateReq.Title) == "" {
			respondError(w, http.StatusBadRequest, "validation_error", "Title cannot be blank")
			return
		}
		group.Title = *updateReq.Title
	}

	if updateReq.Cost != nil {
		if *updateReq.Cost < 0 {
			respondError(w, http.StatusBadRequest, "validation_error", "Cost must be a non-negative integer")
			return
		}
		group.Cost = *updateReq.Cost
	}

	if err := h.db.Save(&group).Error; err != nil {
		log.Printf("❌ Error updating group in database: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	if err := h.db.Model(&group).Association("Students").Find(&group.Students); err != nil {
		log.Printf("❌ Error fetching students of group %d: %v", group.ID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	log.Printf("✅ Group %d updated successfully", group.ID)
	group.EnsureLists()
	respondJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	group, ok := h.findGroup(w, r)
	if !ok {
		return
	}

	// Группу с участниками удалять нельзя - история платежей важнее
	memberCount := h.db.Model(&group).Association("Students").Count()
	if memberCount > 0 {
		log.Printf("❌ Group %d has %d member(s), refusing to delete", group.ID, memberCount)
		respondError(w, http.StatusBadRequest, "has_members", "Group has associated students and cannot be deleted")
		return
	}

	if err := h.db.Delete(&group).Error; err != nil {
		log.Printf("❌ Error deleting group: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	log.Printf("🗑️ Group %d deleted successfully", group.ID)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Group deleted"})
}

func (h *GroupHandler) AddStudentToGroup(w http.ResponseWriter, r *http.Request) {
	group, ok := h.findGroup(w, r)
	if !ok {
		return
	}

	var addReq struct {
		StudentID *uint `json:"student_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil || addReq.StudentID == nil {
		respondError(w, http.StatusBadRequest, "validation_error", "student_id is required")
		return
	}

	var student models.Student
	if err := h.db.First(&student, *addReq.StudentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Student not found")
			return
		}
		log.Printf("❌ Error checking student existence: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	// Append по many2many идемпотентен: существующая пара не вставляется
	// повторно и не считается ошибкой
	if err := h.db.Model(&group).Association("Students").Append(&student); err != nil {
		log.Printf("❌ Error adding student %d to group %d: %v", student.ID, group.ID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	log.Printf("✅ Student %d added to group %d", student.ID, group.ID)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Student added to group"})
}

func (h *GroupHandler) RemoveStudentFromGroup(w http.ResponseWriter, r *http.Request) {
	group, ok := h.findGroup(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	studentID, err := strconv.Atoi(vars["sid"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "Invalid student ID")
		return
	}

	var student models.Student
	if err := h.db.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Student not found")
			return
		}
		log.Printf("❌ Error checking student existence: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	var pairCount int64
	if err := h.db.Table("students_groups").
		Where("group_id = ? AND student_id = ?", group.ID, student.ID).
		Count(&pairCount).Error; err != nil {
		log.Printf("❌ Error checking membership: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	if pairCount == 0 {
		respondError(w, http.StatusBadRequest, "not_in_group", "Student is not a member of this group")
		return
	}

	if err := h.db.Model(&group).Association("Students").Delete(&student); err != nil {
		log.Printf("❌ Error removing student %d from group %d: %v", student.ID, group.ID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	log.Printf("🗑️ Student %d removed from group %d", student.ID, group.ID)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Student removed from group"})
}

// findGroup ищет группу по {id} из пути и сам пишет ответ при ошибке
func (h *GroupHandler) findGroup(w http.ResponseWriter, r *http.Request) (models.Group, bool) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "Invalid group ID")
		return models.Group{}, false
	}

	var group models.Group
	if err := h.db.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Group not found")
			return models.Group{}, false
		}
		log.Printf("❌ Error checking group existence: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return models.Group{}, false
	}

	return group, true
}
