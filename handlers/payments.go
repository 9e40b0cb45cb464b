package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"student-track-backend/billing"
	"student-track-backend/models"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	db           *gorm.DB
	checkArrears bool
}

func NewPaymentHandler(db *gorm.DB, checkArrears bool) *PaymentHandler {
	return &PaymentHandler{
		db:           db,
		checkArrears: checkArrears,
	}
}

func (h *PaymentHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	student, ok := h.findStudent(w, r)
	if !ok {
		return
	}

	payments := []models.Payment{}
	if err := h.db.Where("student_id = ?", student.ID).Order("paid_at ASC").Find(&payments).Error; err != nil {
		log.Printf("❌ Error fetching payments for student %d: %v", student.ID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, payments)
}

func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	student, ok := h.findStudent(w, r)
	if !ok {
		return
	}

	var createReq struct {
		Amount *int `json:"amount"`
	}

	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		log.Printf("❌ Error decoding request body: %v", err)
		respondError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON format")
		return
	}

	if createReq.Amount == nil {
		respondError(w, http.StatusBadRequest, "validation_error", "Amount is required")
		return
	}

	if *createReq.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "Amount must be a positive integer")
		return
	}

	totalCost, err := h.studentGroupCost(student.ID)
	if err != nil {
		log.Printf("❌ Error computing group cost for student %d: %v", student.ID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	payment := models.Payment{
		Amount:    *createReq.Amount,
		PaidAt:    time.Now().UTC(),
		GroupCost: totalCost,
		StudentID: student.ID,
	}

	if err := h.db.Create(&payment).Error; err != nil {
		log.Printf("❌ Database error creating payment: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to create payment in database")
		return
	}

	log.Printf("✅ Payment of %d recorded for student %d", payment.Amount, student.ID)
	respondJSON(w, http.StatusCreated, payment)
}

func (h *PaymentHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	student, ok := h.findStudent(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	paymentID, err := strconv.Atoi(vars["pid"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "Invalid payment ID")
		return
	}

	// Платеж должен принадлежать именно этому студенту
	var payment models.Payment
	if err := h.db.Where("id = ? AND student_id = ?", paymentID, student.ID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Payment not found")
			return
		}
		log.Printf("❌ Error checking payment existence: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	if err := h.db.Delete(&payment).Error; err != nil {
		log.Printf("❌ Error deleting payment: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	log.Printf("🗑️ Payment %d deleted for student %d", payment.ID, student.ID)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Payment deleted"})
}

func (h *PaymentHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	student, ok := h.findStudent(w, r)
	if !ok {
		return
	}

	totalCost, err := h.studentGroupCost(student.ID)
	if err != nil {
		log.Printf("❌ Error computing group cost for student %d: %v", student.ID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	var payments []models.Payment
	if err := h.db.Where("student_id = ?", student.ID).Find(&payments).Error; err != nil {
		log.Printf("❌ Error fetching payments for student %d: %v", student.ID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	result := billing.Evaluate(totalCost, payments, time.Now().UTC(), h.checkArrears)
	respondJSON(w, http.StatusOK, result)
}

// studentGroupCost считает суммарную стоимость текущих групп студента
func (h *PaymentHandler) studentGroupCost(studentID uint) (int, error) {
	var totalCost int
	err := h.db.Model(&models.Group{}).
		Joins("JOIN students_groups sg ON sg.group_id = groups.id").
		Where("sg.student_id = ?", studentID).
		Select("COALESCE(SUM(groups.cost), 0)").
		Scan(&totalCost).Error
	return totalCost, err
}

func (h *PaymentHandler) findStudent(w http.ResponseWriter, r *http.Request) (models.Student, bool) {
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
