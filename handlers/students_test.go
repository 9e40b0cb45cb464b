package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"student-track-backend/models"
)

func TestCreateStudent(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{
			name:       "valid student",
			body:       map[string]interface{}{"name": "Анна", "phone": "+7 900 123-45-67"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "blank name",
			body:       map[string]interface{}{"name": " ", "phone": "+7 900 123-45-67"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing phone",
			body:       map[string]interface{}{"name": "Анна"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(newTestDB(t), false)

			rec := doRequest(t, router, http.MethodPost, "/api/students", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}

			if tt.wantStatus == http.StatusCreated {
				var student models.Student
				decodeBody(t, rec, &student)
				if student.ID == 0 {
					t.Error("created student has no ID")
				}
			}
		})
	}
}

func TestUpdateStudent(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db, false)
	student := createTestStudent(t, db, "Анна")

	// Частичное обновление: только телефон
	rec := doRequest(t, router, http.MethodPatch, fmt.Sprintf("/api/students/%d", student.ID),
		map[string]interface{}{"phone": "+7 911 000-00-00"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var updated models.Student
	decodeBody(t, rec, &updated)
	if updated.Phone != "+7 911 000-00-00" {
		t.Errorf("phone = %q, want updated value", updated.Phone)
	}
	if updated.Name != "Анна" {
		t.Errorf("name = %q, want unchanged", updated.Name)
	}

	// Пустое имя отклоняется
	rec = doRequest(t, router, http.MethodPatch, fmt.Sprintf("/api/students/%d", student.ID),
		map[string]interface{}{"name": ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// Несуществующий студент
	rec = doRequest(t, router, http.MethodPatch, "/api/students/42",
		map[string]interface{}{"name": "Борис"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteStudentNotFound(t *testing.T) {
	router := newTestRouter(newTestDB(t), false)

	rec := doRequest(t, router, http.MethodDelete, "/api/students/42", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// Каскад затрагивает ровно одного студента: его платежи и членство
// удаляются, чужие остаются
func TestDeleteStudentCascade(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db, false)

	group := createTestGroup(t, db, "Математика", 100)
	victim := createTestStudent(t, db, "Анна")
	survivor := createTestStudent(t, db, "Борис")
	enroll(t, db, group, victim)
	enroll(t, db, group, survivor)

	now := time.Now().UTC()
	payments := []models.Payment{
		{Amount: 100, PaidAt: now, StudentID: victim.ID},
		{Amount: 50, PaidAt: now, StudentID: victim.ID},
		{Amount: 70, PaidAt: now, StudentID: survivor.ID},
	}
	for i := range payments {
		if err := db.Create(&payments[i]).Error; err != nil {
			t.Fatalf("creating test payment: %v", err)
		}
	}

	rec := doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/students/%d", victim.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var studentCount int64
	db.Model(&models.Student{}).Count(&studentCount)
	if studentCount != 1 {
		t.Errorf("student count = %d, want 1", studentCount)
	}

	var victimPayments int64
	db.Model(&models.Payment{}).Where("student_id = ?", victim.ID).Count(&victimPayments)
	if victimPayments != 0 {
		t.Errorf("victim payments left = %d, want 0", victimPayments)
	}

	var survivorPayments int64
	db.Model(&models.Payment{}).Where("student_id = ?", survivor.ID).Count(&survivorPayments)
	if survivorPayments != 1 {
		t.Errorf("survivor payments = %d, want 1", survivorPayments)
	}

	if count := membershipCount(t, db); count != 1 {
		t.Errorf("membership count = %d, want 1 (survivor only)", count)
	}
}

func TestGetStudent(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db, false)

	group := createTestGroup(t, db, "Математика", 100)
	student := createTestStudent(t, db, "Анна")
	enroll(t, db, group, student)

	rec := doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/students/%d", student.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var fetched models.Student
	decodeBody(t, rec, &fetched)
	if fetched.ID != student.ID {
		t.Errorf("id = %d, want %d", fetched.ID, student.ID)
	}
	if len(fetched.Groups) != 1 {
		t.Errorf("groups = %d, want 1", len(fetched.Groups))
	}

	rec = doRequest(t, router, http.MethodGet, "/api/students/42", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestStudentAlwaysSerializesLists(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db, false)

	student := createTestStudent(t, db, "Анна")

	// Студент без групп и платежей отдаёт пустые массивы, а не null
	rec := doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/students/%d", student.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &fields); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	for _, field := range []string{"groups", "payments"} {
		raw, ok := fields[field]
		if !ok {
			t.Fatalf("response has no %s field", field)
		}
		if string(raw) != "[]" {
			t.Errorf("%s = %s, want []", field, raw)
		}
	}

	rec = doRequest(t, router, http.MethodPost, "/api/students", map[string]string{"name": "Борис", "phone": "+7 900 000-00-00"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	var created map[string]json.RawMessage
	decodeBody(t, rec, &created)
	if string(created["groups"]) != "[]" || string(created["payments"]) != "[]" {
		t.Errorf("created student: groups = %s, payments = %s, want [] for both",
			created["groups"], created["payments"])
	}
}
