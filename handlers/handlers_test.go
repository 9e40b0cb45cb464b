package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"student-track-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB поднимает чистую in-memory базу для одного теста
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}

	if err := db.AutoMigrate(&models.Group{}, &models.Student{}, &models.Payment{}); err != nil {
		t.Fatalf("migrating test schema: %v", err)
	}

	return db
}

// newTestRouter регистрирует маршруты без auth-цепочки: авторизация
// проверяется своими тестами в пакетах auth и middleware
func newTestRouter(db *gorm.DB, checkArrears bool) *mux.Router {
	groupHandler := NewGroupHandler(db)
	studentHandler := NewStudentHandler(db)
	paymentHandler := NewPaymentHandler(db, checkArrears)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/groups", groupHandler.GetGroups).Methods("GET")
	api.HandleFunc("/groups", groupHandler.CreateGroup).Methods("POST")
	api.HandleFunc("/groups/{id}", groupHandler.GetGroup).Methods("GET")
	api.HandleFunc("/groups/{id}", groupHandler.UpdateGroup).Methods("PATCH")
	api.HandleFunc("/groups/{id}", groupHandler.DeleteGroup).Methods("DELETE")
	api.HandleFunc("/groups/{id}/students", groupHandler.GetGroupStudents).Methods("GET")
	api.HandleFunc("/groups/{id}/students", groupHandler.AddStudentToGroup).Methods("POST")
	api.HandleFunc("/groups/{id}/students/{sid}", groupHandler.RemoveStudentFromGroup).Methods("DELETE")

	api.HandleFunc("/students", studentHandler.GetStudents).Methods("GET")
	api.HandleFunc("/students", studentHandler.CreateStudent).Methods("POST")
	api.HandleFunc("/students/{id}", studentHandler.GetStudent).Methods("GET")
	api.HandleFunc("/students/{id}", studentHandler.UpdateStudent).Methods("PATCH")
	api.HandleFunc("/students/{id}", studentHandler.DeleteStudent).Methods("DELETE")

	api.HandleFunc("/students/{id}/payments", paymentHandler.GetPayments).Methods("GET")
	api.HandleFunc("/students/{id}/payments", paymentHandler.CreatePayment).Methods("POST")
	api.HandleFunc("/students/{id}/payments/{pid}", paymentHandler.DeletePayment).Methods("DELETE")
	api.HandleFunc("/students/{id}/payment_status", paymentHandler.GetPaymentStatus).Methods("GET")

	return r
}

func doRequest(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := map[string]string{}
	decodeBody(t, rec, &body)
	return body["error"]
}

func createTestGroup(t *testing.T, db *gorm.DB, title string, cost int) models.Group {
	t.Helper()
	group := models.Group{Title: title, Cost: cost}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("creating test group: %v", err)
	}
	return group
}

func createTestStudent(t *testing.T, db *gorm.DB, name string) models.Student {
	t.Helper()
	student := models.Student{Name: name, Phone: "+7 900 123-45-67"}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("creating test student: %v", err)
	}
	return student
}

func enroll(t *testing.T, db *gorm.DB, group models.Group, student models.Student) {
	t.Helper()
	if err := db.Model(&group).Association("Students").Append(&student); err != nil {
		t.Fatalf("enrolling student: %v", err)
	}
}

func membershipCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Table("students_groups").Count(&count).Error; err != nil {
		t.Fatalf("counting memberships: %v", err)
	}
	return count
}
