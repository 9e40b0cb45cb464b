package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"student-track-backend/auth"
	"student-track-backend/config"
	"student-track-backend/database"
	"student-track-backend/handlers"
	"student-track-backend/middleware"

	"github.com/gorilla/mux"
)

func main() {
	log.Println("🚀 Starting Student Track Backend Server...")

	// Загрузка конфигурации
	cfg := config.Load()
	log.Printf("📋 Configuration loaded: Server Port %s", cfg.ServerPort)

	// Инициализация подключения к базе данных
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatal("❌ Error initializing database:", err)
	}

	// Получаем низкоуровневое соединение для закрытия
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("❌ Error getting SQL DB:", err)
	}
	defer sqlDB.Close()

	// Инициализация верификатора токенов
	jwksURL := "https://" + cfg.Auth0Domain + "/.well-known/jwks.json"
	jwksClient := auth.NewJWKSClient(jwksURL, cfg.JWKSCacheTTL, cfg.JWKSFetchTimeout)
	verifier := auth.NewVerifier(cfg.Auth0Domain, cfg.APIAudience, cfg.Algorithms, jwksClient)

	// Инициализация middleware
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	// Инициализация обработчиков
	groupHandler := handlers.NewGroupHandler(db)
	studentHandler := handlers.NewStudentHandler(db)
	paymentHandler := handlers.NewPaymentHandler(db, cfg.BillingCheckArrears)

	// Создание роутера
	r := mux.NewRouter()

	// Добавление middleware CORS для всех маршрутов
	r.Use(middleware.CORS(cfg.AllowedOrigin))
	r.Use(loggingMiddleware)

	// Маршруты
	setupRoutes(r, groupHandler, studentHandler, paymentHandler, authMiddleware)

	serverAddr := ":" + cfg.ServerPort
	log.Printf("✅ Server successfully started on %s", serverAddr)
	log.Printf("🌐 Available at: http://localhost%s", serverAddr)
	log.Printf("🔐 Token issuer: https://%s/ (audience: %s)", cfg.Auth0Domain, cfg.APIAudience)

	log.Fatal(http.ListenAndServe(serverAddr, r))
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Создаем обертку для response writer для захвата статуса
		rw := &responseWriter{w, http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Printf("📨 %s %s - %d (%v)", r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func setupRoutes(r *mux.Router, groupHandler *handlers.GroupHandler,
	studentHandler *handlers.StudentHandler,
	paymentHandler *handlers.PaymentHandler,
	authMiddleware *middleware.AuthMiddleware) {

	// Верификация токена на корневом роутере: публичные маршруты
	// пропускаются внутри Authenticate, остальные требуют Bearer-токен,
	// затем проверяется разрешение конкретной операции
	r.Use(authMiddleware.Authenticate)

	api := r.PathPrefix("/api").Subrouter()

	// Группы
	api.HandleFunc("/groups", middleware.RequirePermission("get:groups", groupHandler.GetGroups)).Methods("GET")
	api.HandleFunc("/groups", middleware.RequirePermission("create:group", groupHandler.CreateGroup)).Methods("POST")
	api.HandleFunc("/groups/{id}", middleware.RequirePermission("get:groups", groupHandler.GetGroup)).Methods("GET")
	api.HandleFunc("/groups/{id}", middleware.RequirePermission("patch:group", groupHandler.UpdateGroup)).Methods("PATCH")
	api.HandleFunc("/groups/{id}", middleware.RequirePermission("delete:group", groupHandler.DeleteGroup)).Methods("DELETE")
	api.HandleFunc("/groups/{id}/students", middleware.RequirePermission("get:students", groupHandler.GetGroupStudents)).Methods("GET")
	api.HandleFunc("/groups/{id}/students", middleware.RequirePermission("add:student_to_group", groupHandler.AddStudentToGroup)).Methods("POST")
	api.HandleFunc("/groups/{id}/students/{sid}", middleware.RequirePermission("remove:student_from_group", groupHandler.RemoveStudentFromGroup)).Methods("DELETE")

	// Студенты
	api.HandleFunc("/students", middleware.RequirePermission("get:students", studentHandler.GetStudents)).Methods("GET")
	api.HandleFunc("/students", middleware.RequirePermission("create:student", studentHandler.CreateStudent)).Methods("POST")
	api.HandleFunc("/students/{id}", middleware.RequirePermission("get:students", studentHandler.GetStudent)).Methods("GET")
	api.HandleFunc("/students/{id}", middleware.RequirePermission("patch:student", studentHandler.UpdateStudent)).Methods("PATCH")
	api.HandleFunc("/students/{id}", middleware.RequirePermission("delete:student", studentHandler.DeleteStudent)).Methods("DELETE")

	// Платежи и статус оплаты
	api.HandleFunc("/students/{id}/payments", middleware.RequirePermission("get:payments", paymentHandler.GetPayments)).Methods("GET")
	api.HandleFunc("/students/{id}/payments", middleware.RequirePermission("create:payment", paymentHandler.CreatePayment)).Methods("POST")
	api.HandleFunc("/students/{id}/payments/{pid}", middleware.RequirePermission("delete:payment", paymentHandler.DeletePayment)).Methods("DELETE")
	api.HandleFunc("/students/{id}/payment_status", middleware.RequirePermission("get:payment_status", paymentHandler.GetPaymentStatus)).Methods("GET")

	// Публичные маршруты (без API префикса)
	r.HandleFunc("/", rootHandler).Methods("GET")
	r.HandleFunc("/health", healthHandler).Methods("GET")

	// OPTIONS handlers для всех маршрутов
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Accept, Origin")
		w.WriteHeader(http.StatusOK)
	})
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `
<!DOCTYPE html>
<html>
<head>
    <title>Student Track Backend API</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 0;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            display: flex;
            justify-content: center;
            align-items: center;
        }
        .container {
            background: white;
            padding: 3rem;
            border-radius: 15px;
            box-shadow: 0 10px 30px rgba(0,0,0,0.2);
            text-align: center;
            max-width: 600px;
        }
        h1 {
            color: #333;
            margin-bottom: 1.5rem;
        }
        .status {
            background: #4CAF50;
            color: white;
            padding: 0.5rem 1rem;
            border-radius: 25px;
            display: inline-block;
            margin-bottom: 1rem;
        }
        .tech {
            background: #f8f9fa;
            padding: 1rem;
            border-radius: 10px;
            margin: 1rem 0;
        }
        .endpoints {
            text-align: left;
            background: #f1f3f4;
            padding: 1rem;
            border-radius: 8px;
            margin-top: 1rem;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>🎓 Student Track Backend API</h1>
        <div class="status">✅ Сервер работает корректно</div>
        <div class="tech">
            <p><strong>ORM:</strong> GORM</p>
            <p><strong>Database:</strong> PostgreSQL</p>
            <p><strong>Authentication:</strong> JWT (RS256, remote JWKS)</p>
            <p><strong>Authorization:</strong> permission claims per operation</p>
        </div>
        <div class="endpoints">
            <p><strong>Protected Endpoints (Authorization: Bearer &lt;token&gt;):</strong></p>
            <ul>
                <li><code>GET /api/groups</code> - List groups</li>
                <li><code>POST /api/groups</code> - Create group</li>
                <li><code>PATCH /api/groups/{id}</code> - Update group title/cost</li>
                <li><code>DELETE /api/groups/{id}</code> - Delete empty group</li>
                <li><code>POST /api/groups/{id}/students</code> - Add student to group</li>
                <li><code>DELETE /api/groups/{id}/students/{sid}</code> - Remove student from group</li>
                <li><code>GET /api/students</code> - List students</li>
                <li><code>POST /api/students</code> - Create student</li>
                <li><code>PATCH /api/students/{id}</code> - Update student</li>
                <li><code>DELETE /api/students/{id}</code> - Delete student with payments</li>
                <li><code>POST /api/students/{id}/payments</code> - Record payment</li>
                <li><code>DELETE /api/students/{id}/payments/{pid}</code> - Delete payment</li>
                <li><code>GET /api/students/{id}/payment_status</code> - Billing status</li>
            </ul>
        </div>
    </div>
</body>
</html>`
	w.Write([]byte(html))
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	response := map[string]interface{}{
		"status":    "ok",
		"service":   "student-track-backend",
		"orm":       "GORM",
		"auth":      "JWT",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	json.NewEncoder(w).Encode(response)
}
