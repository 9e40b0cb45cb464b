package database

import (
	"log"
	"time"

	"student-track-backend/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	log.Println("🔄 Starting database migration...")

	// Сначала независимые таблицы, потом зависимые
	tables := []interface{}{
		&models.Group{},
		&models.Student{},
		&models.Payment{},
	}

	for _, table := range tables {
		if err := db.AutoMigrate(table); err != nil {
			log.Printf("❌ Error migrating table %T: %v", table, err)
			return err
		}
		log.Printf("✅ Created/Updated table for: %T", table)
	}

	// Создаем индексы вручную (если нужно)
	createIndexes(db)

	// Заполняем начальными данными
	if err := seedInitialData(db); err != nil {
		log.Printf("⚠️ Error seeding initial data: %v", err)
	}

	log.Println("✅ Database migration completed successfully!")
	return nil
}

func createIndexes(db *gorm.DB) {
	log.Println("📊 Creating indexes...")

	// Индексы для таблицы students
	db.Exec("CREATE INDEX IF NOT EXISTS idx_students_name ON students(name)")

	// Индексы для таблицы payments
	db.Exec("CREATE INDEX IF NOT EXISTS idx_payments_student_id ON payments(student_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_payments_paid_at ON payments(paid_at)")

	log.Println("✅ Indexes created successfully!")
}

func seedInitialData(db *gorm.DB) error {
	log.Println("🌱 Seeding initial data...")

	// Проверяем, есть ли уже данные
	var groupCount int64
	db.Model(&models.Group{}).Count(&groupCount)

	if groupCount > 0 {
		log.Println("✅ Database already has data, skipping seed")
		return nil
	}

	// Создаем группы
	groups := []models.Group{
		{Title: "Информатика 101", Cost: 100},
		{Title: "Математика 201", Cost: 150},
		{Title: "Физика 301", Cost: 120},
	}

	for i := range groups {
		if err := db.Create(&groups[i]).Error; err != nil {
			log.Printf("❌ Error creating group: %v", err)
			return err
		}
	}

	// Создаем тестового студента в первой группе
	student := models.Student{
		Name:  "Иван Иванов",
		Phone: "+7 900 000-00-00",
	}

	if err := db.Create(&student).Error; err != nil {
		log.Printf("❌ Error creating student: %v", err)
		return err
	}

	if err := db.Model(&student).Association("Groups").Append(&groups[0]); err != nil {
		log.Printf("❌ Error adding student to group: %v", err)
		return err
	}

	// Первый платеж за текущий месяц
	payment := models.Payment{
		Amount:    groups[0].Cost,
		PaidAt:    time.Now().UTC(),
		GroupCost: groups[0].Cost,
		StudentID: student.ID,
	}

	if err := db.Create(&payment).Error; err != nil {
		log.Printf("❌ Error creating payment: %v", err)
		return err
	}

	log.Println("✅ Initial data seeded successfully!")
	return nil
}
