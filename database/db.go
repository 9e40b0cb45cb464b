package database

import (
	"database/sql"
	"fmt"
	"log"

	"student-track-backend/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // драйвер PostgreSQL
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	// Сначала используем стандартный database/sql
	sqlDB, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Оборачиваем в sqlx и проверяем подключение
	dbx := sqlx.NewDb(sqlDB, "postgres")
	if err := dbx.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging database: %v", err)
	}

	// GORM поверх уже открытого соединения
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: dbx.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("error initializing GORM: %v", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("error migrating database: %v", err)
	}

	log.Println("✅ Successfully connected to PostgreSQL!")
	return db, nil
}
