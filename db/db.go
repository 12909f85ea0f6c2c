package db

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bookwise/config"
	"bookwise/models"
	"bookwise/workflow"
)

var DB *gorm.DB

func ConnectDB(cfg config.Config) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Book{},
		&models.BorrowRecord{},
		&models.FavoriteBook{},
		&workflow.Run{},
	); err != nil {
		return err
	}

	// At most one open request per (user, book)
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_pair
	  ON %s (user_id, book_id)
	  WHERE status IN ('PENDING', 'BORROWED');
	`, models.BorrowRecordTable, models.BorrowRecordTable)).Error; err != nil {
		return err
	}

	// The engine wakes runs by due time
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_due
	  ON %s (wake_at)
	  WHERE status = 'RUNNING';
	`, workflow.RunTable, workflow.RunTable)).Error; err != nil {
		return err
	}

	return nil
}
