package db

import (
	"fmt"
	"log"
	"os"

	"school_library_backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
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
		&models.PersonType{},
		&models.Person{},
		&models.Resource{},
		&models.LoanStatus{},
		&models.Loan{},
	); err != nil {
		return err
	}

	// 0 <= current_loans_count <= total_quantity, enforced by the database
	// itself so no code path can over-commit stock.
	if err := db.Exec(fmt.Sprintf(`
	  ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s_stock_bounds;
	`, models.ResourceTable, models.ResourceTable)).Error; err != nil {
		return err
	}
	if err := db.Exec(fmt.Sprintf(`
	  ALTER TABLE %s ADD CONSTRAINT %s_stock_bounds
	  CHECK (current_loans_count >= 0 AND current_loans_count <= total_quantity AND total_quantity >= 1);
	`, models.ResourceTable, models.ResourceTable)).Error; err != nil {
		return err
	}

	// ISBN is unique only when present; resources without one all store ''.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_isbn_unique
	  ON %s (isbn)
	  WHERE isbn <> '';
	`, models.ResourceTable, models.ResourceTable)).Error; err != nil {
		return err
	}

	// Outstanding loans per person / per resource are the hot queries.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_person
	  ON %s (person_id)
	  WHERE returned_date IS NULL;
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_due
	  ON %s (due_date)
	  WHERE returned_date IS NULL;
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	return nil
}
