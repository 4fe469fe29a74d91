package database

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/CantarellH/distribuidora-api-sub001/models"
)

var DB *gorm.DB

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Connect opens the shared Postgres connection. A missing .env file is not
// fatal; plain environment variables work too.
func Connect() error {
	_ = godotenv.Load()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		envDefault("DB_HOST", "db"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		envDefault("DB_PORT", "5432"),
		envDefault("DB_SSLMODE", "disable"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	DB = db
	return nil
}

// Migrate applies idempotent schema migrations: AutoMigrate, money/weight
// column types, and basic CHECK constraints.
func Migrate() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&models.User{},
			&models.Client{},
			&models.Supplier{},
			&models.EggType{},
			&models.InventoryEntry{},
			&models.Remission{},
			&models.RemissionDetail{},
			&models.BoxWeight{},
			&models.Payment{},
			&models.RemissionAudit{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		// Pin money and weight columns to NUMERIC(12,2).
		alters := []string{
			`ALTER TABLE remissions        ALTER COLUMN total_cost TYPE numeric(12,2)`,
			`ALTER TABLE remission_details ALTER COLUMN estimated_weight_per_box TYPE numeric(12,2)`,
			`ALTER TABLE remission_details ALTER COLUMN weight_total TYPE numeric(12,2)`,
			`ALTER TABLE remission_details ALTER COLUMN tara_total   TYPE numeric(12,2)`,
			`ALTER TABLE remission_details ALTER COLUMN net_weight   TYPE numeric(12,2)`,
			`ALTER TABLE remission_details ALTER COLUMN price_per_kg TYPE numeric(12,2)`,
			`ALTER TABLE remission_details ALTER COLUMN subtotal     TYPE numeric(12,2)`,
			`ALTER TABLE box_weights       ALTER COLUMN gross        TYPE numeric(12,2)`,
			`ALTER TABLE box_weights       ALTER COLUMN net          TYPE numeric(12,2)`,
			`ALTER TABLE payments          ALTER COLUMN amount       TYPE numeric(12,2)`,
			`ALTER TABLE inventory_entries ALTER COLUMN net_weight   TYPE numeric(12,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		checks := []string{
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'payments'::regclass
					  AND conname  = 'chk_payments_amount_positive'
				) THEN
					ALTER TABLE payments
					ADD CONSTRAINT chk_payments_amount_positive
					CHECK (amount > 0);
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'remission_details'::regclass
					  AND conname  = 'chk_remission_details_box_count_positive'
				) THEN
					ALTER TABLE remission_details
					ADD CONSTRAINT chk_remission_details_box_count_positive
					CHECK (box_count >= 1);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}
