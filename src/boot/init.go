package boot

import (
	"log"

	"estadia/src/db"
	"estadia/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.PropertyImage{},
		&models.Reserve{},
		&models.Payment{},
		&models.PropertyValuation{},
		&models.ClientValuation{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	installOverlapConstraint(db)

	return db
}

// installOverlapConstraint adds a commit-time exclusion constraint so two
// non-canceled reserves on the same property can never hold overlapping
// intervals, even under writers that bypass the application lock.
func installOverlapConstraint(db *gorm.DB) {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		log.Printf("could not enable btree_gist: %s\n", err.Error())
		return
	}
	err := db.Exec(`
	DO $$ BEGIN
		ALTER TABLE reserves ADD CONSTRAINT reserves_no_overlap
		EXCLUDE USING gist (
			property_id WITH =,
			tsrange(date_start, date_end) WITH &&
		) WHERE (status <> 'canceled' AND deleted_at IS NULL);
	EXCEPTION
		WHEN duplicate_object THEN NULL;
	END $$;
	`).Error
	if err != nil {
		log.Printf("could not install reserve overlap constraint: %s\n", err.Error())
	}
}
