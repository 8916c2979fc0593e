package models

import "gorm.io/gorm"

// AutoMigrate creates or updates the tables owned by this service.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RMSDocument{},
		&RMSComment{},
		&RMSWorkflowLog{},
	)
}
