package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ZooAnimal is the through table of the zoo animals association. AnimalType
// holds the animal's type name and AnimalID its id in that type's table.
type ZooAnimal struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ZooID      uuid.UUID `json:"zoo_id" gorm:"type:uuid;not null;index"`
	AnimalType string    `json:"animal_type" gorm:"size:100;not null"`
	AnimalID   uuid.UUID `json:"animal_id" gorm:"type:uuid;not null;index"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the table name for ZooAnimal
func (ZooAnimal) TableName() string {
	return "zoo_animals"
}

// BeforeCreate sets the UUID if not already set
func (za *ZooAnimal) BeforeCreate(tx *gorm.DB) error {
	if za.ID == uuid.Nil {
		za.ID = uuid.New()
	}
	return nil
}
