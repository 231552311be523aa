package repository

import (
	"fmt"

	"has-many-polymorphic/internal/database/models"
	apperrors "has-many-polymorphic/internal/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnimalRepository handles database operations for every animal table
type AnimalRepository struct {
	db *gorm.DB
}

// Ensure AnimalRepository implements AnimalRepositoryInterface
var _ AnimalRepositoryInterface = (*AnimalRepository)(nil)

// NewAnimalRepository creates a new animal repository
func NewAnimalRepository(db *gorm.DB) *AnimalRepository {
	return &AnimalRepository{db: db}
}

// Create creates a new animal in its kind's table
func (r *AnimalRepository) Create(animal models.Animal) error {
	return r.db.Create(animal).Error
}

// GetByID retrieves an animal of the given kind by ID
func (r *AnimalRepository) GetByID(kind models.AnimalKind, id uuid.UUID) (models.Animal, error) {
	animal, err := newAnimal(kind)
	if err != nil {
		return nil, err
	}
	if err := r.db.First(animal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return animal, nil
}

// GetByName retrieves an animal of the given kind by name
func (r *AnimalRepository) GetByName(kind models.AnimalKind, name string) (models.Animal, error) {
	animal, err := newAnimal(kind)
	if err != nil {
		return nil, err
	}
	if err := r.db.First(animal, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return animal, nil
}

// Delete loads and deletes an animal so its zoo links are removed with it
func (r *AnimalRepository) Delete(kind models.AnimalKind, id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		animal, err := newAnimal(kind)
		if err != nil {
			return err
		}
		if err := tx.First(animal, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(animal).Error
	})
}

func newAnimal(kind models.AnimalKind) (models.Animal, error) {
	animal, ok := models.NewAnimal(kind)
	if !ok {
		return nil, fmt.Errorf("%q: %w", kind, apperrors.ErrUnknownAnimalKind)
	}
	return animal, nil
}
