package repository

import (
	"has-many-polymorphic/internal/database/models"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/repository_mocks.go -package=mocks

// ZooRepositoryInterface defines the interface for zoo repository operations
type ZooRepositoryInterface interface {
	Create(zoo *models.Zoo) error
	GetByID(id uuid.UUID) (*models.Zoo, error)
	GetByName(name string) (*models.Zoo, error)
	GetAll(limit, offset int) ([]models.Zoo, int64, error)
	Update(zoo *models.Zoo) error
	Delete(id uuid.UUID) error
}

// AnimalRepositoryInterface defines the interface for operations on the
// bear, bird and monkey tables
type AnimalRepositoryInterface interface {
	Create(animal models.Animal) error
	GetByID(kind models.AnimalKind, id uuid.UUID) (models.Animal, error)
	GetByName(kind models.AnimalKind, name string) (models.Animal, error)
	Delete(kind models.AnimalKind, id uuid.UUID) error
}
