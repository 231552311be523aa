package service

import (
	"context"

	"has-many-polymorphic/internal/database/models"

	"github.com/google/uuid"
)

// ZooServiceInterface defines the interface for the zoo service
type ZooServiceInterface interface {
	CreateZoo(req *CreateZooRequest) (*ZooResponse, error)
	GetZoo(id uuid.UUID) (*ZooResponse, error)
	ListZoos(page, pageSize int) (*ZooListResponse, error)
	CreateAnimal(req *CreateAnimalRequest) (*AnimalResponse, error)
	AddAnimals(ctx context.Context, zooID uuid.UUID, req *AddAnimalsRequest) (int64, error)
	ListAnimals(ctx context.Context, zooID uuid.UUID) (*ZooAnimalsResponse, error)
	ListAnimalsByKind(ctx context.Context, zooID uuid.UUID, kind models.AnimalKind) ([]AnimalResponse, error)
	ListZoosForAnimal(ctx context.Context, kind models.AnimalKind, id uuid.UUID) ([]ZooResponse, error)
	DeleteZoo(id uuid.UUID) error
	DeleteAnimal(kind models.AnimalKind, id uuid.UUID) error
}
