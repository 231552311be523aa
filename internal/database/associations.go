package database

import (
	"context"
	"fmt"

	"has-many-polymorphic/internal/association"
	"has-many-polymorphic/internal/database/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ZooAnimalsName is the name of the zoo animals collection.
const ZooAnimalsName = "animals"

// ZooAnimals declares the polymorphic association between a zoo and its
// bears, birds and monkeys, linked through zoo_animals.
func ZooAnimals() association.Definition {
	members := make([]association.Member, 0, len(models.AnimalKinds))
	for _, kind := range models.AnimalKinds {
		model, _ := models.NewAnimal(kind)
		members = append(members, association.Member{Model: model, Accessor: kind.Accessor()})
	}
	return association.Definition{
		Name:          ZooAnimalsName,
		Owner:         &models.Zoo{},
		Through:       &models.ZooAnimal{},
		Members:       members,
		OwnerAccessor: "zoos",
	}
}

// Setup installs the association registry on db, registers the zoo animals
// association and creates its link index.
func Setup(ctx context.Context, db *gorm.DB, validate *validator.Validate) (*association.Registry, *association.Association, error) {
	registry, err := association.NewRegistry(db, validate)
	if err != nil {
		return nil, nil, err
	}
	animals, err := registry.Register(ZooAnimals())
	if err != nil {
		return nil, nil, fmt.Errorf("register zoo animals: %w", err)
	}
	if err := registry.Migrate(ctx); err != nil {
		return nil, nil, err
	}
	return registry, animals, nil
}
