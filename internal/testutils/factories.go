package testutils

import (
	"time"

	"has-many-polymorphic/internal/database/models"

	"github.com/google/uuid"
)

func newBase(name string) models.BaseModel {
	return models.BaseModel{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Name:      name,
	}
}

// ZooFactory provides methods to create test Zoo data
type ZooFactory struct{}

// NewZooFactory creates a new ZooFactory
func NewZooFactory() *ZooFactory {
	return &ZooFactory{}
}

// Create creates a test Zoo with default values
func (f *ZooFactory) Create() *models.Zoo {
	return &models.Zoo{
		BaseModel: newBase("Zoo Lander"),
		City:      "Springfield",
	}
}

// WithName sets a custom name for the zoo
func (f *ZooFactory) WithName(name string) *models.Zoo {
	zoo := f.Create()
	zoo.Name = name
	return zoo
}

// AnimalFactory provides methods to create test bears, birds and monkeys
type AnimalFactory struct{}

// NewAnimalFactory creates a new AnimalFactory
func NewAnimalFactory() *AnimalFactory {
	return &AnimalFactory{}
}

// Bear creates a test Bear
func (f *AnimalFactory) Bear(name string) *models.Bear {
	return &models.Bear{
		BaseModel: newBase(name),
		Species:   "grizzly",
	}
}

// Bird creates a test Bird without a subtype
func (f *AnimalFactory) Bird(name string) *models.Bird {
	return &models.Bird{
		BaseModel: newBase(name),
		Wingspan:  1.5,
	}
}

// Penguin creates a test Bird stored with the Penguin subtype
func (f *AnimalFactory) Penguin(name string) *models.Bird {
	bird := f.Bird(name)
	bird.Type = "Penguin"
	bird.Wingspan = 0.4
	return bird
}

// Monkey creates a test Monkey
func (f *AnimalFactory) Monkey(name string) *models.Monkey {
	return &models.Monkey{
		BaseModel: newBase(name),
		Troop:     "north",
	}
}

// Of creates a test animal of the given kind
func (f *AnimalFactory) Of(kind models.AnimalKind, name string) models.Animal {
	switch kind {
	case models.AnimalKindBear:
		return f.Bear(name)
	case models.AnimalKindBird:
		return f.Bird(name)
	case models.AnimalKindMonkey:
		return f.Monkey(name)
	}
	return nil
}
