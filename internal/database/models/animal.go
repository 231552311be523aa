package models

import "github.com/google/uuid"

// AnimalKind identifies one of the animal tables
type AnimalKind string

const (
	AnimalKindBear   AnimalKind = "bear"
	AnimalKindBird   AnimalKind = "bird"
	AnimalKindMonkey AnimalKind = "monkey"
)

// AnimalKinds lists every supported kind in declaration order
var AnimalKinds = []AnimalKind{AnimalKindBear, AnimalKindBird, AnimalKindMonkey}

// Animal is implemented by every model that can live in a zoo
type Animal interface {
	GetID() uuid.UUID
	GetName() string
	Kind() AnimalKind
}

// Bear is a member of the zoo animals collection
type Bear struct {
	BaseModel
	Species string `json:"species" gorm:"size:100" validate:"max=100"`
}

// Bird is a member of the zoo animals collection. Type is a single-table
// inheritance discriminator: a bird with Type "Penguin" is linked as a Penguin.
type Bird struct {
	BaseModel
	Type     string  `json:"type" gorm:"size:40" validate:"max=40"`
	Wingspan float64 `json:"wingspan"`
}

// Monkey is a member of the zoo animals collection
type Monkey struct {
	BaseModel
	Troop string `json:"troop" gorm:"size:100" validate:"max=100"`
}

// TableName returns the table name for Bear
func (Bear) TableName() string { return "bears" }

// TableName returns the table name for Bird
func (Bird) TableName() string { return "birds" }

// TableName returns the table name for Monkey
func (Monkey) TableName() string { return "monkeys" }

func (b *Bear) GetID() uuid.UUID { return b.ID }
func (b *Bear) GetName() string { return b.Name }
func (b *Bear) Kind() AnimalKind { return AnimalKindBear }
func (b *Bird) GetID() uuid.UUID { return b.ID }
func (b *Bird) GetName() string { return b.Name }
func (b *Bird) Kind() AnimalKind { return AnimalKindBird }
func (m *Monkey) GetID() uuid.UUID { return m.ID }
func (m *Monkey) GetName() string { return m.Name }
func (m *Monkey) Kind() AnimalKind { return AnimalKindMonkey }

// NewAnimal returns a pointer to an empty model of the given kind
func NewAnimal(kind AnimalKind) (Animal, bool) {
	switch kind {
	case AnimalKindBear:
		return &Bear{}, true
	case AnimalKindBird:
		return &Bird{}, true
	case AnimalKindMonkey:
		return &Monkey{}, true
	}
	return nil, false
}

// Accessor returns the zoo-side collection name for the kind, e.g. "bears"
func (k AnimalKind) Accessor() string {
	return string(k) + "s"
}
