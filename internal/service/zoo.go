package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"has-many-polymorphic/internal/association"
	"has-many-polymorphic/internal/database/models"
	apperrors "has-many-polymorphic/internal/errors"
	"has-many-polymorphic/internal/logger"
	"has-many-polymorphic/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ZooService handles business logic for zoos and the animals they hold
type ZooService struct {
	zoos      repository.ZooRepositoryInterface
	animals   repository.AnimalRepositoryInterface
	link      *association.Association
	validator *validator.Validate
}

// Ensure ZooService implements ZooServiceInterface
var _ ZooServiceInterface = (*ZooService)(nil)

// NewZooService creates a new zoo service. link is the zoo animals association.
func NewZooService(zoos repository.ZooRepositoryInterface, animals repository.AnimalRepositoryInterface, link *association.Association, validator *validator.Validate) *ZooService {
	return &ZooService{
		zoos:      zoos,
		animals:   animals,
		link:      link,
		validator: validator,
	}
}

// CreateZooRequest represents the request to create a zoo
type CreateZooRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	City string `json:"city,omitempty" validate:"max=100"`
}

// CreateAnimalRequest represents the request to create a bear, bird or monkey.
// Species applies to bears, Type and Wingspan to birds, Troop to monkeys.
type CreateAnimalRequest struct {
	Kind     models.AnimalKind `json:"kind" validate:"required,oneof=bear bird monkey"`
	Name     string            `json:"name" validate:"required,min=1,max=100"`
	Species  string            `json:"species,omitempty" validate:"max=100"`
	Type     string            `json:"type,omitempty" validate:"max=40"`
	Wingspan float64           `json:"wingspan,omitempty" validate:"gte=0"`
	Troop    string            `json:"troop,omitempty" validate:"max=100"`
}

// AnimalRef identifies one animal across the animal tables
type AnimalRef struct {
	Kind models.AnimalKind `json:"kind" validate:"required,oneof=bear bird monkey"`
	ID   uuid.UUID         `json:"id" validate:"required"`
}

// AddAnimalsRequest represents the request to link animals to a zoo
type AddAnimalsRequest struct {
	Animals []AnimalRef `json:"animals" validate:"required,min=1,dive"`
}

// ZooResponse represents the response for zoo operations
type ZooResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

// ZooListResponse represents a paginated list of zoos
type ZooListResponse struct {
	Zoos     []ZooResponse `json:"zoos"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// AnimalResponse represents one animal. Type is the name the animal is linked
// with, e.g. "Penguin" for a bird stored with that subtype.
type AnimalResponse struct {
	ID       uuid.UUID         `json:"id"`
	Kind     models.AnimalKind `json:"kind"`
	Type     string            `json:"type"`
	Name     string            `json:"name"`
	Species  string            `json:"species,omitempty"`
	Wingspan float64           `json:"wingspan,omitempty"`
	Troop    string            `json:"troop,omitempty"`
}

// ZooAnimalsResponse represents the merged animals collection of a zoo
type ZooAnimalsResponse struct {
	Zoo     ZooResponse      `json:"zoo"`
	Animals []AnimalResponse `json:"animals"`
	Total   int              `json:"total"`
}

// CreateZoo creates a new zoo
func (s *ZooService) CreateZoo(req *CreateZooRequest) (*ZooResponse, error) {
	// Validate request
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Check if zoo with same name exists
	existing, err := s.zoos.GetByName(req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing zoo: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrZooExists
	}

	zoo := &models.Zoo{
		BaseModel: models.BaseModel{Name: req.Name},
		City:      req.City,
	}
	if err := s.zoos.Create(zoo); err != nil {
		return nil, fmt.Errorf("failed to create zoo: %w", err)
	}

	return toZooResponse(zoo), nil
}

// GetZoo retrieves a zoo by ID
func (s *ZooService) GetZoo(id uuid.UUID) (*ZooResponse, error) {
	zoo, err := s.getZoo(id)
	if err != nil {
		return nil, err
	}
	return toZooResponse(zoo), nil
}

// ListZoos retrieves all zoos with pagination
func (s *ZooService) ListZoos(page, pageSize int) (*ZooListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	zoos, total, err := s.zoos.GetAll(pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get zoos: %w", err)
	}

	responses := make([]ZooResponse, len(zoos))
	for i := range zoos {
		responses[i] = *toZooResponse(&zoos[i])
	}

	return &ZooListResponse{
		Zoos:     responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// CreateAnimal creates a bear, bird or monkey
func (s *ZooService) CreateAnimal(req *CreateAnimalRequest) (*AnimalResponse, error) {
	// Validate request
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := s.animals.GetByName(req.Kind, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing %s: %w", req.Kind, err)
	}
	if existing != nil {
		return nil, apperrors.ErrAnimalExists
	}

	var animal models.Animal
	base := models.BaseModel{Name: req.Name}
	switch req.Kind {
	case models.AnimalKindBear:
		animal = &models.Bear{BaseModel: base, Species: req.Species}
	case models.AnimalKindBird:
		animal = &models.Bird{BaseModel: base, Type: req.Type, Wingspan: req.Wingspan}
	case models.AnimalKindMonkey:
		animal = &models.Monkey{BaseModel: base, Troop: req.Troop}
	default:
		return nil, apperrors.ErrUnknownAnimalKind
	}

	if err := s.animals.Create(animal); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", req.Kind, err)
	}

	return s.toAnimalResponse(animal)
}

// AddAnimals links existing animals to a zoo and returns the number of new
// links. Animals already in the zoo are skipped.
func (s *ZooService) AddAnimals(ctx context.Context, zooID uuid.UUID, req *AddAnimalsRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}

	zoo, err := s.getZoo(zooID)
	if err != nil {
		return 0, err
	}
	collection, err := s.link.Bind(zoo)
	if err != nil {
		return 0, err
	}
	for _, ref := range req.Animals {
		animal, err := s.getAnimal(ref.Kind, ref.ID)
		if err != nil {
			return 0, err
		}
		if err := collection.Add(animal); err != nil {
			return 0, err
		}
	}

	created, err := collection.Flush(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to add animals to zoo: %w", err)
	}

	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"zoo_id":    zooID,
		"requested": len(req.Animals),
		"created":   created,
	}).Infof("Added animals to zoo %s", zoo.Name)
	return created, nil
}

// ListAnimals returns the merged animals collection of a zoo: bears, then
// birds, then monkeys.
func (s *ZooService) ListAnimals(ctx context.Context, zooID uuid.UUID) (*ZooAnimalsResponse, error) {
	zoo, err := s.getZoo(zooID)
	if err != nil {
		return nil, err
	}
	collection, err := s.link.Bind(zoo)
	if err != nil {
		return nil, err
	}
	records, err := collection.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list zoo animals: %w", err)
	}

	animals := make([]AnimalResponse, 0, len(records))
	for _, rec := range records {
		animal, ok := rec.Value.(models.Animal)
		if !ok {
			return nil, fmt.Errorf("unexpected member %T in zoo animals", rec.Value)
		}
		animals = append(animals, newAnimalResponse(animal, rec.Type))
	}

	return &ZooAnimalsResponse{
		Zoo:     *toZooResponse(zoo),
		Animals: animals,
		Total:   len(animals),
	}, nil
}

// ListAnimalsByKind returns the animals of one kind held by a zoo
func (s *ZooService) ListAnimalsByKind(ctx context.Context, zooID uuid.UUID, kind models.AnimalKind) ([]AnimalResponse, error) {
	zoo, err := s.getZoo(zooID)
	if err != nil {
		return nil, err
	}
	collection, err := s.link.Bind(zoo)
	if err != nil {
		return nil, err
	}

	var animals []models.Animal
	switch kind {
	case models.AnimalKindBear:
		animals, err = membersOf[models.Bear](ctx, collection, kind)
	case models.AnimalKindBird:
		animals, err = membersOf[models.Bird](ctx, collection, kind)
	case models.AnimalKindMonkey:
		animals, err = membersOf[models.Monkey](ctx, collection, kind)
	default:
		return nil, apperrors.ErrUnknownAnimalKind
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list zoo %s: %w", kind.Accessor(), err)
	}

	responses := make([]AnimalResponse, 0, len(animals))
	for _, animal := range animals {
		resp, err := s.toAnimalResponse(animal)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

// ListZoosForAnimal returns every zoo an animal belongs to
func (s *ZooService) ListZoosForAnimal(ctx context.Context, kind models.AnimalKind, id uuid.UUID) ([]ZooResponse, error) {
	animal, err := s.getAnimal(kind, id)
	if err != nil {
		return nil, err
	}
	reverse, err := s.link.BindMember(animal)
	if err != nil {
		return nil, err
	}
	zoos, err := association.OwnersOf[models.Zoo](ctx, reverse)
	if err != nil {
		return nil, fmt.Errorf("failed to list zoos of %s: %w", kind, err)
	}

	responses := make([]ZooResponse, len(zoos))
	for i, zoo := range zoos {
		responses[i] = *toZooResponse(zoo)
	}
	return responses, nil
}

// DeleteZoo deletes a zoo together with its animal links
func (s *ZooService) DeleteZoo(id uuid.UUID) error {
	if err := s.zoos.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrZooNotFound
		}
		return fmt.Errorf("failed to delete zoo: %w", err)
	}
	return nil
}

// DeleteAnimal deletes an animal together with its zoo links
func (s *ZooService) DeleteAnimal(kind models.AnimalKind, id uuid.UUID) error {
	if _, ok := models.NewAnimal(kind); !ok {
		return apperrors.ErrUnknownAnimalKind
	}
	if err := s.animals.Delete(kind, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAnimalNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return nil
}

func (s *ZooService) getZoo(id uuid.UUID) (*models.Zoo, error) {
	zoo, err := s.zoos.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrZooNotFound
		}
		return nil, fmt.Errorf("failed to get zoo: %w", err)
	}
	return zoo, nil
}

func (s *ZooService) getAnimal(kind models.AnimalKind, id uuid.UUID) (models.Animal, error) {
	if _, ok := models.NewAnimal(kind); !ok {
		return nil, apperrors.ErrUnknownAnimalKind
	}
	animal, err := s.animals.GetByID(kind, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAnimalNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}
	return animal, nil
}

func (s *ZooService) toAnimalResponse(animal models.Animal) (*AnimalResponse, error) {
	typ, err := s.link.TypeOf(animal)
	if err != nil {
		return nil, err
	}
	resp := newAnimalResponse(animal, typ)
	return &resp, nil
}

// membersOf loads one filtered collection as animals
func membersOf[T any](ctx context.Context, c *association.Collection, kind models.AnimalKind) ([]models.Animal, error) {
	items, err := association.Members[T](ctx, c, kind.Accessor())
	if err != nil {
		return nil, err
	}
	animals := make([]models.Animal, 0, len(items))
	for _, item := range items {
		animal, ok := any(item).(models.Animal)
		if !ok {
			return nil, fmt.Errorf("%T is not an animal", item)
		}
		animals = append(animals, animal)
	}
	return animals, nil
}

func newAnimalResponse(animal models.Animal, typ string) AnimalResponse {
	resp := AnimalResponse{
		ID:   animal.GetID(),
		Kind: animal.Kind(),
		Type: typ,
		Name: animal.GetName(),
	}
	switch a := animal.(type) {
	case *models.Bear:
		resp.Species = a.Species
	case *models.Bird:
		resp.Wingspan = a.Wingspan
	case *models.Monkey:
		resp.Troop = a.Troop
	}
	return resp
}

func toZooResponse(zoo *models.Zoo) *ZooResponse {
	return &ZooResponse{
		ID:        zoo.ID,
		Name:      zoo.Name,
		City:      zoo.City,
		CreatedAt: zoo.CreatedAt.Format(time.RFC3339),
		UpdatedAt: zoo.UpdatedAt.Format(time.RFC3339),
	}
}
