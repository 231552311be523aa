package repository

import (
	"has-many-polymorphic/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ZooRepository handles database operations for zoos
type ZooRepository struct {
	db *gorm.DB
}

// Ensure ZooRepository implements ZooRepositoryInterface
var _ ZooRepositoryInterface = (*ZooRepository)(nil)

// NewZooRepository creates a new zoo repository
func NewZooRepository(db *gorm.DB) *ZooRepository {
	return &ZooRepository{db: db}
}

// Create creates a new zoo
func (r *ZooRepository) Create(zoo *models.Zoo) error {
	return r.db.Create(zoo).Error
}

// GetByID retrieves a zoo by ID
func (r *ZooRepository) GetByID(id uuid.UUID) (*models.Zoo, error) {
	var zoo models.Zoo
	err := r.db.First(&zoo, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &zoo, nil
}

// GetByName retrieves a zoo by name
func (r *ZooRepository) GetByName(name string) (*models.Zoo, error) {
	var zoo models.Zoo
	err := r.db.First(&zoo, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &zoo, nil
}

// GetAll retrieves all zoos with pagination, ordered by name
func (r *ZooRepository) GetAll(limit, offset int) ([]models.Zoo, int64, error) {
	var zoos []models.Zoo
	var total int64

	// Count total
	if err := r.db.Model(&models.Zoo{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Fetch page
	if err := r.db.Limit(limit).Offset(offset).Order("name ASC").Find(&zoos).Error; err != nil {
		return nil, 0, err
	}

	return zoos, total, nil
}

// Update updates a zoo
func (r *ZooRepository) Update(zoo *models.Zoo) error {
	return r.db.Save(zoo).Error
}

// Delete deletes a zoo. The primary key is set on the model so the zoo's
// animal links are removed in the same transaction.
func (r *ZooRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.Zoo{BaseModel: models.BaseModel{ID: id}})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
