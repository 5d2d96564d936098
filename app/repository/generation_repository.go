package repository

import (
	"gorm.io/gorm"

	"github.com/shot2code/shot2code/app/models"
)

// generationRepository implements the GenerationRepository interface
type generationRepository struct {
	db *gorm.DB
}

// NewGenerationRepository creates a new generation repository instance
func NewGenerationRepository(db *gorm.DB) GenerationRepository {
	return &generationRepository{db: db}
}

// Create creates a new generation record in the database
func (r *generationRepository) Create(generation *models.Generation) error {
	return r.db.Create(generation).Error
}

// GetByUUID retrieves a generation by its UUID
func (r *generationRepository) GetByUUID(uuid string) (*models.Generation, error) {
	var generation models.Generation
	err := r.db.Where("uuid = ?", uuid).First(&generation).Error
	if err != nil {
		return nil, err
	}
	return &generation, nil
}

// GetByUserID retrieves a paginated list of a user's generations
func (r *generationRepository) GetByUserID(userID uint, offset, limit int) ([]models.Generation, error) {
	var generations []models.Generation
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&generations).Error
	return generations, err
}

// Update updates an existing generation record
func (r *generationRepository) Update(generation *models.Generation) error {
	return r.db.Save(generation).Error
}

// CountByUserID returns the number of generations owned by a user
func (r *generationRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Generation{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
