package repositories

import (
	"context"
	"errors"
	"fmt"

	"inventory/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOperatorRepository is a GORM implementation of OperatorRepository.
type GORMOperatorRepository struct {
	db *gorm.DB
}

// NewGORMOperatorRepository creates a new instance of GORMOperatorRepository.
func NewGORMOperatorRepository(db *gorm.DB) *GORMOperatorRepository {
	return &GORMOperatorRepository{db: db}
}

// Create stores a new operator, generating its ID when unset.
func (r *GORMOperatorRepository) Create(ctx context.Context, operator *models.Operator) error {
	if operator.ID == uuid.Nil {
		operator.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(operator).Error; err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}
	return nil
}

func (r *GORMOperatorRepository) GetByUsername(ctx context.Context, username string) (*models.Operator, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *GORMOperatorRepository) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *GORMOperatorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Operator, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GORMOperatorRepository) first(ctx context.Context, query string, arg any) (*models.Operator, error) {
	var operator models.Operator
	if err := r.db.WithContext(ctx).First(&operator, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("operator %v: %w", arg, ErrOperatorNotFound)
		}
		return nil, fmt.Errorf("failed to get operator %v: %w", arg, err)
	}
	return &operator, nil
}
