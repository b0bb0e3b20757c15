package repositories

import (
	"context"

	"inventory/internal/models"

	"github.com/google/uuid"
)

// OperatorRepository defines the interface for operator account data access.
type OperatorRepository interface {
	Create(ctx context.Context, operator *models.Operator) error
	GetByUsername(ctx context.Context, username string) (*models.Operator, error)
	GetByEmail(ctx context.Context, email string) (*models.Operator, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Operator, error)
}
