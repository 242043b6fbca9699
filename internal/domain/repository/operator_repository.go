package repository

import (
	"context"

	"github.com/oksasatya/mailmerge/internal/domain/entity"
)

// OperatorRepository defines the interface for operator account storage.
type OperatorRepository interface {
	Create(ctx context.Context, o *entity.Operator) error
	GetByID(ctx context.Context, id string) (*entity.Operator, error)
	GetByEmail(ctx context.Context, email string) (*entity.Operator, error)
}
