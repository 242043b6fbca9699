package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/mailmerge/internal/domain/entity"
	"github.com/oksasatya/mailmerge/internal/domain/repository"
)

type OperatorRepository struct {
	pool *pgxpool.Pool
}

func NewOperatorRepository(pool *pgxpool.Pool) *OperatorRepository {
	return &OperatorRepository{pool: pool}
}

func (r *OperatorRepository) Create(ctx context.Context, o *entity.Operator) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO operators (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, o.Email, o.Password, o.Name)

	return row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *OperatorRepository) GetByID(ctx context.Context, id string) (*entity.Operator, error) {
	return r.getOne(ctx, `
		SELECT id, email, password_hash, name, created_at, updated_at
		FROM operators
		WHERE id = $1
	`, id)
}

func (r *OperatorRepository) GetByEmail(ctx context.Context, email string) (*entity.Operator, error) {
	return r.getOne(ctx, `
		SELECT id, email, password_hash, name, created_at, updated_at
		FROM operators
		WHERE email = $1
	`, email)
}

func (r *OperatorRepository) getOne(ctx context.Context, query string, arg any) (*entity.Operator, error) {
	o := &entity.Operator{}
	row := r.pool.QueryRow(ctx, query, arg)
	if err := row.Scan(&o.ID, &o.Email, &o.Password, &o.Name, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

var _ repository.OperatorRepository = (*OperatorRepository)(nil)
