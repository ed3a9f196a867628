package repository

import (
	"context"
	"database/sql"
	"errors"

	db "github.com/Swyp/Swyp-Backend/db/sqlc"
	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/internal/payment/mapper"
)

type SQLMerchantRepository struct {
	queries *db.Queries
}

func NewSQLMerchantRepository(queries *db.Queries) *SQLMerchantRepository {
	return &SQLMerchantRepository{queries: queries}
}

func (r *SQLMerchantRepository) GetMerchant(ctx context.Context, id int64) (*domain.Merchant, error) {
	row, err := r.queries.GetMerchant(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMerchantNotFound
	} else if err != nil {
		return nil, err
	}
	return mapper.ToMerchant(&row)
}
