package repository

import (
	"context"

	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductUomRepository define el puerto de persistencia para las unidades de un producto.
type ProductUomRepository interface {
	Create(ctx context.Context, pu *entity.ProductUom) error
	GetByID(ctx context.Context, id string) (*entity.ProductUom, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.ProductUom, error)
	// UpdateFactor cambia el factor vigente; las líneas históricas conservan su FactorUsed.
	UpdateFactor(ctx context.Context, id string, factor decimal.Decimal) error
	DeleteByProduct(ctx context.Context, productID string) error
}
