package repository

import (
	"context"

	"github.com/jhoicas/branch-ledger/internal/domain/entity"
)

// UomRepository define el puerto de persistencia para unidades de medida.
type UomRepository interface {
	Create(ctx context.Context, uom *entity.Uom) error
	GetByID(ctx context.Context, id string) (*entity.Uom, error)
	GetByCode(ctx context.Context, code string) (*entity.Uom, error)
	List(ctx context.Context) ([]*entity.Uom, error)
}
