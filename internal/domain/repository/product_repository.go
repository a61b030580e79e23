package repository

import (
	"context"

	"github.com/jhoicas/branch-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product.
// Los Get* devuelven (nil, nil) cuando no existe el registro.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByBranchAndBarcode(ctx context.Context, branchID, barcode string) (*entity.Product, error)
	ListByBranch(ctx context.Context, branchID string, includeInactive bool) ([]*entity.Product, error)
	// SetDefaultUom reemplaza el default de venta (SALE) o compra (PURCHASE) en una sola escritura.
	SetDefaultUom(ctx context.Context, productID, purpose string, productUomID *string) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}
