package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, branch_id, sku, barcode, name, base_uom_id, is_divisible,
		purchase_price, wholesale_price, retail_price, min_stock, is_active,
		default_sale_uom_id, default_purchase_uom_id, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.BranchID, p.SKU, p.Barcode, p.Name, p.BaseUomID, p.IsDivisible,
		p.PurchasePrice, p.WholesalePrice, p.RetailPrice, p.MinStock, p.IsActive,
		p.DefaultSaleUomID, p.DefaultPurchaseUomID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByBranchAndBarcode obtiene un producto por sucursal y código de barras.
func (r *ProductRepo) GetByBranchAndBarcode(ctx context.Context, branchID, barcode string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE branch_id = $1 AND barcode = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, branchID, barcode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by barcode: %w", err)
	}
	return p, nil
}

// ListByBranch lista los productos de la sucursal por nombre.
func (r *ProductRepo) ListByBranch(ctx context.Context, branchID string, includeInactive bool) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE branch_id = $1 AND (is_active OR $2)
		ORDER BY name, id`
	rows, err := r.q.Query(ctx, query, branchID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// SetDefaultUom reemplaza el default del propósito indicado en una sola sentencia.
func (r *ProductRepo) SetDefaultUom(ctx context.Context, productID, purpose string, productUomID *string) error {
	column := "default_sale_uom_id"
	if purpose == entity.UomPurposePurchase {
		column = "default_purchase_uom_id"
	}
	query := `UPDATE products SET ` + column + ` = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, productID, productUomID)
	if err != nil {
		return fmt.Errorf("set default uom: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetActive activa o desactiva (borrado lógico) el producto.
func (r *ProductRepo) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set product active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el producto (sus unidades caen por cascada).
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.BranchID, &p.SKU, &p.Barcode, &p.Name, &p.BaseUomID, &p.IsDivisible,
		&p.PurchasePrice, &p.WholesalePrice, &p.RetailPrice, &p.MinStock, &p.IsActive,
		&p.DefaultSaleUomID, &p.DefaultPurchaseUomID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
