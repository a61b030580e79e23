package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.UomRepository        = (*UomRepo)(nil)
	_ repository.ProductUomRepository = (*ProductUomRepo)(nil)
)

// UomRepo unidades de medida sobre PostgreSQL.
type UomRepo struct {
	q Querier
}

// NewUomRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUomRepository(q Querier) *UomRepo {
	return &UomRepo{q: q}
}

// Create persiste una unidad. Código repetido => domain.ErrDuplicate.
func (r *UomRepo) Create(ctx context.Context, u *entity.Uom) error {
	_, err := r.q.Exec(ctx, `INSERT INTO uoms (id, code, name) VALUES ($1, $2, $3)`, u.ID, u.Code, u.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert uom: %w", err)
	}
	return nil
}

// GetByID obtiene una unidad por ID.
func (r *UomRepo) GetByID(ctx context.Context, id string) (*entity.Uom, error) {
	return r.getOne(ctx, `SELECT id, code, name FROM uoms WHERE id = $1`, id)
}

// GetByCode obtiene una unidad por código.
func (r *UomRepo) GetByCode(ctx context.Context, code string) (*entity.Uom, error) {
	return r.getOne(ctx, `SELECT id, code, name FROM uoms WHERE code = $1`, code)
}

func (r *UomRepo) getOne(ctx context.Context, query, arg string) (*entity.Uom, error) {
	var u entity.Uom
	if err := r.q.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Code, &u.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get uom: %w", err)
	}
	return &u, nil
}

// List lista las unidades por código.
func (r *UomRepo) List(ctx context.Context) ([]*entity.Uom, error) {
	rows, err := r.q.Query(ctx, `SELECT id, code, name FROM uoms ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list uoms: %w", err)
	}
	defer rows.Close()
	var list []*entity.Uom
	for rows.Next() {
		var u entity.Uom
		if err := rows.Scan(&u.ID, &u.Code, &u.Name); err != nil {
			return nil, fmt.Errorf("scan uom: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

// ProductUomRepo unidades por producto sobre PostgreSQL.
type ProductUomRepo struct {
	q Querier
}

// NewProductUomRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductUomRepository(q Querier) *ProductUomRepo {
	return &ProductUomRepo{q: q}
}

// Create persiste la unidad del producto. (producto, unidad) repetido => domain.ErrDuplicate.
func (r *ProductUomRepo) Create(ctx context.Context, pu *entity.ProductUom) error {
	query := `
		INSERT INTO product_uoms (id, product_id, uom_id, factor_to_base, purpose, is_base)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, pu.ID, pu.ProductID, pu.UomID, pu.FactorToBase, pu.Purpose, pu.IsBase)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product uom: %w", err)
	}
	return nil
}

// GetByID obtiene la unidad del producto por ID.
func (r *ProductUomRepo) GetByID(ctx context.Context, id string) (*entity.ProductUom, error) {
	query := `SELECT id, product_id, uom_id, factor_to_base, purpose, is_base FROM product_uoms WHERE id = $1`
	var pu entity.ProductUom
	err := r.q.QueryRow(ctx, query, id).Scan(&pu.ID, &pu.ProductID, &pu.UomID, &pu.FactorToBase, &pu.Purpose, &pu.IsBase)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product uom: %w", err)
	}
	return &pu, nil
}

// ListByProduct lista las unidades del producto (base primero).
func (r *ProductUomRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.ProductUom, error) {
	query := `
		SELECT id, product_id, uom_id, factor_to_base, purpose, is_base
		FROM product_uoms WHERE product_id = $1
		ORDER BY is_base DESC, factor_to_base, id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list product uoms: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductUom
	for rows.Next() {
		var pu entity.ProductUom
		if err := rows.Scan(&pu.ID, &pu.ProductID, &pu.UomID, &pu.FactorToBase, &pu.Purpose, &pu.IsBase); err != nil {
			return nil, fmt.Errorf("scan product uom: %w", err)
		}
		list = append(list, &pu)
	}
	return list, rows.Err()
}

// UpdateFactor cambia el factor vigente; inventory_transaction_items.factor_used no se toca.
func (r *ProductUomRepo) UpdateFactor(ctx context.Context, id string, factor decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE product_uoms SET factor_to_base = $2 WHERE id = $1`, id, factor)
	if err != nil {
		return fmt.Errorf("update factor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByProduct elimina las unidades del producto.
func (r *ProductUomRepo) DeleteByProduct(ctx context.Context, productID string) error {
	// los defaults apuntan a estas filas
	if _, err := r.q.Exec(ctx, `UPDATE products SET default_sale_uom_id = NULL, default_purchase_uom_id = NULL WHERE id = $1`, productID); err != nil {
		return fmt.Errorf("clear default uoms: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM product_uoms WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete product uoms: %w", err)
	}
	return nil
}
