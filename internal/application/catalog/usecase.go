package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase catálogo de unidades y productos por sucursal.
// El stock no se toca aquí: solo vía el libro de inventario.
type ProductUseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repos
	now      func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner repository.TxRunner, repos repository.Repos) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, repos: repos, now: time.Now}
}

// CreateProductInput datos para crear un producto. BaseUomID es la unidad en que se cuenta el stock.
type CreateProductInput struct {
	BranchID       string
	SKU            string
	Barcode        string
	Name           string
	BaseUomID      string
	IsDivisible    bool
	PurchasePrice  decimal.Decimal
	WholesalePrice decimal.Decimal
	RetailPrice    decimal.Decimal
	MinStock       decimal.Decimal
}

// AddUomInput datos para asociar una unidad adicional a un producto.
type AddUomInput struct {
	ProductID    string
	UomID        string
	FactorToBase decimal.Decimal
	Purpose      string
}

// ProductUomView unidad del producto con sus marcas de default derivadas del producto.
type ProductUomView struct {
	entity.ProductUom
	UomCode           string
	IsDefaultSale     bool
	IsDefaultPurchase bool
}

// CreateUom registra una unidad de medida. El código es único.
func (uc *ProductUseCase) CreateUom(ctx context.Context, code, name string) (*entity.Uom, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.Invalid("code", "requerido")
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	existing, err := uc.repos.Uoms.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	u := &entity.Uom{ID: uuid.New().String(), Code: code, Name: name}
	if err := uc.repos.Uoms.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ListUoms lista las unidades de medida.
func (uc *ProductUseCase) ListUoms(ctx context.Context) ([]*entity.Uom, error) {
	return uc.repos.Uoms.List(ctx)
}

// CreateProduct crea el producto y su unidad base (factor 1, BOTH) en una sola transacción.
func (uc *ProductUseCase) CreateProduct(ctx context.Context, in CreateProductInput) (*entity.Product, error) {
	switch {
	case in.BranchID == "":
		return nil, domain.Invalid("branch_id", "requerido")
	case strings.TrimSpace(in.SKU) == "":
		return nil, domain.Invalid("sku", "requerido")
	case strings.TrimSpace(in.Name) == "":
		return nil, domain.Invalid("name", "requerido")
	case in.BaseUomID == "":
		return nil, domain.Invalid("base_uom_id", "requerido")
	}
	for field, v := range map[string]decimal.Decimal{
		"purchase_price":  in.PurchasePrice,
		"wholesale_price": in.WholesalePrice,
		"retail_price":    in.RetailPrice,
		"min_stock":       in.MinStock,
	} {
		if v.IsNegative() {
			return nil, domain.Invalid(field, "no puede ser negativo")
		}
	}

	now := uc.now()
	product := &entity.Product{
		ID:             uuid.New().String(),
		BranchID:       in.BranchID,
		SKU:            strings.TrimSpace(in.SKU),
		Barcode:        strings.TrimSpace(in.Barcode),
		Name:           strings.TrimSpace(in.Name),
		BaseUomID:      in.BaseUomID,
		IsDivisible:    in.IsDivisible,
		PurchasePrice:  in.PurchasePrice,
		WholesalePrice: in.WholesalePrice,
		RetailPrice:    in.RetailPrice,
		MinStock:       in.MinStock,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		uom, err := r.Uoms.GetByID(ctx, in.BaseUomID)
		if err != nil {
			return err
		}
		if uom == nil {
			return domain.Invalid("base_uom_id", "unidad desconocida")
		}
		if product.Barcode != "" {
			dup, err := r.Products.GetByBranchAndBarcode(ctx, in.BranchID, product.Barcode)
			if err != nil {
				return err
			}
			if dup != nil {
				return domain.ErrDuplicate
			}
		}
		if err := r.Products.Create(ctx, product); err != nil {
			return err
		}
		return r.ProductUoms.Create(ctx, &entity.ProductUom{
			ID:           uuid.New().String(),
			ProductID:    product.ID,
			UomID:        in.BaseUomID,
			FactorToBase: decimal.NewFromInt(1),
			Purpose:      entity.UomPurposeBoth,
			IsBase:       true,
		})
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct obtiene un producto por ID.
func (uc *ProductUseCase) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, err := uc.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// ListProductsByBranch lista productos de la sucursal; los inactivos solo si includeInactive.
func (uc *ProductUseCase) ListProductsByBranch(ctx context.Context, branchID string, includeInactive bool) ([]*entity.Product, error) {
	if branchID == "" {
		return nil, domain.Invalid("branch_id", "requerido")
	}
	return uc.repos.Products.ListByBranch(ctx, branchID, includeInactive)
}

// FindProductByBarcode busca por código de barras dentro de la sucursal. IsActive se devuelve tal cual.
func (uc *ProductUseCase) FindProductByBarcode(ctx context.Context, branchID, barcode string) (*entity.Product, error) {
	if branchID == "" || strings.TrimSpace(barcode) == "" {
		return nil, domain.Invalid("barcode", "sucursal y código requeridos")
	}
	p, err := uc.repos.Products.GetByBranchAndBarcode(ctx, branchID, strings.TrimSpace(barcode))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// ListProductUoms lista las unidades del producto marcando los defaults vigentes.
func (uc *ProductUseCase) ListProductUoms(ctx context.Context, productID string) ([]ProductUomView, error) {
	product, err := uc.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	list, err := uc.repos.ProductUoms.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	uoms, err := uc.repos.Uoms.List(ctx)
	if err != nil {
		return nil, err
	}
	codes := make(map[string]string, len(uoms))
	for _, u := range uoms {
		codes[u.ID] = u.Code
	}
	out := make([]ProductUomView, 0, len(list))
	for _, pu := range list {
		out = append(out, ProductUomView{
			ProductUom:        *pu,
			UomCode:           codes[pu.UomID],
			IsDefaultSale:     product.DefaultSaleUomID != nil && *product.DefaultSaleUomID == pu.ID,
			IsDefaultPurchase: product.DefaultPurchaseUomID != nil && *product.DefaultPurchaseUomID == pu.ID,
		})
	}
	return out, nil
}

// AddProductUom asocia una unidad de compra/venta al producto.
func (uc *ProductUseCase) AddProductUom(ctx context.Context, in AddUomInput) (*entity.ProductUom, error) {
	if in.UomID == "" {
		return nil, domain.Invalid("uom_id", "requerido")
	}
	if !in.FactorToBase.IsPositive() {
		return nil, domain.Invalid("factor_to_base", "debe ser mayor que cero")
	}
	if !entity.ValidPurpose(in.Purpose) {
		return nil, domain.Invalid("purpose", "PURCHASE, SALE o BOTH")
	}
	pu := &entity.ProductUom{
		ID:           uuid.New().String(),
		ProductID:    in.ProductID,
		UomID:        in.UomID,
		FactorToBase: in.FactorToBase,
		Purpose:      in.Purpose,
	}
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		product, err := r.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		uom, err := r.Uoms.GetByID(ctx, in.UomID)
		if err != nil {
			return err
		}
		if uom == nil {
			return domain.Invalid("uom_id", "unidad desconocida")
		}
		existing, err := r.ProductUoms.ListByProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if e.UomID == in.UomID {
				return domain.ErrDuplicate
			}
		}
		return r.ProductUoms.Create(ctx, pu)
	})
	if err != nil {
		return nil, err
	}
	return pu, nil
}

// UpdateProductUomFactor cambia el factor vigente de una unidad. No recalcula el histórico:
// cada línea ya guardó su FactorUsed.
func (uc *ProductUseCase) UpdateProductUomFactor(ctx context.Context, productID, productUomID string, factor decimal.Decimal) error {
	if !factor.IsPositive() {
		return domain.Invalid("factor_to_base", "debe ser mayor que cero")
	}
	pu, err := uc.productUom(ctx, uc.repos, productID, productUomID)
	if err != nil {
		return err
	}
	if pu.IsBase {
		return domain.Invalid("factor_to_base", "la unidad base siempre tiene factor 1")
	}
	return uc.repos.ProductUoms.UpdateFactor(ctx, pu.ID, factor)
}

// ResolveUom devuelve el factor a unidad base de la unidad indicada.
func (uc *ProductUseCase) ResolveUom(ctx context.Context, productID, productUomID string) (decimal.Decimal, error) {
	pu, err := uc.productUom(ctx, uc.repos, productID, productUomID)
	if err != nil {
		return decimal.Zero, err
	}
	return pu.FactorToBase, nil
}

// DefaultSaleUom unidad de venta por defecto; nil si hay varias candidatas sin default.
func (uc *ProductUseCase) DefaultSaleUom(ctx context.Context, productID string) (*entity.ProductUom, error) {
	return uc.defaultUom(ctx, productID, entity.UomPurposeSale)
}

// DefaultPurchaseUom unidad de compra por defecto; nil si hay varias candidatas sin default.
func (uc *ProductUseCase) DefaultPurchaseUom(ctx context.Context, productID string) (*entity.ProductUom, error) {
	return uc.defaultUom(ctx, productID, entity.UomPurposePurchase)
}

// SetDefaultSaleUom fija la unidad de venta por defecto (reemplaza la anterior).
func (uc *ProductUseCase) SetDefaultSaleUom(ctx context.Context, actorID, productID, productUomID string) error {
	return uc.setDefault(ctx, actorID, productID, productUomID, entity.UomPurposeSale)
}

// SetDefaultPurchaseUom fija la unidad de compra por defecto (reemplaza la anterior).
func (uc *ProductUseCase) SetDefaultPurchaseUom(ctx context.Context, actorID, productID, productUomID string) error {
	return uc.setDefault(ctx, actorID, productID, productUomID, entity.UomPurposePurchase)
}

// DeleteProduct borra el producto si ninguna línea del libro lo referencia; si no, lo desactiva.
// Devuelve true cuando el borrado fue físico.
func (uc *ProductUseCase) DeleteProduct(ctx context.Context, id string) (bool, error) {
	hard := false
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		product, err := r.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		refs, err := r.Transactions.CountItemsByProduct(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return r.Products.SetActive(ctx, id, false)
		}
		if err := r.ProductUoms.DeleteByProduct(ctx, id); err != nil {
			return err
		}
		hard = true
		return r.Products.Delete(ctx, id)
	})
	if err != nil {
		return false, err
	}
	return hard, nil
}

func (uc *ProductUseCase) productUom(ctx context.Context, r repository.Repos, productID, productUomID string) (*entity.ProductUom, error) {
	pu, err := r.ProductUoms.GetByID(ctx, productUomID)
	if err != nil {
		return nil, err
	}
	if pu == nil || pu.ProductID != productID {
		return nil, domain.ErrNotFound
	}
	return pu, nil
}

func (uc *ProductUseCase) defaultUom(ctx context.Context, productID, purpose string) (*entity.ProductUom, error) {
	product, err := uc.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	current := product.DefaultSaleUomID
	if purpose == entity.UomPurposePurchase {
		current = product.DefaultPurchaseUomID
	}
	if current != nil {
		pu, err := uc.repos.ProductUoms.GetByID(ctx, *current)
		if err != nil {
			return nil, err
		}
		if pu != nil && pu.ProductID == productID {
			return pu, nil
		}
	}
	list, err := uc.repos.ProductUoms.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	var candidate *entity.ProductUom
	for _, pu := range list {
		if !pu.Allows(purpose) {
			continue
		}
		if candidate != nil {
			return nil, nil
		}
		candidate = pu
	}
	return candidate, nil
}

func (uc *ProductUseCase) setDefault(ctx context.Context, actorID, productID, productUomID, purpose string) error {
	if actorID == "" {
		return domain.Invalid("actor_id", "requerido")
	}
	return uc.txRunner.Run(ctx, func(r repository.Repos) error {
		product, err := r.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		pu, err := uc.productUom(ctx, r, productID, productUomID)
		if err != nil {
			return err
		}
		if !pu.Allows(purpose) {
			return domain.ErrInvalidPurpose
		}
		return r.Products.SetDefaultUom(ctx, productID, purpose, &pu.ID)
	})
}
