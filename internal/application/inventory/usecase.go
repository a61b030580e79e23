package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/domain/inventory"
	"github.com/jhoicas/branch-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// LedgerUseCase libro de inventario por sucursal: toda variación de stock pasa por PostTransaction,
// que escribe cabecera, líneas y saldos en la misma transacción con bloqueo de fila (SELECT FOR UPDATE).
type LedgerUseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repos
	now      func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(txRunner repository.TxRunner, repos repository.Repos) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner, repos: repos, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// ItemInput línea de entrada. Qty está en la unidad ProductUomID; UnitPrice nil toma el precio del catálogo.
type ItemInput struct {
	ProductID    string
	ProductUomID string
	Qty          decimal.Decimal
	UnitPrice    *decimal.Decimal
}

// PostInput entrada de PostTransaction.
// ADJUST acepta Qty con signo; el resto exige Qty > 0.
// TRANSFER requiere DestinationBranchID distinto de BranchID.
type PostInput struct {
	Type                string
	BranchID            string
	DestinationBranchID string
	ActorID             string
	Reference           string
	Notes               string
	SupplierID          string
	CustomerName        string
	PriceTier           string
	Items               []ItemInput
}

// PostTransaction valida, registra el documento y aplica los deltas de stock de forma atómica.
// Si alguna salida dejaría saldo negativo no se escribe nada y se devuelve *domain.InsufficientStockError.
func (uc *LedgerUseCase) PostTransaction(ctx context.Context, in PostInput) (*entity.InventoryTransaction, error) {
	if err := validateHeader(in); err != nil {
		return nil, err
	}
	var out *entity.InventoryTransaction
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		txn, err := uc.PostTransactionInTx(ctx, r, in)
		if err != nil {
			return err
		}
		out = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PostTransactionInTx igual que PostTransaction pero con los repositorios de la transacción del caller.
func (uc *LedgerUseCase) PostTransactionInTx(ctx context.Context, r repository.Repos, in PostInput) (*entity.InventoryTransaction, error) {
	txn, err := uc.Prepare(ctx, r, in)
	if err != nil {
		return nil, err
	}
	if err := uc.Apply(ctx, r, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// Prepare valida la entrada y arma el documento (factores y precios resueltos) sin escribir nada.
func (uc *LedgerUseCase) Prepare(ctx context.Context, r repository.Repos, in PostInput) (*entity.InventoryTransaction, error) {
	if err := validateHeader(in); err != nil {
		return nil, err
	}
	txn := &entity.InventoryTransaction{
		ID:                  uuid.New().String(),
		Type:                in.Type,
		BranchID:            in.BranchID,
		DestinationBranchID: in.DestinationBranchID,
		CreatedBy:           in.ActorID,
		CreatedAt:           uc.now(),
		Reference:           in.Reference,
		Notes:               in.Notes,
		SupplierID:          in.SupplierID,
		CustomerName:        in.CustomerName,
	}
	for i, item := range in.Items {
		line, err := uc.buildItem(ctx, r, in, i, item)
		if err != nil {
			return nil, err
		}
		line.TransactionID = txn.ID
		txn.Items = append(txn.Items, line)
	}
	return txn, nil
}

// Apply bloquea los saldos afectados en orden (sucursal, producto), verifica todas las salidas
// y luego persiste documento y saldos.
func (uc *LedgerUseCase) Apply(ctx context.Context, r repository.Repos, txn *entity.InventoryTransaction) error {
	deltas := inventory.BuildDeltas(txn.Type, txn.BranchID, txn.DestinationBranchID, txn.Items)
	keys := deltas.SortedKeys()

	for _, k := range keys {
		bal, err := r.Stock.GetForUpdate(ctx, k.BranchID, k.ProductID)
		if err != nil {
			return err
		}
		d := deltas[k]
		if d.IsNegative() && bal.QtyBase.LessThan(d.Neg()) {
			return &domain.InsufficientStockError{
				BranchID:  k.BranchID,
				ProductID: k.ProductID,
				Available: bal.QtyBase,
				Requested: d.Neg(),
			}
		}
	}

	if err := r.Transactions.Create(ctx, txn); err != nil {
		return err
	}
	for _, item := range txn.Items {
		if err := r.Transactions.CreateItem(ctx, item); err != nil {
			return err
		}
	}

	for _, k := range keys {
		d := deltas[k]
		switch {
		case d.IsPositive():
			if err := r.Stock.Increment(ctx, k.BranchID, k.ProductID, d); err != nil {
				return err
			}
		case d.IsNegative():
			ok, err := r.Stock.Decrement(ctx, k.BranchID, k.ProductID, d.Neg())
			if err != nil {
				return err
			}
			if !ok {
				// el saldo cambió entre la verificación y la escritura
				return domain.ErrConflict
			}
		}
	}
	return nil
}

func validateHeader(in PostInput) error {
	if !entity.ValidTransactionType(in.Type) {
		return domain.Invalid("type", "PURCHASE, SALE, ADJUST o TRANSFER")
	}
	if in.BranchID == "" {
		return domain.Invalid("branch_id", "requerido")
	}
	if in.ActorID == "" {
		return domain.Invalid("actor_id", "requerido")
	}
	if len(in.Items) == 0 {
		return domain.Invalid("items", "al menos una línea")
	}
	if in.Type == entity.TransactionTypeTransfer {
		if in.DestinationBranchID == "" {
			return domain.Invalid("destination_branch_id", "requerido en TRANSFER")
		}
		if in.DestinationBranchID == in.BranchID {
			return domain.Invalid("destination_branch_id", "debe ser distinta a la sucursal origen")
		}
	} else if in.DestinationBranchID != "" {
		return domain.Invalid("destination_branch_id", "solo aplica a TRANSFER")
	}
	switch in.PriceTier {
	case "", entity.PriceTierRetail, entity.PriceTierWholesale:
	default:
		return domain.Invalid("price_tier", "RETAIL o WHOLESALE")
	}
	return nil
}

func (uc *LedgerUseCase) buildItem(ctx context.Context, r repository.Repos, in PostInput, i int, item ItemInput) (*entity.InventoryTransactionItem, error) {
	field := fmt.Sprintf("items[%d]", i)
	if item.ProductID == "" {
		return nil, domain.Invalid(field+".product_id", "requerido")
	}
	if item.ProductUomID == "" {
		return nil, domain.Invalid(field+".product_uom_id", "requerido")
	}
	if in.Type == entity.TransactionTypeAdjust {
		if item.Qty.IsZero() {
			return nil, domain.Invalid(field+".qty", "no puede ser cero")
		}
	} else if !item.Qty.IsPositive() {
		return nil, domain.Invalid(field+".qty", "debe ser mayor que cero")
	}
	if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
		return nil, domain.Invalid(field+".unit_price", "no puede ser negativo")
	}

	product, err := r.Products.GetByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.Invalid(field+".product_id", "producto desconocido")
	}
	if product.BranchID != in.BranchID {
		return nil, domain.Invalid(field+".product_id", "el producto no pertenece a la sucursal")
	}
	if !product.IsActive {
		return nil, domain.Invalid(field+".product_id", "producto inactivo")
	}

	pu, err := r.ProductUoms.GetByID(ctx, item.ProductUomID)
	if err != nil {
		return nil, err
	}
	if pu == nil || pu.ProductID != product.ID {
		return nil, fmt.Errorf("%w: %s.product_uom_id no pertenece al producto", domain.ErrNotFound, field)
	}
	if purpose := purposeFor(in.Type); purpose != "" && !pu.Allows(purpose) {
		return nil, fmt.Errorf("%w: %s.product_uom_id no admite %s", domain.ErrInvalidPurpose, field, purpose)
	}

	qtyBase := inventory.ToBase(item.Qty, pu.FactorToBase)
	if !product.IsDivisible && (!inventory.IsWhole(item.Qty) || !inventory.IsWhole(qtyBase)) {
		return nil, domain.Invalid(field+".qty", "el producto no admite cantidades fraccionarias")
	}

	price := defaultUnitPrice(in, product, pu.FactorToBase)
	if item.UnitPrice != nil {
		price = *item.UnitPrice
	}
	return &entity.InventoryTransactionItem{
		ID:           uuid.New().String(),
		ProductID:    product.ID,
		ProductUomID: pu.ID,
		Qty:          item.Qty,
		FactorUsed:   pu.FactorToBase,
		QtyBase:      qtyBase,
		UnitPrice:    price,
	}, nil
}

func purposeFor(txType string) string {
	switch txType {
	case entity.TransactionTypePurchase:
		return entity.UomPurposePurchase
	case entity.TransactionTypeSale:
		return entity.UomPurposeSale
	}
	return ""
}

// defaultUnitPrice precio por unidad de la línea: el del catálogo (por unidad base) por el factor.
func defaultUnitPrice(in PostInput, p *entity.Product, factor decimal.Decimal) decimal.Decimal {
	switch in.Type {
	case entity.TransactionTypePurchase:
		return p.PurchasePrice.Mul(factor)
	case entity.TransactionTypeSale:
		return p.UnitPrice(strings.ToUpper(in.PriceTier)).Mul(factor)
	}
	return decimal.Zero
}
