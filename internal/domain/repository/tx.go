package repository

import "context"

// Repos agrupa los repositorios atados a un mismo Querier (pool o transacción).
type Repos struct {
	Uoms         UomRepository
	Products     ProductRepository
	ProductUoms  ProductUomRepository
	Stock        StockRepository
	Transactions InventoryTransactionRepository
	Customers    CreditCustomerRepository
	Notes        CreditNoteRepository
	Payments     CreditPaymentRepository
}

// TxRunner ejecuta fn dentro de una transacción, con repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
