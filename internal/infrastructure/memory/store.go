// Package memory implementa los repositorios en memoria para desarrollo y tests.
// Todas las transacciones se serializan con un único mutex; cada Run trabaja sobre
// una copia del estado que solo se publica si fn termina sin error.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/domain/repository"
)

type balanceKey struct {
	branchID  string
	productID string
}

type state struct {
	uoms         map[string]*entity.Uom
	products     map[string]*entity.Product
	productUoms  map[string]*entity.ProductUom
	balances     map[balanceKey]*entity.StockBalance
	transactions map[string]*entity.InventoryTransaction // sin Items
	txOrder      []string
	items        map[string][]*entity.InventoryTransactionItem
	customers    map[string]*entity.CreditCustomer
	notes        map[string]*entity.CreditNote
	payments     map[string][]*entity.CreditPayment
}

func newState() *state {
	return &state{
		uoms:         map[string]*entity.Uom{},
		products:     map[string]*entity.Product{},
		productUoms:  map[string]*entity.ProductUom{},
		balances:     map[balanceKey]*entity.StockBalance{},
		transactions: map[string]*entity.InventoryTransaction{},
		items:        map[string][]*entity.InventoryTransactionItem{},
		customers:    map[string]*entity.CreditCustomer{},
		notes:        map[string]*entity.CreditNote{},
		payments:     map[string][]*entity.CreditPayment{},
	}
}

// clone copia el estado. Las entidades guardadas nunca se mutan en sitio, así que
// basta con copiar mapas y slices.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.uoms {
		c.uoms[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.productUoms {
		c.productUoms[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	c.txOrder = append([]string(nil), s.txOrder...)
	for k, v := range s.items {
		c.items[k] = append([]*entity.InventoryTransactionItem(nil), v...)
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.notes {
		c.notes[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = append([]*entity.CreditPayment(nil), v...)
	}
	return c
}

// Store almacén en memoria.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// view da acceso al estado: bajo el mutex del Store o dentro de una transacción ya serializada.
type view interface {
	with(fn func(st *state) error) error
}

type storeView struct{ s *Store }

func (v storeView) with(fn func(st *state) error) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	work := v.s.data.clone()
	if err := fn(work); err != nil {
		return err
	}
	v.s.data = work
	return nil
}

type txView struct{ st *state }

func (v txView) with(fn func(st *state) error) error { return fn(v.st) }

// Repos repositorios fuera de transacción (cada llamada es atómica por sí sola).
func (s *Store) Repos() repository.Repos {
	return newRepos(storeView{s: s})
}

// Run ejecuta fn con repositorios transaccionales. Commit si fn devuelve nil.
// No se debe usar Store.Repos() dentro de fn: el mutex no es reentrante.
func (s *Store) Run(ctx context.Context, fn func(r repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.data.clone()
	if err := fn(newRepos(txView{st: work})); err != nil {
		return err
	}
	s.data = work
	return nil
}

func newRepos(v view) repository.Repos {
	return repository.Repos{
		Uoms:         &uomRepo{v: v},
		Products:     &productRepo{v: v},
		ProductUoms:  &productUomRepo{v: v},
		Stock:        &stockRepo{v: v},
		Transactions: &transactionRepo{v: v},
		Customers:    &customerRepo{v: v},
		Notes:        &noteRepo{v: v},
		Payments:     &paymentRepo{v: v},
	}
}
