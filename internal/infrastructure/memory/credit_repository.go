package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type customerRepo struct{ v view }

func (r *customerRepo) Create(_ context.Context, c *entity.CreditCustomer) error {
	return r.v.with(func(st *state) error {
		cp := *c
		st.customers[c.ID] = &cp
		return nil
	})
}

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.CreditCustomer, error) {
	var out *entity.CreditCustomer
	err := r.v.with(func(st *state) error {
		if c, ok := st.customers[id]; ok {
			cp := *c
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *customerRepo) GetForUpdate(ctx context.Context, id string) (*entity.CreditCustomer, error) {
	return r.GetByID(ctx, id)
}

func (r *customerRepo) ListByBranch(_ context.Context, branchID string) ([]*entity.CreditCustomer, error) {
	var out []*entity.CreditCustomer
	err := r.v.with(func(st *state) error {
		for _, c := range st.customers {
			if c.BranchID == branchID {
				cp := *c
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *customerRepo) Update(_ context.Context, c *entity.CreditCustomer) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.customers[c.ID]; !ok {
			return domain.ErrNotFound
		}
		cp := *c
		st.customers[c.ID] = &cp
		return nil
	})
}

type noteRepo struct{ v view }

func (r *noteRepo) Create(_ context.Context, n *entity.CreditNote) error {
	return r.v.with(func(st *state) error {
		for _, e := range st.notes {
			if e.Folio == n.Folio {
				return domain.ErrDuplicate
			}
		}
		c := *n
		st.notes[n.ID] = &c
		return nil
	})
}

func (r *noteRepo) GetByID(_ context.Context, id string) (*entity.CreditNote, error) {
	var out *entity.CreditNote
	err := r.v.with(func(st *state) error {
		if n, ok := st.notes[id]; ok {
			c := *n
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *noteRepo) ListOpenByCustomer(_ context.Context, customerID string) ([]*entity.CreditNote, error) {
	var out []*entity.CreditNote
	err := r.v.with(func(st *state) error {
		for _, n := range st.notes {
			if n.CustomerID == customerID && n.IsOpen() {
				c := *n
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].Folio < out[j].Folio
	})
	return out, err
}

func (r *noteRepo) DecrementBalance(_ context.Context, noteID string, amount decimal.Decimal) (bool, error) {
	applied := false
	err := r.v.with(func(st *state) error {
		n, ok := st.notes[noteID]
		if !ok || n.Balance.LessThan(amount) {
			return nil
		}
		c := *n
		c.Balance = n.Balance.Sub(amount)
		st.notes[noteID] = &c
		applied = true
		return nil
	})
	return applied, err
}

func (r *noteRepo) CountOpenByBranch(_ context.Context, branchID string) (int, error) {
	n := 0
	err := r.v.with(func(st *state) error {
		for _, note := range st.notes {
			if note.BranchID == branchID && note.IsOpen() {
				n++
			}
		}
		return nil
	})
	return n, err
}

type paymentRepo struct{ v view }

func (r *paymentRepo) Create(_ context.Context, p *entity.CreditPayment) error {
	return r.v.with(func(st *state) error {
		c := *p
		st.payments[p.NoteID] = append(st.payments[p.NoteID], &c)
		return nil
	})
}

func (r *paymentRepo) ListByNote(_ context.Context, noteID string) ([]*entity.CreditPayment, error) {
	var out []*entity.CreditPayment
	err := r.v.with(func(st *state) error {
		for _, p := range st.payments[noteID] {
			c := *p
			out = append(out, &c)
		}
		return nil
	})
	return out, err
}
