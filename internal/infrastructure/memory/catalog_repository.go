package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type uomRepo struct{ v view }

func (r *uomRepo) Create(_ context.Context, u *entity.Uom) error {
	return r.v.with(func(st *state) error {
		for _, e := range st.uoms {
			if e.Code == u.Code {
				return domain.ErrDuplicate
			}
		}
		c := *u
		st.uoms[u.ID] = &c
		return nil
	})
}

func (r *uomRepo) GetByID(_ context.Context, id string) (*entity.Uom, error) {
	var out *entity.Uom
	err := r.v.with(func(st *state) error {
		if u, ok := st.uoms[id]; ok {
			c := *u
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *uomRepo) GetByCode(_ context.Context, code string) (*entity.Uom, error) {
	var out *entity.Uom
	err := r.v.with(func(st *state) error {
		for _, u := range st.uoms {
			if u.Code == code {
				c := *u
				out = &c
			}
		}
		return nil
	})
	return out, err
}

func (r *uomRepo) List(_ context.Context) ([]*entity.Uom, error) {
	var out []*entity.Uom
	err := r.v.with(func(st *state) error {
		for _, u := range st.uoms {
			c := *u
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

type productRepo struct{ v view }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.with(func(st *state) error {
		if p.Barcode != "" {
			for _, e := range st.products {
				if e.BranchID == p.BranchID && e.Barcode == p.Barcode {
					return domain.ErrDuplicate
				}
			}
		}
		c := *p
		st.products[p.ID] = &c
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.with(func(st *state) error {
		if p, ok := st.products[id]; ok {
			c := *p
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *productRepo) GetByBranchAndBarcode(_ context.Context, branchID, barcode string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.with(func(st *state) error {
		for _, p := range st.products {
			if p.BranchID == branchID && p.Barcode == barcode {
				c := *p
				out = &c
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepo) ListByBranch(_ context.Context, branchID string, includeInactive bool) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.with(func(st *state) error {
		for _, p := range st.products {
			if p.BranchID != branchID || (!p.IsActive && !includeInactive) {
				continue
			}
			c := *p
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *productRepo) SetDefaultUom(_ context.Context, productID, purpose string, productUomID *string) error {
	return r.v.with(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		c := *p
		var id *string
		if productUomID != nil {
			v := *productUomID
			id = &v
		}
		if purpose == entity.UomPurposePurchase {
			c.DefaultPurchaseUomID = id
		} else {
			c.DefaultSaleUomID = id
		}
		c.UpdatedAt = time.Now()
		st.products[productID] = &c
		return nil
	})
}

func (r *productRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.v.with(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		c := *p
		c.IsActive = active
		c.UpdatedAt = time.Now()
		st.products[id] = &c
		return nil
	})
}

func (r *productRepo) Delete(_ context.Context, id string) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.products, id)
		return nil
	})
}

type productUomRepo struct{ v view }

func (r *productUomRepo) Create(_ context.Context, pu *entity.ProductUom) error {
	return r.v.with(func(st *state) error {
		for _, e := range st.productUoms {
			if e.ProductID == pu.ProductID && e.UomID == pu.UomID {
				return domain.ErrDuplicate
			}
		}
		c := *pu
		st.productUoms[pu.ID] = &c
		return nil
	})
}

func (r *productUomRepo) GetByID(_ context.Context, id string) (*entity.ProductUom, error) {
	var out *entity.ProductUom
	err := r.v.with(func(st *state) error {
		if pu, ok := st.productUoms[id]; ok {
			c := *pu
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *productUomRepo) ListByProduct(_ context.Context, productID string) ([]*entity.ProductUom, error) {
	var out []*entity.ProductUom
	err := r.v.with(func(st *state) error {
		for _, pu := range st.productUoms {
			if pu.ProductID == productID {
				c := *pu
				out = append(out, &c)
			}
		}
		return nil
	})
	// base primero, luego por factor
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsBase != out[j].IsBase {
			return out[i].IsBase
		}
		if !out[i].FactorToBase.Equal(out[j].FactorToBase) {
			return out[i].FactorToBase.LessThan(out[j].FactorToBase)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *productUomRepo) UpdateFactor(_ context.Context, id string, factor decimal.Decimal) error {
	return r.v.with(func(st *state) error {
		pu, ok := st.productUoms[id]
		if !ok {
			return domain.ErrNotFound
		}
		c := *pu
		c.FactorToBase = factor
		st.productUoms[id] = &c
		return nil
	})
}

func (r *productUomRepo) DeleteByProduct(_ context.Context, productID string) error {
	return r.v.with(func(st *state) error {
		for id, pu := range st.productUoms {
			if pu.ProductID == productID {
				delete(st.productUoms, id)
			}
		}
		return nil
	})
}
