package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
)

func (s *Store) FindVendorByID(ctx context.Context, vendorID string) (*domain.Vendor, error) {
	var out *domain.Vendor
	err := s.read(ctx, func(st *state) error {
		v, ok := st.vendors[vendorID]
		if !ok {
			return apperrors.NewNotFoundError("vendor", vendorID)
		}
		out = &v
		return nil
	})
	return out, err
}

func (s *Store) FindVendorsByIDs(ctx context.Context, vendorIDs []string) (map[string]domain.Vendor, error) {
	out := make(map[string]domain.Vendor, len(vendorIDs))
	err := s.read(ctx, func(st *state) error {
		for _, id := range vendorIDs {
			if v, ok := st.vendors[id]; ok {
				out[id] = v
			}
		}
		return nil
	})
	return out, err
}

// ListVendors returns vendors ordered by name.
func (s *Store) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	var out []domain.Vendor
	err := s.read(ctx, func(st *state) error {
		for _, v := range st.vendors {
			out = append(out, v)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (s *Store) CountVendors(ctx context.Context) (int, error) {
	n := 0
	err := s.read(ctx, func(st *state) error {
		n = len(st.vendors)
		return nil
	})
	return n, err
}

func (s *Store) IsVendorReferenced(ctx context.Context, vendorID string) (bool, error) {
	found := false
	err := s.read(ctx, func(st *state) error {
		for _, b := range st.bills {
			if b.VendorID == vendorID {
				found = true
				return nil
			}
		}
		for _, o := range st.orders {
			if o.VendorID == vendorID {
				found = true
				return nil
			}
		}
		for _, v := range st.vouchers {
			if v.VendorID != nil && *v.VendorID == vendorID {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (s *Store) SaveVendor(ctx context.Context, vendor domain.Vendor) error {
	return s.write(ctx, func(st *state) error {
		if _, ok := st.vendors[vendor.VendorID]; ok {
			return fmt.Errorf("%w: vendor %s", apperrors.ErrDuplicate, vendor.VendorID)
		}
		st.vendors[vendor.VendorID] = vendor
		return nil
	})
}

func (s *Store) UpdateVendor(ctx context.Context, vendor domain.Vendor) error {
	return s.write(ctx, func(st *state) error {
		stored, ok := st.vendors[vendor.VendorID]
		if !ok {
			return apperrors.NewNotFoundError("vendor", vendor.VendorID)
		}
		if stored.Version != vendor.Version {
			return apperrors.NewConflictError("vendor", vendor.VendorID)
		}
		vendor.Version = stored.Version + 1
		st.vendors[vendor.VendorID] = vendor
		return nil
	})
}

func (s *Store) DeleteVendor(ctx context.Context, vendorID string) error {
	return s.write(ctx, func(st *state) error {
		if _, ok := st.vendors[vendorID]; !ok {
			return apperrors.NewNotFoundError("vendor", vendorID)
		}
		delete(st.vendors, vendorID)
		return nil
	})
}
