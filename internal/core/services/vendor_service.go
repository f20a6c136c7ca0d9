package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
)

// maxVendorDistance is the largest normalized edit distance still treated as a match.
const maxVendorDistance = 0.4

type vendorService struct {
	BaseService
	tx         portsrepo.TransactionManager
	vendorRepo portsrepo.VendorRepositoryFacade
}

// NewVendorService creates the vendor management service.
func NewVendorService(tx portsrepo.TransactionManager, repo portsrepo.VendorRepositoryFacade, opts ...Option) portssvc.VendorSvcFacade {
	svc := &vendorService{tx: tx, vendorRepo: repo}
	applyOptions(svc, opts)
	return svc
}

var _ portssvc.VendorSvcFacade = (*vendorService)(nil)

func (s *vendorService) CreateVendor(ctx context.Context, req dto.CreateVendorRequest, userID string) (*domain.Vendor, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "is required")
	}
	vendor := domain.Vendor{
		VendorID:    uuid.NewString(),
		Name:        name,
		Contact:     req.Contact,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		Description: req.Description,
		AuditFields: domain.NewAuditFields(userID, s.Now()),
	}
	if err := s.vendorRepo.SaveVendor(ctx, vendor); err != nil {
		s.LogError(ctx, err, "Failed to create vendor")
		return nil, err
	}
	s.LogInfo(ctx, "Vendor created", slog.String("vendor_id", vendor.VendorID))
	return &vendor, nil
}

func (s *vendorService) GetVendorByID(ctx context.Context, vendorID string) (*domain.Vendor, error) {
	return s.vendorRepo.FindVendorByID(ctx, vendorID)
}

// vendorDistance is 0 for a substring match, otherwise the edit distance between the
// query and the closest of the full name and its words, relative to the longer string.
func vendorDistance(query, name string) float64 {
	name = strings.ToUpper(name)
	if strings.Contains(name, query) {
		return 0
	}
	best := 1.0
	for _, candidate := range append([]string{name}, strings.Fields(name)...) {
		longest := max(len(query), len(candidate))
		if longest == 0 {
			continue
		}
		d := float64(levenshtein.ComputeDistance(query, candidate)) / float64(longest)
		if d < best {
			best = d
		}
	}
	return best
}

func (s *vendorService) ListVendors(ctx context.Context, query string) ([]domain.Vendor, error) {
	vendors, err := s.vendorRepo.ListVendors(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list vendors")
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		if vendors == nil {
			return []domain.Vendor{}, nil
		}
		return vendors, nil
	}

	type ranked struct {
		vendor   domain.Vendor
		distance float64
	}
	matches := make([]ranked, 0, len(vendors))
	for _, v := range vendors {
		if d := vendorDistance(query, v.Name); d < maxVendorDistance {
			matches = append(matches, ranked{vendor: v, distance: d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].vendor.Name < matches[j].vendor.Name
	})
	out := make([]domain.Vendor, len(matches))
	for i, m := range matches {
		out[i] = m.vendor
	}
	return out, nil
}

func (s *vendorService) UpdateVendor(ctx context.Context, vendorID string, req dto.UpdateVendorRequest, userID string) (*domain.Vendor, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	var updated domain.Vendor
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		vendor, err := s.vendorRepo.FindVendorByID(ctx, vendorID)
		if err != nil {
			return err
		}
		if req.Version != nil && *req.Version != vendor.Version {
			return apperrors.NewConflictError("vendor", vendorID)
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperrors.NewValidationError("name", "must not be empty")
			}
			vendor.Name = name
		}
		if req.Contact != nil {
			vendor.Contact = *req.Contact
		}
		if req.Email != nil {
			vendor.Email = *req.Email
		}
		if req.Phone != nil {
			vendor.Phone = *req.Phone
		}
		if req.Address != nil {
			vendor.Address = *req.Address
		}
		if req.Description != nil {
			vendor.Description = *req.Description
		}
		vendor.Touch(userID, s.Now())
		if err := s.vendorRepo.UpdateVendor(ctx, *vendor); err != nil {
			return err
		}
		vendor.Version++
		updated = *vendor
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update vendor", slog.String("vendor_id", vendorID))
		return nil, err
	}
	return &updated, nil
}

func (s *vendorService) DeleteVendor(ctx context.Context, vendorID string, userID string) error {
	if err := s.RequireActor(ctx, userID); err != nil {
		return err
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.vendorRepo.FindVendorByID(ctx, vendorID); err != nil {
			return err
		}
		referenced, err := s.vendorRepo.IsVendorReferenced(ctx, vendorID)
		if err != nil {
			return fmt.Errorf("failed to check vendor references: %w", err)
		}
		if referenced {
			return fmt.Errorf("%w: vendor %s is referenced by bills, purchase orders or vouchers", apperrors.ErrInUse, vendorID)
		}
		return s.vendorRepo.DeleteVendor(ctx, vendorID)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrInUse) {
			s.LogError(ctx, err, "Failed to delete vendor", slog.String("vendor_id", vendorID))
		}
		return err
	}
	s.LogInfo(ctx, "Vendor deleted", slog.String("vendor_id", vendorID))
	return nil
}
