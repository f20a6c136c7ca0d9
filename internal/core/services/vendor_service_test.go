package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/stretchr/testify/suite"
)

type VendorServiceTestSuite struct {
	ledgerSuite
}

func TestVendorServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VendorServiceTestSuite))
}

func (s *VendorServiceTestSuite) names(vendors []domain.Vendor) []string {
	out := make([]string, len(vendors))
	for i, v := range vendors {
		out[i] = v.Name
	}
	return out
}

func (s *VendorServiceTestSuite) TestListVendors_FuzzySearch() {
	s.newVendor("Northwind Traders")
	s.newVendor("Contoso Ltd")
	s.newVendor("Fabrikam")

	all, err := s.svc.Vendor.ListVendors(s.ctx, "")
	s.Require().NoError(err)
	s.Len(all, 3)

	exact, err := s.svc.Vendor.ListVendors(s.ctx, "wind")
	s.Require().NoError(err)
	s.Equal([]string{"Northwind Traders"}, s.names(exact))

	typo, err := s.svc.Vendor.ListVendors(s.ctx, "contosa")
	s.Require().NoError(err)
	s.Equal([]string{"Contoso Ltd"}, s.names(typo))

	none, err := s.svc.Vendor.ListVendors(s.ctx, "zzzzzz")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *VendorServiceTestSuite) TestCreateVendor_RequiresName() {
	_, err := s.svc.Vendor.CreateVendor(s.ctx, dto.CreateVendorRequest{Name: "   "}, s.userID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *VendorServiceTestSuite) TestDeleteVendor_InUse() {
	v := s.newVendor("Fabrikam")
	_, err := s.svc.Bill.CreateBill(s.ctx, dto.CreateBillRequest{
		VendorID: v.VendorID,
		Amount:   money("10.00"),
		DueDate:  day(2024, time.April, 1),
	}, s.userID)
	s.Require().NoError(err)

	err = s.svc.Vendor.DeleteVendor(s.ctx, v.VendorID, s.userID)
	s.ErrorIs(err, apperrors.ErrInUse)

	unused := s.newVendor("Contoso")
	s.NoError(s.svc.Vendor.DeleteVendor(s.ctx, unused.VendorID, s.userID))
}

func (s *VendorServiceTestSuite) TestUpdateVendor() {
	v := s.newVendor("Fabrikam")
	email := "ap@fabrikam.example"
	updated, err := s.svc.Vendor.UpdateVendor(s.ctx, v.VendorID, dto.UpdateVendorRequest{Email: &email, Version: &v.Version}, s.userID)
	s.Require().NoError(err)
	s.Equal(email, updated.Email)
	s.Equal(int64(2), updated.Version)
}
