package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/stretchr/testify/suite"
)

type BillServiceTestSuite struct {
	ledgerSuite
	supplier *domain.Vendor
}

func (s *BillServiceTestSuite) SetupTest() {
	s.ledgerSuite.SetupTest()
	s.supplier = s.newVendor("Contoso")
}

func TestBillServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BillServiceTestSuite))
}

func (s *BillServiceTestSuite) TestCreateBill_Defaults() {
	b, err := s.svc.Bill.CreateBill(s.ctx, dto.CreateBillRequest{
		VendorID: s.supplier.VendorID,
		Amount:   money("120.00"),
		DueDate:  day(2024, time.April, 30),
	}, s.userID)
	s.Require().NoError(err)
	s.Equal(domain.BillPendingReview, b.Status)
	s.Contains(b.BillNo, "BILL-20240315-")
}

func (s *BillServiceTestSuite) TestCreateBill_Validation() {
	_, err := s.svc.Bill.CreateBill(s.ctx, dto.CreateBillRequest{
		VendorID: s.supplier.VendorID,
		Amount:   money("-1.00"),
		DueDate:  day(2024, time.April, 30),
	}, s.userID)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Bill.CreateBill(s.ctx, dto.CreateBillRequest{
		VendorID: "unknown",
		Amount:   money("1.00"),
		DueDate:  day(2024, time.April, 30),
	}, s.userID)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Bill.CreateBill(s.ctx, dto.CreateBillRequest{
		VendorID: s.supplier.VendorID,
		Amount:   money("1.00"),
		DueDate:  day(2024, time.April, 30),
		Status:   domain.BillPaid,
	}, s.userID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *BillServiceTestSuite) TestListBills_ByStatus() {
	for _, st := range []domain.BillStatus{domain.BillPendingReview, domain.BillAwaitingPayment, domain.BillAwaitingPayment} {
		_, err := s.svc.Bill.CreateBill(s.ctx, dto.CreateBillRequest{
			VendorID: s.supplier.VendorID,
			Amount:   money("5.00"),
			DueDate:  day(2024, time.April, 30),
			Status:   st,
		}, s.userID)
		s.Require().NoError(err)
	}
	awaiting := domain.BillAwaitingPayment
	list, err := s.svc.Bill.ListBills(s.ctx, &awaiting)
	s.Require().NoError(err)
	s.Len(list, 2)

	all, err := s.svc.Bill.ListBills(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(all, 3)
}
