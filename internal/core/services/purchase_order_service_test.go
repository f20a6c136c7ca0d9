package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/stretchr/testify/suite"
)

type PurchaseOrderServiceTestSuite struct {
	ledgerSuite
	supplier *domain.Vendor
}

func (s *PurchaseOrderServiceTestSuite) SetupTest() {
	s.ledgerSuite.SetupTest()
	s.supplier = s.newVendor("Northwind")
}

func TestPurchaseOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PurchaseOrderServiceTestSuite))
}

func (s *PurchaseOrderServiceTestSuite) order(items ...dto.PurchaseOrderItemRequest) (*domain.PurchaseOrder, error) {
	return s.svc.PurchaseOrder.CreateOrder(s.ctx, dto.CreatePurchaseOrderRequest{
		VendorID:  s.supplier.VendorID,
		OrderDate: day(2024, time.March, 4),
		Items:     items,
	}, s.userID)
}

func (s *PurchaseOrderServiceTestSuite) TestCreateOrder_TotalsAndNumber() {
	o, err := s.order(
		dto.PurchaseOrderItemRequest{ProductName: "Chairs", Quantity: money("3"), UnitPrice: money("45.50")},
		dto.PurchaseOrderItemRequest{ProductName: "Desk", Quantity: money("1"), UnitPrice: money("199.99")},
	)
	s.Require().NoError(err)
	s.Contains(o.OrderNumber, "PO-20240315-")
	s.Equal(domain.POPending, o.Status)
	s.True(o.Total().Equal(money("336.49")))
}

func (s *PurchaseOrderServiceTestSuite) TestCreateOrder_Validation() {
	_, err := s.order()
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.order(dto.PurchaseOrderItemRequest{ProductName: "Chairs", Quantity: money("0"), UnitPrice: money("1")})
	s.ErrorIs(err, apperrors.ErrValidation)

	missing := "no-such-account"
	_, err = s.order(dto.PurchaseOrderItemRequest{ProductName: "Chairs", Quantity: money("1"), UnitPrice: money("1"), AccountID: &missing})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *PurchaseOrderServiceTestSuite) TestUpdateOrder_StatusTransitions() {
	o, err := s.order(dto.PurchaseOrderItemRequest{ProductName: "Chairs", Quantity: money("1"), UnitPrice: money("10")})
	s.Require().NoError(err)

	approved := domain.POApproved
	updated, err := s.svc.PurchaseOrder.UpdateOrder(s.ctx, o.OrderID, dto.UpdatePurchaseOrderRequest{Status: &approved}, s.userID)
	s.Require().NoError(err)
	s.Equal(domain.POApproved, updated.Status)

	// lines are frozen once approved
	_, err = s.svc.PurchaseOrder.UpdateOrder(s.ctx, o.OrderID, dto.UpdatePurchaseOrderRequest{
		Items: []dto.PurchaseOrderItemRequest{{ProductName: "Sofa", Quantity: money("1"), UnitPrice: money("10")}},
	}, s.userID)
	s.ErrorIs(err, apperrors.ErrInvalidState)

	completed := domain.POCompleted
	_, err = s.svc.PurchaseOrder.UpdateOrder(s.ctx, o.OrderID, dto.UpdatePurchaseOrderRequest{Status: &completed}, s.userID)
	s.ErrorIs(err, apperrors.ErrInvalidState)

	cancelled := domain.POCancelled
	_, err = s.svc.PurchaseOrder.UpdateOrder(s.ctx, o.OrderID, dto.UpdatePurchaseOrderRequest{Status: &cancelled}, s.userID)
	s.Require().NoError(err)
	_, err = s.svc.PurchaseOrder.UpdateOrder(s.ctx, o.OrderID, dto.UpdatePurchaseOrderRequest{Status: &approved}, s.userID)
	s.ErrorIs(err, apperrors.ErrInvalidState)

	s.NoError(s.svc.PurchaseOrder.DeleteOrder(s.ctx, o.OrderID, s.userID))
}

func (s *PurchaseOrderServiceTestSuite) TestCompletedOrder_IsFrozen() {
	bank := s.account("Bank", domain.Asset, true, "100.00", nil)
	o, err := s.order(dto.PurchaseOrderItemRequest{ProductName: "Chairs", Quantity: money("2"), UnitPrice: money("10")})
	s.Require().NoError(err)
	approved := domain.POApproved
	_, err = s.svc.PurchaseOrder.UpdateOrder(s.ctx, o.OrderID, dto.UpdatePurchaseOrderRequest{Status: &approved}, s.userID)
	s.Require().NoError(err)
	_, err = s.svc.Payment.ExecutePayment(s.ctx, dto.ExecutePaymentRequest{
		PurchaseOrderIDs: []string{o.OrderID},
		BankAccountID:    bank.AccountID,
	}, s.userID)
	s.Require().NoError(err)

	desc := "late edit"
	_, err = s.svc.PurchaseOrder.UpdateOrder(s.ctx, o.OrderID, dto.UpdatePurchaseOrderRequest{Description: &desc}, s.userID)
	s.ErrorIs(err, apperrors.ErrInvalidState)
	s.ErrorIs(s.svc.PurchaseOrder.DeleteOrder(s.ctx, o.OrderID, s.userID), apperrors.ErrInvalidState)
}
