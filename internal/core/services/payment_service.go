package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type paymentService struct {
	BaseService
	tx          portsrepo.TransactionManager
	accountRepo portsrepo.AccountRepositoryFacade
	voucherRepo portsrepo.VoucherRepositoryFacade
	vendorRepo  portsrepo.VendorReader
	billRepo    portsrepo.BillRepositoryFacade
	taxRepo     portsrepo.TaxDeclarationRepositoryFacade
	orderRepo   portsrepo.PurchaseOrderRepositoryFacade
	paymentRepo portsrepo.PaymentRepositoryFacade
	poster      ledgerPoster

	payableCode    string
	taxPayableCode string
	defaultMethod  string
	retries        int
}

// NewPaymentService creates the payment service. Payable account codes, the default
// method and the retry bound come from cfg.
func NewPaymentService(cfg *config.Config, repos portsrepo.RepositoryProvider, opts ...Option) portssvc.PaymentSvcFacade {
	svc := &paymentService{
		tx:             repos.Tx,
		accountRepo:    repos.AccountRepo,
		voucherRepo:    repos.VoucherRepo,
		vendorRepo:     repos.VendorRepo,
		billRepo:       repos.BillRepo,
		taxRepo:        repos.TaxRepo,
		orderRepo:      repos.PurchaseOrderRepo,
		paymentRepo:    repos.PaymentRepo,
		poster:         ledgerPoster{accountRepo: repos.AccountRepo, voucherRepo: repos.VoucherRepo},
		payableCode:    cfg.AccountsPayableCode,
		taxPayableCode: cfg.TaxPayableCode,
		defaultMethod:  cfg.DefaultPaymentMethod,
		retries:        cfg.ConflictRetries,
	}
	applyOptions(svc, opts)
	return svc
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// TaxDueDate is the 15th of the month after the declaration period.
func TaxDueDate(period string) time.Time {
	_, next, err := domain.PeriodRange(period)
	if err != nil {
		return time.Time{}
	}
	return next.AddDate(0, 0, 14)
}

func (s *paymentService) vendorNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	vendors, err := s.vendorRepo.FindVendorsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendors: %w", err)
	}
	for id, v := range vendors {
		names[id] = v.Name
	}
	return names, nil
}

func sortPayables(records []domain.PayableRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		di, dj := records[i].DueOn(), records[j].DueOn()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return records[i].Reference() < records[j].Reference()
	})
}

// ListAwaitingPayment returns bills awaiting payment, accepted tax declarations and
// approved purchase orders ordered by due date.
func (s *paymentService) ListAwaitingPayment(ctx context.Context) ([]domain.PayableRecord, error) {
	billStatus := domain.BillAwaitingPayment
	bills, err := s.billRepo.ListBills(ctx, &billStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	taxStatus := domain.TaxSuccess
	decls, err := s.taxRepo.ListDeclarations(ctx, &taxStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax declarations: %w", err)
	}
	orderStatus := domain.POApproved
	orders, err := s.orderRepo.ListOrders(ctx, &orderStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}

	var vendorIDs []string
	for _, b := range bills {
		vendorIDs = append(vendorIDs, b.VendorID)
	}
	for _, o := range orders {
		vendorIDs = append(vendorIDs, o.VendorID)
	}
	names, err := s.vendorNames(ctx, vendorIDs)
	if err != nil {
		return nil, err
	}

	records := make([]domain.PayableRecord, 0, len(bills)+len(decls)+len(orders))
	for _, b := range bills {
		records = append(records, domain.BillPayable{Bill: b, VendorName: names[b.VendorID]})
	}
	for _, d := range decls {
		records = append(records, domain.TaxPayable{Declaration: d, DueDate: TaxDueDate(d.Period)})
	}
	for _, o := range orders {
		records = append(records, domain.PurchaseOrderPayable{Order: o, VendorName: names[o.VendorID]})
	}
	sortPayables(records)
	return records, nil
}

// paymentSelection is a validated, de-duplicated set of record ids.
type paymentSelection struct {
	billIDs  []string
	taxIDs   []string
	orderIDs []string
}

func (p paymentSelection) size() int {
	return len(p.billIDs) + len(p.taxIDs) + len(p.orderIDs)
}

func uniqueIDs(field string, ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, apperrors.NewValidationError(field, "must not contain empty ids")
		}
		if _, dup := seen[id]; dup {
			return nil, apperrors.NewValidationError(field, fmt.Sprintf("id %s is selected more than once", id))
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func newPaymentSelection(req dto.ExecutePaymentRequest) (paymentSelection, error) {
	var sel paymentSelection
	var err error
	if sel.billIDs, err = uniqueIDs("billIds", req.BillIDs); err != nil {
		return sel, err
	}
	if sel.taxIDs, err = uniqueIDs("taxIds", req.TaxIDs); err != nil {
		return sel, err
	}
	if sel.orderIDs, err = uniqueIDs("purchaseOrderIds", req.PurchaseOrderIDs); err != nil {
		return sel, err
	}
	return sel, nil
}

// ExecutePayment settles every selected record from the bank account in one
// transaction: a posted voucher per record, the record marked paid and a payment row
// sharing the batch receipt. Nothing changes when any check fails.
func (s *paymentService) ExecutePayment(ctx context.Context, req dto.ExecutePaymentRequest, userID string) (*domain.PaymentBatch, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	sel, err := newPaymentSelection(req)
	if err != nil {
		return nil, err
	}
	if sel.size() == 0 {
		return nil, &apperrors.EmptySelectionError{}
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = s.defaultMethod
	}

	var batch *domain.PaymentBatch
	err = s.withConflictRetry(ctx, "execute_payment", s.retries, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			b, err := s.settle(ctx, sel, req, method, userID)
			if err != nil {
				return err
			}
			batch = b
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientFunds) {
			s.LogError(ctx, err, "Failed to execute payment", slog.String("bank_account_id", req.BankAccountID))
		}
		return nil, err
	}
	for _, p := range batch.Payments {
		paymentsExecutedTotal.WithLabelValues(string(p.Kind)).Inc()
	}
	s.LogInfo(ctx, "Payment executed",
		slog.String("batch_id", batch.BatchID),
		slog.String("receipt", batch.ReceiptNumber),
		slog.Int("records", len(batch.Payments)),
		slog.String("total", batch.Total.StringFixed(2)))
	return batch, nil
}

func (s *paymentService) requireBank(ctx context.Context, accountID string) (*domain.Account, error) {
	bank, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError("bankAccountId", "bank account does not exist")
		}
		return nil, err
	}
	if bank.AccountType != domain.Asset || !bank.IsBank {
		return nil, apperrors.NewValidationError("bankAccountId", "account is not a bank or cash account")
	}
	return bank, nil
}

// lockPayables loads the selected records for update and checks each one is awaiting payment.
func (s *paymentService) lockPayables(ctx context.Context, sel paymentSelection) ([]domain.PayableRecord, error) {
	records := make([]domain.PayableRecord, 0, sel.size())

	bills, err := s.billRepo.FindBillsByIDsForUpdate(ctx, sel.billIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock bills: %w", err)
	}
	decls, err := s.taxRepo.FindDeclarationsByIDsForUpdate(ctx, sel.taxIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock tax declarations: %w", err)
	}
	orders, err := s.orderRepo.FindOrdersByIDsForUpdate(ctx, sel.orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock purchase orders: %w", err)
	}

	var vendorIDs []string
	for _, id := range sel.billIDs {
		b, ok := bills[id]
		if !ok {
			return nil, apperrors.NewNotFoundError("bill", id)
		}
		if b.Status != domain.BillAwaitingPayment {
			return nil, fmt.Errorf("%w: bill %s is %s", apperrors.ErrInvalidState, b.BillNo, b.Status)
		}
		vendorIDs = append(vendorIDs, b.VendorID)
	}
	for _, id := range sel.orderIDs {
		o, ok := orders[id]
		if !ok {
			return nil, apperrors.NewNotFoundError("purchase order", id)
		}
		if o.Status != domain.POApproved {
			return nil, fmt.Errorf("%w: purchase order %s is %s", apperrors.ErrInvalidState, o.OrderNumber, o.Status)
		}
		vendorIDs = append(vendorIDs, o.VendorID)
	}
	names, err := s.vendorNames(ctx, vendorIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range sel.billIDs {
		b := bills[id]
		records = append(records, domain.BillPayable{Bill: b, VendorName: names[b.VendorID]})
	}
	for _, id := range sel.taxIDs {
		d, ok := decls[id]
		if !ok {
			return nil, apperrors.NewNotFoundError("tax declaration", id)
		}
		if d.Status != domain.TaxSuccess {
			return nil, fmt.Errorf("%w: tax declaration %s is %s", apperrors.ErrInvalidState, d.DeclarationID, d.Status)
		}
		records = append(records, domain.TaxPayable{Declaration: d, DueDate: TaxDueDate(d.Period)})
	}
	for _, id := range sel.orderIDs {
		o := orders[id]
		records = append(records, domain.PurchaseOrderPayable{Order: o, VendorName: names[o.VendorID]})
	}

	for _, r := range records {
		if !r.AmountDue().IsPositive() {
			return nil, apperrors.NewValidationError("amount", fmt.Sprintf("%s has nothing to pay", r.Reference()))
		}
	}
	return records, nil
}

// availableFunds is the effective balance of the bank account, children included.
func (s *paymentService) availableFunds(ctx context.Context, bankAccountID string) (decimal.Decimal, error) {
	if _, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, []string{bankAccountID}); err != nil {
		return decimal.Zero, fmt.Errorf("failed to lock bank account: %w", err)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list accounts: %w", err)
	}
	forest, err := accounting.BuildForest(accounts)
	if err != nil {
		return decimal.Zero, err
	}
	node := accounting.FindNode(forest, bankAccountID)
	if node == nil {
		return decimal.Zero, apperrors.NewNotFoundError("account", bankAccountID)
	}
	return node.EffectiveBalance, nil
}

// ensurePayableAccount finds the liability account with the configured code, creating
// it when the chart does not have one yet.
func (s *paymentService) ensurePayableAccount(ctx context.Context, code, name, actorID string, now time.Time) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	created := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        code,
		Name:        name,
		AccountType: domain.Liability,
		Balance:     decimal.Zero,
		AuditFields: domain.NewAuditFields(actorID, now),
	}
	if err := s.accountRepo.SaveAccount(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to create payable account %s: %w", code, err)
	}
	s.LogInfo(ctx, "Payable account created", slog.String("code", code))
	return &created, nil
}

// markPaid moves the source record of a payment to its settled status.
func (s *paymentService) markPaid(ctx context.Context, r domain.PayableRecord, actorID string, now time.Time) error {
	switch rec := r.(type) {
	case domain.BillPayable:
		bill := rec.Bill
		bill.Status = domain.BillPaid
		bill.Touch(actorID, now)
		return s.billRepo.UpdateBill(ctx, bill)
	case domain.TaxPayable:
		decl := rec.Declaration
		decl.Status = domain.TaxPaid
		decl.Touch(actorID, now)
		return s.taxRepo.UpdateDeclaration(ctx, decl)
	case domain.PurchaseOrderPayable:
		order := rec.Order
		order.Status = domain.POCompleted
		order.Touch(actorID, now)
		return s.orderRepo.UpdateOrder(ctx, order)
	}
	return fmt.Errorf("unknown payable kind %s", r.Kind())
}

func payableVendorID(r domain.PayableRecord) *string {
	switch rec := r.(type) {
	case domain.BillPayable:
		return optionalID(&rec.Bill.VendorID)
	case domain.PurchaseOrderPayable:
		return optionalID(&rec.Order.VendorID)
	}
	return nil
}

func (s *paymentService) settle(ctx context.Context, sel paymentSelection, req dto.ExecutePaymentRequest, method, actorID string) (*domain.PaymentBatch, error) {
	now := s.Now()
	paymentDate := calendarDate(now)
	if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
		paymentDate = calendarDate(req.PaymentDate.Time)
	}

	bank, err := s.requireBank(ctx, req.BankAccountID)
	if err != nil {
		return nil, err
	}
	records, err := s.lockPayables(ctx, sel)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.AmountDue())
	}
	available, err := s.availableFunds(ctx, bank.AccountID)
	if err != nil {
		return nil, err
	}
	if total.GreaterThan(available) {
		return nil, &apperrors.InsufficientFundsError{
			BankAccountID: bank.AccountID,
			Available:     available,
			Required:      total,
		}
	}

	receipt, err := utils.NewReference("PAY", now)
	if err != nil {
		return nil, err
	}
	batch := &domain.PaymentBatch{
		BatchID:       uuid.NewString(),
		BankAccountID: bank.AccountID,
		Method:        method,
		ReceiptNumber: receipt,
		Total:         total,
	}

	payableAccounts := make(map[string]*domain.Account, 2)
	for _, r := range records {
		code, name := s.payableCode, "Accounts Payable"
		if r.Kind() == domain.PayableTax {
			code, name = s.taxPayableCode, "Taxes Payable"
		}
		payable, ok := payableAccounts[code]
		if !ok {
			if payable, err = s.ensurePayableAccount(ctx, code, name, actorID, now); err != nil {
				return nil, err
			}
			payableAccounts[code] = payable
		}

		voucher, err := s.paymentVoucher(ctx, r, payable.AccountID, bank.AccountID, paymentDate, actorID, now)
		if err != nil {
			return nil, err
		}
		if err := s.markPaid(ctx, r, actorID, now); err != nil {
			return nil, err
		}
		batch.Vouchers = append(batch.Vouchers, *voucher)
		batch.Payments = append(batch.Payments, domain.Payment{
			PaymentID:     uuid.NewString(),
			BatchID:       batch.BatchID,
			Kind:          r.Kind(),
			RecordID:      r.RecordID(),
			Reference:     r.Reference(),
			VoucherID:     voucher.VoucherID,
			BankAccountID: bank.AccountID,
			Amount:        r.AmountDue(),
			Method:        method,
			ReceiptNumber: receipt,
			Status:        domain.PaymentSuccess,
			PaymentDate:   paymentDate,
			AuditFields:   domain.NewAuditFields(actorID, now),
		})
	}
	if err := s.paymentRepo.SavePayments(ctx, batch.Payments); err != nil {
		return nil, fmt.Errorf("failed to save payments: %w", err)
	}
	return batch, nil
}

// paymentVoucher records and posts the voucher debiting the payable account and
// crediting the bank for one record.
func (s *paymentService) paymentVoucher(ctx context.Context, r domain.PayableRecord, payableAccountID, bankAccountID string, date time.Time, actorID string, now time.Time) (*domain.Voucher, error) {
	amount := r.AmountDue()
	voucher := domain.Voucher{
		VoucherID:    uuid.NewString(),
		Date:         date,
		Description:  fmt.Sprintf("Payment of %s to %s", r.Reference(), r.PayeeName()),
		ReviewStatus: domain.Reviewed,
		VendorID:     payableVendorID(r),
		AuditFields:  domain.NewAuditFields(actorID, now),
	}
	voucher.Entries = []domain.Entry{
		{EntryID: uuid.NewString(), VoucherID: voucher.VoucherID, LineNo: 1, AccountID: payableAccountID, Direction: domain.Debit, Amount: amount, Description: r.Reference()},
		{EntryID: uuid.NewString(), VoucherID: voucher.VoucherID, LineNo: 2, AccountID: bankAccountID, Direction: domain.Credit, Amount: amount, Description: r.Reference()},
	}
	seq, err := s.voucherRepo.NextVoucherSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate voucher number: %w", err)
	}
	voucher.SequenceNo = seq
	voucher.VoucherNo = domain.FormatVoucherNo(seq)
	if err := s.voucherRepo.SaveVoucher(ctx, voucher); err != nil {
		return nil, err
	}
	if err := s.poster.post(ctx, &voucher, actorID, now); err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (s *paymentService) ListPayments(ctx context.Context, limit int) ([]domain.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	payments, err := s.paymentRepo.ListPayments(ctx, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payments")
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	if payments == nil {
		return []domain.Payment{}, nil
	}
	return payments, nil
}
