package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// reconciliationService manages bank statements and their manual matching with ledger entries.
type reconciliationService struct {
	BaseService
	tx            portsrepo.TransactionManager
	statementRepo portsrepo.BankStatementRepositoryFacade
	accountRepo   portsrepo.AccountReader
	voucherRepo   portsrepo.VoucherRepositoryFacade
	retries       int
}

// NewReconciliationService creates the bank statement and matching service.
func NewReconciliationService(repos portsrepo.RepositoryProvider, retries int, opts ...Option) portssvc.ReconciliationSvcFacade {
	svc := &reconciliationService{
		tx:            repos.Tx,
		statementRepo: repos.BankStatementRepo,
		accountRepo:   repos.AccountRepo,
		voucherRepo:   repos.VoucherRepo,
		retries:       retries,
	}
	applyOptions(svc, opts)
	return svc
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

func (s *reconciliationService) requireBankAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError("accountID", "account does not exist")
		}
		return nil, err
	}
	if account.AccountType != domain.Asset || !account.IsBank {
		return nil, apperrors.NewValidationError("accountID", "statements can only be kept for cash or bank accounts")
	}
	return account, nil
}

func checkMoney(field string, amounts ...decimal.Decimal) error {
	for _, a := range amounts {
		if !accounting.IsMoney(a) {
			return apperrors.NewValidationError(field, "must have at most 2 decimal places")
		}
	}
	return nil
}

func (s *reconciliationService) CreateStatement(ctx context.Context, req dto.CreateBankStatementRequest, userID string) (*domain.BankStatement, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	if err := checkMoney("balance", req.OpeningBalance, req.ClosingBalance); err != nil {
		return nil, err
	}
	statement := domain.BankStatement{
		StatementID:    uuid.NewString(),
		AccountID:      req.AccountID,
		StatementDate:  calendarDate(req.StatementDate.Time),
		OpeningBalance: req.OpeningBalance,
		ClosingBalance: req.ClosingBalance,
		Status:         domain.StatementPending,
		Items:          []domain.StatementItem{},
		AuditFields:    domain.NewAuditFields(userID, s.Now()),
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.requireBankAccount(ctx, req.AccountID); err != nil {
			return err
		}
		return s.statementRepo.SaveStatement(ctx, statement)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create bank statement", slog.String("account_id", req.AccountID))
		return nil, err
	}
	s.LogInfo(ctx, "Bank statement created", slog.String("statement_id", statement.StatementID))
	return &statement, nil
}

func (s *reconciliationService) GetStatement(ctx context.Context, statementID string) (*domain.BankStatement, error) {
	return s.statementRepo.FindStatementByID(ctx, statementID)
}

func (s *reconciliationService) ListStatements(ctx context.Context, accountID *string) ([]domain.BankStatement, error) {
	statements, err := s.statementRepo.ListStatements(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list bank statements")
		return nil, fmt.Errorf("failed to list bank statements: %w", err)
	}
	if statements == nil {
		return []domain.BankStatement{}, nil
	}
	return statements, nil
}

func (s *reconciliationService) UpdateStatement(ctx context.Context, statementID string, req dto.UpdateBankStatementRequest, userID string) (*domain.BankStatement, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	var updated domain.BankStatement
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		statement, err := s.statementRepo.FindStatementByIDForUpdate(ctx, statementID)
		if err != nil {
			return err
		}
		if req.Version != nil && *req.Version != statement.Version {
			return apperrors.NewConflictError("bank statement", statementID)
		}
		if req.StatementDate != nil {
			statement.StatementDate = calendarDate(req.StatementDate.Time)
		}
		if req.OpeningBalance != nil {
			if err := checkMoney("openingBalance", *req.OpeningBalance); err != nil {
				return err
			}
			statement.OpeningBalance = *req.OpeningBalance
		}
		if req.ClosingBalance != nil {
			if err := checkMoney("closingBalance", *req.ClosingBalance); err != nil {
				return err
			}
			statement.ClosingBalance = *req.ClosingBalance
		}
		statement.Status = statement.DeriveStatus()
		statement.Touch(userID, s.Now())
		if err := s.statementRepo.UpdateStatement(ctx, *statement); err != nil {
			return err
		}
		statement.Version++
		updated = *statement
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update bank statement", slog.String("statement_id", statementID))
		return nil, err
	}
	return &updated, nil
}

// DeleteStatement removes a statement and its items. Statements with matched items are kept.
func (s *reconciliationService) DeleteStatement(ctx context.Context, statementID string, userID string) error {
	if err := s.RequireActor(ctx, userID); err != nil {
		return err
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		statement, err := s.statementRepo.FindStatementByIDForUpdate(ctx, statementID)
		if err != nil {
			return err
		}
		for _, it := range statement.Items {
			if it.Reconciled {
				return &apperrors.AlreadyReconciledError{
					ItemID: it.ItemID,
					Reason: "statement has reconciled items, unreconcile them first",
				}
			}
		}
		return s.statementRepo.DeleteStatement(ctx, statementID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete bank statement", slog.String("statement_id", statementID))
		return err
	}
	s.LogInfo(ctx, "Bank statement deleted", slog.String("statement_id", statementID), slog.String("user_id", userID))
	return nil
}

func (s *reconciliationService) newItem(statementID string, req dto.StatementItemRequest, userID string) (domain.StatementItem, error) {
	if req.TransactionDate.IsZero() {
		return domain.StatementItem{}, apperrors.NewValidationError("transactionDate", "is required")
	}
	if req.Amount.IsZero() {
		return domain.StatementItem{}, apperrors.NewValidationError("amount", "must not be zero")
	}
	if err := checkMoney("amount", req.Amount, req.Balance); err != nil {
		return domain.StatementItem{}, err
	}
	return domain.StatementItem{
		ItemID:          uuid.NewString(),
		StatementID:     statementID,
		TransactionDate: calendarDate(req.TransactionDate.Time),
		Description:     req.Description,
		Amount:          req.Amount,
		Balance:         req.Balance,
		ExternalRef:     req.ExternalRef,
		AuditFields:     domain.NewAuditFields(userID, s.Now()),
	}, nil
}

// refreshStatus recomputes the derived status after items changed. Runs inside a transaction.
func (s *reconciliationService) refreshStatus(ctx context.Context, statementID, userID string) error {
	statement, err := s.statementRepo.FindStatementByIDForUpdate(ctx, statementID)
	if err != nil {
		return err
	}
	status := statement.DeriveStatus()
	if status == statement.Status {
		return nil
	}
	statement.Status = status
	statement.Touch(userID, s.Now())
	return s.statementRepo.UpdateStatement(ctx, *statement)
}

func (s *reconciliationService) saveItems(ctx context.Context, statementID string, items []domain.StatementItem, userID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.statementRepo.FindStatementByIDForUpdate(ctx, statementID); err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		if err := s.statementRepo.SaveItems(ctx, items); err != nil {
			return err
		}
		return s.refreshStatus(ctx, statementID, userID)
	})
}

func (s *reconciliationService) AddItem(ctx context.Context, statementID string, req dto.StatementItemRequest, userID string) (*domain.StatementItem, error) {
	items, err := s.AddItems(ctx, statementID, []dto.StatementItemRequest{req}, userID)
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *reconciliationService) AddItems(ctx context.Context, statementID string, reqs []dto.StatementItemRequest, userID string) ([]domain.StatementItem, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, apperrors.NewValidationError("items", "at least one item is required")
	}
	items := make([]domain.StatementItem, len(reqs))
	for i, req := range reqs {
		item, err := s.newItem(statementID, req, userID)
		if err != nil {
			var vErr *apperrors.ValidationError
			if errors.As(err, &vErr) {
				vErr.Field = fmt.Sprintf("items[%d].%s", i, vErr.Field)
			}
			return nil, err
		}
		items[i] = item
	}
	if err := s.saveItems(ctx, statementID, items, userID); err != nil {
		s.LogError(ctx, err, "Failed to add statement items", slog.String("statement_id", statementID))
		return nil, err
	}
	s.LogInfo(ctx, "Statement items added",
		slog.String("statement_id", statementID),
		slog.Int("count", len(items)))
	return items, nil
}

// ImportOFX converts the bank and credit card transactions of an OFX document into
// statement items. The FITID becomes the item's external reference.
func (s *reconciliationService) ImportOFX(ctx context.Context, statementID string, r io.Reader, userID string) (*domain.StatementImport, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	resp, err := ofxgo.ParseResponse(r)
	if err != nil {
		return nil, apperrors.NewValidationError("file", fmt.Sprintf("invalid OFX document: %v", err))
	}
	if len(resp.Bank) == 0 && len(resp.CreditCard) == 0 {
		return nil, apperrors.NewValidationError("file", "OFX document contains no bank or credit card statements")
	}

	statement, err := s.statementRepo.FindStatementByID(ctx, statementID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(statement.Items))
	for _, it := range statement.Items {
		if it.ExternalRef != "" {
			seen[it.ExternalRef] = struct{}{}
		}
	}

	result := &domain.StatementImport{Imported: []domain.StatementItem{}}
	for _, msg := range append(resp.Bank, resp.CreditCard...) {
		var list *ofxgo.TransactionList
		switch stmt := msg.(type) {
		case *ofxgo.StatementResponse:
			list = stmt.BankTranList
		case *ofxgo.CCStatementResponse:
			list = stmt.BankTranList
		default:
			return nil, apperrors.NewValidationError("file", "unexpected OFX response type")
		}
		if list == nil {
			continue
		}
		for _, tran := range list.Transactions {
			fitID := string(tran.FiTID)
			if _, dup := seen[fitID]; dup && fitID != "" {
				result.Skipped++
				continue
			}
			amount, err := decimal.NewFromString(tran.TrnAmt.String())
			if err != nil {
				return nil, apperrors.NewValidationError("file", fmt.Sprintf("transaction %s has an invalid amount", fitID))
			}
			desc := strings.TrimSpace(string(tran.Name))
			if memo := strings.TrimSpace(string(tran.Memo)); memo != "" {
				if desc != "" {
					desc += " "
				}
				desc += memo
			}
			item, err := s.newItem(statementID, dto.StatementItemRequest{
				TransactionDate: dto.NewDate(tran.DtPosted.Time),
				Description:     desc,
				Amount:          amount.Round(domain.MoneyPlaces),
				ExternalRef:     fitID,
			}, userID)
			if err != nil {
				result.Skipped++
				continue
			}
			seen[fitID] = struct{}{}
			result.Imported = append(result.Imported, item)
		}
	}

	if err := s.saveItems(ctx, statementID, result.Imported, userID); err != nil {
		s.LogError(ctx, err, "Failed to import OFX statement", slog.String("statement_id", statementID))
		return nil, err
	}
	s.LogInfo(ctx, "OFX statement imported",
		slog.String("statement_id", statementID),
		slog.Int("imported", len(result.Imported)),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

func (s *reconciliationService) ListUnreconciledEntries(ctx context.Context, accountID *string) ([]domain.LedgerEntry, error) {
	entries, err := s.voucherRepo.ListUnreconciledBankEntries(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list unreconciled entries")
		return nil, fmt.Errorf("failed to list unreconciled entries: %w", err)
	}
	if entries == nil {
		return []domain.LedgerEntry{}, nil
	}
	return entries, nil
}

// Reconcile links itemID with entryID. Calling it again with the same pair returns
// the item unchanged; any other pairing involving a linked side is rejected.
func (s *reconciliationService) Reconcile(ctx context.Context, itemID string, entryID string, userID string) (*domain.StatementItem, error) {
	if entryID == "" {
		return s.Unreconcile(ctx, itemID, userID)
	}
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	var linked domain.StatementItem
	err := s.withConflictRetry(ctx, "reconcile", s.retries, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			item, err := s.statementRepo.FindItemByIDForUpdate(ctx, itemID)
			if err != nil {
				return err
			}
			if item.Reconciled && item.EntryID != nil {
				if *item.EntryID == entryID {
					linked = *item
					return nil
				}
				return &apperrors.AlreadyReconciledError{
					ItemID:  itemID,
					EntryID: *item.EntryID,
					Reason:  "statement item is already matched to another entry",
				}
			}
			entry, err := s.voucherRepo.FindLedgerEntryByID(ctx, entryID)
			if err != nil {
				return err
			}
			// Lock order is item, voucher, statement. UnpostVoucher locks the voucher
			// before looking for links, so one of the two always sees the other's commit.
			voucher, err := s.voucherRepo.FindVoucherByIDForUpdate(ctx, entry.VoucherID)
			if err != nil {
				return err
			}
			if !voucher.Posted {
				return &apperrors.EntryNotPostedError{EntryID: entryID, VoucherID: entry.VoucherID}
			}
			if other, err := s.statementRepo.FindItemByEntryID(ctx, entryID); err == nil {
				return &apperrors.AlreadyReconciledError{
					ItemID:  other.ItemID,
					EntryID: entryID,
					Reason:  "entry is already matched to another statement item",
				}
			} else if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			statement, err := s.statementRepo.FindStatementByIDForUpdate(ctx, item.StatementID)
			if err != nil {
				return err
			}
			if entry.AccountID != statement.AccountID {
				return apperrors.NewValidationError("voucherEntryId", "entry is not on the statement's account")
			}
			item.LinkTo(entryID, userID, s.Now())
			if err := s.statementRepo.UpdateItem(ctx, *item); err != nil {
				return err
			}
			item.Version++
			linked = *item
			return s.refreshStatus(ctx, item.StatementID, userID)
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to reconcile statement item",
			slog.String("item_id", itemID),
			slog.String("entry_id", entryID))
		return nil, err
	}
	reconciliationsTotal.WithLabelValues("reconcile").Inc()
	s.LogInfo(ctx, "Statement item reconciled",
		slog.String("item_id", itemID),
		slog.String("entry_id", entryID))
	return &linked, nil
}

func (s *reconciliationService) Unreconcile(ctx context.Context, itemID string, userID string) (*domain.StatementItem, error) {
	if err := s.RequireActor(ctx, userID); err != nil {
		return nil, err
	}
	var cleared domain.StatementItem
	err := s.withConflictRetry(ctx, "unreconcile", s.retries, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			item, err := s.statementRepo.FindItemByIDForUpdate(ctx, itemID)
			if err != nil {
				return err
			}
			if !item.Reconciled {
				cleared = *item
				return nil
			}
			item.Unlink(userID, s.Now())
			if err := s.statementRepo.UpdateItem(ctx, *item); err != nil {
				return err
			}
			item.Version++
			cleared = *item
			return s.refreshStatus(ctx, item.StatementID, userID)
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to unreconcile statement item", slog.String("item_id", itemID))
		return nil, err
	}
	reconciliationsTotal.WithLabelValues("unreconcile").Inc()
	return &cleared, nil
}
