package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/repositories/memory"
	"github.com/stretchr/testify/suite"
)

type ReconciliationServiceTestSuite struct {
	ledgerSuite
	bank      *domain.Account
	revenue   *domain.Account
	statement *domain.BankStatement
}

func (s *ReconciliationServiceTestSuite) SetupTest() {
	s.ledgerSuite.SetupTest()
	s.bank = s.account("Bank", domain.Asset, true, "", nil)
	s.revenue = s.account("Sales", domain.Income, false, "", nil)
	stmt, err := s.svc.Reconciliation.CreateStatement(s.ctx, dto.CreateBankStatementRequest{
		AccountID:     s.bank.AccountID,
		StatementDate: day(2024, time.March, 31),
	}, s.userID)
	s.Require().NoError(err)
	s.statement = stmt
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}

func (s *ReconciliationServiceTestSuite) item(amount string) *domain.StatementItem {
	it, err := s.svc.Reconciliation.AddItem(s.ctx, s.statement.StatementID, dto.StatementItemRequest{
		TransactionDate: day(2024, time.March, 10),
		Description:     "deposit",
		Amount:          money(amount),
	}, s.userID)
	s.Require().NoError(err)
	return it
}

// bankEntryID returns the entry of v that hits the bank account.
func (s *ReconciliationServiceTestSuite) bankEntryID(v *domain.Voucher) string {
	for _, e := range v.Entries {
		if e.AccountID == s.bank.AccountID {
			return e.EntryID
		}
	}
	s.FailNow("voucher has no bank entry")
	return ""
}

func (s *ReconciliationServiceTestSuite) TestCreateStatement_RequiresBankAccount() {
	_, err := s.svc.Reconciliation.CreateStatement(s.ctx, dto.CreateBankStatementRequest{
		AccountID:     s.revenue.AccountID,
		StatementDate: day(2024, time.March, 31),
	}, s.userID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ReconciliationServiceTestSuite) TestReconcile_LinksBothSides() {
	v := s.postedVoucher(s.bank.AccountID, s.revenue.AccountID, "100.00")
	it := s.item("100.00")
	entryID := s.bankEntryID(v)

	unreconciled, err := s.svc.Reconciliation.ListUnreconciledEntries(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(unreconciled, 1)

	linked, err := s.svc.Reconciliation.Reconcile(s.ctx, it.ItemID, entryID, s.userID)
	s.Require().NoError(err)
	s.True(linked.Reconciled)
	s.Require().NotNil(linked.EntryID)
	s.Equal(entryID, *linked.EntryID)

	unreconciled, err = s.svc.Reconciliation.ListUnreconciledEntries(s.ctx, &s.bank.AccountID)
	s.Require().NoError(err)
	s.Empty(unreconciled)

	stmt, err := s.svc.Reconciliation.GetStatement(s.ctx, s.statement.StatementID)
	s.Require().NoError(err)
	s.Equal(domain.StatementCompleted, stmt.Status)
}

func (s *ReconciliationServiceTestSuite) TestReconcile_SamePairIsIdempotent() {
	v := s.postedVoucher(s.bank.AccountID, s.revenue.AccountID, "50.00")
	it := s.item("50.00")
	entryID := s.bankEntryID(v)

	_, err := s.svc.Reconciliation.Reconcile(s.ctx, it.ItemID, entryID, s.userID)
	s.Require().NoError(err)
	again, err := s.svc.Reconciliation.Reconcile(s.ctx, it.ItemID, entryID, s.userID)
	s.Require().NoError(err)
	s.True(again.Reconciled)
}

func (s *ReconciliationServiceTestSuite) TestReconcile_EntryAlreadyMatched() {
	v := s.postedVoucher(s.bank.AccountID, s.revenue.AccountID, "50.00")
	first := s.item("50.00")
	second := s.item("50.00")
	entryID := s.bankEntryID(v)

	_, err := s.svc.Reconciliation.Reconcile(s.ctx, first.ItemID, entryID, s.userID)
	s.Require().NoError(err)
	_, err = s.svc.Reconciliation.Reconcile(s.ctx, second.ItemID, entryID, s.userID)
	s.ErrorIs(err, apperrors.ErrAlreadyReconciled)

	stmt, err := s.svc.Reconciliation.GetStatement(s.ctx, s.statement.StatementID)
	s.Require().NoError(err)
	s.Equal(domain.StatementReconciled, stmt.Status)
}

func (s *ReconciliationServiceTestSuite) TestReconcile_ItemAlreadyMatched() {
	v1 := s.postedVoucher(s.bank.AccountID, s.revenue.AccountID, "50.00")
	v2 := s.postedVoucher(s.bank.AccountID, s.revenue.AccountID, "60.00")
	it := s.item("50.00")

	_, err := s.svc.Reconciliation.Reconcile(s.ctx, it.ItemID, s.bankEntryID(v1), s.userID)
	s.Require().NoError(err)
	_, err = s.svc.Reconciliation.Reconcile(s.ctx, it.ItemID, s.bankEntryID(v2), s.userID)
	s.ErrorIs(err, apperrors.ErrAlreadyReconciled)
}

func (s *ReconciliationServiceTestSuite) TestReconcile_UnpostedEntry() {
	v := s.voucher(s.bank.AccountID, s.revenue.AccountID, "50.00")
	it := s.item("50.00")

	_, err := s.svc.Reconciliation.Reconcile(s.ctx, it.ItemID, s.bankEntryID(v), s.userID)
	s.ErrorIs(err, apperrors.ErrEntryNotPosted)
}

func (s *ReconciliationServiceTestSuite) TestReconcile_EntryOnOtherAccount() {
	v := s.postedVoucher(s.bank.AccountID, s.revenue.AccountID, "50.00")
	it := s.item("50.00")
	var revenueEntry string
	for _, e := range v.Entries {
		if e.AccountID == s.revenue.AccountID {
			revenueEntry = e.EntryID
		}
	}
	_, err := s.svc.Reconciliation.Reconcile(s.ctx, it.ItemID, revenueEntry, s.userID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ReconciliationServiceTestSuite) TestUnpost_BlockedWhileReconciled() {
	v := s.postedVoucher(s.bank.AccountID, s.revenue.AccountID, "75.00")
	it := s.item("75.00")
	_, err := s.svc.Reconciliation.Reconcile(s.ctx, it.ItemID, s.bankEntryID(v), s.userID)
	s.Require().NoError(err)

	_, err = s.svc.Voucher.UnpostVoucher(s.ctx, v.VoucherID, s.userID)
	s.ErrorIs(err, apperrors.ErrAlreadyReconciled)
	s.True(s.balance(s.bank.AccountID).Equal(money("75")))

	err = s.svc.Reconciliation.DeleteStatement(s.ctx, s.statement.StatementID, s.userID)
	s.ErrorIs(err, apperrors.ErrAlreadyReconciled)

	// empty entry id clears the match
	cleared, err := s.svc.Reconciliation.Reconcile(s.ctx, it.ItemID, "", s.userID)
	s.Require().NoError(err)
	s.False(cleared.Reconciled)

	_, err = s.svc.Voucher.UnpostVoucher(s.ctx, v.VoucherID, s.userID)
	s.NoError(err)
}

// staleEntryRepo serves ledger entries as they looked before their voucher
// was unposted.
type staleEntryRepo struct {
	portsrepo.VoucherRepositoryFacade
}

func (r staleEntryRepo) FindLedgerEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	entry, err := r.VoucherRepositoryFacade.FindLedgerEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	stale := *entry
	stale.Posted = true
	return &stale, nil
}

func (s *ReconciliationServiceTestSuite) TestReconcile_ChecksLockedVoucher() {
	v := s.postedVoucher(s.bank.AccountID, s.revenue.AccountID, "60.00")
	it := s.item("60.00")
	_, err := s.svc.Voucher.UnpostVoucher(s.ctx, v.VoucherID, s.userID)
	s.Require().NoError(err)

	repos := memory.NewRepositoryProvider(s.store)
	repos.VoucherRepo = staleEntryRepo{VoucherRepositoryFacade: s.store}
	recon := services.NewReconciliationService(repos, 3, services.WithClock(func() time.Time { return fixedNow }))

	_, err = recon.Reconcile(s.ctx, it.ItemID, s.bankEntryID(v), s.userID)
	s.ErrorIs(err, apperrors.ErrEntryNotPosted)

	stored, err := s.store.FindItemByID(s.ctx, it.ItemID)
	s.Require().NoError(err)
	s.False(stored.Reconciled)
}

func (s *ReconciliationServiceTestSuite) TestReconcile_RacingUnpost() {
	for i := 0; i < 20; i++ {
		v := s.postedVoucher(s.bank.AccountID, s.revenue.AccountID, "15.00")
		it := s.item("15.00")
		entryID := s.bankEntryID(v)

		var wg sync.WaitGroup
		var unpostErr, reconcileErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, unpostErr = s.svc.Voucher.UnpostVoucher(s.ctx, v.VoucherID, s.userID)
		}()
		go func() {
			defer wg.Done()
			_, reconcileErr = s.svc.Reconciliation.Reconcile(s.ctx, it.ItemID, entryID, s.userID)
		}()
		wg.Wait()

		stored, err := s.svc.Voucher.GetVoucherByID(s.ctx, v.VoucherID)
		s.Require().NoError(err)
		item, err := s.store.FindItemByID(s.ctx, it.ItemID)
		s.Require().NoError(err)

		if item.Reconciled {
			s.NoError(reconcileErr)
			s.ErrorIs(unpostErr, apperrors.ErrAlreadyReconciled)
			s.True(stored.Posted, "reconciled entry on an unposted voucher")
			_, err = s.svc.Reconciliation.Reconcile(s.ctx, it.ItemID, "", s.userID)
			s.Require().NoError(err)
		} else {
			s.NoError(unpostErr)
			s.ErrorIs(reconcileErr, apperrors.ErrEntryNotPosted)
			s.False(stored.Posted)
		}
	}
}

func (s *ReconciliationServiceTestSuite) TestAddItems_AllOrNothing() {
	_, err := s.svc.Reconciliation.AddItems(s.ctx, s.statement.StatementID, []dto.StatementItemRequest{
		{TransactionDate: day(2024, time.March, 1), Amount: money("10.00")},
		{TransactionDate: day(2024, time.March, 2), Amount: money("0")},
	}, s.userID)
	var vErr *apperrors.ValidationError
	s.Require().ErrorAs(err, &vErr)
	s.Equal("items[1].amount", vErr.Field)

	stmt, err := s.svc.Reconciliation.GetStatement(s.ctx, s.statement.StatementID)
	s.Require().NoError(err)
	s.Empty(stmt.Items)
}

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240331120000
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1001
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>318398732
<ACCTID>78346129
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301
<DTEND>20240331
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240305
<TRNAMT>250.00
<FITID>FT-001
<NAME>Customer deposit
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240307
<TRNAMT>-42.10
<FITID>FT-002
<NAME>Office supplies
<MEMO>card 1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>207.90
<DTASOF>20240331
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func (s *ReconciliationServiceTestSuite) TestImportOFX_SkipsKnownTransactions() {
	result, err := s.svc.Reconciliation.ImportOFX(s.ctx, s.statement.StatementID, strings.NewReader(sampleOFX), s.userID)
	s.Require().NoError(err)
	s.Len(result.Imported, 2)
	s.Zero(result.Skipped)
	s.Equal("FT-001", result.Imported[0].ExternalRef)
	s.True(result.Imported[1].Amount.Equal(money("-42.10")))
	s.Equal("Office supplies card 1234", result.Imported[1].Description)

	again, err := s.svc.Reconciliation.ImportOFX(s.ctx, s.statement.StatementID, strings.NewReader(sampleOFX), s.userID)
	s.Require().NoError(err)
	s.Empty(again.Imported)
	s.Equal(2, again.Skipped)
}

func (s *ReconciliationServiceTestSuite) TestImportOFX_RejectsGarbage() {
	_, err := s.svc.Reconciliation.ImportOFX(s.ctx, s.statement.StatementID, strings.NewReader("not an ofx file"), s.userID)
	s.ErrorIs(err, apperrors.ErrValidation)
}
