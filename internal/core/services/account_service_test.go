package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	ledgerSuite
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (s *AccountServiceTestSuite) TestCreateAccount_GeneratesCode() {
	first := s.account("Cash", domain.Asset, true, "", nil)
	second := s.account("Petty Cash", domain.Asset, true, "", nil)
	expense := s.account("Rent", domain.Expense, false, "", nil)

	s.Equal("100001", first.Code)
	s.Equal("100002", second.Code)
	s.Equal("660001", expense.Code)
	s.Equal(int64(1), first.Version)
}

func (s *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	_, err := s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{Code: "1001", Name: "Cash", AccountType: domain.Asset}, s.userID)
	s.Require().NoError(err)
	_, err = s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{Code: "1001", Name: "Other", AccountType: domain.Asset}, s.userID)
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *AccountServiceTestSuite) TestCreateAccount_BankFlagOnlyForAssets() {
	_, err := s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{Name: "Loan", AccountType: domain.Liability, IsBank: true}, s.userID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *AccountServiceTestSuite) TestEffectiveBalance_RollsUpChildren() {
	a := s.account("A", domain.Asset, false, "100.00", nil)
	b := s.account("B", domain.Asset, false, "50.00", &a.AccountID)
	s.account("C", domain.Asset, false, "-20.00", &b.AccountID)

	total, err := s.svc.Account.EffectiveBalance(s.ctx, a.AccountID)
	s.Require().NoError(err)
	s.True(total.Equal(money("130")), "got %s", total)

	sub, err := s.svc.Account.EffectiveBalance(s.ctx, b.AccountID)
	s.Require().NoError(err)
	s.True(sub.Equal(money("30")))

	tree, err := s.svc.Account.GetAccountTree(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(tree, 1)
	s.Len(tree[0].Children, 1)
}

func (s *AccountServiceTestSuite) TestReparent_RejectsCycle() {
	a := s.account("A", domain.Asset, false, "", nil)
	b := s.account("B", domain.Asset, false, "", &a.AccountID)
	c := s.account("C", domain.Asset, false, "", &b.AccountID)

	_, err := s.svc.Account.ReparentAccount(s.ctx, a.AccountID, &c.AccountID, s.userID)
	s.ErrorIs(err, apperrors.ErrCycle)

	_, err = s.svc.Account.ReparentAccount(s.ctx, a.AccountID, &a.AccountID, s.userID)
	s.ErrorIs(err, apperrors.ErrCycle)

	moved, err := s.svc.Account.ReparentAccount(s.ctx, c.AccountID, nil, s.userID)
	s.Require().NoError(err)
	s.False(moved.HasParent())
}

// hierarchyRecorder notes when the hierarchy lock is taken relative to the
// hierarchy read.
type hierarchyRecorder struct {
	portsrepo.AccountRepositoryFacade
	calls []string
}

func (r *hierarchyRecorder) LockHierarchy(ctx context.Context) error {
	r.calls = append(r.calls, "lock")
	return r.AccountRepositoryFacade.LockHierarchy(ctx)
}

func (r *hierarchyRecorder) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	r.calls = append(r.calls, "list")
	return r.AccountRepositoryFacade.ListAccounts(ctx)
}

func (s *AccountServiceTestSuite) withAccountRepo(repo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return services.NewAccountService(s.store, repo, services.WithClock(func() time.Time { return fixedNow }))
}

func (s *AccountServiceTestSuite) TestReparent_LocksHierarchyBeforeReading() {
	a := s.account("A", domain.Asset, false, "", nil)
	b := s.account("B", domain.Asset, false, "", nil)
	rec := &hierarchyRecorder{AccountRepositoryFacade: s.store}
	svc := s.withAccountRepo(rec)

	_, err := svc.ReparentAccount(s.ctx, b.AccountID, &a.AccountID, s.userID)
	s.Require().NoError(err)
	s.Equal([]string{"lock", "list"}, rec.calls)

	rec.calls = nil
	name := "Renamed"
	_, err = svc.UpdateAccount(s.ctx, b.AccountID, dto.UpdateAccountRequest{Name: &name}, s.userID)
	s.Require().NoError(err)
	s.Empty(rec.calls, "rename must not take the hierarchy lock")
}

func (s *AccountServiceTestSuite) TestReparent_ConcurrentSwapCannotFormCycle() {
	for i := 0; i < 20; i++ {
		a := s.account("A", domain.Asset, false, "", nil)
		b := s.account("B", domain.Asset, false, "", nil)

		moves := [][2]string{{a.AccountID, b.AccountID}, {b.AccountID, a.AccountID}}
		errs := make([]error, len(moves))
		var wg sync.WaitGroup
		for n, move := range moves {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[n] = s.svc.Account.ReparentAccount(s.ctx, move[0], &move[1], s.userID)
			}()
		}
		wg.Wait()

		failed := 0
		for _, err := range errs {
			if err != nil {
				s.ErrorIs(err, apperrors.ErrCycle)
				failed++
			}
		}
		s.Equal(1, failed, "exactly one of the swapped moves must lose")
	}

	_, err := s.svc.Account.GetAccountTree(s.ctx)
	s.NoError(err)
}

// codeCollisionRepo fails the first saves as if a concurrent create had just
// taken the same code.
type codeCollisionRepo struct {
	portsrepo.AccountRepositoryFacade
	collisions int
	saved      []string
}

func (r *codeCollisionRepo) SaveAccount(ctx context.Context, account domain.Account) error {
	r.saved = append(r.saved, account.Code)
	if r.collisions > 0 {
		r.collisions--
		return &apperrors.DuplicateCodeError{Code: account.Code}
	}
	return r.AccountRepositoryFacade.SaveAccount(ctx, account)
}

func (s *AccountServiceTestSuite) TestCreateAccount_RetriesTakenGeneratedCode() {
	repo := &codeCollisionRepo{AccountRepositoryFacade: s.store, collisions: 1}
	acc, err := s.withAccountRepo(repo).CreateAccount(s.ctx, dto.CreateAccountRequest{Name: "Petty Cash", AccountType: domain.Asset}, s.userID)
	s.Require().NoError(err)
	s.Len(repo.saved, 2)
	s.NotEmpty(acc.Code)

	stored, err := s.store.FindAccountByCode(s.ctx, acc.Code)
	s.Require().NoError(err)
	s.Equal(acc.AccountID, stored.AccountID)
}

func (s *AccountServiceTestSuite) TestCreateAccount_RetriesGeneratedCodeOnce() {
	repo := &codeCollisionRepo{AccountRepositoryFacade: s.store, collisions: 2}
	_, err := s.withAccountRepo(repo).CreateAccount(s.ctx, dto.CreateAccountRequest{Name: "Petty Cash", AccountType: domain.Asset}, s.userID)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.Len(repo.saved, 2)
}

func (s *AccountServiceTestSuite) TestCreateAccount_ExplicitCodeNotRetried() {
	repo := &codeCollisionRepo{AccountRepositoryFacade: s.store, collisions: 1}
	_, err := s.withAccountRepo(repo).CreateAccount(s.ctx, dto.CreateAccountRequest{Code: "1999", Name: "Petty Cash", AccountType: domain.Asset}, s.userID)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.Len(repo.saved, 1)
}

func (s *AccountServiceTestSuite) TestUpdateAccount_StaleVersion() {
	a := s.account("A", domain.Asset, false, "", nil)
	name := "Renamed"
	updated, err := s.svc.Account.UpdateAccount(s.ctx, a.AccountID, dto.UpdateAccountRequest{Name: &name, Version: &a.Version}, s.userID)
	s.Require().NoError(err)
	s.Equal(int64(2), updated.Version)

	_, err = s.svc.Account.UpdateAccount(s.ctx, a.AccountID, dto.UpdateAccountRequest{Name: &name, Version: &a.Version}, s.userID)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *AccountServiceTestSuite) TestDeleteAccount_Guards() {
	parent := s.account("Parent", domain.Asset, true, "", nil)
	child := s.account("Child", domain.Asset, false, "", &parent.AccountID)
	income := s.account("Sales", domain.Income, false, "", nil)

	err := s.svc.Account.DeleteAccount(s.ctx, parent.AccountID, s.userID)
	s.ErrorIs(err, apperrors.ErrHasChildren)

	s.voucher(child.AccountID, income.AccountID, "5.00")
	err = s.svc.Account.DeleteAccount(s.ctx, child.AccountID, s.userID)
	s.ErrorIs(err, apperrors.ErrReferencedByLedger)

	free := s.account("Free", domain.Expense, false, "", nil)
	s.NoError(s.svc.Account.DeleteAccount(s.ctx, free.AccountID, s.userID))
	_, err = s.svc.Account.GetAccountByID(s.ctx, free.AccountID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestSeedDefaultChart_OnlyWhenEmpty() {
	s.Require().NoError(s.svc.Account.SeedDefaultChart(s.ctx, s.userID))
	accounts, err := s.svc.Account.ListAccounts(s.ctx)
	s.Require().NoError(err)
	seeded := len(accounts)
	s.NotZero(seeded)

	s.Require().NoError(s.svc.Account.SeedDefaultChart(s.ctx, s.userID))
	accounts, err = s.svc.Account.ListAccounts(s.ctx)
	s.Require().NoError(err)
	s.Len(accounts, seeded)

	banks, err := s.svc.Account.ListBankAccounts(s.ctx)
	s.Require().NoError(err)
	s.Len(banks, 2)
}
