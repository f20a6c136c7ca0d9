package pgsql

import (
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	payables := newPgxPayableRepository(dbPool)

	return portsrepo.RepositoryProvider{
		Tx:                newTxManager(dbPool),
		AccountRepo:       newPgxAccountRepository(dbPool),
		VoucherRepo:       newPgxVoucherRepository(dbPool),
		BankStatementRepo: newPgxBankStatementRepository(dbPool),
		VendorRepo:        newPgxVendorRepository(dbPool),
		BillRepo:          payables,
		TaxRepo:           payables,
		PurchaseOrderRepo: payables,
		PaymentRepo:       newPgxPaymentRepository(dbPool),
		UserRepo:          newPgxUserRepository(dbPool),
	}
}
