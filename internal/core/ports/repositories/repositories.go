package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	Tx                TransactionManager
	AccountRepo       AccountRepositoryFacade
	VoucherRepo       VoucherRepositoryFacade
	BankStatementRepo BankStatementRepositoryFacade
	VendorRepo        VendorRepositoryFacade
	BillRepo          BillRepositoryFacade
	TaxRepo           TaxDeclarationRepositoryFacade
	PurchaseOrderRepo PurchaseOrderRepositoryFacade
	PaymentRepo       PaymentRepositoryFacade
	UserRepo          UserRepositoryFacade
}
