package services

import (
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, opts ...Option) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.Tx, repos.AccountRepo, opts...)
	container.Voucher = NewVoucherService(repos, cfg.ConflictRetries, opts...)
	container.Reconciliation = NewReconciliationService(repos, cfg.ConflictRetries, opts...)
	container.Vendor = NewVendorService(repos.Tx, repos.VendorRepo, opts...)

	container.Bill = NewBillService(repos, opts...)
	container.Tax = NewTaxService(repos, opts...)
	container.PurchaseOrder = NewPurchaseOrderService(repos, opts...)
	container.Payment = NewPaymentService(cfg, repos, opts...)

	// Reporting reads the awaiting-payment view through the payment service
	container.Reporting = NewReportingService(repos, container.Payment, opts...)

	// The first registered user seeds the chart of accounts
	container.User = NewUserService(repos.Tx, repos.UserRepo, container.Account, opts...)
	container.TokenService = NewTokenService(cfg, opts...)

	return container
}
