package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Voucher        VoucherSvcFacade
	Reconciliation ReconciliationSvcFacade
	Vendor         VendorSvcFacade
	Bill           BillSvcFacade
	Tax            TaxSvcFacade
	PurchaseOrder  PurchaseOrderSvcFacade
	Payment        PaymentSvcFacade
	Reporting      ReportingService
	User           UserSvcFacade
	TokenService   TokenSvcFacade
}
