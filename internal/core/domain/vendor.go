package domain

// Vendor is a supplier referenced by bills, purchase orders and vouchers.
type Vendor struct {
	VendorID    string `json:"vendorID"`
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Description string `json:"description"`
	AuditFields
}
