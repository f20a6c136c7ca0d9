package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates a concurrent modification; the caller should re-read and retry.
var ErrConflict = errors.New("concurrent modification conflict")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInUse indicates the resource is still referenced by other records.
var ErrInUse = errors.New("resource is in use")

// ErrInvalidState indicates the record's lifecycle status does not allow the operation.
var ErrInvalidState = errors.New("operation not allowed in current state")

// Ledger specific sentinels. The typed errors below unwrap to these.
var (
	ErrUnbalancedEntry        = errors.New("voucher debits and credits do not balance")
	ErrCycle                  = errors.New("account hierarchy cycle")
	ErrHasChildren            = errors.New("account has child accounts")
	ErrReferencedByLedger     = errors.New("account is referenced by ledger entries")
	ErrPostedVoucherImmutable = errors.New("posted voucher cannot be modified")
	ErrAlreadyReconciled      = errors.New("already reconciled")
	ErrEntryNotPosted         = errors.New("voucher entry is not posted")
	ErrEmptySelection         = errors.New("no payable records selected")
	ErrInsufficientFunds      = errors.New("insufficient funds")
)

// AppError is a generic error carrying an HTTP-ish status code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// ValidationError reports a missing or invalid field. Message is surfaced to the caller verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError names the resource that could not be found.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError reports a version mismatch on a mutable record.
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s was modified concurrently, retry", e.Resource)
	}
	return fmt.Sprintf("%s %s was modified concurrently, retry", e.Resource, e.ID)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflictError creates a ConflictError.
func NewConflictError(resource, id string) *ConflictError {
	return &ConflictError{Resource: resource, ID: id}
}

// UnbalancedEntryError carries both sides of an unbalanced voucher.
type UnbalancedEntryError struct {
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("%s: debit total is %s and credit total is %s",
		ErrUnbalancedEntry.Error(), e.DebitTotal.StringFixed(2), e.CreditTotal.StringFixed(2))
}

func (e *UnbalancedEntryError) Unwrap() error { return ErrUnbalancedEntry }

// CycleError is returned when a parent assignment would make an account its own ancestor.
type CycleError struct {
	AccountID string
	ParentID  string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: account %s cannot be placed under %s", ErrCycle.Error(), e.AccountID, e.ParentID)
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// DuplicateCodeError is returned when an account code is already taken.
type DuplicateCodeError struct {
	Code string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("account code %q already in use", e.Code)
}

// Unwrap lets callers match both the specific and the generic duplicate error.
func (e *DuplicateCodeError) Unwrap() []error { return []error{ErrDuplicate} }

// HasChildrenError is returned when deleting an account that still has children.
type HasChildrenError struct {
	AccountID  string
	ChildCount int
}

func (e *HasChildrenError) Error() string {
	return fmt.Sprintf("%s: account %s has %d child account(s)", ErrHasChildren.Error(), e.AccountID, e.ChildCount)
}

func (e *HasChildrenError) Unwrap() error { return ErrHasChildren }

// ReferencedByLedgerError is returned when deleting an account used by voucher entries.
type ReferencedByLedgerError struct {
	AccountID string
}

func (e *ReferencedByLedgerError) Error() string {
	return fmt.Sprintf("%s: %s", ErrReferencedByLedger.Error(), e.AccountID)
}

func (e *ReferencedByLedgerError) Unwrap() error { return ErrReferencedByLedger }

// PostedVoucherImmutableError is returned when editing or deleting a posted voucher.
type PostedVoucherImmutableError struct {
	VoucherID string
}

func (e *PostedVoucherImmutableError) Error() string {
	return fmt.Sprintf("voucher %s is posted and cannot be modified", e.VoucherID)
}

func (e *PostedVoucherImmutableError) Unwrap() error { return ErrPostedVoucherImmutable }

// AlreadyReconciledError is returned when either side of a match is already linked elsewhere.
type AlreadyReconciledError struct {
	ItemID  string
	EntryID string
	Reason  string
}

func (e *AlreadyReconciledError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", ErrAlreadyReconciled.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: item %s, entry %s", ErrAlreadyReconciled.Error(), e.ItemID, e.EntryID)
}

func (e *AlreadyReconciledError) Unwrap() error { return ErrAlreadyReconciled }

// EntryNotPostedError is returned when reconciling against an entry of an unposted voucher.
type EntryNotPostedError struct {
	EntryID   string
	VoucherID string
}

func (e *EntryNotPostedError) Error() string {
	return fmt.Sprintf("entry %s belongs to unposted voucher %s", e.EntryID, e.VoucherID)
}

func (e *EntryNotPostedError) Unwrap() error { return ErrEntryNotPosted }

// EmptySelectionError is returned when a payment batch selects nothing.
type EmptySelectionError struct{}

func (e *EmptySelectionError) Error() string { return ErrEmptySelection.Error() }

func (e *EmptySelectionError) Unwrap() error { return ErrEmptySelection }

// InsufficientFundsError carries the available and required amounts.
type InsufficientFundsError struct {
	BankAccountID string
	Available     decimal.Decimal
	Required      decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s in account %s: available %s, required %s",
		ErrInsufficientFunds.Error(), e.BankAccountID, e.Available.StringFixed(2), e.Required.StringFixed(2))
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }
