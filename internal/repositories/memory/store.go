// Package memory provides an in-memory implementation of the repository ports.
// It is used for development, tests and single-process deployments.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

// state is everything a transaction may roll back.
type state struct {
	accounts    map[string]domain.Account
	vouchers    map[string]domain.Voucher
	entryIndex  map[string]string // entryID -> voucherID
	statements  map[string]domain.BankStatement
	items       map[string]domain.StatementItem
	itemByEntry map[string]string // entryID -> itemID
	vendors     map[string]domain.Vendor
	bills       map[string]domain.Bill
	taxes       map[string]domain.TaxDeclaration
	orders      map[string]domain.PurchaseOrder
	payments    []domain.Payment
	users       map[string]domain.User
}

func newState() *state {
	return &state{
		accounts:    make(map[string]domain.Account),
		vouchers:    make(map[string]domain.Voucher),
		entryIndex:  make(map[string]string),
		statements:  make(map[string]domain.BankStatement),
		items:       make(map[string]domain.StatementItem),
		itemByEntry: make(map[string]string),
		vendors:     make(map[string]domain.Vendor),
		bills:       make(map[string]domain.Bill),
		taxes:       make(map[string]domain.TaxDeclaration),
		orders:      make(map[string]domain.PurchaseOrder),
		users:       make(map[string]domain.User),
	}
}

func copyMap[K comparable, V any](in map[K]V, cp func(V) V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		if cp != nil {
			v = cp(v)
		}
		out[k] = v
	}
	return out
}

// clone returns a deep copy. Pointer fields of the stored structs are never
// mutated in place, so copying slices is enough.
func (st *state) clone() *state {
	return &state{
		accounts:    copyMap(st.accounts, nil),
		vouchers:    copyMap(st.vouchers, cloneVoucher),
		entryIndex:  copyMap(st.entryIndex, nil),
		statements:  copyMap(st.statements, nil),
		items:       copyMap(st.items, nil),
		itemByEntry: copyMap(st.itemByEntry, nil),
		vendors:     copyMap(st.vendors, nil),
		bills:       copyMap(st.bills, nil),
		taxes:       copyMap(st.taxes, nil),
		orders:      copyMap(st.orders, cloneOrder),
		payments:    append([]domain.Payment(nil), st.payments...),
		users:       copyMap(st.users, nil),
	}
}

func cloneVoucher(v domain.Voucher) domain.Voucher {
	v.Entries = append([]domain.Entry(nil), v.Entries...)
	return v
}

func cloneOrder(o domain.PurchaseOrder) domain.PurchaseOrder {
	o.Items = append([]domain.PurchaseOrderItem(nil), o.Items...)
	return o
}

// Store is guarded by a single RWMutex. A transaction holds the write lock for
// its whole duration, so transactions are serializable.
type Store struct {
	mu         sync.RWMutex
	st         *state
	voucherSeq atomic.Int64
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{st: newState()}
}

var _ portsrepo.TransactionManager = (*Store)(nil)
var _ portsrepo.AccountRepositoryFacade = (*Store)(nil)
var _ portsrepo.VoucherRepositoryFacade = (*Store)(nil)
var _ portsrepo.BankStatementRepositoryFacade = (*Store)(nil)
var _ portsrepo.VendorRepositoryFacade = (*Store)(nil)
var _ portsrepo.BillRepositoryFacade = (*Store)(nil)
var _ portsrepo.TaxDeclarationRepositoryFacade = (*Store)(nil)
var _ portsrepo.PurchaseOrderRepositoryFacade = (*Store)(nil)
var _ portsrepo.PaymentRepositoryFacade = (*Store)(nil)
var _ portsrepo.UserRepositoryFacade = (*Store)(nil)

// NewRepositoryProvider wires one store behind every repository port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		Tx:                s,
		AccountRepo:       s,
		VoucherRepo:       s,
		BankStatementRepo: s,
		VendorRepo:        s,
		BillRepo:          s,
		TaxRepo:           s,
		PurchaseOrderRepo: s,
		PaymentRepo:       s,
		UserRepo:          s,
	}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// WithinTx runs fn holding the write lock. If fn fails the state is restored to
// the snapshot taken on entry. Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// read runs fn under the read lock unless ctx already owns the write lock.
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if !s.inTx(ctx) {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.st)
}

// write runs fn under the write lock unless ctx already owns it. fn must validate
// before mutating so that a failed call leaves the state untouched.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if !s.inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

// Reset drops all data. Meant for tests.
func (s *Store) Reset() {
	s.mu.Lock()
	s.st = newState()
	s.voucherSeq.Store(0)
	s.mu.Unlock()
}
