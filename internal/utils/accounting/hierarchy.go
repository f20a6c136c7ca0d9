package accounting

import (
	"sort"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BuildForest arranges accounts into trees addressed by parent id, children ordered by
// code, and fills in every node's effective balance. An account whose parent is not in
// the slice is a root. Accounts unreachable from any root sit on a parent cycle and
// yield a CycleError.
func BuildForest(accounts []domain.Account) ([]domain.AccountNode, error) {
	byID := make(map[string]struct{}, len(accounts))
	for _, acc := range accounts {
		byID[acc.AccountID] = struct{}{}
	}
	children := make(map[string][]domain.Account, len(accounts))
	var roots []domain.Account
	for _, acc := range accounts {
		if acc.HasParent() {
			if _, ok := byID[*acc.ParentAccountID]; ok {
				children[*acc.ParentAccountID] = append(children[*acc.ParentAccountID], acc)
				continue
			}
		}
		roots = append(roots, acc)
	}
	byCode := func(list []domain.Account) {
		sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	}
	byCode(roots)

	visited := make(map[string]struct{}, len(accounts))
	var build func(acc domain.Account) domain.AccountNode
	build = func(acc domain.Account) domain.AccountNode {
		visited[acc.AccountID] = struct{}{}
		node := domain.AccountNode{Account: acc, EffectiveBalance: acc.Balance, Children: []domain.AccountNode{}}
		kids := children[acc.AccountID]
		byCode(kids)
		for _, child := range kids {
			childNode := build(child)
			node.EffectiveBalance = node.EffectiveBalance.Add(childNode.EffectiveBalance)
			node.Children = append(node.Children, childNode)
		}
		return node
	}

	forest := make([]domain.AccountNode, 0, len(roots))
	for _, root := range roots {
		forest = append(forest, build(root))
	}
	for _, acc := range accounts {
		if _, ok := visited[acc.AccountID]; !ok {
			return nil, &apperrors.CycleError{AccountID: acc.AccountID, ParentID: *acc.ParentAccountID}
		}
	}
	return forest, nil
}

// FindNode searches the forest depth first.
func FindNode(forest []domain.AccountNode, accountID string) *domain.AccountNode {
	for i := range forest {
		if forest[i].AccountID == accountID {
			return &forest[i]
		}
		if found := FindNode(forest[i].Children, accountID); found != nil {
			return found
		}
	}
	return nil
}

// EffectiveBalances flattens the forest into account id -> effective balance.
func EffectiveBalances(forest []domain.AccountNode) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	var walk func(nodes []domain.AccountNode)
	walk = func(nodes []domain.AccountNode) {
		for _, n := range nodes {
			out[n.AccountID] = n.EffectiveBalance
			walk(n.Children)
		}
	}
	walk(forest)
	return out
}

// WouldCycle reports whether placing accountID under newParentID makes the account
// its own ancestor. parents maps account id to parent id for every existing account.
func WouldCycle(parents map[string]string, accountID, newParentID string) bool {
	seen := make(map[string]struct{}, len(parents))
	for cur := newParentID; cur != ""; cur = parents[cur] {
		if cur == accountID {
			return true
		}
		if _, ok := seen[cur]; ok {
			return true
		}
		seen[cur] = struct{}{}
	}
	return false
}
