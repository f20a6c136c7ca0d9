package pgsql

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, apperrors.ErrNotFound},
		{"unique", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "bills_bill_no_key"}, apperrors.ErrDuplicate},
		{"foreign key", fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgForeignKeyViolation, TableName: "bills"}), apperrors.ErrInUse},
		{"serialization", &pgconn.PgError{Code: pgSerializationFailure}, apperrors.ErrConflict},
		{"deadlock", &pgconn.PgError{Code: pgDeadlockDetected}, apperrors.ErrConflict},
		{"app error passes through", apperrors.NewValidationError("amount", "bad"), apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err, "bill", "b-1"), tt.want)
		})
	}
	assert.NoError(t, mapError(nil, "bill", "b-1"))

	other := errors.New("connection reset")
	assert.Equal(t, other, mapError(other, "bill", "b-1"))
}

func TestMapAccountError_DuplicateCode(t *testing.T) {
	err := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "accounts_code_key"}
	mapped := mapAccountError(err, domainAccountWithCode("100001"))

	var dup *apperrors.DuplicateCodeError
	assert.ErrorAs(t, mapped, &dup)
	assert.Equal(t, "100001", dup.Code)
	assert.ErrorIs(t, mapped, apperrors.ErrDuplicate)
}

func domainAccountWithCode(code string) domain.Account {
	return domain.Account{AccountID: "a-1", Code: code}
}

func TestLockHierarchy_RequiresTransaction(t *testing.T) {
	repo := &PgxAccountRepository{}
	assert.Error(t, repo.LockHierarchy(context.Background()))
}
