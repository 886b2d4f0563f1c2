// Package domain holds the typed identifiers shared across modules.
// Constructing them through the Parse helpers at trust boundaries keeps the
// emptiness checks in one place; direct casting bypasses validation.
package domain

import (
	dErrors "biokey/pkg/domain-errors"
)

// AccountID identifies the account that owns keys, codes, and challenges.
// The service runs with a single logical account, so this is the account's
// email address rather than a surrogate key.
type AccountID string

// ParseAccountID constructs an AccountID from external input.
func ParseAccountID(s string) (AccountID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeMissingInput, "account id cannot be empty")
	}
	return AccountID(s), nil
}

func (id AccountID) String() string { return string(id) }

func (id AccountID) IsNil() bool { return id == "" }

// TransactionID labels an authorization attempt for audit purposes. It never
// gates the authorization decision itself.
type TransactionID string

// ParseTransactionID constructs a TransactionID from external input.
func ParseTransactionID(s string) (TransactionID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeMissingInput, "transaction id cannot be empty")
	}
	return TransactionID(s), nil
}

func (id TransactionID) String() string { return string(id) }

func (id TransactionID) IsNil() bool { return id == "" }
