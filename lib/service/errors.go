package service

import "errors"

var (
	ErrUnauthorized            = errors.New("caller is not allowed to perform this operation on the invoice")
	ErrInsufficientFunds       = errors.New("not enough balance")
	ErrAddressAlreadyInUse     = errors.New("invoice address already in use")
	ErrUnsettledConfirmAttempt = errors.New("tried to confirm an unsettled invoice")
	ErrAlreadySettled          = errors.New("invoice already settled")
	ErrInvoiceNotFound         = errors.New("invoice not found")
	ErrSameParty               = errors.New("creditor and debtor must be different identities")
	ErrMemoTooLong             = errors.New("memo too long")
	ErrProjectIDInvalid        = errors.New("invalid project id")
	ErrInvalidNonce            = errors.New("nonce does not match the canonical address bump")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInvoiceLocked           = errors.New("invoice is locked by another operation")
	ErrEventReplayed           = errors.New("event has already been processed")
)

var ErrInvalidCommand = errors.New("invalid command event")
