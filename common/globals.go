package common

const (
	InvoiceStateOpen      = "open"
	InvoiceStateFullyPaid = "fully_paid"
	InvoiceStateSettled   = "settled"

	InvoiceRoleCreditor = "creditor"
	InvoiceRoleDebtor   = "debtor"

	InvoiceEventIssued  = "issued"
	InvoiceEventPaid    = "paid"
	InvoiceEventSettled = "settled"

	// pubsub topic every invoice event is published to
	InvoiceTopicAll = "all"

	AccountTypeCurrent  = "current"
	AccountTypeExternal = "external"

	// identity of the system account deposits are debited from
	ExternalAccountIdentity = "external"

	// nostr event kinds, cfr. NIP-98 for the login kind
	EventKindLogin   = 27235
	EventKindCommand = 23195

	EventContentLogin   = "quokkahub login"
	EventContentIssue   = "QUOKKA_ISSUE"
	EventContentPay     = "QUOKKA_PAY"
	EventContentConfirm = "QUOKKA_CONFIRM"
)
