package domain

// StoredCredentialReason describes why a saved payment method is being charged
type StoredCredentialReason string

const (
	StoredCredentialRecurring   StoredCredentialReason = "recurring"
	StoredCredentialUnscheduled StoredCredentialReason = "unscheduled"
	StoredCredentialInstallment StoredCredentialReason = "installment"
)

// StoredCredential marks a transaction as the first or a subsequent use of a
// saved payment method. On the initial transaction the gateway issues a
// network transaction id which the caller must keep for later use; on
// subsequent transactions it is supplied back unchanged.
type StoredCredential struct {
	InitialTransaction   bool
	ReasonType           StoredCredentialReason
	NetworkTransactionID string
}

// ThreeDSecure carries 3-D Secure authentication evidence. The fields are
// passed through to the gateway verbatim.
type ThreeDSecure struct {
	Version string
	ECI     string
	CAVV    string
	XID     string
}

// Address holds optional billing address fields used for AVS
type Address struct {
	Street      string
	City        string
	State       string
	Zip         string
	CountryCode string
}

// RequestOptions are the optional named attributes of a transaction.
// MerchantAccountID and LineItemProductID are mandatory for authorize and
// purchase and unused for capture/void/refund.
type RequestOptions struct {
	OrderID           string
	Description       string
	MerchantAccountID string
	LineItemProductID string
	BillingAddress    *Address
	IP                string
	Email             string
	StoredCredential  *StoredCredential
	ExecuteThreeD     bool
	ThreeDSecure      *ThreeDSecure
}
