package argus

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/kevin07696/argus-gateway/internal/domain"
)

// Argus RPC request actions
const (
	actionPurchase  = "CCAUTHCAP"
	actionAuthorize = "CCAUTHORIZE"
	actionCapture   = "CCCAPTURE"
	actionVoid      = "CCREVERSE"
	actionRefund    = "CCCREDIT"
)

// buildPayment constructs the wire field set for authorize and purchase.
// Pure transformation: validation failures surface here, before any
// transport attempt.
func buildPayment(action string, amount domain.Money, instrument domain.PaymentInstrument, opts domain.RequestOptions) (url.Values, error) {
	if err := amount.Validate(); err != nil {
		return nil, err
	}
	// Mandatory for authorize/purchase only; follow-up operations reference
	// the original transaction instead.
	if opts.MerchantAccountID == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField,
			"merch_acct_id is required for authorize and purchase").
			WithDetail("field", "MERCH_ACCT_ID")
	}
	if opts.LineItemProductID == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField,
			"li_prod_id_1 is required for authorize and purchase").
			WithDetail("field", "LI_PROD_ID_1")
	}

	v := url.Values{}
	v.Set("REQUEST_ACTION", action)
	v.Set("AMOUNT", amount.MinorString())
	v.Set("CURRENCY_CODE", amount.CurrencyCode())
	v.Set("MERCH_ACCT_ID", opts.MerchantAccountID)
	v.Set("LI_PROD_ID_1", opts.LineItemProductID)
	v.Set("LI_VALUE_1", amount.MinorString())
	v.Set("LI_COUNT_1", "1")
	v.Set("CUST_ORDER_ID", orderID(opts))

	if err := addInstrument(v, instrument); err != nil {
		return nil, err
	}

	addAddress(v, opts.BillingAddress)
	addCustomer(v, opts)
	addStoredCredential(v, opts.StoredCredential)
	addThreeDSecure(v, opts)

	return v, nil
}

// buildFollowUp constructs the wire field set for capture, void and refund.
// The reference field is always present: when the caller supplied an
// undecodable authorization the field goes out empty and the gateway reports
// the error itself ("Invalid Data ... REQUEST_REF_PO_ID").
func buildFollowUp(action string, amount *domain.Money, ref AuthorizationReference) (url.Values, error) {
	v := url.Values{}
	v.Set("REQUEST_ACTION", action)
	v.Set("REQUEST_REF_PO_ID", ref.RequestRef)
	if ref.OrderID != "" {
		v.Set("CUST_ORDER_ID", ref.OrderID)
	}

	if amount != nil {
		if err := amount.Validate(); err != nil {
			return nil, err
		}
		v.Set("AMOUNT", amount.MinorString())
		v.Set("CURRENCY_CODE", amount.CurrencyCode())
	}

	return v, nil
}

// orderID returns the caller's order id or generates one
func orderID(opts domain.RequestOptions) string {
	if opts.OrderID != "" {
		return opts.OrderID
	}
	return uuid.NewString()
}

func addInstrument(v url.Values, instrument domain.PaymentInstrument) error {
	switch inst := instrument.(type) {
	case domain.CreditCard:
		if err := inst.Validate(); err != nil {
			return err
		}
		v.Set("PMT_NUMB", inst.Number)
		v.Set("PMT_EXPIRY", fmt.Sprintf("%02d/%d", inst.ExpMonth, inst.ExpYear))
		if inst.VerificationValue != "" {
			v.Set("PMT_KEY", inst.VerificationValue)
		}
		first, last := splitHolderName(inst.HolderName)
		if first != "" {
			v.Set("BILL_FIRST_NAME", first)
		}
		if last != "" {
			v.Set("BILL_LAST_NAME", last)
		}
		return nil
	case domain.StoredCard:
		if err := inst.Validate(); err != nil {
			return err
		}
		v.Set("PMT_ID", inst.Token)
		v.Set("PMT_ID_TYPE", "1")
		return nil
	case nil:
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField,
			"payment instrument is required")
	default:
		return domain.NewDomainError(domain.ErrorCodeValidationFailed,
			fmt.Sprintf("unsupported payment instrument %T", instrument))
	}
}

func addAddress(v url.Values, addr *domain.Address) {
	// AVS fields are optional; absence never fails the build
	if addr == nil {
		return
	}
	if addr.Street != "" {
		v.Set("BILL_ADDRESS_ONE", addr.Street)
	}
	if addr.City != "" {
		v.Set("BILL_CITY", addr.City)
	}
	if addr.State != "" {
		v.Set("BILL_STATE", addr.State)
	}
	if addr.Zip != "" {
		v.Set("BILL_ZIP", addr.Zip)
	}
	if addr.CountryCode != "" {
		v.Set("BILL_COUNTRY_CODE", addr.CountryCode)
	}
}

func addCustomer(v url.Values, opts domain.RequestOptions) {
	if opts.IP != "" {
		v.Set("CUST_IP", opts.IP)
	}
	if opts.Email != "" {
		v.Set("CUST_EMAIL", opts.Email)
	}
	if opts.Description != "" {
		v.Set("ORDER_DESCRIPTION", opts.Description)
	}
}

// storedCredentialReasons maps descriptor reasons to Argus wire codes
var storedCredentialReasons = map[domain.StoredCredentialReason]string{
	domain.StoredCredentialRecurring:   "R",
	domain.StoredCredentialUnscheduled: "U",
	domain.StoredCredentialInstallment: "I",
}

func addStoredCredential(v url.Values, sc *domain.StoredCredential) {
	if sc == nil {
		return
	}
	v.Set("CARD_ON_FILE", "1")
	if reason, ok := storedCredentialReasons[sc.ReasonType]; ok {
		v.Set("CARD_ON_FILE_REASON", reason)
	}
	if sc.InitialTransaction {
		// The gateway issues a fresh network transaction id on the initial
		// transaction; a stale caller-supplied value must not go out.
		v.Set("INITIAL_TRANSACTION", "1")
		return
	}
	v.Set("INITIAL_TRANSACTION", "0")
	if sc.NetworkTransactionID != "" {
		v.Set("NETWORK_TRANSACTION_ID", sc.NetworkTransactionID)
	}
}

func addThreeDSecure(v url.Values, opts domain.RequestOptions) {
	if !opts.ExecuteThreeD || opts.ThreeDSecure == nil {
		return
	}
	// Liability-shift evidence, passed through verbatim
	v.Set("THREEDS_VERSION", opts.ThreeDSecure.Version)
	v.Set("THREEDS_ECI", opts.ThreeDSecure.ECI)
	v.Set("THREEDS_CAVV", opts.ThreeDSecure.CAVV)
	v.Set("THREEDS_XID", opts.ThreeDSecure.XID)
}

// splitHolderName splits a cardholder name into first/last on the final word
func splitHolderName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}
