package argus

import (
	"encoding/base64"
	"fmt"
	"net/url"
)

// authRefPrefix versions the encoding. Bump the prefix if the identifier set
// ever changes so old references fail decode cleanly instead of misparsing.
const authRefPrefix = "AR1."

// AuthorizationReference identifies a prior Argus transaction. It is produced
// by authorize/purchase and consumed by capture/void/refund. Callers receive
// it only in encoded form and must not inspect its internal structure.
type AuthorizationReference struct {
	// RequestRef is the remote request reference (PO_ID) that locates the
	// original transaction on the gateway side
	RequestRef string

	// OrderID is the customer order id the original transaction was
	// submitted under
	OrderID string
}

// Encode packs the reference into a single opaque string
func (r AuthorizationReference) Encode() string {
	v := url.Values{}
	v.Set("ref", r.RequestRef)
	v.Set("order", r.OrderID)
	return authRefPrefix + base64.RawURLEncoding.EncodeToString([]byte(v.Encode()))
}

// DecodeError reports a malformed authorization reference
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid authorization reference: %s", e.Reason)
}

// DecodeAuthorization unpacks an encoded reference. A failed decode yields a
// *DecodeError; the orchestrator still sends the follow-up request with an
// empty reference field so the gateway reports the failure in its own
// vocabulary.
func DecodeAuthorization(authorization string) (AuthorizationReference, error) {
	if authorization == "" {
		return AuthorizationReference{}, &DecodeError{Reason: "empty reference"}
	}
	if len(authorization) <= len(authRefPrefix) || authorization[:len(authRefPrefix)] != authRefPrefix {
		return AuthorizationReference{}, &DecodeError{Reason: "unrecognized encoding version"}
	}

	raw, err := base64.RawURLEncoding.DecodeString(authorization[len(authRefPrefix):])
	if err != nil {
		return AuthorizationReference{}, &DecodeError{Reason: "malformed base64 payload"}
	}

	v, err := url.ParseQuery(string(raw))
	if err != nil {
		return AuthorizationReference{}, &DecodeError{Reason: "malformed identifier set"}
	}

	ref := AuthorizationReference{
		RequestRef: v.Get("ref"),
		OrderID:    v.Get("order"),
	}
	if ref.RequestRef == "" {
		return AuthorizationReference{}, &DecodeError{Reason: "missing request reference"}
	}
	return ref, nil
}
