package ports

import (
	"context"

	"github.com/kevin07696/argus-gateway/internal/domain"
)

// AVSResult is the Address Verification System outcome for a transaction.
// Code is the processor's single-letter scheme; Message is its description.
// A transaction without AVS data has an empty result.
type AVSResult struct {
	Code    string
	Message string
}

// CVVResult is the card verification value check outcome
type CVVResult struct {
	Code    string
	Message string
}

// Response is the normalized outcome of a gateway operation.
// Success=true implies Message reflects an approval state and, for
// authorize/purchase, Authorization is present.
type Response struct {
	Success bool
	Message string

	// Authorization is the opaque reference produced by authorize/purchase
	// and consumed by capture/void/refund. Empty when the operation does not
	// yield one. Treat as an opaque capability.
	Authorization string

	AVSResult AVSResult
	CVVResult CVVResult

	// AuthCode is the issuer authorization code, when approved
	AuthCode string

	// NetworkTransactionID is returned on the initial stored-credential
	// transaction and must be supplied back on subsequent ones
	NetworkTransactionID string

	// OrderID is the order id echoed by the gateway
	OrderID string

	// Raw is the decoded wire payload, kept for diagnostics
	Raw map[string]string
}

// Gateway defines the card-processing operations of the Argus adapter.
//
// Business outcomes (declines, remote-reported errors) are values:
// Response.Success=false with the remote's message. An error return means the
// request never produced a usable remote reply - malformed local input
// detected before transport, or a transport failure.
type Gateway interface {
	// Purchase authorizes and captures in one step
	Purchase(ctx context.Context, amount domain.Money, instrument domain.PaymentInstrument, opts domain.RequestOptions) (*Response, error)

	// Authorize places a hold; the returned Response carries the
	// authorization reference needed for capture or void
	Authorize(ctx context.Context, amount domain.Money, instrument domain.PaymentInstrument, opts domain.RequestOptions) (*Response, error)

	// Capture settles a prior authorization. Partial capture is allowed.
	Capture(ctx context.Context, amount domain.Money, authorization string) (*Response, error)

	// Void cancels a prior authorization
	Void(ctx context.Context, authorization string) (*Response, error)

	// Refund returns funds from a prior purchase or capture. Partial refund
	// is allowed.
	Refund(ctx context.Context, amount domain.Money, authorization string) (*Response, error)

	// Verify checks an instrument without financial impact, composed as a
	// minimal authorize followed by a best-effort void
	Verify(ctx context.Context, instrument domain.PaymentInstrument, opts domain.RequestOptions) (*Response, error)

	// Scrub redacts card data and credentials from a captured wire transcript
	Scrub(transcript string) string
}
