package argus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kevin07696/argus-gateway/internal/adapters/ports"
	"github.com/kevin07696/argus-gateway/internal/domain"
	pkghttp "github.com/kevin07696/argus-gateway/pkg/http"
	"github.com/kevin07696/argus-gateway/pkg/observability"
	"go.uber.org/zap"
)

// Config contains configuration for the Argus gateway adapter
type Config struct {
	// Base URL for the Argus RPC endpoint
	// Test: https://gw-uat.argusgateway.net/rpc
	// Live: https://gw.argusgateway.net/rpc
	BaseURL string

	// HTTP client timeout
	Timeout time.Duration

	// TLS configuration
	InsecureSkipVerify bool

	// TranscriptWriter, when set, receives the raw wire traffic of every
	// call. Pass the captured text through Scrub before storing or showing
	// it.
	TranscriptWriter io.Writer
}

// DefaultConfig returns default configuration for the given environment
func DefaultConfig(environment string) *Config {
	baseURL := "https://gw.argusgateway.net/rpc" // Live
	if environment == "test" {
		baseURL = "https://gw-uat.argusgateway.net/rpc"
	}

	return &Config{
		BaseURL:            baseURL,
		Timeout:            30 * time.Second,
		InsecureSkipVerify: environment == "test",
	}
}

// Gateway is the Argus adapter. It holds no cross-call mutable state beyond
// the immutable credentials, so concurrent calls are safe as long as the
// injected HTTP client is.
type Gateway struct {
	config     *Config
	creds      domain.Credentials
	httpClient ports.HTTPClient
	logger     *zap.Logger

	transcriptMu sync.Mutex
}

var _ ports.Gateway = (*Gateway)(nil)

// New creates an Argus gateway adapter with an injected HTTP client
func New(config *Config, creds domain.Credentials, httpClient ports.HTTPClient, logger *zap.Logger) *Gateway {
	return &Gateway{
		config:     config,
		creds:      creds,
		httpClient: httpClient,
		logger:     logger,
	}
}

// NewWithDefaults creates an Argus gateway adapter with a pooled HTTP client
// tuned for the Argus host
func NewWithDefaults(config *Config, creds domain.Credentials, logger *zap.Logger) *Gateway {
	clientCfg := pkghttp.ArgusClientConfig()
	clientCfg.InsecureSkipVerify = config.InsecureSkipVerify

	return New(config, creds, pkghttp.NewHTTPClient(clientCfg, config.Timeout), logger)
}

// verifyAmount is the minimal hold placed by Verify before the compensating
// void
var verifyAmount = domain.Money{Amount: 100, Currency: "USD"}

// Purchase authorizes and captures in one step
func (g *Gateway) Purchase(ctx context.Context, amount domain.Money, instrument domain.PaymentInstrument, opts domain.RequestOptions) (*ports.Response, error) {
	return g.transact(ctx, "purchase", func() (url.Values, error) {
		return buildPayment(actionPurchase, amount, instrument, opts)
	})
}

// Authorize places a hold on the instrument. On success the Response carries
// the authorization reference for a later capture or void.
func (g *Gateway) Authorize(ctx context.Context, amount domain.Money, instrument domain.PaymentInstrument, opts domain.RequestOptions) (*ports.Response, error) {
	return g.transact(ctx, "authorize", func() (url.Values, error) {
		return buildPayment(actionAuthorize, amount, instrument, opts)
	})
}

// Capture settles a prior authorization. Partial capture (amount below the
// authorized amount) is a normal path.
func (g *Gateway) Capture(ctx context.Context, amount domain.Money, authorization string) (*ports.Response, error) {
	ref := g.decodeReference("capture", authorization)
	return g.transact(ctx, "capture", func() (url.Values, error) {
		return buildFollowUp(actionCapture, &amount, ref)
	})
}

// Void cancels a prior authorization
func (g *Gateway) Void(ctx context.Context, authorization string) (*ports.Response, error) {
	ref := g.decodeReference("void", authorization)
	return g.transact(ctx, "void", func() (url.Values, error) {
		return buildFollowUp(actionVoid, nil, ref)
	})
}

// Refund returns funds from a prior purchase or capture. Partial refund is
// allowed; remote-side business rules (unsettled orders and the like) come
// back as ordinary failed Responses.
func (g *Gateway) Refund(ctx context.Context, amount domain.Money, authorization string) (*ports.Response, error) {
	ref := g.decodeReference("refund", authorization)
	return g.transact(ctx, "refund", func() (url.Values, error) {
		return buildFollowUp(actionRefund, &amount, ref)
	})
}

// Verify checks an instrument without lasting financial impact. Argus has no
// dedicated verify endpoint, so it is composed as a minimal authorize
// followed by a void of the resulting hold. The void is best-effort cleanup:
// its failure is logged and never masks the authorize outcome.
func (g *Gateway) Verify(ctx context.Context, instrument domain.PaymentInstrument, opts domain.RequestOptions) (*ports.Response, error) {
	// The composite gets its own metrics label on top of the constituent
	// authorize/void recordings
	done := observability.TrackTransaction("verify")

	auth, err := g.Authorize(ctx, verifyAmount, instrument, opts)
	if err != nil {
		if domain.IsValidationError(err) {
			done(observability.OutcomeInvalidRequest)
		} else {
			done(observability.OutcomeTransportError)
		}
		return auth, err
	}
	if !auth.Success {
		done(outcome(auth))
		return auth, nil
	}

	if auth.Authorization != "" {
		if void, verr := g.Void(ctx, auth.Authorization); verr != nil {
			g.logger.Warn("Verify cleanup void failed",
				zap.Error(verr),
			)
		} else if !void.Success {
			g.logger.Warn("Verify cleanup void was not approved",
				zap.String("message", void.Message),
			)
		}
	}

	done(observability.OutcomeApproved)
	return auth, nil
}

// Scrub redacts card data and credentials from a captured wire transcript
func (g *Gateway) Scrub(transcript string) string {
	return Scrub(transcript)
}

// decodeReference unpacks an authorization reference for a follow-up call.
// An undecodable reference is not a local short-circuit: the follow-up still
// goes out with an empty reference field and the gateway reports the failure
// in its own vocabulary ("Invalid Data ... REQUEST_REF_PO_ID").
func (g *Gateway) decodeReference(operation, authorization string) AuthorizationReference {
	ref, err := DecodeAuthorization(authorization)
	if err != nil {
		g.logger.Warn("Authorization reference failed to decode, submitting empty reference",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return AuthorizationReference{}
	}
	return ref
}

// transact runs one operation: build the wire request, post it, classify the
// reply. Exactly one network round-trip, no automatic retry.
func (g *Gateway) transact(ctx context.Context, operation string, build func() (url.Values, error)) (*ports.Response, error) {
	done := observability.TrackTransaction(operation)

	form, err := build()
	if err != nil {
		done(observability.OutcomeInvalidRequest)
		g.logger.Error("Invalid gateway request",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return nil, err
	}

	g.logger.Info("Processing Argus transaction",
		zap.String("operation", operation),
		zap.String("request_action", form.Get("REQUEST_ACTION")),
		zap.String("order_id", form.Get("CUST_ORDER_ID")),
		zap.String("amount", form.Get("AMOUNT")),
	)

	g.addCredentials(form)
	encoded := form.Encode()
	g.recordTranscript(fmt.Sprintf("POST %s\n%s\n", g.config.BaseURL, encoded))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.config.BaseURL, strings.NewReader(encoded))
	if err != nil {
		done(observability.OutcomeTransportError)
		g.logger.Error("Failed to create HTTP request", zap.Error(err))
		return nil, domain.WrapError(domain.ErrorCodeGatewayTransport, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	startTime := time.Now()
	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		done(observability.OutcomeTransportError)
		g.logger.Error("Failed to send Argus request",
			zap.String("operation", operation),
			zap.Error(err),
			zap.Duration("elapsed", time.Since(startTime)),
		)
		return nil, domain.WrapError(domain.ErrorCodeGatewayTransport, "gateway request failed", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		done(observability.OutcomeTransportError)
		g.logger.Error("Failed to read response body", zap.Error(err))
		return nil, domain.WrapError(domain.ErrorCodeGatewayTransport, "failed to read response", err)
	}
	g.recordTranscript(string(body) + "\n")

	if httpResp.StatusCode != http.StatusOK {
		done(observability.OutcomeTransportError)
		g.logger.Error("Unexpected HTTP status from gateway",
			zap.String("operation", operation),
			zap.Int("status_code", httpResp.StatusCode),
		)
		return nil, domain.NewDomainError(domain.ErrorCodeGatewayProtocol,
			fmt.Sprintf("unexpected HTTP status %d", httpResp.StatusCode))
	}

	fields, err := parseFields(body)
	if err != nil {
		done(observability.OutcomeTransportError)
		g.logger.Error("Failed to parse Argus response",
			zap.Error(err),
			zap.String("body", string(body)),
		)
		return nil, domain.WrapError(domain.ErrorCodeGatewayProtocol, "failed to parse response", err)
	}

	response := classify(fields)

	g.logger.Info("Classified Argus response",
		zap.String("operation", operation),
		zap.Bool("success", response.Success),
		zap.String("message", response.Message),
		zap.String("order_id", response.OrderID),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	done(outcome(response))
	return response, nil
}

// addCredentials stamps the account credentials onto an outbound request
func (g *Gateway) addCredentials(form url.Values) {
	form.Set("SITE_ID", g.creds.SiteID)
	form.Set("REQ_USERNAME", g.creds.Username)
	form.Set("REQ_PASSWORD", g.creds.Password)
}

// outcome maps a classified response onto a metrics label
func outcome(r *ports.Response) string {
	if r.Success {
		return observability.OutcomeApproved
	}
	if r.Raw[fieldTransStatus] == statusDeclined {
		return observability.OutcomeDeclined
	}
	return observability.OutcomeRemoteError
}

// recordTranscript appends raw wire traffic to the configured writer
func (g *Gateway) recordTranscript(text string) {
	if g.config.TranscriptWriter == nil {
		return
	}
	g.transcriptMu.Lock()
	defer g.transcriptMu.Unlock()
	if _, err := io.WriteString(g.config.TranscriptWriter, text); err != nil {
		g.logger.Debug("Failed to record transcript", zap.Error(err))
	}
}
