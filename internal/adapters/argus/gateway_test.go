package argus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kevin07696/argus-gateway/internal/adapters/argus/argustest"
	"github.com/kevin07696/argus-gateway/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCredentials() domain.Credentials {
	return domain.Credentials{
		SiteID:   argustest.SiteID,
		Username: argustest.Username,
		Password: argustest.Password,
	}
}

func newTestGateway(t *testing.T) (*Gateway, *argustest.Server) {
	t.Helper()

	srv := argustest.New()
	t.Cleanup(srv.Close)

	cfg := &Config{BaseURL: srv.URL, Timeout: 5 * time.Second}
	return New(cfg, testCredentials(), srv.Client(), zap.NewNop()), srv
}

func approvingCard() domain.CreditCard {
	card := testCard()
	card.Number = argustest.ApprovingCard
	return card
}

func decliningCard() domain.CreditCard {
	card := testCard()
	card.Number = argustest.DecliningCard
	return card
}

func fixtureOptions() domain.RequestOptions {
	return domain.RequestOptions{
		MerchantAccountID: argustest.MerchantAccountID,
		LineItemProductID: argustest.LineItemProductID,
	}
}

func TestGateway_Purchase(t *testing.T) {
	gw, _ := newTestGateway(t)
	amount := domain.Money{Amount: 100, Currency: "USD"}

	resp, err := gw.Purchase(context.Background(), amount, approvingCard(), fixtureOptions())
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "APPROVED", resp.Message)
	assert.NotEmpty(t, resp.Authorization)
	assert.NotEmpty(t, resp.AuthCode)
	assert.Equal(t, "M", resp.AVSResult.Code)
	assert.Equal(t, "M", resp.CVVResult.Code)
}

func TestGateway_PurchaseWithMoreOptions(t *testing.T) {
	gw, _ := newTestGateway(t)
	amount := domain.Money{Amount: 100, Currency: "USD"}

	opts := fixtureOptions()
	opts.OrderID = "162809072331"
	opts.Description = "Store Purchase"
	opts.IP = "127.0.0.1"
	opts.Email = "joe@example.com"
	opts.BillingAddress = &domain.Address{
		Street:      "456 My Street",
		City:        "Ottawa",
		State:       "ON",
		Zip:         "K1C2N6",
		CountryCode: "CA",
	}

	resp, err := gw.Purchase(context.Background(), amount, approvingCard(), opts)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "162809072331", resp.OrderID)
}

func TestGateway_PurchaseDeclined(t *testing.T) {
	gw, _ := newTestGateway(t)

	t.Run("declining card", func(t *testing.T) {
		amount := domain.Money{Amount: 100, Currency: "USD"}

		resp, err := gw.Purchase(context.Background(), amount, decliningCard(), fixtureOptions())
		require.NoError(t, err, "a decline is a failed response, not an error")

		assert.False(t, resp.Success)
		assert.Equal(t, "DECLINED", resp.Message)
		assert.Empty(t, resp.Authorization)
	})

	t.Run("declining amount", func(t *testing.T) {
		amount := domain.Money{Amount: 505, Currency: "USD"}

		resp, err := gw.Purchase(context.Background(), amount, approvingCard(), fixtureOptions())
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.Equal(t, "DECLINED", resp.Message)
	})
}

func TestGateway_PurchaseValidation(t *testing.T) {
	gw, _ := newTestGateway(t)
	amount := domain.Money{Amount: 100, Currency: "USD"}

	resp, err := gw.Purchase(context.Background(), amount, approvingCard(), domain.RequestOptions{})
	require.Error(t, err)

	assert.Nil(t, resp)
	assert.True(t, domain.IsValidationError(err))
}

func TestGateway_AuthorizeAndCapture(t *testing.T) {
	gw, _ := newTestGateway(t)
	amount := domain.Money{Amount: 100, Currency: "USD"}

	auth, err := gw.Authorize(context.Background(), amount, approvingCard(), fixtureOptions())
	require.NoError(t, err)
	require.True(t, auth.Success)
	require.NotEmpty(t, auth.Authorization)

	capture, err := gw.Capture(context.Background(), amount, auth.Authorization)
	require.NoError(t, err)
	assert.True(t, capture.Success)
	assert.Equal(t, "APPROVED", capture.Message)
}

func TestGateway_AuthorizeAndPartialCapture(t *testing.T) {
	gw, _ := newTestGateway(t)
	amount := domain.Money{Amount: 100, Currency: "USD"}

	auth, err := gw.Authorize(context.Background(), amount, approvingCard(), fixtureOptions())
	require.NoError(t, err)
	require.True(t, auth.Success)

	partial := domain.Money{Amount: amount.Amount - 1, Currency: "USD"}
	capture, err := gw.Capture(context.Background(), partial, auth.Authorization)
	require.NoError(t, err)
	assert.True(t, capture.Success)
}

func TestGateway_AuthorizeDeclined(t *testing.T) {
	gw, _ := newTestGateway(t)
	amount := domain.Money{Amount: 505, Currency: "USD"}

	resp, err := gw.Authorize(context.Background(), amount, approvingCard(), fixtureOptions())
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Equal(t, "DECLINED", resp.Message)
}

func TestGateway_Void(t *testing.T) {
	gw, _ := newTestGateway(t)
	amount := domain.Money{Amount: 100, Currency: "USD"}

	auth, err := gw.Authorize(context.Background(), amount, approvingCard(), fixtureOptions())
	require.NoError(t, err)
	require.True(t, auth.Success)

	void, err := gw.Void(context.Background(), auth.Authorization)
	require.NoError(t, err)
	assert.True(t, void.Success)
}

func TestGateway_RefundAfterPurchase(t *testing.T) {
	gw, _ := newTestGateway(t)
	amount := domain.Money{Amount: 100, Currency: "USD"}

	purchase, err := gw.Purchase(context.Background(), amount, approvingCard(), fixtureOptions())
	require.NoError(t, err)
	require.True(t, purchase.Success)

	refund, err := gw.Refund(context.Background(), amount, purchase.Authorization)
	require.NoError(t, err)
	assert.True(t, refund.Success)

	partial := domain.Money{Amount: amount.Amount - 1, Currency: "USD"}
	refund, err = gw.Refund(context.Background(), partial, purchase.Authorization)
	require.NoError(t, err)
	assert.True(t, refund.Success)
}

func TestGateway_FollowUpBadAuthorization(t *testing.T) {
	gw, _ := newTestGateway(t)
	amount := domain.Money{Amount: 100, Currency: "USD"}

	tests := []struct {
		name          string
		authorization string
	}{
		{name: "empty authorization", authorization: ""},
		{name: "garbage authorization", authorization: "not-a-real-reference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The call still goes out; the gateway reports the bad reference
			// in its own vocabulary rather than a local error
			capture, err := gw.Capture(context.Background(), amount, tt.authorization)
			require.NoError(t, err)
			assert.False(t, capture.Success)
			assert.Contains(t, capture.Message, "Invalid Data")
			assert.Contains(t, capture.Message, "REQUEST_REF_PO_ID")

			void, err := gw.Void(context.Background(), tt.authorization)
			require.NoError(t, err)
			assert.False(t, void.Success)
			assert.Contains(t, void.Message, "REQUEST_REF_PO_ID")

			refund, err := gw.Refund(context.Background(), amount, tt.authorization)
			require.NoError(t, err)
			assert.False(t, refund.Success)
			assert.Contains(t, refund.Message, "REQUEST_REF_PO_ID")
		})
	}
}

func TestGateway_FollowUpUnknownReference(t *testing.T) {
	gw, _ := newTestGateway(t)
	amount := domain.Money{Amount: 100, Currency: "USD"}

	// A well-formed authorization that references no known order
	unknown := AuthorizationReference{RequestRef: "FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF", OrderID: "1"}.Encode()

	resp, err := gw.Capture(context.Background(), amount, unknown)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "REQUEST_REF_PO_ID")
}

func TestGateway_StoredCredentialSequence(t *testing.T) {
	gw, _ := newTestGateway(t)
	amount := domain.Money{Amount: 100, Currency: "USD"}

	initial := fixtureOptions()
	initial.StoredCredential = &domain.StoredCredential{
		InitialTransaction: true,
		ReasonType:         domain.StoredCredentialRecurring,
	}

	first, err := gw.Purchase(context.Background(), amount, approvingCard(), initial)
	require.NoError(t, err)
	require.True(t, first.Success)
	require.NotEmpty(t, first.NetworkTransactionID, "initial transaction must yield a network transaction id")

	subsequent := fixtureOptions()
	subsequent.StoredCredential = &domain.StoredCredential{
		InitialTransaction:   false,
		ReasonType:           domain.StoredCredentialRecurring,
		NetworkTransactionID: first.NetworkTransactionID,
	}

	second, err := gw.Purchase(context.Background(), amount, approvingCard(), subsequent)
	require.NoError(t, err)
	assert.True(t, second.Success)
}

// transactionCount reads the current value of the transactions counter for an
// operation/outcome pair from the default registry
func transactionCount(t *testing.T, operation, outcome string) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != "argus_gateway_transactions_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := make(map[string]string)
			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}
			if labels["operation"] == operation && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestGateway_Verify(t *testing.T) {
	gw, _ := newTestGateway(t)
	before := transactionCount(t, "verify", "approved")

	resp, err := gw.Verify(context.Background(), approvingCard(), fixtureOptions())
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "APPROVED", resp.Message)
	// The composite is recorded under its own operation label
	assert.Equal(t, before+1, transactionCount(t, "verify", "approved"))
}

func TestGateway_VerifyCleanupVoidFailure(t *testing.T) {
	// Approves the hold but fails the compensating void. The void is
	// best-effort cleanup and must never mask the authorize outcome.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("REQUEST_ACTION") == "CCREVERSE" {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `<RESPONSE><FIELDS>`+
			`<FIELD KEY="TRANS_STATUS_NAME">APPROVED</FIELD>`+
			`<FIELD KEY="PO_ID">29CB4B85A0134EF9A702074A7695A2AC</FIELD>`+
			`<FIELD KEY="CUST_ORDER_ID">162809072331</FIELD>`+
			`<FIELD KEY="AUTH_CODE">077149</FIELD>`+
			`</FIELDS></RESPONSE>`)
	}))
	t.Cleanup(srv.Close)

	cfg := &Config{BaseURL: srv.URL, Timeout: 5 * time.Second}
	gw := New(cfg, testCredentials(), srv.Client(), zap.NewNop())

	resp, err := gw.Verify(context.Background(), approvingCard(), fixtureOptions())
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "APPROVED", resp.Message)
	assert.NotEmpty(t, resp.Authorization)
}

func TestGateway_VerifyDeclined(t *testing.T) {
	gw, _ := newTestGateway(t)

	resp, err := gw.Verify(context.Background(), decliningCard(), fixtureOptions())
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Equal(t, "DECLINED", resp.Message)
}

func TestGateway_InvalidLogin(t *testing.T) {
	srv := argustest.New()
	t.Cleanup(srv.Close)

	creds := domain.Credentials{SiteID: argustest.SiteID, Username: argustest.Username, Password: "wrong"}
	cfg := &Config{BaseURL: srv.URL, Timeout: 5 * time.Second}
	gw := New(cfg, creds, srv.Client(), zap.NewNop())

	amount := domain.Money{Amount: 100, Currency: "USD"}
	resp, err := gw.Purchase(context.Background(), amount, approvingCard(), fixtureOptions())
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid login", resp.Message)
}

func TestGateway_TransportFailure(t *testing.T) {
	srv := argustest.New()
	baseURL := srv.URL
	client := srv.Client()
	srv.Close() // nothing listening any more

	cfg := &Config{BaseURL: baseURL, Timeout: time.Second}
	gw := New(cfg, testCredentials(), client, zap.NewNop())

	amount := domain.Money{Amount: 100, Currency: "USD"}
	resp, err := gw.Purchase(context.Background(), amount, approvingCard(), fixtureOptions())
	require.Error(t, err)

	assert.Nil(t, resp, "a transport failure yields no response")
	assert.True(t, domain.IsTransportError(err))
	assert.Equal(t, domain.ErrorCodeGatewayTransport, domain.GetErrorCode(err))
}

func TestGateway_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "internal error", http.StatusInternalServerError)
			},
		},
		{
			name: "unparseable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<RESPONSE><FIELDS><FIELD KEY="))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			t.Cleanup(srv.Close)

			cfg := &Config{BaseURL: srv.URL, Timeout: time.Second}
			gw := New(cfg, testCredentials(), srv.Client(), zap.NewNop())

			amount := domain.Money{Amount: 100, Currency: "USD"}
			resp, err := gw.Purchase(context.Background(), amount, approvingCard(), fixtureOptions())
			require.Error(t, err)

			assert.Nil(t, resp)
			assert.Equal(t, domain.ErrorCodeGatewayProtocol, domain.GetErrorCode(err))
		})
	}
}

func TestGateway_TranscriptScrubbing(t *testing.T) {
	srv := argustest.New()
	t.Cleanup(srv.Close)

	var transcript bytes.Buffer
	cfg := &Config{BaseURL: srv.URL, Timeout: 5 * time.Second, TranscriptWriter: &transcript}
	gw := New(cfg, testCredentials(), srv.Client(), zap.NewNop())

	amount := domain.Money{Amount: 100, Currency: "USD"}
	resp, err := gw.Purchase(context.Background(), amount, approvingCard(), fixtureOptions())
	require.NoError(t, err)
	require.True(t, resp.Success)

	raw := transcript.String()
	require.Contains(t, raw, "PMT_NUMB=")

	scrubbed := gw.Scrub(raw)
	assert.NotContains(t, scrubbed, argustest.ApprovingCard)
	assert.NotContains(t, scrubbed, argustest.Password)
	assert.NotContains(t, scrubbed, "PMT_KEY=123")
	assert.Contains(t, scrubbed, "PMT_NUMB=[FILTERED]")
	assert.Contains(t, scrubbed, "REQ_PASSWORD=[FILTERED]")
	// The reply side of the transcript is intact
	assert.Contains(t, scrubbed, "TRANS_STATUS_NAME")
}

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("writer closed")
}

func TestGateway_TranscriptWriterFailure(t *testing.T) {
	srv := argustest.New()
	t.Cleanup(srv.Close)

	cfg := &Config{BaseURL: srv.URL, Timeout: 5 * time.Second, TranscriptWriter: brokenWriter{}}
	gw := New(cfg, testCredentials(), srv.Client(), zap.NewNop())

	amount := domain.Money{Amount: 100, Currency: "USD"}
	resp, err := gw.Purchase(context.Background(), amount, approvingCard(), fixtureOptions())
	require.NoError(t, err, "a failing transcript writer must not affect the transaction")
	assert.True(t, resp.Success)
}
