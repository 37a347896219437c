// Package argustest provides an in-process stand-in for the Argus gateway.
// It reproduces the sandbox's fixture behavior: the approving and declining
// test cards, the 505 always-declines amount, credential rejection and the
// "Invalid Data" vocabulary for bad follow-up references.
package argustest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Fixture credentials accepted by the fake host
const (
	SiteID   = "120073"
	Username = "testadmin"
	Password = "GCPem8iVT3Kkrh4z"
)

// Fixture cards and options
const (
	ApprovingCard = "4000100011112224"
	DecliningCard = "4000300011112220"

	// DecliningAmount always declines regardless of card
	DecliningAmount = "505"

	MerchantAccountID = "100229"
	LineItemProductID = "11518"
)

type order struct {
	amount   string
	orderID  string
	captured bool
	voided   bool
}

// Server is a fake Argus RPC host backed by httptest
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	orders map[string]*order // keyed by PO_ID
}

// New starts a fake Argus host. Callers own the returned server and must
// Close it.
func New() *Server {
	s := &Server{orders: make(map[string]*order)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if r.PostFormValue("SITE_ID") != SiteID ||
		r.PostFormValue("REQ_USERNAME") != Username ||
		r.PostFormValue("REQ_PASSWORD") != Password {
		writeFields(w, field{"TRANS_STATUS_NAME", "ERROR"}, field{"TRANS_VALUE", "Invalid login"})
		return
	}

	switch r.PostFormValue("REQUEST_ACTION") {
	case "CCAUTHCAP", "CCAUTHORIZE":
		s.handlePayment(w, r)
	case "CCCAPTURE":
		s.handleFollowUp(w, r, func(o *order) { o.captured = true })
	case "CCREVERSE":
		s.handleFollowUp(w, r, func(o *order) { o.voided = true })
	case "CCCREDIT":
		s.handleFollowUp(w, r, nil)
	default:
		writeFields(w,
			field{"TRANS_STATUS_NAME", "ERROR"},
			field{"TRANS_VALUE", "Invalid Data. Absent or invalid data for required tag REQUEST_ACTION."},
		)
	}
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	for _, tag := range []string{"MERCH_ACCT_ID", "LI_PROD_ID_1", "CUST_ORDER_ID"} {
		if r.PostFormValue(tag) == "" {
			writeFields(w,
				field{"TRANS_STATUS_NAME", "ERROR"},
				field{"TRANS_VALUE", fmt.Sprintf("Invalid Data. Absent or invalid data for required tag %s.", tag)},
			)
			return
		}
	}

	if r.PostFormValue("PMT_NUMB") == DecliningCard || r.PostFormValue("AMOUNT") == DecliningAmount {
		writeFields(w,
			field{"TRANS_STATUS_NAME", "DECLINED"},
			field{"TRANS_VALUE", "Auth Declined"},
			field{"CUST_ORDER_ID", r.PostFormValue("CUST_ORDER_ID")},
		)
		return
	}

	poID := strings.ReplaceAll(uuid.NewString(), "-", "")
	o := &order{
		amount:  r.PostFormValue("AMOUNT"),
		orderID: r.PostFormValue("CUST_ORDER_ID"),
	}
	s.mu.Lock()
	s.orders[poID] = o
	s.mu.Unlock()

	fields := []field{
		{"TRANS_STATUS_NAME", "APPROVED"},
		{"PO_ID", poID},
		{"CUST_ORDER_ID", o.orderID},
		{"AUTH_CODE", "T" + poID[:5]},
		{"AVS_RESPONSE", "M"},
		{"CVV2_RESPONSE", "M"},
	}
	if r.PostFormValue("CARD_ON_FILE") == "1" {
		if r.PostFormValue("INITIAL_TRANSACTION") == "1" {
			fields = append(fields, field{"NETWORK_TRANS_ID", "N" + poID[:15]})
		} else if r.PostFormValue("NETWORK_TRANSACTION_ID") == "" {
			writeFields(w,
				field{"TRANS_STATUS_NAME", "ERROR"},
				field{"TRANS_VALUE", "Invalid Data. Absent or invalid data for required tag NETWORK_TRANSACTION_ID."},
			)
			return
		}
	}
	writeFields(w, fields...)
}

func (s *Server) handleFollowUp(w http.ResponseWriter, r *http.Request, apply func(*order)) {
	ref := r.PostFormValue("REQUEST_REF_PO_ID")
	if ref == "" {
		writeFields(w,
			field{"TRANS_STATUS_NAME", "ERROR"},
			field{"TRANS_VALUE", "Invalid Data. Absent or invalid data for required tag REQUEST_REF_PO_ID."},
		)
		return
	}

	s.mu.Lock()
	o, ok := s.orders[ref]
	s.mu.Unlock()
	if !ok {
		writeFields(w,
			field{"TRANS_STATUS_NAME", "ERROR"},
			field{"TRANS_VALUE", "Invalid Data. REQUEST_REF_PO_ID does not reference a known order."},
		)
		return
	}

	if apply != nil {
		s.mu.Lock()
		apply(o)
		s.mu.Unlock()
	}

	writeFields(w,
		field{"TRANS_STATUS_NAME", "APPROVED"},
		field{"PO_ID", ref},
		field{"CUST_ORDER_ID", o.orderID},
		field{"AUTH_CODE", "T" + ref[:5]},
	)
}

type field struct {
	key   string
	value string
}

func writeFields(w http.ResponseWriter, fields ...field) {
	var b strings.Builder
	b.WriteString("<RESPONSE><FIELDS>")
	for _, f := range fields {
		b.WriteString(fmt.Sprintf(`<FIELD KEY=%q>%s</FIELD>`, f.key, f.value))
	}
	b.WriteString("</FIELDS></RESPONSE>")

	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprint(w, b.String())
}
