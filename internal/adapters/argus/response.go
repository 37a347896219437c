package argus

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/kevin07696/argus-gateway/internal/adapters/ports"
)

// Wire field keys in Argus RPC responses
const (
	fieldTransStatus    = "TRANS_STATUS_NAME"
	fieldTransValue     = "TRANS_VALUE"
	fieldPOID           = "PO_ID"
	fieldCustOrderID    = "CUST_ORDER_ID"
	fieldAuthCode       = "AUTH_CODE"
	fieldAVSResponse    = "AVS_RESPONSE"
	fieldCVV2Response   = "CVV2_RESPONSE"
	fieldNetworkTransID = "NETWORK_TRANS_ID"
)

// Transaction status values reported by Argus
const (
	statusApproved = "APPROVED"
	statusDeclined = "DECLINED"
	statusError    = "ERROR"
)

// argusResponse is the XML envelope Argus returns.
// Responses use the <FIELD KEY="xxx">value</FIELD> shape.
type argusResponse struct {
	XMLName xml.Name     `xml:"RESPONSE"`
	Fields  []argusField `xml:"FIELDS>FIELD"`
}

type argusField struct {
	Key   string `xml:"KEY,attr"`
	Value string `xml:",chardata"`
}

// parseFields decodes a raw reply into a field map. Argus normally answers in
// XML; URL-encoded key-value replies are accepted as well.
func parseFields(body []byte) (map[string]string, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, fmt.Errorf("empty response body")
	}

	if strings.HasPrefix(trimmed, "<") {
		var resp argusResponse
		if err := xml.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal XML: %w", err)
		}
		fields := make(map[string]string, len(resp.Fields))
		for _, f := range resp.Fields {
			fields[f.Key] = f.Value
		}
		if len(fields) == 0 {
			return nil, fmt.Errorf("response contains no fields")
		}
		return fields, nil
	}

	params, err := url.ParseQuery(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key-value response: %w", err)
	}
	fields := make(map[string]string, len(params))
	for key := range params {
		fields[key] = params.Get(key)
	}
	return fields, nil
}

// classify interprets a decoded reply as a normalized Response. It performs
// no network I/O and no caller-input validation.
func classify(fields map[string]string) *ports.Response {
	status := fields[fieldTransStatus]
	success := status == statusApproved

	resp := &ports.Response{
		Success:              success,
		Message:              message(fields, status),
		AVSResult:            avsResult(fields[fieldAVSResponse]),
		CVVResult:            cvvResult(fields[fieldCVV2Response]),
		AuthCode:             fields[fieldAuthCode],
		NetworkTransactionID: fields[fieldNetworkTransID],
		OrderID:              fields[fieldCustOrderID],
		Raw:                  fields,
	}

	// On success the remote reference is packed into the opaque
	// authorization so follow-up operations can locate the transaction.
	// Captures echo the original reference chain, so a capture result is
	// itself inspectable later.
	if success && fields[fieldPOID] != "" {
		resp.Authorization = AuthorizationReference{
			RequestRef: fields[fieldPOID],
			OrderID:    fields[fieldCustOrderID],
		}.Encode()
	}

	return resp
}

// message extracts the human-readable result text. APPROVED and DECLINED are
// the status itself; anything else reports the remote's own error text
// verbatim ("Invalid Data ...", "Invalid login").
func message(fields map[string]string, status string) string {
	switch status {
	case statusApproved, statusDeclined:
		return status
	}
	if v := fields[fieldTransValue]; v != "" {
		return v
	}
	return status
}
