package argus

import "github.com/kevin07696/argus-gateway/internal/adapters/ports"

// avsCodes maps the processor's single-letter AVS scheme to descriptions
var avsCodes = map[string]string{
	"A": "Street address matches, postal code does not",
	"B": "Street address matches, postal code not verified",
	"C": "Street address and postal code do not match",
	"D": "Street address and postal code match (international)",
	"E": "AVS data is invalid or AVS is not allowed for this card type",
	"G": "Card issued by a non-US issuer that does not participate in AVS",
	"I": "Address not verified",
	"M": "Street address and postal code match",
	"N": "Street address and postal code do not match",
	"P": "Postal code matches, street address not verified",
	"R": "System unavailable, retry",
	"S": "AVS not supported by issuer",
	"U": "Address information unavailable",
	"W": "Nine-digit postal code matches, street address does not",
	"X": "Street address and nine-digit postal code match",
	"Y": "Street address and five-digit postal code match",
	"Z": "Five-digit postal code matches, street address does not",
}

// cvvCodes maps the processor's CVV check results to descriptions
var cvvCodes = map[string]string{
	"M": "CVV matches",
	"N": "CVV does not match",
	"P": "CVV not processed",
	"S": "CVV should be on the card but was not provided",
	"U": "Issuer is not certified or has not provided encryption keys",
	"X": "No response from the card network",
}

// avsResult builds a structured AVS result from the raw wire code.
// An absent code yields an empty result, not an error.
func avsResult(code string) ports.AVSResult {
	if code == "" {
		return ports.AVSResult{}
	}
	return ports.AVSResult{Code: code, Message: avsCodes[code]}
}

// cvvResult builds a structured CVV result from the raw wire code
func cvvResult(code string) ports.CVVResult {
	if code == "" {
		return ports.CVVResult{}
	}
	return ports.CVVResult{Code: code, Message: cvvCodes[code]}
}
