package argus

import "regexp"

// redactionMarker replaces sensitive values in scrubbed transcripts
const redactionMarker = "[FILTERED]"

// scrubPatterns locate the sensitive wire fields: the card primary account
// number, the card verification value and the account password. Values are
// matched up to the next form or whitespace delimiter, so both raw and
// percent-encoded values are covered.
var scrubPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(PMT_NUMB=)[^&\s"<]*`),
	regexp.MustCompile(`(PMT_KEY=)[^&\s"<]*`),
	regexp.MustCompile(`(REQ_PASSWORD=)[^&\s"<]*`),
}

// Scrub redacts credentials and card data from a captured wire transcript.
// Idempotent: scrubbing already-scrubbed text is a no-op.
func Scrub(transcript string) string {
	for _, pattern := range scrubPatterns {
		transcript = pattern.ReplaceAllString(transcript, "${1}"+redactionMarker)
	}
	return transcript
}
