package domain

import "time"

// OtpPurpose tags what a one-time code authorizes.
type OtpPurpose string

const (
	OtpPurposeSignup       OtpPurpose = "signup"
	OtpPurposeReset        OtpPurpose = "password_reset"
	OtpPurposeTicketLookup OtpPurpose = "ticket_lookup"
)

// ParseOtpPurpose validates a raw purpose string.
func ParseOtpPurpose(raw string) (OtpPurpose, bool) {
	switch OtpPurpose(raw) {
	case OtpPurposeSignup, OtpPurposeReset, OtpPurposeTicketLookup:
		return OtpPurpose(raw), true
	}
	return "", false
}

// OtpRecord is the ephemeral ledger entry for one destination address. Only
// the one-way hash of the code is ever stored; at most one live record
// exists per address.
type OtpRecord struct {
	Address   string
	CodeHash  string
	Purpose   OtpPurpose
	ExpiresAt time.Time
}

// Expired reports whether the record is past its expiry at the given time.
func (r *OtpRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
