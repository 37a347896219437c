package domain

// Credentials holds the Argus gateway account credentials.
// Supplied once at adapter construction and never logged unredacted.
type Credentials struct {
	SiteID   string
	Username string
	Password string
}

// Validate checks that all credential fields are present
func (c Credentials) Validate() error {
	if c.SiteID == "" {
		return NewDomainError(ErrorCodeValidationMissingField, "site_id is required")
	}
	if c.Username == "" {
		return NewDomainError(ErrorCodeValidationMissingField, "req_username is required")
	}
	if c.Password == "" {
		return NewDomainError(ErrorCodeValidationMissingField, "req_password is required")
	}
	return nil
}
