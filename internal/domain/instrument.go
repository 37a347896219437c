package domain

// PaymentInstrument is the payment method presented for a transaction.
// It is a closed set: CreditCard for raw card data, StoredCard for a
// previously tokenized card.
type PaymentInstrument interface {
	instrument()
}

// CreditCard is raw card data supplied by the caller
type CreditCard struct {
	Number            string
	ExpMonth          int
	ExpYear           int
	VerificationValue string // optional on some operations
	HolderName        string
}

func (CreditCard) instrument() {}

// StoredCard references a card previously stored with the gateway
type StoredCard struct {
	Token string
}

func (StoredCard) instrument() {}

// Validate checks the fields every operation needs from a raw card
func (c CreditCard) Validate() error {
	if c.Number == "" {
		return NewDomainError(ErrorCodeValidationMissingField, "card number is required")
	}
	if c.ExpMonth < 1 || c.ExpMonth > 12 {
		return NewDomainError(ErrorCodeValidationFailed, "card expiry month must be 1-12")
	}
	if c.ExpYear < 1 {
		return NewDomainError(ErrorCodeValidationFailed, "card expiry year is required")
	}
	return nil
}

// Validate checks that a stored card carries a token
func (s StoredCard) Validate() error {
	if s.Token == "" {
		return NewDomainError(ErrorCodeValidationMissingField, "stored card token is required")
	}
	return nil
}
