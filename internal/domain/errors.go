package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrClientNotFound      = errors.New("client not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountInactive     = errors.New("account inactive")
	ErrInvalidMovement     = errors.New("invalid movement")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrGenerationExhausted = errors.New("identifier generation exhausted")
	ErrVersionConflict     = errors.New("optimistic lock conflict")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrDuplicate           = errors.New("duplicate")
	ErrRenderFailed        = errors.New("document rendering failed")
)

// RuleError carries a human readable reason alongside one of the sentinel
// kinds above. errors.Is matches against Kind.
type RuleError struct {
	Kind   error
	Reason string
}

func (e *RuleError) Error() string {
	return e.Kind.Error() + ": " + e.Reason
}

func (e *RuleError) Unwrap() error { return e.Kind }

func NewRuleError(kind error, reason string) *RuleError {
	return &RuleError{Kind: kind, Reason: reason}
}

// Reason returns the rule reason carried anywhere in err's chain, or "".
func Reason(err error) string {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ""
}
