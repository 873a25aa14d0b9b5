package domain

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Client is the account holder. ClientID is the public 8 digit identifier,
// Identification is the national document number.
type Client struct {
	ID             uuid.UUID
	ClientID       string
	Name           string
	Gender         *Gender
	Age            *int
	Identification string
	Phone          *string
	Address        *string
	PasswordHash   string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
