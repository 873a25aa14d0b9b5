package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatement struct {
	Account      Account
	Movements    []Movement
	TotalCredits decimal.Decimal
	TotalDebits  decimal.Decimal
	FinalBalance decimal.Decimal
}

// Report is a derived read model over a client's accounts for [StartDate, EndDate].
type Report struct {
	StartDate         time.Time
	EndDate           time.Time
	GeneratedAt       time.Time
	Client            Client
	AccountStatements []AccountStatement
	TotalCredits      decimal.Decimal
	TotalDebits       decimal.Decimal
	TotalBalance      decimal.Decimal
}
