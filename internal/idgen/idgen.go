// Package idgen produces candidate account numbers and client ids.
// Candidates are not guaranteed unique; callers confirm uniqueness against
// their store with Unique.
package idgen

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
)

const (
	AccountNumberDigits = 6
	ClientIDDigits      = 8
)

type Generator struct {
	source io.Reader
}

func New() *Generator {
	return &Generator{source: rand.Reader}
}

// NewWithSource is used by tests to make candidates deterministic.
func NewWithSource(r io.Reader) *Generator {
	return &Generator{source: r}
}

func (g *Generator) NextAccountNumber() (string, error) {
	s, err := g.digits(AccountNumberDigits)
	if err != nil {
		return "", fmt.Errorf("NextAccountNumber: %w", err)
	}
	return s, nil
}

func (g *Generator) NextClientID() (string, error) {
	s, err := g.digits(ClientIDDigits)
	if err != nil {
		return "", fmt.Errorf("NextClientID: %w", err)
	}
	return s, nil
}

func (g *Generator) digits(n int) (string, error) {
	out := make([]byte, n)
	ten := big.NewInt(10)
	for i := range out {
		d, err := rand.Int(g.source, ten)
		if err != nil {
			return "", err
		}
		out[i] = '0' + byte(d.Int64())
	}
	return string(out), nil
}

// Unique draws candidates from next until exists reports no collision,
// giving up with domain.ErrGenerationExhausted after maxAttempts draws.
func Unique(
	ctx context.Context,
	maxAttempts int,
	next func() (string, error),
	exists func(ctx context.Context, candidate string) (bool, error),
) (string, error) {
	for range maxAttempts {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("Unique: %w", err)
		}

		candidate, err := next()
		if err != nil {
			return "", fmt.Errorf("Unique: %w", err)
		}

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("Unique: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("Unique: %d attempts: %w", maxAttempts, domain.ErrGenerationExhausted)
}
