// Package report aggregates a client's movements over a period into a
// statement and renders it as a document. It never writes.
package report

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
	"github.com/josh-kwaku/bank-ledger/internal/logging"
)

type clientStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
}

type accountStore interface {
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Account, error)
}

type movementStore interface {
	ListByAccountAndRange(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.Movement, error)
}

type renderer interface {
	HTML(report *domain.Report) ([]byte, error)
	PDF(report *domain.Report) ([]byte, error)
}

type Service struct {
	clients     clientStore
	accounts    accountStore
	movements   movementStore
	renderer    renderer
	concurrency int
	now         func() time.Time
}

func NewService(clients clientStore, accounts accountStore, movements movementStore, renderer renderer, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		clients:     clients,
		accounts:    accounts,
		movements:   movements,
		renderer:    renderer,
		concurrency: concurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GenerateReport builds the statement of every account the client owns,
// active or not, for the calendar days start through end inclusive.
func (s *Service) GenerateReport(ctx context.Context, clientID uuid.UUID, start, end time.Time) (*domain.Report, error) {
	from, to := domain.DayRange(start, end)
	if !to.After(from) {
		return nil, fmt.Errorf("GenerateReport: %w",
			domain.NewRuleError(domain.ErrInvalidRequest, "start date is after end date"))
	}

	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("GenerateReport: %w", domain.ErrClientNotFound)
		}
		return nil, fmt.Errorf("GenerateReport: %w", err)
	}

	accounts, err := s.accounts.ListByClient(ctx, client.ID)
	if err != nil {
		return nil, fmt.Errorf("GenerateReport: accounts: %w", err)
	}

	statements := make([]domain.AccountStatement, len(accounts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, account := range accounts {
		g.Go(func() error {
			movements, err := s.movements.ListByAccountAndRange(gctx, account.ID, from, to)
			if err != nil {
				return fmt.Errorf("account %s: %w", account.AccountNumber, err)
			}
			statements[i] = Summarize(account, movements)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("GenerateReport: %w", err)
	}

	report := &domain.Report{
		StartDate:         from,
		EndDate:           domain.StartOfDay(end.In(from.Location())),
		GeneratedAt:       s.now(),
		Client:            *client,
		AccountStatements: statements,
		TotalCredits:      decimal.Zero,
		TotalDebits:       decimal.Zero,
		TotalBalance:      decimal.Zero,
	}
	for _, st := range statements {
		report.TotalCredits = report.TotalCredits.Add(st.TotalCredits)
		report.TotalDebits = report.TotalDebits.Add(st.TotalDebits)
		report.TotalBalance = report.TotalBalance.Add(st.FinalBalance)
	}

	logging.FromContext(ctx).Info("report generated",
		"client_id", client.ID,
		"accounts", len(statements),
		"from", from,
		"to", to,
	)

	return report, nil
}

// Summarize totals one account's movements. Positive values are credits,
// anything else counts as a debit of its absolute value. FinalBalance is the
// account's balance now, not at the end of the period.
func Summarize(account domain.Account, movements []domain.Movement) domain.AccountStatement {
	if movements == nil {
		movements = []domain.Movement{}
	}
	st := domain.AccountStatement{
		Account:      account,
		Movements:    movements,
		TotalCredits: decimal.Zero,
		TotalDebits:  decimal.Zero,
		FinalBalance: account.CurrentBalance,
	}
	for _, m := range movements {
		if m.Value.IsPositive() {
			st.TotalCredits = st.TotalCredits.Add(m.Value)
		} else {
			st.TotalDebits = st.TotalDebits.Add(m.Value.Abs())
		}
	}
	return st
}

func (s *Service) ReportHTML(ctx context.Context, clientID uuid.UUID, start, end time.Time) ([]byte, error) {
	report, err := s.GenerateReport(ctx, clientID, start, end)
	if err != nil {
		return nil, fmt.Errorf("ReportHTML: %w", err)
	}
	doc, err := s.renderer.HTML(report)
	if err != nil {
		return nil, fmt.Errorf("ReportHTML: %w: %w", domain.ErrRenderFailed, err)
	}
	return doc, nil
}

func (s *Service) ReportPDF(ctx context.Context, clientID uuid.UUID, start, end time.Time) ([]byte, error) {
	report, err := s.GenerateReport(ctx, clientID, start, end)
	if err != nil {
		return nil, fmt.Errorf("ReportPDF: %w", err)
	}
	doc, err := s.renderer.PDF(report)
	if err != nil {
		return nil, fmt.Errorf("ReportPDF: %w: %w", domain.ErrRenderFailed, err)
	}

	logging.FromContext(ctx).Debug("report pdf rendered", "client_id", clientID, "bytes", len(doc))
	return doc, nil
}

func (s *Service) ReportPDFBase64(ctx context.Context, clientID uuid.UUID, start, end time.Time) (string, error) {
	doc, err := s.ReportPDF(ctx, clientID, start, end)
	if err != nil {
		return "", fmt.Errorf("ReportPDFBase64: %w", err)
	}
	return base64.StdEncoding.EncodeToString(doc), nil
}
