package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
	"github.com/josh-kwaku/bank-ledger/internal/logging"
)

type reportService interface {
	GenerateReport(ctx context.Context, clientID uuid.UUID, start, end time.Time) (*domain.Report, error)
	ReportHTML(ctx context.Context, clientID uuid.UUID, start, end time.Time) ([]byte, error)
	ReportPDF(ctx context.Context, clientID uuid.UUID, start, end time.Time) ([]byte, error)
	ReportPDFBase64(ctx context.Context, clientID uuid.UUID, start, end time.Time) (string, error)
}

type ReportHandler struct {
	reports reportService
}

func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type reportQuery struct {
	clientID uuid.UUID
	start    time.Time
	end      time.Time
}

func parseReportQuery(r *http.Request) (reportQuery, []FieldError) {
	var (
		q      reportQuery
		fields []FieldError
	)

	raw := r.URL.Query().Get("client_id")
	id, err := uuid.Parse(raw)
	switch {
	case raw == "":
		fields = append(fields, FieldError{Field: "client_id", Message: "required"})
	case err != nil:
		fields = append(fields, FieldError{Field: "client_id", Message: "must be a valid UUID"})
	default:
		q.clientID = id
	}

	start, end, ok, rangeFields := dateRangeQuery(r)
	fields = append(fields, rangeFields...)
	if !ok && len(rangeFields) == 0 {
		fields = append(fields,
			FieldError{Field: "start_date", Message: "required"},
			FieldError{Field: "end_date", Message: "required"},
		)
	}
	q.start, q.end = start, end
	return q, fields
}

type accountStatementDTO struct {
	Account      accountDTO    `json:"account"`
	Movements    []movementDTO `json:"movements"`
	TotalCredits string        `json:"total_credits"`
	TotalDebits  string        `json:"total_debits"`
	FinalBalance string        `json:"final_balance"`
}

type reportDTO struct {
	StartDate         string                `json:"start_date"`
	EndDate           string                `json:"end_date"`
	GeneratedAt       time.Time             `json:"generated_at"`
	Client            clientDTO             `json:"client"`
	AccountStatements []accountStatementDTO `json:"account_statements"`
	TotalCredits      string                `json:"total_credits"`
	TotalDebits       string                `json:"total_debits"`
	TotalBalance      string                `json:"total_balance"`
}

func toReportDTO(rep *domain.Report) reportDTO {
	statements := make([]accountStatementDTO, len(rep.AccountStatements))
	for i, st := range rep.AccountStatements {
		statements[i] = accountStatementDTO{
			Account:      toAccountDTO(&st.Account),
			Movements:    toMovementDTOs(st.Movements),
			TotalCredits: st.TotalCredits.StringFixed(2),
			TotalDebits:  st.TotalDebits.StringFixed(2),
			FinalBalance: st.FinalBalance.StringFixed(2),
		}
	}
	return reportDTO{
		StartDate:         rep.StartDate.Format(dateLayout),
		EndDate:           rep.EndDate.Format(dateLayout),
		GeneratedAt:       rep.GeneratedAt,
		Client:            toClientDTO(&rep.Client),
		AccountStatements: statements,
		TotalCredits:      rep.TotalCredits.StringFixed(2),
		TotalDebits:       rep.TotalDebits.StringFixed(2),
		TotalBalance:      rep.TotalBalance.StringFixed(2),
	}
}

func reportFilename(clientID uuid.UUID) string {
	return fmt.Sprintf("statement_%s.pdf", clientID)
}

func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	q, fields := parseReportQuery(r)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	rep, err := h.reports.GenerateReport(r.Context(), q.clientID, q.start, q.end)
	if err != nil {
		logging.FromContext(r.Context()).Warn("report generation failed", "client_id", q.clientID, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toReportDTO(rep))
}

func (h *ReportHandler) HTML(w http.ResponseWriter, r *http.Request) {
	q, fields := parseReportQuery(r)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	doc, err := h.reports.ReportHTML(r.Context(), q.clientID, q.start, q.end)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondDocument(w, "text/html; charset=utf-8", "", doc)
}

func (h *ReportHandler) PDF(w http.ResponseWriter, r *http.Request) {
	q, fields := parseReportQuery(r)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	doc, err := h.reports.ReportPDF(r.Context(), q.clientID, q.start, q.end)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondDocument(w, "application/pdf", reportFilename(q.clientID), doc)
}

type pdfBase64DTO struct {
	Filename  string `json:"filename"`
	PDFBase64 string `json:"pdf_base64"`
}

func (h *ReportHandler) PDFBase64(w http.ResponseWriter, r *http.Request) {
	q, fields := parseReportQuery(r)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	encoded, err := h.reports.ReportPDFBase64(r.Context(), q.clientID, q.start, q.end)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, pdfBase64DTO{
		Filename:  reportFilename(q.clientID),
		PDFBase64: encoded,
	})
}
