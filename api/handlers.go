/*
handlers.go - HTTP API handlers for the billing engine

PURPOSE:
  Exposes the billing engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Invoices:
    POST   /api/invoices/preview       Compute totals without persisting
    GET    /api/invoices               List all invoices
    POST   /api/invoices               Create draft invoice
    GET    /api/invoices/{id}          Get invoice details
    PUT    /api/invoices/{id}/lines    Replace draft lines and discount
    POST   /api/invoices/{id}/issue    Issue draft (assigns number)
    POST   /api/invoices/{id}/paid     Mark issued invoice paid
    POST   /api/invoices/{id}/void     Void an invoice

  Work definitions:
    GET    /api/work                   List all work definitions
    POST   /api/work                   Create work definition
    GET    /api/work/{id}              Get work definition
    GET    /api/work/{id}/period       Resolve billing period for a date
    GET    /api/work/{id}/occurrences  Enumerate periods over a range
    POST   /api/work/{id}/invoice      Draft an invoice for a period

  Sequences:
    GET    /api/sequences              List sequence configurations
    PUT    /api/sequences/{key}        Create or update a sequence
    POST   /api/sequences/{key}/next   Issue the next identifier

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (services, resolvers)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate issuance)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/invoicing"
	"github.com/warp/billing-engine/workplan"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Invoices  *invoicing.Service
	Work      *workplan.Service
	Sequences billing.SequenceStore
	Clock     billing.Clock
	Log       *zap.SugaredLogger
}

// NewHandler creates a handler wired to the given services.
func NewHandler(invoices *invoicing.Service, work *workplan.Service, sequences billing.SequenceStore, clock billing.Clock, log *zap.SugaredLogger) *Handler {
	if clock == nil {
		clock = billing.SystemClock()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{
		Invoices:  invoices,
		Work:      work,
		Sequences: sequences,
		Clock:     clock,
		Log:       log,
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.Log.Errorw("request failed", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: http.StatusText(status), Details: err.Error()})
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case billing.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, billing.ErrConflict):
		return http.StatusConflict
	case billing.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

// PreviewTotals computes line and invoice totals without persisting.
func (h *Handler) PreviewTotals(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON", Details: err.Error()})
		return
	}

	totals, err := billing.ComputeInvoiceTotals(toLineItems(req.Items), billing.DecimalOrZero(req.Discount))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTotalsDTO(totals))
}

// ListInvoices returns all invoices, oldest first.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invs, err := h.Invoices.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]InvoiceDTO, len(invs))
	for i := range invs {
		dtos[i] = toInvoiceDTO(&invs[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateInvoice creates a draft invoice.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON", Details: err.Error()})
		return
	}

	input := invoicing.DraftInput{
		CustomerID: req.CustomerID,
		Lines:      toLineItems(req.Lines),
		Discount:   billing.DecimalOrZero(req.Discount),
		Notes:      req.Notes,
	}
	if req.DueDate != "" {
		due, err := billing.ParseDate(req.DueDate)
		if err != nil {
			h.writeError(w, err)
			return
		}
		input.DueDate = due
	}

	inv, err := h.Invoices.CreateDraft(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceDTO(inv))
}

// GetInvoice returns one invoice by ID.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Invoices.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv))
}

// UpdateInvoiceLines replaces the lines and discount of a draft invoice.
func (h *Handler) UpdateInvoiceLines(w http.ResponseWriter, r *http.Request) {
	var req UpdateLinesRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON", Details: err.Error()})
		return
	}

	inv, err := h.Invoices.UpdateLines(r.Context(), chi.URLParam(r, "id"), toLineItems(req.Lines), billing.DecimalOrZero(req.Discount))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv))
}

// IssueInvoice transitions a draft to issued and assigns its number.
func (h *Handler) IssueInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Invoices.Issue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.Log.Infow("invoice issued", "id", inv.ID, "number", inv.Number)
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv))
}

// MarkInvoicePaid transitions an issued invoice to paid.
func (h *Handler) MarkInvoicePaid(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Invoices.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv))
}

// VoidInvoice voids a draft or issued invoice.
func (h *Handler) VoidInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Invoices.Void(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv))
}

// =============================================================================
// WORK DEFINITION HANDLERS
// =============================================================================

// ListWork returns all work definitions.
func (h *Handler) ListWork(w http.ResponseWriter, r *http.Request) {
	defs, err := h.Work.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]WorkDTO, len(defs))
	for i := range defs {
		dtos[i] = toWorkDTO(&defs[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateWork creates a recurring work definition.
func (h *Handler) CreateWork(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON", Details: err.Error()})
		return
	}

	def, err := h.Work.Create(r.Context(), workplan.CreateInput{
		CustomerID: req.CustomerID,
		Title:      req.Title,
		Recurrence: req.Schedule.Raw(),
		FeeItems:   toLineItems(req.FeeItems),
		Discount:   billing.DecimalOrZero(req.Discount),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkDTO(def))
}

// GetWork returns one work definition by ID.
func (h *Handler) GetWork(w http.ResponseWriter, r *http.Request) {
	def, err := h.Work.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkDTO(def))
}

// ResolveWorkPeriod resolves the billing period containing a reference date.
// Query params: date (default today), selector (overrides the definition's).
func (h *Handler) ResolveWorkPeriod(w http.ResponseWriter, r *http.Request) {
	var ref billing.Date
	if s := r.URL.Query().Get("date"); s != "" {
		parsed, err := billing.ParseDate(s)
		if err != nil {
			h.writeError(w, err)
			return
		}
		ref = parsed
	}

	period, err := h.Work.TargetPeriod(r.Context(), chi.URLParam(r, "id"), ref, r.URL.Query().Get("selector"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(period))
}

// ListWorkOccurrences enumerates billing periods over a date range.
// Query params: from, to (both required, inclusive).
func (h *Handler) ListWorkOccurrences(w http.ResponseWriter, r *http.Request) {
	from, err := billing.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	to, err := billing.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	def, err := h.Work.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	periods, err := workplan.Occurrences(def.Recurrence, from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DraftWorkInvoice drafts an invoice from a work definition for the
// period containing the given date (default today).
func (h *Handler) DraftWorkInvoice(w http.ResponseWriter, r *http.Request) {
	var ref billing.Date
	if s := r.URL.Query().Get("date"); s != "" {
		parsed, err := billing.ParseDate(s)
		if err != nil {
			h.writeError(w, err)
			return
		}
		ref = parsed
	}

	inv, err := h.Work.DraftInvoice(r.Context(), chi.URLParam(r, "id"), ref)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.Log.Infow("invoice drafted from work definition", "work_id", chi.URLParam(r, "id"), "invoice_id", inv.ID)
	writeJSON(w, http.StatusCreated, toInvoiceDTO(inv))
}

// =============================================================================
// SEQUENCE HANDLERS
// =============================================================================

// ListSequences returns all sequence configurations.
func (h *Handler) ListSequences(w http.ResponseWriter, r *http.Request) {
	seqs, err := h.Sequences.ListSequences(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	keys := make([]string, 0, len(seqs))
	for k := range seqs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dtos := make([]SequenceDTO, 0, len(keys))
	for _, k := range keys {
		cfg := seqs[k]
		dtos = append(dtos, SequenceDTO{
			Key:        k,
			Prefix:     cfg.Prefix,
			Suffix:     cfg.Suffix,
			Width:      cfg.Width,
			ZeroPad:    cfg.ZeroPad,
			NextNumber: cfg.NextNumber,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// PutSequence creates or replaces a sequence configuration.
func (h *Handler) PutSequence(w http.ResponseWriter, r *http.Request) {
	var req SequenceDTO
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON", Details: err.Error()})
		return
	}

	cfg := billing.SequenceConfig{
		Prefix:     req.Prefix,
		Suffix:     req.Suffix,
		Width:      req.Width,
		ZeroPad:    req.ZeroPad,
		NextNumber: req.NextNumber,
	}
	if cfg.NextNumber == 0 {
		cfg.NextNumber = 1
	}
	if err := cfg.Validate(); err != nil {
		h.writeError(w, err)
		return
	}

	key := chi.URLParam(r, "key")
	if err := h.Sequences.PutSequence(r.Context(), key, cfg); err != nil {
		h.writeError(w, err)
		return
	}
	req.Key = key
	req.NextNumber = cfg.NextNumber
	writeJSON(w, http.StatusOK, req)
}

// IssueFromSequence atomically issues the next identifier from a sequence.
func (h *Handler) IssueFromSequence(w http.ResponseWriter, r *http.Request) {
	id, number, err := h.Sequences.Issue(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, IssueResponse{ID: id, Number: number})
}
