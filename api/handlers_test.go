/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Totals preview
- Invoice lifecycle over HTTP (draft, issue, paid)
- Work definition creation and period resolution
- Sequence configuration and issuance
- Error status mapping
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/billing/store"
	"github.com/warp/billing-engine/factory"
	"github.com/warp/billing-engine/invoicing"
	"github.com/warp/billing-engine/workplan"
)

// newTestRouter wires a full router over the in-memory store with a
// clock pinned to 2024-03-20.
func newTestRouter(t *testing.T) (http.Handler, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	clock := billing.FixedClock{Date: billing.NewDate(2024, time.March, 20)}
	invoices := invoicing.NewService(mem, mem, clock)
	work := workplan.NewService(mem, invoices, clock)
	h := NewHandler(invoices, work, mem, clock, nil)
	return NewRouter(h), mem
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestPreviewTotals(t *testing.T) {
	// GIVEN: A router and a two-line preview request
	router, _ := newTestRouter(t)

	req := PreviewRequest{
		Items: []LineItemDTO{
			{Description: "Bookkeeping", Quantity: "10", UnitRate: "150", TaxRatePercent: "10"},
			{Description: "Filing", Quantity: "1", UnitRate: "800", TaxRatePercent: "5"},
		},
		Discount: "90",
	}

	// WHEN: Previewing totals
	rec := doJSON(t, router, http.MethodPost, "/api/invoices/preview", req)

	// THEN: Exact totals come back without anything persisted
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var totals TotalsDTO
	decodeInto(t, rec, &totals)

	if totals.Subtotal != "2300" {
		t.Errorf("Expected subtotal 2300, got %s", totals.Subtotal)
	}
	if totals.TaxTotal != "190" {
		t.Errorf("Expected tax total 190, got %s", totals.TaxTotal)
	}
	if totals.GrandTotal != "2400" {
		t.Errorf("Expected grand total 2400, got %s", totals.GrandTotal)
	}
}

func TestPreviewTotals_NegativeInput_Returns400(t *testing.T) {
	router, _ := newTestRouter(t)

	req := PreviewRequest{
		Items: []LineItemDTO{{Description: "Bad", Quantity: "-1", UnitRate: "100"}},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/invoices/preview", req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for negative quantity, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	// GIVEN: A router with an invoice sequence configured
	router, mem := newTestRouter(t)
	ctx := context.Background()

	err := mem.PutSequence(ctx, invoicing.SequenceInvoices, billing.SequenceConfig{
		Prefix: "INV", Width: 6, ZeroPad: true, NextNumber: 1,
	})
	if err != nil {
		t.Fatalf("Failed to configure sequence: %v", err)
	}

	// WHEN: Creating a draft
	rec := doJSON(t, router, http.MethodPost, "/api/invoices", CreateInvoiceRequest{
		CustomerID: "cust-1",
		Lines: []LineItemDTO{
			{Description: "Monthly retainer", Quantity: "1", UnitRate: "5000", TaxRatePercent: "18"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var draft InvoiceDTO
	decodeInto(t, rec, &draft)

	// THEN: The draft has no number and derived totals
	if draft.Status != "draft" {
		t.Errorf("Expected status draft, got %s", draft.Status)
	}
	if draft.Number != "" {
		t.Errorf("Draft must not carry a number, got %s", draft.Number)
	}
	if draft.Totals.GrandTotal != "5900" {
		t.Errorf("Expected grand total 5900, got %s", draft.Totals.GrandTotal)
	}

	// WHEN: Issuing it
	rec = doJSON(t, router, http.MethodPost, "/api/invoices/"+draft.ID+"/issue", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 on issue, got %d: %s", rec.Code, rec.Body.String())
	}
	var issued InvoiceDTO
	decodeInto(t, rec, &issued)

	// THEN: Number and issue date are assigned from sequence and clock
	if issued.Number != "INV000001" {
		t.Errorf("Expected number INV000001, got %s", issued.Number)
	}
	if issued.IssueDate != "2024-03-20" {
		t.Errorf("Expected issue date 2024-03-20, got %s", issued.IssueDate)
	}

	// WHEN: Issuing again
	rec = doJSON(t, router, http.MethodPost, "/api/invoices/"+draft.ID+"/issue", nil)

	// THEN: Rejected, not a draft anymore
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 on double issue, got %d", rec.Code)
	}

	// WHEN: Marking paid
	rec = doJSON(t, router, http.MethodPost, "/api/invoices/"+draft.ID+"/paid", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 on paid, got %d: %s", rec.Code, rec.Body.String())
	}

	// THEN: Voiding a paid invoice is rejected
	rec = doJSON(t, router, http.MethodPost, "/api/invoices/"+draft.ID+"/void", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 voiding a paid invoice, got %d", rec.Code)
	}
}

func TestIssueInvoice_NoSequence_Returns404(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/invoices", CreateInvoiceRequest{
		CustomerID: "cust-1",
		Lines:      []LineItemDTO{{Description: "Work", Quantity: "1", UnitRate: "100"}},
	})
	var draft InvoiceDTO
	decodeInto(t, rec, &draft)

	rec = doJSON(t, router, http.MethodPost, "/api/invoices/"+draft.ID+"/issue", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 without a configured sequence, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListInvoices(t *testing.T) {
	// GIVEN: Two drafts
	router, _ := newTestRouter(t)

	for _, customer := range []string{"cust-a", "cust-b"} {
		rec := doJSON(t, router, http.MethodPost, "/api/invoices", CreateInvoiceRequest{
			CustomerID: customer,
			Lines:      []LineItemDTO{{Description: "Work", Quantity: "1", UnitRate: "100", TaxRatePercent: "5"}},
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	// WHEN: Listing
	rec := doJSON(t, router, http.MethodGet, "/api/invoices", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var list []InvoiceDTO
	decodeInto(t, rec, &list)

	// THEN: Both come back with derived totals
	if len(list) != 2 {
		t.Fatalf("Expected 2 invoices, got %d", len(list))
	}
	for _, inv := range list {
		if inv.Totals.GrandTotal != "105" {
			t.Errorf("Invoice %s: expected grand total 105, got %s", inv.ID, inv.Totals.GrandTotal)
		}
	}
}

func TestListWork(t *testing.T) {
	// GIVEN: Two work definitions
	router, _ := newTestRouter(t)

	for _, title := range []string{"Payroll", "Bookkeeping"} {
		rec := doJSON(t, router, http.MethodPost, "/api/work", CreateWorkRequest{
			CustomerID: "cust-a",
			Title:      title,
			Schedule:   factory.ScheduleJSON{Cadence: "monthly", MonthDay: 1},
			FeeItems:   []LineItemDTO{{Description: title, Quantity: "1", UnitRate: "500"}},
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	// WHEN: Listing
	rec := doJSON(t, router, http.MethodGet, "/api/work", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var list []WorkDTO
	decodeInto(t, rec, &list)

	// THEN: Both come back with their schedules intact
	if len(list) != 2 {
		t.Fatalf("Expected 2 definitions, got %d", len(list))
	}
	for _, def := range list {
		if def.Schedule.Cadence != "monthly" || def.Schedule.MonthDay != 1 {
			t.Errorf("Definition %s: unexpected schedule %+v", def.ID, def.Schedule)
		}
	}
}

func TestGetInvoice_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/invoices/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}

func TestWorkDefinition_PeriodResolution(t *testing.T) {
	// GIVEN: A quarterly work definition on calendar quarters
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/work", CreateWorkRequest{
		CustomerID: "cust-2",
		Title:      "GST Filing",
		Schedule: factory.ScheduleJSON{
			Cadence:    "quarterly",
			Period:     "previous_period",
			StartMonth: 1,
		},
		FeeItems: []LineItemDTO{
			{Description: "GST filing fee", Quantity: "1", UnitRate: "2500", TaxRatePercent: "18"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var def WorkDTO
	decodeInto(t, rec, &def)

	// WHEN: Resolving the period for a mid-quarter date
	rec = doJSON(t, router, http.MethodGet, "/api/work/"+def.ID+"/period?date=2024-07-10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var period PeriodDTO
	decodeInto(t, rec, &period)

	// THEN: The previous calendar quarter comes back
	if period.Start != "2024-04-01" || period.End != "2024-06-30" {
		t.Errorf("Expected [2024-04-01, 2024-06-30], got [%s, %s]", period.Start, period.End)
	}

	// WHEN: Overriding the selector
	rec = doJSON(t, router, http.MethodGet, "/api/work/"+def.ID+"/period?date=2024-07-10&selector=current_period", nil)
	decodeInto(t, rec, &period)

	// THEN: The containing quarter comes back instead
	if period.Start != "2024-07-01" || period.End != "2024-09-30" {
		t.Errorf("Expected [2024-07-01, 2024-09-30], got [%s, %s]", period.Start, period.End)
	}
}

func TestWorkDefinition_Occurrences(t *testing.T) {
	// GIVEN: A monthly definition anchored on day 1
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/work", CreateWorkRequest{
		CustomerID: "cust-2",
		Title:      "Payroll run",
		Schedule:   factory.ScheduleJSON{Cadence: "monthly", MonthDay: 1},
		FeeItems:   []LineItemDTO{{Description: "Payroll", Quantity: "1", UnitRate: "1200"}},
	})
	var def WorkDTO
	decodeInto(t, rec, &def)

	// WHEN: Enumerating a quarter
	rec = doJSON(t, router, http.MethodGet, "/api/work/"+def.ID+"/occurrences?from=2024-01-15&to=2024-03-15", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var periods []PeriodDTO
	decodeInto(t, rec, &periods)

	// THEN: Three contiguous months intersect the range
	if len(periods) != 3 {
		t.Fatalf("Expected 3 periods, got %d", len(periods))
	}
	if periods[0].Start != "2024-01-01" || periods[2].End != "2024-03-31" {
		t.Errorf("Unexpected bounds: first %+v, last %+v", periods[0], periods[2])
	}

	// WHEN: Asking for an inverted range
	rec = doJSON(t, router, http.MethodGet, "/api/work/"+def.ID+"/occurrences?from=2024-03-15&to=2024-01-15", nil)

	// THEN: Rejected as client error
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for inverted range, got %d", rec.Code)
	}
}

func TestCreateWork_InvalidAnchor_Returns400(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/work", CreateWorkRequest{
		CustomerID: "cust-3",
		Title:      "Broken",
		Schedule:   factory.ScheduleJSON{Cadence: "monthly", MonthDay: 32},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for anchor day 32, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDraftWorkInvoice(t *testing.T) {
	// GIVEN: A monthly work definition, clock at 2024-03-20
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/work", CreateWorkRequest{
		CustomerID: "cust-4",
		Title:      "Retainer",
		Schedule:   factory.ScheduleJSON{Cadence: "monthly", MonthDay: 1},
		FeeItems:   []LineItemDTO{{Description: "Retainer", Quantity: "1", UnitRate: "3000", TaxRatePercent: "18"}},
	})
	var def WorkDTO
	decodeInto(t, rec, &def)

	// WHEN: Drafting an invoice without an explicit date
	rec = doJSON(t, router, http.MethodPost, "/api/work/"+def.ID+"/invoice", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var inv InvoiceDTO
	decodeInto(t, rec, &inv)

	// THEN: Due date is the period end and fees carry over
	if inv.DueDate != "2024-03-31" {
		t.Errorf("Expected due date 2024-03-31, got %s", inv.DueDate)
	}
	if inv.Totals.GrandTotal != "3540" {
		t.Errorf("Expected grand total 3540, got %s", inv.Totals.GrandTotal)
	}
	if inv.Status != "draft" {
		t.Errorf("Expected draft status, got %s", inv.Status)
	}
}

func TestSequenceEndpoints(t *testing.T) {
	// GIVEN: A sequence configured over the API
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/sequences/voucher", SequenceDTO{
		Prefix: "VCH-", Suffix: "/24", Width: 4, ZeroPad: true, NextNumber: 41,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// WHEN: Issuing twice
	var first, second IssueResponse
	rec = doJSON(t, router, http.MethodPost, "/api/sequences/voucher/next", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeInto(t, rec, &first)
	rec = doJSON(t, router, http.MethodPost, "/api/sequences/voucher/next", nil)
	decodeInto(t, rec, &second)

	// THEN: Identifiers advance and carry prefix, pad and suffix
	if first.ID != "VCH-0041/24" {
		t.Errorf("Expected VCH-0041/24, got %s", first.ID)
	}
	if second.ID != "VCH-0042/24" {
		t.Errorf("Expected VCH-0042/24, got %s", second.ID)
	}

	// AND: Listing shows the advanced next number
	rec = doJSON(t, router, http.MethodGet, "/api/sequences", nil)
	var list []SequenceDTO
	decodeInto(t, rec, &list)
	if len(list) != 1 || list[0].NextNumber != 43 {
		t.Errorf("Expected one sequence at next_number 43, got %+v", list)
	}

	// AND: Issuing from an unknown key is 404
	rec = doJSON(t, router, http.MethodPost, "/api/sequences/unknown/next", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown sequence, got %d", rec.Code)
	}
}

func TestPutSequence_InvalidWidth_Returns400(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/sequences/bad", SequenceDTO{
		Prefix: "X", Width: 99, ZeroPad: true, NextNumber: 1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for width 99, got %d: %s", rec.Code, rec.Body.String())
	}
}
