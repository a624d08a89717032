/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

NUMBERS AND DATES:
  Monetary values travel as decimal strings ("1234.5000"), never JSON
  floats, so no precision is lost in transit. Dates are "2006-01-02".
  Locale, currency symbols and display rounding are entirely the
  presentation layer's concern.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/recurrence.go: ScheduleJSON type
*/
package api

import (
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/factory"
	"github.com/warp/billing-engine/invoicing"
	"github.com/warp/billing-engine/workplan"
)

// =============================================================================
// LINE ITEMS AND TOTALS
// =============================================================================

// LineItemDTO carries one invoice row. Numeric fields are strings;
// blank or unparsable values are treated as zero, mirroring form inputs.
type LineItemDTO struct {
	Description    string `json:"description"`
	Quantity       string `json:"quantity"`
	UnitRate       string `json:"unit_rate"`
	TaxRatePercent string `json:"tax_rate_percent"`
}

// TotalsDTO carries the exact, unrounded aggregate amounts.
type TotalsDTO struct {
	Subtotal   string `json:"subtotal"`
	TaxTotal   string `json:"tax_total"`
	Discount   string `json:"discount"`
	GrandTotal string `json:"grand_total"`
}

// PreviewRequest asks for totals without persisting anything.
type PreviewRequest struct {
	Items    []LineItemDTO `json:"items"`
	Discount string        `json:"discount"`
}

// =============================================================================
// INVOICES
// =============================================================================

// InvoiceDTO represents an invoice in API responses.
type InvoiceDTO struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customer_id"`
	Number     string        `json:"number,omitempty"`
	IssueDate  string        `json:"issue_date,omitempty"`
	DueDate    string        `json:"due_date,omitempty"`
	Lines      []LineItemDTO `json:"lines"`
	Status     string        `json:"status"`
	Notes      string        `json:"notes,omitempty"`
	Totals     TotalsDTO     `json:"totals"`
	CreatedAt  string        `json:"created_at,omitempty"`
}

// CreateInvoiceRequest is the request to create a draft invoice.
type CreateInvoiceRequest struct {
	CustomerID string        `json:"customer_id"`
	DueDate    string        `json:"due_date,omitempty"`
	Lines      []LineItemDTO `json:"lines"`
	Discount   string        `json:"discount"`
	Notes      string        `json:"notes,omitempty"`
}

// UpdateLinesRequest replaces a draft's lines and discount.
type UpdateLinesRequest struct {
	Lines    []LineItemDTO `json:"lines"`
	Discount string        `json:"discount"`
}

// =============================================================================
// WORK DEFINITIONS AND PERIODS
// =============================================================================

// PeriodDTO is a resolved calendar interval.
type PeriodDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WorkDTO represents a recurring work definition.
type WorkDTO struct {
	ID         string               `json:"id"`
	CustomerID string               `json:"customer_id"`
	Title      string               `json:"title"`
	Schedule   factory.ScheduleJSON `json:"schedule"`
	FeeItems   []LineItemDTO        `json:"fee_items"`
	Discount   string               `json:"discount"`
	Active     bool                 `json:"active"`
	CreatedAt  string               `json:"created_at,omitempty"`
}

// CreateWorkRequest is the request to create a work definition.
type CreateWorkRequest struct {
	CustomerID string               `json:"customer_id"`
	Title      string               `json:"title"`
	Schedule   factory.ScheduleJSON `json:"schedule"`
	FeeItems   []LineItemDTO        `json:"fee_items"`
	Discount   string               `json:"discount"`
}

// =============================================================================
// SEQUENCES
// =============================================================================

// SequenceDTO represents a sequence configuration.
type SequenceDTO struct {
	Key        string `json:"key"`
	Prefix     string `json:"prefix"`
	Suffix     string `json:"suffix"`
	Width      int    `json:"width"`
	ZeroPad    bool   `json:"zero_pad"`
	NextNumber int64  `json:"next_number"`
}

// IssueResponse is the result of minting one identifier.
type IssueResponse struct {
	ID     string `json:"id"`
	Number int64  `json:"number"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toLineItems(dtos []LineItemDTO) []billing.LineItem {
	items := make([]billing.LineItem, len(dtos))
	for i, d := range dtos {
		items[i] = billing.LineItemFromStrings(d.Description, d.Quantity, d.UnitRate, d.TaxRatePercent)
	}
	return items
}

func toLineItemDTOs(items []billing.LineItem) []LineItemDTO {
	dtos := make([]LineItemDTO, len(items))
	for i, it := range items {
		dtos[i] = LineItemDTO{
			Description:    it.Description,
			Quantity:       it.Quantity.String(),
			UnitRate:       it.UnitRate.String(),
			TaxRatePercent: it.TaxRatePercent.String(),
		}
	}
	return dtos
}

func toTotalsDTO(t billing.InvoiceTotals) TotalsDTO {
	return TotalsDTO{
		Subtotal:   t.Subtotal.String(),
		TaxTotal:   t.TaxTotal.String(),
		Discount:   t.Discount.String(),
		GrandTotal: t.GrandTotal.String(),
	}
}

func toPeriodDTO(p billing.Period) PeriodDTO {
	return PeriodDTO{Start: p.Start.String(), End: p.End.String()}
}

func toInvoiceDTO(inv *invoicing.Invoice) InvoiceDTO {
	dto := InvoiceDTO{
		ID:         inv.ID,
		CustomerID: inv.CustomerID,
		Number:     inv.Number,
		Lines:      toLineItemDTOs(inv.Lines),
		Status:     string(inv.Status),
		Notes:      inv.Notes,
	}
	if !inv.IssueDate.IsZero() {
		dto.IssueDate = inv.IssueDate.String()
	}
	if !inv.DueDate.IsZero() {
		dto.DueDate = inv.DueDate.String()
	}
	if !inv.CreatedAt.IsZero() {
		dto.CreatedAt = inv.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	// Drafts always have valid lines; totals cannot fail here.
	if totals, err := inv.Totals(); err == nil {
		dto.Totals = toTotalsDTO(totals)
	}
	return dto
}

func toWorkDTO(def *workplan.Definition) WorkDTO {
	dto := WorkDTO{
		ID:         def.ID,
		CustomerID: def.CustomerID,
		Title:      def.Title,
		Schedule:   factory.FromDescriptor(def.Recurrence),
		FeeItems:   toLineItemDTOs(def.FeeItems),
		Discount:   def.Discount.String(),
		Active:     def.Active,
	}
	if !def.CreatedAt.IsZero() {
		dto.CreatedAt = def.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return dto
}
