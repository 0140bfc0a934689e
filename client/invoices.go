package client

import (
	"context"
	"iter"
	"net/http"
	"time"

	"github.com/pitabwire/pscale/model"
	"github.com/pitabwire/pscale/operation"
)

// Invoice is a billing statement for one period.
type Invoice struct {
	ID                 string    `json:"id" validate:"required"`
	Total              float64   `json:"total"`
	Currency           string    `json:"currency,omitempty"`
	Status             string    `json:"status,omitempty"`
	BillingPeriodStart time.Time `json:"billing_period_start"`
	BillingPeriodEnd   time.Time `json:"billing_period_end"`
	IssuedAt           time.Time `json:"issued_at"`
}

// ListInvoicesInput selects a page of invoices.
type ListInvoicesInput struct {
	Organization string `json:"organization"`
	model.PageParams
}

// InvoiceInput identifies an invoice.
type InvoiceInput struct {
	Organization string `json:"organization"`
	ID           string `json:"id" validate:"required"`
}

var (
	ErrListInvoicesUnauthorized = sentinel("ListInvoices", unauthorized)
	ErrListInvoicesForbidden    = sentinel("ListInvoices", forbidden)
	ErrListInvoicesNotFound     = sentinel("ListInvoices", notFound)

	ErrGetInvoiceUnauthorized = sentinel("GetInvoice", unauthorized)
	ErrGetInvoiceForbidden    = sentinel("GetInvoice", forbidden)
	ErrGetInvoiceNotFound     = sentinel("GetInvoice", notFound)
)

var listInvoices = operation.MakePaginated[ListInvoicesInput, Invoice](func() operation.Descriptor[ListInvoicesInput] {
	return operation.Descriptor[ListInvoicesInput]{
		Name:       "listInvoices",
		Method:     http.MethodGet,
		Path:       "/organizations/{organization}/invoices",
		PathParams: []string{"organization"},
		Errors:     declare("ListInvoices", readFailures),
	}
})

var getInvoice = operation.Make[InvoiceInput, Invoice](func() operation.Descriptor[InvoiceInput] {
	return operation.Descriptor[InvoiceInput]{
		Name:       "getInvoice",
		Method:     http.MethodGet,
		Path:       "/organizations/{organization}/invoices/{id}",
		PathParams: []string{"organization", "id"},
		Errors:     declare("GetInvoice", readFailures),
	}
})

// ListInvoices fetches one page of invoices.
func (c *Client) ListInvoices(ctx context.Context, in ListInvoicesInput) (model.Page[Invoice], error) {
	return call(ctx, c, listInvoices.Operation, in)
}

// InvoicePages streams pages of invoices starting at in.Page.
func (c *Client) InvoicePages(ctx context.Context, in ListInvoicesInput) iter.Seq2[model.Page[Invoice], error] {
	return pages(ctx, c, listInvoices, in)
}

// AllInvoices streams every invoice of the organization.
func (c *Client) AllInvoices(ctx context.Context, in ListInvoicesInput) iter.Seq2[Invoice, error] {
	return items(ctx, c, listInvoices, in)
}

// GetInvoice fetches one invoice.
func (c *Client) GetInvoice(ctx context.Context, in InvoiceInput) (Invoice, error) {
	return call(ctx, c, getInvoice, in)
}
