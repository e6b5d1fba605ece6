package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/genuino/cotizaciones/internal/sales/quotations"
	"github.com/genuino/cotizaciones/internal/view"
)

const quoteTemplate = "documents/quote.html"

// HTMLRenderer converts HTML into PDF bytes.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Company identifies the issuer printed on documents.
type Company struct {
	Name  string
	TaxID string
	City  string
}

// DocumentCustomer is the customer block of a quote document.
type DocumentCustomer struct {
	Name    string
	TaxID   string
	Contact string
	Email   string
}

// DocumentLine is one printed quote item.
type DocumentLine struct {
	Code        string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// DocumentGroup collects the lines of one catalog type.
type DocumentGroup struct {
	TypeID   int64
	TypeName string
	Lines    []DocumentLine
	Subtotal decimal.Decimal
}

// QuoteDocument is the data passed to the quote template.
type QuoteDocument struct {
	Brand       string
	Number      string
	Date        time.Time
	StatusLabel string
	Company     Company
	Customer    DocumentCustomer
	Vendor      string
	Groups      []DocumentGroup
	GrandTotal  decimal.Decimal
}

// QuoteRenderer turns quote details into PDF documents.
type QuoteRenderer struct {
	pdf     HTMLRenderer
	engine  *view.Engine
	company Company
	brand   string
}

// NewQuoteRenderer constructs a QuoteRenderer.
func NewQuoteRenderer(pdf HTMLRenderer, engine *view.Engine, company Company, brand string) *QuoteRenderer {
	return &QuoteRenderer{pdf: pdf, engine: engine, company: company, brand: brand}
}

// RenderQuote renders the quote as a PDF.
func (r *QuoteRenderer) RenderQuote(ctx context.Context, quote *quotations.Detail) ([]byte, error) {
	html, err := r.RenderQuoteHTML(quote)
	if err != nil {
		return nil, err
	}
	pdf, err := r.pdf.RenderHTML(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("render quote %s: %w", quote.Number, err)
	}
	return pdf, nil
}

// RenderQuoteHTML executes the quote template without converting it.
func (r *QuoteRenderer) RenderQuoteHTML(quote *quotations.Detail) (string, error) {
	if quote == nil {
		return "", errors.New("report: nil quote")
	}
	return r.engine.RenderString(quoteTemplate, r.BuildDocument(quote))
}

// BuildDocument groups the quote items by catalog type in type order.
func (r *QuoteRenderer) BuildDocument(quote *quotations.Detail) QuoteDocument {
	doc := QuoteDocument{
		Brand:       r.brand,
		Number:      quote.Number,
		Date:        quote.CreatedAt,
		StatusLabel: quote.Status.Label(),
		Company:     r.company,
		Customer: DocumentCustomer{
			Name:  quote.CustomerName,
			TaxID: quote.CustomerNIT,
		},
		Vendor:     quote.VendorName,
		GrandTotal: quote.Total,
	}
	if quote.ContactPerson != nil {
		doc.Customer.Contact = *quote.ContactPerson
	}
	if quote.ContactEmail != nil {
		doc.Customer.Email = *quote.ContactEmail
	}

	index := make(map[int64]int)
	for _, item := range quote.Items {
		pos, ok := index[item.TypeID]
		if !ok {
			name := item.TypeName
			if name == "" {
				name = fmt.Sprintf("Tipo %d", item.TypeID)
			}
			doc.Groups = append(doc.Groups, DocumentGroup{TypeID: item.TypeID, TypeName: name})
			pos = len(doc.Groups) - 1
			index[item.TypeID] = pos
		}
		line := DocumentLine{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		}
		if item.Code != nil {
			line.Code = *item.Code
		}
		group := &doc.Groups[pos]
		group.Lines = append(group.Lines, line)
		group.Subtotal = group.Subtotal.Add(item.Subtotal)
	}
	sort.SliceStable(doc.Groups, func(i, j int) bool {
		return doc.Groups[i].TypeID < doc.Groups[j].TypeID
	})
	return doc
}
