// Package reporting aggregates quotes into the sales manager reports.
// Reports are computed on demand from PostgreSQL and never cached.
package reporting

import "github.com/shopspring/decimal"

// AmountSeries is a chart series of money totals.
type AmountSeries struct {
	Labels []string          `json:"labels"`
	Data   []decimal.Decimal `json:"data"`
}

// CountSeries is a chart series of counts.
type CountSeries struct {
	Labels []string `json:"labels"`
	Data   []int64  `json:"data"`
}

// Dataset is one vendor row of a cross-tab.
type Dataset struct {
	Label string            `json:"label"`
	Data  []decimal.Decimal `json:"data"`
}

// CrossTab is monthly sales per vendor, zero filled so every dataset has
// one value per label.
type CrossTab struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Summary bundles all reports for the dashboard.
type Summary struct {
	SalesByMonth         AmountSeries `json:"sales_by_month"`
	SalesByMonthByVendor CrossTab     `json:"sales_by_month_by_vendor"`
	QuotesByVendor       CountSeries  `json:"quotes_by_vendor"`
	RejectionsByVendor   CountSeries  `json:"rejections_by_vendor"`
}

// MonthTotal is a row of approved sales grouped by month (YYYY-MM).
type MonthTotal struct {
	Month string
	Total decimal.Decimal
}

// VendorMonthTotal is a row of approved sales grouped by month and vendor.
type VendorMonthTotal struct {
	Month  string
	Vendor string
	Total  decimal.Decimal
}

// VendorCount is a row of quote counts per vendor.
type VendorCount struct {
	Vendor string
	Count  int64
}
