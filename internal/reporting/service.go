package reporting

import (
	"context"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Service builds the reports from repository rows.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService wires a Repository.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// SalesByMonth totals approved quotes per creation month.
func (s *Service) SalesByMonth(ctx context.Context) (AmountSeries, error) {
	rows, err := s.repo.MonthlySales(ctx)
	if err != nil {
		return AmountSeries{}, err
	}
	series := AmountSeries{Labels: make([]string, 0, len(rows)), Data: make([]decimal.Decimal, 0, len(rows))}
	for _, row := range rows {
		series.Labels = append(series.Labels, row.Month)
		series.Data = append(series.Data, row.Total)
	}
	return series, nil
}

// SalesByMonthByVendor pivots approved sales into one dataset per vendor.
func (s *Service) SalesByMonthByVendor(ctx context.Context) (CrossTab, error) {
	rows, err := s.repo.VendorMonthlySales(ctx)
	if err != nil {
		return CrossTab{}, err
	}
	return pivot(rows), nil
}

func pivot(rows []VendorMonthTotal) CrossTab {
	monthSet := map[string]struct{}{}
	cells := map[string]map[string]decimal.Decimal{}
	for _, row := range rows {
		monthSet[row.Month] = struct{}{}
		if cells[row.Vendor] == nil {
			cells[row.Vendor] = map[string]decimal.Decimal{}
		}
		cells[row.Vendor][row.Month] = cells[row.Vendor][row.Month].Add(row.Total)
	}

	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)
	vendors := make([]string, 0, len(cells))
	for v := range cells {
		vendors = append(vendors, v)
	}
	sort.Strings(vendors)

	tab := CrossTab{Labels: months, Datasets: make([]Dataset, 0, len(vendors))}
	for _, vendor := range vendors {
		data := make([]decimal.Decimal, len(months))
		for i, month := range months {
			data[i] = cells[vendor][month]
		}
		tab.Datasets = append(tab.Datasets, Dataset{Label: vendor, Data: data})
	}
	return tab
}

// QuotesByVendor counts quotes of every status per vendor, highest first.
func (s *Service) QuotesByVendor(ctx context.Context) (CountSeries, error) {
	rows, err := s.repo.QuoteCountsByVendor(ctx, "")
	if err != nil {
		return CountSeries{}, err
	}
	return counts(rows), nil
}

// RejectionsByVendor counts rejected quotes per vendor. Storage errors yield
// an empty series.
func (s *Service) RejectionsByVendor(ctx context.Context) CountSeries {
	rows, err := s.repo.QuoteCountsByVendor(ctx, statusRejected)
	if err != nil {
		s.logger.Error("rejections by vendor report", "error", err)
		return counts(nil)
	}
	return counts(rows)
}

func counts(rows []VendorCount) CountSeries {
	series := CountSeries{Labels: make([]string, 0, len(rows)), Data: make([]int64, 0, len(rows))}
	for _, row := range rows {
		series.Labels = append(series.Labels, row.Vendor)
		series.Data = append(series.Data, row.Count)
	}
	return series
}

// Summary computes all reports concurrently.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	var out Summary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		series, err := s.SalesByMonth(ctx)
		if err != nil {
			return err
		}
		out.SalesByMonth = series
		return nil
	})
	g.Go(func() error {
		tab, err := s.SalesByMonthByVendor(ctx)
		if err != nil {
			return err
		}
		out.SalesByMonthByVendor = tab
		return nil
	})
	g.Go(func() error {
		series, err := s.QuotesByVendor(ctx)
		if err != nil {
			return err
		}
		out.QuotesByVendor = series
		return nil
	})
	g.Go(func() error {
		out.RejectionsByVendor = s.RejectionsByVendor(ctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return out, nil
}
