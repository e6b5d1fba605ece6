package reporting

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

// WriteAmountCSV emits a money series as CSV.
func WriteAmountCSV(w io.Writer, header string, series AmountSeries) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{header, "Total"}); err != nil {
		return err
	}
	for i, label := range series.Labels {
		if err := writer.Write([]string{label, formatAmount(series.Data[i])}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCountCSV emits a count series as CSV.
func WriteCountCSV(w io.Writer, series CountSeries) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Vendedor", "Cantidad"}); err != nil {
		return err
	}
	for i, label := range series.Labels {
		if err := writer.Write([]string{label, strconv.FormatInt(series.Data[i], 10)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCrossTabCSV prints one row per vendor and one column per month.
func WriteCrossTabCSV(w io.Writer, tab CrossTab) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(append([]string{"Vendedor"}, tab.Labels...)); err != nil {
		return err
	}
	for _, ds := range tab.Datasets {
		record := make([]string, 0, len(ds.Data)+1)
		record = append(record, ds.Label)
		for _, v := range ds.Data {
			record = append(record, formatAmount(v))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatAmount(v decimal.Decimal) string {
	return v.StringFixed(2)
}
