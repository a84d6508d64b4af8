package portfolio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/fterm"
	"github.com/shopspring/decimal"
)

// CSVHeader is the header written by EncodeCSV. Columns may come in any order when reading.
var CSVHeader = []string{"date", "type", "ticker", "quantity", "amount", "fees", "memo"}

// DecodeCSV reads transactions from a CSV file with a header row.
//
// Header names are case insensitive, "date", "type" and "amount" are required.
// Empty numeric cells are zero. Amounts are in currency.
func DecodeCSV(r io.Reader, currency string) (*Ledger, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	header, err := reader.Read()
	if err == io.EOF {
		return NewLedger(currency), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read csv header: %w", err)
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "type", "amount"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("csv header %q misses the %q column", strings.Join(header, ","), required)
		}
	}

	ledger := NewLedger(currency)
	var errs []error
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		get := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		tx, err := decodeRecord(get, currency)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		tx.line = line
		ledger.Append(tx)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return ledger, nil
}

func decodeRecord(get func(string) string, currency string) (tx Transaction, err error) {
	if tx.Date, err = fterm.ParseDate(get("date")); err != nil {
		return tx, err
	}
	if tx.Type, err = ParseType(get("type")); err != nil {
		return tx, err
	}
	tx.Ticker = strings.ToUpper(get("ticker"))
	tx.Memo = get("memo")

	parse := func(name string) (decimal.Decimal, error) {
		s := strings.ReplaceAll(get(name), ",", "")
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return d, fmt.Errorf("invalid %s %q: %w", name, get(name), err)
		}
		return d, nil
	}
	quantity, err := parse("quantity")
	if err != nil {
		return tx, err
	}
	amount, err := parse("amount")
	if err != nil {
		return tx, err
	}
	fees, err := parse("fees")
	if err != nil {
		return tx, err
	}
	tx.Quantity = fterm.Q(quantity)
	tx.Amount = fterm.M(amount, currency)
	tx.Fees = fterm.M(fees, currency)
	return tx, nil
}

// EncodeCSV writes the ledger in CSV with CSVHeader.
func EncodeCSV(w io.Writer, l *Ledger) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, tx := range l.Transactions() {
		quantity := ""
		if tx.Type.IsTrade() {
			quantity = tx.Quantity.String()
		}
		fees := ""
		if !tx.Fees.IsZero() {
			fees = tx.Fees.Decimal().String()
		}
		record := []string{tx.Date.String(), string(tx.Type), tx.Ticker, quantity, tx.Amount.Decimal().String(), fees, tx.Memo}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
