package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/fterm"
	"github.com/shopspring/decimal"
)

// Type is the kind of a transaction.
type Type string

const (
	Deposit  Type = "deposit"
	Withdraw Type = "withdraw"
	Buy      Type = "buy"
	Sell     Type = "sell"
	Dividend Type = "dividend"
	Fee      Type = "fee"
)

// Types lists every transaction type, in documentation order.
var Types = []Type{Deposit, Withdraw, Buy, Sell, Dividend, Fee}

// ParseType parses a transaction type, case insensitive.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case Deposit, Withdraw, Buy, Sell, Dividend, Fee:
		return t, nil
	case "withdrawal":
		return Withdraw, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// IsTrade reports whether t is a buy or a sell.
func (t Type) IsTrade() bool { return t == Buy || t == Sell }

// needsTicker reports whether a transaction of type t is about a security.
func (t Type) needsTicker() bool { return t == Buy || t == Sell || t == Dividend }

// Transaction is one entry of the ledger.
//
// Amount is always positive, its direction is given by the Type. For trades
// it is the total amount exchanged, Fees excluded.
type Transaction struct {
	Date     fterm.Date
	Type     Type
	Ticker   string
	Quantity fterm.Quantity
	Amount   fterm.Money
	Fees     fterm.Money
	Memo     string

	line int // line in the source file, 0 if unknown
}

// Price returns the unit price of a trade, fees excluded.
func (tx Transaction) Price() fterm.Money {
	if tx.Quantity.IsZero() {
		return fterm.Money{}
	}
	return tx.Amount.Div(tx.Quantity)
}

func (tx Transaction) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", tx.Date, tx.Type)
	if tx.Ticker != "" {
		fmt.Fprintf(&b, " %s", tx.Ticker)
	}
	if tx.Type.IsTrade() {
		fmt.Fprintf(&b, " %s", tx.Quantity)
	}
	fmt.Fprintf(&b, " %s", tx.Amount)
	return b.String()
}

// ref names the transaction in error messages.
func (tx Transaction) ref(index int) string {
	if tx.line > 0 {
		return fmt.Sprintf("line %d (%s %s)", tx.line, tx.Date, tx.Type)
	}
	return fmt.Sprintf("transaction #%d (%s %s)", index+1, tx.Date, tx.Type)
}

// check returns the static errors of a transaction: the ones that do not depend on the ledger.
func (tx Transaction) check() error {
	var errs []error
	switch tx.Type {
	case Deposit, Withdraw, Buy, Sell, Dividend, Fee:
	default:
		errs = append(errs, fmt.Errorf("unknown transaction type %q", tx.Type))
	}
	if tx.Date.IsZero() {
		errs = append(errs, errors.New("date is missing"))
	}
	if tx.Type.needsTicker() && tx.Ticker == "" {
		errs = append(errs, errors.New("ticker is missing"))
	}
	if tx.Type.IsTrade() && !tx.Quantity.IsPositive() {
		errs = append(errs, fmt.Errorf("quantity must be positive, got %s", tx.Quantity))
	}
	if !tx.Amount.IsPositive() {
		errs = append(errs, fmt.Errorf("amount must be positive, got %s", tx.Amount.Decimal()))
	}
	if tx.Fees.IsNegative() {
		errs = append(errs, fmt.Errorf("fees cannot be negative, got %s", tx.Fees.Decimal()))
	}
	return errors.Join(errs...)
}

// MarshalJSON writes the transaction with a stable field order.
func (tx Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", tx.Date)
	w.Append("type", tx.Type)
	w.Optional("ticker", tx.Ticker)
	if tx.Type.IsTrade() {
		w.Append("quantity", tx.Quantity.Decimal())
	}
	w.Append("amount", tx.Amount.Decimal())
	if !tx.Fees.IsZero() {
		w.Append("fees", tx.Fees.Decimal())
	}
	w.Optional("currency", tx.Amount.Currency())
	w.Optional("memo", tx.Memo)
	return w.MarshalJSON()
}

// jsonTransaction is the decoding form of a Transaction.
type jsonTransaction struct {
	Date     fterm.Date      `json:"date"`
	Type     string          `json:"type"`
	Ticker   string          `json:"ticker"`
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
	Fees     decimal.Decimal `json:"fees"`
	Currency string          `json:"currency"`
	Memo     string          `json:"memo"`
}

func (tx *Transaction) UnmarshalJSON(b []byte) error {
	var j jsonTransaction
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	t, err := ParseType(j.Type)
	if err != nil {
		return err
	}
	*tx = Transaction{
		Date:     j.Date,
		Type:     t,
		Ticker:   strings.ToUpper(strings.TrimSpace(j.Ticker)),
		Quantity: fterm.Q(j.Quantity),
		Amount:   fterm.M(j.Amount, j.Currency),
		Fees:     fterm.M(j.Fees, j.Currency),
		Memo:     j.Memo,
	}
	return nil
}
