package portfolio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// DecodeJSONL decodes one transaction per line, skipping empty lines.
//
// Transactions without a currency take the ledger's currency.
func DecodeJSONL(r io.Reader, currency string) (*Ledger, error) {
	ledger := NewLedger(currency)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal(lineBytes, &tx); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		tx.line = line
		ledger.Append(tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ledger, nil
}

// EncodeJSONL writes the ledger, one transaction per line, in chronological order.
func EncodeJSONL(w io.Writer, l *Ledger) error {
	decimal.MarshalJSONWithoutQuotes = true
	for _, tx := range l.Transactions() {
		b, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction %v: %w", tx, err)
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return fmt.Errorf("failed to write transaction: %w", err)
		}
	}
	return nil
}
