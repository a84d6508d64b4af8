package menu

import (
	"slices"
	"testing"
)

func TestParseQueue(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"quote", []string{"quote"}},
		{"stocks/load AAPL/quote", []string{"stocks", "load AAPL", "quote"}},
		{"/crypto/top -n 5", []string{"home", "crypto", "top -n 5"}},
		{"stocks//quote/", []string{"stocks", "quote"}},
		{" stocks / ta ", []string{"stocks", "ta"}},
		{`load "a/b.csv"/hold`, []string{`load "a/b.csv"`, "hold"}},
		{`search 'S&P 500/ETF'`, []string{`search 'S&P 500/ETF'`}},
		{"economy/search consumer's price/gdp", []string{"economy", "search consumer's price", "gdp"}},
		{`search "consumer's price"/gdp`, []string{`search "consumer's price"`, "gdp"}},
		{`add -m='a/b'/tx`, []string{`add -m='a/b'`, "tx"}},
		{`'a/b'/c`, []string{`'a/b'`, "c"}},
	}
	for _, test := range tests {
		got := ParseQueue(test.line)
		if !slices.Equal(got, test.want) {
			t.Errorf("ParseQueue(%q) = %q, want %q", test.line, got, test.want)
		}
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		cmd  string
		want []string
	}{
		{"", nil},
		{"load AAPL", []string{"load", "AAPL"}},
		{"  load   -s  2024-01-01 AAPL ", []string{"load", "-s", "2024-01-01", "AAPL"}},
		{`search "S&P 500"`, []string{"search", "S&P 500"}},
		{`add buy -memo 'first buy'`, []string{"add", "buy", "-memo", "first buy"}},
		{`a ""`, []string{"a", ""}},
		{`a "unterminated quote`, []string{"a", "unterminated quote"}},
		{"search consumer's price", []string{"search", "consumer's", "price"}},
		{`search "consumer's price"`, []string{"search", "consumer's price"}},
		{`add -m='first buy'`, []string{"add", "-m=first buy"}},
	}
	for _, test := range tests {
		got := SplitArgs(test.cmd)
		if !slices.Equal(got, test.want) {
			t.Errorf("SplitArgs(%q) = %q, want %q", test.cmd, got, test.want)
		}
	}
}

func TestSuggest(t *testing.T) {
	names := []string{"quote", "load", "candle", "stats"}
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"qoute", "quote", true},
		{"lod", "load", true},
		{"candles", "candle", true},
		{"stat", "stats", true},
		{"qüote", "quote", true},
		{"portfolio", "", false},
	}
	for _, test := range tests {
		got, ok := suggest(test.name, names)
		if ok != test.ok || (ok && got != test.want) {
			t.Errorf("suggest(%q) = %q, %v, want %q, %v", test.name, got, ok, test.want, test.ok)
		}
	}
}
