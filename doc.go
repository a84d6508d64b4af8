// Package fterm provides the value types shared by every menu of the fterm
// financial terminal.
//
// The terminal itself is a tree of interactive menus (stocks, crypto, ETFs,
// options, economy, portfolio, screener) implemented in the cmd package on top
// of the menu package. Each menu command validates its flags, calls a data
// provider (yahoo, coingecko, fred, tradier, finviz, eodhd) and renders the
// result as a markdown table.
//
// This package holds what those pieces exchange:
//   - Calendar: Date, Period and Range with day-level granularity and the
//     lenient date syntax accepted on the command line (e.g. "-1y", "8-27").
//   - Amounts: Money and Quantity, backed by exact decimals, and Percent.
//   - Market data: Candle, Quote and History, a chronologically sorted series
//     of dated values.
package fterm
