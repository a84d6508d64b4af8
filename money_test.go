package fterm

import "testing"

func EUR(v float64) Money { return M(v, "EUR") }
func USD(v float64) Money { return M(v, "USD") }

func TestMoney_String(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{USD(1234.5), "$1,234.50"},
		{M(3.14159, "XYZ"), "3.14 XYZ"},
		{M(3.14159, ""), "3.14"},
		{USD(-2), "-$2.00"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestMoney_WeakCurrency(t *testing.T) {
	var zero Money
	got := zero.Add(USD(5))
	if got.Currency() != "USD" || !got.Equal(USD(5)) {
		t.Errorf("zero.Add(USD(5)) = %v, want %v", got, USD(5))
	}
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Add() with mismatching currencies should panic")
		}
	}()
	USD(1).Add(EUR(1))
}

func TestMoney_MulDiv(t *testing.T) {
	cost := USD(1000).Mul(Q(3)).Div(Q(4))
	if !cost.Equal(USD(750)) {
		t.Errorf("1000*3/4 = %v, want %v", cost, USD(750))
	}
	if got := USD(150).DivPrice(USD(50)); !got.Equal(Q(3)) {
		t.Errorf("DivPrice() = %v, want 3", got)
	}
}

func TestPercent_SignedString(t *testing.T) {
	tests := []struct {
		p    Percent
		want string
	}{
		{Ratio(0.05), "+5.00%"},
		{-1.234, "-1.23%"},
		{0.0001, "-"},
	}
	for _, tt := range tests {
		if got := tt.p.SignedString(); got != tt.want {
			t.Errorf("SignedString(%v) = %q, want %q", float64(tt.p), got, tt.want)
		}
	}
}
