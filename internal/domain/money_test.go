package domain

import "testing"

func TestCurrencyFormat(t *testing.T) {
	ngn := Currency{Code: "NGN", Symbol: "₦", Precision: 2}
	tests := []struct {
		minor int64
		want  string
	}{
		{500000, "₦5,000.00"},
		{5000, "₦50.00"},
		{505000, "₦5,050.00"},
		{50, "₦0.50"},
		{0, "₦0.00"},
	}
	for _, tc := range tests {
		if got := ngn.Format(tc.minor); got != tc.want {
			t.Fatalf("Format(%d) = %q, want %q", tc.minor, got, tc.want)
		}
	}
}

func TestMajorMinorRoundTrip(t *testing.T) {
	if got := MajorToMinor(5000); got != 500000 {
		t.Fatalf("MajorToMinor(5000) = %d", got)
	}
	if got := MajorToMinor(50.5); got != 5050 {
		t.Fatalf("MajorToMinor(50.5) = %d", got)
	}
	if got := MinorToMajor(505000); got != 5050 {
		t.Fatalf("MinorToMajor(505000) = %v", got)
	}
}
