package model

import "testing"

func TestTerminalOfferResponse(t *testing.T) {
	cases := []struct {
		response string
		terminal bool
	}{
		{OfferAccepted, true},
		{OfferRejected, true},
		{OfferCountered, false},
		{OfferPending, false},
		{"needs-revision", false},
	}
	for _, tc := range cases {
		if got := TerminalOfferResponse(tc.response); got != tc.terminal {
			t.Errorf("TerminalOfferResponse(%q) = %v; want %v", tc.response, got, tc.terminal)
		}
	}
}

func TestFormatBookingID(t *testing.T) {
	if got := FormatBookingID(42); got != "#B00042" {
		t.Errorf("FormatBookingID(42) = %q; want #B00042", got)
	}
	if got := FormatBookingID(123456); got != "#B123456" {
		t.Errorf("FormatBookingID(123456) = %q; want #B123456", got)
	}
}
