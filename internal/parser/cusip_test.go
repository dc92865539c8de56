package parser

import "testing"

func TestValidCusip(t *testing.T) {
	valid := []string{
		"037833100", // Apple Inc
		"059428107", // Banco Bradesco ADR
		"88160R101", // Tesla Inc
		"G0684D107", // Aptiv PLC (non-US prefix)
		"00206R102",
	}
	for _, cusip := range valid {
		if !ValidCusip(cusip) {
			t.Errorf("expected %q to be a valid CUSIP", cusip)
		}
	}

	invalid := []string{
		"",
		"03783310",    // too short
		"0378331000",  // too long
		"03783310X",   // check position must be a digit
		"03783310a",   // lowercase not allowed
		"0378 3310",   // embedded space
		"037-833100",  // punctuation
		"NAMEOFISH",   // alphabetic but non-digit check position
		"123456789 ",  // trailing space
	}
	for _, cusip := range invalid {
		if ValidCusip(cusip) {
			t.Errorf("expected %q to be rejected", cusip)
		}
	}
}
