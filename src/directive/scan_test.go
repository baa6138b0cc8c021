package directive

import (
	"errors"
	"testing"
)

func TestScanFindsBothForms(t *testing.T) {
	text := "Sure. [ACTION:ADD_TO_QUOTE, SKU:PIPE-40, QUANTITY:3] and also " +
		"[ACTION:REMOVE_FROM_QUOTE, SKU:VALVE-2] done."

	matches := Scan(text)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Kind != KindAddToQuote || matches[0].SKU != "PIPE-40" || matches[0].Quantity != "3" {
		t.Errorf("unexpected first match: %+v", matches[0])
	}
	if matches[1].Kind != KindRemoveFromQuote || matches[1].SKU != "VALVE-2" {
		t.Errorf("unexpected second match: %+v", matches[1])
	}
	if matches[0].Span.Start >= matches[1].Span.Start {
		t.Errorf("matches out of order: %+v", matches)
	}
}

func TestScanPreservesTextOrder(t *testing.T) {
	text := "[ACTION:REMOVE_FROM_QUOTE, SKU:B] x [ACTION:ADD_TO_QUOTE, SKU:A, QUANTITY:1]"
	matches := Scan(text)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Kind != KindRemoveFromQuote || matches[1].Kind != KindAddToQuote {
		t.Errorf("matches not in text order: %+v", matches)
	}
}

func TestScanIgnoresMalformedBrackets(t *testing.T) {
	cases := []string{
		"no directives here",
		"[ACTION:ADD_TO_QUOTE, SKU:X]",                  // missing quantity field
		"[action:add_to_quote, sku:x, quantity:1]",      // wrong case
		"[ACTION:REMOVE_FROM_QUOTE, SKU:X, QUANTITY:2]", // extra field
		"[ACTION:DROP_TABLE, SKU:X]",                    // unknown action
		"[ACTION:ADD_TO_QUOTE SKU:X QUANTITY:1]",        // missing commas
	}
	for _, text := range cases {
		if matches := Scan(text); len(matches) != 0 {
			t.Errorf("Scan(%q) = %+v, expected none", text, matches)
		}
	}
}

func TestScanCapturesBadQuantityForValidation(t *testing.T) {
	// A recognized ADD form with a garbage quantity is a validator
	// rejection, not a grammar mismatch: the scanner must still match it
	// so the span gets stripped from the display text.
	cases := map[string]string{
		"[ACTION:ADD_TO_QUOTE, SKU:X, QUANTITY:two]": "two",
		"[ACTION:ADD_TO_QUOTE, SKU:X, QUANTITY:]":    "",
		"[ACTION:ADD_TO_QUOTE, SKU:X, QUANTITY:1.5]": "1.5",
	}
	for text, wantQty := range cases {
		matches := Scan(text)
		if len(matches) != 1 {
			t.Errorf("Scan(%q) = %+v, expected 1 match", text, matches)
			continue
		}
		if matches[0].Quantity != wantQty {
			t.Errorf("Scan(%q).Quantity = %q, want %q", text, matches[0].Quantity, wantQty)
		}
		if _, err := ParseCommand(matches[0]); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("ParseCommand(%q): expected ErrInvalidQuantity, got %v", text, err)
		}
	}
}

func TestScanTrimsFieldWhitespace(t *testing.T) {
	matches := Scan("[ACTION:ADD_TO_QUOTE, SKU: PIPE-40 , QUANTITY: 5 ]")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].SKU != "PIPE-40" || matches[0].Quantity != "5" {
		t.Errorf("fields not trimmed: %+v", matches[0])
	}
}

func TestParseCommandValid(t *testing.T) {
	cmd, err := ParseCommand(Match{Kind: KindAddToQuote, SKU: "PIPE-40", Quantity: "3"})
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	add, ok := cmd.(AddToQuote)
	if !ok {
		t.Fatalf("expected AddToQuote, got %T", cmd)
	}
	if add.SKU != "PIPE-40" || add.Quantity != 3 {
		t.Errorf("unexpected command: %+v", add)
	}

	cmd, err = ParseCommand(Match{Kind: KindRemoveFromQuote, SKU: "VALVE-2"})
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if rm, ok := cmd.(RemoveFromQuote); !ok || rm.SKU != "VALVE-2" {
		t.Errorf("unexpected command: %+v", cmd)
	}
}

func TestParseCommandRejectsBadSKU(t *testing.T) {
	bad := []string{"../etc/passwd", "pipe-40", "PIPE 40", "PIPE_40", "", "ITEM.1"}
	for _, sku := range bad {
		_, err := ParseCommand(Match{Kind: KindAddToQuote, SKU: sku, Quantity: "1"})
		if !errors.Is(err, ErrInvalidSKU) {
			t.Errorf("sku %q: expected ErrInvalidSKU, got %v", sku, err)
		}
		_, err = ParseCommand(Match{Kind: KindRemoveFromQuote, SKU: sku})
		if !errors.Is(err, ErrInvalidSKU) {
			t.Errorf("remove sku %q: expected ErrInvalidSKU, got %v", sku, err)
		}
	}
}

func TestParseCommandRejectsBadQuantity(t *testing.T) {
	bad := []string{"0", "1001", "-5", "abc", "", "999999999999999999999"}
	for _, qty := range bad {
		_, err := ParseCommand(Match{Kind: KindAddToQuote, SKU: "PIPE-40", Quantity: qty})
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("quantity %q: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestParseCommandQuantityBounds(t *testing.T) {
	for _, qty := range []string{"1", "1000"} {
		if _, err := ParseCommand(Match{Kind: KindAddToQuote, SKU: "PIPE-40", Quantity: qty}); err != nil {
			t.Errorf("quantity %q should be valid: %v", qty, err)
		}
	}
}
