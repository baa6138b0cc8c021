package directive

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Quantity bounds for a single add directive. Values outside the range are
// rejected during validation rather than clamped.
const (
	MinQuantity = 1
	MaxQuantity = 1000
)

// skuPattern is the full set of characters a SKU may contain. Anything
// else, including path separators and dots, fails validation.
var skuPattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

var (
	ErrInvalidSKU      = errors.New("directive: invalid sku")
	ErrInvalidQuantity = errors.New("directive: quantity out of range")
	ErrUnknownKind     = errors.New("directive: unknown directive kind")
)

// Command is a validated directive ready for execution. The concrete types
// are AddToQuote and RemoveFromQuote; nothing else implements it.
type Command interface {
	Kind() Kind
	// Validate re-checks the command's fields. Commands built by
	// ParseCommand are already valid; commands constructed elsewhere
	// (bill-of-materials acceptance) go through the same checks here.
	Validate() error
}

// AddToQuote adds Quantity units of SKU to the session quote.
type AddToQuote struct {
	SKU      string
	Quantity int
}

func (AddToQuote) Kind() Kind { return KindAddToQuote }

func (c AddToQuote) Validate() error {
	if !skuPattern.MatchString(c.SKU) {
		return fmt.Errorf("%w: %q", ErrInvalidSKU, c.SKU)
	}
	if c.Quantity < MinQuantity || c.Quantity > MaxQuantity {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, c.Quantity)
	}
	return nil
}

// RemoveFromQuote removes the line item for SKU, if present.
type RemoveFromQuote struct {
	SKU string
}

func (RemoveFromQuote) Kind() Kind { return KindRemoveFromQuote }

func (c RemoveFromQuote) Validate() error {
	if !skuPattern.MatchString(c.SKU) {
		return fmt.Errorf("%w: %q", ErrInvalidSKU, c.SKU)
	}
	return nil
}

// ParseCommand converts a scanner match into a validated Command.
// Validation is fail-closed: any field that does not conform rejects the
// whole directive.
func ParseCommand(m Match) (Command, error) {
	switch m.Kind {
	case KindAddToQuote:
		qty, err := strconv.Atoi(m.Quantity)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidQuantity, m.Quantity)
		}
		cmd := AddToQuote{SKU: m.SKU, Quantity: qty}
		if err := cmd.Validate(); err != nil {
			return nil, err
		}
		return cmd, nil
	case KindRemoveFromQuote:
		cmd := RemoveFromQuote{SKU: m.SKU}
		if err := cmd.Validate(); err != nil {
			return nil, err
		}
		return cmd, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, m.Kind)
	}
}
