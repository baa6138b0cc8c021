package directive

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Quotient-Labs/quote-agent/src/catalog"
)

type addCall struct {
	sku string
	qty int
}

type recorder struct {
	adds    []addCall
	removes []string
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		AddToQuote: func(item catalog.Item, quantity int) {
			r.adds = append(r.adds, addCall{sku: item.ID, qty: quantity})
		},
		RemoveFromQuote: func(sku string) {
			r.removes = append(r.removes, sku)
		},
	}
}

func testSource(t *testing.T) catalog.Source {
	t.Helper()
	return catalog.NewStaticSource([]catalog.Item{
		{ID: "PIPE-40", Name: "PVC Pipe 40mm", UnitPrice: 4.50},
		{ID: "VALVE-2", Name: "Ball Valve 2in", UnitPrice: 12.00},
	})
}

func newTestEngine(t *testing.T, rec *recorder) *Engine {
	t.Helper()
	eng, err := NewEngine(testSource(t), rec.hooks(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng
}

func TestProcessExecutesAndSanitizes(t *testing.T) {
	rec := &recorder{}
	eng := newTestEngine(t, rec)

	res := eng.Process(context.Background(),
		"Adding pipe. [ACTION:ADD_TO_QUOTE, SKU:PIPE-40, QUANTITY:3] Removing valve. [ACTION:REMOVE_FROM_QUOTE, SKU:VALVE-2]")

	if res.CleanText != "Adding pipe. Removing valve." {
		t.Errorf("CleanText = %q", res.CleanText)
	}
	if len(res.Commands) != 2 {
		t.Fatalf("expected 2 executed commands, got %d", len(res.Commands))
	}
	if len(rec.adds) != 1 || rec.adds[0] != (addCall{sku: "PIPE-40", qty: 3}) {
		t.Errorf("adds = %+v", rec.adds)
	}
	if len(rec.removes) != 1 || rec.removes[0] != "VALVE-2" {
		t.Errorf("removes = %+v", rec.removes)
	}
}

func TestProcessSkipsUnknownSKU(t *testing.T) {
	rec := &recorder{}
	eng := newTestEngine(t, rec)

	res := eng.Process(context.Background(),
		"[ACTION:ADD_TO_QUOTE, SKU:NOPE-1, QUANTITY:1] [ACTION:ADD_TO_QUOTE, SKU:PIPE-40, QUANTITY:2]")

	if len(rec.adds) != 1 || rec.adds[0].sku != "PIPE-40" {
		t.Errorf("adds = %+v, expected only PIPE-40", rec.adds)
	}
	if len(res.Commands) != 1 {
		t.Errorf("expected 1 executed command, got %d", len(res.Commands))
	}
	if res.CleanText != "" {
		t.Errorf("CleanText = %q, want empty", res.CleanText)
	}
}

func TestProcessInvalidDirectiveDoesNotAffectNeighbours(t *testing.T) {
	rec := &recorder{}
	eng := newTestEngine(t, rec)

	res := eng.Process(context.Background(),
		"[ACTION:ADD_TO_QUOTE, SKU:PIPE-40, QUANTITY:0] mid [ACTION:ADD_TO_QUOTE, SKU:VALVE-2, QUANTITY:5]")

	if len(rec.adds) != 1 || rec.adds[0] != (addCall{sku: "VALVE-2", qty: 5}) {
		t.Errorf("adds = %+v", rec.adds)
	}
	if res.CleanText != "mid" {
		t.Errorf("CleanText = %q", res.CleanText)
	}
}

func TestProcessPreservesDirectiveOrder(t *testing.T) {
	rec := &recorder{}
	eng := newTestEngine(t, rec)

	eng.Process(context.Background(),
		"[ACTION:ADD_TO_QUOTE, SKU:PIPE-40, QUANTITY:1]"+
			"[ACTION:REMOVE_FROM_QUOTE, SKU:PIPE-40]"+
			"[ACTION:ADD_TO_QUOTE, SKU:VALVE-2, QUANTITY:2]")

	if len(rec.adds) != 2 || len(rec.removes) != 1 {
		t.Fatalf("adds = %+v removes = %+v", rec.adds, rec.removes)
	}
	if rec.adds[0].sku != "PIPE-40" || rec.adds[1].sku != "VALVE-2" {
		t.Errorf("add order wrong: %+v", rec.adds)
	}
}

func TestProcessNonNumericQuantityIsStripped(t *testing.T) {
	rec := &recorder{}
	eng := newTestEngine(t, rec)

	res := eng.Process(context.Background(),
		"ok [ACTION:ADD_TO_QUOTE, SKU:PIPE-40, QUANTITY:two] done")

	if len(rec.adds) != 0 || len(rec.removes) != 0 {
		t.Errorf("side effects fired: %+v %+v", rec.adds, rec.removes)
	}
	if res.CleanText != "ok done" {
		t.Errorf("CleanText = %q, want %q", res.CleanText, "ok done")
	}
}

func TestProcessPathTraversalSKU(t *testing.T) {
	rec := &recorder{}
	eng := newTestEngine(t, rec)

	res := eng.Process(context.Background(),
		"sure [ACTION:ADD_TO_QUOTE, SKU:../../../etc/passwd, QUANTITY:1] done")

	if len(rec.adds) != 0 || len(rec.removes) != 0 {
		t.Errorf("side effects fired: %+v %+v", rec.adds, rec.removes)
	}
	if strings.Contains(res.CleanText, "passwd") {
		t.Errorf("payload leaked into CleanText: %q", res.CleanText)
	}
	if res.CleanText != "sure done" {
		t.Errorf("CleanText = %q", res.CleanText)
	}
}

func TestProcessPlainTextIsUntouched(t *testing.T) {
	rec := &recorder{}
	eng := newTestEngine(t, rec)

	res := eng.Process(context.Background(), "Just a normal answer with no actions.")
	if res.CleanText != "Just a normal answer with no actions." {
		t.Errorf("CleanText = %q", res.CleanText)
	}
	if len(res.Commands) != 0 || len(rec.adds) != 0 || len(rec.removes) != 0 {
		t.Errorf("unexpected side effects: %+v %+v", rec.adds, rec.removes)
	}
}

type failingSource struct{}

func (failingSource) Item(ctx context.Context, sku string) (catalog.Item, bool, error) {
	return catalog.Item{}, false, fmt.Errorf("backend down")
}

func (failingSource) Items(ctx context.Context) ([]catalog.Item, error) {
	return nil, fmt.Errorf("backend down")
}

func TestProcessCatalogErrorSkipsCommand(t *testing.T) {
	rec := &recorder{}
	eng, err := NewEngine(failingSource{}, rec.hooks(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	res := eng.Process(context.Background(),
		"before [ACTION:ADD_TO_QUOTE, SKU:PIPE-40, QUANTITY:1] after")

	if len(rec.adds) != 0 {
		t.Errorf("adds = %+v, expected none", rec.adds)
	}
	if res.CleanText != "before after" {
		t.Errorf("CleanText = %q", res.CleanText)
	}
}

func TestExecuteValidatedBatch(t *testing.T) {
	rec := &recorder{}
	eng := newTestEngine(t, rec)

	executed := eng.Execute(context.Background(), []Command{
		AddToQuote{SKU: "PIPE-40", Quantity: 2},
		AddToQuote{SKU: "GHOST-9", Quantity: 1},
		RemoveFromQuote{SKU: "VALVE-2"},
	})

	if len(executed) != 2 {
		t.Fatalf("executed = %+v", executed)
	}
	if executed[0].Kind() != KindAddToQuote || executed[1].Kind() != KindRemoveFromQuote {
		t.Errorf("executed order wrong: %+v", executed)
	}
}

func TestNewEngineRejectsMissingDependencies(t *testing.T) {
	rec := &recorder{}
	if _, err := NewEngine(nil, rec.hooks(), nil); err == nil {
		t.Error("expected error for nil source")
	}
	if _, err := NewEngine(testSource(t), Hooks{}, nil); err == nil {
		t.Error("expected error for empty hooks")
	}
}
