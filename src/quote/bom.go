package quote

// BOMLine is one recommended component in a bill of materials.
type BOMLine struct {
	SKU         string
	Description string
	Quantity    int
	Confidence  float64
	Reasoning   string
}

// BillOfMaterials is the itemized recommendation produced by building
// analysis. The directive engine treats it as an opaque payload until the
// user accepts it, at which point each line becomes an add-to-quote command.
type BillOfMaterials struct {
	LineItems      []BOMLine
	EstimatedTotal *float64
}

// Empty reports whether the BOM carries no line items.
func (b BillOfMaterials) Empty() bool {
	return len(b.LineItems) == 0
}
