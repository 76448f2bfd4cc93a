package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSourceIsValid(t *testing.T) {
	for _, source := range AllSources() {
		if !source.IsValid() {
			t.Errorf("%s should be valid", source)
		}
	}
	if Source("inventario").IsValid() {
		t.Errorf("unknown source should be invalid")
	}
}

func TestAllSourcesOrder(t *testing.T) {
	sources := AllSources()
	if len(sources) != 4 || sources[0] != SourceStock {
		t.Errorf("sources = %v; stock must come first", sources)
	}
}

func TestMovementKindDelta(t *testing.T) {
	qty := decimal.RequireFromString("2.5")

	if got := MovementEntrada.Delta(qty); !got.Equal(qty) {
		t.Errorf("entrada delta = %s, want %s", got, qty)
	}
	for _, kind := range []MovementKind{MovementSalida, MovementConsumo} {
		if got := kind.Delta(qty); !got.Equal(qty.Neg()) {
			t.Errorf("%s delta = %s, want %s", kind, got, qty.Neg())
		}
	}
}

func TestMovementRowValidate(t *testing.T) {
	row := MovementRow{
		Kind:     MovementEntrada,
		RawName:  "Harina",
		Quantity: decimal.NewFromInt(3),
	}
	if err := row.Validate(); err != nil {
		t.Errorf("valid row rejected: %v", err)
	}

	bad := row
	bad.Quantity = decimal.Zero
	if err := bad.Validate(); err == nil {
		t.Errorf("zero quantity should be rejected")
	}

	bad = row
	bad.Kind = MovementKind("TRASLADO")
	if err := bad.Validate(); err == nil {
		t.Errorf("unknown kind should be rejected")
	}
}

func TestCanonicalItemValidate(t *testing.T) {
	item := CanonicalItem{Name: "Harina", NormalizedName: "harina", Unit: "kg"}
	if err := item.Validate(); err != nil {
		t.Errorf("valid item rejected: %v", err)
	}
	item.Unit = " "
	if err := item.Validate(); err == nil {
		t.Errorf("blank unit should be rejected")
	}
}

func TestImportSummaryHelpers(t *testing.T) {
	summary := NewImportSummary(true)
	if !summary.DryRun || summary.RowsRead == nil {
		t.Fatalf("summary not initialized: %+v", summary)
	}

	summary.RowsRead[SourceStock] = 10
	summary.RowsRead[SourceInbound] = 5
	if got := summary.TotalRowsRead(); got != 15 {
		t.Errorf("TotalRowsRead = %d, want 15", got)
	}

	summary.AddError("row %d skipped", 7)
	if len(summary.Errors) != 1 || summary.Errors[0] != "row 7 skipped" {
		t.Errorf("errors = %v", summary.Errors)
	}
}
