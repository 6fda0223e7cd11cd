package calculator

import (
	"errors"
	"testing"

	"produccion/internal/model"
)

func TestInInterval_HalfOpen(t *testing.T) {
	t.Parallel()

	records := []model.ProductionRecord{
		rec("A", 1, 1, w1, "F"),
		rec("B", 1, 1, w2, "F"),
		rec("C", 1, 1, w3, "F"),
	}
	got := InInterval(records, w1, w3)
	if len(got) != 2 || got[0].Sku != "A" || got[1].Sku != "B" {
		t.Fatalf("end must be exclusive: %+v", got)
	}
}

func TestProductsOnInterval(t *testing.T) {
	t.Parallel()

	records := []model.ProductionRecord{
		rec("A", 10, 10, w1, "F"),
		rec("A", 5, 10, w2, "F"),
		rec("B", 1, 10, w1, "F"),
		rec("Z", 3, 0, w1, "F"),
		rec("A", 99, 1, w3, "F"),
	}
	got := ProductsOnInterval(records, w1, w3)
	if len(got) != 3 {
		t.Fatalf("want 3 products got %+v", got)
	}
	if got[0].Sku != "B" || got[1].Sku != "A" || got[2].Sku != "Z" {
		t.Fatalf("ascending cumplimiento with zero plan last: %+v", got)
	}
	a := got[1]
	if a.Programado != 20 || a.Fabricado != 15 || a.Cumplimiento != 0.75 {
		t.Fatalf("unexpected aggregate %+v", a)
	}
	if len(a.Porcentajes) != 2 || a.Porcentajes[0] != 1 || a.Porcentajes[1] != 0.5 {
		t.Fatalf("unexpected porcentajes %+v", a.Porcentajes)
	}
	if a.InicioIntervalo != "04-03-2024" || a.FinIntervalo != "17-03-2024" {
		t.Fatalf("unexpected interval labels %s %s", a.InicioIntervalo, a.FinIntervalo)
	}
}

func TestCompletionOnInterval(t *testing.T) {
	t.Parallel()

	records := []model.ProductionRecord{
		rec("A", 10, 10, w1, "F"),
		rec("B", 1, 10, w1, "F"),
		rec("C", 1, 3, w1, "F"),
		rec("D", 4, 3, w1, "F"),
	}
	got, err := CompletionOnInterval(records, w1, w2)
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if got != 50 {
		t.Fatalf("want 50 got %v", got)
	}
	if _, err := CompletionOnInterval(records, w2, w3); !errors.Is(err, ErrNotReady) {
		t.Fatalf("want ErrNotReady got %v", err)
	}
}

func TestCountProducts(t *testing.T) {
	t.Parallel()

	records := []model.ProductionRecord{
		rec("A", 1, 1, w1, "F"),
		rec("A", 1, 1, w2, "F"),
		rec("B", 1, 1, w1, model.FamiliaExterno),
		rec("C", 1, 1, w3, "F"),
	}
	got := CountProducts(records, w1, w3)
	if got.Total != 2 || got.Catalogo != 1 || got.Externos != 1 {
		t.Fatalf("unexpected counts %+v", got)
	}
}

func TestLastUpdateByTipo(t *testing.T) {
	t.Parallel()

	polvo := model.NewRecord("P", 1, 1, w1, model.TipoPolvo)
	records := []model.ProductionRecord{rec("A", 1, 1, w2, "F"), rec("A", 1, 1, w1, "F"), polvo}
	got := LastUpdateByTipo(records)
	if got[model.TipoLiquido] != "11-03-2024" || got[model.TipoPolvo] != "04-03-2024" {
		t.Fatalf("unexpected %+v", got)
	}
	if _, ok := got[model.TipoLerma]; ok {
		t.Fatalf("lerma has no data")
	}
}

func TestSkuHistory_Sorted(t *testing.T) {
	t.Parallel()

	records := []model.ProductionRecord{
		rec("A", 3, 1, w3, "F"),
		rec("B", 1, 1, w1, "F"),
		rec("A", 1, 1, w1, "F"),
		rec("A", 2, 1, w2, "F"),
	}
	got := SkuHistory(records, "A")
	if len(got) != 3 || got[0].Fabricado != 1 || got[1].Fabricado != 2 || got[2].Fabricado != 3 {
		t.Fatalf("unexpected history %+v", got)
	}
}

func TestAvailableValuesAndDates(t *testing.T) {
	t.Parallel()

	records := []model.ProductionRecord{
		rec("B", 1, 1, w2, "F2"),
		rec("A", 1, 1, w1, "F1"),
		rec("A", 1, 1, w3, "F1"),
	}
	skus := AvailableValues(records, FieldSku)
	if len(skus) != 2 || skus[0].Value != "A" || skus[0].Label != "A - desc A" {
		t.Fatalf("unexpected sku options %+v", skus)
	}
	fams := AvailableValues(records, FieldFamilia)
	if len(fams) != 2 || fams[0].Value != "F1" || fams[1].Value != "F2" {
		t.Fatalf("unexpected familia options %+v", fams)
	}

	from, to, err := AvailableDates(records, Filter{Field: FieldSku, Value: "A"})
	if err != nil || !from.Equal(w1) || !to.Equal(w3) {
		t.Fatalf("unexpected range %v %v %v", from, to, err)
	}
	if _, _, err := AvailableDates(records, Filter{Field: FieldMarca, Value: "NADA"}); !errors.Is(err, ErrNotReady) {
		t.Fatalf("want ErrNotReady got %v", err)
	}
}

func TestAvailableWeeks(t *testing.T) {
	t.Parallel()

	polvo := model.NewRecord("P", 1, 1, w3, model.TipoPolvo)
	records := []model.ProductionRecord{rec("A", 1, 1, w2, "F"), rec("B", 1, 1, w1, "F"), rec("C", 1, 1, w2, "F"), polvo}
	got := AvailableWeeks(records, model.TipoLiquido)
	if len(got) != 2 || got[0].Semana != 10 || got[1].Semana != 11 {
		t.Fatalf("unexpected weeks %+v", got)
	}
	if all := AvailableWeeks(records, ""); len(all) != 3 {
		t.Fatalf("unexpected weeks %+v", all)
	}
}
