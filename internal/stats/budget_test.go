package stats

import (
	"testing"

	"dompet/internal/models"
)

func limit(v int64) *int64 { return &v }

func budgetCategory(id, name string, l *int64) models.Category {
	return models.Category{
		Base:        models.Base{ID: id},
		Name:        name,
		Type:        models.CategoryTypeExpense,
		BudgetLimit: l,
	}
}

func TestEvaluateBudgetsOrdersByPercentage(t *testing.T) {
	categories := []models.Category{
		budgetCategory("food", "Food", limit(100000)),
		budgetCategory("fun", "Fun", limit(100000)),
	}
	spent := map[string]int64{"food": 50000, "fun": 120000}

	items := EvaluateBudgets(categories, spent)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	if items[0].Category.ID != "fun" || items[0].Spent != 120000 || items[0].Percentage != 120 {
		t.Errorf("expected fun at 120%%, got %s %d %d%%", items[0].Category.ID, items[0].Spent, items[0].Percentage)
	}
	if items[0].Status != models.BudgetStatusOver {
		t.Errorf("expected over, got %s", items[0].Status)
	}
	if items[0].Remaining != -20000 {
		t.Errorf("expected remaining -20000, got %d", items[0].Remaining)
	}

	if items[1].Category.ID != "food" || items[1].Spent != 50000 || items[1].Percentage != 50 {
		t.Errorf("expected food at 50%%, got %s %d %d%%", items[1].Category.ID, items[1].Spent, items[1].Percentage)
	}
	if items[1].Status != models.BudgetStatusNormal {
		t.Errorf("expected normal, got %s", items[1].Status)
	}
}

func TestEvaluateBudgetsTiesKeepInputOrder(t *testing.T) {
	categories := []models.Category{
		budgetCategory("a", "A", limit(1000)),
		budgetCategory("b", "B", limit(2000)),
		budgetCategory("c", "C", limit(4000)),
		budgetCategory("d", "D", limit(100)),
	}
	spent := map[string]int64{"a": 500, "b": 1000, "c": 2000, "d": 90}

	items := EvaluateBudgets(categories, spent)
	got := []string{items[0].Category.ID, items[1].Category.ID, items[2].Category.ID, items[3].Category.ID}
	want := []string{"d", "a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
	if items[0].Status != models.BudgetStatusWarning {
		t.Errorf("expected warning at 90%%, got %s", items[0].Status)
	}
}

func TestEvaluateBudgetsEdgeCases(t *testing.T) {
	categories := []models.Category{
		budgetCategory("untouched", "Untouched", limit(5000)),
		budgetCategory("nolimit", "No limit", nil),
		budgetCategory("zerolimit", "Zero limit", limit(0)),
	}
	spent := map[string]int64{"nolimit": 300, "zerolimit": 400}

	items := EvaluateBudgets(categories, spent)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for _, item := range items {
		if item.Percentage != 0 {
			t.Errorf("%s: expected 0%%, got %d%%", item.Category.ID, item.Percentage)
		}
		if item.Status != models.BudgetStatusNormal {
			t.Errorf("%s: expected normal, got %s", item.Category.ID, item.Status)
		}
	}
	if items[0].Remaining != 5000 {
		t.Errorf("expected untouched remaining 5000, got %d", items[0].Remaining)
	}
	if items[1].Spent != 300 || items[1].Limit != 0 {
		t.Errorf("expected no-limit spent 300 limit 0, got %d / %d", items[1].Spent, items[1].Limit)
	}
}

func TestEvaluateBudgetsEmpty(t *testing.T) {
	items := EvaluateBudgets(nil, nil)
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", items)
	}
}
