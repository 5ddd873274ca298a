package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "dompet/internal/errors"
	"dompet/internal/models"
	"dompet/internal/pagination"
	"dompet/internal/services"
	"dompet/internal/stats"
)

// --- mock budget service ---

type mockBudgetService struct {
	getBudgetsFn func(userID string, rng stats.DateRange) ([]stats.BudgetItem, error)
	setLimitFn   func(userID, categoryID string, limit *int64) (*models.Category, error)
	getAlertsFn  func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetAlert], error)
}

func (m *mockBudgetService) GetBudgets(_ context.Context, userID string, rng stats.DateRange) ([]stats.BudgetItem, error) {
	if m.getBudgetsFn != nil {
		return m.getBudgetsFn(userID, rng)
	}
	return []stats.BudgetItem{}, nil
}

func (m *mockBudgetService) SetBudgetLimit(_ context.Context, userID, categoryID string, limit *int64) (*models.Category, error) {
	if m.setLimitFn != nil {
		return m.setLimitFn(userID, categoryID, limit)
	}
	return &models.Category{Base: models.Base{ID: categoryID}, BudgetLimit: limit}, nil
}

func (m *mockBudgetService) GetAlerts(_ context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetAlert], error) {
	if m.getAlertsFn != nil {
		return m.getAlertsFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.BudgetAlert{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockBudgetService) CheckCategory(_ context.Context, _, _ string, _ time.Time) (*models.BudgetAlert, error) {
	return nil, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(svc *mockBudgetService, audit *mockAuditService) *gin.Engine {
	handler := NewBudgetHandler(svc, audit)
	handler.now = func() time.Time { return fixedNow }

	r := newTestRouter()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/budgets", handler.GetBudgets)
	auth.GET("/budgets/alerts", handler.GetAlerts)
	auth.PUT("/budgets/:category_id", handler.SetBudgetLimit)
	return r
}

func TestBudgetHandler_GetBudgets(t *testing.T) {
	t.Run("returns range and items", func(t *testing.T) {
		var got stats.DateRange
		svc := &mockBudgetService{
			getBudgetsFn: func(_ string, rng stats.DateRange) ([]stats.BudgetItem, error) {
				got = rng
				return []stats.BudgetItem{{
					Category:   models.Category{Base: models.Base{ID: testCategoryID}, Name: "Food"},
					Limit:      100000,
					Spent:      120000,
					Remaining:  -20000,
					Percentage: 120,
					Status:     models.BudgetStatusOver,
				}}, nil
			},
		}
		r := setupBudgetRouter(svc, &mockAuditService{})

		rec := doRequest(r, "GET", "/budgets", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.From.Format(stats.DayLayout) != "2024-03-01" {
			t.Errorf("expected current month, got %s", got)
		}
		result := parseJSON(t, rec)
		budgets := result["budgets"].([]interface{})
		item := budgets[0].(map[string]interface{})
		if item["status"] != "over" || item["remaining"] != float64(-20000) {
			t.Errorf("unexpected budget item %v", item)
		}
		if result["range"].(map[string]interface{})["to"] != "2024-03-15" {
			t.Errorf("unexpected range %v", result["range"])
		}
	})

	t.Run("returns 400 on unknown period", func(t *testing.T) {
		r := setupBudgetRouter(&mockBudgetService{}, &mockAuditService{})

		rec := doRequest(r, "GET", "/budgets?period=decade", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_SetBudgetLimit(t *testing.T) {
	t.Run("sets a limit", func(t *testing.T) {
		var got *int64
		svc := &mockBudgetService{
			setLimitFn: func(_, categoryID string, limit *int64) (*models.Category, error) {
				got = limit
				return &models.Category{Base: models.Base{ID: categoryID}, BudgetLimit: limit}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupBudgetRouter(svc, audit)

		rec := doRequest(r, "PUT", "/budgets/"+testCategoryID, `{"limit":250000}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got == nil || *got != 250000 {
			t.Errorf("expected limit 250000, got %v", got)
		}
		if len(audit.actions) != 1 || audit.actions[0] != "SET_BUDGET_LIMIT" {
			t.Errorf("expected SET_BUDGET_LIMIT audit, got %v", audit.actions)
		}
	})

	t.Run("null clears the limit", func(t *testing.T) {
		called := false
		svc := &mockBudgetService{
			setLimitFn: func(_, categoryID string, limit *int64) (*models.Category, error) {
				called = true
				if limit != nil {
					t.Errorf("expected nil limit, got %d", *limit)
				}
				return &models.Category{Base: models.Base{ID: categoryID}}, nil
			},
		}
		r := setupBudgetRouter(svc, &mockAuditService{})

		rec := doRequest(r, "PUT", "/budgets/"+testCategoryID, `{"limit":null}`)

		if rec.Code != http.StatusOK || !called {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	invalid := []struct {
		name string
		body string
	}{
		{"non-positive limit", `{"limit":-1}`},
		{"zero limit", `{"limit":0}`},
		{"empty body", `{}`},
		{"misspelled key", `{"limt":null}`},
		{"fractional limit", `{"limit":12.5}`},
		{"string limit", `{"limit":"1000"}`},
	}
	for _, tt := range invalid {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			called := false
			svc := &mockBudgetService{
				setLimitFn: func(_, _ string, _ *int64) (*models.Category, error) {
					called = true
					return &models.Category{}, nil
				},
			}
			r := setupBudgetRouter(svc, &mockAuditService{})

			rec := doRequest(r, "PUT", "/budgets/"+testCategoryID, tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
			if called {
				t.Error("expected the limit to be left untouched")
			}
		})
	}

	t.Run("returns 400 on income category", func(t *testing.T) {
		svc := &mockBudgetService{
			setLimitFn: func(_, _ string, _ *int64) (*models.Category, error) {
				return nil, apperrors.ErrBudgetNotAllowed
			},
		}
		r := setupBudgetRouter(svc, &mockAuditService{})

		rec := doRequest(r, "PUT", "/budgets/"+testCategoryID, `{"limit":1000}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_ALLOWED")
	})
}

func TestBudgetHandler_GetAlerts(t *testing.T) {
	var gotPage pagination.PageRequest
	svc := &mockBudgetService{
		getAlertsFn: func(_ string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetAlert], error) {
			gotPage = page
			alerts := []models.BudgetAlert{
				{CategoryID: testCategoryID, Month: "2024-03", Status: models.BudgetStatusWarning, Percentage: 85},
			}
			resp := pagination.NewPageResponse(alerts, 1, 5, 1)
			return &resp, nil
		},
	}
	r := setupBudgetRouter(svc, &mockAuditService{})

	rec := doRequest(r, "GET", "/budgets/alerts?page_size=5", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotPage.PageSize != 5 {
		t.Errorf("expected page_size 5, got %d", gotPage.PageSize)
	}
	data := parseJSON(t, rec)["data"].([]interface{})
	if data[0].(map[string]interface{})["status"] != "warning" {
		t.Errorf("unexpected alert %v", data[0])
	}
}
