package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "dompet/internal/errors"
	"dompet/internal/models"
	"dompet/internal/services"
	"dompet/internal/stats"
)

const testAccountID = "0190a6b2-2222-7000-8000-000000000002"

// --- mock account service ---

type mockAccountService struct {
	createAccountFn   func(userID string, in services.AccountInput) (*models.Account, error)
	getUserAccountsFn func(userID string) (*services.AccountList, error)
	getAccountByIDFn  func(userID, accountID string) (*stats.AccountBalance, error)
	updateAccountFn   func(userID, accountID string, in services.AccountUpdate) (*models.Account, error)
	deleteAccountFn   func(userID, accountID string) error
}

func (m *mockAccountService) CreateAccount(_ context.Context, userID string, in services.AccountInput) (*models.Account, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(userID, in)
	}
	return &models.Account{Base: models.Base{ID: testAccountID}, UserID: userID, Name: in.Name, Type: in.Type}, nil
}

func (m *mockAccountService) GetUserAccounts(_ context.Context, userID string) (*services.AccountList, error) {
	if m.getUserAccountsFn != nil {
		return m.getUserAccountsFn(userID)
	}
	return &services.AccountList{Accounts: []stats.AccountBalance{}}, nil
}

func (m *mockAccountService) GetAccountByID(_ context.Context, userID, accountID string) (*stats.AccountBalance, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(userID, accountID)
	}
	return &stats.AccountBalance{Account: models.Account{Base: models.Base{ID: accountID}}}, nil
}

func (m *mockAccountService) UpdateAccount(_ context.Context, userID, accountID string, in services.AccountUpdate) (*models.Account, error) {
	if m.updateAccountFn != nil {
		return m.updateAccountFn(userID, accountID, in)
	}
	return &models.Account{Base: models.Base{ID: accountID}}, nil
}

func (m *mockAccountService) DeleteAccount(_ context.Context, userID, accountID string) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(userID, accountID)
	}
	return nil
}

var _ services.AccountServicer = (*mockAccountService)(nil)

// --- mock import service ---

type mockImportService struct {
	importFn func(userID, accountID string, body []byte) (*services.ImportResult, error)
}

func (m *mockImportService) ImportStatement(_ context.Context, userID, accountID string, r io.Reader) (*services.ImportResult, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if m.importFn != nil {
		return m.importFn(userID, accountID, body)
	}
	return &services.ImportResult{}, nil
}

var _ services.ImportServicer = (*mockImportService)(nil)

func setupAccountRouter(handler *AccountHandler) *gin.Engine {
	r := newTestRouter()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/accounts", handler.CreateAccount)
	auth.GET("/accounts", handler.GetUserAccounts)
	auth.GET("/accounts/:id", handler.GetAccountByID)
	auth.PUT("/accounts/:id", handler.UpdateAccount)
	auth.DELETE("/accounts/:id", handler.DeleteAccount)
	auth.GET("/accounts/:id/transactions", handler.GetAccountTransactions)
	auth.POST("/accounts/:id/import", handler.ImportStatement)
	return r
}

func newAccountHandler(acctSvc *mockAccountService, importSvc *mockImportService) *AccountHandler {
	return NewAccountHandler(acctSvc, &mockTransactionService{}, importSvc, &mockAuditService{})
}

func TestAccountHandler_CreateAccount(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.AccountInput
		acctSvc := &mockAccountService{
			createAccountFn: func(userID string, in services.AccountInput) (*models.Account, error) {
				got = in
				return &models.Account{Base: models.Base{ID: testAccountID}, UserID: userID, Name: in.Name, Type: in.Type, InitialBalance: in.InitialBalance}, nil
			},
		}
		r := setupAccountRouter(newAccountHandler(acctSvc, &mockImportService{}))

		rec := doRequest(r, "POST", "/accounts", `{"name":"BCA","type":"bank","initial_balance":-5000}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.InitialBalance != -5000 || got.Type != models.AccountTypeBank {
			t.Errorf("unexpected input %+v", got)
		}
		acct := parseJSON(t, rec)["account"].(map[string]interface{})
		if acct["name"] != "BCA" {
			t.Errorf("expected BCA, got %v", acct["name"])
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		r := setupAccountRouter(newAccountHandler(&mockAccountService{}, &mockImportService{}))

		rec := doRequest(r, "POST", "/accounts", `{"type":"cash"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		r := setupAccountRouter(newAccountHandler(&mockAccountService{}, &mockImportService{}))

		rec := doRequest(r, "POST", "/accounts", `{"name":"Stocks","type":"investment"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAccountHandler_GetUserAccounts(t *testing.T) {
	acctSvc := &mockAccountService{
		getUserAccountsFn: func(_ string) (*services.AccountList, error) {
			return &services.AccountList{
				Accounts: []stats.AccountBalance{
					{Account: models.Account{Base: models.Base{ID: testAccountID}, Name: "BCA"}, Balance: 550000},
				},
				TotalBalance: 550000,
			}, nil
		},
	}
	r := setupAccountRouter(newAccountHandler(acctSvc, &mockImportService{}))

	rec := doRequest(r, "GET", "/accounts", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := parseJSON(t, rec)
	if result["total_balance"] != float64(550000) {
		t.Errorf("expected total_balance 550000, got %v", result["total_balance"])
	}
	accounts := result["accounts"].([]interface{})
	first := accounts[0].(map[string]interface{})
	if first["balance"] != float64(550000) || first["name"] != "BCA" {
		t.Errorf("expected flattened account with balance, got %v", first)
	}
}

func TestAccountHandler_GetAccountByID(t *testing.T) {
	t.Run("returns 400 on malformed id", func(t *testing.T) {
		r := setupAccountRouter(newAccountHandler(&mockAccountService{}, &mockImportService{}))

		rec := doRequest(r, "GET", "/accounts/42", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		acctSvc := &mockAccountService{
			getAccountByIDFn: func(_, _ string) (*stats.AccountBalance, error) {
				return nil, apperrors.ErrAccountNotFound
			},
		}
		r := setupAccountRouter(newAccountHandler(acctSvc, &mockImportService{}))

		rec := doRequest(r, "GET", "/accounts/"+testAccountID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_NOT_FOUND")
	})
}

func TestAccountHandler_UpdateAccount(t *testing.T) {
	var got services.AccountUpdate
	acctSvc := &mockAccountService{
		updateAccountFn: func(_, accountID string, in services.AccountUpdate) (*models.Account, error) {
			got = in
			return &models.Account{Base: models.Base{ID: accountID}, Name: *in.Name}, nil
		},
	}
	r := setupAccountRouter(newAccountHandler(acctSvc, &mockImportService{}))

	rec := doRequest(r, "PUT", "/accounts/"+testAccountID, `{"name":"Mandiri"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.Name == nil || *got.Name != "Mandiri" {
		t.Errorf("expected name to be forwarded, got %+v", got)
	}
	if got.Type != nil || got.InitialBalance != nil || got.Icon != nil {
		t.Error("omitted fields must stay nil")
	}
}

func TestAccountHandler_DeleteAccount(t *testing.T) {
	var deleted string
	acctSvc := &mockAccountService{
		deleteAccountFn: func(_, accountID string) error {
			deleted = accountID
			return nil
		},
	}
	r := setupAccountRouter(newAccountHandler(acctSvc, &mockImportService{}))

	rec := doRequest(r, "DELETE", "/accounts/"+testAccountID, "")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if deleted != testAccountID {
		t.Errorf("expected %s to be deleted, got %s", testAccountID, deleted)
	}
}

func uploadStatement(r *gin.Engine, path, field, content string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, _ := w.CreateFormFile(field, "march.ofx")
		_, _ = part.Write([]byte(content))
	}
	_ = w.Close()

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAccountHandler_ImportStatement(t *testing.T) {
	t.Run("returns 200 with summary", func(t *testing.T) {
		var gotBody string
		importSvc := &mockImportService{
			importFn: func(_, accountID string, body []byte) (*services.ImportResult, error) {
				gotBody = string(body)
				return &services.ImportResult{Imported: 3, Skipped: 1}, nil
			},
		}
		r := setupAccountRouter(newAccountHandler(&mockAccountService{}, importSvc))

		rec := uploadStatement(r, "/accounts/"+testAccountID+"/import", "file", "OFXHEADER:100")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotBody != "OFXHEADER:100" {
			t.Errorf("expected file body to reach the service, got %q", gotBody)
		}
		result := parseJSON(t, rec)
		if result["imported"] != float64(3) || result["skipped"] != float64(1) {
			t.Errorf("unexpected summary %v", result)
		}
	})

	t.Run("returns 400 without file", func(t *testing.T) {
		r := setupAccountRouter(newAccountHandler(&mockAccountService{}, &mockImportService{}))

		rec := uploadStatement(r, "/accounts/"+testAccountID+"/import", "", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on unparseable statement", func(t *testing.T) {
		importSvc := &mockImportService{
			importFn: func(_, _ string, _ []byte) (*services.ImportResult, error) {
				return nil, apperrors.ErrInvalidStatement
			},
		}
		r := setupAccountRouter(newAccountHandler(&mockAccountService{}, importSvc))

		rec := uploadStatement(r, "/accounts/"+testAccountID+"/import", "file", "garbage")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_STATEMENT")
	})
}
