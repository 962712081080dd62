package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/billing"
	"github.com/darasa-tz/darasa/core/user"
	emailsvc "github.com/darasa-tz/darasa/services/email"
)

func createPendingPayment(t *testing.T, usr user.User, amount int) billing.Payment {
	t.Helper()
	pmt, err := billingRepo.CreatePayment(context.Background(), billing.Payment{
		UserID: usr.ID,
		Amount: amount,
		Status: billing.StatusPending,
	})
	require.NoError(t, err)
	return pmt
}

func getBalance(t *testing.T, token string) int {
	t.Helper()
	req, rec := newAuthRequest(http.MethodGet, "/api/payments/balance", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Balance int `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res.Balance
}

func Test_billingApi_balance(t *testing.T) {
	resetDB(t)
	usr := createUser(t, "Neema", "neema@test.tz", "+255712345678", []string{user.RoleStudent}, true)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/payments/balance")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("defaults to zero", func(t *testing.T) {
		assert.Equal(t, 0, getBalance(t, getToken(t, usr)))
	})
}

func Test_billingApi_checkout(t *testing.T) {
	resetDB(t)
	usr := createUser(t, "Neema", "neema@test.tz", "+255712345678", []string{user.RoleStudent}, true)
	token := getToken(t, usr)

	t.Run("creates a pending payment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/payments/checkout", token,
			marchallObj(t, map[string]int{"amount": 50}))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var res struct {
			Payment     billing.Payment `json:"payment"`
			RedirectURL string          `json:"redirect_url"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, billing.StatusPending, res.Payment.Status)
		assert.Equal(t, usr.ID, res.Payment.UserID)
		assert.Equal(t, 50, res.Payment.Amount)
		assert.Contains(t, res.RedirectURL, "paymentId="+res.Payment.ID)
		assert.True(t, strings.HasPrefix(res.RedirectURL, core.Conf.Payment.CheckoutBaseURL))
	})

	t.Run("amount required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/payments/checkout", token,
			marchallObj(t, map[string]int{}))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_billingApi_settle(t *testing.T) {
	resetDB(t)
	usr := createUser(t, "Neema", "neema@test.tz", "+255712345678", []string{user.RoleStudent}, true)
	other := createUser(t, "Juma", "juma@test.tz", "+255712345679", []string{user.RoleStudent}, true)
	token := getToken(t, usr)
	pmt := createPendingPayment(t, usr, 50)

	settleBody := marchallObj(t, map[string]string{"status": "completed", "transaction_ref": "FLK-001"})
	path := "/api/payments/" + pmt.ID + "/settle"

	t.Run("settles and credits once", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, token, settleBody)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var settled billing.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settled))
		assert.Equal(t, billing.StatusCompleted, settled.Status)
		assert.Equal(t, "FLK-001", settled.TransactionRef)
		assert.Equal(t, 50, getBalance(t, token))
	})

	t.Run("replay is a no-op, never a double credit", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, token, settleBody)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 50, getBalance(t, token))
		assert.Len(t, emailsvc.SentMessages, 1) // one receipt only
	})

	t.Run("conflicting terminal status", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, token,
			marchallObj(t, map[string]string{"status": "failed", "transaction_ref": "FLK-001"}))
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, 50, getBalance(t, token))
	})

	t.Run("unknown payment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/payments/2da9bb3c-0c84-4e10-8f3d-000000000000/settle", token, settleBody)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("someone else's payment reads as not found", func(t *testing.T) {
		otherPmt := createPendingPayment(t, other, 30)
		req, rec := newAuthRequest(http.MethodPost, "/api/payments/"+otherPmt.ID+"/settle", token, settleBody)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("non-terminal status rejected", func(t *testing.T) {
		pmt2 := createPendingPayment(t, usr, 10)
		req, rec := newAuthRequest(http.MethodPost, "/api/payments/"+pmt2.ID+"/settle", token,
			marchallObj(t, map[string]string{"status": "pending", "transaction_ref": "FLK-002"}))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_billingApi_process(t *testing.T) {
	resetDB(t)
	usr := createUser(t, "Neema", "neema@test.tz", "+255712345678", []string{user.RoleStudent}, true)
	token := getToken(t, usr)
	pmt := createPendingPayment(t, usr, 50)

	processPath := func(paymentID, status, token string) string {
		v := make(url.Values)
		if paymentID != "" {
			v.Add("paymentId", paymentID)
		}
		if status != "" {
			v.Add("status", status)
		}
		if token != "" {
			v.Add("token", token)
		}
		v.Add("transactionRef", "FLK-009")
		return "/api/payments/process?" + v.Encode()
	}

	redirectsTo := func(t *testing.T, rec interface {
		Header() http.Header
	}, want string) {
		t.Helper()
		assert.Equal(t, want, rec.Header().Get("Location"))
	}

	t.Run("unauthenticated redirects to sign-in", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, processPath(pmt.ID, "", ""))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
		redirectsTo(t, rec, core.Conf.FrontendBaseURL+"/sign-in")
	})

	t.Run("missing paymentId redirects to error", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, processPath("", "", token))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
		redirectsTo(t, rec, core.Conf.FrontendBaseURL+"/payments/error?reason=missing-payment")
	})

	t.Run("settles and redirects to success", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, processPath(pmt.ID, "completed", token))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
		redirectsTo(t, rec, core.Conf.FrontendBaseURL+"/payments/success")
		assert.Equal(t, 50, getBalance(t, getToken(t, usr)))
	})

	t.Run("reloading the callback URL does not double-credit", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, processPath(pmt.ID, "completed", token))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
		redirectsTo(t, rec, core.Conf.FrontendBaseURL+"/payments/success")
		assert.Equal(t, 50, getBalance(t, getToken(t, usr)))
	})

	t.Run("conflicting status redirects to error", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, processPath(pmt.ID, "failed", token))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
		redirectsTo(t, rec, core.Conf.FrontendBaseURL+"/payments/error?reason=conflict")
	})

	t.Run("failed settlement redirects to failed", func(t *testing.T) {
		pmt2 := createPendingPayment(t, usr, 20)
		req, rec := newRequest(http.MethodGet, processPath(pmt2.ID, "failed", token))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
		redirectsTo(t, rec, core.Conf.FrontendBaseURL+"/payments/failed")
		assert.Equal(t, 50, getBalance(t, getToken(t, usr))) // unchanged
	})
}

func Test_billingApi_adminPayments(t *testing.T) {
	resetDB(t)
	student := createUser(t, "Hero", "hero@test.tz", "+255712345601", []string{user.RoleStudent}, true)
	admin := createUser(t, "Admin", "admin@test.tz", "+255712345602", []string{user.RoleAdmin}, true)
	pmt := createPendingPayment(t, student, 50)

	tests := []httpTest{
		{
			name: "Auth required", path: "/api/payments",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Admin required", path: "/api/payments", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Get all", path: "/api/payments", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, pmt),
		},
		{
			name: "Filter status (none)", path: "/api/payments?status=completed", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t),
		},
		{
			name: "Filter status (found)", path: "/api/payments?status=pending", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, pmt),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
