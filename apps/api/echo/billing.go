package echoapi

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/billing"
	"github.com/darasa-tz/darasa/core/user"
)

type billingApi struct {
	svc    billing.Service
	usrSvc user.Service
}

func registerBillingAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc billing.Service, usrSvc user.Service) {
	api := billingApi{svc: svc, usrSvc: usrSvc}

	pg := g.Group("/payments")

	// navigation endpoint: resolves its own principal, guard outcomes
	// become redirects instead of JSON errors
	pg.GET("/process", api.process)

	ag := pg.Group("", jwt)
	ag.GET("/balance", api.balance)
	ag.POST("/checkout", api.checkout)
	ag.POST("/:id/settle", api.settle)
	ag.GET("", api.query, adminMiddleware(usrSvc))
}

// Handlers

func (api *billingApi) balance(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	balance, err := api.svc.Balance(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "getting balance")
	}
	return ctx.JSON(http.StatusOK, BalanceResponse{Balance: balance})
}

func (api *billingApi) checkout(ctx echo.Context) error {
	var data billing.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	pmt, err := api.svc.Checkout(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating payment")
	}
	return ctx.JSON(http.StatusCreated, CheckoutResponse{Payment: pmt, RedirectURL: checkoutURL(pmt)})
}

func (api *billingApi) settle(ctx echo.Context) error {
	var data SettleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SettleRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	status, err := billing.ParseStatus(data.Status)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	// do not leak other users' payments
	pmt, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting payment")
	}
	if pmt.UserID != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return errHttpNotFound
	}

	pmt, err = api.svc.Settle(ctx.Request().Context(), pmt.ID, status, data.TransactionRef)
	if err != nil {
		return errors.Wrap(err, "settling payment")
	}
	return ctx.JSON(http.StatusOK, pmt)
}

// process is the provider callback landing. It never returns a JSON body;
// every outcome is a redirect back into the frontend.
func (api *billingApi) process(ctx echo.Context) error {
	usr, authStatus, err := resolveNavigationAuth(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "resolving principal")
	}
	switch authStatus {
	case AuthUnauthenticated:
		return ctx.Redirect(http.StatusFound, signInURL())
	case AuthUnauthorized:
		return ctx.Redirect(http.StatusFound, paymentErrorURL("denied"))
	}

	paymentID := ctx.QueryParam("paymentId")
	if paymentID == "" {
		return ctx.Redirect(http.StatusFound, paymentErrorURL("missing-payment"))
	}

	status := billing.StatusCompleted
	if raw := ctx.QueryParam("status"); raw != "" {
		var perr error
		if status, perr = billing.ParseStatus(raw); perr != nil {
			return ctx.Redirect(http.StatusFound, paymentErrorURL("invalid-status"))
		}
	}

	pmt, err := api.svc.GetByID(ctx.Request().Context(), paymentID)
	if err != nil {
		if errors.Cause(err) == billing.ErrPaymentNotFound {
			return ctx.Redirect(http.StatusFound, paymentErrorURL("not-found"))
		}
		return errors.Wrap(err, "getting payment")
	}
	if pmt.UserID != usr.ID && !usr.IsAdmin() {
		return ctx.Redirect(http.StatusFound, paymentErrorURL("denied"))
	}

	pmt, err = api.svc.Settle(ctx.Request().Context(), pmt.ID, status, ctx.QueryParam("transactionRef"))
	if err != nil {
		switch errors.Cause(err) {
		case billing.ErrPaymentNotFound, billing.ErrPaymentConflict:
			return ctx.Redirect(http.StatusFound, paymentErrorURL("conflict"))
		}
		return errors.Wrap(err, "settling payment")
	}

	if pmt.Status == billing.StatusCompleted {
		return ctx.Redirect(http.StatusFound, frontendURL("/payments/success"))
	}
	return ctx.Redirect(http.StatusFound, frontendURL("/payments/failed"))
}

func (api *billingApi) query(ctx echo.Context) error {
	filter := new(billing.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []billing.Payment{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	pmts, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if pmts == nil {
		pmts = []billing.Payment{}
	}
	return ctx.JSON(http.StatusOK, pmts)
}

// Redirect targets

func frontendURL(p string) string {
	return strings.TrimRight(core.Conf.FrontendBaseURL, "/") + p
}

func signInURL() string { return frontendURL("/sign-in") }

func paymentErrorURL(reason string) string {
	return frontendURL("/payments/error?reason=" + url.QueryEscape(reason))
}

func checkoutURL(pmt billing.Payment) string {
	u, err := url.Parse(core.Conf.Payment.CheckoutBaseURL)
	if err != nil {
		return core.Conf.Payment.CheckoutBaseURL
	}
	q := u.Query()
	q.Set("paymentId", pmt.ID)
	q.Set("amount", strconv.Itoa(pmt.Amount))
	u.RawQuery = q.Encode()
	return u.String()
}

type (
	BalanceResponse struct {
		Balance int `json:"balance"`
	}

	CheckoutResponse struct {
		Payment     billing.Payment `json:"payment"`
		RedirectURL string          `json:"redirect_url"`
	}

	SettleRequest struct {
		Status         string `json:"status" validate:"required"`
		TransactionRef string `json:"transaction_ref" validate:"required"`
	}
)

func (sr *SettleRequest) Validate() error {
	sr.Status = core.CleanString(sr.Status, true /* lower */)
	sr.TransactionRef = core.CleanString(sr.TransactionRef)
	return core.Validate.Struct(sr)
}
