package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/klinik-sejahtera/clinic-portal/internal/core/ports"
)

// CashierHandler serves the billing pages: payment processing, invoices and
// the finance report.
type CashierHandler struct {
	upstream
}

func NewCashierHandler(api ports.ResourceAPI) *CashierHandler {
	return &CashierHandler{upstream{api: api}}
}

// Dashboard shows billing stats (payments today, pending totals).
//
// @Summary      Cashier dashboard data
// @Tags         cashier
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /cashier [get]
func (h *CashierHandler) Dashboard(c echo.Context) error {
	return h.list(c, "/cashier/stats/")
}

func (h *CashierHandler) ListPayments(c echo.Context) error {
	return h.list(c, "/payments/")
}

// PendingPayments lists invoices awaiting payment.
func (h *CashierHandler) PendingPayments(c echo.Context) error {
	return h.list(c, "/payments/pending/")
}

func (h *CashierHandler) GetPayment(c echo.Context) error {
	return h.list(c, fmt.Sprintf("/payments/%s/", c.Param("id")))
}

// Pay settles a pending payment with the chosen payment method.
func (h *CashierHandler) Pay(c echo.Context) error {
	return h.action(c, fmt.Sprintf("/payments/%s/pay/", c.Param("id")))
}

// Invoice returns the printable invoice for a payment.
func (h *CashierHandler) Invoice(c echo.Context) error {
	return h.list(c, fmt.Sprintf("/payments/%s/invoice/", c.Param("id")))
}

// FinanceReport returns revenue figures over the requested date range.
func (h *CashierHandler) FinanceReport(c echo.Context) error {
	return h.list(c, "/reports/finance/")
}
