package orders

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/responses"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/validators"
	internalorders "github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/orders"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/pagination"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/types"
)

// MaxBodyBytes caps an order submission body.
const MaxBodyBytes = 1 << 20

const (
	orderCreatedMessage   = "Order processed successfully"
	submitUnavailableText = "orders service unavailable"
)

// submitOrderRequest mirrors the till payload. cartItems stays raw so the
// normalizer owns every structural check.
type submitOrderRequest struct {
	CartItems json.RawMessage  `json:"cartItems"`
	Price     *decimal.Decimal `json:"price"`
	CashierID *int64           `json:"cashier_id"`
}

// Submit places an order from the till cart.
func Submit(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, submitUnavailableText))
			return
		}

		input, err := decodeSubmit(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := svc.SubmitOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusCreated, types.OrderCreatedResponse{
			Message: orderCreatedMessage,
			OrderID: orderID,
		})
	}
}

func decodeSubmit(r *http.Request) (internalorders.SubmitOrderInput, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return internalorders.SubmitOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeInvalidCart, err, "read order body")
	}
	if len(body) > MaxBodyBytes {
		return internalorders.SubmitOrderInput{}, pkgerrors.New(pkgerrors.CodeInvalidCart, "order body too large")
	}

	var req submitOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return internalorders.SubmitOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeInvalidCart, err, "malformed order body").
			WithDetails(map[string]any{"body": "must be a JSON object"})
	}

	cart, err := internalorders.DecodeCart(req.CartItems)
	if err != nil {
		return internalorders.SubmitOrderInput{}, err
	}
	if req.CashierID != nil && *req.CashierID <= 0 {
		return internalorders.SubmitOrderInput{}, pkgerrors.New(pkgerrors.CodeInvalidCart, "cashier_id must be positive").
			WithDetails(map[string]any{"field": "cashier_id"})
	}

	return internalorders.SubmitOrderInput{
		Cart:       cart,
		TotalPrice: req.Price,
		CashierID:  req.CashierID,
	}, nil
}

// List returns order history newest first.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, submitUnavailableText))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		list, err := svc.ListOrders(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Detail returns one order with its instances and component ids.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, submitUnavailableText))
			return
		}

		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
