// Package handler exposes tenant engines over HTTP.
//
// Every tenant is mounted under /<tenant> with the same set of routes. The
// client-facing product id parameter and response field is named after the
// tenant, for example amazon_id.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/delivery"
	"github.com/xenking/storefront/internal/domain/pricing"
	"github.com/xenking/storefront/internal/domain/store"
)

var (
	// errBadParam marks malformed query parameters.
	errBadParam         = errors.New("invalid parameter")
	errRouteNotFound    = errors.New("route not found")
	errMethodNotAllowed = errors.New("method not allowed")
)

// Handler serves the routes of one tenant.
type Handler struct {
	engine  *store.Engine
	idField string
}

// NewHandler creates a Handler for engine.
func NewHandler(engine *store.Engine) *Handler {
	return &Handler{
		engine:  engine,
		idField: engine.Tenant().ExternalIDField,
	}
}

// Mount registers every engine under /<tenant name> on r. Unknown routes
// and methods on r answer with the JSON error body.
func Mount(r chi.Router, engines ...*store.Engine) {
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)
	for _, e := range engines {
		r.Route("/"+e.Tenant().Name, NewHandler(e).Routes)
	}
}

// Routes registers the tenant routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Use(h.annotateLogger)
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)
	r.Get("/", h.Root)
	r.Get("/id_or_name", h.IDOrName)
	r.Post("/id_or_name", h.IDOrName)
	r.Post("/get_price", h.GetPrice)
	r.Post("/stock_by_id", h.StockByID)
	r.Post("/get_discount", h.GetDiscount)
	r.Post("/delivery_status", h.DeliveryStatus)
	r.Post("/product_delivery_status", h.ProductDeliveryStatus)
}

// NotFound answers requests that match no route.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, errRouteNotFound)
}

// MethodNotAllowed answers requests to a known path with an unsupported method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, errMethodNotAllowed)
}

func (h *Handler) annotateLogger(next http.Handler) http.Handler {
	name := h.engine.Tenant().Name
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := zctx.With(r.Context(), zap.String("tenant", name))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// productRef builds a product reference from the id, tenant id and name
// query parameters. "book_name" is accepted as an alias of "name".
func (h *Handler) productRef(r *http.Request) (catalog.Ref, error) {
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		name = q.Get("book_name")
	}
	return catalog.ResolveRef(q.Get("id"), q.Get(h.idField), name)
}

// intParam parses a required integer query parameter.
func intParam(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, errors.Wrapf(errBadParam, "%s is required", key)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(errBadParam, "%s %q is not an integer", key, raw)
	}
	return v, nil
}

// writeError maps err onto an HTTP status and writes the JSON error body.
// Unexpected errors are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, errBadParam),
		errors.Is(err, catalog.ErrInvalidRequest),
		errors.Is(err, store.ErrInvalidQuantity):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, catalog.ErrNotFound):
		status, message = http.StatusNotFound, catalog.ErrNotFound.Error()
	case errors.Is(err, pricing.ErrPriceNotFound):
		status, message = http.StatusNotFound, pricing.ErrPriceNotFound.Error()
	case errors.Is(err, delivery.ErrNoPostalCode):
		status, message = http.StatusNotFound, delivery.ErrNoPostalCode.Error()
	case errors.Is(err, errRouteNotFound):
		status, message = http.StatusNotFound, errRouteNotFound.Error()
	case errors.Is(err, errMethodNotAllowed):
		status, message = http.StatusMethodNotAllowed, errMethodNotAllowed.Error()
	case errors.Is(err, pricing.ErrNoPricesAvailable):
		message = pricing.ErrNoPricesAvailable.Error()
	}

	lg := zctx.From(r.Context())
	if status >= http.StatusInternalServerError {
		lg.Error("Request failed", zap.Error(err))
	} else {
		lg.Debug("Request rejected", zap.Int("status", status), zap.Error(err))
	}

	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// money encodes an amount rounded to two decimal places.
func money(e *jx.Encoder, d decimal.Decimal) {
	e.Raw([]byte(d.StringFixed(2)))
}

// percent encodes a percentage without trailing zeros.
func percent(e *jx.Encoder, d decimal.Decimal) {
	e.Raw([]byte(d.Round(2).String()))
}
