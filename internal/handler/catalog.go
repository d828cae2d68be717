package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/catalog"
)

// Root returns the tenant banner.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	banner := h.engine.Tenant().Banner()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("message")
		e.Str(banner)
		e.ObjEnd()
	})
}

// IDOrName resolves a product by id or name and returns its identity.
func (h *Handler) IDOrName(w http.ResponseWriter, r *http.Request) {
	ref, err := h.productRef(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.engine.FindProduct(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(p.InternalID)
		e.FieldStart(h.idField)
		e.Str(p.ExternalID)
		e.FieldStart("name")
		e.Str(p.Name)
		e.ObjEnd()
	})
}

// GetPrice returns the unit price of a product.
func (h *Handler) GetPrice(w http.ResponseWriter, r *http.Request) {
	ref, err := h.productRef(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	priced, err := h.engine.Price(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart(h.idField)
		e.Str(priced.Product.ExternalID)
		e.FieldStart("name")
		e.Str(priced.Product.Name)
		e.FieldStart("unit_price")
		money(e, priced.UnitPrice)
		e.ObjEnd()
	})
}

// StockByID returns a stock level for the product with the given internal id.
func (h *Handler) StockByID(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, r, errors.Wrap(catalog.ErrInvalidRequest, "id is required"))
		return
	}
	ref, err := catalog.ResolveRef(id, "", "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.engine.Stock(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Int(n)
	})
}
