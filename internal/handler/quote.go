package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// GetDiscount prices a quantity of a product and applies the discount
// bracket of the resulting total.
func (h *Handler) GetDiscount(w http.ResponseWriter, r *http.Request) {
	ref, err := h.productRef(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	quantity, err := intParam(r, "quantity")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := h.engine.Quote(r.Context(), ref, quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("book_id")
		e.Int64(q.Product.InternalID)
		e.FieldStart(h.idField)
		e.Str(q.Product.ExternalID)
		e.FieldStart("quantity")
		e.Int(q.Quantity)
		e.FieldStart("unit_price")
		money(e, q.UnitPrice)
		e.FieldStart("total_price")
		money(e, q.Total)
		e.FieldStart("discount_percent")
		percent(e, q.DiscountPercent)
		e.FieldStart("reduced_amount")
		money(e, q.Reduced)
		e.FieldStart("payable_amount")
		money(e, q.Payable)
		e.ObjEnd()
	})
}
