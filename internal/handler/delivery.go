package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/delivery"
)

// DeliveryStatus classifies the pincode query parameter.
func (h *Handler) DeliveryStatus(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("pincode"))
	if code == "" {
		writeError(w, r, errors.Wrap(errBadParam, "pincode is required"))
		return
	}
	res, err := h.engine.CheckDelivery(r.Context(), code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeDelivery(e, res, false)
	})
}

// ProductDeliveryStatus classifies the registered postal code of a product.
func (h *Handler) ProductDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	ref, err := h.productRef(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.engine.CheckDeliveryForProduct(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeDelivery(e, res, true)
	})
}

func encodeDelivery(e *jx.Encoder, res delivery.Result, withCode bool) {
	e.ObjStart()
	e.FieldStart("message")
	e.Str(res.Message())
	e.FieldStart("status_code")
	e.Int(int(res.Status))
	e.FieldStart("lead_time_days")
	e.Int(res.LeadTimeDays)
	if withCode {
		e.FieldStart("pincode")
		e.Str(res.PostalCode)
	}
	e.ObjEnd()
}
