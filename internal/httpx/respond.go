package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/garmenttrack/go-order-tracker/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// respondErr maps the typed error taxonomy onto status codes and the
// success/message envelope. Internal detail is exposed only outside
// production.
func respondErr(w http.ResponseWriter, log *zap.Logger, production bool, err error) {
	var (
		ve *orders.ValidationError
		nf *orders.NotFoundError
		ce *orders.ConflictError
		ie *orders.InternalError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": ve.Error(),
		})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"message": nf.Error(),
		})
	case errors.As(err, &ce):
		writeJSON(w, conflictCode(ce), map[string]any{
			"success": false,
			"message": ce.Error(),
		})
	case errors.As(err, &ie):
		log.Error("internal error", zap.String("op", ie.Op), zap.Error(ie.Err))
		body := map[string]any{
			"success": false,
			"message": "internal server error",
		}
		if !production {
			body["error"] = ie.Error()
		}
		writeJSON(w, http.StatusInternalServerError, body)
	default:
		log.Error("unexpected error", zap.Error(err))
		body := map[string]any{
			"success": false,
			"message": "internal server error",
		}
		if !production {
			body["error"] = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, body)
	}
}

// conflictCode keeps the create path's wire behavior: stock and cancellation
// guards answered 400 in the original API, transition conflicts are 409.
func conflictCode(ce *orders.ConflictError) int {
	switch ce.Reason {
	case orders.ReasonInsufficientStock, orders.ReasonNotCancellable:
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}
