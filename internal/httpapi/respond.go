package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/service/swipe"
)

var errInternal = &svcErr.Error{Kind: svcErr.KindInternal, Reason: svcErr.ReasonInternal, Message: "internal error"}

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code            string `json:"code"`
	Message         string `json:"message"`
	UpgradeRequired bool   `json:"upgrade_required"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders err as {"error":{"code","message","upgrade_required"}}
// with the status from svcErr.HTTPStatus. Storage details never leak.
func writeError(w http.ResponseWriter, err error) {
	se := svcErr.From(err)
	msg := se.Message
	if se.Kind == svcErr.KindInternal || se.Kind == svcErr.KindPersistence {
		msg = "internal error"
	}
	writeJSON(w, svcErr.HTTPStatus(err), errorBody{Error: errorPayload{
		Code:            se.Reason,
		Message:         msg,
		UpgradeRequired: se.UpgradeRequired(),
	}})
}

// decode reads a JSON body into dst and validates it.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return svcErr.Invalid("invalid request body")
	}
	return swipe.Validate(dst)
}

// pageParams reads ?pagination_token= and ?limit= from the query.
func pageParams(r *http.Request) (*string, int, error) {
	q := r.URL.Query()
	var token *string
	if v := q.Get("pagination_token"); v != "" {
		token = &v
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 100 {
			return nil, 0, svcErr.Invalid("limit must be between 0 and 100")
		}
		limit = n
	}
	return token, limit, nil
}
