package httpapi

import (
	"net/http"

	"github.com/oggyb/matchmaking-core/internal/auth"
	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/logger"
	pb "github.com/oggyb/matchmaking-core/internal/rpc/swipev1"
	"github.com/oggyb/matchmaking-core/internal/service/swipe"
)

func userID(r *http.Request) string {
	id, _ := auth.FromContext(r.Context())
	return id.UserID
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	se := svcErr.From(err)
	if se.Kind == svcErr.KindInternal || se.Kind == svcErr.KindPersistence {
		logger.FromContext(r.Context(), h.log).Error(op+" failed", "err", err)
	}
	writeError(w, err)
}

func (h *handlers) swipe(w http.ResponseWriter, r *http.Request) {
	var req pb.SwipeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.engine.Swipe(r.Context(), userID(r), req.TargetUserID, req.Action)
	if err != nil {
		h.fail(w, r, "swipe", err)
		return
	}
	writeJSON(w, http.StatusOK, swipe.ToSwipeResponse(res))
}

func (h *handlers) undo(w http.ResponseWriter, r *http.Request) {
	var req pb.UndoSwipeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.engine.Undo(r.Context(), userID(r), req.TargetUserID)
	if err != nil {
		h.fail(w, r, "undo", err)
		return
	}
	writeJSON(w, http.StatusOK, swipe.ToUndoResponse(res))
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.Stats(r.Context(), userID(r))
	if err != nil {
		h.fail(w, r, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, swipe.ToStats(s))
}

func (h *handlers) instantMatch(w http.ResponseWriter, r *http.Request) {
	var req pb.InstantMatchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.engine.InstantMatch(r.Context(), userID(r), req.TargetUserID)
	if err != nil {
		h.fail(w, r, "instant match", err)
		return
	}
	writeJSON(w, http.StatusCreated, pb.InstantMatchResponse{MatchID: res.Match.ID, LikeRecorded: res.LikeRecorded})
}

func (h *handlers) useHighlight(w http.ResponseWriter, r *http.Request) {
	res, err := h.engine.UseHighlight(r.Context(), userID(r))
	if err != nil {
		h.fail(w, r, "use highlight", err)
		return
	}
	writeJSON(w, http.StatusOK, pb.UseHighlightResponse{HighlightsRemaining: res.HighlightsRemaining, UsedToday: res.UsedToday})
}

func (h *handlers) fulfillPurchase(w http.ResponseWriter, r *http.Request) {
	var req pb.FulfillPurchaseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.engine.FulfillPurchase(r.Context(), swipe.ToPurchase(&req))
	if err != nil {
		h.fail(w, r, "fulfill purchase", err)
		return
	}
	writeJSON(w, http.StatusOK, pb.FulfillPurchaseResponse{Applied: res.Applied, Duplicate: res.Duplicate})
}

func (h *handlers) listLikedYou(w http.ResponseWriter, r *http.Request) {
	token, limit, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	likers, next, err := h.engine.ListLikedYou(r.Context(), userID(r), token, limit)
	if err != nil {
		h.fail(w, r, "list liked you", err)
		return
	}
	writeJSON(w, http.StatusOK, swipe.ToLikers(likers, next))
}

func (h *handlers) listPendingLikers(w http.ResponseWriter, r *http.Request) {
	token, limit, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	likers, next, err := h.engine.ListPendingLikers(r.Context(), userID(r), token, limit)
	if err != nil {
		h.fail(w, r, "list pending likers", err)
		return
	}
	writeJSON(w, http.StatusOK, swipe.ToLikers(likers, next))
}

func (h *handlers) countLikedYou(w http.ResponseWriter, r *http.Request) {
	n, err := h.engine.CountLikedYou(r.Context(), userID(r))
	if err != nil {
		h.fail(w, r, "count liked you", err)
		return
	}
	writeJSON(w, http.StatusOK, pb.CountLikedYouResponse{Count: n})
}

func (h *handlers) listMatches(w http.ResponseWriter, r *http.Request) {
	token, limit, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	uid := userID(r)
	matches, next, err := h.engine.ListMatches(r.Context(), uid, token, limit)
	if err != nil {
		h.fail(w, r, "list matches", err)
		return
	}
	writeJSON(w, http.StatusOK, swipe.ToMatches(uid, matches, next))
}
