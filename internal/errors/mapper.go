// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// Domain is reported in google.rpc.ErrorInfo details.
const Domain = "matchmaking"

// Kind is the coarse class of a failure. Clients branch on Kind through the
// HTTP status or gRPC code, and on Reason for the precise cause.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindRateLimited
	KindConflict
	KindInsufficientEntitlement
	KindNotFound
	KindInvalidArgument
	KindPersistence
)

// Error is a classified service error with a stable machine-readable reason.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Err)
	}
	return e.Reason + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Reason, so wrapped copies still match
// the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Reason == t.Reason
}

// UpgradeRequired tells the client to show an upgrade prompt instead of a retry.
func (e *Error) UpgradeRequired() bool {
	switch e.Reason {
	case ReasonDailyLimitReached, ReasonNoSuperlikesAvailable, ReasonNoHighlightsAvailable,
		ReasonUndoNotAllowed, ReasonPremiumRequired:
		return true
	}
	return false
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// Stable reasons.
const (
	ReasonUnauthorized          = "UNAUTHORIZED"
	ReasonForbidden             = "FORBIDDEN"
	ReasonDailyLimitReached     = "DAILY_LIMIT_REACHED"
	ReasonTooFast               = "TOO_FAST"
	ReasonAlreadySwiped         = "ALREADY_SWIPED"
	ReasonMatchAlreadyExists    = "MATCH_ALREADY_EXISTS"
	ReasonNoSuperlikesAvailable = "NO_SUPERLIKES_AVAILABLE"
	ReasonNoHighlightsAvailable = "NO_HIGHLIGHTS_AVAILABLE"
	ReasonUndoNotAllowed        = "UNDO_NOT_ALLOWED"
	ReasonPremiumRequired       = "PREMIUM_REQUIRED"
	ReasonVerificationRequired  = "VERIFICATION_REQUIRED"
	ReasonSwipeNotFound         = "SWIPE_NOT_FOUND"
	ReasonProfileNotFound       = "PROFILE_NOT_FOUND"
	ReasonNoReciprocalLike      = "NO_RECIPROCAL_LIKE"
	ReasonInvalidArgument       = "INVALID_ARGUMENT"
	ReasonSelfSwipe             = "SELF_SWIPE"
	ReasonInvalidAction         = "INVALID_ACTION"
	ReasonPersistence           = "PERSISTENCE_ERROR"
	ReasonInternal              = "INTERNAL"
)

var (
	ErrUnauthorized          = &Error{Kind: KindUnauthorized, Reason: ReasonUnauthorized, Message: "authentication required"}
	ErrForbidden             = &Error{Kind: KindUnauthorized, Reason: ReasonForbidden, Message: "caller is not allowed to perform this operation"}
	ErrDailyLimitReached     = &Error{Kind: KindRateLimited, Reason: ReasonDailyLimitReached, Message: "daily swipe limit reached"}
	ErrTooFast               = &Error{Kind: KindRateLimited, Reason: ReasonTooFast, Message: "swiping too fast, slow down"}
	ErrAlreadySwiped         = &Error{Kind: KindConflict, Reason: ReasonAlreadySwiped, Message: "already swiped on this user"}
	ErrMatchAlreadyExists    = &Error{Kind: KindConflict, Reason: ReasonMatchAlreadyExists, Message: "match already exists"}
	ErrNoSuperlikesAvailable = &Error{Kind: KindInsufficientEntitlement, Reason: ReasonNoSuperlikesAvailable, Message: "no superlikes available"}
	ErrNoHighlightsAvailable = &Error{Kind: KindInsufficientEntitlement, Reason: ReasonNoHighlightsAvailable, Message: "no message highlights available"}
	ErrUndoNotAllowed        = &Error{Kind: KindInsufficientEntitlement, Reason: ReasonUndoNotAllowed, Message: "plan does not include undo"}
	ErrPremiumRequired       = &Error{Kind: KindInsufficientEntitlement, Reason: ReasonPremiumRequired, Message: "a higher plan is required"}
	ErrVerificationRequired  = &Error{Kind: KindInsufficientEntitlement, Reason: ReasonVerificationRequired, Message: "profile verification required"}
	ErrSwipeNotFound         = &Error{Kind: KindNotFound, Reason: ReasonSwipeNotFound, Message: "no swipe found"}
	ErrProfileNotFound       = &Error{Kind: KindNotFound, Reason: ReasonProfileNotFound, Message: "profile not found"}
	ErrNoReciprocalLike      = &Error{Kind: KindNotFound, Reason: ReasonNoReciprocalLike, Message: "target has not liked you"}
	ErrSelfSwipe             = &Error{Kind: KindInvalidArgument, Reason: ReasonSelfSwipe, Message: "cannot swipe on yourself"}
	ErrInvalidAction         = &Error{Kind: KindInvalidArgument, Reason: ReasonInvalidAction, Message: "action must be like, pass or superlike"}
)

// Persistence wraps a storage failure. Context errors pass through so the
// transports can report cancellation and deadlines as such.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: KindPersistence, Reason: ReasonPersistence, Message: "storage failure", Err: err}
}

// Invalid builds a validation error with a custom message.
func Invalid(msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Reason: ReasonInvalidArgument, Message: msg}
}

// From classifies any error as an *Error.
func From(err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Reason: "NOT_FOUND", Message: "record not found", Err: err}
	default:
		return &Error{Kind: KindInternal, Reason: ReasonInternal, Message: "internal error", Err: err}
	}
}

// Map converts service/repo/infra errors into gRPC status errors.
// Classified errors carry an ErrorInfo detail with the reason and the
// upgrade_required flag.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")
	}

	se := From(err)
	msg := se.Message
	if se.Kind == KindInternal || se.Kind == KindPersistence {
		msg = "internal error"
	}
	st := status.New(grpcCode(se), msg)
	withInfo, derr := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   se.Reason,
		Domain:   Domain,
		Metadata: map[string]string{"upgrade_required": strconv.FormatBool(se.UpgradeRequired())},
	})
	if derr != nil {
		return st.Err()
	}
	return withInfo.Err()
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return Map(Invalid(msg))
}

// ReasonOf extracts the ErrorInfo reason from a gRPC status error.
func ReasonOf(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}

// HTTPStatus is the status code for err on the HTTP API.
func HTTPStatus(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	se := From(err)
	switch se.Kind {
	case KindUnauthorized:
		if se.Reason == ReasonForbidden {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindConflict:
		if se.Reason == ReasonMatchAlreadyExists {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case KindInsufficientEntitlement:
		if se.Reason == ReasonNoSuperlikesAvailable || se.Reason == ReasonNoHighlightsAvailable {
			return http.StatusBadRequest
		}
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func grpcCode(se *Error) codes.Code {
	switch se.Kind {
	case KindUnauthorized:
		if se.Reason == ReasonForbidden {
			return codes.PermissionDenied
		}
		return codes.Unauthenticated
	case KindRateLimited:
		return codes.ResourceExhausted
	case KindConflict:
		return codes.AlreadyExists
	case KindInsufficientEntitlement:
		return codes.PermissionDenied
	case KindNotFound:
		return codes.NotFound
	case KindInvalidArgument:
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}
