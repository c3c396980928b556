package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"parcel-relay/internal/domain/contract"
	"parcel-relay/internal/domain/match"
	"parcel-relay/internal/domain/parcel"
	"parcel-relay/internal/domain/relay"
	"parcel-relay/internal/domain/user"
	appErrors "parcel-relay/pkg/errors"
	"parcel-relay/pkg/utils"
)

// statusFor maps service errors to HTTP status codes. Unknown errors
// fall back to 400 so internals do not leak as 500s for caller mistakes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, parcel.ErrParcelNotFound),
		errors.Is(err, match.ErrMatchNotFound),
		errors.Is(err, relay.ErrCheckpointNotFound),
		errors.Is(err, contract.ErrContractNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, appErrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, appErrors.ErrForbidden),
		errors.Is(err, appErrors.ErrContractNotAuthorized),
		errors.Is(err, contract.ErrNoContract),
		errors.Is(err, contract.ErrContractExpired),
		errors.Is(err, relay.ErrWrongCarrier),
		errors.Is(err, relay.ErrCodeMismatch):
		return http.StatusForbidden
	case errors.Is(err, appErrors.ErrInvalidTransition),
		errors.Is(err, parcel.ErrParcelTerminal),
		errors.Is(err, match.ErrAlreadyAccepted),
		errors.Is(err, match.ErrStale),
		errors.Is(err, match.ErrNotPending),
		errors.Is(err, relay.ErrAlreadyConfirmed),
		errors.Is(err, relay.ErrNoOpenCheckpoint),
		errors.Is(err, contract.ErrAlreadySigned),
		errors.Is(err, parcel.ErrDuplicateTracking):
		return http.StatusConflict
	case errors.Is(err, appErrors.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func respondError(c *gin.Context, err error) {
	utils.ErrorResponse(c, statusFor(err), err.Error())
}

// userIDFromContext returns the authenticated user ID set by the auth middleware.
func userIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}

	id, ok := raw.(uuid.UUID)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid user ID format")
		return uuid.Nil, false
	}

	return id, true
}
