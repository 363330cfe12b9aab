package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-auth-onboarding/internal/domain"
	"github.com/go-auth-onboarding/internal/pkg/validate"
	"github.com/go-auth-onboarding/internal/transport/http/middleware"
	"github.com/rs/zerolog/hlog"
)

const internalErrorMessage = "Internal server error"

// failure maps a domain sentinel to the status and fixed message a handler
// answers with.
type failure struct {
	target  error
	status  int
	message string
}

var (
	forbidden    = failure{domain.ErrForbidden, http.StatusForbidden, "Forbidden"}
	unauthorized = failure{domain.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"}
)

// writeFailure answers with the first failure err matches. Bad requests echo
// the validation text, which never contains stored data. Anything else is
// logged with the request and reported as a generic 500.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, failures ...failure) {
	for _, f := range failures {
		if errors.Is(err, f.target) {
			writeError(w, f.status, f.message)
			return
		}
	}
	if errors.Is(err, domain.ErrBadRequest) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	writeError(w, http.StatusInternalServerError, internalErrorMessage)
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			return err
		}
		return fmt.Errorf("invalid request body: %w", domain.ErrBadRequest)
	}
	return validate.Struct(dst)
}

// identity returns the authenticated caller's id.
func identity(r *http.Request) (string, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.IdentityID == "" {
		return "", domain.ErrUnauthorized
	}
	return claims.IdentityID, nil
}
