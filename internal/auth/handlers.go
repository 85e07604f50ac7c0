package auth

import (
	"net/http"

	"github.com/aliuyar1234/formkit/internal/apperrors"
)

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateTermsRequest struct {
	TermsText *string `json:"terms_text"`
}

// HandleRegister handles POST /api/v1/auth/register
func HandleRegister(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CredentialsRequest
		if !apperrors.DecodeJSON(w, r, &req) {
			return
		}

		session, err := svc.Register(r.Context(), req.Email, req.Password)
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to create account")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, session)
	}
}

// HandleLogin handles POST /api/v1/auth/login
func HandleLogin(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CredentialsRequest
		if !apperrors.DecodeJSON(w, r, &req) {
			return
		}

		session, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Login failed")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, session)
	}
}

// HandleMe handles GET /api/v1/auth/me
func HandleMe(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Me(r.Context(), GetUserID(r.Context()))
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to load account")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, user)
	}
}

// HandleUpdateTerms handles PUT /api/v1/auth/me/terms
func HandleUpdateTerms(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateTermsRequest
		if !apperrors.DecodeJSON(w, r, &req) {
			return
		}

		user, err := svc.UpdateTerms(r.Context(), GetUserID(r.Context()), req.TermsText)
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to update terms")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, user)
	}
}
