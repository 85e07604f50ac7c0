package access

import (
	"net/http"

	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/aliuyar1234/formkit/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AddAccessRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

type CreateInviteRequest struct {
	Role           string `json:"role"`
	ExpiresInHours *int   `json:"expires_in_hours"`
}

type AcceptInviteRequest struct {
	Token string `json:"token"`
}

// HandleAddAccess handles POST /api/v1/forms/{form_id}/access
func HandleAddAccess(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseFormID(w, r)
		if !ok {
			return
		}

		var req AddAccessRequest
		if !apperrors.DecodeJSON(w, r, &req) {
			return
		}

		grant, err := svc.AddAccess(r.Context(), formID, auth.GetUserID(r.Context()), req.UserID, requestedRole(req.Role))
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to add access")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, grant)
	}
}

// HandleListAccess handles GET /api/v1/forms/{form_id}/access
func HandleListAccess(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseFormID(w, r)
		if !ok {
			return
		}

		grants, err := svc.ListAccess(r.Context(), formID, auth.GetUserID(r.Context()))
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to list access")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]interface{}{
			"access": grants,
		})
	}
}

// HandleRemoveAccess handles DELETE /api/v1/forms/{form_id}/access/{user_id}
func HandleRemoveAccess(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseFormID(w, r)
		if !ok {
			return
		}

		targetUserID, err := uuid.Parse(chi.URLParam(r, "user_id"))
		if err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid user ID")
			return
		}

		if err := svc.RemoveAccess(r.Context(), formID, auth.GetUserID(r.Context()), targetUserID); err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to remove access")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]bool{"removed": true})
	}
}

// HandleCreateInvite handles POST /api/v1/forms/{form_id}/invites
func HandleCreateInvite(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseFormID(w, r)
		if !ok {
			return
		}

		var req CreateInviteRequest
		if !apperrors.DecodeJSON(w, r, &req) {
			return
		}

		invite, err := svc.CreateInvite(r.Context(), formID, auth.GetUserID(r.Context()), requestedRole(req.Role), req.ExpiresInHours)
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to create invite")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, invite)
	}
}

// HandleAcceptInvite handles POST /api/v1/forms/join
func HandleAcceptInvite(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AcceptInviteRequest
		if !apperrors.DecodeJSON(w, r, &req) {
			return
		}
		if req.Token == "" {
			apperrors.WriteBadRequest(w, r, "token is required")
			return
		}

		result, err := svc.AcceptInvite(r.Context(), req.Token, auth.GetUserID(r.Context()))
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to accept invite")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, result)
	}
}

// requestedRole maps an unknown role name to RoleNone. The service rejects
// it once the caller is known to own the form.
func requestedRole(name string) Role {
	role, err := ParseRole(name)
	if err != nil {
		return RoleNone
	}
	return role
}

func parseFormID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	formID, err := uuid.Parse(chi.URLParam(r, "form_id"))
	if err != nil {
		apperrors.WriteBadRequest(w, r, "Invalid form ID")
		return uuid.Nil, false
	}
	return formID, true
}
