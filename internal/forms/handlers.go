package forms

import (
	"net/http"

	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/aliuyar1234/formkit/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	IsPublished bool    `json:"is_published"`
}

type UpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type StatusRequest struct {
	IsPublished *bool `json:"is_published"`
}

// HandleCreate handles POST /api/v1/forms
func HandleCreate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRequest
		if !apperrors.DecodeJSON(w, r, &req) {
			return
		}

		form, err := svc.Create(r.Context(), auth.GetUserID(r.Context()), CreateInput{
			Title:       req.Title,
			Description: req.Description,
			IsPublished: req.IsPublished,
		})
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to create form")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, form)
	}
}

// HandleList handles GET /api/v1/forms
func HandleList(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListForUser(r.Context(), auth.GetUserID(r.Context()))
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to list forms")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]interface{}{
			"forms": list,
		})
	}
}

// HandleGet handles GET /api/v1/forms/{form_id}
func HandleGet(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseFormID(w, r)
		if !ok {
			return
		}

		form, err := svc.GetPublic(r.Context(), formID, auth.GetUserID(r.Context()))
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to load form")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, form)
	}
}

// HandleGetMe handles GET /api/v1/forms/{form_id}/me
func HandleGetMe(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseFormID(w, r)
		if !ok {
			return
		}

		form, err := svc.GetWithRole(r.Context(), formID, auth.GetUserID(r.Context()))
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to load form")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, form)
	}
}

// HandleGetTerms handles GET /api/v1/forms/{form_id}/terms
func HandleGetTerms(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseFormID(w, r)
		if !ok {
			return
		}

		terms, err := svc.Terms(r.Context(), formID, auth.GetUserID(r.Context()))
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to load terms")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, terms)
	}
}

// HandleUpdate handles PUT /api/v1/forms/{form_id}
func HandleUpdate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseFormID(w, r)
		if !ok {
			return
		}

		var req UpdateRequest
		if !apperrors.DecodeJSON(w, r, &req) {
			return
		}

		form, err := svc.Update(r.Context(), formID, auth.GetUserID(r.Context()), UpdateInput{
			Title:       req.Title,
			Description: req.Description,
		})
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to update form")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, form)
	}
}

// HandleSetStatus handles PATCH /api/v1/forms/{form_id}/status
func HandleSetStatus(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseFormID(w, r)
		if !ok {
			return
		}

		var req StatusRequest
		if !apperrors.DecodeJSON(w, r, &req) {
			return
		}

		form, err := svc.SetPublished(r.Context(), formID, auth.GetUserID(r.Context()), req.IsPublished)
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to update form status")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, form)
	}
}

// HandleDelete handles DELETE /api/v1/forms/{form_id}
func HandleDelete(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseFormID(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), formID, auth.GetUserID(r.Context())); err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to delete form")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func parseFormID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	formID, err := uuid.Parse(chi.URLParam(r, "form_id"))
	if err != nil {
		apperrors.WriteBadRequest(w, r, "Invalid form ID")
		return uuid.Nil, false
	}
	return formID, true
}
