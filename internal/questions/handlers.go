package questions

import (
	"net/http"

	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/aliuyar1234/formkit/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type QuestionRequest struct {
	Type     string   `json:"type"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Order    *int     `json:"order"`
	Options  []string `json:"options"`
}

func (req QuestionRequest) raw() RawInput {
	return RawInput{
		Type:     req.Type,
		Label:    req.Label,
		Required: req.Required,
		Order:    req.Order,
		Options:  req.Options,
	}
}

type ReorderRequest struct {
	QuestionIDs []uuid.UUID `json:"question_ids"`
}

// HandleList handles GET /api/v1/forms/{form_id}/questions
func HandleList(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseUUIDParam(w, r, "form_id", "Invalid form ID")
		if !ok {
			return
		}

		list, err := svc.List(r.Context(), formID, auth.GetUserID(r.Context()))
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to list questions")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]interface{}{
			"questions": list,
		})
	}
}

// HandleCreate handles POST /api/v1/forms/{form_id}/questions
func HandleCreate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseUUIDParam(w, r, "form_id", "Invalid form ID")
		if !ok {
			return
		}

		var req QuestionRequest
		if !apperrors.DecodeJSON(w, r, &req) {
			return
		}

		q, err := svc.Create(r.Context(), formID, auth.GetUserID(r.Context()), req.raw())
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to create question")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, q)
	}
}

// HandleUpdate handles PUT /api/v1/forms/{form_id}/questions/{question_id}
func HandleUpdate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseUUIDParam(w, r, "form_id", "Invalid form ID")
		if !ok {
			return
		}
		questionID, ok := parseUUIDParam(w, r, "question_id", "Invalid question ID")
		if !ok {
			return
		}

		var req QuestionRequest
		if !apperrors.DecodeJSON(w, r, &req) {
			return
		}

		q, err := svc.Update(r.Context(), formID, questionID, auth.GetUserID(r.Context()), req.raw())
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to update question")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, q)
	}
}

// HandleDelete handles DELETE /api/v1/forms/{form_id}/questions/{question_id}
func HandleDelete(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseUUIDParam(w, r, "form_id", "Invalid form ID")
		if !ok {
			return
		}
		questionID, ok := parseUUIDParam(w, r, "question_id", "Invalid question ID")
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), formID, questionID, auth.GetUserID(r.Context())); err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to delete question")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]bool{"deleted": true})
	}
}

// HandleReorder handles PUT /api/v1/forms/{form_id}/questions/order
func HandleReorder(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseUUIDParam(w, r, "form_id", "Invalid form ID")
		if !ok {
			return
		}

		var req ReorderRequest
		if !apperrors.DecodeJSON(w, r, &req) {
			return
		}

		list, err := svc.Reorder(r.Context(), formID, auth.GetUserID(r.Context()), req.QuestionIDs)
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to reorder questions")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]interface{}{
			"questions": list,
		})
	}
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		apperrors.WriteBadRequest(w, r, message)
		return uuid.Nil, false
	}
	return id, true
}
