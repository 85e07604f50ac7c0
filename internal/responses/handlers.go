package responses

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/aliuyar1234/formkit/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type SubmitRequest struct {
	Answers []SubmittedAnswer `json:"answers"`
}

// HandleSubmit handles POST /api/v1/forms/{form_id}/responses
func HandleSubmit(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseFormID(w, r)
		if !ok {
			return
		}

		var req SubmitRequest
		if !apperrors.DecodeJSON(w, r, &req) {
			return
		}

		resp, err := svc.Submit(r.Context(), formID, req.Answers)
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to submit response")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, resp)
	}
}

// HandleList handles GET /api/v1/forms/{form_id}/responses
func HandleList(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := parseFormID(w, r)
		if !ok {
			return
		}

		query := r.URL.Query()
		params := ListParams{
			Page:  queryInt(query.Get("page"), 1),
			Limit: queryInt(query.Get("limit"), DefaultLimit),
		}
		if raw := query.Get("fromDate"); raw != "" {
			from, err := parseFromDate(raw)
			if err != nil {
				apperrors.WriteBadRequest(w, r, "Invalid fromDate: use YYYY-MM-DD or RFC 3339")
				return
			}
			params.From = &from
		}

		page, err := svc.List(r.Context(), formID, auth.GetUserID(r.Context()), params)
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to list responses")
			return
		}

		qs, err := svc.questions.List(r.Context(), formID)
		if err != nil {
			apperrors.WriteServiceError(w, r, err, "Failed to list responses")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]interface{}{
			"items":     page.Items,
			"total":     page.Total,
			"page":      page.Page,
			"limit":     page.Limit,
			"questions": qs,
		})
	}
}

// queryInt returns fallback for missing or non-numeric input. Numeric values
// pass through unclamped.
func queryInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func parseFromDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseFormID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	formID, err := uuid.Parse(chi.URLParam(r, "form_id"))
	if err != nil {
		apperrors.WriteBadRequest(w, r, "Invalid form ID")
		return uuid.Nil, false
	}
	return formID, true
}
