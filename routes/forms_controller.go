package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/metrics"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/routes/middlewares"
	"github.com/mbolis/quick-forms/store"
)

const (
	msgFormNotFound      = "Form not found"
	msgFormNotFoundOwned = "Form not found or not owned by user"
	msgInvalidFormData   = "Invalid form data"
)

type createFormResponse struct {
	Message string `json:"message"`
	FormID  int64  `json:"formId"`
}

type updateFormResponse struct {
	Message string                   `json:"message"`
	Skipped []model.RejectedQuestion `json:"skipped"`
}

func formId(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := store.ListForms(r.Context(), app.DB, middlewares.UserID(r.Context()))
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_forms", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := model.FormInput{}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", msgInvalidFormData)
			return
		}

		id, err := store.CreateForm(r.Context(), app.DB, middlewares.UserID(r.Context()), form)
		switch {
		case errors.Is(err, store.ErrInvalidForm):
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "create_form.validate", "%s", err)
			return
		case err != nil:
			httpx.LogInternalError(w, r, "db.insert_form", err)
			return
		}
		metrics.FormsCreated.Inc()

		httpx.JSON(w, r, http.StatusCreated, createFormResponse{
			Message: "Form created successfully",
			FormID:  id,
		})
	}
}

func GetOwnedForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := formId(r)
		if !ok {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		form, err := store.GetOwnedForm(r.Context(), app.DB, id, middlewares.UserID(r.Context()))
		switch {
		case errors.Is(err, store.ErrNotFound):
			httpx.LogNotFound(w, r, "get_form", id, msgFormNotFound)
			return
		case err != nil:
			httpx.LogInternalError(w, r, "db.get_form", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"form": form,
		})
	}
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := formId(r)
		if !ok {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		form := model.FormInput{}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", msgInvalidFormData)
			return
		}

		skipped, err := store.UpdateForm(r.Context(), app.DB, id, middlewares.UserID(r.Context()), form)
		switch {
		case errors.Is(err, store.ErrInvalidForm):
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "update_form.validate", msgInvalidFormData)
			return
		case errors.Is(err, store.ErrNotFound):
			httpx.LogNotFound(w, r, "update_form", id, msgFormNotFoundOwned)
			return
		case err != nil:
			httpx.LogInternalError(w, r, "db.update_form", err)
			return
		}
		metrics.FormsUpdated.Inc()
		metrics.QuestionsSkipped.Add(float64(len(skipped)))

		if err = app.Cache.Invalidate(r.Context(), id); err != nil {
			log.Warnf("cache.invalidate %d: %s", id, err)
		}

		if skipped == nil {
			skipped = []model.RejectedQuestion{}
		}
		render.JSON(w, r, updateFormResponse{
			Message: "Form updated successfully",
			Skipped: skipped,
		})
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := formId(r)
		if !ok {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		err := store.DeleteForm(r.Context(), app.DB, id, middlewares.UserID(r.Context()))
		switch {
		case errors.Is(err, store.ErrNotFound):
			httpx.LogNotFound(w, r, "delete_form", id, msgFormNotFoundOwned)
			return
		case err != nil:
			httpx.LogInternalError(w, r, "db.delete_form", err)
			return
		}
		metrics.FormsDeleted.Inc()

		if err = app.Cache.Invalidate(r.Context(), id); err != nil {
			log.Warnf("cache.invalidate %d: %s", id, err)
		}

		httpx.Message(w, r, http.StatusOK, "Form deleted successfully")
	}
}

func GetFormSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := formId(r)
		if !ok {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		submissions, err := store.ListSubmissions(r.Context(), app.DB, id, middlewares.UserID(r.Context()))
		switch {
		case errors.Is(err, store.ErrNotFound):
			httpx.LogNotFound(w, r, "get_submissions", id, msgFormNotFound)
			return
		case err != nil:
			httpx.LogInternalError(w, r, "db.get_submissions", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"submissions": submissions,
		})
	}
}
