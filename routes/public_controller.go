package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/metrics"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/store"
)

type submitResponse struct {
	Message      string `json:"message"`
	SubmissionID int64  `json:"submissionId"`
}

// PublicGetForm serves the form to respondents; it does not look at ownership.
func PublicGetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := formId(r)
		if !ok {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		form, gen, hit := app.Cache.Get(r.Context(), id)
		if hit {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
		} else {
			metrics.CacheLookups.WithLabelValues("miss").Inc()

			var err error
			form, err = store.GetForm(r.Context(), app.DB, id)
			switch {
			case errors.Is(err, store.ErrNotFound):
				httpx.LogNotFound(w, r, "get_form", id, msgFormNotFound)
				return
			case err != nil:
				httpx.LogInternalError(w, r, "db.get_form", err)
				return
			}

			if err = app.Cache.Set(r.Context(), form, gen); err != nil {
				log.Warnf("cache.set %d: %s", id, err)
			}
		}

		render.JSON(w, r, map[string]any{
			"form": form,
		})
	}
}

func SubmitForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := formId(r)
		if !ok {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		submission := model.SubmissionInput{}
		err := render.DecodeJSON(r.Body, &submission)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid submission: %s", err)
			return
		}

		responses := make(map[int64]model.AnswerValue, len(submission.Responses))
		answers := 0
		for key, value := range submission.Responses {
			questionId, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "submit_form.question_id", "Invalid question id %q", key)
				return
			}
			if _, dup := responses[questionId]; dup {
				httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "submit_form.question_id", "Duplicate question id %q", key)
				return
			}
			responses[questionId] = value
			answers += len(value.Values)
		}

		submissionId, err := store.SubmitForm(r.Context(), app.DB, id, responses)
		switch {
		case errors.Is(err, store.ErrNotFound):
			httpx.LogNotFound(w, r, "submit_form", id, msgFormNotFound)
			return
		case err != nil:
			httpx.LogInternalError(w, r, "db.insert_submission", err)
			return
		}
		metrics.Submissions.Inc()
		metrics.SubmissionAnswers.Add(float64(answers))

		httpx.JSON(w, r, http.StatusOK, submitResponse{
			Message:      "Form submitted successfully",
			SubmissionID: submissionId,
		})
	}
}
