package httpx

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/mbolis/quick-forms/log"
	"github.com/sirupsen/logrus"
)

type MessageResponse struct {
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func Message(w http.ResponseWriter, r *http.Request, status int, msg string) {
	JSON(w, r, status, MessageResponse{Message: msg})
}

// Will log an error, and send an HTTP response with status 500 and a generic message
func LogInternalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	logger(r).Errorf("%s: %s", code, err)
	Message(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// Will log a debug message, and send an HTTP response with status 404 and the given message
func LogNotFound(w http.ResponseWriter, r *http.Request, code string, id any, msg string) {
	logger(r).Debugf("%s: not found (%v)", code, id)
	Message(w, r, http.StatusNotFound, msg)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string) {
	logger(r).Log(logrus.Level(level), code)
	Message(w, r, status, http.StatusText(status))
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	logger(r).Log(logrus.Level(level), code+": "+errMsg)
	Message(w, r, status, errMsg)
}

func logger(r *http.Request) *logrus.Entry {
	return log.WithFields(log.Fields{"request_id": middleware.GetReqID(r.Context())})
}
