package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/auth"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/store"
	"github.com/mbolis/quick-forms/validation"
)

const msgInvalidCredentials = "Invalid email or password"

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func Register(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := registerRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)

		if err = validation.ValidateStruct(req); err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "register.validate", "%s", err)
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			httpx.LogInternalError(w, r, "register.hash_password", err)
			return
		}

		_, err = store.CreateUser(r.Context(), app.DB, req.Name, req.Email, hash)
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "register.email_taken", "Email already registered")
			return
		case err != nil:
			httpx.LogInternalError(w, r, "db.insert_user", err)
			return
		}

		log.Infof("registered user %s", req.Email)
		httpx.Message(w, r, http.StatusCreated, "User registered successfully")
	}
}

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := loginRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid request body")
			return
		}

		user, err := store.FindUserByEmail(r.Context(), app.DB, req.Email)
		switch {
		case errors.Is(err, store.ErrNotFound):
			auth.CheckNoPassword(req.Password)
			log.Debugf("login: unknown email %s", req.Email)
			httpx.Message(w, r, http.StatusUnauthorized, msgInvalidCredentials)
			return
		case err != nil:
			httpx.LogInternalError(w, r, "db.find_user", err)
			return
		}

		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			log.Debugf("login: password mismatch for %s", req.Email)
			httpx.Message(w, r, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}

		token, err := app.Issue(user.ID)
		if err != nil {
			httpx.LogInternalError(w, r, "login.issue_token", err)
			return
		}

		httpx.JSON(w, r, http.StatusOK, loginResponse{
			Message: "Login successful",
			Token:   token,
		})
	}
}
