package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classtab/classtab/internal/obs"
)

type Controller struct {
	log *zap.Logger
	uc  *Usecase
}

func NewController(uc *Usecase, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{log: log, uc: uc}
}

// Routes mounts the public authentication endpoints.
func (c *Controller) Routes(r chi.Router) {
	r.Post("/login", c.login)
	r.Get("/token", c.renew)
	r.Get("/get-bot-token/{secret}", c.botToken)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID  uuid.UUID `json:"userid"`
	Expires int64     `json:"expires"`
}

type renewResponse struct {
	Expires int64 `json:"expires"`
}

func (c *Controller) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	rec, pair, err := c.uc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, "incorrect email or password", http.StatusForbidden)
			return
		}
		c.log.Error("login", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	obs.WithTrace(r.Context(), c.log).Info("auth.login", zap.String("uid", rec.ID.String()))

	w.Header().Set("Token", pair.Access)
	w.Header().Set("Refresh-Token", pair.Refresh)
	writeJSON(w, http.StatusOK, loginResponse{UserID: rec.ID, Expires: pair.AccessExpires})
}

func (c *Controller) renew(w http.ResponseWriter, r *http.Request) {
	raw, err := bearer(r)
	if err != nil {
		WriteAuthError(w, err)
		return
	}

	access, exp, err := c.uc.Renew(r.Context(), raw)
	if err != nil {
		if !IsAuthKind(err) {
			c.log.Error("renew", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		WriteAuthError(w, err)
		return
	}

	w.Header().Set("Token", access)
	writeJSON(w, http.StatusOK, renewResponse{Expires: exp})
}

func (c *Controller) botToken(w http.ResponseWriter, r *http.Request) {
	tok, err := c.uc.BotToken(chi.URLParam(r, "secret"))
	if err != nil {
		// A wrong secret gets the same response as a missing route.
		http.NotFound(w, r)
		return
	}

	obs.WithTrace(r.Context(), c.log).Info("auth.bot_token_issued")

	w.Header().Set("Token", tok)
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
