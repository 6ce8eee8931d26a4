package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classtab/classtab/internal/obs"
	"github.com/classtab/classtab/internal/services/auth"
	"github.com/classtab/classtab/internal/token"
)

type Controller struct {
	log   *zap.Logger
	uc    *Usecase
	valid *token.Validator
}

func NewController(uc *Usecase, valid *token.Validator, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{log: log, uc: uc, valid: valid}
}

// Routes mounts signup publicly and the own-user routes behind the access
// middleware. Bot tokens carry the reserved identity, which has no user
// record, so every route here is human-only.
func (c *Controller) Routes(r chi.Router) {
	r.Post("/users", c.create)
	r.Route("/users/me", func(r chi.Router) {
		r.Use(auth.Authenticator(c.valid, auth.HumanOnly))
		r.Get("/", c.me)
		r.Put("/", c.updateMe)
		r.Delete("/", c.deleteMe)
		r.Patch("/password", c.changePassword)
	})
}

type postUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Description string `json:"description"`
}

type userResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Description string    `json:"description"`
}

type postUserResponse struct {
	userResponse
	Expires int64 `json:"expires"`
}

type putUserRequest struct {
	Email       string `json:"email"`
	Description string `json:"description"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (c *Controller) create(w http.ResponseWriter, r *http.Request) {
	var req postUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	rec, pair, err := c.uc.SignUp(r.Context(), req.Email, req.Password, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			http.Error(w, "email already exists", http.StatusConflict)
		case errors.Is(err, ErrWeakPassword):
			http.Error(w, "password too weak", http.StatusBadRequest)
		default:
			c.log.Error("signup", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	obs.WithTrace(r.Context(), c.log).Info("users.created", zap.String("uid", rec.ID.String()))

	w.Header().Set("Token", pair.Access)
	w.Header().Set("Refresh-Token", pair.Refresh)
	writeJSON(w, http.StatusCreated, postUserResponse{
		userResponse: userResponse{ID: rec.ID, Email: rec.Email, Description: rec.Description},
		Expires:      pair.AccessExpires,
	})
}

func (c *Controller) me(w http.ResponseWriter, r *http.Request) {
	cl, _ := auth.ClaimsFromCtx(r.Context())

	rec, err := c.uc.Get(r.Context(), cl.UID)
	if err != nil {
		c.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: rec.ID, Email: rec.Email, Description: rec.Description})
}

func (c *Controller) updateMe(w http.ResponseWriter, r *http.Request) {
	cl, _ := auth.ClaimsFromCtx(r.Context())

	var req putUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	rec, err := c.uc.Update(r.Context(), cl.UID, req.Email, req.Description)
	if err != nil {
		c.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: rec.ID, Email: rec.Email, Description: rec.Description})
}

func (c *Controller) deleteMe(w http.ResponseWriter, r *http.Request) {
	cl, _ := auth.ClaimsFromCtx(r.Context())

	if err := c.uc.Delete(r.Context(), cl.UID); err != nil {
		c.writeErr(w, err)
		return
	}

	obs.WithTrace(r.Context(), c.log).Info("users.deleted", zap.String("uid", cl.UID.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) changePassword(w http.ResponseWriter, r *http.Request) {
	cl, _ := auth.ClaimsFromCtx(r.Context())

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	refresh, err := c.uc.ChangePassword(r.Context(), cl.UID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrWrongPassword):
			http.Error(w, "wrong password", http.StatusForbidden)
		case errors.Is(err, ErrWeakPassword):
			http.Error(w, "password too weak", http.StatusBadRequest)
		default:
			c.writeErr(w, err)
		}
		return
	}

	obs.WithTrace(r.Context(), c.log).Info("users.password_changed", zap.String("uid", cl.UID.String()))

	w.Header().Set("Refresh-Token", refresh)
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (c *Controller) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrEmailExists):
		http.Error(w, "email already exists", http.StatusConflict)
	default:
		c.log.Error("users", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
