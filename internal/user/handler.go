package user

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kentalbores/IntProg-sub001/internal/auth"
	"github.com/kentalbores/IntProg-sub001/internal/user/entity"
	"github.com/kentalbores/IntProg-sub001/pkg/utilities"
)

// TokenIssuer signs access tokens for authenticated users; *auth.TokenService satisfies it.
type TokenIssuer interface {
	Issue(userID int64, username string) (string, error)
	TTL() time.Duration
}

// Handler exposes HTTP endpoints for user operations.
type Handler struct {
	svc    *UserService
	tokens TokenIssuer
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, tokens TokenIssuer, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, logger: logger}
}

// SignupRequest request body for signup endpoint.
type SignupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

// SignupResponse response body containing new user id.
type SignupResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := utilities.DecodeJSON(w, r, &req); err != nil {
		h.logger.Debugw("invalid signup payload", "err", err)
		utilities.WriteMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}
	u, err := h.svc.SignupUser(r.Context(), SignupInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest):
			utilities.WriteMessage(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUserExists):
			utilities.WriteMessage(w, http.StatusConflict, "username or email already registered")
		default:
			h.logger.Warnw("signup failed", "err", err)
			utilities.WriteMessage(w, http.StatusInternalServerError, "signup failed")
		}
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, SignupResponse{ID: u.ID, Username: u.Username})
}

// LoginRequest login payload.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResponse carries the access token and the public user view.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *entity.User `json:"user"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utilities.DecodeJSON(w, r, &req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		utilities.WriteMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}
	u, err := h.svc.AuthenticatePassword(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.logger.Debugw("login failed", "err", err)
		if errors.Is(err, ErrBadCredentials) {
			utilities.WriteMessage(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		utilities.WriteMessage(w, http.StatusInternalServerError, "login failed")
		return
	}
	token, err := h.tokens.Issue(u.ID, u.Username)
	if err != nil {
		h.logger.Errorw("issue access token", "err", err)
		utilities.WriteMessage(w, http.StatusInternalServerError, "login failed")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokens.TTL().Seconds()),
		User:        u,
	})
}

// RoleUpdateResponse is the success body of POST /role.
type RoleUpdateResponse struct {
	Message  string         `json:"message"`
	Username string         `json:"username"`
	Role     entity.RoleSet `json:"role"`
	Warnings []string       `json:"warnings,omitempty"`
}

// UpdateRole handles POST /role.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req RoleUpdateRequest
	if err := utilities.DecodeJSON(w, r, &req); err != nil {
		h.logger.Debugw("invalid role payload", "err", err)
		utilities.WriteMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}
	// an authenticated caller may only change its own roles
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok && claims.Username != req.Username {
		h.logger.Warnw("role update for another user rejected", "caller", claims.Username, "username", req.Username)
		utilities.WriteMessage(w, http.StatusForbidden, "cannot change the roles of another user")
		return
	}
	res, err := h.svc.UpdateRole(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest):
			utilities.WriteMessage(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUserNotFound):
			utilities.WriteMessage(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Errorw("role update failed", "username", req.Username, "err", err)
			utilities.WriteMessage(w, http.StatusInternalServerError, "failed to update role")
		}
		return
	}
	utilities.WriteJSON(w, http.StatusOK, RoleUpdateResponse{
		Message:  "Role updated successfully",
		Username: res.Username,
		Role:     res.Roles,
		Warnings: res.Warnings,
	})
}

// Get handles GET /users/{username}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest):
			utilities.WriteMessage(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUserNotFound):
			utilities.WriteMessage(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Errorw("user lookup failed", "err", err)
			utilities.WriteMessage(w, http.StatusInternalServerError, "failed to load user")
		}
		return
	}
	utilities.WriteJSON(w, http.StatusOK, u)
}
