package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kentalbores/IntProg-sub001/internal/user"
	userentity "github.com/kentalbores/IntProg-sub001/internal/user/entity"
	"github.com/kentalbores/IntProg-sub001/pkg/utilities"
)

// UserLookup resolves usernames; *user.UserService satisfies it.
type UserLookup interface {
	GetUser(ctx context.Context, username string) (*userentity.User, error)
}

// Handler exposes read endpoints for provisioned profiles.
type Handler struct {
	svc    *Service
	users  UserLookup
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, users UserLookup, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, users: users, logger: logger}
}

// Organizer handles GET /users/{username}/organizer.
func (h *Handler) Organizer(w http.ResponseWriter, r *http.Request) {
	u, ok := h.resolve(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Organizer(r.Context(), u.ID)
	if err != nil {
		h.writeLookupError(w, err, "organizer profile not found")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, p)
}

// Vendor handles GET /users/{username}/vendor.
func (h *Handler) Vendor(w http.ResponseWriter, r *http.Request) {
	u, ok := h.resolve(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Vendor(r.Context(), u.ID)
	if err != nil {
		h.writeLookupError(w, err, "vendor profile not found")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) (*userentity.User, bool) {
	u, err := h.users.GetUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeLookupError(w, err, "user not found")
		return nil, false
	}
	return u, true
}

func (h *Handler) writeLookupError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, user.ErrUserNotFound), errors.Is(err, ErrProfileNotFound):
		utilities.WriteMessage(w, http.StatusNotFound, notFound)
	case errors.Is(err, user.ErrInvalidRequest):
		utilities.WriteMessage(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Errorw("profile lookup failed", "err", err)
		utilities.WriteMessage(w, http.StatusInternalServerError, "failed to load profile")
	}
}
