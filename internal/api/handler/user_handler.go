package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jnfpayroll/auth-api/internal/core/domain"
	"github.com/jnfpayroll/auth-api/internal/core/ports"
)

// UserHandler serves the admin user directory.
type UserHandler struct {
	store ports.CredentialStore
	log   zerolog.Logger
}

func NewUserHandler(store ports.CredentialStore, log zerolog.Logger) *UserHandler {
	return &UserHandler{store: store, log: log}
}

// List returns the public view of every user.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.ListUsersResponse
// @Failure      401  {object}  ports.ErrorResponse
// @Failure      403  {object}  ports.ErrorResponse
// @Failure      500  {object}  ports.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	users, err := h.store.List(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}

	h.log.Debug().Str("requested_by", claims.Username).Int("count", len(out)).Msg("user list served")
	return render(c, "list_users", ports.Response{
		Status: http.StatusOK,
		Body: ports.ListUsersResponse{
			Users:     out,
			Count:     len(out),
			Timestamp: time.Now().UTC(),
		},
	})
}
