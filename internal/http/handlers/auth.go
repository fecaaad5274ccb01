package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/invoicehub/internal/actorctx"
	"github.com/geocoder89/invoicehub/internal/config"
	"github.com/geocoder89/invoicehub/internal/domain/user"
	"github.com/geocoder89/invoicehub/internal/observability"
	"github.com/geocoder89/invoicehub/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthService interface {
	SignUp(ctx context.Context, in service.SignUpInput) (service.AuthResult, error)
	Login(ctx context.Context, email, password string) (service.AuthResult, error)
	Profile(ctx context.Context, userID string) (user.User, error)
}

type AuthHandler struct {
	svc  AuthService
	prom *observability.Prom
	now  func() time.Time
}

func NewAuthHandler(svc AuthService, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{svc: svc, prom: prom, now: time.Now}
}

type SignUpRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6,max=72,notblank"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,notblank"`
	Password string `json:"password" binding:"required,notblank"`
}

type authData struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token,omitempty"`
}

// bcrypt runs inside these, so the budget is wider than a plain lookup.
const (
	authTimeout    = 5 * time.Second
	profileTimeout = 2 * time.Second
)

// request returns the body stashed by ValidateJSON, or binds it directly
// when the handler is mounted without the validator.
func request[T any](ctx *gin.Context) (T, bool) {
	if body, ok := ValidatedBody[T](ctx); ok {
		return body, true
	}

	var body T
	if !BindJSON(ctx, &body) {
		return body, false
	}

	return body, true
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	req, ok := request[SignUpRequest](ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	res, err := h.svc.SignUp(cctx, service.SignUpInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})

	if err != nil {
		h.prom.ObserveAuth("signup", outcome(err))
		RespondServiceError(ctx, err)
		return
	}

	h.prom.ObserveAuth("signup", "success")

	ctx.JSON(http.StatusCreated, gin.H{
		"data": authData{User: NewUserResponse(res.User), Token: res.Token},
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	req, ok := request[LoginRequest](ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	res, err := h.svc.Login(cctx, req.Email, req.Password)
	if err != nil {
		h.prom.ObserveAuth("login", outcome(err))
		RespondServiceError(ctx, err)
		return
	}

	h.prom.ObserveAuth("login", "success")

	ctx.JSON(http.StatusOK, gin.H{
		"data": authData{User: NewUserResponse(res.User), Token: res.Token},
	})
}

// Profile serves both /profile and /me.
func (h *AuthHandler) Profile(ctx *gin.Context) {
	id, ok := actorctx.FromGin(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), profileTimeout)
	defer cancel()

	u, err := h.svc.Profile(cctx, id.UserID)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	RespondPrivateJSON(ctx, http.StatusOK, gin.H{
		"data": authData{User: NewUserResponse(u)},
	})
}

// Logout is a no-op: tokens are stateless and the client drops its copy.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Authentication service is up and running",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func outcome(err error) string {
	switch {
	case errors.Is(err, service.ErrConflict):
		return "conflict"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, service.ErrPasswordTooLong):
		return "invalid_input"
	default:
		return "error"
	}
}
