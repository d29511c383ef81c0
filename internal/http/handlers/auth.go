package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lifeboard/internal/config"
	"lifeboard/internal/domain/user"
	"lifeboard/internal/http/middlewares"
	"lifeboard/internal/jobs"
	"lifeboard/internal/security"
)

type UsersStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, u user.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
}

type TokenIssuer interface {
	GenerateAccessToken(userID, role string) (string, error)
}

type JobsEnqueuer interface {
	Enqueue(ctx context.Context, j jobs.Job) error
}

type AuthHandler struct {
	users UsersStore
	jwt   TokenIssuer
	queue JobsEnqueuer
	log   *slog.Logger
}

func NewAuthHandler(users UsersStore, jwt TokenIssuer, queue JobsEnqueuer, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwt,
		queue: queue,
		log:   log,
	}
}

const resetTokenTTL = time.Hour

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req user.SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		h.log.Error("password hash failed", "err", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	// default role for new users
	role := req.Role
	if role == "" {
		role = "user"
	}

	now := time.Now().UTC()

	err = h.users.Create(cctx, user.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "User already exists")
			return
		}

		h.log.Error("signup failed", "err", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondUnauthorized(ctx, "Invalid email or password")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "Invalid email or password")
		return
	}

	token, err := h.jwt.GenerateAccessToken(foundUser.ID, foundUser.Role)

	if err != nil {
		h.log.Error("token generation failed", "err", err)
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"loginUser": gin.H{
			"userId":   foundUser.ID,
			"role":     foundUser.Role,
			"username": foundUser.Username,
			"email":    foundUser.Email,
		},
	})
}

// ForgotPassword stores a fresh reset token on the user row and hands the
// notification off to the jobs worker. The token is echoed back because no
// real mail provider is attached.
func (h *AuthHandler) ForgotPassword(ctx *gin.Context) {
	var req user.ForgotPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		h.log.Error("forgot-password lookup failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	resetToken, err := security.NewResetToken()
	if err != nil {
		h.log.Error("reset token generation failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	expiresAt := time.Now().UTC().Add(resetTokenTTL)

	if err := h.users.SetResetToken(cctx, foundUser.ID, resetToken, expiresAt); err != nil {
		h.log.Error("reset token store failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	h.enqueueResetEmail(cctx, ctx, foundUser, resetToken, expiresAt)

	ctx.JSON(http.StatusOK, gin.H{
		"message":    "Password reset link sent",
		"resetToken": resetToken,
	})
}

// enqueueResetEmail is best-effort: the token is already persisted, so a
// queue hiccup must not fail the request.
func (h *AuthHandler) enqueueResetEmail(cctx context.Context, ctx *gin.Context, u user.User, resetToken string, expiresAt time.Time) {
	reqID, _ := ctx.Get(middlewares.CtxRequestID)
	reqIDStr, _ := reqID.(string)

	payload, err := jobs.EncodePayload(jobs.JobPasswordResetEmail, jobs.PasswordResetEmailPayload{
		UserID:     u.ID,
		Email:      u.Email,
		Username:   u.Username,
		ResetToken: resetToken,
		ExpiresAt:  expiresAt,
		RequestID:  reqIDStr,
	})
	if err != nil {
		h.log.Error("reset email payload encode failed", "err", err)
		return
	}

	j, err := jobs.NewJob(jobs.JobPasswordResetEmail, payload, time.Now().UTC())
	if err != nil {
		h.log.Error("reset email job build failed", "err", err)
		return
	}

	if err := h.queue.Enqueue(cctx, j); err != nil {
		h.log.Error("reset email enqueue failed", "job_id", j.ID, "err", err)
	}
}

func (h *AuthHandler) ChangePassword(ctx *gin.Context) {
	var req user.ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	if req.NewPassword == req.Password {
		RespondBadRequest(ctx, "New password must be different from current password", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByID(cctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		h.log.Error("change-password lookup failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	if err := security.CheckPassword(foundUser.PasswordHash, req.Password); err != nil {
		RespondUnauthorized(ctx, "Incorrect current password")
		return
	}

	hash, err := security.HashPassword(req.NewPassword)
	if err != nil {
		h.log.Error("password hash failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	if err := h.users.UpdatePassword(cctx, foundUser.ID, hash); err != nil {
		h.log.Error("password update failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	token, err := h.jwt.GenerateAccessToken(foundUser.ID, foundUser.Role)
	if err != nil {
		h.log.Error("token generation failed", "err", err)
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Password updated successfully",
		"token":   token,
	})
}
