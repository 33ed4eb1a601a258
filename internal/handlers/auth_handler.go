package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/cabiir/FianlFitnessGym/internal/middleware"
	"github.com/cabiir/FianlFitnessGym/internal/models"
	"github.com/cabiir/FianlFitnessGym/internal/validation"
	"github.com/cabiir/FianlFitnessGym/pkg/utils"
)

type userStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateRememberMe(ctx context.Context, id int64, rememberMe bool) error
}

type AuthHandler struct {
	userRepo  userStore
	jwtSecret string
	jwtExpiry time.Duration
	log       zerolog.Logger
}

func NewAuthHandler(userRepo userStore, jwtSecret string, jwtExpiry time.Duration, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		log:       log,
	}
}

type signupRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe *bool  `json:"rememberMe"`
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := decodeJSON(c, &req); err != nil {
		return respondInvalidBody(c, err)
	}

	req.Email = normalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := validation.Struct(req); err != nil {
		if handled, respErr := respondValidation(c, err); handled {
			return respErr
		}
		return err
	}

	existing, err := h.userRepo.GetByEmail(c.Context(), req.Email)
	if err == nil && existing != nil {
		return utils.RespondFail(c, fiber.StatusBadRequest, "Email already exists")
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		h.log.Error().Err(err).Msg("signup: check email")
		return utils.RespondError(c)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		h.log.Error().Err(err).Msg("signup: hash password")
		return utils.RespondError(c)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hashed,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		RememberMe:   req.RememberMe,
	}
	if err := h.userRepo.CreateUser(c.Context(), user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return utils.RespondFail(c, fiber.StatusBadRequest, "Email already exists")
		}
		h.log.Error().Err(err).Msg("signup: create user")
		return utils.RespondError(c)
	}

	return h.respondWithToken(c, fiber.StatusCreated, user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := decodeJSON(c, &req); err != nil {
		return respondInvalidBody(c, err)
	}

	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		if handled, respErr := respondValidation(c, err); handled {
			return respErr
		}
		return err
	}

	user, err := h.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return utils.RespondFail(c, fiber.StatusUnauthorized, "Incorrect email or password")
		}
		h.log.Error().Err(err).Msg("login: lookup user")
		return utils.RespondError(c)
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return utils.RespondFail(c, fiber.StatusUnauthorized, "Incorrect email or password")
	}

	if req.RememberMe != nil && *req.RememberMe != user.RememberMe {
		if err := h.userRepo.UpdateRememberMe(c.Context(), user.ID, *req.RememberMe); err != nil {
			h.log.Error().Err(err).Int64("user_id", user.ID).Msg("login: update remember me")
			return utils.RespondError(c)
		}
		user.RememberMe = *req.RememberMe
	}

	return h.respondWithToken(c, fiber.StatusOK, user)
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	userIDStr, ok := c.Locals(middleware.LocalUserID).(string)
	if !ok {
		return utils.RespondFail(c, fiber.StatusUnauthorized, "Invalid token")
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return utils.RespondFail(c, fiber.StatusUnauthorized, "Invalid token")
	}

	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return utils.RespondFail(c, fiber.StatusUnauthorized, "The user belonging to this token no longer exists")
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("profile: fetch user")
		return utils.RespondError(c)
	}

	return utils.RespondOK(c, fiber.StatusOK, utils.Envelope{Data: fiber.Map{"user": user}})
}

func (h *AuthHandler) respondWithToken(c *fiber.Ctx, code int, user *models.User) error {
	token, err := utils.GenerateToken(strconv.FormatInt(user.ID, 10), h.jwtSecret, h.jwtExpiry)
	if err != nil {
		h.log.Error().Err(err).Msg("issue token")
		return utils.RespondError(c)
	}

	return utils.RespondOK(c, code, utils.Envelope{
		Token: token,
		Data:  fiber.Map{"user": user},
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
