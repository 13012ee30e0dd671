package services

import (
	"errors"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spectrum-bridge/spectrum_api/dto"
	"github.com/spectrum-bridge/spectrum_api/shared"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	context.DefaultService

	sqlSvc *PostgresService
	jwtSvc *JWTService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	return nil
}

func (svc *AuthService) Register(req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	emailFree, err := svc.sqlSvc.IsEmailAvailable(req.Email)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to check email availability")
	}
	if !emailFree {
		return nil, shared.NewConflictError(nil, "email is already registered")
	}

	usernameFree, err := svc.sqlSvc.IsUsernameAvailable(req.Username)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to check username availability")
	}
	if !usernameFree {
		return nil, shared.NewConflictError(nil, "username is already taken")
	}

	user, err := svc.sqlSvc.CreateUser(req)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to create user")
	}

	log.WithFields(log.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")

	return &dto.RegisterResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}, nil
}

func (svc *AuthService) Login(req dto.LoginRequest, clientIP string) (*dto.LoginResponse, error) {
	user, err := svc.sqlSvc.GetUserByEmailOrUsername(req.EmailOrUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewUnauthorizedError(nil, "invalid credentials")
		}
		return nil, shared.NewInternalError(err, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError(nil, "invalid credentials")
	}

	pair, err := svc.jwtSvc.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to issue token")
	}

	var lastLogin time.Time
	if user.LastLoginAt != nil {
		lastLogin = *user.LastLoginAt
	}
	if err := svc.sqlSvc.UpdateLastLogin(user.ID, clientIP); err != nil {
		log.WithField("user_id", user.ID).Warn("Failed to record last login")
	}

	return &dto.LoginResponse{
		AccessToken: pair.AccessToken,
		ExpiresIn:   pair.ExpiresIn,
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		LastLoginAt: lastLogin,
	}, nil
}

// RequiredAuth validates the bearer token and stores the caller's identity
// in the request locals.
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.ResponseUnauthorized(c, err.Error())
		}

		claims, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.ResponseUnauthorized(c, "Invalid JWT token")
		}

		if claims.UserID == "" {
			return shared.ResponseUnauthorized(c, "Invalid user ID in token")
		}

		c.Locals(shared.UserID, claims.UserID)
		c.Locals(shared.UserRole, claims.Role)
		return c.Next()
	}
}

// RequireRole allows only callers whose token carries one of the roles.
// Must run after RequiredAuth.
func (svc *AuthService) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(shared.UserRole).(string)
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return shared.ResponseForbidden(c, "insufficient permissions")
	}
}
