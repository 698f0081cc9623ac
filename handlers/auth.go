package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"crm-server/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Identity is the authenticated principal every request runs as. OrgID
// is the tenant partition key; all queries are scoped by it.
type Identity struct {
	UserID int64
	OrgID  int64
	Role   string
}

// AuthStrategy resolves the identity for a request. Which strategy is
// active is a deployment decision (AUTH_MODE), not per-request logic.
type AuthStrategy interface {
	Authenticate(c *gin.Context) (*Identity, error)
}

// NoAuthStrategy is the development strategy: every request runs as a
// fixed admin identity in org 1. It exists so "auth disabled" is an
// explicit, swappable choice instead of bypass logic in handlers.
type NoAuthStrategy struct {
	Identity Identity
}

func (s *NoAuthStrategy) Authenticate(c *gin.Context) (*Identity, error) {
	identity := s.Identity
	return &identity, nil
}

// JWTStrategy validates HS256 bearer tokens issued by Login.
type JWTStrategy struct {
	Secret []byte
}

// Claims represents the JWT claims
type Claims struct {
	UserID int64  `json:"user_id"`
	OrgID  int64  `json:"org_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (s *JWTStrategy) Authenticate(c *gin.Context) (*Identity, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errors.New("authorization header required")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, errors.New("invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return &Identity{UserID: claims.UserID, OrgID: claims.OrgID, Role: claims.Role}, nil
}

// NewAuthStrategy picks the strategy for the configured mode.
func NewAuthStrategy(mode, secret string) AuthStrategy {
	if mode == "jwt" {
		return &JWTStrategy{Secret: []byte(secret)}
	}
	return &NoAuthStrategy{Identity: Identity{UserID: 1, OrgID: 1, Role: "admin"}}
}

// AuthMiddleware resolves the request identity via the given strategy
// and stores it in the gin context.
func AuthMiddleware(strategy AuthStrategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := strategy.Authenticate(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set("user_id", identity.UserID)
		c.Set("org_id", identity.OrgID)
		c.Set("role", identity.Role)
		c.Next()
	}
}

// Login authenticates by email/password and issues a JWT. Only useful
// when AUTH_MODE=jwt; in dev mode no client needs a token.
func Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var userID, userOrgID int64
	var fullName, passwordHash, role string
	var isActive bool
	query := `SELECT id, org_id, full_name, password_hash, role, is_active FROM users WHERE email = ?`
	err := DB.QueryRow(query, req.Email).Scan(&userID, &userOrgID, &fullName, &passwordHash, &role, &isActive)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !isActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is disabled"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := generateJWT(userID, userOrgID, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":        userID,
			"org_id":    userOrgID,
			"email":     req.Email,
			"full_name": fullName,
			"role":      role,
		},
	})
}

// generateJWT signs a token valid for 15 days.
func generateJWT(userID, userOrgID int64, role string) (string, error) {
	claims := &Claims{
		UserID: userID,
		OrgID:  userOrgID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}
