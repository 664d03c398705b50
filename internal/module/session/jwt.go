package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents widget session token claims. The subject carries
// the upstream requester ID.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// JWTConfig holds session token configuration.
type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
	Issuer   string
}

// DefaultJWTConfig returns default session token configuration.
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		TokenTTL: 12 * time.Hour,
		Issuer:   "deskgate",
	}
}

// JWTManager verifies widget session tokens and mints demo tokens for
// development setups. Production tokens are minted by the host page's
// backend with the shared secret.
type JWTManager struct {
	config *JWTConfig
}

// NewJWTManager creates a new JWT manager.
func NewJWTManager(config *JWTConfig) *JWTManager {
	if config == nil {
		config = DefaultJWTConfig()
	}
	if config.Issuer == "" {
		config.Issuer = "deskgate"
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = 12 * time.Hour
	}
	return &JWTManager{config: config}
}

// Mint generates a signed session token for the identity.
func (m *JWTManager) Mint(identity Identity) (string, time.Time, error) {
	if identity.UserID == "" {
		return "", time.Time{}, ErrEmptySubject
	}

	now := time.Now()
	expiresAt := now.Add(m.config.TokenTTL)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   identity.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		Email: identity.Email,
		Name:  identity.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate verifies a session token and returns the identity it carries.
func (m *JWTManager) Validate(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.Secret), nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}
