package service

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/assignment-helper-api/internal/models"
	appErrors "github.com/noah-isme/assignment-helper-api/pkg/errors"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

// CredentialConfig configures password hashing and token signing.
type CredentialConfig struct {
	Secret     string
	DefaultTTL time.Duration
	Issuer     string
	Cost       int
}

// TokenClaims is the payload carried by an issued access token.
type TokenClaims struct {
	Subject   string
	Role      string
	AccountID string
}

// CredentialManager hashes passwords and signs HS256 access tokens.
type CredentialManager struct {
	config CredentialConfig
	now    func() time.Time
}

// NewCredentialManager constructs a CredentialManager.
func NewCredentialManager(cfg CredentialConfig) *CredentialManager {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 15 * time.Minute
	}
	if cfg.Cost == 0 {
		cfg.Cost = bcrypt.DefaultCost
	}
	return &CredentialManager{config: cfg, now: time.Now}
}

// HashPassword returns a salted bcrypt digest of the password.
func (m *CredentialManager) HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(truncatePassword(password), m.config.Cost)
	if err != nil {
		return "", appErrors.WrapAs(err, appErrors.ErrInternal, "failed to hash password")
	}
	return string(digest), nil
}

// VerifyPassword reports whether password matches digest. Malformed digests never match.
func (m *CredentialManager) VerifyPassword(password, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), truncatePassword(password)) == nil
}

// IssueToken signs claims with the configured secret. A non-positive ttl uses the default lifetime.
func (m *CredentialManager) IssueToken(claims TokenClaims, ttl time.Duration) (string, time.Time, error) {
	if claims.Subject == "" {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrInternal, "token subject is required")
	}
	if ttl <= 0 {
		ttl = m.config.DefaultTTL
	}
	issuedAt := m.now().UTC()
	expiresAt := issuedAt.Add(ttl)

	payload := &models.JWTClaims{
		UserID: claims.AccountID,
		Role:   claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString([]byte(m.config.Secret))
	if err != nil {
		return "", time.Time{}, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to sign token")
	}
	return signed, expiresAt, nil
}

// VerifyToken parses and validates an access token returning its claims.
func (m *CredentialManager) VerifyToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		message := "could not validate credentials"
		if errors.Is(err, jwt.ErrTokenExpired) {
			message = "token expired"
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrUnauthorized, message)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "could not validate credentials")
	}
	if claims.Email() == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token subject missing")
	}
	return claims, nil
}

// truncatePassword cuts the password to bcrypt's limit without splitting a UTF-8 sequence.
func truncatePassword(password string) []byte {
	raw := []byte(password)
	if len(raw) <= maxPasswordBytes {
		return raw
	}
	cut := maxPasswordBytes
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	if cut == 0 {
		return raw[:maxPasswordBytes]
	}
	return raw[:cut]
}
