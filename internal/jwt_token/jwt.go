package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
)

// TokenType distinguishes access from refresh tokens so one cannot be
// replayed as the other.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims represents the JWT claims for lifeline tokens.
type Claims struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

func NewJWTService(signingKey string, issuer string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		now:        time.Now,
	}
}

// Issued is a signed token with the identifiers needed for revocation.
type Issued struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

func (s *JWTService) GenerateAccessToken(userID id.UserID, role id.Role, expiresIn time.Duration) (Issued, error) {
	return s.generate(userID, role, TokenTypeAccess, expiresIn)
}

func (s *JWTService) GenerateRefreshToken(userID id.UserID, role id.Role, expiresIn time.Duration) (Issued, error) {
	return s.generate(userID, role, TokenTypeRefresh, expiresIn)
}

func (s *JWTService) generate(userID id.UserID, role id.Role, tokenType TokenType, expiresIn time.Duration) (Issued, error) {
	now := s.now()
	expiresAt := now.Add(expiresIn)
	jti := uuid.NewString()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    userID.String(),
		Role:      role.String(),
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        jti,
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: signedToken, JTI: jti, ExpiresAt: expiresAt}, nil
}

// ValidateToken verifies signature, expiry, issuer and token type.
func (s *JWTService) ValidateToken(tokenString string, want TokenType) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.TokenType != want {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token type")
	}

	return claims, nil
}

// ParsedUserID and ParsedRole re-validate the string claims as domain types.
func (c *Claims) ParsedUserID() (id.UserID, error) {
	userID, err := id.ParseUserID(c.UserID)
	if err != nil {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return userID, nil
}

func (c *Claims) ParsedRole() (id.Role, error) {
	role, err := id.ParseRole(c.Role)
	if err != nil {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return role, nil
}
