package jwttoken

import (
	authmw "lifeline/pkg/platform/middleware/auth"
)

// VerifyAccessToken satisfies the auth middleware's TokenVerifier.
func (s *JWTService) VerifyAccessToken(tokenString string) (*authmw.Claims, error) {
	claims, err := s.ValidateToken(tokenString, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	userID, err := claims.ParsedUserID()
	if err != nil {
		return nil, err
	}
	role, err := claims.ParsedRole()
	if err != nil {
		return nil, err
	}
	return &authmw.Claims{
		UserID:    userID,
		Role:      role,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
