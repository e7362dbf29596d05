package apifake

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const refreshTokenBytes = 32

// createAccessToken signs a short-lived HS256 token for the account.
// The generation claim lets ExpireAccessTokens invalidate every token issued so far.
func (s *Server) createAccessToken(accountID int64) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"sub": fmt.Sprintf("%d", accountID),
		"iat": now.Unix(),
		"exp": now.Add(s.accessTokenTTL).Unix(),
		"jti": uuid.New().String(),
		"gen": s.generation,
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
}

// parseAccessToken returns the account id of a valid, current-generation token.
func (s *Server) parseAccessToken(raw string) (int64, bool) {
	parsed, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithTimeFunc(NowTimeFunc))
	if err != nil || !parsed.Valid {
		return 0, false
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return 0, false
	}
	gen, ok := claims["gen"].(float64)
	if !ok || int(gen) != s.generation {
		return 0, false
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, false
	}

	var id int64
	if _, err := fmt.Sscanf(sub, "%d", &id); err != nil {
		return 0, false
	}
	return id, true
}

func newRefreshToken() (string, error) {
	tokenBytes := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(tokenBytes), nil
}
