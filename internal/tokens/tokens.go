package tokens

import (
	"context"
	"fmt"
	"time"

	"github.com/classfeed/classfeed/go-services/internal/config"
	"github.com/classfeed/classfeed/go-services/internal/models"
	"github.com/classfeed/classfeed/go-services/pkg/middleware"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateAccessToken creates a signed JWT access token for the profile.
// The role claim carries the profile's resolved role; when the role could not
// be resolved it is omitted so the API grants only minimal privileges.
func GenerateAccessToken(cfg *config.Config, p *models.UserProfile, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"uid":   p.ID,
		"name":  p.Name,
		"email": p.Email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	if p.Role.Valid() {
		claims["role"] = string(p.Role)
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// claimsToken adapts parsed JWT claims to the middleware.Token interface.
type claimsToken struct {
	claims jwt.MapClaims
}

func (t *claimsToken) Claims(v interface{}) error {
	if m, ok := v.(*map[string]interface{}); ok {
		*m = t.claims
		return nil
	}
	return fmt.Errorf("unsupported claims target %T", v)
}

// HSVerifier validates the service's own HS256 access tokens. It satisfies
// middleware.Verifier so API routes can be gated on it.
type HSVerifier struct {
	secret []byte
}

func NewHSVerifier(secret string) *HSVerifier {
	return &HSVerifier{secret: []byte(secret)}
}

func (v *HSVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return &claimsToken{claims: claims}, nil
}
