package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/piipapoy/pedulikucing-app-sub000/internal/identity/models"
	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/requestcontext"
)

// Claims carries the principal the external identity collaborator vouches
// for. The core never re-verifies credentials beyond this signature check.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Service handles access token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
}

func NewService(signingKey string, issuer string) *Service {
	return &Service{signingKey: []byte(signingKey), issuer: issuer}
}

// GenerateAccessToken issues an HS256 token for a user. Used by the identity
// boundary and by tests; production deployments may swap in the hosted
// identity provider.
func (s *Service) GenerateAccessToken(userID uuid.UUID, role models.Role, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID.String(),
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// ValidateToken parses and verifies a token, returning the principal it
// carries.
func (s *Service) ValidateToken(tokenString string) (requestcontext.AuthPrincipal, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return requestcontext.AuthPrincipal{}, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return requestcontext.AuthPrincipal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return requestcontext.AuthPrincipal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return requestcontext.AuthPrincipal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	if !models.Role(claims.Role).Valid() {
		return requestcontext.AuthPrincipal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token role")
	}

	return requestcontext.AuthPrincipal{UserID: userID, Role: claims.Role}, nil
}
