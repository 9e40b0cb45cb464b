package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// Claims - верифицированный payload токена на время одного запроса.
type Claims map[string]interface{}

var errMissingKid = errors.New("token header has no kid")

// Verifier проверяет bearer-токены по ключам издателя.
type Verifier struct {
	issuer     string
	audience   string
	algorithms []string
	keys       *JWKSClient
}

func NewVerifier(domain, audience string, algorithms []string, keys *JWKSClient) *Verifier {
	return &Verifier{
		issuer:     "https://" + domain + "/",
		audience:   audience,
		algorithms: algorithms,
		keys:       keys,
	}
}

// GetTokenFromHeader достает bearer-токен из заголовка Authorization.
func GetTokenFromHeader(r *http.Request) (string, *AuthError) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", &AuthError{
			Code:        "authorization_header_missing",
			Description: "Authorization header is expected",
			Status:      http.StatusUnauthorized,
		}
	}

	parts := strings.Fields(header)
	switch {
	case len(parts) == 1:
		return "", &AuthError{
			Code:        "invalid_header",
			Description: "Token not found",
			Status:      http.StatusUnauthorized,
		}
	case len(parts) > 2:
		return "", &AuthError{
			Code:        "invalid_header",
			Description: "Authorization header must be Bearer token",
			Status:      http.StatusUnauthorized,
		}
	case !strings.EqualFold(parts[0], "bearer"):
		return "", &AuthError{
			Code:        "invalid_header",
			Description: "Authorization header must start with Bearer",
			Status:      http.StatusUnauthorized,
		}
	}

	return parts[1], nil
}

// VerifyToken проверяет подпись, срок действия, издателя и аудиторию токена.
func (v *Verifier) VerifyToken(tokenString string) (Claims, *AuthError) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods(v.algorithms))

	_, err := parser.ParseWithClaims(tokenString, claims, v.keyFunc)
	if err != nil {
		return nil, mapParseError(err)
	}

	if !claims.VerifyIssuer(v.issuer, true) || !claims.VerifyAudience(v.audience, true) {
		return nil, &AuthError{
			Code:        "invalid_claims",
			Description: "incorrect claims, please check the audience and issuer",
			Status:      http.StatusUnauthorized,
		}
	}

	return Claims(claims), nil
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	kid, ok := token.Header["kid"].(string)
	if !ok || kid == "" {
		return nil, errMissingKid
	}
	return v.keys.SigningKey(kid)
}

func mapParseError(err error) *AuthError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &AuthError{
			Code:        "token_expired",
			Description: "token is expired",
			Status:      http.StatusUnauthorized,
		}
	case errors.Is(err, errMissingKid):
		return &AuthError{
			Code:        "invalid_header",
			Description: "Authorization malformed.",
			Status:      http.StatusUnauthorized,
		}
	case errors.Is(err, ErrKeyNotFound):
		return &AuthError{
			Code:        "invalid_header",
			Description: "Unable to find the appropriate key.",
			Status:      http.StatusUnauthorized,
		}
	case errors.Is(err, ErrKeySetUnavailable):
		return &AuthError{
			Code:        "invalid_jwk",
			Description: "Unable to fetch JWKS",
			Status:      http.StatusInternalServerError,
		}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &AuthError{
			Code:        "invalid_signature",
			Description: "Token signature verification failed",
			Status:      http.StatusUnauthorized,
		}
	default:
		return &AuthError{
			Code:        "invalid_header",
			Description: "Unable to parse authentication token.",
			Status:      http.StatusBadRequest,
		}
	}
}
