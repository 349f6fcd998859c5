package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sunflower/sunflower-api/internal/core/domain"
)

// Kind separates the token profiles so one can never stand in for the other.
type Kind string

const (
	KindAccess            Kind = "access"
	KindEmailVerification Kind = "email_verification"

	claimKind = "typ"
)

var reservedClaims = map[string]struct{}{
	"sub": {}, "exp": {}, "iat": {}, "nbf": {}, claimKind: {},
}

// TokenConfig holds the signing material and the TTL of each profile.
type TokenConfig struct {
	Secret         string
	Algorithm      string
	AccessTTL      time.Duration
	EmailVerifyTTL time.Duration
}

// TokenCodec issues and verifies HMAC-signed JWTs.
type TokenCodec struct {
	secret         []byte
	method         jwt.SigningMethod
	accessTTL      time.Duration
	emailVerifyTTL time.Duration
	now            func() time.Time
}

// NewTokenCodec validates cfg and returns a codec. Only the HMAC family is
// accepted: HS256, HS384 or HS512 (HS256 when empty).
func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token codec: empty signing secret")
	}
	method, err := hmacMethod(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 30 * time.Minute
	}
	if cfg.EmailVerifyTTL <= 0 {
		cfg.EmailVerifyTTL = 30 * time.Minute
	}
	return &TokenCodec{
		secret:         []byte(cfg.Secret),
		method:         method,
		accessTTL:      cfg.AccessTTL,
		emailVerifyTTL: cfg.EmailVerifyTTL,
		now:            time.Now,
	}, nil
}

// SupportedAlgorithm reports whether alg can be used by the codec.
func SupportedAlgorithm(alg string) bool {
	_, err := hmacMethod(alg)
	return err == nil
}

func hmacMethod(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case "", jwt.SigningMethodHS256.Alg():
		return jwt.SigningMethodHS256, nil
	case jwt.SigningMethodHS384.Alg():
		return jwt.SigningMethodHS384, nil
	case jwt.SigningMethodHS512.Alg():
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("token codec: unsupported algorithm %q", alg)
	}
}

// Issue signs a token of the given kind for subject, expiring after ttl.
// Extra claims are copied in, except for the registered names the codec owns.
func (c *TokenCodec) Issue(kind Kind, subject string, ttl time.Duration, extra map[string]any) (string, error) {
	now := c.now()
	claims := jwt.MapClaims{}
	for k, v := range extra {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		claims[k] = v
	}
	claims["sub"] = subject
	claims[claimKind] = string(kind)
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(ttl))

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify checks signature, expiry and kind, and returns the subject claim.
// Every failure is reported as domain.ErrInvalidToken.
func (c *TokenCodec) Verify(kind Kind, token string) (string, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return "", domain.ErrInvalidToken
	}

	if k, _ := claims[claimKind].(string); k != string(kind) {
		return "", domain.ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrInvalidToken
	}
	return sub, nil
}

func (c *TokenCodec) IssueAccess(userID string) (string, error) {
	return c.Issue(KindAccess, userID, c.accessTTL, nil)
}

func (c *TokenCodec) VerifyAccess(token string) (string, error) {
	return c.Verify(KindAccess, token)
}

func (c *TokenCodec) IssueEmailVerification(email string) (string, error) {
	return c.Issue(KindEmailVerification, email, c.emailVerifyTTL, nil)
}

func (c *TokenCodec) VerifyEmailVerification(token string) (string, error) {
	return c.Verify(KindEmailVerification, token)
}

// AccessTTL is the lifetime of access tokens.
func (c *TokenCodec) AccessTTL() time.Duration {
	return c.accessTTL
}
