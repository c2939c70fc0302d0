package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"

	domain "chefgpt-server/internal/domain/conversation"
	"chefgpt-server/internal/infrastructure/metrics"
)

const maxCacheTTL = 5 * time.Minute

// Config selects how bearer credentials are verified. At least one of
// Secret (HS256) or JWKSURL (RS256/ES256) must be set.
type Config struct {
	Secret    string
	JWKSURL   string
	Issuer    string
	Audience  string
	CacheSize int
	ClockSkew time.Duration
}

// Resolver maps a bearer credential to an owner id. It never fails: anything
// that does not verify resolves to the anonymous identity.
type Resolver struct {
	secret []byte
	jwks   *keyfunc.JWKS
	parser *jwt.Parser
	cache  *lru.Cache
	log    zerolog.Logger
	now    func() time.Time
}

type cachedIdentity struct {
	owner     domain.OwnerID
	expiresAt time.Time
}

func NewResolver(ctx context.Context, cfg Config, log zerolog.Logger) (*Resolver, error) {
	if cfg.Secret == "" && cfg.JWKSURL == "" {
		return nil, errors.New("either a jwt secret or a jwks url is required")
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1024
	}

	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create identity cache: %w", err)
	}

	r := &Resolver{
		secret: []byte(cfg.Secret),
		cache:  cache,
		log:    log.With().Str("component", "identity-resolver").Logger(),
		now:    time.Now,
	}

	methods := []string{}
	if cfg.Secret != "" {
		methods = append(methods, jwt.SigningMethodHS256.Alg())
	}
	if cfg.JWKSURL != "" {
		r.jwks, err = keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			Ctx:               ctx,
			RefreshInterval:   time.Hour,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				r.log.Error().Err(err).Msg("jwks refresh failed")
			},
		})
		if err != nil {
			return nil, fmt.Errorf("fetch jwks: %w", err)
		}
		methods = append(methods, "RS256", "ES256")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithLeeway(cfg.ClockSkew),
		jwt.WithTimeFunc(func() time.Time { return r.now() }),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	r.parser = jwt.NewParser(opts...)
	return r, nil
}

// Resolve accepts either a raw token or an Authorization header value.
func (r *Resolver) Resolve(ctx context.Context, credential string) domain.OwnerID {
	token := bearerToken(credential)
	if token == "" {
		metrics.RecordIdentity("anonymous")
		return domain.Anonymous
	}

	if cached, ok := r.cache.Get(token); ok {
		identity := cached.(cachedIdentity)
		if r.now().Before(identity.expiresAt) {
			metrics.RecordIdentity("cached")
			return identity.owner
		}
		r.cache.Remove(token)
	}

	owner, expiresAt, err := r.verify(token)
	if err != nil {
		r.log.Debug().Err(err).Msg("credential rejected, continuing as guest")
		metrics.RecordIdentity("rejected")
		return domain.Anonymous
	}

	r.cache.Add(token, cachedIdentity{owner: owner, expiresAt: expiresAt})
	metrics.RecordIdentity("owner")
	return owner
}

// Close stops background JWKS refreshes.
func (r *Resolver) Close() {
	if r.jwks != nil {
		r.jwks.EndBackground()
	}
}

func (r *Resolver) verify(raw string) (domain.OwnerID, time.Time, error) {
	claims := jwt.MapClaims{}
	token, err := r.parser.ParseWithClaims(raw, claims, r.keyFor)
	if err != nil {
		return domain.Anonymous, time.Time{}, err
	}
	if !token.Valid {
		return domain.Anonymous, time.Time{}, errors.New("invalid token")
	}

	owner := ownerFromClaims(claims)
	if owner.IsAnonymous() {
		return domain.Anonymous, time.Time{}, errors.New("token carries no user id")
	}

	expiresAt := r.now().Add(maxCacheTTL)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(expiresAt) {
		expiresAt = exp.Time
	}
	return owner, expiresAt, nil
}

func (r *Resolver) keyFor(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		if len(r.secret) == 0 {
			return nil, errors.New("hmac tokens are not accepted")
		}
		return r.secret, nil
	}
	if r.jwks == nil {
		return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
	}
	return r.jwks.Keyfunc(token)
}

// ownerFromClaims prefers the "id" claim issued by the account service and
// falls back to the standard subject.
func ownerFromClaims(claims jwt.MapClaims) domain.OwnerID {
	switch id := claims["id"].(type) {
	case string:
		if id = strings.TrimSpace(id); id != "" {
			return domain.OwnerID(id)
		}
	case float64:
		return domain.OwnerID(fmt.Sprintf("%.0f", id))
	}
	if sub, err := claims.GetSubject(); err == nil && strings.TrimSpace(sub) != "" {
		return domain.OwnerID(strings.TrimSpace(sub))
	}
	return domain.Anonymous
}

func bearerToken(credential string) string {
	credential = strings.TrimSpace(credential)
	if len(credential) > 7 && strings.EqualFold(credential[:7], "bearer ") {
		credential = strings.TrimSpace(credential[7:])
	}
	if credential == "" || strings.EqualFold(credential, "null") || strings.EqualFold(credential, "undefined") {
		return ""
	}
	return credential
}
