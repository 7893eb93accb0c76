package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// Revocations remembers logged-out session ids until their token expires.
type Revocations interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevocations stores revoked ids as expiring keys.
type RedisRevocations struct {
	client *redis.Client
}

func NewRedisRevocations(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: client}
}

func (r *RedisRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, "session_revoked:"+jti, 1, ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, "session_revoked:"+jti).Result()
	return n > 0, err
}

// Session is an issued token and its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// SessionManager issues and validates HS256 session tokens carrying user_id.
// Without a revocation store logout only clears the client cookie.
type SessionManager struct {
	secret  []byte
	ttl     time.Duration
	revoked Revocations
	now     func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration, revoked Revocations) *SessionManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl, revoked: revoked, now: time.Now}
}

func (m *SessionManager) TTL() time.Duration { return m.ttl }

func (m *SessionManager) Issue(userID int64) (Session, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := jwt.MapClaims{
		"user_id": userID,
		"jti":     uuid.NewString(),
		"exp":     exp.Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp}, nil
}

func (m *SessionManager) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Authenticate resolves a token to its user id.
func (m *SessionManager) Authenticate(ctx context.Context, tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, ErrAuthRequired
	}
	claims, err := m.parse(tokenString)
	if err != nil {
		return 0, err
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidSession
	}
	if m.revoked != nil {
		jti, _ := claims["jti"].(string)
		revoked, err := m.revoked.IsRevoked(ctx, jti)
		// a broken revocation store must not lock everyone out
		if err == nil && revoked {
			return 0, ErrInvalidSession
		}
	}
	return int64(userID), nil
}

// Revoke invalidates a token for the rest of its lifetime.
func (m *SessionManager) Revoke(ctx context.Context, tokenString string) error {
	if m.revoked == nil || tokenString == "" {
		return nil
	}
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil
	}
	jti, _ := claims["jti"].(string)
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || jti == "" {
		return nil
	}
	return m.revoked.Revoke(ctx, jti, exp.Sub(m.now()))
}
