package shared

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const tokenIssuer = "oraxonoptic"

// Session is the authenticated identity snapshot shared by every handler.
// Writers replace the whole record at once so readers never observe a
// partially updated identity.
type Session struct {
	UserID      int64               `json:"user_id"`
	Email       string              `json:"email"`
	FirstName   string              `json:"first_name"`
	LastName    string              `json:"last_name"`
	Role        string              `json:"role"`
	Permissions map[string][]string `json:"permissions"`
	Token       string              `json:"-"`
	StoreID     *int64              `json:"store_id,omitempty"`
	IsActive    bool                `json:"is_active"`
	CreatedAt   time.Time           `json:"created_at"`
	LastLogin   time.Time           `json:"last_login"`
}

// Profile carries the canonical account fields returned by the profile
// endpoint. Nil fields were not returned by the backend and must not
// overwrite the session copy.
type Profile struct {
	Email       *string
	FirstName   *string
	LastName    *string
	Role        *string
	Permissions map[string][]string
	IsActive    *bool
	LastLogin   *time.Time
}

// SessionManager stores revocable sessions in Redis, addressed by the jti of
// a signed bearer token.
type SessionManager struct {
	client *redis.Client
	secret []byte
	ttl    time.Duration
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{client: client, secret: []byte(secret), ttl: ttl}
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// Issue signs a new access token for the session and persists the snapshot.
func (sm *SessionManager) Issue(ctx context.Context, sess *Session) error {
	jti := uuid.NewString()
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatInt(sess.UserID, 10),
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sm.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sm.secret)
	if err != nil {
		return err
	}
	sess.Token = token
	sess.CreatedAt = now
	if err := sm.write(ctx, jti, sess, sm.ttl); err != nil {
		return err
	}
	if err := sm.client.SAdd(ctx, sm.userKey(sess.UserID), jti).Err(); err != nil {
		return err
	}
	return sm.client.Expire(ctx, sm.userKey(sess.UserID), sm.ttl).Err()
}

// Restore rehydrates the session behind a bearer token. A missing, expired,
// malformed or revoked token yields (nil, nil): callers see an
// unauthenticated state, never an error the user has to act on.
func (sm *SessionManager) Restore(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	jti, _, err := sm.parseToken(token)
	if err != nil {
		return nil, nil
	}
	payload, err := sm.client.Get(ctx, sm.sessionKey(jti)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		// Corrupt snapshot: drop it rather than poisoning every request.
		_ = sm.client.Del(ctx, sm.sessionKey(jti)).Err()
		return nil, nil
	}
	sess.Token = token
	return &sess, nil
}

// Set replaces the stored snapshot for the session's token.
func (sm *SessionManager) Set(ctx context.Context, sess *Session) error {
	jti, _, err := sm.parseToken(sess.Token)
	if err != nil {
		return ErrSessionRevoked
	}
	return sm.write(ctx, jti, sess, redis.KeepTTL)
}

// Clear revokes the session behind a token. Unknown tokens are a no-op.
func (sm *SessionManager) Clear(ctx context.Context, token string) error {
	jti, userID, err := sm.parseToken(token)
	if err != nil {
		return nil
	}
	if err := sm.client.Del(ctx, sm.sessionKey(jti)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return sm.client.SRem(ctx, sm.userKey(userID), jti).Err()
}

// ClearUser revokes every session of a user, used after a password reset or
// account deactivation.
func (sm *SessionManager) ClearUser(ctx context.Context, userID int64) error {
	jtis, err := sm.client.SMembers(ctx, sm.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	for _, jti := range jtis {
		if err := sm.client.Del(ctx, sm.sessionKey(jti)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
	}
	return sm.client.Del(ctx, sm.userKey(userID)).Err()
}

// Refresh reconciles the session with the canonical profile. Only fields the
// backend actually returned are applied, then the whole snapshot is replaced.
func (sm *SessionManager) Refresh(ctx context.Context, sess *Session, p Profile) error {
	if p.Email != nil {
		sess.Email = *p.Email
	}
	if p.FirstName != nil {
		sess.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		sess.LastName = *p.LastName
	}
	if p.Role != nil {
		sess.Role = *p.Role
	}
	if p.Permissions != nil {
		sess.Permissions = p.Permissions
	}
	if p.IsActive != nil {
		sess.IsActive = *p.IsActive
	}
	if p.LastLogin != nil {
		sess.LastLogin = *p.LastLogin
	}
	return sm.Set(ctx, sess)
}

// SelectStore persists the store selection on the session snapshot.
func (sm *SessionManager) SelectStore(ctx context.Context, sess *Session, storeID *int64) error {
	sess.StoreID = storeID
	return sm.Set(ctx, sess)
}

func (sm *SessionManager) write(ctx context.Context, jti string, sess *Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return sm.client.Set(ctx, sm.sessionKey(jti), data, ttl).Err()
}

func (sm *SessionManager) parseToken(token string) (jti string, userID int64, err error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return sm.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return "", 0, err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.ID == "" {
		return "", 0, ErrSessionRevoked
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return "", 0, err
	}
	return claims.ID, id, nil
}

func (sm *SessionManager) sessionKey(jti string) string {
	return "session:" + jti
}

func (sm *SessionManager) userKey(userID int64) string {
	return "user_sessions:" + strconv.FormatInt(userID, 10)
}
