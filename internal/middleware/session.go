package middleware

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// SessionConfig for the Redis-backed session written by the login service.
type SessionConfig struct {
	Secret            string
	RedisURL          string
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	SessionCookieName  = "reliance.sid"
	SessionRedisPrefix = "session:"
)

// SessionUser is the shape stored in session under "user".
type SessionUser struct {
	UserID   string `json:"user_id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Session connects to Redis and returns the session loader.
func Session(cfg SessionConfig) (fiber.Handler, *redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opt)
	return LoadSession(rdb), rdb, nil
}

// LoadSession reads the session named by the cookie or an "Authorization: Bearer <id>"
// header and puts its user in Locals. Sessions are created and destroyed by the login
// service; this API only reads them.
func LoadSession(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := sessionIDFrom(c)

		var data map[string]interface{}
		if sessionID != "" && rdb != nil {
			b, err := rdb.Get(c.UserContext(), SessionRedisPrefix+sessionID).Bytes()
			if err == nil {
				_ = json.Unmarshal(b, &data)
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		c.Locals("session_data", data)
		if u, ok := data["user"]; ok {
			c.Locals("user", u)
		} else {
			c.Locals("user", nil)
		}
		c.Locals("session_id", sessionID)
		return c.Next()
	}
}

func sessionIDFrom(c *fiber.Ctx) string {
	sessionID := c.Cookies(SessionCookieName)
	// Signed cookies look like "s:<id>.<signature>"
	if strings.HasPrefix(sessionID, "s:") {
		parts := strings.SplitN(sessionID[2:], ".", 2)
		sessionID = parts[0]
	}
	if sessionID == "" {
		auth := c.Get(fiber.HeaderAuthorization)
		if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
			sessionID = strings.TrimSpace(auth[7:])
		}
	}
	return sessionID
}

// GetSessionID returns the current session ID from context.
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals("session_id").(string)
	return sid
}

// StoreSession writes a session for user. Used by tests and local tooling that stand in
// for the login service.
func StoreSession(ctx context.Context, rdb *redis.Client, sessionID string, user SessionUser) error {
	b, err := json.Marshal(map[string]interface{}{"user": user})
	if err != nil {
		return err
	}
	return rdb.Set(ctx, SessionRedisPrefix+sessionID, b, 0).Err()
}
