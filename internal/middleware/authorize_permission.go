package middleware

import (
	"github.com/amanuelrf/reliance-mobile/internal/constants"
	"github.com/amanuelrf/reliance-mobile/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// AuthorizePermission allows the request only when the session role may perform permission.
// A permission missing from constants.PermissionRoles is a server bug and answers 500.
func AuthorizePermission(permission string) fiber.Handler {
	if _, ok := constants.PermissionRoles[permission]; !ok {
		log.Error().Str("permission", permission).Msg("route guarded by unknown permission")
	}
	return func(c *fiber.Ctx) error {
		user, ok := GetUser(c).(map[string]interface{})
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if _, known := constants.PermissionRoles[permission]; !known {
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		role, _ := user["role"].(string)
		if !constants.IsValidRole(role) || !constants.AllowedRole(permission, role) {
			return response.Error(c, "User is Forbidden from performing this action", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}
