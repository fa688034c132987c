package middleware

import (
	"strings"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LocalUserID     = "user_id"
	LocalUserName   = "user_name"
	LocalUserEmail  = "user_email"
	LocalCompanyID  = "company_id"
	LocalRoleCode   = "role_code"
	LocalPrivileges = "user_privileges"
)

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": message})
}

func forbidden(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": message})
}

// bearerToken reads the Authorization header. WebSocket clients cannot set
// headers, so a token query parameter is accepted as well.
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, true
		}
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth validates the JWT, enforces the single active session and puts
// the caller's identity into the request locals.
func RequireAuth(signer *jwt.Signer, userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return unauthorized(c, "Missing or malformed authorization token. Use: Bearer <token>")
		}

		claims, err := signer.ValidateToken(tokenString)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return unauthorized(c, "User not found")
		}
		if !user.IsActive {
			return unauthorized(c, "User account is inactive")
		}
		if user.TokenVersion != claims.TokenVersion {
			return unauthorized(c, "Session expired (logged in on another device)")
		}

		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalUserEmail, user.Email)
		c.Locals(LocalUserName, user.FullName)
		c.Locals(LocalCompanyID, user.CompanyID)
		c.Locals(LocalRoleCode, user.RoleCode())
		c.Locals(LocalPrivileges, claims.Privileges)

		return c.Next()
	}
}

func hasPrivilege(c *fiber.Ctx, required string) bool {
	if role, _ := c.Locals(LocalRoleCode).(string); role == model.RoleAdmin {
		return true
	}
	privileges, _ := c.Locals(LocalPrivileges).([]string)
	for _, p := range privileges {
		if p == required {
			return true
		}
	}
	return false
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hasPrivilege(c, requiredPrivilege) {
			return c.Next()
		}
		return forbidden(c, "Forbidden: requires '"+requiredPrivilege+"' privilege")
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, p := range requiredPrivileges {
			if hasPrivilege(c, p) {
				return c.Next()
			}
		}
		return forbidden(c, "Forbidden: requires one of "+strings.Join(requiredPrivileges, ", ")+" privileges")
	}
}

// RequireRole admits only the given role codes.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRoleCode).(string)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return forbidden(c, "Forbidden: requires role "+strings.Join(roles, " or "))
	}
}

// UserID returns the authenticated user's id, or uuid.Nil outside RequireAuth.
func UserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(LocalUserID).(uuid.UUID)
	return id
}
