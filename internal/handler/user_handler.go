package handler

import (
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid JSON")
	}

	user, err := h.userService.CreateUser(&req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusCreated, user.ToResponse())
}

// UpdateUserPrivileges handles privilege assignment
// PUT /api/v1/users/:id/privileges
func (h *UserHandler) UpdateUserPrivileges(c *fiber.Ctx) error {
	userID, valid := paramUUID(c, "id")
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	var req struct {
		Privileges []string `json:"privileges"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid JSON")
	}

	user, err := h.userService.UpdateUserPrivileges(userID, req.Privileges, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return okMessage(c, "Privileges updated successfully", user.ToResponse())
}

// GetUsers returns the users the caller may manage
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	companyID, valid := queryCompany(c)
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid company ID")
	}
	users, err := h.userService.GetAllUsers(companyID, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusOK, users)
}

// GetUser returns a single user by ID
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, valid := paramUUID(c, "id")
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userService.GetUserByID(userID, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusOK, user)
}

// UpdateUser handles user update
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	userID, valid := paramUUID(c, "id")
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid JSON")
	}

	user, err := h.userService.UpdateUser(userID, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return okMessage(c, "User updated successfully", user.ToResponse())
}

// DeleteUser handles user deletion
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, valid := paramUUID(c, "id")
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	if err := h.userService.DeleteUser(userID, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return okMessage(c, "User deleted successfully", nil)
}
