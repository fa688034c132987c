package service

import (
	"errors"
	"fmt"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrEmailExists  = errors.New("email already exists")
	ErrRoleNotFound = errors.New("role not found")
)

type UserService interface {
	CreateUser(req *CreateUserRequest, actor Actor) (*model.User, error)
	UpdateUser(userID uuid.UUID, req *UpdateUserRequest, actor Actor) (*model.User, error)
	DeleteUser(userID uuid.UUID, actor Actor) error
	UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, actor Actor) (*model.User, error)
	GetAllUsers(companyID *uuid.UUID, actor Actor) ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID, actor Actor) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	CompanyID *uuid.UUID `json:"companyId,omitempty"`
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required,min=6"`
	FullName  string     `json:"fullName" validate:"required"`
	RoleID    uint       `json:"roleId" validate:"required"`
}

type UpdateUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName string  `json:"fullName" validate:"required"`
	RoleID   uint    `json:"roleId" validate:"required"`
	IsActive *bool   `json:"isActive"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
	}
}

// visible reports whether actor may manage user.
func visible(user *model.User, actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return user.CompanyID != nil && actor.CompanyID != nil && *user.CompanyID == *actor.CompanyID
}

// resolveRole only lets admins hand out the ADMIN role.
func (s *userService) resolveRole(roleID uint, actor Actor) (*model.Role, error) {
	role, err := s.roleRepo.FindByID(roleID)
	if err != nil {
		return nil, ErrRoleNotFound
	}
	if role.Code == model.RoleAdmin && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return role, nil
}

func (s *userService) CreateUser(req *CreateUserRequest, actor Actor) (*model.User, error) {
	if err := validator.First(req); err != nil {
		return nil, validationError(err)
	}

	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, ErrEmailExists
	}

	role, err := s.resolveRole(req.RoleID, actor)
	if err != nil {
		return nil, err
	}

	var companyID *uuid.UUID
	if role.Code != model.RoleAdmin {
		id, err := actor.TargetCompany(req.CompanyID)
		if err != nil {
			return nil, err
		}
		companyID = &id
	}

	user := &model.User{
		CompanyID: companyID,
		Email:     req.Email,
		FullName:  req.FullName,
		RoleID:    &role.ID,
		IsActive:  true,
	}
	user.CreatedBy = actor.ID()
	user.UpdatedBy = actor.ID()

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// Privileges start as the role's grants.
	user.Privileges = role.Privileges

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(user.ID)
}

func (s *userService) UpdateUser(userID uuid.UUID, req *UpdateUserRequest, actor Actor) (*model.User, error) {
	if err := validator.First(req); err != nil {
		return nil, validationError(err)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil || !visible(user, actor) {
		return nil, ErrUserNotFound
	}

	if req.Email != user.Email {
		if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
			return nil, ErrEmailExists
		}
	}

	role, err := s.resolveRole(req.RoleID, actor)
	if err != nil {
		return nil, err
	}
	roleChanged := user.RoleID == nil || *user.RoleID != role.ID

	user.Email = req.Email
	user.FullName = req.FullName
	user.RoleID = &role.ID
	user.Role = role
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = actor.ID()

	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	if roleChanged {
		if err := s.userRepo.ReplacePrivileges(user, role.Privileges); err != nil {
			return nil, err
		}
	}
	return s.userRepo.FindByID(userID)
}

func (s *userService) DeleteUser(userID uuid.UUID, actor Actor) error {
	if userID == actor.UserID {
		return ErrForbidden
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil || !visible(user, actor) {
		return ErrUserNotFound
	}
	return s.userRepo.Delete(userID)
}

func (s *userService) UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, actor Actor) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil || !visible(user, actor) {
		return nil, ErrUserNotFound
	}

	privileges, err := s.privilegeRepo.FindByCodes(privilegeCodes)
	if err != nil {
		return nil, fmt.Errorf("find privileges: %w", err)
	}
	if len(privileges) != len(privilegeCodes) {
		return nil, validationError(errors.New("unknown privilege code"))
	}
	if !actor.IsAdmin() {
		for _, p := range privileges {
			if p.Code == model.PrivCompanyManage {
				return nil, ErrForbidden
			}
		}
	}

	if err := s.userRepo.ReplacePrivileges(user, privileges); err != nil {
		return nil, err
	}
	// Tokens carry privileges, so force a fresh login.
	if err := s.userRepo.UpdateTokenVersion(user.ID, uuid.New().String()); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(userID)
}

func (s *userService) GetAllUsers(companyID *uuid.UUID, actor Actor) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(actor.Scope(companyID))
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID, actor Actor) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil || !visible(user, actor) {
		return nil, ErrUserNotFound
	}
	response := user.ToResponse()
	return &response, nil
}
