package service

import (
	"errors"
	"fmt"
	"log"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"gorm.io/gorm"
)

// Bootstrap seeds privileges, roles with their default grants and the first
// ADMIN user. It is safe to run on every start.
func Bootstrap(privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository, userRepo repository.UserRepository, adminEmail, adminPassword string) error {
	if err := privilegeRepo.SeedDefaults(); err != nil {
		return fmt.Errorf("seed privileges: %w", err)
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	allPrivileges, err := privilegeRepo.FindAll()
	if err != nil {
		return fmt.Errorf("load privileges: %w", err)
	}
	byCode := make(map[string]model.Privilege, len(allPrivileges))
	for _, p := range allPrivileges {
		byCode[p.Code] = p
	}

	for _, r := range model.DefaultRoles {
		role, err := roleRepo.FindByCode(r.Code)
		if err != nil {
			return fmt.Errorf("load role %s: %w", r.Code, err)
		}
		if len(role.Privileges) > 0 {
			continue
		}
		grants := allPrivileges
		if role.Code != model.RoleAdmin {
			grants = make([]model.Privilege, 0, len(model.DefaultRolePrivileges[role.Code]))
			for _, code := range model.DefaultRolePrivileges[role.Code] {
				grants = append(grants, byCode[code])
			}
		}
		if err := roleRepo.ReplacePrivileges(role, grants); err != nil {
			return fmt.Errorf("grant role %s: %w", role.Code, err)
		}
		log.Printf("[bootstrap] role %s granted %d privileges", role.Code, len(grants))
	}

	if _, err := userRepo.FindByEmail(adminEmail); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("find admin: %w", err)
	}

	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("load admin role: %w", err)
	}
	admin := &model.User{
		Email:      adminEmail,
		FullName:   "Administrator",
		RoleID:     &adminRole.ID,
		IsActive:   true,
		Privileges: adminRole.Privileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(adminPassword); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := userRepo.Create(admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Printf("[bootstrap] admin user created: %s", adminEmail)
	return nil
}
