package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func TestUserServiceUpdateProfile(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(svcCustomer))
	ctx := context.Background()

	name := "Dana Q"
	department := "Finance"
	updated, err := svc.UpdateProfile(ctx, svcCustomer, ProfileUpdate{Name: &name, Department: &department})
	require.NoError(t, err)
	assert.Equal(t, "Dana Q", updated.Name)
	assert.Equal(t, "Finance", updated.Department)
	assert.Equal(t, domain.RoleCustomer, updated.Role, "profile update never touches the role")

	blank := "   "
	_, err = svc.UpdateProfile(ctx, svcCustomer, ProfileUpdate{Name: &blank})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestUserServiceChangeRole(t *testing.T) {
	ctx := context.Background()

	t.Run("admin promotes customer to agent", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(svcAdmin, svcCustomer))
		updated, err := svc.ChangeRole(ctx, svcAdmin, svcCustomer.ID, domain.RoleAgent)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAgent, updated.Role)
	})

	t.Run("manager may change roles", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(svcManager, svcAgent))
		_, err := svc.ChangeRole(ctx, svcManager, svcAgent.ID, domain.RoleManager)
		require.NoError(t, err)
	})

	t.Run("agent and customer forbidden", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(svcAgent, svcCustomer))
		_, err := svc.ChangeRole(ctx, svcAgent, svcCustomer.ID, domain.RoleAgent)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

		_, err = svc.ChangeRole(ctx, svcCustomer, svcAgent.ID, domain.RoleCustomer)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})

	t.Run("cannot change own role", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(svcAdmin))
		_, err := svc.ChangeRole(ctx, svcAdmin, svcAdmin.ID, domain.RoleCustomer)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(svcAdmin, svcCustomer))
		_, err := svc.ChangeRole(ctx, svcAdmin, svcCustomer.ID, "WIZARD")
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("unknown target", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(svcAdmin))
		_, err := svc.ChangeRole(ctx, svcAdmin, "ghost", domain.RoleAgent)
		assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	})
}
