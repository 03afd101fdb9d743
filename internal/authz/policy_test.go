package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/havenpaws/shelter-api/internal/models"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
)

var allActions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

var allResources = []Resource{ResourcePet, ResourceDonation, ResourceAdoption, ResourceMedicalRecord, ResourceUser}

func TestAdminAllowsEverything(t *testing.T) {
	sub := Subject{UserID: "admin-1", Role: models.RoleAdmin}
	other := "someone-else"
	for _, action := range allActions {
		for _, res := range allResources {
			assert.Equal(t, Allow, Decide(sub, action, res, nil), "%s %s", action, res)
			assert.Equal(t, Allow, Decide(sub, action, res, &other), "%s %s owned", action, res)
		}
	}
}

func TestEmployeeReadOnlyResources(t *testing.T) {
	sub := Subject{UserID: "emp-1", Role: models.RoleEmployee}
	for _, res := range []Resource{ResourcePet, ResourceMedicalRecord} {
		assert.Equal(t, Allow, Decide(sub, ActionRead, res, nil))
		assert.Equal(t, DenyForbidden, Decide(sub, ActionCreate, res, nil))
		assert.Equal(t, DenyForbidden, Decide(sub, ActionUpdate, res, nil))
		assert.Equal(t, DenyForbidden, Decide(sub, ActionDelete, res, nil))
	}
}

func TestEmployeeOwnershipRules(t *testing.T) {
	sub := Subject{UserID: "emp-1", Role: models.RoleEmployee}
	own := "emp-1"
	other := "emp-2"

	for _, res := range []Resource{ResourceDonation, ResourceAdoption} {
		assert.Equal(t, Allow, Decide(sub, ActionCreate, res, nil))
		assert.Equal(t, Allow, Decide(sub, ActionRead, res, &own))
		assert.Equal(t, Allow, Decide(sub, ActionUpdate, res, &own))
		assert.Equal(t, DenyAsMissing, Decide(sub, ActionRead, res, &other))
		assert.Equal(t, DenyAsMissing, Decide(sub, ActionUpdate, res, &other))
		assert.Equal(t, DenyForbidden, Decide(sub, ActionDelete, res, &own))
	}
}

func TestEmployeeUserResourceForbidden(t *testing.T) {
	sub := Subject{UserID: "emp-1", Role: models.RoleEmployee}
	for _, action := range allActions {
		assert.Equal(t, DenyForbidden, Decide(sub, action, ResourceUser, nil))
	}
}

// Every (role, action, resource) combination must map to exactly one effect,
// and repeated evaluation must not change the answer.
func TestDecideIsTotalAndDeterministic(t *testing.T) {
	owners := []*string{nil, strPtr("emp-1"), strPtr("emp-2")}
	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleEmployee, models.UserRole("visitor")} {
		sub := Subject{UserID: "emp-1", Role: role}
		for _, action := range allActions {
			for _, res := range allResources {
				for _, owner := range owners {
					first := Decide(sub, action, res, owner)
					assert.Contains(t, []Effect{Allow, DenyForbidden, DenyAsMissing}, first)
					assert.Equal(t, first, Decide(sub, action, res, owner))
				}
			}
		}
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	sub := Subject{UserID: "x", Role: models.UserRole("ghost")}
	assert.Equal(t, DenyForbidden, Decide(sub, ActionRead, ResourcePet, nil))
}

func TestErrMapping(t *testing.T) {
	assert.NoError(t, Err(Allow))

	err := Err(DenyAsMissing)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	err = Err(DenyForbidden)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func strPtr(s string) *string { return &s }
