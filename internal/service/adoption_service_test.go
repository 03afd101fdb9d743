package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenpaws/shelter-api/internal/models"
	"github.com/havenpaws/shelter-api/internal/repository"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
)

type mockAdoptionRepo struct {
	adoptions    map[string]*models.Adoption
	created      *models.Adoption
	deleted      []string
	createErr    error
	listFilter   models.AdoptionFilter
	updateCalled bool
}

func (m *mockAdoptionRepo) List(ctx context.Context, filter models.AdoptionFilter) ([]models.Adoption, int, error) {
	m.listFilter = filter
	out := make([]models.Adoption, 0, len(m.adoptions))
	for _, adoption := range m.adoptions {
		if filter.OwnerID != nil && (adoption.UserID == nil || *adoption.UserID != *filter.OwnerID) {
			continue
		}
		out = append(out, *adoption)
	}
	return out, len(out), nil
}

func (m *mockAdoptionRepo) FindByID(ctx context.Context, id string) (*models.Adoption, error) {
	adoption, ok := m.adoptions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *adoption
	return &copied, nil
}

func (m *mockAdoptionRepo) Create(ctx context.Context, adoption *models.Adoption) error {
	if m.createErr != nil {
		return m.createErr
	}
	adoption.ID = "adopt-1"
	m.created = adoption
	return nil
}

func (m *mockAdoptionRepo) Update(ctx context.Context, adoption *models.Adoption) error {
	if _, ok := m.adoptions[adoption.ID]; !ok {
		return sql.ErrNoRows
	}
	m.updateCalled = true
	m.adoptions[adoption.ID] = adoption
	return nil
}

func (m *mockAdoptionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.adoptions[id]; !ok {
		return sql.ErrNoRows
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockPetChecker struct {
	exists bool
}

func (m *mockPetChecker) Exists(ctx context.Context, id string) (bool, error) {
	return m.exists, nil
}

func adoptionOwnedBy(id, owner string) *models.Adoption {
	return &models.Adoption{
		ID:           id,
		AdopterName:  "Alex",
		AdopterEmail: "alex@example.com",
		PetID:        "pet-1",
		UserID:       &owner,
	}
}

func TestAdoptionServiceCreate(t *testing.T) {
	repo := &mockAdoptionRepo{}
	svc := NewAdoptionService(repo, &mockPetChecker{exists: true}, nil, nil, nil, nil)

	adoption, err := svc.Create(context.Background(), employeeSubject, CreateAdoptionRequest{
		AdopterName:  "Alex",
		AdopterEmail: "alex@example.com",
		PetID:        "pet-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "adopt-1", adoption.ID)
	require.NotNil(t, adoption.UserID)
	assert.Equal(t, employeeSubject.UserID, *adoption.UserID)
}

func TestAdoptionServiceCreateUnknownPet(t *testing.T) {
	repo := &mockAdoptionRepo{}
	svc := NewAdoptionService(repo, &mockPetChecker{exists: false}, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), adminSubject, CreateAdoptionRequest{
		AdopterName:  "Alex",
		AdopterEmail: "alex@example.com",
		PetID:        "nope",
	})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrReference.Code, appErr.Code)
	require.NotEmpty(t, appErr.Details)
	assert.Equal(t, "pet_id", appErr.Details[0].Field)
	assert.Nil(t, repo.created)
}

func TestAdoptionServiceCreatePetNotAvailable(t *testing.T) {
	repo := &mockAdoptionRepo{createErr: repository.ErrPetNotAvailable}
	svc := NewAdoptionService(repo, &mockPetChecker{exists: true}, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), adminSubject, CreateAdoptionRequest{
		AdopterName:  "Alex",
		AdopterEmail: "alex@example.com",
		PetID:        "pet-1",
	})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAdoptionServiceGetForeignRowSurfacesAsNotFound(t *testing.T) {
	repo := &mockAdoptionRepo{adoptions: map[string]*models.Adoption{
		"adopt-1": adoptionOwnedBy("adopt-1", "emp-2"),
	}}
	svc := NewAdoptionService(repo, &mockPetChecker{exists: true}, nil, nil, nil, nil)

	_, err := svc.Get(context.Background(), employeeSubject, "adopt-1")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	adoption, err := svc.Get(context.Background(), adminSubject, "adopt-1")
	require.NoError(t, err)
	assert.Equal(t, "adopt-1", adoption.ID)
}

func TestAdoptionServiceListScopesEmployeeToOwnRows(t *testing.T) {
	repo := &mockAdoptionRepo{adoptions: map[string]*models.Adoption{
		"adopt-1": adoptionOwnedBy("adopt-1", "emp-1"),
		"adopt-2": adoptionOwnedBy("adopt-2", "emp-2"),
	}}
	svc := NewAdoptionService(repo, &mockPetChecker{exists: true}, nil, nil, nil, nil)

	adoptions, _, err := svc.List(context.Background(), employeeSubject, models.AdoptionFilter{})
	require.NoError(t, err)
	require.Len(t, adoptions, 1)
	assert.Equal(t, "adopt-1", adoptions[0].ID)
}

func TestAdoptionServiceUpdateOwnRow(t *testing.T) {
	repo := &mockAdoptionRepo{adoptions: map[string]*models.Adoption{
		"adopt-1": adoptionOwnedBy("adopt-1", "emp-1"),
	}}
	svc := NewAdoptionService(repo, &mockPetChecker{exists: true}, nil, nil, nil, nil)

	adoption, err := svc.Update(context.Background(), employeeSubject, "adopt-1", UpdateAdoptionRequest{
		AdopterName:  "Alexandra",
		AdopterEmail: "alex@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alexandra", adoption.AdopterName)
	assert.True(t, repo.updateCalled)
}

func TestAdoptionServiceDeleteForbiddenForEmployee(t *testing.T) {
	repo := &mockAdoptionRepo{adoptions: map[string]*models.Adoption{
		"adopt-1": adoptionOwnedBy("adopt-1", "emp-1"),
	}}
	svc := NewAdoptionService(repo, &mockPetChecker{exists: true}, nil, nil, nil, nil)

	err := svc.Delete(context.Background(), employeeSubject, "adopt-1")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.Delete(context.Background(), adminSubject, "adopt-1"))
	assert.Equal(t, []string{"adopt-1"}, repo.deleted)
}
