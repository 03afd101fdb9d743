package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenpaws/shelter-api/internal/authz"
	"github.com/havenpaws/shelter-api/internal/models"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
)

type mockDonationRepo struct {
	donations  map[string]*models.Donation
	created    *models.Donation
	deleted    []string
	listFilter models.DonationFilter
}

func (m *mockDonationRepo) List(ctx context.Context, filter models.DonationFilter) ([]models.Donation, int, error) {
	m.listFilter = filter
	out := make([]models.Donation, 0, len(m.donations))
	for _, donation := range m.donations {
		if filter.OwnerID != nil && (donation.UserID == nil || *donation.UserID != *filter.OwnerID) {
			continue
		}
		out = append(out, *donation)
	}
	return out, len(out), nil
}

func (m *mockDonationRepo) FindByID(ctx context.Context, id string) (*models.Donation, error) {
	donation, ok := m.donations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *donation
	return &copied, nil
}

func (m *mockDonationRepo) Create(ctx context.Context, donation *models.Donation) error {
	donation.ID = "don-1"
	m.created = donation
	return nil
}

func (m *mockDonationRepo) Update(ctx context.Context, donation *models.Donation) error {
	if _, ok := m.donations[donation.ID]; !ok {
		return sql.ErrNoRows
	}
	m.donations[donation.ID] = donation
	return nil
}

func (m *mockDonationRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.donations[id]; !ok {
		return sql.ErrNoRows
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockDonationRepo) ListByUser(ctx context.Context, userID string) ([]models.Donation, error) {
	var out []models.Donation
	for _, donation := range m.donations {
		if donation.UserID != nil && *donation.UserID == userID {
			out = append(out, *donation)
		}
	}
	return out, nil
}

func donationOwnedBy(id, owner string) *models.Donation {
	return &models.Donation{
		ID:         id,
		Amount:     decimal.RequireFromString("25.00"),
		DonorName:  "Dana",
		DonorEmail: "dana@example.com",
		UserID:     &owner,
	}
}

func TestDonationServiceCreateTagsEmployeeOwner(t *testing.T) {
	repo := &mockDonationRepo{}
	svc := NewDonationService(repo, nil, nil, nil, nil)

	donation, err := svc.Create(context.Background(), employeeSubject, CreateDonationRequest{
		Amount:     "50.25",
		DonorName:  "Dana",
		DonorEmail: "dana@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, donation.UserID)
	assert.Equal(t, employeeSubject.UserID, *donation.UserID)
	assert.True(t, donation.Amount.Equal(decimal.RequireFromString("50.25")))
}

func TestDonationServiceCreateAdminLeavesOwnerUnset(t *testing.T) {
	repo := &mockDonationRepo{}
	svc := NewDonationService(repo, nil, nil, nil, nil)

	donation, err := svc.Create(context.Background(), adminSubject, CreateDonationRequest{
		Amount:     "10",
		DonorName:  "Dana",
		DonorEmail: "dana@example.com",
	})
	require.NoError(t, err)
	assert.Nil(t, donation.UserID)
}

func TestDonationServiceCreateAmountValidation(t *testing.T) {
	svc := NewDonationService(&mockDonationRepo{}, nil, nil, nil, nil)

	cases := []struct {
		name   string
		amount string
		reason string
	}{
		{name: "not a number", amount: "lots", reason: "must be a valid decimal number"},
		{name: "negative", amount: "-5.00", reason: "must be greater than zero"},
		{name: "zero", amount: "0", reason: "must be greater than zero"},
		{name: "too precise", amount: "1.999", reason: "must have at most two decimal places"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), adminSubject, CreateDonationRequest{
				Amount:     tc.amount,
				DonorName:  "Dana",
				DonorEmail: "dana@example.com",
			})
			require.Error(t, err)
			appErr, ok := err.(*appErrors.Error)
			require.True(t, ok)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			require.NotEmpty(t, appErr.Details)
			assert.Equal(t, "amount", appErr.Details[0].Field)
			assert.Equal(t, tc.reason, appErr.Details[0].Reason)
		})
	}
}

func TestDonationServiceCreateMergesAmountAndFieldErrors(t *testing.T) {
	svc := NewDonationService(&mockDonationRepo{}, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), adminSubject, CreateDonationRequest{
		Amount:     "bad",
		DonorName:  "",
		DonorEmail: "not-an-email",
	})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)

	fields := make(map[string]bool)
	for _, detail := range appErr.Details {
		fields[detail.Field] = true
	}
	assert.True(t, fields["amount"])
	assert.True(t, fields["donor_name"])
	assert.True(t, fields["donor_email"])
}

func TestDonationServiceGetForeignRowSurfacesAsNotFound(t *testing.T) {
	repo := &mockDonationRepo{donations: map[string]*models.Donation{
		"don-1": donationOwnedBy("don-1", "emp-2"),
	}}
	svc := NewDonationService(repo, nil, nil, nil, nil)

	_, err := svc.Get(context.Background(), employeeSubject, "don-1")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	donation, err := svc.Get(context.Background(), adminSubject, "don-1")
	require.NoError(t, err)
	assert.Equal(t, "don-1", donation.ID)
}

func TestDonationServiceListScopesEmployeeToOwnRows(t *testing.T) {
	repo := &mockDonationRepo{donations: map[string]*models.Donation{
		"don-1": donationOwnedBy("don-1", "emp-1"),
		"don-2": donationOwnedBy("don-2", "emp-2"),
	}}
	svc := NewDonationService(repo, nil, nil, nil, nil)

	donations, _, err := svc.List(context.Background(), employeeSubject, models.DonationFilter{})
	require.NoError(t, err)
	require.Len(t, donations, 1)
	assert.Equal(t, "don-1", donations[0].ID)
	require.NotNil(t, repo.listFilter.OwnerID)
	assert.Equal(t, "emp-1", *repo.listFilter.OwnerID)
}

func TestDonationServiceDeleteForbiddenForEmployee(t *testing.T) {
	repo := &mockDonationRepo{donations: map[string]*models.Donation{
		"don-1": donationOwnedBy("don-1", "emp-1"),
	}}
	svc := NewDonationService(repo, nil, nil, nil, nil)

	err := svc.Delete(context.Background(), employeeSubject, "don-1")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.Delete(context.Background(), adminSubject, "don-1"))
	assert.Equal(t, []string{"don-1"}, repo.deleted)
}

func TestDonationServiceListByUserOwnershipCheck(t *testing.T) {
	repo := &mockDonationRepo{donations: map[string]*models.Donation{
		"don-1": donationOwnedBy("don-1", "emp-2"),
	}}
	svc := NewDonationService(repo, nil, nil, nil, nil)

	_, err := svc.ListByUser(context.Background(), employeeSubject, "emp-2")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	donations, err := svc.ListByUser(context.Background(), adminSubject, "emp-2")
	require.NoError(t, err)
	assert.Len(t, donations, 1)
}
