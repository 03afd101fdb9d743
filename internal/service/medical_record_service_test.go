package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenpaws/shelter-api/internal/models"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
)

type mockMedicalRepo struct {
	records map[string]*models.MedicalRecord
	created *models.MedicalRecord
	deleted []string
}

func (m *mockMedicalRepo) List(ctx context.Context, filter models.MedicalRecordFilter) ([]models.MedicalRecord, int, error) {
	out := make([]models.MedicalRecord, 0, len(m.records))
	for _, record := range m.records {
		out = append(out, *record)
	}
	return out, len(out), nil
}

func (m *mockMedicalRepo) FindByID(ctx context.Context, id string) (*models.MedicalRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *record
	return &copied, nil
}

func (m *mockMedicalRepo) Create(ctx context.Context, record *models.MedicalRecord) error {
	record.ID = "mr-1"
	m.created = record
	return nil
}

func (m *mockMedicalRepo) Update(ctx context.Context, record *models.MedicalRecord) error {
	if _, ok := m.records[record.ID]; !ok {
		return sql.ErrNoRows
	}
	m.records[record.ID] = record
	return nil
}

func (m *mockMedicalRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return sql.ErrNoRows
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockMedicalRepo) ListByPet(ctx context.Context, petID string) ([]models.MedicalRecord, error) {
	var out []models.MedicalRecord
	for _, record := range m.records {
		if record.PetID == petID {
			out = append(out, *record)
		}
	}
	return out, nil
}

type mockDonationChecker struct {
	exists bool
}

func (m *mockDonationChecker) Exists(ctx context.Context, id string) (bool, error) {
	return m.exists, nil
}

func newMedicalService(repo *mockMedicalRepo, petExists, donationExists bool) *MedicalRecordService {
	return NewMedicalRecordService(repo, &mockPetChecker{exists: petExists}, &mockDonationChecker{exists: donationExists}, nil, nil, nil)
}

func TestMedicalRecordServiceCreate(t *testing.T) {
	repo := &mockMedicalRepo{}
	svc := newMedicalService(repo, true, true)

	record, err := svc.Create(context.Background(), adminSubject, CreateMedicalRecordRequest{
		PetID:         "pet-1",
		TreatmentType: "vaccination",
		TreatDate:     "2026-03-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "mr-1", record.ID)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), record.TreatDate)
}

func TestMedicalRecordServiceCreateBadDate(t *testing.T) {
	svc := newMedicalService(&mockMedicalRepo{}, true, true)

	_, err := svc.Create(context.Background(), adminSubject, CreateMedicalRecordRequest{
		PetID:         "pet-1",
		TreatmentType: "vaccination",
		TreatDate:     "15/03/2026",
	})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	require.NotEmpty(t, appErr.Details)
	assert.Equal(t, "treat_date", appErr.Details[0].Field)
}

func TestMedicalRecordServiceCreateMergesDateAndFieldErrors(t *testing.T) {
	svc := newMedicalService(&mockMedicalRepo{}, true, true)

	_, err := svc.Create(context.Background(), adminSubject, CreateMedicalRecordRequest{
		PetID:         "pet-1",
		TreatmentType: "",
		TreatDate:     "not-a-date",
	})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)

	fields := make(map[string]bool)
	for _, detail := range appErr.Details {
		fields[detail.Field] = true
	}
	assert.True(t, fields["treatment_type"])
	assert.True(t, fields["treat_date"])
}

func TestMedicalRecordServiceCreateUnknownPet(t *testing.T) {
	svc := newMedicalService(&mockMedicalRepo{}, false, true)

	_, err := svc.Create(context.Background(), adminSubject, CreateMedicalRecordRequest{
		PetID:         "nope",
		TreatmentType: "vaccination",
		TreatDate:     "2026-03-15",
	})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrReference.Code, appErr.Code)
	assert.Equal(t, "pet_id", appErr.Details[0].Field)
}

func TestMedicalRecordServiceCreateUnknownDonation(t *testing.T) {
	svc := newMedicalService(&mockMedicalRepo{}, true, false)

	_, err := svc.Create(context.Background(), adminSubject, CreateMedicalRecordRequest{
		PetID:         "pet-1",
		TreatmentType: "surgery",
		TreatDate:     "2026-03-15",
		DonationID:    strPtr("don-404"),
	})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrReference.Code, appErr.Code)
	assert.Equal(t, "donation_id", appErr.Details[0].Field)
}

func TestMedicalRecordServiceMutationsForbiddenForEmployee(t *testing.T) {
	repo := &mockMedicalRepo{records: map[string]*models.MedicalRecord{
		"mr-1": {ID: "mr-1", PetID: "pet-1", TreatmentType: "vaccination"},
	}}
	svc := newMedicalService(repo, true, true)

	_, err := svc.Create(context.Background(), employeeSubject, CreateMedicalRecordRequest{
		PetID:         "pet-1",
		TreatmentType: "vaccination",
		TreatDate:     "2026-03-15",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Update(context.Background(), employeeSubject, "mr-1", UpdateMedicalRecordRequest{
		PetID:         "pet-1",
		TreatmentType: "vaccination",
		TreatDate:     "2026-03-15",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	err = svc.Delete(context.Background(), employeeSubject, "mr-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Empty(t, repo.deleted)
}

func TestMedicalRecordServiceReadableByEmployee(t *testing.T) {
	repo := &mockMedicalRepo{records: map[string]*models.MedicalRecord{
		"mr-1": {ID: "mr-1", PetID: "pet-1", TreatmentType: "vaccination"},
	}}
	svc := newMedicalService(repo, true, true)

	record, err := svc.Get(context.Background(), employeeSubject, "mr-1")
	require.NoError(t, err)
	assert.Equal(t, "mr-1", record.ID)

	records, err := svc.ListByPet(context.Background(), employeeSubject, "pet-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
