package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/havenpaws/shelter-api/internal/models"
)

const medicalRecordColumns = `id, pet_id, treatment_type, treat_date, donation_id, vaccines, description, created_at`

// MedicalRecordRepository provides database access for medical records.
type MedicalRecordRepository struct {
	db *sqlx.DB
}

// NewMedicalRecordRepository creates a new instance of MedicalRecordRepository.
func NewMedicalRecordRepository(db *sqlx.DB) *MedicalRecordRepository {
	return &MedicalRecordRepository{db: db}
}

// List returns medical records matching the filter with the total count.
// Records sort by creation time or treatment date, newest first by default.
func (r *MedicalRecordRepository) List(ctx context.Context, filter models.MedicalRecordFilter) ([]models.MedicalRecord, int, error) {
	baseQuery := `FROM medical_records WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.PetID != nil {
		conditions = append(conditions, fmt.Sprintf("pet_id = $%d", len(args)+1))
		args = append(args, *filter.PetID)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy != "treat_date" {
		sortBy = "created_at"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", medicalRecordColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var records []models.MedicalRecord
	if err := r.db.SelectContext(ctx, &records, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list medical records: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count medical records: %w", err)
	}

	return records, total, nil
}

// FindByID returns a medical record by identifier.
func (r *MedicalRecordRepository) FindByID(ctx context.Context, id string) (*models.MedicalRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM medical_records WHERE id = $1 LIMIT 1`, medicalRecordColumns)
	var record models.MedicalRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find medical record by id: %w", err)
	}
	return &record, nil
}

// Create inserts a new medical record and fills in the generated identifier.
func (r *MedicalRecordRepository) Create(ctx context.Context, record *models.MedicalRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO medical_records (id, pet_id, treatment_type, treat_date, donation_id, vaccines, description, created_at) VALUES (:id, :pet_id, :treatment_type, :treat_date, :donation_id, :vaccines, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create medical record: %w", err)
	}
	return nil
}

// Update replaces all mutable fields of a medical record.
func (r *MedicalRecordRepository) Update(ctx context.Context, record *models.MedicalRecord) error {
	const query = `UPDATE medical_records SET pet_id = :pet_id, treatment_type = :treatment_type, treat_date = :treat_date, donation_id = :donation_id, vaccines = :vaccines, description = :description WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("update medical record: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a medical record row.
func (r *MedicalRecordRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete medical record: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the total number of medical record rows.
func (r *MedicalRecordRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM medical_records`); err != nil {
		return 0, fmt.Errorf("count medical records: %w", err)
	}
	return total, nil
}

// ListByPet returns every medical record for the given pet ordered by
// treatment date, most recent treatment first.
func (r *MedicalRecordRepository) ListByPet(ctx context.Context, petID string) ([]models.MedicalRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM medical_records WHERE pet_id = $1 ORDER BY treat_date DESC`, medicalRecordColumns)
	var records []models.MedicalRecord
	if err := r.db.SelectContext(ctx, &records, query, petID); err != nil {
		return nil, fmt.Errorf("list medical records by pet: %w", err)
	}
	return records, nil
}

// ListAll returns up to limit medical records without pagination, newest
// first. Used by the export path, which needs the whole dataset in one query.
func (r *MedicalRecordRepository) ListAll(ctx context.Context, limit int) ([]models.MedicalRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM medical_records ORDER BY created_at DESC LIMIT $1`, medicalRecordColumns)
	var records []models.MedicalRecord
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("list all medical records: %w", err)
	}
	return records, nil
}

// ListRecent returns the most recently created medical records.
func (r *MedicalRecordRepository) ListRecent(ctx context.Context, limit int) ([]models.MedicalRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT %s FROM medical_records ORDER BY created_at DESC LIMIT $1`, medicalRecordColumns)
	var records []models.MedicalRecord
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("list recent medical records: %w", err)
	}
	return records, nil
}
