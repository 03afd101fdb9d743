package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/havenpaws/shelter-api/internal/models"
)

// ErrPetNotAvailable signals that the referenced pet was not in the
// available state when the adoption was attempted.
var ErrPetNotAvailable = errors.New("pet not available")

const adoptionColumns = `id, adopt_name, adopt_email, adopt_phone, pet_id, address, user_id, created_at`

// AdoptionRepository provides database access for adoption records.
type AdoptionRepository struct {
	db *sqlx.DB
}

// NewAdoptionRepository creates a new instance of AdoptionRepository.
func NewAdoptionRepository(db *sqlx.DB) *AdoptionRepository {
	return &AdoptionRepository{db: db}
}

// List returns adoptions matching the filter with the total count, newest
// first by default.
func (r *AdoptionRepository) List(ctx context.Context, filter models.AdoptionFilter) ([]models.Adoption, int, error) {
	baseQuery := `FROM adoptions WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, *filter.OwnerID)
	}
	if filter.PetID != nil {
		conditions = append(conditions, fmt.Sprintf("pet_id = $%d", len(args)+1))
		args = append(args, *filter.PetID)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at %s LIMIT %d OFFSET %d", adoptionColumns, baseQuery, sortOrder, pageSize, offset)

	var adoptions []models.Adoption
	if err := r.db.SelectContext(ctx, &adoptions, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list adoptions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count adoptions: %w", err)
	}

	return adoptions, total, nil
}

// FindByID returns an adoption by identifier.
func (r *AdoptionRepository) FindByID(ctx context.Context, id string) (*models.Adoption, error) {
	query := fmt.Sprintf(`SELECT %s FROM adoptions WHERE id = $1 LIMIT 1`, adoptionColumns)
	var adoption models.Adoption
	if err := r.db.GetContext(ctx, &adoption, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find adoption by id: %w", err)
	}
	return &adoption, nil
}

// Create inserts the adoption and flips the referenced pet from available to
// adopted in the same transaction. The status change is a single conditional
// update guarded by its affected-row count, so two concurrent attempts
// against one pet cannot both succeed; the loser gets ErrPetNotAvailable.
func (r *AdoptionRepository) Create(ctx context.Context, adoption *models.Adoption) error {
	if adoption.ID == "" {
		adoption.ID = uuid.NewString()
	}
	if adoption.CreatedAt.IsZero() {
		adoption.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin adoption create: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `UPDATE pets SET status = $1 WHERE pet_id = $2 AND status = $3`,
		models.PetStatusAdopted, adoption.PetID, models.PetStatusAvailable)
	if err != nil {
		return fmt.Errorf("mark pet adopted: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark pet adopted: %w", err)
	}
	if affected == 0 {
		return ErrPetNotAvailable
	}

	const insert = `INSERT INTO adoptions (id, adopt_name, adopt_email, adopt_phone, pet_id, address, user_id, created_at) VALUES (:id, :adopt_name, :adopt_email, :adopt_phone, :pet_id, :address, :user_id, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, adoption); err != nil {
		return fmt.Errorf("create adoption: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit adoption create: %w", err)
	}
	return nil
}

// Update replaces the adopter contact fields and address. The pet reference
// and recording user are immutable after creation.
func (r *AdoptionRepository) Update(ctx context.Context, adoption *models.Adoption) error {
	const query = `UPDATE adoptions SET adopt_name = :adopt_name, adopt_email = :adopt_email, adopt_phone = :adopt_phone, address = :address WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, adoption)
	if err != nil {
		return fmt.Errorf("update adoption: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an adoption row.
func (r *AdoptionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM adoptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete adoption: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the total number of adoption rows. A non-nil ownerID limits
// the count to rows recorded by that user.
func (r *AdoptionRepository) Count(ctx context.Context, ownerID *string) (int, error) {
	var total int
	if ownerID != nil {
		if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM adoptions WHERE user_id = $1`, *ownerID); err != nil {
			return 0, fmt.Errorf("count adoptions by user: %w", err)
		}
		return total, nil
	}
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM adoptions`); err != nil {
		return 0, fmt.Errorf("count adoptions: %w", err)
	}
	return total, nil
}

// ListAll returns up to limit adoptions without pagination, newest first.
// Used by the export path, which needs the whole dataset in one query.
func (r *AdoptionRepository) ListAll(ctx context.Context, limit int) ([]models.Adoption, error) {
	query := fmt.Sprintf(`SELECT %s FROM adoptions ORDER BY created_at DESC LIMIT $1`, adoptionColumns)
	var adoptions []models.Adoption
	if err := r.db.SelectContext(ctx, &adoptions, query, limit); err != nil {
		return nil, fmt.Errorf("list all adoptions: %w", err)
	}
	return adoptions, nil
}

// ListRecent returns the most recent adoptions, optionally scoped to an owner.
func (r *AdoptionRepository) ListRecent(ctx context.Context, ownerID *string, limit int) ([]models.Adoption, error) {
	if limit <= 0 {
		limit = 5
	}
	var adoptions []models.Adoption
	if ownerID != nil {
		query := fmt.Sprintf(`SELECT %s FROM adoptions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, adoptionColumns)
		if err := r.db.SelectContext(ctx, &adoptions, query, *ownerID, limit); err != nil {
			return nil, fmt.Errorf("list recent adoptions by user: %w", err)
		}
		return adoptions, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM adoptions ORDER BY created_at DESC LIMIT $1`, adoptionColumns)
	if err := r.db.SelectContext(ctx, &adoptions, query, limit); err != nil {
		return nil, fmt.Errorf("list recent adoptions: %w", err)
	}
	return adoptions, nil
}
