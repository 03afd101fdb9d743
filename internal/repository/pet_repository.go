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

const petColumns = `pet_id, pet_name, breed, age, gender, status, description, img_url, shelter_no, created_at`

// PetRepository provides database access for pet records.
type PetRepository struct {
	db *sqlx.DB
}

// NewPetRepository creates a new instance of PetRepository.
func NewPetRepository(db *sqlx.DB) *PetRepository {
	return &PetRepository{db: db}
}

// List returns pets matching the filter with the total count. Results are
// ordered by creation time, newest first unless asked otherwise.
func (r *PetRepository) List(ctx context.Context, filter models.PetFilter) ([]models.Pet, int, error) {
	baseQuery := `FROM pets WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(pet_name) LIKE $%d OR LOWER(breed) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at %s LIMIT %d OFFSET %d", petColumns, baseQuery, sortOrder, pageSize, offset)

	var pets []models.Pet
	if err := r.db.SelectContext(ctx, &pets, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list pets: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count pets: %w", err)
	}

	return pets, total, nil
}

// FindByID returns a pet by identifier.
func (r *PetRepository) FindByID(ctx context.Context, id string) (*models.Pet, error) {
	query := fmt.Sprintf(`SELECT %s FROM pets WHERE pet_id = $1 LIMIT 1`, petColumns)
	var pet models.Pet
	if err := r.db.GetContext(ctx, &pet, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find pet by id: %w", err)
	}
	return &pet, nil
}

// Exists reports whether a pet row exists for the given id.
func (r *PetRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM pets WHERE pet_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check pet exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new pet and fills in the generated identifier.
func (r *PetRepository) Create(ctx context.Context, pet *models.Pet) error {
	if pet.ID == "" {
		pet.ID = uuid.NewString()
	}
	if pet.CreatedAt.IsZero() {
		pet.CreatedAt = time.Now().UTC()
	}
	if pet.Status == "" {
		pet.Status = models.PetStatusAvailable
	}

	const query = `INSERT INTO pets (pet_id, pet_name, breed, age, gender, status, description, img_url, shelter_no, created_at) VALUES (:pet_id, :pet_name, :breed, :age, :gender, :status, :description, :img_url, :shelter_no, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, pet); err != nil {
		return fmt.Errorf("create pet: %w", err)
	}
	return nil
}

// Update replaces all mutable fields of a pet.
func (r *PetRepository) Update(ctx context.Context, pet *models.Pet) error {
	const query = `UPDATE pets SET pet_name = :pet_name, breed = :breed, age = :age, gender = :gender, status = :status, description = :description, img_url = :img_url, shelter_no = :shelter_no WHERE pet_id = :pet_id`
	res, err := r.db.NamedExecContext(ctx, query, pet)
	if err != nil {
		return fmt.Errorf("update pet: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a pet together with its medical records and adoptions. All
// three deletes run in one transaction; any failure rolls back the whole set.
func (r *PetRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin pet delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM medical_records WHERE pet_id = $1`, id); err != nil {
		return fmt.Errorf("delete pet medical records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM adoptions WHERE pet_id = $1`, id); err != nil {
		return fmt.Errorf("delete pet adoptions: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM pets WHERE pet_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete pet: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pet delete: %w", err)
	}
	return nil
}

// Count returns the total number of pet rows.
func (r *PetRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM pets`); err != nil {
		return 0, fmt.Errorf("count pets: %w", err)
	}
	return total, nil
}

// ListAll returns up to limit pets without pagination, newest first. Used by
// the export path, which needs the whole dataset in one query.
func (r *PetRepository) ListAll(ctx context.Context, limit int) ([]models.Pet, error) {
	query := fmt.Sprintf(`SELECT %s FROM pets ORDER BY created_at DESC LIMIT $1`, petColumns)
	var pets []models.Pet
	if err := r.db.SelectContext(ctx, &pets, query, limit); err != nil {
		return nil, fmt.Errorf("list all pets: %w", err)
	}
	return pets, nil
}

// ListRecent returns the most recently created pets.
func (r *PetRepository) ListRecent(ctx context.Context, limit int) ([]models.Pet, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT %s FROM pets ORDER BY created_at DESC LIMIT $1`, petColumns)
	var pets []models.Pet
	if err := r.db.SelectContext(ctx, &pets, query, limit); err != nil {
		return nil, fmt.Errorf("list recent pets: %w", err)
	}
	return pets, nil
}
