package models

import "time"

// Adoption represents a completed adoption stored in the adoptions table.
// UserID references the employee who processed the adoption and is nil for
// admin-entered rows.
type Adoption struct {
	ID           string    `db:"id" json:"id"`
	AdopterName  string    `db:"adopt_name" json:"adopter_name"`
	AdopterEmail string    `db:"adopt_email" json:"adopter_email"`
	AdopterPhone *string   `db:"adopt_phone" json:"adopter_phone,omitempty"`
	PetID        string    `db:"pet_id" json:"pet_id"`
	Address      *string   `db:"address" json:"address,omitempty"`
	UserID       *string   `db:"user_id" json:"user_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AdoptionFilter captures filtering criteria for listing adoptions.
type AdoptionFilter struct {
	OwnerID   *string
	PetID     *string
	Page      int
	PageSize  int
	SortOrder string
}
