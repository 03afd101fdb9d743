package models

import "time"

// PetGender enumerates the recorded genders for shelter animals.
type PetGender string

const (
	PetGenderMale   PetGender = "male"
	PetGenderFemale PetGender = "female"
)

// PetStatus enumerates the lifecycle states of a shelter animal.
type PetStatus string

const (
	PetStatusAvailable PetStatus = "available"
	PetStatusAdopted   PetStatus = "adopted"
	PetStatusFoster    PetStatus = "foster"
)

// Pet represents an animal record stored in the pets table.
type Pet struct {
	ID          string    `db:"pet_id" json:"id"`
	Name        string    `db:"pet_name" json:"name"`
	Breed       string    `db:"breed" json:"breed"`
	Age         int       `db:"age" json:"age"`
	Gender      PetGender `db:"gender" json:"gender"`
	Status      PetStatus `db:"status" json:"status"`
	Description *string   `db:"description" json:"description,omitempty"`
	ImageURL    *string   `db:"img_url" json:"image_url,omitempty"`
	ShelterCode *string   `db:"shelter_no" json:"shelter_code,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PetFilter captures filtering criteria for listing pets.
type PetFilter struct {
	Status    *PetStatus
	Search    string
	Page      int
	PageSize  int
	SortOrder string
}
