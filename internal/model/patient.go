package model

import (
	"time"
)

// IDTypeNationalID is the identifier type assigned to national_id on patient creation.
const IDTypeNationalID = "national_id"

type Patient struct {
	ID               int64     `db:"id" json:"id"`
	FullName         string    `db:"full_name" json:"full_name"`
	DateOfBirth      *Date     `db:"date_of_birth" json:"date_of_birth"`
	Sex              Sex       `db:"sex" json:"sex"`
	NoKnownAllergies bool      `db:"no_known_allergies" json:"no_known_allergies"`
	CreatedAt        time.Time `db:"created_at" json:"-"`
	UpdatedAt        time.Time `db:"updated_at" json:"-"`
}

type PatientIdentifier struct {
	ID        int64     `db:"id" json:"id"`
	PatientID int64     `db:"patient_id" json:"patient_id"`
	IDType    string    `db:"id_type" json:"id_type"`
	IDValue   string    `db:"id_value" json:"id_value"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NewPatient is the input of patient creation after defaults are applied.
type NewPatient struct {
	FullName         string
	DateOfBirth      *Date
	Sex              Sex
	NoKnownAllergies bool
	NationalID       *string
}

type CreatePatientRequest struct {
	FullName         string  `json:"full_name" binding:"required,max=255"`
	DateOfBirth      *Date   `json:"date_of_birth"`
	Sex              Sex     `json:"sex" binding:"omitempty,enum"`
	NoKnownAllergies bool    `json:"no_known_allergies"`
	NationalID       *string `json:"national_id" binding:"omitempty,max=100"`
}

// ToNewPatient applies request defaults.
func (r *CreatePatientRequest) ToNewPatient() NewPatient {
	sex := r.Sex
	if sex == "" {
		sex = SexUnknown
	}
	nationalID := r.NationalID
	if nationalID != nil && *nationalID == "" {
		nationalID = nil
	}
	return NewPatient{
		FullName:         r.FullName,
		DateOfBirth:      r.DateOfBirth,
		Sex:              sex,
		NoKnownAllergies: r.NoKnownAllergies,
		NationalID:       nationalID,
	}
}
