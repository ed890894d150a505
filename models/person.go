package models

import "time"

const PersonTable = "lib_persons"
const PersonTypeTable = "lib_person_types"

// Person type names with special lending rules.
const (
	PersonTypeStudent = "student"
	PersonTypeTeacher = "teacher"
)

// Person is consumed read-only by the loan core; the person module owns it.
type Person struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string `gorm:"size:200;not null" json:"name"`
	PersonType string `gorm:"size:30;index;not null;default:'student'" json:"personType"`
	Active     bool   `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PersonType is reference data; an inactive type blocks borrowing for all of
// its persons.
type PersonType struct {
	Name        string `gorm:"size:30;primaryKey" json:"name"`
	Description string `gorm:"size:200" json:"description"`
	Active      bool   `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Person) TableName() string     { return PersonTable }
func (PersonType) TableName() string { return PersonTypeTable }
