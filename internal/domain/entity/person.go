package entity

import "time"

// Person holds the fields doctors and patients share
type Person struct {
	FirstName string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(100);not null" json:"last_name"`
	Age       int    `gorm:"not null" json:"age"`
	Email     string `gorm:"type:varchar(255);not null;index" json:"email"`
}

// FullName returns first and last name separated by a space
func (p Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Doctor represents a doctor who can be assigned to appointments
type Doctor struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Person
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// Patient represents a patient who can be booked into appointments
type Patient struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Person
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Patient) TableName() string {
	return "patients"
}
