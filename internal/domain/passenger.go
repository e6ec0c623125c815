package domain

import "time"

type Passenger struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name" validate:"required,max=100"`
	LastName       string    `json:"last_name" validate:"required,max=100"`
	PassportNumber string    `json:"passport_number" validate:"required,max=20"`
	Email          string    `json:"email,omitempty" validate:"omitempty,email,max=200"`
	PhoneNumber    string    `json:"phone_number,omitempty" validate:"max=20"`
	DateOfBirth    time.Time `json:"date_of_birth"`
}

func (p Passenger) FullName() string {
	return p.FirstName + " " + p.LastName
}
