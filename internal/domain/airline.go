package domain

type Airline struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required,max=100"`
	Code        string `json:"code" validate:"max=10"`
	Description string `json:"description,omitempty" validate:"max=200"`
}
