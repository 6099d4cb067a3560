package patient

import "time"

// Patient is a registered person whose lesions can be analyzed.
type Patient struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Age            int       `json:"age"`
	Gender         string    `json:"gender"`
	Contact        string    `json:"contact,omitempty"`
	Address        string    `json:"address,omitempty"`
	MedicalHistory string    `json:"medicalHistory,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// RegisterRequest captures a new patient registration.
type RegisterRequest struct {
	Name           string `json:"name"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	Contact        string `json:"contact"`
	Address        string `json:"address"`
	MedicalHistory string `json:"medicalHistory"`
}

// Update lists the fields to change; empty values are left untouched.
type Update struct {
	Name           string `json:"name"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	Contact        string `json:"contact"`
	Address        string `json:"address"`
	MedicalHistory string `json:"medicalHistory"`
}

// IsEmpty reports whether the update carries no changes.
func (u Update) IsEmpty() bool {
	return u.Name == "" && u.Age == 0 && u.Gender == "" && u.Contact == "" && u.Address == "" && u.MedicalHistory == ""
}

const (
	minAge = 1
	maxAge = 120
)

// Genders is the closed set accepted at registration.
var Genders = []string{"Male", "Female", "Other", "Prefer not to say"}
