package model

import "time"

// Prenom is a named participant. Prénoms are never removed, only deactivated.
type Prenom struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
