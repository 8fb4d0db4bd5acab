package projects

import (
	"time"

	"github.com/jrsteele09/go-dashboard/internal/utils"
)

// Project always belongs to exactly one organisation
type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	OrganisationID string    `json:"organisation_id"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p *Project) Clone() *Project {
	c := *p
	c.Description = utils.ClonePtr(p.Description)
	return &c
}
