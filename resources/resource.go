package resources

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-dashboard/internal/utils"
)

type ResourceType string

const (
	TypeDatabase ResourceType = "DATABASE"
	TypeAPI      ResourceType = "API"
	TypeStorage  ResourceType = "STORAGE"
	TypeCompute  ResourceType = "COMPUTE"
	TypeOther    ResourceType = "OTHER"
)

type Status string

const (
	StatusProvisioning Status = "PROVISIONING"
	StatusActive       Status = "ACTIVE"
	StatusPaused       Status = "PAUSED"
	StatusFailed       Status = "FAILED"
)

// Resource belongs to exactly one organisation and is owned by one user
type Resource struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    *string      `json:"description,omitempty"`
	Type           ResourceType `json:"type"`
	Status         Status       `json:"status"`
	Endpoint       *string      `json:"endpoint,omitempty"`
	OrganisationID string       `json:"organisation_id"`
	OwnerID        string       `json:"owner_id"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (r *Resource) Clone() *Resource {
	c := *r
	c.Description = utils.ClonePtr(r.Description)
	c.Endpoint = utils.ClonePtr(r.Endpoint)
	return &c
}

func ValidateType(t ResourceType) error {
	switch t {
	case TypeDatabase, TypeAPI, TypeStorage, TypeCompute, TypeOther:
		return nil
	}
	return fmt.Errorf("unknown resource type %q", t)
}

func ValidateStatus(s Status) error {
	switch s {
	case StatusProvisioning, StatusActive, StatusPaused, StatusFailed:
		return nil
	}
	return fmt.Errorf("unknown resource status %q", s)
}
