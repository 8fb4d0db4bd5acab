package organisations

import (
	"fmt"
	"regexp"
	"time"

	"github.com/jrsteele09/go-dashboard/internal/utils"
)

// Organisation is the top of the ownership hierarchy. Names are unique and appear in
// route paths, so lookups by name are the common case.
type Organisation struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,62}$`)

// ValidateName checks a name is usable as a single route path segment
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("name %q must be 1-63 characters of letters, digits, '.', '_' or '-'", name)
	}
	return nil
}

func (o *Organisation) Clone() *Organisation {
	c := *o
	c.Description = utils.ClonePtr(o.Description)
	return &c
}
