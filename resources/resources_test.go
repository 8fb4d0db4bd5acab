package resources_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/internal/utils"
	"github.com/jrsteele09/go-dashboard/resources"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, resources.ValidateType(resources.TypeDatabase))
	require.Error(t, resources.ValidateType("QUANTUM"))
	require.NoError(t, resources.ValidateStatus(resources.StatusPaused))
	require.Error(t, resources.ValidateStatus(""))
}

func TestInMemoryRepo(t *testing.T) {
	ctx := context.Background()
	repo := resources.NewInMemoryRepo()

	db := &resources.Resource{
		Name:           "primary-db",
		Type:           resources.TypeDatabase,
		Status:         resources.StatusActive,
		Endpoint:       utils.Ptr("postgres://db.internal:5432"),
		OrganisationID: "org-1",
		OwnerID:        "u1",
	}
	require.NoError(t, repo.Create(ctx, db))

	t.Run("organisation and owner are required", func(t *testing.T) {
		require.ErrorIs(t, repo.Create(ctx, &resources.Resource{Name: "x", OwnerID: "u1"}), errors.ErrInvalidInput)
		require.ErrorIs(t, repo.Create(ctx, &resources.Resource{Name: "x", OrganisationID: "org-1"}), errors.ErrInvalidInput)
	})

	t.Run("update keeps scope and owner", func(t *testing.T) {
		got, err := repo.GetByID(ctx, db.ID)
		require.NoError(t, err)
		got.Status = resources.StatusPaused
		got.OwnerID = "u2"
		got.OrganisationID = "org-2"
		require.NoError(t, repo.Update(ctx, got))

		again, err := repo.GetByID(ctx, db.ID)
		require.NoError(t, err)
		require.Equal(t, resources.StatusPaused, again.Status)
		require.Equal(t, "u1", again.OwnerID)
		require.Equal(t, "org-1", again.OrganisationID)
		require.Equal(t, "postgres://db.internal:5432", *again.Endpoint)
	})

	t.Run("list scoped to organisation", func(t *testing.T) {
		list, err := repo.ListByOrganisation(ctx, "org-1")
		require.NoError(t, err)
		require.Len(t, list, 1)

		empty, err := repo.ListByOrganisation(ctx, "org-2")
		require.NoError(t, err)
		require.Empty(t, empty)
	})

	_, err := repo.GetByID(ctx, "nope")
	require.ErrorIs(t, err, errors.ErrNotFound)
}
