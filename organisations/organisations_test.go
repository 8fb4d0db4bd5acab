package organisations_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/internal/utils"
	"github.com/jrsteele09/go-dashboard/organisations"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	require.NoError(t, organisations.ValidateName("acme"))
	require.NoError(t, organisations.ValidateName("Acme_Corp-2.0"))
	require.Error(t, organisations.ValidateName(""))
	require.Error(t, organisations.ValidateName("-acme"))
	require.Error(t, organisations.ValidateName("acme/projects"))
	require.Error(t, organisations.ValidateName("a b"))
}

func TestInMemoryRepo(t *testing.T) {
	ctx := context.Background()
	repo := organisations.NewInMemoryRepo()

	acme := &organisations.Organisation{Name: "acme", OwnerID: "u1", IsActive: true, Description: utils.Ptr("Widgets")}
	require.NoError(t, repo.Create(ctx, acme))
	require.NotEmpty(t, acme.ID)
	require.NoError(t, repo.Create(ctx, &organisations.Organisation{Name: "beta", OwnerID: "u2", IsActive: true}))
	require.NoError(t, repo.Create(ctx, &organisations.Organisation{Name: "alpha", OwnerID: "u1"}))

	t.Run("name is unique", func(t *testing.T) {
		err := repo.Create(ctx, &organisations.Organisation{Name: "acme", OwnerID: "u3"})
		require.ErrorIs(t, err, errors.ErrConflict)
	})

	t.Run("get by name returns a copy", func(t *testing.T) {
		got, err := repo.GetByName(ctx, "acme")
		require.NoError(t, err)
		*got.Description = "changed"

		again, err := repo.GetByID(ctx, acme.ID)
		require.NoError(t, err)
		require.Equal(t, "Widgets", *again.Description)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.GetByName(ctx, "nope")
		require.ErrorIs(t, err, errors.ErrNotFound)
		require.ErrorIs(t, repo.SetActive(ctx, "nope", true), errors.ErrNotFound)
	})

	t.Run("list by owner is sorted", func(t *testing.T) {
		list, err := repo.ListByOwner(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, "acme", list[0].Name)
		require.Equal(t, "alpha", list[1].Name)
	})

	t.Run("rename keeps name index consistent", func(t *testing.T) {
		got, err := repo.GetByID(ctx, acme.ID)
		require.NoError(t, err)
		got.Name = "beta"
		require.ErrorIs(t, repo.Update(ctx, got), errors.ErrConflict)

		got.Name = "acme-corp"
		require.NoError(t, repo.Update(ctx, got))
		_, err = repo.GetByName(ctx, "acme")
		require.ErrorIs(t, err, errors.ErrNotFound)
		renamed, err := repo.GetByName(ctx, "acme-corp")
		require.NoError(t, err)
		require.Equal(t, acme.ID, renamed.ID)
	})

	t.Run("deactivate", func(t *testing.T) {
		require.NoError(t, repo.SetActive(ctx, acme.ID, false))
		got, err := repo.GetByID(ctx, acme.ID)
		require.NoError(t, err)
		require.False(t, got.IsActive)
	})

	t.Run("paging", func(t *testing.T) {
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 3, count)

		page, err := repo.List(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		require.Equal(t, "alpha", page[0].Name)
	})
}
