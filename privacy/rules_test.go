package privacy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/querykit"
	"github.com/syssam/querykit/memory"
	"github.com/syssam/querykit/privacy"
	"github.com/syssam/querykit/query"
	"github.com/syssam/querykit/service"
)

// TestSimpleViewer tests the SimpleViewer implementation.
func TestSimpleViewer(t *testing.T) {
	viewer := &privacy.SimpleViewer{
		UserID:   "user-123",
		Roles:    []string{"admin", "user"},
		TenantID: "tenant-abc",
	}

	assert.Equal(t, "user-123", viewer.GetID())
	assert.Equal(t, []string{"admin", "user"}, viewer.GetRoles())
	assert.Equal(t, "tenant-abc", viewer.GetTenantID())
}

// TestViewerContext tests viewer context functions.
func TestViewerContext(t *testing.T) {
	t.Run("WithViewer_and_ViewerFromContext", func(t *testing.T) {
		viewer := &privacy.SimpleViewer{UserID: "user-123"}
		ctx := privacy.WithViewer(context.Background(), viewer)

		retrieved := privacy.ViewerFromContext(ctx)
		require.NotNil(t, retrieved)
		assert.Equal(t, "user-123", retrieved.GetID())
	})

	t.Run("ViewerFromContext_returns_nil_without_viewer", func(t *testing.T) {
		assert.Nil(t, privacy.ViewerFromContext(context.Background()))
	})

	t.Run("ViewerFromContext_returns_nil_with_wrong_type", func(t *testing.T) {
		type wrongKey struct{}
		ctx := context.WithValue(context.Background(), wrongKey{}, "not a viewer")
		assert.Nil(t, privacy.ViewerFromContext(ctx))
	})
}

// TestDenyIfNoViewer tests the DenyIfNoViewer rule.
func TestDenyIfNoViewer(t *testing.T) {
	rule := privacy.DenyIfNoViewer[todo]()

	t.Run("denies_without_viewer", func(t *testing.T) {
		_, err := rule.Eval(context.Background(), privacy.OpRead)
		assert.True(t, errors.Is(err, privacy.Deny))
	})

	t.Run("skips_with_viewer", func(t *testing.T) {
		ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "user-123"})
		_, err := rule.Eval(ctx, privacy.OpRead)
		assert.True(t, errors.Is(err, privacy.Skip))
	})
}

// TestHasAnyRole tests the HasRole and HasAnyRole rules.
func TestHasAnyRole(t *testing.T) {
	tests := []struct {
		name      string
		viewer    privacy.Viewer
		rule      privacy.Rule[todo]
		wantAllow bool
	}{
		{
			name:      "has_role",
			viewer:    &privacy.SimpleViewer{Roles: []string{"admin"}},
			rule:      privacy.HasRole[todo]("admin"),
			wantAllow: true,
		},
		{
			name:   "lacks_role",
			viewer: &privacy.SimpleViewer{Roles: []string{"user"}},
			rule:   privacy.HasRole[todo]("admin"),
		},
		{
			name:      "has_any_role",
			viewer:    &privacy.SimpleViewer{Roles: []string{"editor"}},
			rule:      privacy.HasAnyRole[todo]("admin", "editor"),
			wantAllow: true,
		},
		{
			name: "no_viewer",
			rule: privacy.HasAnyRole[todo]("admin"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.viewer != nil {
				ctx = privacy.WithViewer(ctx, tt.viewer)
			}
			_, err := tt.rule.Eval(ctx, privacy.OpRead)
			if tt.wantAllow {
				assert.True(t, errors.Is(err, privacy.Allow))
			} else {
				assert.True(t, errors.Is(err, privacy.Skip))
			}
		})
	}
}

// TestOwnerFilter tests owner narrowing.
func TestOwnerFilter(t *testing.T) {
	rule := privacy.OwnerFilter[todo]("ownerId")

	_, err := rule.Eval(context.Background(), privacy.OpRead)
	assert.True(t, errors.Is(err, privacy.Deny))

	ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "u1"})
	f, err := rule.Eval(ctx, privacy.OpUpdate)
	assert.True(t, errors.Is(err, privacy.Skip))
	assert.Equal(t, query.Where[todo]("ownerId", query.Eq("u1")), f)
}

// TestTenantFilter tests tenant narrowing.
func TestTenantFilter(t *testing.T) {
	rule := privacy.TenantFilter[todo]("tenantId")

	_, err := rule.Eval(context.Background(), privacy.OpRead)
	assert.True(t, errors.Is(err, privacy.Deny))

	ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "u1"})
	_, err = rule.Eval(ctx, privacy.OpRead)
	require.True(t, errors.Is(err, privacy.Deny))
	assert.Contains(t, err.Error(), "tenant required")

	ctx = privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "u1", TenantID: "t1"})
	f, err := rule.Eval(ctx, privacy.OpRead)
	assert.True(t, errors.Is(err, privacy.Skip))
	assert.Equal(t, query.Where[todo]("tenantId", query.Eq("t1")), f)
}

func newAuthorizedTodos() (*privacy.AuthorizedQueryService[todo], *memory.Store[todo]) {
	store := memory.NewStore(func(t todo) any { return t.ID }, memory.WithRecords(
		todo{ID: "1", Title: "a", OwnerID: "u1", TenantID: "t1"},
		todo{ID: "2", Title: "b", OwnerID: "u2", TenantID: "t1"},
		todo{ID: "3", Title: "c", OwnerID: "u1", TenantID: "t2"},
		todo{ID: "4", Title: "d", OwnerID: "u1", TenantID: "t1", Archived: true},
	))
	policy := privacy.NewPolicy(
		privacy.DenyIfNoViewer[todo](),
		privacy.DenyOperationRule[todo](privacy.OpDelete),
		privacy.TenantFilter[todo]("tenantId"),
		privacy.HasRole[todo]("admin"),
		privacy.OwnerFilter[todo]("ownerId"),
	)
	return privacy.NewAuthorizedQueryService[todo](store, policy), store
}

func ids(ts []todo) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

// TestAuthorizedQueryService tests policies applied to a query service.
func TestAuthorizedQueryService(t *testing.T) {
	u1 := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "u1", TenantID: "t1"})
	admin := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "u9", TenantID: "t1", Roles: []string{"admin"}})

	t.Run("reads_are_narrowed", func(t *testing.T) {
		svc, _ := newAuthorizedTodos()

		got, err := svc.Query(u1, query.Query[todo]{
			Filter:  query.Where[todo]("archived", query.Is(false)),
			Sorting: []query.SortField{query.Desc("id")},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, ids(got))

		got, err = svc.Query(admin, query.Query[todo]{Sorting: []query.SortField{query.Asc("id")}})
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "4"}, ids(got))

		n, err := svc.Count(u1, query.Filter[todo]{})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		aggs, err := svc.Aggregate(u1, query.Filter[todo]{}, query.AggregateQuery[todo]{Count: []string{"id"}})
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"id": 2}, aggs[0].Count)

		_, ok, err := svc.FindByID(u1, "2", query.Filter[todo]{})
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = svc.GetByID(u1, "3", query.Filter[todo]{})
		assert.True(t, querykit.IsNotFound(err))

		rec, err := svc.GetByID(u1, "1", query.Filter[todo]{})
		require.NoError(t, err)
		assert.Equal(t, "a", rec.Title)
	})

	t.Run("no_viewer_is_denied", func(t *testing.T) {
		svc, _ := newAuthorizedTodos()
		ctx := context.Background()

		_, err := svc.Query(ctx, query.Query[todo]{})
		assert.True(t, errors.Is(err, privacy.Deny))
		_, err = svc.CreateOne(ctx, todo{ID: "5"})
		assert.True(t, errors.Is(err, privacy.Deny))
		_, err = svc.CreateMany(ctx, []todo{{ID: "5"}})
		assert.True(t, errors.Is(err, privacy.Deny))
	})

	t.Run("writes_are_narrowed", func(t *testing.T) {
		svc, store := newAuthorizedTodos()

		_, err := svc.UpdateOne(u1, "2", service.Update{"title": "stolen"}, query.Filter[todo]{})
		assert.True(t, querykit.IsNotFound(err))

		rec, err := svc.UpdateOne(u1, "1", service.Update{"title": "mine"}, query.Filter[todo]{})
		require.NoError(t, err)
		assert.Equal(t, "mine", rec.Title)

		n, err := svc.UpdateMany(u1, service.Update{"archived": true}, query.Filter[todo]{})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		other, err := store.GetByID(context.Background(), "3", query.Filter[todo]{})
		require.NoError(t, err)
		assert.False(t, other.Archived, "records of other tenants are untouched")

		_, err = svc.CreateOne(u1, todo{ID: "5", OwnerID: "u1", TenantID: "t1"})
		require.NoError(t, err)
		assert.Equal(t, 5, store.Len())
	})

	t.Run("deletes_are_denied", func(t *testing.T) {
		svc, store := newAuthorizedTodos()

		_, err := svc.DeleteOne(admin, "1", query.Filter[todo]{})
		assert.True(t, errors.Is(err, privacy.Deny))
		_, err = svc.DeleteMany(u1, query.Filter[todo]{})
		assert.True(t, errors.Is(err, privacy.Deny))
		assert.Equal(t, 4, store.Len())
	})

	t.Run("relation_writes_are_checked", func(t *testing.T) {
		svc, _ := newAuthorizedTodos()

		_, err := svc.AddRelations(context.Background(), "tags", "1", []any{"x"}, query.Filter[todo]{})
		assert.True(t, errors.Is(err, privacy.Deny))

		_, err = svc.SetRelation(u1, "tags", "1", "x", query.Filter[todo]{})
		assert.True(t, querykit.IsNotImplemented(err))
	})
}
