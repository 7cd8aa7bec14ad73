package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/academy-api/internal/models"
)

type mockChildLister struct {
	children map[string][]string
	calls    int
	err      error
}

func (m *mockChildLister) ListChildIDs(ctx context.Context, companyID string) ([]string, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.children[companyID], nil
}

func TestResolverSuperAdminUnbounded(t *testing.T) {
	lister := &mockChildLister{}
	r := NewResolver(lister, nil, 0, zap.NewNop())

	scope, err := r.Resolve(context.Background(), models.Principal{UserID: "u1", CompanyID: "c1", Role: models.RoleSuperAdmin})
	require.NoError(t, err)
	assert.True(t, scope.All())
	assert.True(t, scope.Allows("anything"))
	assert.Equal(t, 0, lister.calls, "unbounded scope must not touch the companies table")
}

func TestResolverOwnCompanyPlusDirectChildren(t *testing.T) {
	lister := &mockChildLister{children: map[string][]string{
		"c1": {"c2", "c3"},
		"c2": {"c4"},
	}}
	r := NewResolver(lister, nil, 0, zap.NewNop())

	scope, err := r.Resolve(context.Background(), models.Principal{UserID: "u1", CompanyID: "c1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.False(t, scope.All())
	assert.True(t, scope.Allows("c1"))
	assert.True(t, scope.Allows("c2"))
	assert.True(t, scope.Allows("c3"))
	assert.False(t, scope.Allows("c4"), "grandchild companies stay out of scope")
	assert.False(t, scope.Allows("unrelated"))
	assert.ElementsMatch(t, []string{"c1", "c2", "c3"}, scope.IDs())
}

func TestResolverGuestEmptyScope(t *testing.T) {
	r := NewResolver(&mockChildLister{}, nil, 0, zap.NewNop())

	scope, err := r.Resolve(context.Background(), models.Guest())
	require.NoError(t, err)
	assert.True(t, scope.Empty())
	assert.False(t, scope.Allows("c1"))
}

func TestResolverListerError(t *testing.T) {
	r := NewResolver(&mockChildLister{err: errors.New("db down")}, nil, 0, zap.NewNop())

	_, err := r.Resolve(context.Background(), models.Principal{UserID: "u1", CompanyID: "c1", Role: models.RoleAdmin})
	require.Error(t, err)
}

func TestScopeEmptyAndLeafCompany(t *testing.T) {
	lister := &mockChildLister{children: map[string][]string{}}
	r := NewResolver(lister, nil, 0, zap.NewNop())

	scope, err := r.Resolve(context.Background(), models.Principal{UserID: "u1", CompanyID: "c9", Role: models.RoleSiteAdmin})
	require.NoError(t, err)
	assert.False(t, scope.Empty())
	assert.True(t, scope.Allows("c9"))
	assert.Len(t, scope.IDs(), 1)
}
