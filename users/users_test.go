package users_test

import (
	"testing"

	"github.com/planforge/go-session-client/users"
	"github.com/stretchr/testify/require"
)

func TestRoleTypeValid(t *testing.T) {
	require.True(t, users.RoleDeveloper.Valid())
	require.True(t, users.RoleServiceProvider.Valid())
	require.False(t, users.RoleType("").Valid())
	require.False(t, users.RoleType("architect").Valid())
}

func TestEntitledToDailyCredit(t *testing.T) {
	developer := &users.User{ID: "u1", Email: "d@example.com", Role: users.RoleDeveloper}
	provider := &users.User{ID: "u2", Email: "p@example.com", Role: users.RoleServiceProvider}
	undecided := &users.User{ID: "u3", Email: "n@example.com"}

	require.True(t, developer.EntitledToDailyCredit())
	require.False(t, provider.EntitledToDailyCredit())
	require.False(t, undecided.EntitledToDailyCredit())
	require.False(t, (*users.User)(nil).EntitledToDailyCredit())
}

func TestWellFormed(t *testing.T) {
	require.True(t, (&users.User{ID: "u1", Email: "d@example.com"}).WellFormed())
	require.False(t, (&users.User{ID: "u1"}).WellFormed())
	require.False(t, (&users.User{Email: "d@example.com"}).WellFormed())
	require.False(t, (*users.User)(nil).WellFormed())
}
