package groups

import (
	"context"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyverse-de/ldap-groups/pkg/directory"
)

func newUserTestResolver(t *testing.T, client directory.Searcher) *Resolver {
	t.Helper()
	resolver, err := NewWithClient(client, Config{
		GroupBaseDN: "ou=groups,dc=example,dc=org",
		UserBaseDN:  "ou=people,dc=example,dc=org",
	})
	require.NoError(t, err)
	return resolver
}

func TestFindUser(t *testing.T) {
	entry := ldap.NewEntry("uid=alice,ou=people,dc=example,dc=org", map[string][]string{
		"uid": {"alice"},
		"cn":  {"Alice Example"},
	})

	client := &fakeSearcher{
		result: &directory.SearchResult{Entries: []*ldap.Entry{entry}},
	}
	resolver := newUserTestResolver(t, client)

	found, err := resolver.FindUser(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, "uid=alice,ou=people,dc=example,dc=org", found.DN)
	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, "ou=people,dc=example,dc=org", req.BaseDN)
	assert.Equal(t, "(uid=alice)", req.Filter)
}

func TestFindUserEscapesUsername(t *testing.T) {
	client := &fakeSearcher{
		result: &directory.SearchResult{Entries: []*ldap.Entry{
			ldap.NewEntry("uid=odd,ou=people,dc=example,dc=org", nil),
		}},
	}
	resolver := newUserTestResolver(t, client)

	_, err := resolver.FindUser(context.Background(), "a*b(c)")

	require.NoError(t, err)
	require.Len(t, client.requests, 1)
	assert.Equal(t, `(uid=a\2ab\28c\29)`, client.requests[0].Filter)
}

func TestFindUserNotFound(t *testing.T) {
	client := &fakeSearcher{}
	resolver := newUserTestResolver(t, client)

	_, err := resolver.FindUser(context.Background(), "nobody")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindUserAmbiguous(t *testing.T) {
	client := &fakeSearcher{
		result: &directory.SearchResult{Entries: []*ldap.Entry{
			ldap.NewEntry("uid=alice,ou=people,dc=example,dc=org", nil),
			ldap.NewEntry("uid=alice,ou=staff,dc=example,dc=org", nil),
		}},
	}
	resolver := newUserTestResolver(t, client)

	_, err := resolver.FindUser(context.Background(), "alice")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestFindUserValidation(t *testing.T) {
	t.Run("empty username", func(t *testing.T) {
		resolver := newUserTestResolver(t, &fakeSearcher{})
		_, err := resolver.FindUser(context.Background(), "")
		require.Error(t, err)
	})

	t.Run("missing user base DN", func(t *testing.T) {
		resolver, err := NewWithClient(&fakeSearcher{}, Config{
			GroupBaseDN: "ou=groups,dc=example,dc=org",
		})
		require.NoError(t, err)

		_, err = resolver.FindUser(context.Background(), "alice")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "user base DN")
	})
}
