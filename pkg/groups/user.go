package groups

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-ldap/ldap/v3"

	"github.com/cyverse-de/ldap-groups/pkg/directory"
)

// ErrUserNotFound is returned when a user search finds no matching entry.
var ErrUserNotFound = errors.New("user not found")

// FindUser fetches the directory entry for a username. It exists for
// callers that do not already hold an entry from an earlier authentication
// step, such as the CLI; resolution itself never calls it.
//
// Exactly one entry must match: zero matches return ErrUserNotFound and
// multiple matches are reported as an error rather than picking one.
func (r *Resolver) FindUser(ctx context.Context, username string) (*ldap.Entry, error) {
	if username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}

	baseDN := r.config.UserBaseDN
	if baseDN == "" {
		return nil, fmt.Errorf("user base DN is not configured")
	}

	result, err := r.client.Search(ctx, &directory.SearchRequest{
		BaseDN: baseDN,
		Filter: fmt.Sprintf("(%s=%s)", r.config.UsernameAttribute, ldap.EscapeFilter(username)),
	})
	if err != nil {
		return nil, fmt.Errorf("user lookup for %q: %w", username, err)
	}

	switch len(result.Entries) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	case 1:
		return result.Entries[0], nil
	default:
		return nil, fmt.Errorf("ambiguous user lookup for %q: %d entries matched", username, len(result.Entries))
	}
}
