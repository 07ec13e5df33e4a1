package groups

import (
	"context"
	"fmt"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog"

	"github.com/cyverse-de/ldap-groups/pkg/directory"
)

// Resolver looks up the names of the groups a directory user belongs to.
//
// Resolution retrieves the username from the user's already-fetched entry
// and uses it for a second search: with the default rfc2307 configuration,
// the value of the user's uid attribute is matched against the memberUid
// attribute of entries under the group base DN, and the cn of every match
// is collected into the result.
//
// A Resolver is immutable after construction and safe for concurrent use;
// the underlying client handles connection checkout.
type Resolver struct {
	client directory.Searcher
	config Config
	log    zerolog.Logger
}

// Option customizes Resolver construction.
type Option func(*Resolver)

// WithLogger sets the logger used by the resolver. The default discards
// everything, keeping the library silent unless a sink is injected.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Resolver) {
		r.log = log
	}
}

// New builds a Resolver from two configuration sources: the directory
// connection settings, from which the shared client is constructed, and the
// group-lookup settings. It fails only if the client cannot be built or the
// lookup settings are invalid; no network I/O happens here.
func New(connCfg *directory.ConnectionConfig, cfg Config, opts ...Option) (*Resolver, error) {
	client, err := directory.NewClient(connCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build directory client: %w", err)
	}

	return NewWithClient(client, cfg, opts...)
}

// NewWithClient builds a Resolver around an existing search capability.
func NewWithClient(client directory.Searcher, cfg Config, opts ...Option) (*Resolver, error) {
	if client == nil {
		return nil, fmt.Errorf("directory client is required")
	}

	if err := cfg.SetDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply configuration defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid group lookup configuration: %w", err)
	}

	r := &Resolver{
		client: client,
		config: cfg,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Resolve returns the names of the groups the user in entry belongs to, in
// the order the directory returned them. Duplicates are kept; group entries
// without a group-name value are skipped.
//
// Group resolution is advisory and fails open: a user entry without a
// username value and a search the directory answered with a non-success
// result code both produce an empty list and a nil error. Only hard
// connection or protocol faults are returned, so callers can distinguish
// "definitely no groups" from "couldn't determine groups".
func (r *Resolver) Resolve(ctx context.Context, entry *ldap.Entry) ([]string, error) {
	groups := []string{}

	if entry == nil {
		r.log.Warn().Msg("no user entry provided: skipping group membership resolution")
		return groups, nil
	}

	userID := entry.GetAttributeValue(r.config.UsernameAttribute)
	if userID == "" {
		r.log.Warn().
			Str("dn", entry.DN).
			Str("attribute", r.config.UsernameAttribute).
			Msg("no user ID found in directory entry: skipping group membership resolution")
		return groups, nil
	}

	filter := r.buildSearchFilter(userID)

	result, err := r.client.Search(ctx, &directory.SearchRequest{
		BaseDN:     r.config.GroupBaseDN,
		Filter:     filter,
		Attributes: []string{r.config.GroupNameAttribute},
	})
	if err != nil {
		if directory.IsTransportError(err) {
			return nil, fmt.Errorf("group membership lookup for %q: %w", userID, err)
		}
		r.log.Warn().Err(err).
			Str("user", userID).
			Msg("the group membership lookup failed")
		return groups, nil
	}

	for _, groupEntry := range result.Entries {
		groupName := groupEntry.GetAttributeValue(r.config.GroupNameAttribute)
		if groupName != "" {
			groups = append(groups, groupName)
		}
	}

	r.log.Debug().
		Str("user", userID).
		Strs("groups", groups).
		Msg("resolved groups")

	return groups, nil
}

// buildSearchFilter creates the group search filter for a user ID. The ID is
// bound into the filter through ldap.EscapeFilter, so metacharacters in
// attacker-controlled usernames have no filter-structure effect.
func (r *Resolver) buildSearchFilter(userID string) string {
	filter := fmt.Sprintf("(%s=%s)", r.config.MemberAttribute, ldap.EscapeFilter(userID))

	r.log.Debug().
		Str("filter_template", fmt.Sprintf("(%s={user})", r.config.MemberAttribute)).
		Str("user", userID).
		Msg("built group search filter")

	return filter
}
