package groups

import (
	"fmt"

	"github.com/creasty/defaults"
)

// Config holds the group-lookup settings for a Resolver. The attribute
// defaults follow the rfc2307 schema convention: users are identified by
// uid, groups are named by cn and reference their members through memberUid.
type Config struct {
	// GroupBaseDN is the base DN for the group search, for example
	// "ou=groups,dc=example,dc=org". Required.
	GroupBaseDN string `mapstructure:"group_base_dn"`

	// UserBaseDN is the base DN for user entry lookups. Only consumed by
	// FindUser; callers that supply their own user entries can leave it
	// empty.
	UserBaseDN string `mapstructure:"user_base_dn"`

	// UsernameAttribute is the attribute holding the username in the
	// user's entry.
	UsernameAttribute string `mapstructure:"username_attribute" default:"uid"`

	// GroupNameAttribute is the attribute holding the group name in each
	// group entry.
	GroupNameAttribute string `mapstructure:"group_name_attribute" default:"cn"`

	// MemberAttribute is the attribute associating member usernames with a
	// group entry.
	MemberAttribute string `mapstructure:"member_attribute" default:"memberUid"`
}

// SetDefaults fills in unset attribute names.
func (c *Config) SetDefaults() error {
	return defaults.Set(c)
}

// Validate checks the resolver's configuration invariants: the search base
// and all three attribute names must be non-empty.
func (c *Config) Validate() error {
	if c.GroupBaseDN == "" {
		return fmt.Errorf("group base DN is required")
	}
	if c.UsernameAttribute == "" {
		return fmt.Errorf("username attribute is required")
	}
	if c.GroupNameAttribute == "" {
		return fmt.Errorf("group name attribute is required")
	}
	if c.MemberAttribute == "" {
		return fmt.Errorf("member attribute is required")
	}
	return nil
}
