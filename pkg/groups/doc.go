/*
Package groups resolves the group memberships of directory users in
rfc2307-style schemas.

A Resolver is built once from connection settings and group-lookup settings
and reused for every lookup:

	connCfg := directory.DefaultConnectionConfig()
	connCfg.LDAPURLs = []string{"ldaps://ldap.example.org"}
	connCfg.BindDN = "cn=reader,dc=example,dc=org"
	connCfg.BindPassword = secret

	resolver, err := groups.New(connCfg, groups.Config{
		GroupBaseDN: "ou=groups,dc=example,dc=org",
	})
	if err != nil {
		return err
	}

	names, err := resolver.Resolve(ctx, userEntry)

Resolve fails open: soft failures (a user entry without the username
attribute, a lookup the directory answered with a non-success result code)
are logged and yield an empty list, so a group lookup problem never blocks
an otherwise successful authentication. Hard transport faults are returned
to the caller.
*/
package groups
