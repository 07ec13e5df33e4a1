/*
Package directory provides the LDAP client layer used by group membership
resolution.

The package owns everything the resolver treats as external: connection
lifecycle, TLS and bind handling, server discovery, retry policy, and error
classification.

# Connection Management

NewClient builds a pooled client from a ConnectionConfig. Servers come from
explicit ldap://ldaps:// URLs or DNS SRV discovery with RFC 2782
priority/weight ordering. Connections are bound on creation (simple bind,
Kerberos/GSSAPI via gokrb5, or external/TLS-certificate) and recycled when
idle too long. Retry with exponential backoff lives here; callers above
this layer never retry.

# Searching

Client embeds Searcher, the single-method interface consumers should
depend on:

	Search(ctx context.Context, req *SearchRequest) (*SearchResult, error)

The zero SearchScope is the whole subtree, so requests that leave the
scope unset get the client default.

# Error Classification

Failures split into two tiers. Result codes reported by the directory come
back as *ldap.Error (optionally wrapped in DirectoryError with an operation
and category). Transport faults - network errors, go-ldap client-side
codes, server-down conditions - are distinguished by IsTransportError,
which fail-open callers use to decide what must be surfaced.

# Identifiers

ExtractGUID and ExtractSID decode the binary objectGUID (mixed-endian) and
objectSid attributes found in Active Directory entries into their standard
string forms.
*/
package directory
