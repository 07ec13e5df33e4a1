package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog"
)

// client implements the Client interface.
type client struct {
	pool   ConnectionPool
	config *ConnectionConfig
	log    zerolog.Logger
}

// ClientOption customizes client construction.
type ClientOption func(*client)

// WithLogger sets the logger used by the client and its pool. The default
// discards everything.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *client) {
		c.log = log
	}
}

// NewClient creates a new pooled directory client. Construction resolves the
// server list but opens no connections.
func NewClient(config *ConnectionConfig, opts ...ClientOption) (Client, error) {
	if config == nil {
		config = DefaultConnectionConfig()
	}

	c := &client{
		config: config,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	pool, err := NewConnectionPool(config, c.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	c.pool = pool

	c.log.Debug().
		Str("auth_method", config.GetAuthMethod().String()).
		Int("max_connections", config.MaxConnections).
		Msg("directory client created")

	return c, nil
}

// Connect tests that a connection can be checked out and answers a search.
func (c *client) Connect(ctx context.Context) error {
	conn, err := c.pool.Get(ctx)
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	defer conn.Close()

	return c.ping(conn)
}

// Close closes the client and all its connections.
func (c *client) Close() error {
	return c.pool.Close()
}

// Bind authenticates with the directory using the supplied credentials.
func (c *client) Bind(ctx context.Context, dn, password string) error {
	conn, err := c.pool.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	return c.withRetry(ctx, "bind", func() error {
		return conn.Conn().Bind(dn, password)
	})
}

// Search performs a directory search.
func (c *client) Search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if req == nil {
		return nil, fmt.Errorf("search request cannot be nil")
	}

	start := time.Now()
	c.log.Debug().
		Str("base_dn", req.BaseDN).
		Str("scope", req.Scope.String()).
		Str("filter", req.Filter).
		Strs("attributes", req.Attributes).
		Msg("starting search")

	conn, err := c.pool.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	ldapReq := ldap.NewSearchRequest(
		req.BaseDN,
		req.Scope.ldapScope(),
		int(req.DerefAliases),
		req.SizeLimit,
		int(req.TimeLimit.Seconds()),
		false, // TypesOnly
		req.Filter,
		req.Attributes,
		nil, // Controls
	)

	var result *ldap.SearchResult
	err = c.withRetry(ctx, "search", func() error {
		var searchErr error
		result, searchErr = conn.Conn().Search(ldapReq)
		return searchErr
	})

	if err != nil {
		c.log.Debug().Err(err).
			Str("filter", req.Filter).
			Dur("duration", time.Since(start)).
			Msg("search failed")
		return nil, err
	}

	c.log.Debug().
		Int("entries", len(result.Entries)).
		Dur("duration", time.Since(start)).
		Msg("search completed")

	return &SearchResult{
		Entries: result.Entries,
		Total:   len(result.Entries),
	}, nil
}

// Ping tests connectivity to the directory server.
func (c *client) Ping(ctx context.Context) error {
	conn, err := c.pool.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	return c.ping(conn)
}

// ping issues a minimal root DSE search on an already-checked-out connection.
func (c *client) ping(conn *PooledConnection) error {
	searchReq := ldap.NewSearchRequest(
		"", // root DSE
		ldap.ScopeBaseObject,
		ldap.NeverDerefAliases,
		1, 5, false,
		"(objectClass=*)",
		[]string{"namingContexts"},
		nil,
	)

	_, err := conn.Conn().Search(searchReq)
	return err
}

// Stats returns pool statistics.
func (c *client) Stats() PoolStats {
	return c.pool.Stats()
}

// withRetry executes an operation with retry and exponential backoff.
func (c *client) withRetry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	backoff := c.config.InitialBackoff

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			c.log.Debug().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				AnErr("last_error", lastErr).
				Msgf("retrying %s", operation)
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !c.isRetryableError(err) {
			return err
		}

		if attempt == c.config.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff = min(time.Duration(float64(backoff)*c.config.BackoffFactor), c.config.MaxBackoff)
		}
	}

	return NewConnectionError(operation+" failed after retries", false, lastErr)
}

// isRetryableError determines if an error should be retried.
func (c *client) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if retryable, ok := err.(RetryableError); ok {
		return retryable.IsRetryable()
	}

	if ldap.IsErrorWithCode(err, ldap.LDAPResultBusy) ||
		ldap.IsErrorWithCode(err, ldap.LDAPResultUnavailable) ||
		ldap.IsErrorWithCode(err, ldap.LDAPResultServerDown) ||
		ldap.IsErrorWithCode(err, ldap.ErrorNetwork) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset")
}
