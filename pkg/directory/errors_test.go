package directory

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-ldap/ldap/v3"
)

func TestNewDirectoryError(t *testing.T) {
	tests := []struct {
		name          string
		operation     string
		err           error
		wantCategory  ErrorCategory
		wantCode      uint16
		wantRetryable bool
	}{
		{
			name:          "invalid credentials",
			operation:     "bind",
			err:           ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("invalid credentials")),
			wantCategory:  ErrorCategoryAuthentication,
			wantCode:      ldap.LDAPResultInvalidCredentials,
			wantRetryable: false,
		},
		{
			name:          "no such object",
			operation:     "search",
			err:           ldap.NewError(ldap.LDAPResultNoSuchObject, errors.New("no such object")),
			wantCategory:  ErrorCategoryNotFound,
			wantCode:      ldap.LDAPResultNoSuchObject,
			wantRetryable: false,
		},
		{
			name:          "server busy",
			operation:     "search",
			err:           ldap.NewError(ldap.LDAPResultBusy, errors.New("busy")),
			wantCategory:  ErrorCategoryServer,
			wantCode:      ldap.LDAPResultBusy,
			wantRetryable: true,
		},
		{
			name:          "network error",
			operation:     "search",
			err:           ldap.NewError(ldap.ErrorNetwork, errors.New("connection reset")),
			wantCategory:  ErrorCategoryConnection,
			wantCode:      ldap.ErrorNetwork,
			wantRetryable: true,
		},
		{
			name:          "insufficient access",
			operation:     "search",
			err:           ldap.NewError(ldap.LDAPResultInsufficientAccessRights, errors.New("denied")),
			wantCategory:  ErrorCategoryPermission,
			wantCode:      ldap.LDAPResultInsufficientAccessRights,
			wantRetryable: false,
		},
		{
			name:          "generic timeout",
			operation:     "connect",
			err:           errors.New("dial tcp: i/o timeout"),
			wantCategory:  ErrorCategoryConnection,
			wantCode:      0,
			wantRetryable: true,
		},
		{
			name:          "generic unknown",
			operation:     "search",
			err:           errors.New("something odd happened"),
			wantCategory:  ErrorCategoryUnknown,
			wantCode:      0,
			wantRetryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			derr := NewDirectoryError(tt.operation, tt.err)

			if derr.Operation != tt.operation {
				t.Errorf("Operation = %q, expected %q", derr.Operation, tt.operation)
			}
			if derr.Category != tt.wantCategory {
				t.Errorf("Category = %q, expected %q", derr.Category, tt.wantCategory)
			}
			if derr.ResultCode != tt.wantCode {
				t.Errorf("ResultCode = %d, expected %d", derr.ResultCode, tt.wantCode)
			}
			if derr.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, expected %v", derr.Retryable, tt.wantRetryable)
			}
			if !errors.Is(derr, tt.err) {
				t.Error("wrapped error should unwrap to the cause")
			}
		})
	}

	t.Run("nil error", func(t *testing.T) {
		if derr := NewDirectoryError("search", nil); derr != nil {
			t.Errorf("NewDirectoryError(nil) = %v, expected nil", derr)
		}
	})
}

func TestWrapError(t *testing.T) {
	t.Run("plain error gets wrapped", func(t *testing.T) {
		err := WrapError("search", errors.New("boom"))
		var derr *DirectoryError
		if !errors.As(err, &derr) {
			t.Fatal("expected a *DirectoryError")
		}
		if derr.Operation != "search" {
			t.Errorf("Operation = %q, expected %q", derr.Operation, "search")
		}
	})

	t.Run("already wrapped is untouched", func(t *testing.T) {
		inner := NewDirectoryError("bind", errors.New("boom"))
		err := WrapError("search", inner)
		var derr *DirectoryError
		if !errors.As(err, &derr) {
			t.Fatal("expected a *DirectoryError")
		}
		if derr.Operation != "bind" {
			t.Errorf("Operation = %q, expected original %q", derr.Operation, "bind")
		}
	})

	t.Run("nil stays nil", func(t *testing.T) {
		if err := WrapError("search", nil); err != nil {
			t.Errorf("WrapError(nil) = %v, expected nil", err)
		}
	})
}

func TestIsTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{
			name: "no such object is a server verdict",
			err:  ldap.NewError(ldap.LDAPResultNoSuchObject, errors.New("no such object")),
			want: false,
		},
		{
			name: "unwilling to perform is a server verdict",
			err:  ldap.NewError(ldap.LDAPResultUnwillingToPerform, errors.New("refused")),
			want: false,
		},
		{
			name: "size limit exceeded is a server verdict",
			err:  ldap.NewError(ldap.LDAPResultSizeLimitExceeded, errors.New("too many")),
			want: false,
		},
		{
			name: "client-side network code",
			err:  ldap.NewError(ldap.ErrorNetwork, errors.New("connection reset")),
			want: true,
		},
		{
			name: "client-side unexpected message code",
			err:  ldap.NewError(ldap.ErrorUnexpectedMessage, errors.New("unexpected message")),
			want: true,
		},
		{
			name: "server down",
			err:  ldap.NewError(ldap.LDAPResultServerDown, errors.New("ldap: connection closed")),
			want: true,
		},
		{
			name: "connect error",
			err:  ldap.NewError(ldap.LDAPResultConnectError, errors.New("cannot connect")),
			want: true,
		},
		{
			name: "protocol error",
			err:  ldap.NewError(ldap.LDAPResultProtocolError, errors.New("bad ber")),
			want: true,
		},
		{
			name: "non-ldap error",
			err:  errors.New("dial tcp: connection refused"),
			want: true,
		},
		{
			name: "wrapped server verdict keeps its classification",
			err:  fmt.Errorf("search: %w", ldap.NewError(ldap.LDAPResultNoSuchObject, errors.New("gone"))),
			want: false,
		},
		{
			name: "wrapped transport fault keeps its classification",
			err:  fmt.Errorf("search: %w", ldap.NewError(ldap.ErrorNetwork, errors.New("reset"))),
			want: true,
		},
		{
			name: "directory error with server code",
			err:  NewDirectoryError("search", ldap.NewError(ldap.LDAPResultNoSuchObject, errors.New("gone"))),
			want: false,
		},
		{
			name: "connection error after exhausted retries",
			err:  NewConnectionError("search failed after retries", false, errors.New("dial tcp: connection refused")),
			want: true,
		},
		{
			name: "connection error around a server verdict",
			err:  NewConnectionError("search failed", false, ldap.NewError(ldap.LDAPResultNoSuchObject, errors.New("gone"))),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransportError(tt.err); got != tt.want {
				t.Errorf("IsTransportError() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "retryable connection error", err: NewConnectionError("pool exhausted", true, nil), want: true},
		{name: "non-retryable connection error", err: NewConnectionError("bad config", false, nil), want: false},
		{name: "retryable directory error", err: NewDirectoryError("search", ldap.NewError(ldap.LDAPResultBusy, errors.New("busy"))), want: true},
		{name: "generic timeout", err: errors.New("read timeout"), want: true},
		{name: "generic other", err: errors.New("parse failure"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err); got != tt.want {
				t.Errorf("IsRetryableError() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestCategoryHelpers(t *testing.T) {
	notFound := ldap.NewError(ldap.LDAPResultNoSuchObject, errors.New("no such object"))
	authErr := ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("invalid credentials"))

	if !IsNotFoundError(notFound) {
		t.Error("IsNotFoundError() expected true for no-such-object")
	}
	if IsNotFoundError(authErr) {
		t.Error("IsNotFoundError() expected false for invalid credentials")
	}
	if !IsAuthenticationError(authErr) {
		t.Error("IsAuthenticationError() expected true for invalid credentials")
	}
	if IsAuthenticationError(notFound) {
		t.Error("IsAuthenticationError() expected false for no-such-object")
	}
}

func TestConnectionErrorMessage(t *testing.T) {
	withCause := NewConnectionError("dial failed", true, errors.New("connection refused"))
	if withCause.Error() != "dial failed: connection refused" {
		t.Errorf("Error() = %q", withCause.Error())
	}

	withoutCause := NewConnectionError("pool closed", false, nil)
	if withoutCause.Error() != "pool closed" {
		t.Errorf("Error() = %q", withoutCause.Error())
	}
}
