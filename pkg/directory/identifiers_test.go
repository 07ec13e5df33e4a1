package directory

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGUIDBytesToString(t *testing.T) {
	t.Run("mixed-endian conversion", func(t *testing.T) {
		guidBytes := []byte{
			0x01, 0x02, 0x03, 0x04,
			0x05, 0x06,
			0x07, 0x08,
			0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
		}

		guid, err := GUIDBytesToString(guidBytes)

		require.NoError(t, err)
		assert.Equal(t, "04030201-0605-0807-090a-0b0c0d0e0f10", guid)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := GUIDBytesToString([]byte{0x01, 0x02, 0x03})
		require.Error(t, err)

		_, err = GUIDBytesToString(nil)
		require.Error(t, err)
	})
}

func TestSIDBytesToString(t *testing.T) {
	t.Run("builtin administrators", func(t *testing.T) {
		// S-1-5-32-544: revision 1, two sub-authorities under the NT authority.
		sidBytes := []byte{
			0x01, 0x02,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
			0x20, 0x00, 0x00, 0x00,
			0x20, 0x02, 0x00, 0x00,
		}

		sid, err := SIDBytesToString(sidBytes)

		require.NoError(t, err)
		assert.Equal(t, "S-1-5-32-544", sid)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := SIDBytesToString([]byte{0x01, 0x02, 0x00})
		require.Error(t, err)
	})

	t.Run("truncated sub-authorities", func(t *testing.T) {
		// Claims five sub-authorities but carries only one.
		sidBytes := []byte{
			0x01, 0x05,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
			0x15, 0x00, 0x00, 0x00,
		}
		_, err := SIDBytesToString(sidBytes)
		require.Error(t, err)
	})
}

func TestExtractIdentifiers(t *testing.T) {
	t.Run("entry with both identifiers", func(t *testing.T) {
		entry := &ldap.Entry{
			DN: "cn=alice,ou=people,dc=example,dc=org",
			Attributes: []*ldap.EntryAttribute{
				{
					Name: "objectGUID",
					ByteValues: [][]byte{{
						0x01, 0x02, 0x03, 0x04,
						0x05, 0x06,
						0x07, 0x08,
						0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
					}},
				},
				{
					Name: "objectSid",
					ByteValues: [][]byte{{
						0x01, 0x02,
						0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
						0x20, 0x00, 0x00, 0x00,
						0x20, 0x02, 0x00, 0x00,
					}},
				},
			},
		}

		assert.Equal(t, "04030201-0605-0807-090a-0b0c0d0e0f10", ExtractGUID(entry))
		assert.Equal(t, "S-1-5-32-544", ExtractSID(entry))
	})

	t.Run("missing attributes", func(t *testing.T) {
		entry := ldap.NewEntry("cn=plain,ou=people,dc=example,dc=org", map[string][]string{})
		assert.Equal(t, "", ExtractGUID(entry))
		assert.Equal(t, "", ExtractSID(entry))
	})

	t.Run("nil entry", func(t *testing.T) {
		assert.Equal(t, "", ExtractGUID(nil))
		assert.Equal(t, "", ExtractSID(nil))
	})

	t.Run("malformed values", func(t *testing.T) {
		entry := &ldap.Entry{
			DN: "cn=broken,ou=people,dc=example,dc=org",
			Attributes: []*ldap.EntryAttribute{
				{Name: "objectGUID", ByteValues: [][]byte{{0x01, 0x02}}},
				{Name: "objectSid", ByteValues: [][]byte{{0x01}}},
			},
		}
		assert.Equal(t, "", ExtractGUID(entry))
		assert.Equal(t, "", ExtractSID(entry))
	})
}
