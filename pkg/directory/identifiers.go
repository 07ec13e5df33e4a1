package directory

import (
	"fmt"

	"github.com/bwmarrin/go-objectsid"
	"github.com/go-ldap/ldap/v3"
	"github.com/google/uuid"
)

// guidBytesLength is the fixed size of a binary objectGUID value.
const guidBytesLength = 16

// GUIDBytesToString converts an Active Directory objectGUID value to the
// standard hyphenated UUID string. AD stores GUIDs mixed-endian: the first
// three groups are little-endian, the last eight bytes big-endian.
func GUIDBytesToString(guidBytes []byte) (string, error) {
	if len(guidBytes) != guidBytesLength {
		return "", fmt.Errorf("invalid GUID byte length: expected %d, got %d", guidBytesLength, len(guidBytes))
	}

	standardBytes := make([]byte, guidBytesLength)

	// Data1 (bytes 0-3): reverse byte order
	standardBytes[0] = guidBytes[3]
	standardBytes[1] = guidBytes[2]
	standardBytes[2] = guidBytes[1]
	standardBytes[3] = guidBytes[0]

	// Data2 (bytes 4-5): reverse byte order
	standardBytes[4] = guidBytes[5]
	standardBytes[5] = guidBytes[4]

	// Data3 (bytes 6-7): reverse byte order
	standardBytes[6] = guidBytes[7]
	standardBytes[7] = guidBytes[6]

	// Data4 (bytes 8-15): keep original order
	copy(standardBytes[8:], guidBytes[8:])

	id, err := uuid.FromBytes(standardBytes)
	if err != nil {
		return "", fmt.Errorf("failed to build UUID from GUID bytes: %w", err)
	}

	return id.String(), nil
}

// ExtractGUID returns the entry's objectGUID as a hyphenated UUID string, or
// "" when the attribute is absent or malformed.
func ExtractGUID(entry *ldap.Entry) string {
	if entry == nil {
		return ""
	}

	guidBytes := entry.GetRawAttributeValue("objectGUID")
	if len(guidBytes) == 0 {
		return ""
	}

	guidString, err := GUIDBytesToString(guidBytes)
	if err != nil {
		return ""
	}
	return guidString
}

// SIDBytesToString converts a binary objectSid value to its S-1-5-21-...
// string representation.
func SIDBytesToString(sidBytes []byte) (string, error) {
	if len(sidBytes) < 8 {
		return "", fmt.Errorf("binary SID too short: %d bytes", len(sidBytes))
	}

	// Byte 1 carries the sub-authority count; each sub-authority is 4 bytes.
	if subAuthorities := int(sidBytes[1]); len(sidBytes) < 8+4*subAuthorities {
		return "", fmt.Errorf("binary SID truncated: %d bytes for %d sub-authorities", len(sidBytes), subAuthorities)
	}

	sid := objectsid.Decode(sidBytes)
	return sid.String(), nil
}

// ExtractSID returns the entry's objectSid as a string, or "" when the
// attribute is absent or malformed.
func ExtractSID(entry *ldap.Entry) string {
	if entry == nil {
		return ""
	}

	sidBytes := entry.GetRawAttributeValue("objectSid")
	if len(sidBytes) == 0 {
		return ""
	}

	sidString, err := SIDBytesToString(sidBytes)
	if err != nil {
		return ""
	}
	return sidString
}
