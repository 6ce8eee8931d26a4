package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// decodePayload pulls the raw JSON payload out of a compact token without
// verifying it, to pin the wire layout.
func decodePayload(t *testing.T, raw string) map[string]json.RawMessage {
	t.Helper()
	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	buf, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf, &fields))
	return fields
}

func TestClaims_WireLayout(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	iss := NewIssuer(testSecret, IssuerConfig{
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
		Now:        func() time.Time { return now },
	})

	refresh, err := iss.IssueRefresh(uid, 3)
	require.NoError(t, err)

	fields := decodePayload(t, refresh)
	require.JSONEq(t, `"`+uid.String()+`"`, string(fields["uid"]))
	require.JSONEq(t, `true`, string(fields["refresh"]))
	require.JSONEq(t, `3`, string(fields["ver"]))

	// exp is milliseconds since epoch; a seconds value here would be a
	// wrong-duration bug three orders of magnitude off.
	var exp int64
	require.NoError(t, json.Unmarshal(fields["exp"], &exp))
	require.Equal(t, now.Add(24*time.Hour).UnixMilli(), exp)
}

func TestClaims_AccessTokenOmitsVersion(t *testing.T) {
	t.Parallel()

	iss := NewIssuer(testSecret, IssuerConfig{AccessTTL: time.Hour})
	access, _, err := iss.IssueAccess(uuid.New())
	require.NoError(t, err)

	fields := decodePayload(t, access)
	require.NotContains(t, fields, "ver")
	require.JSONEq(t, `false`, string(fields["refresh"]))
}

func TestClaims_ServiceIdentity(t *testing.T) {
	t.Parallel()

	require.True(t, (&Claims{UID: uuid.Nil}).IsService())
	require.True(t, (&Claims{UID: ServiceUID}).IsService())
	require.False(t, (&Claims{UID: uuid.New()}).IsService())
	require.Equal(t, "00000000-0000-0000-0000-000000000000", ServiceUID.String())
}
