package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIPCheckReservedRangeHardFails(t *testing.T) {
	check := NewIPCheck(fakeHasher{}, newFakeReferenceData(), fakeCollaborators(), newFakeVelocity())
	result := Run(context.Background(), check, &Input{IP: "10.0.0.5"})

	require.False(t, result.Passed)
	require.Equal(t, 100, result.Score)
	require.True(t, result.Details["reserved"].(bool))
}

func TestIPCheckInvalidAddress(t *testing.T) {
	check := NewIPCheck(fakeHasher{}, newFakeReferenceData(), fakeCollaborators(), newFakeVelocity())
	result := Run(context.Background(), check, &Input{IP: "not-an-ip"})

	require.False(t, result.Passed)
	require.Equal(t, 100, result.Score)
}

func TestIPCheckTorExitNode(t *testing.T) {
	ref := newFakeReferenceData()
	ref.torNodes["203.0.113.9"] = 90

	check := NewIPCheck(fakeHasher{}, ref, fakeCollaborators(), newFakeVelocity())
	result := Run(context.Background(), check, &Input{IP: "203.0.113.9"})

	require.True(t, result.Details["tor_exit_node"].(bool))
	require.GreaterOrEqual(t, result.Score, 90)
}

func TestIPCheckCleanPublicAddress(t *testing.T) {
	check := NewIPCheck(fakeHasher{}, newFakeReferenceData(), fakeCollaborators(), newFakeVelocity())
	result := Run(context.Background(), check, &Input{IP: "8.8.8.8"})

	require.True(t, result.Passed)
	require.Equal(t, 0, result.Score)
}

func TestIPCheckProxyHeaderMismatchAddsScore(t *testing.T) {
	check := NewIPCheck(fakeHasher{}, newFakeReferenceData(), fakeCollaborators(), newFakeVelocity())
	in := &Input{
		IP:      "8.8.8.8",
		Headers: map[string][]string{"X-Forwarded-For": {"1.2.3.4"}},
	}
	result := Run(context.Background(), check, in)

	require.True(t, result.Details["proxy_headers_present"].(bool))
	require.True(t, result.Details["proxy_header_ip_mismatch"].(bool))
	require.Equal(t, 30, result.Score)
}
