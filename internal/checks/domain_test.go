package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDomainCheckInvalidHostname(t *testing.T) {
	check := NewDomainCheck(fakeHasher{}, newFakeReferenceData(), fakeCollaborators())
	result := Run(context.Background(), check, &Input{Domain: "not a domain"})

	require.False(t, result.Passed)
	require.Equal(t, 100, result.Score)
	require.True(t, result.Details["invalid_hostname"].(bool))
}

func TestDomainCheckAppliesFromEmail(t *testing.T) {
	check := NewDomainCheck(fakeHasher{}, newFakeReferenceData(), fakeCollaborators())
	require.True(t, check.Applicable(&Input{Email: "alice@example.com"}))
	require.False(t, check.Applicable(&Input{}))
}

func TestIsValidHostname(t *testing.T) {
	require.True(t, isValidHostname("example.com"))
	require.True(t, isValidHostname("sub.example.co.uk"))
	require.False(t, isValidHostname("-bad.com"))
	require.False(t, isValidHostname("no-tld"))
}
