package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmailCheckInvalidSyntax(t *testing.T) {
	check := NewEmailCheck(fakeHasher{}, newFakeReferenceData(), fakeCollaborators())
	result := Run(context.Background(), check, &Input{Email: "not-an-email"})

	require.False(t, result.Passed)
	require.Equal(t, 100, result.Score)
	require.True(t, result.Details["invalid_syntax"].(bool))
}

func TestEmailCheckDisposableDomain(t *testing.T) {
	ref := newFakeReferenceData()
	ref.disposableDomains["mailinator.com"] = 80

	check := NewEmailCheck(fakeHasher{}, ref, fakeCollaborators())
	result := Run(context.Background(), check, &Input{Email: "someone@mailinator.com"})

	require.False(t, result.Passed)
	require.Equal(t, 80, result.Score)
	require.True(t, result.Details["disposable_domain"].(bool))
}

func TestEmailCheckBlacklisted(t *testing.T) {
	ref := newFakeReferenceData()
	hasher := fakeHasher{}
	ref.blacklistedEmails[hasher.Hash("alice@example.com")] = 100

	check := NewEmailCheck(hasher, ref, fakeCollaborators())
	result := Run(context.Background(), check, &Input{Email: "Alice@Example.com"})

	require.False(t, result.Passed)
	require.Equal(t, 100, result.Score)
	require.True(t, result.Details["blacklisted"].(bool))
}

func TestEmailCheckRoleAddress(t *testing.T) {
	check := NewEmailCheck(fakeHasher{}, newFakeReferenceData(), fakeCollaborators())
	result := Run(context.Background(), check, &Input{Email: "admin@example.com"})

	require.True(t, result.Details["role_address"].(bool))
	require.GreaterOrEqual(t, result.Score, 30)
}

func TestEmailCheckPlusTag(t *testing.T) {
	check := NewEmailCheck(fakeHasher{}, newFakeReferenceData(), fakeCollaborators())
	result := Run(context.Background(), check, &Input{Email: "alice+shopping@example.com"})

	require.True(t, result.Details["has_tag"].(bool))
}

func TestEmailCheckNotApplicableWithoutInput(t *testing.T) {
	check := NewEmailCheck(fakeHasher{}, newFakeReferenceData(), fakeCollaborators())
	require.False(t, check.Applicable(&Input{}))
}
