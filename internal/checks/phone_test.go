package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPhoneCheckInvalidNumber(t *testing.T) {
	check := NewPhoneCheck(fakeHasher{}, newFakeReferenceData(), newFakeVelocity(), nil)
	result := Run(context.Background(), check, &Input{Phone: "123"})

	require.False(t, result.Passed)
	require.Equal(t, 100, result.Score)
	require.True(t, result.Details["invalid"].(bool))
}

func TestPhoneCheckTollFreeNumberType(t *testing.T) {
	check := NewPhoneCheck(fakeHasher{}, newFakeReferenceData(), newFakeVelocity(), nil)
	result := Run(context.Background(), check, &Input{Phone: "+18005551234"})

	require.Equal(t, "toll_free", result.Details["number_type"])
	require.GreaterOrEqual(t, result.Score, 50)
}

func TestPhoneCheckBlacklisted(t *testing.T) {
	ref := newFakeReferenceData()
	hasher := fakeHasher{}
	ref.blacklistedPhones[hasher.Hash("+12125551234")] = 100

	check := NewPhoneCheck(hasher, ref, newFakeVelocity(), nil)
	result := Run(context.Background(), check, &Input{Phone: "+12125551234"})

	require.True(t, result.Details["blacklisted"].(bool))
}

func TestPhoneCheckDisposablePrefix(t *testing.T) {
	check := NewPhoneCheck(fakeHasher{}, newFakeReferenceData(), newFakeVelocity(), []string{"+1212"})
	result := Run(context.Background(), check, &Input{Phone: "+12125551234"})

	require.True(t, result.Details["disposable_prefix"].(bool))
}

func TestPhoneCheckNotApplicableWithoutInput(t *testing.T) {
	check := NewPhoneCheck(fakeHasher{}, newFakeReferenceData(), newFakeVelocity(), nil)
	require.False(t, check.Applicable(&Input{}))
}
