package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreditCardCheckLuhnFailureHardFails(t *testing.T) {
	check := NewCreditCardCheck(fakeHasher{}, newFakeReferenceData(), newFakeVelocity(), nil)
	in := &Input{CreditCard: "4111111111111121"}

	result := Run(context.Background(), check, in)

	require.False(t, result.Passed)
	require.Equal(t, 100, result.Score)
	require.True(t, result.Details["luhn_failed"].(bool))
}

func TestCreditCardCheckKnownTestCard(t *testing.T) {
	check := NewCreditCardCheck(fakeHasher{}, newFakeReferenceData(), newFakeVelocity(), nil)
	in := &Input{CreditCard: "4111 1111 1111 1111"}

	result := Run(context.Background(), check, in)

	require.False(t, result.Passed)
	require.GreaterOrEqual(t, result.Score, 80)
	require.True(t, result.Details["test_card"].(bool))
}

func TestCreditCardCheckBlacklisted(t *testing.T) {
	ref := newFakeReferenceData()
	hasher := fakeHasher{}
	const pan = "4012888888881881"
	ref.blacklistedCards[hasher.Hash(pan)] = 100

	check := NewCreditCardCheck(hasher, ref, newFakeVelocity(), nil)
	result := Run(context.Background(), check, &Input{CreditCard: pan})

	require.True(t, result.Details["blacklisted"].(bool))
	require.GreaterOrEqual(t, result.Score, 80)
	require.False(t, result.Passed)
}

func TestCreditCardCheckNotApplicableWithoutInput(t *testing.T) {
	check := NewCreditCardCheck(fakeHasher{}, newFakeReferenceData(), newFakeVelocity(), nil)
	require.False(t, check.Applicable(&Input{}))
}
