package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserAgentCheckTooShort(t *testing.T) {
	check := NewUserAgentCheck(newFakeReferenceData(), newFakeVelocity())
	result := Run(context.Background(), check, &Input{UserAgent: "curl/7"})

	require.False(t, result.Passed)
	require.Equal(t, 50, result.Score)
}

func TestUserAgentCheckCleanBrowserUA(t *testing.T) {
	check := NewUserAgentCheck(newFakeReferenceData(), newFakeVelocity())
	ua := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	result := Run(context.Background(), check, &Input{UserAgent: ua})

	require.True(t, result.Passed)
	require.Equal(t, 0, result.Score)
	require.Equal(t, "Chrome", result.Details["browser"])
}

func TestUserAgentCheckBotPattern(t *testing.T) {
	check := NewUserAgentCheck(newFakeReferenceData(), newFakeVelocity())
	result := Run(context.Background(), check, &Input{UserAgent: "Mozilla/5.0 (compatible; Googlebot/2.1)"})

	require.True(t, result.Details["bot_pattern"].(bool))
	require.GreaterOrEqual(t, result.Score, 40)
}

func TestUserAgentCheckKnownMalicious(t *testing.T) {
	ref := newFakeReferenceData()
	ua := "Mozilla/5.0 TestAgentString/1.0 WebKitGecko"
	ref.knownUAs[sha256Hex(ua)] = KnownUAInfo{Type: "malicious", RiskWeight: 95, KnownMalicious: true}

	check := NewUserAgentCheck(ref, newFakeVelocity())
	result := Run(context.Background(), check, &Input{UserAgent: ua})

	require.True(t, result.Details["known_malicious"].(bool))
	require.GreaterOrEqual(t, result.Score, 80)
}

func TestUserAgentCheckOutdatedMSIE(t *testing.T) {
	check := NewUserAgentCheck(newFakeReferenceData(), newFakeVelocity())
	ua := "Mozilla/4.0 (compatible; MSIE 6.0; Windows NT 5.1)"
	result := Run(context.Background(), check, &Input{UserAgent: ua})

	require.True(t, result.Details["outdated_browser"].(bool))
}
