package refresh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fraud-risk-engine/internal/refdata"
)

func TestNormalizeDisposableDomainStripsCommentsAndWildcards(t *testing.T) {
	cases := []struct {
		in   string
		out  string
		keep bool
	}{
		{"mailinator.com", "mailinator.com", true},
		{"*.mailinator.com", "mailinator.com", true},
		{"# a comment", "", false},
		{"// another comment", "", false},
		{"  ", "", false},
		{"MAILINATOR.COM", "mailinator.com", true},
		{"not-a-domain", "", false},
	}
	for _, c := range cases {
		got, ok := normalizeDisposableDomain(c.in)
		require.Equal(t, c.keep, ok, "input %q", c.in)
		if c.keep {
			require.Equal(t, c.out, got, "input %q", c.in)
		}
	}
}

func TestASNLinePatternMatchesMasterListFormat(t *testing.T) {
	match := asnLinePattern.FindStringSubmatch("13335 US Cloudflare, Inc.")
	require.NotNil(t, match)
	require.Equal(t, "13335", match[1])
	require.Equal(t, "US", match[2])
	require.Equal(t, "Cloudflare, Inc.", match[3])
}

func TestASNLinePatternRejectsMalformedLine(t *testing.T) {
	require.Nil(t, asnLinePattern.FindStringSubmatch("not a valid asn line"))
}

func TestClassifyASNOrganization(t *testing.T) {
	require.Equal(t, refdata.ASNDatacenter, classifyASNOrganization("Example Cloud Hosting LLC"))
	require.Equal(t, refdata.ASNEducation, classifyASNOrganization("State University"))
	require.Equal(t, refdata.ASNGovernment, classifyASNOrganization("Federal Ministry of Commerce"))
	require.Equal(t, refdata.ASNMobile, classifyASNOrganization("National Mobile Wireless Co"))
	require.Equal(t, refdata.ASNUnknown, classifyASNOrganization("Generic Telecom Corp"))
}

func TestHashUserAgentIsDeterministic(t *testing.T) {
	a := hashUserAgent("curl/8.0")
	b := hashUserAgent("curl/8.0")
	require.Equal(t, a, b)
	require.NotEqual(t, a, hashUserAgent("curl/8.1"))
	require.Len(t, a, 64)
}
