package scoring

// Decision is the final allow/review/block outcome derived from a risk
// score.
type Decision string

const (
	DecisionAllow  Decision = "allow"
	DecisionReview Decision = "review"
	DecisionBlock  Decision = "block"
)

// Thresholds are the score cutoffs the Decision Mapper applies. The
// reference mapper has a redundant score==0 branch that the <50 branch
// already subsumes — Map treats it as a single "< ManualReview" branch.
type Thresholds struct {
	ManualReview int
	AutoBlock    int
}

// DefaultThresholds matches spec.md's configuration surface:
// manual_review at 50, auto_block at 80.
var DefaultThresholds = Thresholds{ManualReview: 50, AutoBlock: 80}

// Map converts a risk score into a decision using the given thresholds.
func Map(score int, t Thresholds) Decision {
	switch {
	case score >= t.AutoBlock:
		return DecisionBlock
	case score >= t.ManualReview:
		return DecisionReview
	default:
		return DecisionAllow
	}
}
