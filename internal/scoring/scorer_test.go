package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fraud-risk-engine/internal/checks"
)

func TestScoreCleanInputIsZero(t *testing.T) {
	s := NewScorer()
	results := []checks.Result{
		{Name: "email", Score: 0, Passed: true},
		{Name: "domain", Score: 0, Passed: true},
		{Name: "ip", Score: 0, Passed: true},
		{Name: "user_agent", Score: 0, Passed: true},
	}
	require.Equal(t, 0, s.Score(results))
	require.Equal(t, DecisionAllow, Map(0, DefaultThresholds))
}

func TestScoreDisposableEmailPlusTorPattern(t *testing.T) {
	s := NewScorer()
	results := []checks.Result{
		{Name: "email", Score: 80, Details: map[string]interface{}{"disposable_domain": true}},
		{Name: "ip", Score: 90, Details: map[string]interface{}{"tor_exit_node": true}},
	}
	score := s.Score(results)
	require.Equal(t, 100, score, "weighted mean 85 * 1.40 pattern bump should clamp to 100")
	require.Equal(t, DecisionBlock, Map(score, DefaultThresholds))
}

func TestScoreReservedIPAloneBlocks(t *testing.T) {
	s := NewScorer()
	results := []checks.Result{
		{Name: "ip", Score: 100, Details: map[string]interface{}{"reserved": true}},
	}
	score := s.Score(results)
	require.Equal(t, 100, score)
	require.Equal(t, DecisionBlock, Map(score, DefaultThresholds))
}

func TestScoreNewDomainPlusHighRiskIPPattern(t *testing.T) {
	s := NewScorer()
	results := []checks.Result{
		{Name: "domain", Score: 40, Details: map[string]interface{}{"age_days": 5}},
		{Name: "ip", Score: 85, Details: map[string]interface{}{}},
	}
	score := s.Score(results)
	// weighted mean = (40*0.15 + 85*0.25) / 0.40 = 62.5; pattern bump x1.25 -> 78.125 -> round 78
	require.Equal(t, 78, score)
	require.Equal(t, DecisionReview, Map(score, DefaultThresholds))
}

func TestScoreCriticalFloorForcesBlockEvenOnModerateMean(t *testing.T) {
	s := NewScorer()
	results := []checks.Result{
		{Name: "email", Score: 40, Details: map[string]interface{}{"blacklisted": true}},
		{Name: "ip", Score: 30},
	}
	score := s.Score(results)
	require.GreaterOrEqual(t, score, 90)
	require.Equal(t, DecisionBlock, Map(score, DefaultThresholds))
}

func TestScoreCreditCardFullScoreForcesFloor(t *testing.T) {
	s := NewScorer()
	results := []checks.Result{
		{Name: "credit_card", Score: 100},
	}
	score := s.Score(results)
	require.GreaterOrEqual(t, score, 90)
}

func TestScoreUnknownCheckNameContributesNoWeight(t *testing.T) {
	s := NewScorer()
	results := []checks.Result{
		{Name: "email", Score: 0},
		{Name: "something_unrecognized", Score: 100},
	}
	require.Equal(t, 0, s.Score(results))
}

func TestScoreEmptyResultsIsZero(t *testing.T) {
	s := NewScorer()
	require.Equal(t, 0, s.Score(nil))
}
