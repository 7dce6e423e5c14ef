package matching

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSkillMatchPercentage(t *testing.T) {
	cases := []struct {
		name      string
		required  []string
		candidate []string
		want      float64
	}{
		{name: "all present", required: []string{"python", "react"}, candidate: []string{"React", "python", "go"}, want: 100},
		{name: "half present", required: []string{"python", "react"}, candidate: []string{"python"}, want: 50},
		{name: "thirds rounded", required: []string{"a", "b", "c"}, candidate: []string{"a"}, want: 33.33},
		{name: "none present", required: []string{"rust"}, candidate: []string{"python"}, want: 0},
		{name: "empty required", required: nil, candidate: []string{"python"}, want: 0},
		{name: "empty candidate", required: []string{"python"}, candidate: nil, want: 0},
		{name: "duplicates ignored", required: []string{"Python", "python "}, candidate: []string{"python"}, want: 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SkillMatchPercentage(tc.required, tc.candidate)
			require.Equal(t, tc.want, got)
			require.GreaterOrEqual(t, got, 0.0)
			require.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestScoreMatchesWorkedExample(t *testing.T) {
	candidate := Candidate{UserID: 2, Skills: []string{"python", "react"}, Engagement: 85, Rating: 4.2}

	python := Score(Input{RequiredSkill: "python", Candidate: candidate, AcceptRate: 0.8})
	require.Equal(t, 100.0, python.SkillMatch)
	require.InDelta(t, 91.35, python.CompositeScore, 1e-9)

	react := Score(Input{RequiredSkill: "react", Candidate: candidate, AcceptRate: 0.9})
	require.Equal(t, 100.0, react.SkillMatch)
	require.InDelta(t, 93.35, react.CompositeScore, 1e-9)
}

func TestCompositeScoreClampsComponents(t *testing.T) {
	require.Equal(t, 100.0, CompositeScore(250, 1000, 9, 3))
	require.Equal(t, 0.0, CompositeScore(-5, -10, -1, -0.5))
	require.InDelta(t, 65.0, CompositeScore(100, 100, 0, 0), 1e-9)
}

func TestCompositeScoreIsMonotonicInEachInput(t *testing.T) {
	steps := []float64{-10, 0, 12.5, 40, 73.3, 100, 150}
	base := []float64{50, 50, 2.5, 0.5}

	for component := 0; component < 4; component++ {
		previous := -1.0
		for _, step := range steps {
			inputs := append([]float64(nil), base...)
			switch component {
			case 2:
				inputs[component] = step / 20
			case 3:
				inputs[component] = step / 100
			default:
				inputs[component] = step
			}
			got := CompositeScore(inputs[0], inputs[1], inputs[2], inputs[3])
			require.GreaterOrEqual(t, got, previous, "component %d at %v", component, step)
			previous = got
		}
	}
}

func TestScoreGeneralSkillUsesSentinelBucket(t *testing.T) {
	result := Score(Input{
		RequiredSkill: "",
		Candidate:     Candidate{UserID: 9, Skills: []string{"design"}, Engagement: 40, Rating: 5},
		AcceptRate:    0.5,
	})

	require.Equal(t, GeneralSkill, result.Skill)
	require.Equal(t, 0.0, result.SkillMatch)
	require.InDelta(t, 6+15+10, result.CompositeScore, 1e-9)
}
