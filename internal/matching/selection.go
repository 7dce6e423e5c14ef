package matching

import "sort"

// DefaultTopPerSkill is how many candidates are kept for each required skill.
const DefaultTopPerSkill = 3

// Rank orders results by composite score descending, breaking ties by user
// id ascending so the output never depends on query order.
func Rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CompositeScore != results[j].CompositeScore {
			return results[i].CompositeScore > results[j].CompositeScore
		}
		return results[i].UserID < results[j].UserID
	})
}

// SelectTop scores every eligible candidate per required skill, keeps the
// best topN per skill and then collapses the union to one entry per user,
// the highest-scoring one. On equal scores across skills the skill processed
// first wins. The result is ranked.
func SelectTop(required []string, candidates []Candidate, rates AcceptRates, topN int) []Result {
	if topN <= 0 {
		topN = DefaultTopPerSkill
	}

	type prepared struct {
		candidate Candidate
		skills    map[string]struct{}
	}
	pool := make([]prepared, 0, len(candidates))
	for _, candidate := range candidates {
		normalized := NormalizeSkills(candidate.Skills)
		candidate.Skills = normalized
		pool = append(pool, prepared{candidate: candidate, skills: SkillSet(normalized)})
	}

	best := make(map[uint]Result)
	for _, skill := range RequiredSkills(required) {
		scored := make([]Result, 0, len(pool))
		for _, entry := range pool {
			if skill != GeneralSkill {
				if _, ok := entry.skills[skill]; !ok {
					continue
				}
			}
			scored = append(scored, Score(Input{
				RequiredSkill: skill,
				Candidate:     entry.candidate,
				AcceptRate:    rates.Resolve(entry.candidate.UserID, skill),
			}))
		}

		Rank(scored)
		if len(scored) > topN {
			scored = scored[:topN]
		}

		for _, result := range scored {
			current, ok := best[result.UserID]
			if !ok || result.CompositeScore > current.CompositeScore {
				best[result.UserID] = result
			}
		}
	}

	selected := make([]Result, 0, len(best))
	for _, result := range best {
		selected = append(selected, result)
	}
	Rank(selected)
	return selected
}
