package matching

// Composite score weights. Each component is normalized to 0..100 first.
const (
	SkillMatchWeight = 0.50
	EngagementWeight = 0.15
	RatingWeight     = 0.15
	FeedbackWeight   = 0.20

	maxComponent = 100.0
	maxRating    = 5.0
)

// Candidate is the read-only profile snapshot used during one scoring pass.
type Candidate struct {
	UserID     uint
	Skills     []string
	Engagement float64
	Rating     float64
}

// Input describes one (candidate, required skill) pair to score.
type Input struct {
	RequiredSkill string
	Candidate     Candidate
	AcceptRate    float64
}

// Result is the scored pair.
type Result struct {
	UserID         uint
	Skill          string
	SkillMatch     float64
	CompositeScore float64
	Engagement     float64
	Rating         float64
}

// SkillMatchPercentage is |required ∩ candidate| / |required| * 100, rounded
// to two decimals. Inputs are normalized before comparison; either set being
// empty yields zero.
func SkillMatchPercentage(required, candidate []string) float64 {
	requiredSet := NormalizeSkills(required)
	candidateSet := SkillSet(NormalizeSkills(candidate))
	if len(requiredSet) == 0 || len(candidateSet) == 0 {
		return 0
	}

	common := 0
	for _, skill := range requiredSet {
		if _, ok := candidateSet[skill]; ok {
			common++
		}
	}

	return roundTo(float64(common)/float64(len(requiredSet))*100, 2)
}

// CompositeScore combines the four normalized components.
func CompositeScore(skillMatch, engagement, rating, acceptRate float64) float64 {
	skill := clamp(skillMatch, 0, maxComponent)
	engage := clamp(engagement, 0, maxComponent)
	rated := clamp(rating/maxRating*100, 0, maxComponent)
	feedback := clamp(acceptRate*100, 0, maxComponent)

	score := skill*SkillMatchWeight +
		engage*EngagementWeight +
		rated*RatingWeight +
		feedback*FeedbackWeight

	return roundTo(score, 2)
}

// Score evaluates one candidate against one required skill. The required
// set of a pair is the single skill itself.
func Score(in Input) Result {
	skill := BucketOf(in.RequiredSkill)
	skillMatch := SkillMatchPercentage([]string{skill}, in.Candidate.Skills)

	return Result{
		UserID:         in.Candidate.UserID,
		Skill:          skill,
		SkillMatch:     skillMatch,
		CompositeScore: CompositeScore(skillMatch, in.Candidate.Engagement, in.Candidate.Rating, in.AcceptRate),
		Engagement:     in.Candidate.Engagement,
		Rating:         in.Candidate.Rating,
	}
}
