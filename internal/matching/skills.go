// Package matching holds the pure parts of project matching: skill
// normalization, candidate scoring and per-skill selection. Nothing here
// touches storage.
package matching

import "strings"

// GeneralSkill is the sentinel bucket used when no specific skill applies.
const GeneralSkill = "general"

// NormalizeSkill returns the canonical, case and whitespace insensitive form of a skill tag.
func NormalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// NormalizeSkills canonicalizes every tag, drops empty ones and removes
// duplicates while keeping first-seen order.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	result := make([]string, 0, len(skills))
	for _, skill := range skills {
		normalized := NormalizeSkill(skill)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}

// RequiredSkills normalizes a project's skill list; an empty list becomes
// the single general bucket.
func RequiredSkills(skills []string) []string {
	normalized := NormalizeSkills(skills)
	if len(normalized) == 0 {
		return []string{GeneralSkill}
	}
	return normalized
}

// Bucket maps an optional skill onto its feedback bucket.
func Bucket(skill *string) string {
	if skill == nil {
		return GeneralSkill
	}
	return BucketOf(*skill)
}

// BucketOf maps a skill tag onto its feedback bucket.
func BucketOf(skill string) string {
	normalized := NormalizeSkill(skill)
	if normalized == "" {
		return GeneralSkill
	}
	return normalized
}

// SkillSet builds a lookup set from already normalized skills.
func SkillSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		set[skill] = struct{}{}
	}
	return set
}
