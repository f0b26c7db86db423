package brand

import "strings"

// maxKeywordLenDelta and maxEditDistance bound the edit-distance check so
// that only near-miss spellings, not unrelated words, trigger a match.
const (
	maxKeywordLenDelta = 2
	maxEditDistance    = 2
	minKeywordLenForDistance = 3 // keywords of length <= this never match by distance alone
)

// CheckImpersonation decides whether vpa is attempting to impersonate a
// registered brand. Brands are checked in a stable (sorted) order so the
// "first" match is reproducible across runs.
func (r *Registry) CheckImpersonation(vpa string) (impersonating bool, matchedBrand string) {
	local, _ := SplitVPA(vpa)
	candidate := Normalize(local)

	for _, name := range r.names {
		e := r.entries[name]
		if _, allowed := e.allowedVPAs[vpa]; allowed {
			continue
		}
		if brandMatches(candidate, e.keywords) {
			return true, name
		}
	}
	return false, ""
}

func brandMatches(candidate string, keywords []string) bool {
	for _, kw := range keywords {
		normKW := Normalize(kw)
		if containsKeyword(candidate, normKW) {
			return true
		}
	}
	for _, kw := range keywords {
		normKW := Normalize(kw)
		if matchesByDistance(candidate, normKW) {
			return true
		}
	}
	return false
}

func containsKeyword(candidate, keyword string) bool {
	return keyword != "" && strings.Contains(candidate, keyword)
}

func matchesByDistance(candidate, keyword string) bool {
	if len(keyword) <= minKeywordLenForDistance {
		return false
	}
	if abs(len([]rune(candidate))-len([]rune(keyword))) > maxKeywordLenDelta {
		return false
	}
	return boundedLevenshtein(candidate, keyword, maxEditDistance) <= maxEditDistance
}
