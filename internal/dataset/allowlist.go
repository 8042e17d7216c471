package dataset

import (
	"strings"
	"unicode"
)

// allowList is the fixed set of recognized fitness-metric columns, in report
// order. Korean entries are the headers of the KS_NFA national fitness
// measurement export; English entries cover translated exports.
var allowList = []string{
	"나이", "신장", "체중", "체지방율", "허리둘레",
	"악력_좌", "악력_우", "윗몸말아올리기", "반복점프", "앉아윗몸앞으로굽히기",
	"BMI", "교차윗몸일으키기", "왕복오래달리기", "10M_4회_왕복달리기", "제자리_멀리뛰기",
	"의자에앉았다일어서기", "상대악력", "피부두겹합", "반응시간", "절대악력",

	"age", "height", "weight", "body_fat_pct", "waist_circumference",
	"grip_left", "grip_right", "curl_up", "repeated_jump", "sit_and_reach",
	"bmi", "cross_sit_up", "shuttle_run", "shuttle_run_10m_4x", "standing_long_jump",
	"chair_stand", "relative_grip", "skinfold_sum", "reaction_time", "absolute_grip",
}

var allowRank = func() map[string]int {
	m := make(map[string]int, len(allowList))
	for i, name := range allowList {
		m[name] = i
	}
	return m
}()

// AllowList returns a copy of the recognized column names.
func AllowList() []string {
	out := make([]string, len(allowList))
	copy(out, allowList)
	return out
}

// IsAllowed reports whether a normalized column name is recognized.
func IsAllowed(name string) bool {
	_, ok := allowRank[name]
	return ok
}

// NormalizeName trims a header cell and replaces each internal whitespace rune
// with '_'.
func NormalizeName(s string) string {
	s = strings.TrimFunc(s, unicode.IsSpace)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, s)
}
