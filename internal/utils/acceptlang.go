package utils

import (
	"sort"
	"strconv"
	"strings"
)

// DetermineLocale resolves the locale for a request from an explicit query
// value, then an Accept-Language header, then the default. Region subtags
// are reduced to the base language ("ru-RU" -> "ru").
func DetermineLocale(queryLang, acceptLang string, supported []string, def string) string {
	sup := map[string]struct{}{}
	for _, s := range supported {
		sup[strings.ToLower(s)] = struct{}{}
	}
	pick := func(lang string) (string, bool) {
		l := strings.ToLower(strings.TrimSpace(lang))
		if l == "" {
			return "", false
		}
		if _, ok := sup[l]; ok {
			return l, true
		}
		if i := strings.Index(l, "-"); i > 0 {
			if _, ok := sup[l[:i]]; ok {
				return l[:i], true
			}
		}
		return "", false
	}

	if v, ok := pick(queryLang); ok {
		return v
	}

	type candidate struct {
		lang string
		q    float64
	}
	var cands []candidate
	for _, part := range strings.Split(acceptLang, ",") {
		lang, q := part, 1.0
		if semi := strings.Index(part, ";"); semi >= 0 {
			lang = part[:semi]
			if eq := strings.Index(part[semi:], "="); eq >= 0 {
				if v, err := strconv.ParseFloat(strings.TrimSpace(part[semi+eq+1:]), 64); err == nil {
					q = v
				}
			}
		}
		if l, ok := pick(lang); ok {
			cands = append(cands, candidate{lang: l, q: q})
		}
	}
	if len(cands) > 0 {
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].q > cands[j].q })
		return cands[0].lang
	}

	if v, ok := pick(def); ok {
		return v
	}
	if len(supported) > 0 {
		return strings.ToLower(supported[0])
	}
	return "ru"
}
