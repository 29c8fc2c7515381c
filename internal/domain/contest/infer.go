package contest

import "strings"

// InferKind derives the contest kind from the rate_change column of the
// contest list. Contests listed as unrated ("-") fall back to id prefixes,
// and to the set of sponsored contests held before the rating system.
func InferKind(id, rateChange string, oldSponsored map[string]struct{}) Kind {
	switch rateChange {
	case "All", "1200 ~ ", "2000 ~ ":
		return AGC
	case " ~ 2799", "1200 ~ 2799":
		return NewARC
	case " ~ 1999":
		return NewABC
	case " ~ 1199":
		return OldABC
	}
	switch {
	case strings.HasPrefix(id, "arc"):
		return OldUnratedARC
	case strings.HasPrefix(id, "abc"):
		return OldUnratedABC
	}
	if _, ok := oldSponsored[id]; ok {
		return OldUnratedARC
	}
	return Unrated
}

// DefaultOldSponsored lists sponsored contests held before the rating
// system that are rated like ARCs when emulating history.
var DefaultOldSponsored = []string{
	"code-festival-2014-exhibition",
	"code-festival-2014-final",
	"code-festival-2014-morning-easy",
	"code-festival-2014-morning-hard",
	"code-festival-2014-morning-middle",
	"code-festival-2014-quala",
	"code-festival-2014-qualb",
	"code-festival-2015-exhibition",
	"code-festival-2015-morning-easy",
	"code-festival-2015-morning-hard",
	"code-festival-2015-morning-middle",
	"code-festival-2015-quala",
	"code-festival-2015-qualb",
	"code-formula-2014-final",
	"code-formula-2014-quala",
	"code-formula-2014-qualb",
	"digitalarts2012",
	"discovery2016-final",
	"discovery2016-qual",
	"donuts-2015",
	"dwango2015-finals",
	"dwango2015-prelims",
	"dwango2016-finals",
	"dwango2016-prelims",
	"indeednow-quala",
	"indeednow-qualb",
	"mujin-pc-2016",
	"tenka1-2012-final",
	"tenka1-2012-qualA",
	"tenka1-2012-qualB",
	"tenka1-2012-qualC",
	"tenka1-2013-final",
	"tenka1-2013-quala",
	"tenka1-2013-qualb",
	"tenka1-2014-final",
	"tenka1-2014-quala",
	"tenka1-2014-qualb",
	"tenka1-2015-final",
	"tenka1-2015-quala",
	"tenka1-2015-qualb",
}

// SponsoredSet builds the lookup set InferKind expects. A nil ids uses
// DefaultOldSponsored.
func SponsoredSet(ids []string) map[string]struct{} {
	if ids == nil {
		ids = DefaultOldSponsored
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
