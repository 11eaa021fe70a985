package smoke

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/okian/courtside/pkg/logger"
)

// Check names recorded on violations.
const (
	CheckStatus     = "status"
	CheckSubset     = "subset"
	CheckRankBounds = "rank_bounds"
	CheckRankOrder  = "rank_order"
	CheckStable     = "stable"
	CheckSkipped    = "skipped"
	CheckEmpty      = "empty"
)

// verifyOutcomes applies every check to outcomes.
func verifyOutcomes(ctx context.Context, outcomes []Outcome, stats *Stats) []Violation {
	logger.Get().Info(ctx, "verifying outcomes", logger.Int("outcomes", len(outcomes)))

	var out []Violation
	out = append(out, verifyStatus(outcomes)...)
	out = append(out, verifyEmpty(outcomes)...)
	out = append(out, verifySubsets(outcomes)...)
	out = append(out, verifyRanks(outcomes)...)
	out = append(out, verifyStable(outcomes)...)
	out = append(out, verifySkipped(outcomes)...)

	stats.Violations = len(out)
	for _, v := range out {
		logger.Get().Warn(ctx, "check failed",
			logger.String("check", v.Check),
			logger.String("probe", v.Probe),
			logger.String("detail", v.Detail))
	}
	return out
}

// verifyStatus flags any probe that did not answer 200.
func verifyStatus(outcomes []Outcome) []Violation {
	var out []Violation
	for _, o := range outcomes {
		if o.Err == "" && o.Status == StatusOK {
			continue
		}
		detail := fmt.Sprintf("status %d", o.Status)
		if o.Err != "" {
			detail = o.Err
		}
		out = append(out, Violation{Check: CheckStatus, Probe: o.Probe.Key(), Detail: detail})
	}
	return out
}

// verifyEmpty requires the empty flag to agree with the count.
func verifyEmpty(outcomes []Outcome) []Violation {
	var out []Violation
	for _, o := range outcomes {
		if o.Status != StatusOK || o.Skipped || o.Probe.View == ViewSearch {
			continue
		}
		if o.Empty != (o.Count == 0) {
			out = append(out, Violation{Check: CheckEmpty, Probe: o.Probe.Key(),
				Detail: fmt.Sprintf("empty=%t with count %d", o.Empty, o.Count)})
		}
	}
	return out
}

// verifySubsets requires a filtered count to never exceed the count of the
// same view with the selector at All.
func verifySubsets(outcomes []Outcome) []Violation {
	baseline := make(map[string]int)
	for _, o := range outcomes {
		if o.Probe.Baseline && o.Status == StatusOK {
			baseline[baselineKey(o.Probe)] = o.Count
		}
	}

	var out []Violation
	for _, o := range outcomes {
		if o.Probe.Baseline || o.Probe.View == ViewSearch || o.Status != StatusOK {
			continue
		}
		all, ok := baseline[baselineKey(o.Probe)]
		if !ok {
			continue
		}
		if o.Count > all {
			out = append(out, Violation{Check: CheckSubset, Probe: o.Probe.Key(),
				Detail: fmt.Sprintf("count %d exceeds unfiltered %d", o.Count, all)})
		}
	}
	return out
}

// baselineKey is the view path plus its rank range; other selectors are
// dropped.
func baselineKey(p Probe) string {
	q := url.Values{}
	for _, k := range []string{"rank_low", "rank_high"} {
		if v := p.Query.Get(k); v != "" {
			q.Set(k, v)
		}
	}
	return p.Path + "?" + q.Encode()
}

// verifyRanks requires competitor rows to sit inside the requested range in
// ascending rank order.
func verifyRanks(outcomes []Outcome) []Violation {
	var out []Violation
	for _, o := range outcomes {
		if o.Probe.Ranks == nil || o.Table == nil || o.Table.Index("rank") < 0 {
			continue
		}
		prev := int64(0)
		for i := 0; i < o.Table.Len(); i++ {
			rank := o.Table.Int(i, "rank")
			if rank < int64(o.Probe.Ranks.Low) || rank > int64(o.Probe.Ranks.High) {
				out = append(out, Violation{Check: CheckRankBounds, Probe: o.Probe.Key(),
					Detail: fmt.Sprintf("row %d rank %d outside %d..%d", i, rank, o.Probe.Ranks.Low, o.Probe.Ranks.High)})
				break
			}
			if rank < prev {
				out = append(out, Violation{Check: CheckRankOrder, Probe: o.Probe.Key(),
					Detail: fmt.Sprintf("row %d rank %d after %d", i, rank, prev)})
				break
			}
			prev = rank
		}
	}
	return out
}

// verifyStable requires repeated probes to return the same count.
func verifyStable(outcomes []Outcome) []Violation {
	seen := make(map[string]int)
	var out []Violation
	for _, o := range outcomes {
		if o.Status != StatusOK {
			continue
		}
		key := o.Probe.Key()
		first, ok := seen[key]
		if !ok {
			seen[key] = o.Count
			continue
		}
		if first != o.Count {
			out = append(out, Violation{Check: CheckStable, Probe: key,
				Detail: fmt.Sprintf("count %d, earlier %d", o.Count, first)})
		}
	}
	return out
}

// verifySkipped requires blank search terms to be skipped and no others.
func verifySkipped(outcomes []Outcome) []Violation {
	var out []Violation
	for _, o := range outcomes {
		if o.Probe.View != ViewSearch || o.Status != StatusOK {
			continue
		}
		blank := strings.TrimSpace(o.Probe.Query.Get("q")) == ""
		if o.Skipped != blank {
			out = append(out, Violation{Check: CheckSkipped, Probe: o.Probe.Key(),
				Detail: fmt.Sprintf("skipped=%t for term %q", o.Skipped, o.Probe.Query.Get("q"))})
		}
	}
	return out
}
