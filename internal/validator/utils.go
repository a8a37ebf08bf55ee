package validator

import (
	"math/rand/v2"
	"slices"

	"github.com/tensorplex-labs/prompting/internal/kami"
)

// sampleUIDs picks up to k available uids, preferring those not in exclude and
// topping up from excluded ones when too few remain.
func (v *Validator) sampleUIDs(mg *kami.SubnetMetagraph, k int, exclude []int64) []int64 {
	if k <= 0 {
		return []int64{}
	}

	var candidates, excluded []int64
	for uid := range mg.Axons {
		if !kami.IsAvailable(mg, uid, v.NeuronConfig.VpermitTaoLimit) {
			continue
		}
		if uid < len(mg.Hotkeys) && mg.Hotkeys[uid] == v.Hotkey {
			continue
		}
		if slices.Contains(exclude, int64(uid)) {
			excluded = append(excluded, int64(uid))
		} else {
			candidates = append(candidates, int64(uid))
		}
	}

	v.shuffle(candidates)
	if len(candidates) >= k {
		return candidates[:k]
	}
	v.shuffle(excluded)
	need := min(k-len(candidates), len(excluded))
	return append(candidates, excluded[:need]...)
}

func (v *Validator) shuffle(uids []int64) {
	swap := func(i, j int) { uids[i], uids[j] = uids[j], uids[i] }
	if v.rng == nil {
		rand.Shuffle(len(uids), swap)
		return
	}
	v.rng.Shuffle(len(uids), swap)
}

// changedUIDs lists uids whose hotkey differs between two metagraphs.
func changedUIDs(previous, current *kami.SubnetMetagraph) []int {
	if previous == nil || current == nil {
		return nil
	}
	var out []int
	for uid := range min(len(previous.Hotkeys), len(current.Hotkeys)) {
		if previous.Hotkeys[uid] != current.Hotkeys[uid] {
			out = append(out, uid)
		}
	}
	return out
}

// gather picks scores at uids; uids the scores do not cover read as zero.
func gather(scores []float64, uids []int64) []float64 {
	out := make([]float64, len(uids))
	for i, uid := range uids {
		if uid >= 0 && int(uid) < len(scores) {
			out[i] = scores[uid]
		}
	}
	return out
}

// best returns the completion with the highest reward, first on ties.
func best(completions []string, rewards []float64) string {
	if len(completions) == 0 || len(rewards) == 0 {
		return ""
	}
	idx := 0
	for i := 1; i < min(len(completions), len(rewards)); i++ {
		if rewards[i] > rewards[idx] {
			idx = i
		}
	}
	return completions[idx]
}
