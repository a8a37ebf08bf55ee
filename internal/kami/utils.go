package kami

import "fmt"

func FindAxonByHotkey(metagraph *SubnetMetagraph, hotkey string) *AxonInfo {
	for i, currHotkey := range metagraph.Hotkeys {
		if currHotkey == hotkey && i < len(metagraph.Axons) {
			axon := metagraph.Axons[i]
			return &axon
		}
	}
	return nil
}

// AxonURL returns the base URL an axon serves on.
func AxonURL(axon AxonInfo) string {
	return fmt.Sprintf("http://%s:%d", axon.IP, axon.Port)
}

// IsServing reports whether the axon advertises a reachable address.
func IsServing(axon AxonInfo) bool {
	return axon.IP != "" && axon.IP != "0.0.0.0" && axon.Port > 0
}

// AxonsForUIDs resolves uids to axons, skipping uids outside the metagraph.
func AxonsForUIDs(metagraph *SubnetMetagraph, uids []int64) []AxonInfo {
	axons := make([]AxonInfo, 0, len(uids))
	for _, uid := range uids {
		if uid < 0 || int(uid) >= len(metagraph.Axons) {
			continue
		}
		axon := metagraph.Axons[uid]
		if axon.Hotkey == "" && int(uid) < len(metagraph.Hotkeys) {
			axon.Hotkey = metagraph.Hotkeys[uid]
		}
		axons = append(axons, axon)
	}
	return axons
}

// IsAvailable reports whether uid serves an axon and is not a validator
// holding more than stakeLimit. A non-positive stakeLimit disables the stake
// check.
func IsAvailable(metagraph *SubnetMetagraph, uid int, stakeLimit float64) bool {
	if uid < 0 || uid >= len(metagraph.Axons) || !IsServing(metagraph.Axons[uid]) {
		return false
	}
	if stakeLimit <= 0 || uid >= len(metagraph.ValidatorPermit) || uid >= len(metagraph.TotalStake) {
		return true
	}
	return !metagraph.ValidatorPermit[uid] || metagraph.TotalStake[uid] <= stakeLimit
}
