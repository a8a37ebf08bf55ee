package validator

import (
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/prompting/internal/kami"
)

// syncMetagraph pulls the latest metagraph and lets every per-uid component
// adapt to it.
func (v *Validator) syncMetagraph() {
	log.Info().Msgf("syncing metagraph data for subnet: %d", v.Netuid)

	resp, err := v.Kami.GetMetagraph(v.Netuid)
	if err != nil {
		log.Error().Err(err).Msg("failed to get metagraph")
		return
	}
	current := resp.Data

	v.mu.Lock()
	previous := v.metagraph
	v.metagraph = &current
	v.mu.Unlock()

	v.Gating.Resync(previous, &current)
	v.Dendrite.Resync(&current)

	replaced := changedUIDs(previous, &current)
	v.Scores.Resize(len(current.Hotkeys), replaced)

	log.Info().Msgf("Metagraph synced. %d uids, %d hotkeys replaced", len(current.Hotkeys), len(replaced))
}

func (v *Validator) syncBlock() {
	resp, err := v.Kami.GetLatestBlock()
	if err != nil {
		log.Error().Err(err).Msg("failed to get latest block")
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.latestBlock = int64(resp.Data.BlockNumber)
}

// setWeights normalizes the moving average scores and posts them on chain.
func (v *Validator) setWeights() {
	if v.MockMetagraph {
		log.Info().Msg("mock metagraph in use, skipping weight setting")
		return
	}

	uids, weights, err := v.Weights.Process(v.Scores.Scores())
	if err != nil {
		log.Error().Err(err).Msg("failed to process weights")
		return
	}
	if len(uids) == 0 {
		log.Info().Msg("no non-zero weights, skipping weight setting")
		return
	}

	versionKey := 0
	if mg := v.Metagraph(); mg != nil {
		versionKey = mg.WeightsVersion
	}

	resp, err := v.Kami.SetWeights(kami.SetWeightsParams{
		Netuid:     v.Netuid,
		Dests:      uids,
		Weights:    weights,
		VersionKey: versionKey,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to set weights")
		return
	}
	if !resp.Success {
		log.Error().Int("statusCode", resp.StatusCode).Interface("error", resp.Error).Msg("set weights rejected")
		return
	}
	log.Info().Str("extrinsic", resp.Data).Int("uids", len(uids)).Msg("weights set")
}
