package kami

import (
	"fmt"
	"sync"
)

var _ KamiInterface = (*MockKami)(nil)

// MockKami serves a synthetic metagraph so the validator can run without a
// chain. Every uid points at the same axon address.
type MockKami struct {
	NumUIDs  int
	AxonIP   string
	AxonPort int
	Hotkey   string

	mu          sync.Mutex
	block       int
	lastWeights *SetWeightsParams
}

func NewMockKami(numUIDs int, axonIP string, axonPort int) *MockKami {
	return &MockKami{
		NumUIDs:  numUIDs,
		AxonIP:   axonIP,
		AxonPort: axonPort,
		Hotkey:   "mock-validator-hotkey",
	}
}

// MockMetagraph builds a metagraph of n uids served at ip:port.
func MockMetagraph(netuid, n int, ip string, port int) SubnetMetagraph {
	mg := SubnetMetagraph{
		Netuid:          netuid,
		Name:            "mock",
		NumUids:         n,
		MaxUids:         n,
		Hotkeys:         make([]string, n),
		Coldkeys:        make([]string, n),
		Axons:           make([]AxonInfo, n),
		Active:          make([]bool, n),
		ValidatorPermit: make([]bool, n),
		LastUpdate:      make([]int, n),
		Incentives:      make([]float64, n),
		TotalStake:      make([]float64, n),
	}
	for uid := range n {
		hotkey := fmt.Sprintf("mock-hotkey-%d", uid)
		mg.Hotkeys[uid] = hotkey
		mg.Coldkeys[uid] = fmt.Sprintf("mock-coldkey-%d", uid)
		mg.Axons[uid] = AxonInfo{IP: ip, Port: port, IPType: 4, Hotkey: hotkey}
		mg.Active[uid] = true
	}
	return mg
}

func (m *MockKami) GetMetagraph(netuid int) (SubnetMetagraphResponse, error) {
	m.mu.Lock()
	block := m.block
	m.mu.Unlock()

	mg := MockMetagraph(netuid, m.NumUIDs, m.AxonIP, m.AxonPort)
	mg.Block = block
	return SubnetMetagraphResponse{StatusCode: 200, Success: true, Data: mg}, nil
}

// GetLatestBlock advances the mock chain by one block on every call.
func (m *MockKami) GetLatestBlock() (LatestBlockResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block++
	return LatestBlockResponse{StatusCode: 200, Success: true, Data: LatestBlock{BlockNumber: m.block}}, nil
}

func (m *MockKami) SetWeights(params SetWeightsParams) (ExtrinsicHashResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := params
	m.lastWeights = &p
	return ExtrinsicHashResponse{StatusCode: 200, Success: true, Data: "0xmock"}, nil
}

func (m *MockKami) GetKeyringPair() (KeyringPairInfoResponse, error) {
	return KeyringPairInfoResponse{
		StatusCode: 200,
		Success:    true,
		Data:       KeyringPairInfo{KeyringPair: KeyringPair{Address: m.Hotkey, Type: "sr25519"}},
	}, nil
}

// LastWeights returns the most recent SetWeights call, or nil.
func (m *MockKami) LastWeights() *SetWeightsParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastWeights
}
