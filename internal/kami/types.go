package kami

type KamiResponse[T any] struct {
	StatusCode int            `json:"statusCode"`
	Success    bool           `json:"success"`
	Data       T              `json:"data"`
	Error      map[string]any `json:"error"`
}

type (
	SubnetMetagraphResponse = KamiResponse[SubnetMetagraph]
	LatestBlockResponse     = KamiResponse[LatestBlock]
	KeyringPairInfoResponse = KamiResponse[KeyringPairInfo]
	ExtrinsicHashResponse   = KamiResponse[string]
)

// SubnetMetagraph is the point-in-time view of subnet participants the
// validator needs. Per-uid slices are indexed by uid.
type SubnetMetagraph struct {
	Netuid          int        `json:"netuid"`
	Name            string     `json:"name"`
	Block           int        `json:"block"`
	Tempo           int        `json:"tempo"`
	NumUids         int        `json:"numUids"`
	MaxUids         int        `json:"maxUids"`
	WeightsVersion  int        `json:"weightsVersion"`
	Hotkeys         []string   `json:"hotkeys"`
	Coldkeys        []string   `json:"coldkeys"`
	Axons           []AxonInfo `json:"axons"`
	Active          []bool     `json:"active"`
	ValidatorPermit []bool     `json:"validatorPermit"`
	LastUpdate      []int      `json:"lastUpdate"`
	Incentives      []float64  `json:"incentives"`
	TotalStake      []float64  `json:"totalStake"`
}

type AxonInfo struct {
	Block    int    `json:"block"`
	Version  int    `json:"version"`
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	IPType   int    `json:"ipType"`
	Protocol int    `json:"protocol"`
	Hotkey   string `json:"hotkey,omitempty"`
}

type LatestBlock struct {
	ParentHash     string `json:"parentHash"`
	BlockNumber    int    `json:"blockNumber"`
	StateRoot      string `json:"stateRoot"`
	ExtrinsicsRoot string `json:"extrinsicsRoot"`
}

type KeyringPair struct {
	Address    string                 `json:"address"`
	AddressRaw map[string]interface{} `json:"addressRaw"`
	IsLocked   bool                   `json:"isLocked"`
	Meta       map[string]interface{} `json:"meta"`
	PublicKey  map[string]interface{} `json:"publicKey"`
	Type       string                 `json:"type"`
}

type KeyringPairInfo struct {
	KeyringPair   KeyringPair `json:"keyringPair"`
	WalletColdkey string      `json:"walletColdkey"`
}

type SetWeightsParams struct {
	Netuid     int   `json:"netuid"`
	Dests      []int `json:"dests"`
	Weights    []int `json:"weights"`
	VersionKey int   `json:"versionKey"`
}
