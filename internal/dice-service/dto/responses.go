package dto

type MatchResponse struct {
	Matched      bool   `json:"matched"`
	Commitment   string `json:"commitment,omitempty"`
	Host         string `json:"host,omitempty"`
	Guess        string `json:"guess,omitempty"`
	WagerShells  int64  `json:"wager_shells,omitempty"`
	DeadlineUnix int64  `json:"deadline_unix,omitempty"`
	Status       string `json:"status"` // "DEPOSITED" | "MATCHED"
}

type SettlementResponse struct {
	Commitment   string `json:"commitment"`
	Host         string `json:"host"`
	Player       string `json:"player,omitempty"`
	Outcome      string `json:"outcome"`
	WagerShells  int64  `json:"wager_shells"`
	PlayerPayout int64  `json:"player_payout_shells"`
	HostPayout   int64  `json:"host_payout_shells"`
}

type CollectResponse struct {
	Collected []SettlementResponse `json:"collected"`
}

type AccountResponse struct {
	Owner         string `json:"owner"`
	BalanceShells int64  `json:"balance_shells"`
	OpenOffers    int    `json:"open_offers"`
}

type TableResponse struct {
	OpenOffers    int   `json:"open_offers"`
	MaxBetShells  int64 `json:"max_bet_shells"` // zero = mesa fechada
	UpdatedUnixMs int64 `json:"updated_unix_ms"`
}
