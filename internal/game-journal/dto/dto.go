package dto

// GameSettled é o payload consumido do tópico game_settled
type GameSettled struct {
	Commitment   string `json:"commitment"`
	Host         string `json:"host"`
	Player       string `json:"player,omitempty"`
	Outcome      string `json:"outcome"`
	WagerShells  int64  `json:"wager_shells"`
	PlayerPayout int64  `json:"player_payout_shells"`
	HostPayout   int64  `json:"host_payout_shells"`
	TsUnixMs     int64  `json:"ts_unix_ms"`
}
