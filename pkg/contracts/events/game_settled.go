package events

// Evento publicado quando um jogo sai da mesa: reveal (com ou sem player),
// cancelamento ou coleta por timeout. O worker de journal persiste tudo.
type GameSettled struct {
	Commitment   string `json:"commitment"` // digest completo, hex
	Host         string `json:"host"`
	Player       string `json:"player,omitempty"`
	Outcome      string `json:"outcome"` // "player_win" | "host_win" | "timeout" | "cancelled"
	WagerShells  int64  `json:"wager_shells"`
	PlayerPayout int64  `json:"player_payout_shells"`
	HostPayout   int64  `json:"host_payout_shells"`
	TsUnixMs     int64  `json:"ts_unix_ms"`
}
