package events

// Evento publicado quando uma aposta de player é casada com uma oferta de host.
type GameMatched struct {
	Commitment  string `json:"commitment"` // digest completo, hex
	Host        string `json:"host"`
	Player      string `json:"player"`
	Guess       string `json:"guess"` // "odd" | "even"
	WagerShells int64  `json:"wager_shells"`
	DeadlineTs  int64  `json:"deadline_unix"`
	TsUnixMs    int64  `json:"ts_unix_ms"`
}
