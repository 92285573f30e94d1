package ws

// ClientMsg é o protocolo mínimo do cliente: subscribe, unsubscribe, ping
type ClientMsg struct {
	Type string `json:"type"`
}

// TableUpdate é o snapshot da mesa enviado a cada mudança de estado
type TableUpdate struct {
	Type          string `json:"type"` // sempre "table_update"
	OpenOffers    int    `json:"open_offers"`
	MaxBetShells  int64  `json:"max_bet_shells"`
	UpdatedUnixMs int64  `json:"updated_unix_ms"`
}
