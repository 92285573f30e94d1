package topics

const (
	// Jogos
	GameMatched = "game_matched"
	GameSettled = "game_settled"

	// DLQs
	GameSettledDLQ = "game_settled_dlq"
)
