package dto

// TransferRequest é o webhook da custódia: alguém moveu shells pra
// dentro do contrato e o memo diz o que isso significa
type TransferRequest struct {
	From         string `json:"from"`
	AmountShells int64  `json:"amount_shells"`
	Memo         string `json:"memo"`
}

type WithdrawRequest struct {
	To           string `json:"to"`
	AmountShells int64  `json:"amount_shells"`
}

type CommitRequest struct {
	Host       string `json:"host"`
	Commitment string `json:"commitment"` // sha256 em hex
}

type CancelCommitRequest struct {
	Host       string `json:"host"`
	Commitment string `json:"commitment"`
}

type RevealRequest struct {
	Commitment string `json:"commitment"`
	Source     string `json:"source"` // preimage em hex
}

type CollectRequest struct {
	Player string `json:"player"`
}
