package dto

type PayRequest struct {
	To           string `json:"to"`
	AmountShells int64  `json:"amount_shells"`
	Memo         string `json:"memo,omitempty"`
}
