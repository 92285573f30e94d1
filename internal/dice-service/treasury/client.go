package treasury

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	treasurydto "github.com/fcecin/betacorn/internal/dice-service/treasury/dto"
)

// Client fala com o serviço de custódia do token, que é quem de fato
// transfere shells pra fora do contrato. Implementa engine.Payer: ou a
// transferência completa, ou devolvemos erro e o engine aborta a
// operação inteira
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

func (c *Client) Pay(ctx context.Context, to string, amount int64, memo string) error {
	body, _ := json.Marshal(treasurydto.PayRequest{To: to, AmountShells: amount, Memo: memo})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/treasury/pay", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("treasury pay http %d", res.StatusCode)
	}
	return nil
}
