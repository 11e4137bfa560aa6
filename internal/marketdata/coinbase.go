package marketdata

import (
	"context"
	"fmt"
	"strconv"
)

const coinbaseSpotPath = "/v2/prices/BTC-USD/spot"

// SpotPrice fetches the current BTC-USD spot price from the Coinbase public
// price endpoint.
func (c *Client) SpotPrice(ctx context.Context) (float64, error) {
	u := c.coinbaseBaseURL + coinbaseSpotPath

	var resp struct {
		Data struct {
			Amount   string `json:"amount"`
			Currency string `json:"currency"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, "coinbase_spot", u, &resp); err != nil {
		return 0, fmt.Errorf("fetch spot price: %w", err)
	}

	price, err := strconv.ParseFloat(resp.Data.Amount, 64)
	if err != nil {
		return 0, fmt.Errorf("parse spot price %q: %w", resp.Data.Amount, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("spot price %f is not positive", price)
	}
	return price, nil
}
