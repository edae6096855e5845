// Package courier wraps the shipping provider's HTTP API. The lifecycle
// engine treats every call as best-effort.
package courier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"swiftkart/internal/domain"
)

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type shipmentReq struct {
	OrderNumber string  `json:"order_number"`
	Address     string  `json:"address"`
	CODAmount   float64 `json:"cod_amount,omitempty"`
	Pieces      int     `json:"pieces"`
}

type shipmentResp struct {
	AWB     string `json:"awb"`
	Courier string `json:"courier"`
	Message string `json:"message"`
}

// CreateShipment registers the order with the provider and returns the AWB.
func (c *Client) CreateShipment(o domain.Order, items []domain.OrderItem) (string, string, error) {
	if c.BaseURL == "" {
		return "", "", errors.New("courier not configured")
	}

	pieces := 0
	for _, it := range items {
		pieces += it.Qty
	}
	cod := 0.0
	if o.PaymentMethod == "cod" {
		cod = o.GrandTotal
	}

	var out shipmentResp
	err := c.post("/shipments", shipmentReq{
		OrderNumber: o.OrderNumber,
		Address:     o.ShippingAddress,
		CODAmount:   cod,
		Pieces:      pieces,
	}, &out)
	if err != nil {
		return "", "", err
	}
	if out.AWB == "" {
		return "", "", fmt.Errorf("courier rejected shipment: %s", out.Message)
	}
	return out.AWB, out.Courier, nil
}

func (c *Client) CancelShipment(awb string) error {
	if c.BaseURL == "" {
		return errors.New("courier not configured")
	}
	return c.post("/shipments/"+awb+"/cancel", struct{}{}, &shipmentResp{})
}

func (c *Client) post(path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("courier returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
