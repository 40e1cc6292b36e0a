package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/genmacebiz/permit-portal-backend/internal/config"
)

// CardGateway talks to the Stripe PaymentIntents API so owners can settle
// permit fees by card. Amounts are converted to the smallest currency unit
// before submission.
type CardGateway struct {
	config *config.PaymentConfig
	client *http.Client
	logger *logrus.Logger
}

// PaymentIntent is the subset of the gateway response the frontend needs to
// complete a card payment.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

type gatewayError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewCardGateway creates a new CardGateway
func NewCardGateway(cfg *config.PaymentConfig, logger *logrus.Logger) *CardGateway {
	return &CardGateway{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// CreateIntent registers a payment intent for the given application and
// amount. The returned client secret is handed to the browser; the server
// never sees card details.
func (g *CardGateway) CreateIntent(applicationID int64, amount float64) (*PaymentIntent, error) {
	if g.config.SecretKey == "" {
		return nil, fmt.Errorf("card payments are not configured")
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(int64(amount*100), 10))
	form.Set("currency", g.config.Currency)
	form.Set("metadata[applicationId]", strconv.FormatInt(applicationID, 10))
	form.Set("automatic_payment_methods[enabled]", "true")

	endpoint := strings.TrimRight(g.config.APIURL, "/") + "/payment_intents"
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.config.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	g.logger.WithFields(logrus.Fields{
		"application_id": applicationID,
		"amount":         amount,
		"currency":       g.config.Currency,
	}).Info("Creating payment intent")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var gwErr gatewayError
		if err := json.Unmarshal(body, &gwErr); err == nil && gwErr.Error.Message != "" {
			g.logger.WithFields(logrus.Fields{
				"application_id": applicationID,
				"status_code":    resp.StatusCode,
				"gateway_error":  gwErr.Error.Message,
			}).Error("Payment intent rejected by gateway")
			return nil, fmt.Errorf("payment gateway error: %s", gwErr.Error.Message)
		}
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	intent := &PaymentIntent{}
	if err := json.Unmarshal(body, intent); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	g.logger.WithFields(logrus.Fields{
		"application_id": applicationID,
		"intent_id":      intent.ID,
	}).Info("Payment intent created")

	return intent, nil
}
