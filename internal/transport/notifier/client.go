package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const RouteNotifications = "/api/notifications"

// EventPayload тело запроса к сервису уведомлений.
type EventPayload struct {
	Kind         string `json:"kind"`
	UserID       int64  `json:"user_id"`
	Amount       int64  `json:"amount,omitempty"`
	Balance      int64  `json:"balance,omitempty"`
	Tier         string `json:"tier,omitempty"`
	RedemptionID string `json:"redemption_id,omitempty"`
	RewardName   string `json:"reward_name,omitempty"`
}

// HTTPClient является реализацией интерфейса Client для HTTP запросов к сервису уведомлений.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string) HTTPClient {
	return HTTPClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

// Send отправляет событие. Любой статус кроме 2xx считается ошибкой доставки.
//
//nolint:nonamedreturns
func (c HTTPClient) Send(ctx context.Context, payload EventPayload) (err error) {
	body, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return fmt.Errorf("marshal notification payload: %s", marshalErr.Error())
	}

	req, reqErr := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+RouteNotifications, bytes.NewReader(body))
	if reqErr != nil {
		return fmt.Errorf("create request: %s", reqErr.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return fmt.Errorf("do request: %s", doErr.Error())
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	// тело ответа не интересует, вычитываем для переиспользования соединения.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("notification service responded with status %d", resp.StatusCode)
	}
	return nil
}
