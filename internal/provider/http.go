package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// postJSON marshals body, POSTs it to endpoint and decodes a 200 response
// into out. A non-200 response becomes a *StatusError. When tokens is set,
// the request carries its bearer token.
func postJSON(ctx context.Context, client *http.Client, endpoint string, tokens oauth2.TokenSource, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if tokens != nil {
		token, err := tokens.Token()
		if err != nil {
			return fmt.Errorf("obtaining access token: %w", err)
		}
		token.SetAuthHeader(req)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readStatusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// readStatusError extracts a message from an error body. Both
// {"error":{"message":"..."}} and {"error":"..."} shapes are recognized;
// anything else is reported verbatim.
func readStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &nested) == nil && nested.Error.Message != "" {
		return &StatusError{StatusCode: resp.StatusCode, Message: nested.Error.Message}
	}

	var flat struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &flat) == nil && flat.Error != "" {
		return &StatusError{StatusCode: resp.StatusCode, Message: flat.Error}
	}

	return &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}
