package ghclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spiffcs/vigil/internal/log"
)

const graphqlEndpoint = "https://api.github.com/graphql"

// graphqlRequest represents a GraphQL request payload.
type graphqlRequest struct {
	Query string `json:"query"`
}

// graphqlResponse represents a generic GraphQL response.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// executeGraphQL executes a GraphQL query against GitHub's API. Transport
// failures, non-200 responses, and GraphQL-level errors all fail the call;
// partial data is never returned, because a cycle acting on an incomplete
// window would advance the checkpoint past items it did not see.
func (c *Client) executeGraphQL(ctx context.Context, query string) (json.RawMessage, error) {
	reqBody := graphqlRequest{Query: query}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", graphqlEndpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Trace("GraphQL request", "bytes", len(bodyBytes))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GraphQL request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read GraphQL response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GraphQL request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return nil, fmt.Errorf("failed to parse GraphQL response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		for _, e := range gqlResp.Errors {
			log.Debug("GraphQL error", "message", e.Message, "type", e.Type)
		}
		return nil, fmt.Errorf("GraphQL query failed with %d errors, first: %s", len(gqlResp.Errors), gqlResp.Errors[0].Message)
	}

	return gqlResp.Data, nil
}

// actor is a GraphQL actor with only the login selected. Deleted users
// come back as JSON null, so references to it are pointers.
type actor struct {
	Login string `json:"login"`
}

// DecodeError reports a response node that failed validation at the fetch
// boundary. The whole call fails rather than classifying partially decoded
// data.
type DecodeError struct {
	Subject string
	Field   string
	Msg     string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Subject, e.Field, e.Msg)
}

// parseTimestamp validates an RFC3339 timestamp field. Empty or malformed
// values are decode failures, not zero times.
func parseTimestamp(subject, field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, &DecodeError{Subject: subject, Field: field, Msg: "missing"}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, &DecodeError{Subject: subject, Field: field, Msg: err.Error()}
	}
	return t, nil
}
