package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/governor/internal/domain"
	v1 "github.com/xiaot623/gogo/governor/internal/transport/http/v1"
)

// chatClient talks to the /v1/chat endpoint of a running governor.
type chatClient struct {
	baseURL    string
	httpClient *http.Client
	identity   domain.Identity
	sessionID  string
}

func newChatClient(addr string, identity domain.Identity) *chatClient {
	return &chatClient{
		baseURL:    strings.TrimRight(addr, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		identity:   identity,
	}
}

// Send posts one message and remembers the session for the next turn.
func (c *chatClient) Send(ctx context.Context, mode domain.ChatMode, message string) (*domain.ChatResult, error) {
	body, err := json.Marshal(domain.ChatRequest{Message: message, Mode: mode, SessionID: c.sessionID})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(v1.HeaderUserID, c.identity.UserID)
	if c.identity.OrgID != "" {
		req.Header.Set(v1.HeaderOrgID, c.identity.OrgID)
	}
	req.Header.Set(v1.HeaderPrivileged, strconv.FormatBool(c.identity.Privileged))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var errResp domain.ErrorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.SessionID != "" {
			c.sessionID = errResp.SessionID
		}
		if errResp.Message != "" {
			return nil, fmt.Errorf("%s (%d)", errResp.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(data))
	}

	var result domain.ChatResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	c.sessionID = result.SessionID
	return &result, nil
}

func runChat(cmd *cobra.Command, args []string) error {
	client := newChatClient(chatAddr, domain.Identity{UserID: chatUser, OrgID: chatOrg, Privileged: chatPrivileged})
	mode := domain.ChatMode(chatMode)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Connected to %s as %s (%s mode)\n", chatAddr, chatUser, mode)
	fmt.Fprintln(out, "Type a message and press Enter to send.")
	fmt.Fprintln(out, "Commands: /quit to exit, /new to start a new session")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/quit":
			fmt.Fprintln(out, "Bye!")
			return nil
		case "/new":
			client.sessionID = ""
			fmt.Fprintln(out, "Started a new session.")
			continue
		}

		result, err := client.Send(cmd.Context(), mode, input)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "\n%s\n\n", result.Response)
		if result.Usage != nil {
			fmt.Fprintf(out, "[session %s, %d tokens, $%.6f]\n", result.SessionID, result.Usage.TotalTokens, result.Usage.Cost)
		}
	}
}
