// Package client provides support for talking to a node over its HTTP api.
// It is used by nodes to reach their peers and by the mining client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
)

// DefaultTimeout is used when no timeout is provided to New.
const DefaultTimeout = 10 * time.Second

// ErrProofRejected is returned by Mine when the node refuses the proof.
var ErrProofRejected = errors.New("new proof rejected")

// StatusError is returned when a node responds with an unexpected status.
type StatusError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (se *StatusError) Error() string {
	return fmt.Sprintf("status[%d]: %s", se.StatusCode, se.Message)
}

// =============================================================================

// MineResult is what the node reports for a forged block.
type MineResult struct {
	Message      string                 `json:"message"`
	Index        uint64                 `json:"index"`
	Transactions []database.Transaction `json:"transactions"`
	Proof        uint64                 `json:"proof"`
	PreviousHash string                 `json:"previous_hash"`
}

// Client represents a connection to a single node.
type Client struct {
	baseURL string
	http    *http.Client
}

// New constructs a client for the node at the specified address. The address
// may be given with or without a scheme.
func New(address string, timeout time.Duration) *Client {
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(address, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the url of the node this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LastBlock returns the tip of the node's chain.
func (c *Client) LastBlock(ctx context.Context) (database.Block, error) {
	var resp struct {
		LastBlock database.Block `json:"last-block"`
	}

	if err := c.send(ctx, http.MethodGet, "/last-block", nil, &resp); err != nil {
		return database.Block{}, err
	}

	return resp.LastBlock, nil
}

// Chain returns the node's full chain.
func (c *Client) Chain(ctx context.Context) ([]database.Block, error) {
	var resp struct {
		Chain  []database.Block `json:"chain"`
		Length int              `json:"length"`
	}

	if err := c.send(ctx, http.MethodGet, "/chain", nil, &resp); err != nil {
		return nil, err
	}

	if resp.Length != len(resp.Chain) {
		return nil, fmt.Errorf("reported length[%d] doesn't match chain length[%d]", resp.Length, len(resp.Chain))
	}

	return resp.Chain, nil
}

// ValidChain asks the node to validate its own chain.
func (c *Client) ValidChain(ctx context.Context) (bool, error) {
	var resp struct {
		Validity bool `json:"validity"`
	}

	if err := c.send(ctx, http.MethodGet, "/valid-chain", nil, &resp); err != nil {
		return false, err
	}

	return resp.Validity, nil
}

// Mine submits a proof for the node's current tip. An empty id credits the
// node itself with the reward.
func (c *Client) Mine(ctx context.Context, proof uint64, id string) (MineResult, error) {
	req := struct {
		Proof uint64 `json:"proof"`
		ID    string `json:"id,omitempty"`
	}{
		Proof: proof,
		ID:    id,
	}

	var resp MineResult
	err := c.send(ctx, http.MethodPost, "/mine", req, &resp)

	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusBadRequest {
		return MineResult{}, ErrProofRejected
	}

	if err != nil {
		return MineResult{}, err
	}

	return resp, nil
}

// SubmitTransaction queues a transaction on the node and returns the node's
// acknowledgement.
func (c *Client) SubmitTransaction(ctx context.Context, tx database.Transaction) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}

	if err := c.send(ctx, http.MethodPost, "/transactions/new", tx, &resp); err != nil {
		return "", err
	}

	return resp.Message, nil
}

// RegisterNodes registers the addresses as peers of the node and returns the
// node's full peer list.
func (c *Client) RegisterNodes(ctx context.Context, nodes []string) ([]string, error) {
	req := struct {
		Nodes []string `json:"nodes"`
	}{
		Nodes: nodes,
	}

	var resp struct {
		Message    string   `json:"message"`
		TotalNodes []string `json:"total_nodes"`
	}

	if err := c.send(ctx, http.MethodPost, "/nodes/register", req, &resp); err != nil {
		return nil, err
	}

	return resp.TotalNodes, nil
}

// ProposeBlock announces a newly mined block to the node. The node value
// identifies the sender and must be registered with the receiving node.
func (c *Client) ProposeBlock(ctx context.Context, block database.Block, node string) (string, error) {
	req := struct {
		Block database.Block `json:"block"`
		Node  string         `json:"node"`
	}{
		Block: block,
		Node:  node,
	}

	var msg string
	if err := c.send(ctx, http.MethodPost, "/block/new", req, &msg); err != nil {
		return "", err
	}

	return msg, nil
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func (c *Client) send(ctx context.Context, method string, path string, dataSend any, dataRecv any) error {
	var body io.Reader

	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: decodeMessage(msg)}
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// decodeMessage pulls a readable message out of an error body. Nodes answer
// with either a json string or an object carrying a message or error field.
func decodeMessage(body []byte) string {
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}

	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &obj); err == nil {
		switch {
		case obj.Message != "":
			return obj.Message
		case obj.Error != "":
			return obj.Error
		}
	}

	return strings.TrimSpace(string(body))
}
