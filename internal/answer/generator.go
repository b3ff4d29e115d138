// Package answer turns a question and retrieved context into a grounded
// markdown answer by calling an external generation backend.
package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"urlresearch/internal/vector"
)

// BackendError is a non-success HTTP response from the generation
// backend.
type BackendError struct {
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("answer: generation backend returned status %d: %s", e.Status, e.Body)
}

// ResponseFormatError means the backend replied 200 but the body did not
// match the expected shape.
type ResponseFormatError struct {
	Body string
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("answer: unexpected generation response structure: %s", e.Body)
}

// Result is the generated answer plus the unique source URLs that
// contributed context, in first-seen order.
type Result struct {
	Answer  string
	Sources []string
}

// Generator invokes a Worker AI style generation backend: POST a JSON
// {"prompt": ...} body, read the generated text out of the response.
type Generator struct {
	endpoint string
	client   *http.Client
}

// NewGenerator creates a Generator for the given endpoint. A nil client
// gets a default with a 60s timeout.
func NewGenerator(endpoint string, client *http.Client) *Generator {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Generator{endpoint: endpoint, client: client}
}

// Answer builds the grounded prompt from the retrieved context, calls
// the backend, and returns the answer text with its sources. The model's
// adherence to the markdown structure is a contract with the model, not
// validated here.
func (g *Generator) Answer(ctx context.Context, question string, results []vector.Result) (Result, error) {
	prompt := BuildPrompt(question, results)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return Result{}, err
	}

	return Result{Answer: text, Sources: Sources(results)}, nil
}

func (g *Generator) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", fmt.Errorf("answer: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("answer: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("answer: generation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("answer: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &BackendError{Status: resp.StatusCode, Body: string(respBody)}
	}

	// Expected shape: [{"response": {"response": "<text>"}}]
	var parsed []struct {
		Response struct {
			Response *string `json:"response"`
		} `json:"response"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &ResponseFormatError{Body: string(respBody)}
	}
	if len(parsed) == 0 || parsed[0].Response.Response == nil {
		return "", &ResponseFormatError{Body: string(respBody)}
	}

	return *parsed[0].Response.Response, nil
}
