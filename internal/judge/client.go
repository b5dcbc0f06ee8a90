package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// ExecRequest - запрос на исполнение кода студента
type ExecRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}

// Execution - сырой результат исполнения. Ответ judge - всегда данные,
// никогда не интерпретируется как код.
type Execution struct {
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
}

// HasCompileError проверяет наличие вывода компилятора
func (e *Execution) HasCompileError() bool {
	return e.CompileOutput != ""
}

// HasRuntimeError проверяет наличие вывода в stderr
func (e *Execution) HasRuntimeError() bool {
	return e.Stderr != ""
}

// Executor определяет контракт клиента judge-сервиса
type Executor interface {
	Execute(ctx context.Context, req ExecRequest) (*Execution, error)
}

// Client - HTTP-клиент внешнего judge-сервиса (Judge0-совместимый API).
// Исполнение синхронное (wait=true) с ограниченным таймаутом: сбой или
// таймаут judge никогда не превращается в вердикт по ответу студента.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient создает новый клиент judge-сервиса
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Execute отправляет код на исполнение и блокируется до получения результата.
// Ошибки:
//   - ErrUpstreamTimeout - judge не ответил за отведенный таймаут
//   - ErrUpstreamUnavailable - транспортная ошибка или не-2xx ответ
func (c *Client) Execute(ctx context.Context, req ExecRequest) (*Execution, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal judge request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + "/submissions?wait=true"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build judge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-Auth-Token", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: judge did not respond within %s", apperrors.ErrUpstreamTimeout, c.timeout)
		}
		return nil, fmt.Errorf("%w: judge request failed: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: judge returned status %d", apperrors.ErrUpstreamUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read judge response: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	var execution Execution
	if err := json.Unmarshal(data, &execution); err != nil {
		return nil, fmt.Errorf("%w: malformed judge response: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	return &execution, nil
}

// isTimeout распознает таймаут контекста и сетевые таймауты
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
