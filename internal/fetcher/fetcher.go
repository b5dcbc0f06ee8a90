package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// FileFetcher определяет контракт загрузчика файлов тест-кейсов
type FileFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// HTTPFetcher загружает текстовое содержимое по непрозрачной ссылке
// blob-хранилища (входные данные и эталонный вывод тест-кейса).
type HTTPFetcher struct {
	timeout      time.Duration
	maxBodyBytes int64
	httpClient   *http.Client
}

// NewHTTPFetcher создает новый загрузчик файлов
func NewHTTPFetcher(timeout time.Duration, maxBodyBytes int64) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20 // 1 MiB достаточно для текстовых тест-кейсов
	}
	return &HTTPFetcher{
		timeout:      timeout,
		maxBodyBytes: maxBodyBytes,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// FetchText возвращает содержимое файла по URL.
// Любой сбой - повторяемая инфраструктурная ошибка, не вердикт грейдинга.
func (f *HTTPFetcher) FetchText(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build fetch request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: fetching %s", apperrors.ErrUpstreamTimeout, url)
		}
		return "", fmt.Errorf("%w: fetching %s: %v", apperrors.ErrUpstreamUnavailable, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: fetching %s returned status %d", apperrors.ErrUpstreamUnavailable, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", apperrors.ErrUpstreamUnavailable, url, err)
	}

	return string(data), nil
}

// isTimeout распознает таймаут контекста и сетевые таймауты
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
