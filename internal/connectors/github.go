package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RawAdvisory — элемент ответа ленты. Все поля необязательны, поэтому указатели:
// отсутствие и пустое значение обрабатываются по-разному.
type RawAdvisory struct {
	Severity    *string `json:"severity"`
	PublishedAt *string `json:"published_at"`
	Summary     *string `json:"summary"`
}

type GitHubFeedConfig struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// GitHubFeed читает публичный список уязвимостей. Ровно одна попытка, без авторизации.
type GitHubFeed struct {
	url       string
	userAgent string
	client    *http.Client
}

func NewGitHubFeed(cfg GitHubFeedConfig) *GitHubFeed {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GitHubFeed{
		url:       cfg.URL,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

// FetchAdvisories выполняет GET и возвращает непустой массив записей
// либо *FeedError с причиной отказа.
func (f *GitHubFeed) FetchAdvisories(ctx context.Context) ([]RawAdvisory, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &FeedError{Reason: ReasonTransport, Cause: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FeedError{Reason: ReasonTransport, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Тело дочитываем, чтобы соединение вернулось в пул
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FeedError{Reason: ReasonStatus, Cause: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	// Объект вместо массива (например, сообщение о лимите) не декодируется в слайс
	var items []RawAdvisory
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, &FeedError{Reason: ReasonDecode, Cause: err}
	}
	if len(items) == 0 {
		return nil, &FeedError{Reason: ReasonEmpty}
	}

	return items, nil
}
