package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/letsssgooo/historyGames/internal/domain/models"
	"github.com/letsssgooo/historyGames/internal/games"
	"github.com/letsssgooo/historyGames/internal/history"
	"github.com/letsssgooo/historyGames/internal/session"
)

const apiPrefix = "/api/v1"

// HTTPClient реализует Client через HTTP API сервиса.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient создаёт клиента для сервера по адресу baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// CreateSession создаёт новую сессию на стартовом экране.
func (c *HTTPClient) CreateSession(ctx context.Context) (*session.Snapshot, error) {
	ctx, cancelFunc := context.WithTimeout(ctx, timeoutSend)
	defer cancelFunc()

	return c.snapshot(ctx, http.MethodPost, "/sessions", nil)
}

// Session возвращает снимок сессии id.
func (c *HTTPClient) Session(ctx context.Context, id string) (*session.Snapshot, error) {
	ctx, cancelFunc := context.WithTimeout(ctx, timeoutSend)
	defer cancelFunc()

	return c.snapshot(ctx, http.MethodGet, "/sessions/"+id, nil)
}

// SetCredentials задаёт ключ API и предпочитаемую модель сессии id.
func (c *HTTPClient) SetCredentials(ctx context.Context, id, apiKey, model string) (*session.Snapshot, error) {
	params := map[string]interface{}{
		"apiKey": apiKey,
		"model":  model,
	}

	ctx, cancelFunc := context.WithTimeout(ctx, timeoutSend)
	defer cancelFunc()

	return c.snapshot(ctx, http.MethodPost, "/sessions/"+id+"/credentials", params)
}

// AnalyzeText отправляет текст на анализ и ждёт результата.
func (c *HTTPClient) AnalyzeText(ctx context.Context, id, text string) (*session.Snapshot, error) {
	params := map[string]interface{}{
		"text": text,
	}

	ctx, cancelFunc := context.WithTimeout(ctx, timeoutAnalyze)
	defer cancelFunc()

	return c.snapshot(ctx, http.MethodPost, "/sessions/"+id+"/analyze/text", params)
}

// AnalyzeFile загружает файл с названием fileName и содержимым data на анализ.
func (c *HTTPClient) AnalyzeFile(ctx context.Context, id, fileName string, data []byte) (*session.Snapshot, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	multipartWriter, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err = multipartWriter.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write data to multipart form: %w", err)
	}

	if err = writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart form: %w", err)
	}

	ctx, cancelFunc := context.WithTimeout(ctx, timeoutAnalyze)
	defer cancelFunc()

	url := c.baseURL + apiPrefix + "/sessions/" + id + "/analyze/file"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())

	var snap session.Snapshot
	if err = c.do(request, &snap); err != nil {
		return nil, err
	}

	return &snap, nil
}

// StartGame запускает игру gameType в сессии id.
func (c *HTTPClient) StartGame(ctx context.Context, id string, gameType models.GameType) (*session.Snapshot, error) {
	params := map[string]interface{}{
		"type": gameType,
	}

	ctx, cancelFunc := context.WithTimeout(ctx, timeoutSend)
	defer cancelFunc()

	return c.snapshot(ctx, http.MethodPost, "/sessions/"+id+"/game", params)
}

// Act отправляет действие игрока в активную игру.
func (c *HTTPClient) Act(ctx context.Context, id string, action games.Action) (*session.Snapshot, error) {
	ctx, cancelFunc := context.WithTimeout(ctx, timeoutSend)
	defer cancelFunc()

	return c.snapshot(ctx, http.MethodPost, "/sessions/"+id+"/game/actions", action)
}

// OpenMenu открывает меню игр.
func (c *HTTPClient) OpenMenu(ctx context.Context, id string) (*session.Snapshot, error) {
	ctx, cancelFunc := context.WithTimeout(ctx, timeoutSend)
	defer cancelFunc()

	return c.snapshot(ctx, http.MethodPost, "/sessions/"+id+"/menu", nil)
}

// History возвращает сохранённые игры, новые первыми.
func (c *HTTPClient) History(ctx context.Context) ([]history.Entry, error) {
	ctx, cancelFunc := context.WithTimeout(ctx, timeoutSend)
	defer cancelFunc()

	request, err := c.newRequest(ctx, http.MethodGet, "/history", nil)
	if err != nil {
		return nil, err
	}

	var entries []history.Entry
	if err = c.do(request, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

func (c *HTTPClient) snapshot(ctx context.Context, method, path string, params interface{}) (*session.Snapshot, error) {
	request, err := c.newRequest(ctx, method, path, params)
	if err != nil {
		return nil, err
	}

	var snap session.Snapshot
	if err = c.do(request, &snap); err != nil {
		return nil, err
	}

	return &snap, nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, params interface{}) (*http.Request, error) {
	var body io.Reader
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return nil, err
	}
	if params != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	return request, nil
}

// do выполняет запрос и декодирует ответ в out.
// Ответ с кодом ошибки превращается в *APIError.
func (c *HTTPClient) do(request *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("failed to do request for url %s: %w", request.URL, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var result struct {
			Error string `json:"error"`
		}
		if err = json.Unmarshal(data, &result); err != nil || result.Error == "" {
			result.Error = fmt.Sprintf("unexpected response status code %d", resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: result.Error}
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	return json.Unmarshal(data, out)
}
