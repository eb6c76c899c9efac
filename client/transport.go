package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Transport - сетевая сторона клиента: HTTP для отправки и истории,
// WebSocket для входящих событий. Все вызовы несут Bearer-токен.
type Transport struct {
	baseURL    string
	token      string
	httpClient *http.Client
	ws         *websocket.Conn
}

func NewTransport(baseURL, token string) *Transport {
	return &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Dial устанавливает WebSocket-соединение доставки
func (t *Transport) Dial() error {
	u, err := url.Parse(t.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/api/v1/ws"

	header := http.Header{}
	header.Set("Authorization", "Bearer "+t.token)

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		return fmt.Errorf("websocket dial failed: %w", err)
	}
	t.ws = conn
	return nil
}

// ReadPump читает события доставки и передает их обработчику до ошибки
// чтения (закрытия соединения). Возвращает ошибку, оборвавшую цикл.
func (t *Transport) ReadPump(handle func(Event)) error {
	if t.ws == nil {
		return fmt.Errorf("websocket is not connected")
	}
	for {
		var ev Event
		if err := t.ws.ReadJSON(&ev); err != nil {
			return err
		}
		if ev.Event != "message" {
			continue
		}
		handle(ev)
	}
}

// Close закрывает WebSocket-соединение
func (t *Transport) Close() {
	if t.ws != nil {
		_ = t.ws.Close()
		t.ws = nil
	}
}

func (t *Transport) do(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, t.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.token)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(data))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// SendDirect отправляет прямое сообщение с корреляционным токеном
func (t *Transport) SendDirect(toUserID int64, text, correlationToken string) error {
	body := map[string]string{
		"text":              text,
		"correlation_token": correlationToken,
	}
	return t.do("POST", fmt.Sprintf("/api/v1/dialog/%d/send", toUserID), body, nil)
}

// SendGroup отправляет сообщение в группу с корреляционным токеном
func (t *Transport) SendGroup(groupID int64, text, correlationToken string) error {
	body := map[string]string{
		"text":              text,
		"correlation_token": correlationToken,
	}
	return t.do("POST", fmt.Sprintf("/api/v1/groups/%d/send", groupID), body, nil)
}

type historyResponse struct {
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"has_more"`
}

// DialogHistory возвращает страницу истории диалога от новых к старым
func (t *Transport) DialogHistory(otherUserID int64, page, pageSize int) ([]Message, bool, error) {
	var resp historyResponse
	path := fmt.Sprintf("/api/v1/dialog/%d/list?page=%d&page_size=%d", otherUserID, page, pageSize)
	if err := t.do("GET", path, nil, &resp); err != nil {
		return nil, false, err
	}
	return resp.Messages, resp.HasMore, nil
}

// GroupHistory возвращает страницу истории группы от новых к старым
func (t *Transport) GroupHistory(groupID int64, page, pageSize int) ([]Message, bool, error) {
	var resp historyResponse
	path := fmt.Sprintf("/api/v1/groups/%d/list?page=%d&page_size=%d", groupID, page, pageSize)
	if err := t.do("GET", path, nil, &resp); err != nil {
		return nil, false, err
	}
	return resp.Messages, resp.HasMore, nil
}
