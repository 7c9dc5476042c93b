package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/ytfile-go/api/handlers"
	"github.com/yourusername/ytfile-go/internal/app"
	"github.com/yourusername/ytfile-go/internal/domain"
	"github.com/yourusername/ytfile-go/pkg/logger"
)

// errBusy is returned by submit when the server is already downloading
var errBusy = errors.New("a download is already in progress")

// apiClient talks to the ytfile server
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError carries the error field of a non-2xx response
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (c *apiClient) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return &apiError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *apiClient) Submit(req handlers.SubmitRequest) (domain.DownloadRequest, error) {
	var resp struct {
		Request domain.DownloadRequest `json:"request"`
	}
	err := c.do(http.MethodPost, "/api/v1/downloads", req, &resp)
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		return domain.DownloadRequest{}, errBusy
	}
	return resp.Request, err
}

func (c *apiClient) State() (app.ViewState, error) {
	var state app.ViewState
	err := c.do(http.MethodGet, "/api/v1/state", nil, &state)
	return state, err
}

// videoInfo mirrors the info endpoint response
type videoInfo struct {
	domain.VideoInfo
	DurationText string `json:"duration_text"`
}

func (c *apiClient) Info(videoURL string) (*videoInfo, error) {
	var info videoInfo
	if err := c.do(http.MethodGet, "/api/v1/info?url="+url.QueryEscape(videoURL), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *apiClient) History(limit int) ([]*domain.DownloadRecord, error) {
	var resp struct {
		Records []*domain.DownloadRecord `json:"records"`
	}
	err := c.do(http.MethodGet, "/api/v1/history?limit="+strconv.Itoa(limit), nil, &resp)
	return resp.Records, err
}

func (c *apiClient) DeleteHistory(id string, deleteFile bool) error {
	path := "/api/v1/history/" + url.PathEscape(id)
	if deleteFile {
		path += "?delete_file=true"
	}
	return c.do(http.MethodDelete, path, nil, nil)
}

func (c *apiClient) Logs(category, date string, limit int) ([]logger.LogEntry, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if date != "" {
		q.Set("date", date)
	}
	var resp struct {
		Entries []logger.LogEntry `json:"entries"`
	}
	err := c.do(http.MethodGet, "/api/v1/logs/"+url.PathEscape(category)+"?"+q.Encode(), nil, &resp)
	return resp.Entries, err
}

// Follow streams events until handle returns false, the server closes the
// stream or ctx is done
func (c *apiClient) Follow(ctx context.Context, handle func(handlers.EventMessage) bool) error {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/v1/events/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to event stream: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var msg handlers.EventMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		if !handle(msg) {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}
	}
}
