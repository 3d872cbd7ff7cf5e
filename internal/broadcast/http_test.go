package broadcast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type listDirectory []int64

func (d listDirectory) AllTgIDs(_ context.Context) ([]int64, error) {
	return d, nil
}

type recordingSender struct {
	sent []int64
}

func (s *recordingSender) SendText(chatID int64, _ string) error {
	s.sent = append(s.sent, chatID)
	return nil
}

func newTestRouter(dir Directory, sender Sender) http.Handler {
	return NewRouter(NewService(dir, sender, time.Millisecond))
}

func TestBroadcastEndpoint(t *testing.T) {
	sender := &recordingSender{}
	router := newTestRouter(listDirectory{1, 2}, sender)

	req := httptest.NewRequest(http.MethodPost, "/api/broadcast",
		strings.NewReader(`{"message":"sale starts now"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp broadcastResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "ok", resp.Status)
	require.Empty(t, resp.Errors)
	require.Equal(t, []int64{1, 2}, sender.sent)
}

func TestBroadcastRejectsEmptyMessage(t *testing.T) {
	router := newTestRouter(listDirectory{}, &recordingSender{})

	req := httptest.NewRequest(http.MethodPost, "/api/broadcast",
		strings.NewReader(`{"message":"   "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBroadcastRejectsInvalidJSON(t *testing.T) {
	router := newTestRouter(listDirectory{}, &recordingSender{})

	req := httptest.NewRequest(http.MethodPost, "/api/broadcast",
		strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBroadcastMethodNotAllowed(t *testing.T) {
	router := newTestRouter(listDirectory{}, &recordingSender{})

	req := httptest.NewRequest(http.MethodGet, "/api/broadcast", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
