package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zyclonepunch/kzg-ceremony-sequencer/lobby"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/transcript"
)

type fakeStore struct{ contributed map[string]bool }

func (f *fakeStore) HasContributed(uid string) (bool, error) { return f.contributed[uid], nil }
func (f *fakeStore) InsertContributor(uid string) error {
	f.contributed[uid] = true
	return nil
}

func newTestServer() *Server {
	tr := transcript.NewGenesis([][2]int{{4, 2}})
	l := lobby.New(4, 0, time.Minute, tr, &fakeStore{contributed: map[string]bool{}}, nil)
	return New(l, nil)
}

func TestHandleJoinAndStatus(t *testing.T) {
	s := newTestServer()

	body, _ := json.Marshal(joinRequest{Identity: ""})
	req := httptest.NewRequest("POST", "/lobby/join", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.HandleJoin(w, req)
	require.Equal(t, 200, w.Code)

	var resp struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)

	w2 := httptest.NewRecorder()
	s.HandleStatus(w2, httptest.NewRequest("GET", "/lobby/status", nil))
	require.Equal(t, 200, w2.Code)
}

func TestHandleTryContributeUnknownSession(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest("POST", "/lobby/try_contribute?sessionId=nope", nil)
	w := httptest.NewRecorder()
	s.HandleTryContribute(w, req)
	require.Equal(t, 404, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "UnknownSessionId", resp.Error)
}

func TestHandleTryContributeFallsBackToInFlightSnapshot(t *testing.T) {
	s := newTestServer()

	body, _ := json.Marshal(joinRequest{Identity: ""})
	joinReq := httptest.NewRequest("POST", "/lobby/join", bytes.NewReader(body))
	joinW := httptest.NewRecorder()
	s.HandleJoin(joinW, joinReq)
	require.Equal(t, 200, joinW.Code)

	var joinResp struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(joinW.Body.Bytes(), &joinResp))

	first := httptest.NewRecorder()
	s.HandleTryContribute(first, httptest.NewRequest("POST", "/lobby/try_contribute?sessionId="+joinResp.SessionID, nil))
	require.Equal(t, 200, first.Code)

	// The caller already holds the active slot; a retry (e.g. after a
	// dropped response) must re-serve the in-flight snapshot instead of
	// failing with AnotherContributionInProgress.
	second := httptest.NewRecorder()
	s.HandleTryContribute(second, httptest.NewRequest("POST", "/lobby/try_contribute?sessionId="+joinResp.SessionID, nil))
	require.Equal(t, 200, second.Code)

	var batch transcript.BatchContribution
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &batch))
}

func TestHandleJoinRejectsMalformedIdentity(t *testing.T) {
	s := newTestServer()

	body, _ := json.Marshal(joinRequest{Identity: "eth|not-an-address"})
	req := httptest.NewRequest("POST", "/lobby/join", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.HandleJoin(w, req)
	require.Equal(t, 400, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Transport", resp.Error)
}
