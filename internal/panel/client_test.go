package panel

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/models"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.requests...)
}

func newTestServer(t *testing.T, status int, response string) (*Client, *recorder) {
	t.Helper()
	rc := &recorder{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
		}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}
		rc.mu.Lock()
		rc.requests = append(rc.requests, rec)
		rc.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, "secret", 5*time.Second, zap.NewNop()), rc
}

func TestClient_ListUsers(t *testing.T) {
	client, reqs := newTestServer(t, http.StatusOK,
		`{"response":{"users":[{"uuid":"u1","username":"alice","status":"ACTIVE"}],"total":1}}`)

	page, err := client.ListUsers(context.Background(), 20, 10)
	require.NoError(t, err)

	require.Len(t, page.Users, 1)
	assert.Equal(t, "alice", page.Users[0].Username)
	assert.Equal(t, 1, page.Total)

	all := reqs.all()
	require.Len(t, all, 1)
	req := all[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/users", req.Path)
	assert.Equal(t, "size=10&start=20", req.Query)
	assert.Equal(t, "Bearer secret", req.Auth)
}

func TestClient_CreateHost(t *testing.T) {
	client, reqs := newTestServer(t, http.StatusCreated,
		`{"response":{"uuid":"h1","remark":"edge1","address":"10.0.0.5","port":443}}`)

	host, err := client.CreateHost(context.Background(), models.CreateHostRequest{
		Remark:  "edge1",
		Address: "10.0.0.5",
		Port:    443,
		Inbound: models.HostInbound{ConfigProfileUUID: "p1", ConfigProfileInboundUUID: "i1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "h1", host.UUID)

	body := reqs.all()[0].Body
	assert.Equal(t, "edge1", body["remark"])
	assert.Equal(t, float64(443), body["port"])
	assert.Equal(t, false, body["isDisabled"])
	inbound := body["inbound"].(map[string]any)
	assert.Equal(t, "p1", inbound["configProfileUuid"])
	assert.Equal(t, "i1", inbound["configProfileInboundUuid"])
}

func TestClient_UpdateSendsUUIDInBody(t *testing.T) {
	client, reqs := newTestServer(t, http.StatusOK, `{"response":{"uuid":"n1","name":"new"}}`)

	node, err := client.UpdateNode(context.Background(), "n1", models.Patch{"name": "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", node.Name)

	req := reqs.all()[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/api/nodes", req.Path)
	assert.Equal(t, "n1", req.Body["uuid"])
	assert.Equal(t, "new", req.Body["name"])
}

func TestClient_Actions(t *testing.T) {
	client, reqs := newTestServer(t, http.StatusOK, `{"response":{"uuid":"x"}}`)
	ctx := context.Background()

	_, err := client.ResetUserTraffic(ctx, "u1")
	require.NoError(t, err)
	_, err = client.DisableNode(ctx, "n1")
	require.NoError(t, err)
	require.NoError(t, client.RestartNode(ctx, "n1"))
	require.NoError(t, client.DeleteUserDevice(ctx, "u1", "hw"))

	all := reqs.all()
	paths := make([]string, 0, len(all))
	for _, r := range all {
		paths = append(paths, r.Method+" "+r.Path)
	}
	assert.Equal(t, []string{
		"POST /api/users/u1/actions/reset-traffic",
		"POST /api/nodes/n1/actions/disable",
		"POST /api/nodes/n1/actions/restart",
		"POST /api/hwid/devices/delete",
	}, paths)
	assert.Equal(t, "hw", all[3].Body["hwid"])
}

func TestClient_APIError(t *testing.T) {
	client, _ := newTestServer(t, http.StatusNotFound,
		`{"message":"User not found","errorCode":"A063","statusCode":404}`)

	_, err := client.GetUser(context.Background(), "missing")
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "A063", apiErr.Code)
	assert.Equal(t, "User not found", apiErr.Message)
	assert.True(t, IsNotFound(err))
}

func TestClient_APIErrorWithoutBody(t *testing.T) {
	client, _ := newTestServer(t, http.StatusBadGateway, `<html>bad gateway</html>`)

	err := client.DeleteHost(context.Background(), "h1")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestClient_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", time.Second, zap.NewNop())

	_, err := client.ListHosts(context.Background())
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, CodeNetwork, apiErr.Code)
}

func TestClient_SystemStats(t *testing.T) {
	client, _ := newTestServer(t, http.StatusOK, `{"response":{
		"cpu":{"cores":4},
		"memory":{"total":8000,"used":2000},
		"uptime":3600,
		"users":{"statusCounts":{"ACTIVE":3,"DISABLED":1},"totalUsers":4},
		"onlineStats":{"onlineNow":2},
		"nodes":{"totalOnline":1,"totalBytesLifetime":"1073741824"}}}`)

	stats, err := client.SystemStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.CPUCores)
	assert.Equal(t, 4, stats.TotalUsers)
	assert.Equal(t, 3, stats.StatusCounts["ACTIVE"])
	assert.Equal(t, 2, stats.OnlineNow)
	assert.Equal(t, int64(1073741824), stats.TotalTraffic)
}

func TestClient_ListDevices(t *testing.T) {
	client, reqs := newTestServer(t, http.StatusOK,
		`{"response":{"devices":[{"hwid":"hw1","userUuid":"u1","platform":"iOS"}],"total":7}}`)

	page, err := client.ListDevices(context.Background(), 5, 5)
	require.NoError(t, err)
	require.Len(t, page.Devices, 1)
	assert.Equal(t, "hw1", page.Devices[0].HWID)
	assert.Equal(t, 7, page.Total)

	all := reqs.all()
	require.Len(t, all, 1)
	assert.Equal(t, "/api/hwid/devices", all[0].Path)
	assert.Equal(t, "size=5&start=5", all[0].Query)
}

func TestClient_HWIDStats(t *testing.T) {
	client, reqs := newTestServer(t, http.StatusOK, `{"response":{
		"byPlatform":[{"platform":"Android","count":4}],
		"stats":{"totalUniqueDevices":4,"totalHwidDevices":5,"averageHwidDevicesPerUser":1.25}}}`)

	stats, err := client.HWIDStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Totals.Devices)
	assert.Equal(t, 4, stats.Totals.UniqueDevices)
	assert.InDelta(t, 1.25, stats.Totals.AveragePerUser, 0.001)
	require.Len(t, stats.ByPlatform, 1)
	assert.Equal(t, "/api/hwid/devices/stats", reqs.all()[0].Path)
}

func TestExtendExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 0, 30), ExtendExpiry(nil, now, 30))

	past := now.AddDate(0, 0, -10)
	assert.Equal(t, now.AddDate(0, 0, 7), ExtendExpiry(&past, now, 7))

	future := now.AddDate(0, 0, 10)
	assert.Equal(t, now.AddDate(0, 0, 17), ExtendExpiry(&future, now, 7))
}

func TestClient_ExtendUser(t *testing.T) {
	patches := make(chan map[string]any, 1)
	expire := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `{"response":{"uuid":"u1","expireAt":"`+expire.Format(time.RFC3339)+`"}}`)
		case http.MethodPatch:
			var patched map[string]any
			_ = json.NewDecoder(r.Body).Decode(&patched)
			patches <- patched
			_, _ = io.WriteString(w, `{"response":{"uuid":"u1"}}`)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second, zap.NewNop())
	client.now = func() time.Time { return time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC) }

	_, err := client.ExtendUser(context.Background(), "u1", 30)
	require.NoError(t, err)
	patched := <-patches
	assert.Equal(t, "u1", patched["uuid"])
	assert.Equal(t, "2030-01-31T00:00:00Z", patched["expireAt"])
}
