package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/models"
)

const maxErrorBody = 64 << 10

// Client talks to the Remnawave REST API
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
	now     func() time.Time
}

var _ Gateway = (*Client)(nil)

// NewClient creates a panel client. baseURL is the panel root without /api.
func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		now:     time.Now,
	}
}

type envelope struct {
	Response json.RawMessage `json:"response"`
}

type errorBody struct {
	Message    string `json:"message"`
	ErrorCode  string `json:"errorCode"`
	StatusCode int    `json:"statusCode"`
}

// do performs one request. body is JSON-encoded when non-nil, and the
// "response" member of the reply is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Panel request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return &APIError{Code: CodeNetwork, Message: "panel is unreachable"}
	}
	defer resp.Body.Close()

	c.logger.Debug("Panel request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return errors.Wrapf(err, "decode %s %s", method, path)
	}
	if len(env.Response) == 0 || string(env.Response) == "null" {
		return errors.Errorf("empty response from %s %s", method, path)
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return errors.Wrapf(err, "decode %s %s payload", method, path)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			apiErr.Message = body.Message
		}
		apiErr.Code = body.ErrorCode
	}
	return apiErr
}

func userPath(uuid string) string { return "/api/users/" + url.PathEscape(uuid) }
func hostPath(uuid string) string { return "/api/hosts/" + url.PathEscape(uuid) }
func nodePath(uuid string) string { return "/api/nodes/" + url.PathEscape(uuid) }

func withUUID(uuid string, patch models.Patch) map[string]any {
	body := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		body[k] = v
	}
	body["uuid"] = uuid
	return body
}

// ListUsers returns one page of users
func (c *Client) ListUsers(ctx context.Context, offset, limit int) (*models.UserPage, error) {
	q := url.Values{}
	q.Set("start", strconv.Itoa(offset))
	q.Set("size", strconv.Itoa(limit))

	var page models.UserPage
	if err := c.do(ctx, http.MethodGet, "/api/users?"+q.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetUser fetches a user by UUID
func (c *Client) GetUser(ctx context.Context, uuid string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, userPath(uuid), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a user
func (c *Client) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/api/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial update
func (c *Client) UpdateUser(ctx context.Context, uuid string, patch models.Patch) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPatch, "/api/users", withUUID(uuid, patch), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser deletes a user
func (c *Client) DeleteUser(ctx context.Context, uuid string) error {
	return c.do(ctx, http.MethodDelete, userPath(uuid), nil, nil)
}

// ExtendUser moves the expiry date forward by days
func (c *Client) ExtendUser(ctx context.Context, uuid string, days int) (*models.User, error) {
	user, err := c.GetUser(ctx, uuid)
	if err != nil {
		return nil, err
	}
	expireAt := ExtendExpiry(user.ExpireAt, c.now(), days)
	return c.UpdateUser(ctx, uuid, models.Patch{"expireAt": expireAt.UTC().Format(time.RFC3339)})
}

// ExtendExpiry returns the new expiry after adding days to max(now, current).
func ExtendExpiry(current *time.Time, now time.Time, days int) time.Time {
	base := now
	if current != nil && current.After(now) {
		base = *current
	}
	return base.AddDate(0, 0, days)
}

func (c *Client) userAction(ctx context.Context, uuid, action string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, userPath(uuid)+"/actions/"+action, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ResetUserTraffic zeroes the user's traffic counter
func (c *Client) ResetUserTraffic(ctx context.Context, uuid string) (*models.User, error) {
	return c.userAction(ctx, uuid, "reset-traffic")
}

// EnableUser activates a user
func (c *Client) EnableUser(ctx context.Context, uuid string) (*models.User, error) {
	return c.userAction(ctx, uuid, "enable")
}

// DisableUser disables a user
func (c *Client) DisableUser(ctx context.Context, uuid string) (*models.User, error) {
	return c.userAction(ctx, uuid, "disable")
}

// ListHosts returns all hosts
func (c *Client) ListHosts(ctx context.Context) ([]models.Host, error) {
	var hosts []models.Host
	if err := c.do(ctx, http.MethodGet, "/api/hosts", nil, &hosts); err != nil {
		return nil, err
	}
	return hosts, nil
}

// GetHost fetches a host by UUID
func (c *Client) GetHost(ctx context.Context, uuid string) (*models.Host, error) {
	var host models.Host
	if err := c.do(ctx, http.MethodGet, hostPath(uuid), nil, &host); err != nil {
		return nil, err
	}
	return &host, nil
}

// CreateHost creates a host
func (c *Client) CreateHost(ctx context.Context, req models.CreateHostRequest) (*models.Host, error) {
	var host models.Host
	if err := c.do(ctx, http.MethodPost, "/api/hosts", req, &host); err != nil {
		return nil, err
	}
	return &host, nil
}

// UpdateHost applies a partial update
func (c *Client) UpdateHost(ctx context.Context, uuid string, patch models.Patch) (*models.Host, error) {
	var host models.Host
	if err := c.do(ctx, http.MethodPatch, "/api/hosts", withUUID(uuid, patch), &host); err != nil {
		return nil, err
	}
	return &host, nil
}

// DeleteHost deletes a host
func (c *Client) DeleteHost(ctx context.Context, uuid string) error {
	return c.do(ctx, http.MethodDelete, hostPath(uuid), nil, nil)
}

// ListInbounds returns all config profile inbounds
func (c *Client) ListInbounds(ctx context.Context) ([]models.Inbound, error) {
	var out struct {
		Inbounds []models.Inbound `json:"inbounds"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/config-profiles/inbounds", nil, &out); err != nil {
		return nil, err
	}
	return out.Inbounds, nil
}

// ListNodes returns all nodes
func (c *Client) ListNodes(ctx context.Context) ([]models.Node, error) {
	var nodes []models.Node
	if err := c.do(ctx, http.MethodGet, "/api/nodes", nil, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// GetNode fetches a node by UUID
func (c *Client) GetNode(ctx context.Context, uuid string) (*models.Node, error) {
	var node models.Node
	if err := c.do(ctx, http.MethodGet, nodePath(uuid), nil, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// CreateNode creates a node
func (c *Client) CreateNode(ctx context.Context, req models.CreateNodeRequest) (*models.Node, error) {
	var node models.Node
	if err := c.do(ctx, http.MethodPost, "/api/nodes", req, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// UpdateNode applies a partial update
func (c *Client) UpdateNode(ctx context.Context, uuid string, patch models.Patch) (*models.Node, error) {
	var node models.Node
	if err := c.do(ctx, http.MethodPatch, "/api/nodes", withUUID(uuid, patch), &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// DeleteNode deletes a node
func (c *Client) DeleteNode(ctx context.Context, uuid string) error {
	return c.do(ctx, http.MethodDelete, nodePath(uuid), nil, nil)
}

func (c *Client) nodeAction(ctx context.Context, uuid, action string) (*models.Node, error) {
	var node models.Node
	if err := c.do(ctx, http.MethodPost, nodePath(uuid)+"/actions/"+action, nil, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// EnableNode enables a node
func (c *Client) EnableNode(ctx context.Context, uuid string) (*models.Node, error) {
	return c.nodeAction(ctx, uuid, "enable")
}

// DisableNode disables a node
func (c *Client) DisableNode(ctx context.Context, uuid string) (*models.Node, error) {
	return c.nodeAction(ctx, uuid, "disable")
}

// RestartNode asks the node to restart its core
func (c *Client) RestartNode(ctx context.Context, uuid string) error {
	return c.do(ctx, http.MethodPost, nodePath(uuid)+"/actions/restart", nil, nil)
}

// ListDevices returns one page of devices across all users
func (c *Client) ListDevices(ctx context.Context, offset, limit int) (*models.DevicePage, error) {
	q := url.Values{}
	q.Set("start", strconv.Itoa(offset))
	q.Set("size", strconv.Itoa(limit))

	var page models.DevicePage
	if err := c.do(ctx, http.MethodGet, "/api/hwid/devices?"+q.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// HWIDStats returns device counters grouped by platform
func (c *Client) HWIDStats(ctx context.Context) (*models.HWIDStats, error) {
	var stats models.HWIDStats
	if err := c.do(ctx, http.MethodGet, "/api/hwid/devices/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListUserDevices returns the HWID devices registered by a user
func (c *Client) ListUserDevices(ctx context.Context, userUUID string) ([]models.Device, error) {
	var out struct {
		Devices []models.Device `json:"devices"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/hwid/devices/"+url.PathEscape(userUUID), nil, &out); err != nil {
		return nil, err
	}
	return out.Devices, nil
}

// DeleteUserDevice removes one device
func (c *Client) DeleteUserDevice(ctx context.Context, userUUID, hwid string) error {
	body := map[string]string{"userUuid": userUUID, "hwid": hwid}
	return c.do(ctx, http.MethodPost, "/api/hwid/devices/delete", body, nil)
}

// DeleteAllUserDevices removes every device of a user
func (c *Client) DeleteAllUserDevices(ctx context.Context, userUUID string) error {
	body := map[string]string{"userUuid": userUUID}
	return c.do(ctx, http.MethodPost, "/api/hwid/devices/delete-all", body, nil)
}

// ListSquads returns all internal squads
func (c *Client) ListSquads(ctx context.Context) ([]models.Squad, error) {
	var out struct {
		InternalSquads []models.Squad `json:"internalSquads"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/internal-squads", nil, &out); err != nil {
		return nil, err
	}
	return out.InternalSquads, nil
}

// GetSquad fetches a squad by UUID
func (c *Client) GetSquad(ctx context.Context, uuid string) (*models.Squad, error) {
	var squad models.Squad
	if err := c.do(ctx, http.MethodGet, "/api/internal-squads/"+url.PathEscape(uuid), nil, &squad); err != nil {
		return nil, err
	}
	return &squad, nil
}

// DeleteSquad deletes a squad
func (c *Client) DeleteSquad(ctx context.Context, uuid string) error {
	return c.do(ctx, http.MethodDelete, "/api/internal-squads/"+url.PathEscape(uuid), nil, nil)
}

type systemStatsWire struct {
	CPU struct {
		Cores int `json:"cores"`
	} `json:"cpu"`
	Memory struct {
		Total int64 `json:"total"`
		Used  int64 `json:"used"`
	} `json:"memory"`
	Uptime float64 `json:"uptime"`
	Users  struct {
		StatusCounts map[string]int `json:"statusCounts"`
		TotalUsers   int            `json:"totalUsers"`
	} `json:"users"`
	OnlineStats struct {
		OnlineNow int `json:"onlineNow"`
	} `json:"onlineStats"`
	Nodes struct {
		TotalOnline        int    `json:"totalOnline"`
		TotalBytesLifetime string `json:"totalBytesLifetime"`
	} `json:"nodes"`
}

// SystemStats returns aggregate panel statistics
func (c *Client) SystemStats(ctx context.Context) (*models.SystemStats, error) {
	var wire systemStatsWire
	if err := c.do(ctx, http.MethodGet, "/api/system/stats", nil, &wire); err != nil {
		return nil, err
	}

	stats := &models.SystemStats{
		CPUCores:      wire.CPU.Cores,
		MemoryTotal:   wire.Memory.Total,
		MemoryUsed:    wire.Memory.Used,
		UptimeSeconds: wire.Uptime,
		TotalUsers:    wire.Users.TotalUsers,
		StatusCounts:  wire.Users.StatusCounts,
		OnlineNow:     wire.OnlineStats.OnlineNow,
		NodesOnline:   wire.Nodes.TotalOnline,
	}
	if wire.Nodes.TotalBytesLifetime != "" {
		total, err := strconv.ParseInt(wire.Nodes.TotalBytesLifetime, 10, 64)
		if err != nil {
			c.logger.Warn("Unexpected lifetime traffic value", zap.String("value", wire.Nodes.TotalBytesLifetime))
		} else {
			stats.TotalTraffic = total
		}
	}
	return stats, nil
}

// String identifies the client in logs
func (c *Client) String() string {
	return fmt.Sprintf("panel(%s)", c.baseURL)
}
