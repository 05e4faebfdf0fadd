package stubs

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DigneZzZ/remnabot/internal/models"
	"github.com/DigneZzZ/remnabot/internal/panel"
)

// MockPanel is an in-memory implementation of panel.Gateway for tests and local runs
type MockPanel struct {
	mu       sync.RWMutex
	users    map[string]models.User
	hosts    map[string]models.Host
	nodes    map[string]models.Node
	squads   map[string]models.Squad
	devices  map[string][]models.Device
	inbounds []models.Inbound

	calls        map[string]int
	failNext     map[string]error
	failCreateAt map[int]bool
	hostRequests []models.CreateHostRequest

	Now func() time.Time
}

var _ panel.Gateway = (*MockPanel)(nil)

// NewMockPanel creates an empty mock panel
func NewMockPanel() *MockPanel {
	return &MockPanel{
		users:        make(map[string]models.User),
		hosts:        make(map[string]models.Host),
		nodes:        make(map[string]models.Node),
		squads:       make(map[string]models.Squad),
		devices:      make(map[string][]models.Device),
		calls:        make(map[string]int),
		failNext:     make(map[string]error),
		failCreateAt: make(map[int]bool),
		Now:          time.Now,
	}
}

// Seed fills the panel with demo data and returns it for chaining
func (m *MockPanel) Seed() *MockPanel {
	now := m.Now()
	m.AddInbound(models.Inbound{UUID: uuid.NewString(), ProfileUUID: "default-profile", Tag: "VLESS_TCP_REALITY", Type: "vless"})
	m.AddInbound(models.Inbound{UUID: uuid.NewString(), ProfileUUID: "default-profile", Tag: "TROJAN_WS", Type: "trojan"})

	inbound := m.inbounds[0]
	m.AddHost(models.Host{
		Remark:        "Germany",
		Address:       "de.example.com",
		Port:          443,
		SecurityLayer: models.SecurityDefault,
		Inbound:       &models.HostInbound{ConfigProfileUUID: inbound.ProfileUUID, ConfigProfileInboundUUID: inbound.UUID},
	})

	port := 2222
	m.AddNode(models.Node{
		Name:         "de-1",
		Address:      "10.0.0.10",
		Port:         &port,
		IsConnected:  true,
		IsNodeOnline: true,
		CountryCode:  "DE",
		ConfigProfile: &models.NodeConfigProfile{
			ActiveConfigProfileUUID: inbound.ProfileUUID,
			ActiveInbounds:          []models.Inbound{inbound},
		},
	})

	expire := now.AddDate(0, 1, 0)
	expired := now.AddDate(0, 0, -3)
	alice := m.AddUser(models.User{Username: "alice", Status: models.UserStatusActive, ExpireAt: &expire, TrafficLimitBytes: 100 << 30})
	m.AddUser(models.User{Username: "bob", Status: models.UserStatusDisabled, ExpireAt: &expire})
	m.AddUser(models.User{Username: "carol", Status: models.UserStatusExpired, ExpireAt: &expired})

	platform := "Android"
	m.AddDevice(models.Device{HWID: "hw-alice-1", UserUUID: alice.UUID, Platform: &platform})

	m.AddSquad(models.Squad{Name: "Default-Squad", Info: models.SquadInfo{MembersCount: 3, InboundsCount: 2}})
	return m
}

// AddUser stores a user, assigning a UUID when missing
func (m *MockPanel) AddUser(u models.User) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.UUID == "" {
		u.UUID = uuid.NewString()
	}
	if u.ShortUUID == "" {
		u.ShortUUID = strings.ReplaceAll(u.UUID, "-", "")[:12]
	}
	m.users[u.UUID] = u
	return u
}

// AddHost stores a host, assigning a UUID when missing
func (m *MockPanel) AddHost(h models.Host) models.Host {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.UUID == "" {
		h.UUID = uuid.NewString()
	}
	m.hosts[h.UUID] = h
	return h
}

// AddNode stores a node, assigning a UUID when missing
func (m *MockPanel) AddNode(n models.Node) models.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.UUID == "" {
		n.UUID = uuid.NewString()
	}
	m.nodes[n.UUID] = n
	return n
}

// AddSquad stores a squad, assigning a UUID when missing
func (m *MockPanel) AddSquad(s models.Squad) models.Squad {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.UUID == "" {
		s.UUID = uuid.NewString()
	}
	m.squads[s.UUID] = s
	return s
}

// AddInbound appends an inbound
func (m *MockPanel) AddInbound(in models.Inbound) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbounds = append(m.inbounds, in)
}

// AddDevice registers a device for its user
func (m *MockPanel) AddDevice(d models.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices[d.UserUUID] = append(m.devices[d.UserUUID], d)
}

// FailNext makes the next call of op return err
func (m *MockPanel) FailNext(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext[op] = err
}

// FailCreateUserCalls makes the given CreateUser calls (1-based) fail
func (m *MockPanel) FailCreateUserCalls(n ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range n {
		m.failCreateAt[i] = true
	}
}

// Calls returns how many times op was invoked
func (m *MockPanel) Calls(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

// HostRequests returns every CreateHost payload received
func (m *MockPanel) HostRequests() []models.CreateHostRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.CreateHostRequest(nil), m.hostRequests...)
}

// enter records a call and returns an injected failure, if any. Caller holds mu.
func (m *MockPanel) enter(op string) error {
	m.calls[op]++
	if err, ok := m.failNext[op]; ok {
		delete(m.failNext, op)
		return err
	}
	return nil
}

func badRequest(msg string) *panel.APIError {
	return &panel.APIError{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: msg}
}

// ListUsers implements panel.Gateway
func (m *MockPanel) ListUsers(ctx context.Context, offset, limit int) (*models.UserPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListUsers"); err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})

	page := &models.UserPage{Total: len(users)}
	if offset < len(users) {
		end := offset + limit
		if end > len(users) {
			end = len(users)
		}
		page.Users = users[offset:end]
	}
	return page, nil
}

// GetUser implements panel.Gateway
func (m *MockPanel) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetUser"); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, panel.NotFound("user", id)
	}
	return &u, nil
}

// CreateUser implements panel.Gateway
func (m *MockPanel) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateUser"); err != nil {
		return nil, err
	}
	if m.failCreateAt[m.calls["CreateUser"]] {
		return nil, &panel.APIError{Status: http.StatusInternalServerError, Code: "A500", Message: "create failed"}
	}
	for _, u := range m.users {
		if u.Username == req.Username {
			return nil, &panel.APIError{Status: http.StatusConflict, Code: "A019", Message: "User username already exists"}
		}
	}

	id := uuid.NewString()
	expire := req.ExpireAt
	created := m.Now()
	u := models.User{
		UUID:                 id,
		ShortUUID:            strings.ReplaceAll(id, "-", "")[:12],
		Username:             req.Username,
		Status:               req.Status,
		TrafficLimitBytes:    req.TrafficLimitBytes,
		TrafficLimitStrategy: req.TrafficLimitStrategy,
		ExpireAt:             &expire,
		CreatedAt:            &created,
	}
	m.users[id] = u
	return &u, nil
}

// UpdateUser implements panel.Gateway
func (m *MockPanel) UpdateUser(ctx context.Context, id string, patch models.Patch) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateUser"); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, panel.NotFound("user", id)
	}
	if err := applyUserPatch(&u, patch); err != nil {
		return nil, err
	}
	m.users[id] = u
	return &u, nil
}

func applyUserPatch(u *models.User, patch models.Patch) error {
	for k, v := range patch {
		switch k {
		case "status":
			u.Status, _ = v.(string)
		case "trafficLimitBytes":
			n, ok := asInt64(v)
			if !ok {
				return badRequest("trafficLimitBytes must be a number")
			}
			u.TrafficLimitBytes = n
		case "trafficLimitStrategy":
			u.TrafficLimitStrategy, _ = v.(string)
		case "expireAt":
			s, _ := v.(string)
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return badRequest("expireAt must be RFC3339")
			}
			u.ExpireAt = &t
		case "email":
			u.Email = optString(v)
		case "description":
			u.Description = optString(v)
		case "telegramId":
			if v == nil {
				u.TelegramID = nil
				continue
			}
			n, ok := asInt64(v)
			if !ok {
				return badRequest("telegramId must be a number")
			}
			u.TelegramID = &n
		default:
			return badRequest("unknown user field " + k)
		}
	}
	return nil
}

// DeleteUser implements panel.Gateway
func (m *MockPanel) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteUser"); err != nil {
		return err
	}
	if _, ok := m.users[id]; !ok {
		return panel.NotFound("user", id)
	}
	delete(m.users, id)
	delete(m.devices, id)
	return nil
}

// ExtendUser implements panel.Gateway
func (m *MockPanel) ExtendUser(ctx context.Context, id string, days int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ExtendUser"); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, panel.NotFound("user", id)
	}
	expire := panel.ExtendExpiry(u.ExpireAt, m.Now(), days)
	u.ExpireAt = &expire
	if u.Status == models.UserStatusExpired {
		u.Status = models.UserStatusActive
	}
	m.users[id] = u
	return &u, nil
}

func (m *MockPanel) userAction(op, id string, apply func(*models.User)) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(op); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, panel.NotFound("user", id)
	}
	apply(&u)
	m.users[id] = u
	return &u, nil
}

// ResetUserTraffic implements panel.Gateway
func (m *MockPanel) ResetUserTraffic(ctx context.Context, id string) (*models.User, error) {
	return m.userAction("ResetUserTraffic", id, func(u *models.User) {
		u.UsedTrafficBytes = 0
		if u.Status == models.UserStatusLimited {
			u.Status = models.UserStatusActive
		}
	})
}

// EnableUser implements panel.Gateway
func (m *MockPanel) EnableUser(ctx context.Context, id string) (*models.User, error) {
	return m.userAction("EnableUser", id, func(u *models.User) { u.Status = models.UserStatusActive })
}

// DisableUser implements panel.Gateway
func (m *MockPanel) DisableUser(ctx context.Context, id string) (*models.User, error) {
	return m.userAction("DisableUser", id, func(u *models.User) { u.Status = models.UserStatusDisabled })
}

// ListHosts implements panel.Gateway
func (m *MockPanel) ListHosts(ctx context.Context) ([]models.Host, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListHosts"); err != nil {
		return nil, err
	}
	hosts := make([]models.Host, 0, len(m.hosts))
	for _, h := range m.hosts {
		hosts = append(hosts, h)
	}
	sort.Slice(hosts, func(i, j int) bool {
		return hosts[i].Remark < hosts[j].Remark
	})
	return hosts, nil
}

// GetHost implements panel.Gateway
func (m *MockPanel) GetHost(ctx context.Context, id string) (*models.Host, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetHost"); err != nil {
		return nil, err
	}
	h, ok := m.hosts[id]
	if !ok {
		return nil, panel.NotFound("host", id)
	}
	return &h, nil
}

// CreateHost implements panel.Gateway
func (m *MockPanel) CreateHost(ctx context.Context, req models.CreateHostRequest) (*models.Host, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateHost"); err != nil {
		return nil, err
	}
	m.hostRequests = append(m.hostRequests, req)

	inbound := req.Inbound
	h := models.Host{
		UUID:          uuid.NewString(),
		Remark:        req.Remark,
		Address:       req.Address,
		Port:          req.Port,
		IsDisabled:    req.IsDisabled,
		SecurityLayer: models.SecurityDefault,
		Inbound:       &inbound,
	}
	m.hosts[h.UUID] = h
	return &h, nil
}

// UpdateHost implements panel.Gateway
func (m *MockPanel) UpdateHost(ctx context.Context, id string, patch models.Patch) (*models.Host, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateHost"); err != nil {
		return nil, err
	}
	h, ok := m.hosts[id]
	if !ok {
		return nil, panel.NotFound("host", id)
	}
	for k, v := range patch {
		switch k {
		case "remark":
			h.Remark, _ = v.(string)
		case "address":
			h.Address, _ = v.(string)
		case "port":
			n, ok := asInt64(v)
			if !ok {
				return nil, badRequest("port must be a number")
			}
			h.Port = int(n)
		case "sni":
			h.SNI = optString(v)
		case "host":
			h.Host = optString(v)
		case "path":
			h.Path = optString(v)
		case "alpn":
			h.ALPN = optString(v)
		case "fingerprint":
			h.Fingerprint = optString(v)
		case "securityLayer":
			h.SecurityLayer, _ = v.(string)
		case "isDisabled":
			h.IsDisabled, _ = v.(bool)
		case "overrideSniFromAddress":
			h.OverrideSNIFromAddress, _ = v.(bool)
		default:
			return nil, badRequest("unknown host field " + k)
		}
	}
	m.hosts[id] = h
	return &h, nil
}

// DeleteHost implements panel.Gateway
func (m *MockPanel) DeleteHost(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteHost"); err != nil {
		return err
	}
	if _, ok := m.hosts[id]; !ok {
		return panel.NotFound("host", id)
	}
	delete(m.hosts, id)
	return nil
}

// ListInbounds implements panel.Gateway
func (m *MockPanel) ListInbounds(ctx context.Context) ([]models.Inbound, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListInbounds"); err != nil {
		return nil, err
	}
	return append([]models.Inbound(nil), m.inbounds...), nil
}

// ListNodes implements panel.Gateway
func (m *MockPanel) ListNodes(ctx context.Context) ([]models.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListNodes"); err != nil {
		return nil, err
	}
	nodes := make([]models.Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Name < nodes[j].Name
	})
	return nodes, nil
}

// GetNode implements panel.Gateway
func (m *MockPanel) GetNode(ctx context.Context, id string) (*models.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetNode"); err != nil {
		return nil, err
	}
	n, ok := m.nodes[id]
	if !ok {
		return nil, panel.NotFound("node", id)
	}
	return &n, nil
}

// CreateNode implements panel.Gateway
func (m *MockPanel) CreateNode(ctx context.Context, req models.CreateNodeRequest) (*models.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateNode"); err != nil {
		return nil, err
	}

	profile := &models.NodeConfigProfile{ActiveConfigProfileUUID: req.ConfigProfile.ActiveConfigProfileUUID}
	for _, id := range req.ConfigProfile.ActiveInbounds {
		for _, in := range m.inbounds {
			if in.UUID == id {
				profile.ActiveInbounds = append(profile.ActiveInbounds, in)
			}
		}
	}

	port := req.Port
	n := models.Node{
		UUID:          uuid.NewString(),
		Name:          req.Name,
		Address:       req.Address,
		Port:          &port,
		CountryCode:   req.CountryCode,
		ConfigProfile: profile,
	}
	m.nodes[n.UUID] = n
	return &n, nil
}

// UpdateNode implements panel.Gateway
func (m *MockPanel) UpdateNode(ctx context.Context, id string, patch models.Patch) (*models.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateNode"); err != nil {
		return nil, err
	}
	n, ok := m.nodes[id]
	if !ok {
		return nil, panel.NotFound("node", id)
	}
	for k, v := range patch {
		switch k {
		case "name":
			n.Name, _ = v.(string)
		case "address":
			n.Address, _ = v.(string)
		case "countryCode":
			n.CountryCode, _ = v.(string)
		case "port", "notifyPercent", "trafficResetDay":
			x, ok := asInt64(v)
			if !ok {
				return nil, badRequest(k + " must be a number")
			}
			i := int(x)
			switch k {
			case "port":
				n.Port = &i
			case "notifyPercent":
				n.NotifyPercent = &i
			default:
				n.TrafficResetDay = &i
			}
		case "trafficLimitBytes":
			x, ok := asInt64(v)
			if !ok {
				return nil, badRequest("trafficLimitBytes must be a number")
			}
			n.TrafficLimitBytes = &x
		default:
			return nil, badRequest("unknown node field " + k)
		}
	}
	m.nodes[id] = n
	return &n, nil
}

// DeleteNode implements panel.Gateway
func (m *MockPanel) DeleteNode(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteNode"); err != nil {
		return err
	}
	if _, ok := m.nodes[id]; !ok {
		return panel.NotFound("node", id)
	}
	delete(m.nodes, id)
	return nil
}

func (m *MockPanel) nodeAction(op, id string, apply func(*models.Node)) (*models.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(op); err != nil {
		return nil, err
	}
	n, ok := m.nodes[id]
	if !ok {
		return nil, panel.NotFound("node", id)
	}
	apply(&n)
	m.nodes[id] = n
	return &n, nil
}

// EnableNode implements panel.Gateway
func (m *MockPanel) EnableNode(ctx context.Context, id string) (*models.Node, error) {
	return m.nodeAction("EnableNode", id, func(n *models.Node) { n.IsDisabled = false })
}

// DisableNode implements panel.Gateway
func (m *MockPanel) DisableNode(ctx context.Context, id string) (*models.Node, error) {
	return m.nodeAction("DisableNode", id, func(n *models.Node) {
		n.IsDisabled = true
		n.IsConnected = false
	})
}

// RestartNode implements panel.Gateway
func (m *MockPanel) RestartNode(ctx context.Context, id string) error {
	_, err := m.nodeAction("RestartNode", id, func(*models.Node) {})
	return err
}

// allDevices returns every device ordered by HWID. Caller holds mu.
func (m *MockPanel) allDevices() []models.Device {
	var all []models.Device
	for _, devices := range m.devices {
		all = append(all, devices...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].HWID < all[j].HWID })
	return all
}

// ListDevices implements panel.Gateway
func (m *MockPanel) ListDevices(ctx context.Context, offset, limit int) (*models.DevicePage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListDevices"); err != nil {
		return nil, err
	}
	all := m.allDevices()
	page := &models.DevicePage{Total: len(all)}
	if offset < len(all) {
		end := min(offset+limit, len(all))
		page.Devices = all[offset:end]
	}
	return page, nil
}

// HWIDStats implements panel.Gateway
func (m *MockPanel) HWIDStats(ctx context.Context) (*models.HWIDStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("HWIDStats"); err != nil {
		return nil, err
	}
	all := m.allDevices()
	counts := make(map[string]int)
	unique := make(map[string]bool)
	for _, d := range all {
		platform := "Unknown"
		if d.Platform != nil {
			platform = *d.Platform
		}
		counts[platform]++
		unique[d.HWID] = true
	}

	stats := &models.HWIDStats{}
	for platform, n := range counts {
		stats.ByPlatform = append(stats.ByPlatform, models.PlatformCount{Platform: platform, Count: n})
	}
	sort.Slice(stats.ByPlatform, func(i, j int) bool {
		a, b := stats.ByPlatform[i], stats.ByPlatform[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Platform < b.Platform
	})
	stats.Totals.Devices = len(all)
	stats.Totals.UniqueDevices = len(unique)
	owners := 0
	for _, devices := range m.devices {
		if len(devices) > 0 {
			owners++
		}
	}
	if owners > 0 {
		stats.Totals.AveragePerUser = float64(len(all)) / float64(owners)
	}
	return stats, nil
}

// ListUserDevices implements panel.Gateway
func (m *MockPanel) ListUserDevices(ctx context.Context, userUUID string) ([]models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListUserDevices"); err != nil {
		return nil, err
	}
	return append([]models.Device(nil), m.devices[userUUID]...), nil
}

// DeleteUserDevice implements panel.Gateway
func (m *MockPanel) DeleteUserDevice(ctx context.Context, userUUID, hwid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteUserDevice"); err != nil {
		return err
	}
	devices := m.devices[userUUID]
	for i, d := range devices {
		if d.HWID == hwid {
			m.devices[userUUID] = append(devices[:i:i], devices[i+1:]...)
			return nil
		}
	}
	return panel.NotFound("device", hwid)
}

// DeleteAllUserDevices implements panel.Gateway
func (m *MockPanel) DeleteAllUserDevices(ctx context.Context, userUUID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteAllUserDevices"); err != nil {
		return err
	}
	delete(m.devices, userUUID)
	return nil
}

// ListSquads implements panel.Gateway
func (m *MockPanel) ListSquads(ctx context.Context) ([]models.Squad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListSquads"); err != nil {
		return nil, err
	}
	squads := make([]models.Squad, 0, len(m.squads))
	for _, s := range m.squads {
		squads = append(squads, s)
	}
	sort.Slice(squads, func(i, j int) bool {
		return squads[i].Name < squads[j].Name
	})
	return squads, nil
}

// GetSquad implements panel.Gateway
func (m *MockPanel) GetSquad(ctx context.Context, id string) (*models.Squad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetSquad"); err != nil {
		return nil, err
	}
	s, ok := m.squads[id]
	if !ok {
		return nil, panel.NotFound("squad", id)
	}
	return &s, nil
}

// DeleteSquad implements panel.Gateway
func (m *MockPanel) DeleteSquad(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteSquad"); err != nil {
		return err
	}
	if _, ok := m.squads[id]; !ok {
		return panel.NotFound("squad", id)
	}
	delete(m.squads, id)
	return nil
}

// SystemStats implements panel.Gateway
func (m *MockPanel) SystemStats(ctx context.Context) (*models.SystemStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("SystemStats"); err != nil {
		return nil, err
	}

	stats := &models.SystemStats{
		CPUCores:     2,
		MemoryTotal:  4 << 30,
		MemoryUsed:   1 << 30,
		TotalUsers:   len(m.users),
		StatusCounts: make(map[string]int),
	}
	for _, u := range m.users {
		stats.StatusCounts[u.Status]++
		stats.TotalTraffic += u.UsedTrafficBytes
	}
	for _, n := range m.nodes {
		if n.IsNodeOnline && !n.IsDisabled {
			stats.NodesOnline++
		}
	}
	return stats, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func optString(v any) *string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}
