package models

import "time"

// User statuses as reported by the panel
const (
	UserStatusActive   = "ACTIVE"
	UserStatusDisabled = "DISABLED"
	UserStatusLimited  = "LIMITED"
	UserStatusExpired  = "EXPIRED"
)

// Traffic reset strategies
const (
	ResetNoReset = "NO_RESET"
	ResetDay     = "DAY"
	ResetWeek    = "WEEK"
	ResetMonth   = "MONTH"
)

// Host security layers
const (
	SecurityDefault = "DEFAULT"
	SecurityTLS     = "TLS"
	SecurityNone    = "NONE"
)

// User represents a VPN subscriber
type User struct {
	UUID                 string     `json:"uuid"`
	ShortUUID            string     `json:"shortUuid,omitempty"`
	Username             string     `json:"username"`
	Status               string     `json:"status"`
	UsedTrafficBytes     int64      `json:"usedTrafficBytes"`
	TrafficLimitBytes    int64      `json:"trafficLimitBytes"`
	TrafficLimitStrategy string     `json:"trafficLimitStrategy,omitempty"`
	ExpireAt             *time.Time `json:"expireAt,omitempty"`
	CreatedAt            *time.Time `json:"createdAt,omitempty"`
	OnlineAt             *time.Time `json:"onlineAt,omitempty"`
	TelegramID           *int64     `json:"telegramId,omitempty"`
	Email                *string    `json:"email,omitempty"`
	Description          *string    `json:"description,omitempty"`
	HwidDeviceLimit      *int       `json:"hwidDeviceLimit,omitempty"`
	SubscriptionURL      string     `json:"subscriptionUrl,omitempty"`
}

// UserPage is one page of a user listing
type UserPage struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

// HostInbound links a host to a config profile inbound
type HostInbound struct {
	ConfigProfileUUID        string `json:"configProfileUuid"`
	ConfigProfileInboundUUID string `json:"configProfileInboundUuid"`
}

// Host represents a connection endpoint advertised to subscribers
type Host struct {
	UUID                   string       `json:"uuid"`
	Remark                 string       `json:"remark"`
	Address                string       `json:"address"`
	Port                   int          `json:"port"`
	Path                   *string      `json:"path,omitempty"`
	SNI                    *string      `json:"sni,omitempty"`
	Host                   *string      `json:"host,omitempty"`
	ALPN                   *string      `json:"alpn,omitempty"`
	Fingerprint            *string      `json:"fingerprint,omitempty"`
	SecurityLayer          string       `json:"securityLayer,omitempty"`
	IsDisabled             bool         `json:"isDisabled"`
	OverrideSNIFromAddress bool         `json:"overrideSniFromAddress"`
	Inbound                *HostInbound `json:"inbound,omitempty"`
}

// NodeConfigProfile is the config profile a node runs
type NodeConfigProfile struct {
	ActiveConfigProfileUUID string    `json:"activeConfigProfileUuid"`
	ActiveInbounds          []Inbound `json:"activeInbounds,omitempty"`
}

// Node represents a server running the VPN core
type Node struct {
	UUID              string             `json:"uuid"`
	Name              string             `json:"name"`
	Address           string             `json:"address"`
	Port              *int               `json:"port,omitempty"`
	IsConnected       bool               `json:"isConnected"`
	IsDisabled        bool               `json:"isDisabled"`
	IsNodeOnline      bool               `json:"isNodeOnline"`
	XrayVersion       *string            `json:"xrayVersion,omitempty"`
	CountryCode       string             `json:"countryCode,omitempty"`
	UsersOnline       *int               `json:"usersOnline,omitempty"`
	TrafficLimitBytes *int64             `json:"trafficLimitBytes,omitempty"`
	TrafficUsedBytes  *int64             `json:"trafficUsedBytes,omitempty"`
	NotifyPercent     *int               `json:"notifyPercent,omitempty"`
	TrafficResetDay   *int               `json:"trafficResetDay,omitempty"`
	ConfigProfile     *NodeConfigProfile `json:"configProfile,omitempty"`
}

// Inbound is a config profile inbound that hosts and nodes attach to
type Inbound struct {
	UUID        string  `json:"uuid"`
	ProfileUUID string  `json:"profileUuid"`
	Tag         string  `json:"tag"`
	Type        string  `json:"type,omitempty"`
	Network     *string `json:"network,omitempty"`
	Security    *string `json:"security,omitempty"`
	Port        *int    `json:"port,omitempty"`
}

// Device is a hardware id registered by a subscriber's client
type Device struct {
	HWID        string     `json:"hwid"`
	UserUUID    string     `json:"userUuid"`
	Platform    *string    `json:"platform,omitempty"`
	OSVersion   *string    `json:"osVersion,omitempty"`
	DeviceModel *string    `json:"deviceModel,omitempty"`
	UserAgent   *string    `json:"userAgent,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// DevicePage is one page of devices across all users
type DevicePage struct {
	Devices []Device `json:"devices"`
	Total   int      `json:"total"`
}

// PlatformCount is the number of devices reporting one platform
type PlatformCount struct {
	Platform string `json:"platform"`
	Count    int    `json:"count"`
}

// HWIDStats summarizes the registered devices
type HWIDStats struct {
	ByPlatform []PlatformCount `json:"byPlatform"`
	Totals     struct {
		UniqueDevices  int     `json:"totalUniqueDevices"`
		Devices        int     `json:"totalHwidDevices"`
		AveragePerUser float64 `json:"averageHwidDevicesPerUser"`
	} `json:"stats"`
}

// SquadInfo holds squad counters
type SquadInfo struct {
	MembersCount  int `json:"membersCount"`
	InboundsCount int `json:"inboundsCount"`
}

// Squad is an internal squad grouping users and inbounds
type Squad struct {
	UUID     string    `json:"uuid"`
	Name     string    `json:"name"`
	Info     SquadInfo `json:"info"`
	Inbounds []Inbound `json:"inbounds,omitempty"`
}

// SystemStats is the aggregate panel statistics view
type SystemStats struct {
	CPUCores      int            `json:"cpuCores"`
	MemoryTotal   int64          `json:"memoryTotal"`
	MemoryUsed    int64          `json:"memoryUsed"`
	UptimeSeconds float64        `json:"uptime"`
	TotalUsers    int            `json:"totalUsers"`
	StatusCounts  map[string]int `json:"statusCounts"`
	OnlineNow     int            `json:"onlineNow"`
	NodesOnline   int            `json:"nodesOnline"`
	TotalTraffic  int64          `json:"totalTrafficBytes"`
}

// CreateUserRequest is the payload for creating a user
type CreateUserRequest struct {
	Username             string    `json:"username"`
	Status               string    `json:"status"`
	TrafficLimitBytes    int64     `json:"trafficLimitBytes"`
	TrafficLimitStrategy string    `json:"trafficLimitStrategy"`
	ExpireAt             time.Time `json:"expireAt"`
}

// CreateHostRequest is the payload for creating a host
type CreateHostRequest struct {
	Remark     string      `json:"remark"`
	Address    string      `json:"address"`
	Port       int         `json:"port"`
	Inbound    HostInbound `json:"inbound"`
	IsDisabled bool        `json:"isDisabled"`
}

// CreateNodeConfigProfile selects the profile and inbounds for a new node
type CreateNodeConfigProfile struct {
	ActiveConfigProfileUUID string   `json:"activeConfigProfileUuid"`
	ActiveInbounds          []string `json:"activeInbounds"`
}

// CreateNodeRequest is the payload for creating a node
type CreateNodeRequest struct {
	Name          string                  `json:"name"`
	Address       string                  `json:"address"`
	Port          int                     `json:"port"`
	CountryCode   string                  `json:"countryCode"`
	ConfigProfile CreateNodeConfigProfile `json:"configProfile"`
}

// Patch is a partial update keyed by the panel's JSON field names.
type Patch map[string]any
