package view

import "strings"

// Callback actions. Data is encoded as action[:id[:value]] and must stay
// within Telegram's 64-byte limit.
const (
	ActMenu      = "menu"
	ActUsersPage = "users_page"
	ActCancel    = "cancel"

	ActUser           = "user"
	ActUserExtend     = "user_extend"
	ActUserReset      = "user_reset"
	ActUserEnable     = "user_enable"
	ActUserDisable    = "user_disable"
	ActUserDevices    = "user_devices"
	ActDeviceDelete   = "device_del"
	ActDevicesClear   = "devices_clear"
	ActDevicesClearOK = "devices_clear_ok"

	ActDevicesPage = "hwid_page"
	ActDevice      = "hwid_dev"
	ActDeviceDrop  = "hwid_del"

	ActHost       = "host"
	ActHostToggle = "host_toggle"

	ActNode        = "node"
	ActNodeEnable  = "node_enable"
	ActNodeDisable = "node_disable"
	ActNodeRestart = "node_restart"

	ActSquad = "squad"

	ActEdit      = "edit"
	ActEditField = "edit_field"
	ActEditValue = "edit_value"
	ActEditBack  = "edit_back"
	ActEditDone  = "edit_done"

	ActDelete       = "delete"
	ActDeleteCancel = "delete_cancel"

	ActCreate        = "create"
	ActCreateInbound = "create_inbound"
	ActCreateConfirm = "create_confirm"

	ActBulkStart    = "bulk_start"
	ActBulkCount    = "bulk_count"
	ActBulkDuration = "bulk_duration"
	ActBulkTraffic  = "bulk_traffic"
	ActBulkReset    = "bulk_reset"
	ActBulkConfirm  = "bulk_confirm"

	ActSearch = "search"

	ActMass   = "mass"
	ActMassOK = "mass_ok"
)

// Menu sections
const (
	SectionMain    = "main"
	SectionUsers   = "users"
	SectionHosts   = "hosts"
	SectionNodes   = "nodes"
	SectionSquads  = "squads"
	SectionDevices = "devices"
	SectionStats   = "stats"
	SectionBulk    = "bulk"
)

// Mass operations
const (
	MassHome    = "menu"
	MassExtend  = "extend"
	MassReset   = "reset"
	MassEnable  = "enable"
	MassDisable = "disable"
)

// Data encodes a callback payload
func Data(action string, args ...string) string {
	return strings.Join(append([]string{action}, args...), ":")
}

// Callback is a decoded callback payload
type Callback struct {
	Action string
	Args   []string
}

// Arg returns the i-th argument or "" when absent
func (c Callback) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// ParseData decodes a callback payload. Everything after the second colon
// is kept as one argument.
func ParseData(data string) Callback {
	parts := strings.SplitN(data, ":", 3)
	return Callback{Action: parts[0], Args: parts[1:]}
}
