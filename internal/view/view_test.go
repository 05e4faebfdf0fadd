package view

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DigneZzZ/remnabot/internal/flow"
	"github.com/DigneZzZ/remnabot/internal/models"
)

const testUUID = "9f0c1a2e-8b7d-4c3e-9a1b-2c3d4e5f6a7b"

func allData(s Screen) []string {
	var out []string
	if s.Keyboard == nil {
		return out
	}
	for _, r := range s.Keyboard.InlineKeyboard {
		for _, b := range r {
			if b.CallbackData != nil {
				out = append(out, *b.CallbackData)
			}
		}
	}
	return out
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "∞", FormatBytes(0, true))
	assert.Equal(t, "0 B", FormatBytes(0, false))
	assert.Equal(t, "512 B", FormatBytes(512, false))
	assert.Equal(t, "1.50 KiB", FormatBytes(1536, false))
	assert.Equal(t, "100.00 GiB", FormatBytes(100<<30, true))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, Placeholder, FormatDate(nil))
	ts := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-01 10:30", FormatDate(&ts))
}

func TestParseData(t *testing.T) {
	cb := ParseData(Data(ActEditValue, "alpn", "h2,http/1.1"))
	assert.Equal(t, ActEditValue, cb.Action)
	assert.Equal(t, "alpn", cb.Arg(0))
	assert.Equal(t, "h2,http/1.1", cb.Arg(1))
	assert.Equal(t, "", cb.Arg(2))

	cb = ParseData(ActCancel)
	assert.Equal(t, ActCancel, cb.Action)
	assert.Empty(t, cb.Args)
}

func TestUserDetail_ToleratesMissingFields(t *testing.T) {
	u := &models.User{UUID: testUUID}
	s := UserDetail(u, -1)
	assert.Contains(t, s.Text, Placeholder)
	assert.NotContains(t, s.Text, "Devices")

	s = UserDetail(u, 2)
	assert.Contains(t, s.Text, "Devices (HWID):</b> 2")
}

func TestUserDetail_EscapesHTML(t *testing.T) {
	desc := "<script>"
	u := &models.User{UUID: testUUID, Username: "a&b", Description: &desc}
	s := UserDetail(u, 0)
	assert.Contains(t, s.Text, "a&amp;b")
	assert.Contains(t, s.Text, "&lt;script&gt;")
}

func TestCallbackDataFitsLimit(t *testing.T) {
	u := &models.User{UUID: testUUID, Username: "alice", Status: models.UserStatusActive}
	h := &models.Host{UUID: testUUID, Remark: "h"}
	n := &models.Node{UUID: testUUID, Name: "n"}
	sq := &models.Squad{UUID: testUUID, Name: "s"}
	del := &flow.DeleteFlow{Resource: flow.ResourceSquad, TargetID: testUUID, Code: "aaaaaa"}

	screens := []Screen{
		UserDetail(u, 1),
		UserDevices(u, []models.Device{{HWID: "x"}, {HWID: "y"}}),
		DevicesClearConfirm(u, 2),
		HostDetail(h),
		NodeDetail(n),
		SquadDetail(sq),
		DeleteChallenge(del, nil),
		MassExtendDays(),
		MassConfirm(MassExtend, 365),
		DeviceDetail(&models.Device{HWID: strings.Repeat("f", 128), UserUUID: testUUID}, u, 99999),
	}
	for _, f := range flow.EditFields(flow.ResourceHost) {
		screens = append(screens, EditChoices(f, ""))
	}
	for _, s := range screens {
		for _, d := range allData(s) {
			assert.LessOrEqual(t, len(d), 64, d)
		}
	}
}

func TestDeleteChallenge_Mismatch(t *testing.T) {
	f := &flow.DeleteFlow{Resource: flow.ResourceHost, TargetID: "h-1", Label: "edge1", Details: "🌐 edge1", Code: "Ab3xY9"}

	s := DeleteChallenge(f, nil)
	assert.Contains(t, s.Text, "<code>Ab3xY9</code>")
	assert.NotContains(t, s.Text, "mismatch")
	assert.Equal(t, []string{"delete_cancel:h-1:host"}, allData(s))

	got := "zzzzzz"
	s = DeleteChallenge(f, &got)
	assert.Contains(t, s.Text, "expected <code>Ab3xY9</code>, got <code>zzzzzz</code>")

	s = Deleted(f)
	assert.Contains(t, s.Text, "edge1")
}

func TestBulkReport_Truncation(t *testing.T) {
	var report flow.Report
	for i := 0; i < 25; i++ {
		report.Succeeded = append(report.Succeeded, fmt.Sprintf("user%02d", i))
	}
	for i := 0; i < 6; i++ {
		report.Failed = append(report.Failed, flow.Failure{Item: fmt.Sprintf("bad%d", i), Reason: "boom"})
	}

	s := BulkReport(report)
	assert.Contains(t, s.Text, "user19")
	assert.NotContains(t, s.Text, "user20")
	assert.Contains(t, s.Text, "... and 5 more")
	assert.Contains(t, s.Text, "Failed: 6")
	assert.NotContains(t, s.Text, "bad0", "failure list is suppressed above five")

	report.Failed = report.Failed[:2]
	s = BulkReport(report)
	assert.Contains(t, s.Text, "bad0: boom")
}

func TestBulk_Steps(t *testing.T) {
	f := flow.NewBulk(20)
	s := Bulk(f, "")
	assert.Equal(t, []string{"bulk_count:5", "bulk_count:10", "bulk_count:15", "bulk_count:20", "cancel"}, allData(s))

	require.NoError(t, f.SelectCount(5))
	require.NoError(t, f.SelectDuration(1))
	require.NoError(t, f.SelectTraffic(0))
	s = Bulk(f, "")
	assert.Equal(t, []string{"bulk_confirm", "cancel"}, allData(s))
	assert.NotContains(t, s.Text, "Reset")
}

func TestEditMenu_ShowsValues(t *testing.T) {
	sni := "cdn.example.com"
	h := &models.Host{UUID: testUUID, Remark: "edge", Port: 8443, SNI: &sni}
	s := EditMenu(flow.ResourceHost, h.Remark, HostEditValues(h), "✅ Saved")

	assert.True(t, strings.HasPrefix(s.Text, "✅ Saved"))
	assert.Contains(t, s.Text, "Port: <b>8443</b>")
	assert.Contains(t, s.Text, "SNI: <b>cdn.example.com</b>")
	assert.Contains(t, allData(s), "edit_field:port")
	assert.Contains(t, allData(s), ActEditDone)
}

func TestSearchScreens(t *testing.T) {
	s := SearchPrompt("nobody")
	assert.Contains(t, s.Text, "Nothing found for <b>nobody</b>")

	users := []models.User{{UUID: "1", Username: "ann"}, {UUID: "2", Username: "anna"}}
	s = SearchResults("ann", users)
	assert.Contains(t, allData(s), "user:1")
	assert.Contains(t, allData(s), "user:2")
}

func TestUsersList_Pagination(t *testing.T) {
	page := &models.UserPage{Total: 25, Users: []models.User{{UUID: "1", Username: "a"}}}

	s := UsersList(page, 0)
	assert.Contains(t, s.Text, "Page 1/3")
	assert.Contains(t, allData(s), "users_page:1")
	assert.NotContains(t, allData(s), "users_page:-1")

	s = UsersList(page, 2)
	assert.Contains(t, allData(s), "users_page:1")
	assert.NotContains(t, allData(s), "users_page:3")
}

func TestStats_NilSafe(t *testing.T) {
	s := Stats(nil)
	assert.Contains(t, s.Text, Placeholder)

	s = Stats(&models.SystemStats{TotalUsers: 3, StatusCounts: map[string]int{models.UserStatusActive: 2}})
	assert.Contains(t, s.Text, "ACTIVE: 2")
}

func TestDevicesList(t *testing.T) {
	android := "Android"
	devices := make([]models.Device, DevicesPageSize)
	for i := range devices {
		devices[i] = models.Device{HWID: fmt.Sprintf("hw-%02d", i), Platform: &android}
	}
	stats := &models.HWIDStats{ByPlatform: []models.PlatformCount{{Platform: "Android", Count: 25}}}
	stats.Totals.UniqueDevices = 25

	s := DevicesList(&models.DevicePage{Devices: devices, Total: 25}, stats, 1)
	assert.Contains(t, s.Text, "Devices</b> (25)")
	assert.Contains(t, s.Text, "Page 2/3")
	assert.Contains(t, s.Text, "Android: 25")

	data := allData(s)
	assert.Contains(t, data, Data(ActDevice, "10"))
	assert.Contains(t, data, Data(ActDevicesPage, "0"))
	assert.Contains(t, data, Data(ActDevicesPage, "2"))

	s = DevicesList(&models.DevicePage{}, nil, 0)
	assert.Contains(t, s.Text, "No devices registered.")
	assert.NotContains(t, s.Text, "Unique")
}

func TestDeviceDetail_UnknownOwner(t *testing.T) {
	d := &models.Device{HWID: "<hw>", UserUUID: testUUID}
	s := DeviceDetail(d, nil, 12)
	assert.Contains(t, s.Text, "&lt;hw&gt;")
	assert.Contains(t, s.Text, "<b>User:</b> "+Placeholder)

	data := allData(s)
	assert.Contains(t, data, Data(ActDeviceDrop, "12", DeviceFingerprint("<hw>")))
	assert.Contains(t, data, Data(ActDevicesPage, "1"))
	assert.NotEqual(t, DeviceFingerprint("a"), DeviceFingerprint("b"))
}
