package flow

import (
	"strings"
	"time"

	"github.com/DigneZzZ/remnabot/internal/models"
)

// EditStep is the position inside an edit flow
type EditStep int

const (
	// EditMenu shows the field list
	EditMenu EditStep = iota
	// EditAwaitValue waits for free text for Field
	EditAwaitValue
)

// FieldKind says how a field is edited
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldBool
	FieldEnum
)

// ClearValue is the text (or button value) that clears an optional field.
const ClearValue = "-"

// EditField describes one editable attribute
type EditField struct {
	Key       string
	Label     string
	APIKey    string
	Kind      FieldKind
	Hint      string
	Parse     ParseFunc
	Options   []string
	Clearable bool
}

var (
	alpnOptions        = []string{"h3", "h2", "http/1.1", "h2,http/1.1", "h3,h2,http/1.1"}
	fingerprintOptions = []string{"chrome", "firefox", "safari", "ios", "android", "edge", "qq", "random", "randomized"}
)

var editFields = map[Resource][]EditField{
	ResourceHost: {
		{Key: "remark", Label: "Remark", APIKey: "remark", Kind: FieldText, Parse: Required(40)},
		{Key: "address", Label: "Address", APIKey: "address", Kind: FieldText, Parse: ParseAddress},
		{Key: "port", Label: "Port", APIKey: "port", Kind: FieldText, Parse: ParsePort, Hint: "1-65535"},
		{Key: "sni", Label: "SNI", APIKey: "sni", Kind: FieldText, Parse: Required(253), Clearable: true},
		{Key: "host", Label: "Host header", APIKey: "host", Kind: FieldText, Parse: Required(253), Clearable: true},
		{Key: "path", Label: "Path", APIKey: "path", Kind: FieldText, Parse: Required(255), Clearable: true},
		{Key: "security", Label: "Security layer", APIKey: "securityLayer", Kind: FieldText, Parse: OneOf(SecurityLayers...), Hint: strings.Join(SecurityLayers, " / ")},
		{Key: "disabled", Label: "Disabled", APIKey: "isDisabled", Kind: FieldBool},
		{Key: "override_sni", Label: "Override SNI from address", APIKey: "overrideSniFromAddress", Kind: FieldBool},
		{Key: "alpn", Label: "ALPN", APIKey: "alpn", Kind: FieldEnum, Options: alpnOptions, Clearable: true},
		{Key: "fingerprint", Label: "Fingerprint", APIKey: "fingerprint", Kind: FieldEnum, Options: fingerprintOptions, Clearable: true},
	},
	ResourceNode: {
		{Key: "name", Label: "Name", APIKey: "name", Kind: FieldText, Parse: Required(30)},
		{Key: "address", Label: "Address", APIKey: "address", Kind: FieldText, Parse: ParseAddress},
		{Key: "port", Label: "Port", APIKey: "port", Kind: FieldText, Parse: ParsePort, Hint: "1-65535"},
		{Key: "country", Label: "Country code", APIKey: "countryCode", Kind: FieldText, Parse: ParseCountryCode, Hint: "two letters, e.g. DE"},
		{Key: "traffic", Label: "Traffic limit", APIKey: "trafficLimitBytes", Kind: FieldText, Parse: ParseTrafficGB, Hint: "GB, 0 for unlimited"},
		{Key: "notify", Label: "Notify at %", APIKey: "notifyPercent", Kind: FieldText, Parse: IntRange(0, 100), Hint: "0-100"},
		{Key: "reset_day", Label: "Traffic reset day", APIKey: "trafficResetDay", Kind: FieldText, Parse: IntRange(1, 31), Hint: "1-31"},
	},
	ResourceUser: {
		{Key: "traffic", Label: "Traffic limit", APIKey: "trafficLimitBytes", Kind: FieldText, Parse: ParseTrafficGB, Hint: "GB, 0 for unlimited"},
		{Key: "expire", Label: "Expires in (days)", APIKey: "expireAt", Kind: FieldText, Parse: ParseDays, Hint: "days from today, 1-3650"},
		{Key: "email", Label: "Email", APIKey: "email", Kind: FieldText, Parse: ParseEmail, Clearable: true},
		{Key: "telegram", Label: "Telegram ID", APIKey: "telegramId", Kind: FieldText, Parse: ParseTelegramID, Clearable: true},
		{Key: "description", Label: "Description", APIKey: "description", Kind: FieldText, Parse: Required(500), Clearable: true},
		{Key: "status", Label: "Status", APIKey: "status", Kind: FieldEnum, Options: []string{models.UserStatusActive, models.UserStatusDisabled}},
		{Key: "strategy", Label: "Traffic reset", APIKey: "trafficLimitStrategy", Kind: FieldEnum, Options: []string{models.ResetNoReset, models.ResetDay, models.ResetWeek, models.ResetMonth}},
	},
}

// EditFields lists the editable fields of r in menu order
func EditFields(r Resource) []EditField { return editFields[r] }

// LookupEditField finds a field of r by key
func LookupEditField(r Resource, key string) (EditField, bool) {
	for _, f := range editFields[r] {
		if f.Key == key {
			return f, true
		}
	}
	return EditField{}, false
}

// EditFlow edits one resource field by field, returning to the menu after
// every update.
type EditFlow struct {
	Resource Resource
	TargetID string
	Step     EditStep
	Field    *EditField
}

// NewEdit opens the field menu for one resource
func NewEdit(r Resource, targetID string) *EditFlow {
	return &EditFlow{Resource: r, TargetID: targetID, Step: EditMenu}
}

func (f *EditFlow) Kind() Kind { return KindEdit }

// Choose selects a field from the menu. Text fields move the flow to
// EditAwaitValue; button fields leave it on the menu.
func (f *EditFlow) Choose(key string) (EditField, error) {
	field, ok := LookupEditField(f.Resource, key)
	if !ok {
		return EditField{}, invalid("Unknown field.")
	}
	if field.Kind == FieldText {
		f.Step = EditAwaitValue
		f.Field = &field
	} else {
		f.Back()
	}
	return field, nil
}

// Back returns to the field menu without changing anything.
func (f *EditFlow) Back() {
	f.Step = EditMenu
	f.Field = nil
}

// SubmitText validates free text for the awaited field and returns the
// patch to send. On success the flow is back on the menu.
func (f *EditFlow) SubmitText(text string, now time.Time) (models.Patch, error) {
	if f.Step != EditAwaitValue || f.Field == nil {
		return nil, invalid("Pick a field to edit first.")
	}
	field := *f.Field

	if field.Clearable && strings.TrimSpace(text) == ClearValue {
		f.Back()
		return models.Patch{field.APIKey: nil}, nil
	}

	parsed, err := field.Parse(text)
	if err != nil {
		return nil, err
	}
	if field.APIKey == "expireAt" {
		parsed = now.AddDate(0, 0, parsed.(int)).UTC().Format(time.RFC3339)
	}
	f.Back()
	return models.Patch{field.APIKey: parsed}, nil
}

// ButtonPatch builds the patch for a bool or enum field chosen by button.
// value is "1"/"0" for bools and an option (or ClearValue) for enums.
func (f *EditFlow) ButtonPatch(key, value string) (models.Patch, error) {
	field, ok := LookupEditField(f.Resource, key)
	if !ok {
		return nil, invalid("Unknown field.")
	}
	f.Back()

	switch field.Kind {
	case FieldBool:
		switch value {
		case "1":
			return models.Patch{field.APIKey: true}, nil
		case "0":
			return models.Patch{field.APIKey: false}, nil
		}
		return nil, invalid("Unknown value.")
	case FieldEnum:
		if value == ClearValue && field.Clearable {
			return models.Patch{field.APIKey: nil}, nil
		}
		for _, opt := range field.Options {
			if opt == value {
				return models.Patch{field.APIKey: opt}, nil
			}
		}
		return nil, invalid("Unknown value.")
	default:
		return nil, invalid("%s is edited by typing a value.", field.Label)
	}
}
