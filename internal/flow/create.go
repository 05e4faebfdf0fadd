package flow

import (
	"fmt"
	"time"

	"github.com/DigneZzZ/remnabot/internal/models"
)

// CreateStep is the position inside a creation wizard
type CreateStep int

const (
	// CreateInput collects the text fields one by one
	CreateInput CreateStep = iota
	// CreateSelectInbound waits for an inbound to be picked by index
	CreateSelectInbound
	// CreateConfirm waits for the confirm button
	CreateConfirm
	// CreateReady means every field is collected and the create call may run
	CreateReady
)

// InputField describes one text prompt of a creation wizard
type InputField struct {
	Name   string
	Label  string
	Prompt string
	Parse  ParseFunc
}

var createInputs = map[Resource][]InputField{
	ResourceHost: {
		{Name: "remark", Label: "Remark", Prompt: "Enter the host remark (display name):", Parse: Required(40)},
		{Name: "address", Label: "Address", Prompt: "Enter the host address (domain or IP):", Parse: ParseAddress},
		{Name: "port", Label: "Port", Prompt: "Enter the port (1-65535):", Parse: ParsePort},
	},
	ResourceNode: {
		{Name: "name", Label: "Name", Prompt: "Enter the node name:", Parse: Required(30)},
		{Name: "address", Label: "Address", Prompt: "Enter the node address (domain or IP):", Parse: ParseAddress},
		{Name: "port", Label: "Port", Prompt: "Enter the node API port (1-65535):", Parse: ParsePort},
		{Name: "country_code", Label: "Country", Prompt: "Enter the two-letter country code (e.g. DE):", Parse: ParseCountryCode},
	},
	ResourceUser: {
		{Name: "username", Label: "Username", Prompt: "Enter the username (3-36 characters: letters, digits, _ or -):", Parse: ParseUsername},
		{Name: "traffic", Label: "Traffic limit", Prompt: "Enter the traffic limit in GB (0 for unlimited):", Parse: ParseTrafficGB},
		{Name: "days", Label: "Days", Prompt: "Enter the subscription length in days (1-3650):", Parse: ParseDays},
	},
}

// CreateFlow collects the fields for a new host, node or user
type CreateFlow struct {
	Resource Resource
	Step     CreateStep
	Fields   []Value

	// Inbounds are the choices offered at CreateSelectInbound
	Inbounds []models.Inbound
	Inbound  *models.Inbound
}

// NewCreate starts a creation wizard for r
func NewCreate(r Resource) (*CreateFlow, error) {
	if _, ok := createInputs[r]; !ok {
		return nil, fmt.Errorf("resource %q cannot be created", r)
	}
	return &CreateFlow{Resource: r, Step: CreateInput}, nil
}

func (f *CreateFlow) Kind() Kind { return KindCreate }

// Inputs returns the text prompts of this wizard in order
func (f *CreateFlow) Inputs() []InputField { return createInputs[f.Resource] }

// Current returns the prompt awaiting input. ok is false once all text
// fields are collected.
func (f *CreateFlow) Current() (in InputField, ok bool) {
	inputs := f.Inputs()
	if f.Step != CreateInput || len(f.Fields) >= len(inputs) {
		return InputField{}, false
	}
	return inputs[len(f.Fields)], true
}

// SubmitText validates text for the current prompt and advances.
func (f *CreateFlow) SubmitText(text string) error {
	in, ok := f.Current()
	if !ok {
		return invalid("Use the buttons below to continue.")
	}
	parsed, err := in.Parse(text)
	if err != nil {
		return err
	}
	f.Fields = append(f.Fields, Value{Name: in.Name, Label: in.Label, Raw: text, Parsed: parsed})

	if len(f.Fields) == len(f.Inputs()) {
		switch f.Resource {
		case ResourceHost, ResourceNode:
			f.Step = CreateSelectInbound
		default:
			f.Step = CreateConfirm
		}
	}
	return nil
}

// OfferInbounds records the choices shown for CreateSelectInbound.
func (f *CreateFlow) OfferInbounds(inbounds []models.Inbound) {
	f.Inbounds = inbounds
}

// SelectInbound picks an offered inbound by index. Selecting completes the
// wizard.
func (f *CreateFlow) SelectInbound(idx int) error {
	if f.Step != CreateSelectInbound {
		return invalid("This step is not waiting for an inbound.")
	}
	if idx < 0 || idx >= len(f.Inbounds) {
		return invalid("Unknown inbound, pick one of the listed buttons.")
	}
	in := f.Inbounds[idx]
	f.Inbound = &in
	f.Step = CreateReady
	return nil
}

// Confirm completes a wizard waiting at CreateConfirm.
func (f *CreateFlow) Confirm() error {
	if f.Step != CreateConfirm {
		return invalid("Nothing to confirm yet.")
	}
	f.Step = CreateReady
	return nil
}

func (f *CreateFlow) value(name string) (any, bool) {
	for _, v := range f.Fields {
		if v.Name == name {
			return v.Parsed, true
		}
	}
	return nil, false
}

// complete reports an error unless every field and selection is present.
func (f *CreateFlow) complete(want Resource) error {
	if f.Resource != want {
		return fmt.Errorf("wizard creates a %s, not a %s", f.Resource, want)
	}
	if f.Step != CreateReady {
		return fmt.Errorf("%s wizard is not complete", f.Resource)
	}
	for _, in := range f.Inputs() {
		if _, ok := f.value(in.Name); !ok {
			return fmt.Errorf("%s wizard is missing %s", f.Resource, in.Name)
		}
	}
	if want != ResourceUser && f.Inbound == nil {
		return fmt.Errorf("%s wizard has no inbound selected", f.Resource)
	}
	return nil
}

// HostRequest builds the create payload for a completed host wizard
func (f *CreateFlow) HostRequest() (models.CreateHostRequest, error) {
	if err := f.complete(ResourceHost); err != nil {
		return models.CreateHostRequest{}, err
	}
	remark, _ := f.value("remark")
	address, _ := f.value("address")
	port, _ := f.value("port")
	return models.CreateHostRequest{
		Remark:  remark.(string),
		Address: address.(string),
		Port:    port.(int),
		Inbound: models.HostInbound{
			ConfigProfileUUID:        f.Inbound.ProfileUUID,
			ConfigProfileInboundUUID: f.Inbound.UUID,
		},
	}, nil
}

// NodeRequest builds the create payload for a completed node wizard
func (f *CreateFlow) NodeRequest() (models.CreateNodeRequest, error) {
	if err := f.complete(ResourceNode); err != nil {
		return models.CreateNodeRequest{}, err
	}
	name, _ := f.value("name")
	address, _ := f.value("address")
	port, _ := f.value("port")
	country, _ := f.value("country_code")
	return models.CreateNodeRequest{
		Name:        name.(string),
		Address:     address.(string),
		Port:        port.(int),
		CountryCode: country.(string),
		ConfigProfile: models.CreateNodeConfigProfile{
			ActiveConfigProfileUUID: f.Inbound.ProfileUUID,
			ActiveInbounds:          []string{f.Inbound.UUID},
		},
	}, nil
}

// UserRequest builds the create payload for a completed user wizard
func (f *CreateFlow) UserRequest(now time.Time) (models.CreateUserRequest, error) {
	if err := f.complete(ResourceUser); err != nil {
		return models.CreateUserRequest{}, err
	}
	username, _ := f.value("username")
	traffic, _ := f.value("traffic")
	days, _ := f.value("days")
	return models.CreateUserRequest{
		Username:             username.(string),
		Status:               models.UserStatusActive,
		TrafficLimitBytes:    traffic.(int64),
		TrafficLimitStrategy: models.ResetNoReset,
		ExpireAt:             now.AddDate(0, 0, days.(int)).UTC(),
	}, nil
}
