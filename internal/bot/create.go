package bot

import (
	"strconv"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/flow"
	"github.com/DigneZzZ/remnabot/internal/view"
)

func validationHint(err error) (string, bool) {
	var vErr *flow.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Hint, true
	}
	return "", false
}

// onCreate starts a creation wizard, discarding any active flow
func (b *Bot) onCreate(req *request, cb view.Callback) error {
	r, err := flow.ParseResource(cb.Arg(0))
	if err != nil {
		b.alert(req, view.UnknownAlert)
		return nil
	}
	f, err := flow.NewCreate(r)
	if err != nil {
		b.alert(req, view.UnknownAlert)
		return nil
	}
	b.begin(req, f, view.CreatePrompt(f, ""))
	return nil
}

func createScreen(f *flow.CreateFlow, hint string) view.Screen {
	switch f.Step {
	case flow.CreateSelectInbound:
		return view.CreateInbounds(f, hint)
	case flow.CreateConfirm:
		return view.CreateConfirm(f)
	default:
		return view.CreatePrompt(f, hint)
	}
}

func (b *Bot) createText(req *request, f *flow.CreateFlow, text string) error {
	if err := f.SubmitText(text); err != nil {
		hint, ok := validationHint(err)
		if !ok {
			return err
		}
		b.showFlow(req, createScreen(f, hint))
		return nil
	}

	if f.Step == flow.CreateSelectInbound {
		inbounds, err := b.panel.ListInbounds(req.ctx)
		if err != nil {
			return errors.Wrap(err, "list inbounds")
		}
		f.OfferInbounds(inbounds)
	}
	b.showFlow(req, createScreen(f, ""))
	return nil
}

func (b *Bot) onCreateInbound(req *request, cb view.Callback) error {
	f, ok := activeFlow[*flow.CreateFlow](b.sessions, req.key)
	if !ok {
		b.alert(req, view.ExpiredAlert)
		return nil
	}
	idx, err := strconv.Atoi(cb.Arg(0))
	if err != nil {
		idx = -1
	}
	if err := f.SelectInbound(idx); err != nil {
		hint, _ := validationHint(err)
		b.alert(req, hint)
		return nil
	}
	return b.finishCreate(req, f)
}

func (b *Bot) onCreateConfirm(req *request, _ view.Callback) error {
	f, ok := activeFlow[*flow.CreateFlow](b.sessions, req.key)
	if !ok {
		b.alert(req, view.ExpiredAlert)
		return nil
	}
	if err := f.Confirm(); err != nil {
		hint, _ := validationHint(err)
		b.alert(req, hint)
		return nil
	}
	return b.finishCreate(req, f)
}

// finishCreate issues the single create call of a completed wizard. The
// session ends whatever the outcome.
func (b *Bot) finishCreate(req *request, f *flow.CreateFlow) error {
	b.sessions.End(req.key)

	switch f.Resource {
	case flow.ResourceHost:
		payload, err := f.HostRequest()
		if err != nil {
			return err
		}
		h, err := b.panel.CreateHost(req.ctx, payload)
		if err != nil {
			return errors.Wrap(err, "create host")
		}
		b.logger.Info("Host created", zap.String("host_uuid", h.UUID), zap.String("remark", h.Remark))
		b.show(req, view.Notice(view.HostDetail(h), "✅ Host created."))
	case flow.ResourceNode:
		payload, err := f.NodeRequest()
		if err != nil {
			return err
		}
		n, err := b.panel.CreateNode(req.ctx, payload)
		if err != nil {
			return errors.Wrap(err, "create node")
		}
		b.logger.Info("Node created", zap.String("node_uuid", n.UUID), zap.String("name", n.Name))
		b.show(req, view.Notice(view.NodeDetail(n), "✅ Node created."))
	case flow.ResourceUser:
		payload, err := f.UserRequest(b.now())
		if err != nil {
			return err
		}
		u, err := b.panel.CreateUser(req.ctx, payload)
		if err != nil {
			return errors.Wrap(err, "create user")
		}
		b.logger.Info("User created", zap.String("user_uuid", u.UUID), zap.String("username", u.Username))
		b.show(req, view.Notice(view.UserDetail(u, 0), "✅ User created."))
	default:
		return errors.Errorf("cannot create %s", f.Resource)
	}
	return nil
}
