package bot

import (
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/flow"
	"github.com/DigneZzZ/remnabot/internal/view"
)

// describe fetches the label and identifying block of a resource
func (b *Bot) describe(req *request, r flow.Resource, id string) (label, details string, err error) {
	switch r {
	case flow.ResourceUser:
		u, err := b.panel.GetUser(req.ctx, id)
		if err != nil {
			return "", "", errors.Wrap(err, "get user")
		}
		return u.Username, view.UserSummary(u), nil
	case flow.ResourceHost:
		h, err := b.panel.GetHost(req.ctx, id)
		if err != nil {
			return "", "", errors.Wrap(err, "get host")
		}
		return h.Remark, view.HostSummary(h), nil
	case flow.ResourceNode:
		n, err := b.panel.GetNode(req.ctx, id)
		if err != nil {
			return "", "", errors.Wrap(err, "get node")
		}
		return n.Name, view.NodeSummary(n), nil
	case flow.ResourceSquad:
		s, err := b.panel.GetSquad(req.ctx, id)
		if err != nil {
			return "", "", errors.Wrap(err, "get squad")
		}
		return s.Name, view.SquadSummary(s), nil
	default:
		return "", "", errors.Errorf("unknown resource %s", r)
	}
}

func (b *Bot) remove(req *request, r flow.Resource, id string) error {
	var err error
	switch r {
	case flow.ResourceUser:
		err = b.panel.DeleteUser(req.ctx, id)
	case flow.ResourceHost:
		err = b.panel.DeleteHost(req.ctx, id)
	case flow.ResourceNode:
		err = b.panel.DeleteNode(req.ctx, id)
	case flow.ResourceSquad:
		err = b.panel.DeleteSquad(req.ctx, id)
	default:
		return errors.Errorf("unknown resource %s", r)
	}
	if err != nil {
		return errors.Wrapf(err, "delete %s", r)
	}
	return nil
}

// onDelete arms a confirmation challenge for one resource
func (b *Bot) onDelete(req *request, cb view.Callback) error {
	r, err := flow.ParseResource(cb.Arg(1))
	if err != nil {
		b.alert(req, view.UnknownAlert)
		return nil
	}
	id := cb.Arg(0)
	label, details, err := b.describe(req, r, id)
	if err != nil {
		return err
	}
	f, err := flow.NewDelete(r, id, label, details)
	if err != nil {
		return err
	}
	b.begin(req, f, view.DeleteChallenge(f, nil))
	return nil
}

// deleteText checks a typed code. A mismatch keeps the same challenge armed.
func (b *Bot) deleteText(req *request, f *flow.DeleteFlow, text string) error {
	if !f.Check(text) {
		b.logger.Info("Delete code mismatch", zap.Stringer("flow", f))
		b.showFlow(req, view.DeleteChallenge(f, &text))
		return nil
	}

	b.sessions.End(req.key)
	if err := b.remove(req, f.Resource, f.TargetID); err != nil {
		return err
	}
	b.logger.Info("Resource deleted",
		zap.String("resource", string(f.Resource)),
		zap.String("uuid", f.TargetID),
		zap.String("label", f.Label),
	)
	b.show(req, view.Deleted(f))
	return nil
}

// onDeleteCancel disarms the challenge for this resource and returns to it.
// A challenge armed for another resource stays armed.
func (b *Bot) onDeleteCancel(req *request, cb view.Callback) error {
	id := cb.Arg(0)
	if f, ok := activeFlow[*flow.DeleteFlow](b.sessions, req.key); ok && f.TargetID == id {
		b.sessions.End(req.key)
	}
	switch r, _ := flow.ParseResource(cb.Arg(1)); r {
	case flow.ResourceUser:
		return b.showUser(req, id, "")
	case flow.ResourceHost:
		return b.showHost(req, id, "")
	case flow.ResourceNode:
		return b.showNode(req, id, "")
	case flow.ResourceSquad:
		return b.onSquad(req, view.Callback{Action: view.ActSquad, Args: []string{id}})
	default:
		b.show(req, view.MainMenu())
		return nil
	}
}
