package bot

import (
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/models"
	"github.com/DigneZzZ/remnabot/internal/view"
)

func (b *Bot) showHost(req *request, id, notice string) error {
	h, err := b.panel.GetHost(req.ctx, id)
	if err != nil {
		return errors.Wrap(err, "get host")
	}
	s := view.HostDetail(h)
	if notice != "" {
		s = view.Notice(s, notice)
	}
	b.show(req, s)
	return nil
}

func (b *Bot) onHost(req *request, cb view.Callback) error {
	return b.showHost(req, cb.Arg(0), "")
}

// onHostToggle flips the disabled flag of a host
func (b *Bot) onHostToggle(req *request, cb view.Callback) error {
	h, err := b.panel.GetHost(req.ctx, cb.Arg(0))
	if err != nil {
		return errors.Wrap(err, "get host")
	}
	updated, err := b.panel.UpdateHost(req.ctx, h.UUID, models.Patch{"isDisabled": !h.IsDisabled})
	if err != nil {
		return errors.Wrap(err, "toggle host")
	}
	notice := "✅ Host enabled."
	if updated.IsDisabled {
		notice = "🚫 Host disabled."
	}
	b.logger.Info("Host toggled", zap.String("host_uuid", h.UUID), zap.Bool("disabled", updated.IsDisabled))
	b.show(req, view.Notice(view.HostDetail(updated), notice))
	return nil
}

func (b *Bot) showNode(req *request, id, notice string) error {
	n, err := b.panel.GetNode(req.ctx, id)
	if err != nil {
		return errors.Wrap(err, "get node")
	}
	s := view.NodeDetail(n)
	if notice != "" {
		s = view.Notice(s, notice)
	}
	b.show(req, s)
	return nil
}

func (b *Bot) onNode(req *request, cb view.Callback) error {
	return b.showNode(req, cb.Arg(0), "")
}

func (b *Bot) onNodeEnable(req *request, cb view.Callback) error {
	n, err := b.panel.EnableNode(req.ctx, cb.Arg(0))
	if err != nil {
		return errors.Wrap(err, "enable node")
	}
	b.logger.Info("Node enabled", zap.String("node_uuid", n.UUID))
	b.show(req, view.Notice(view.NodeDetail(n), "✅ Node enabled."))
	return nil
}

func (b *Bot) onNodeDisable(req *request, cb view.Callback) error {
	n, err := b.panel.DisableNode(req.ctx, cb.Arg(0))
	if err != nil {
		return errors.Wrap(err, "disable node")
	}
	b.logger.Info("Node disabled", zap.String("node_uuid", n.UUID))
	b.show(req, view.Notice(view.NodeDetail(n), "🚫 Node disabled."))
	return nil
}

func (b *Bot) onNodeRestart(req *request, cb view.Callback) error {
	id := cb.Arg(0)
	if err := b.panel.RestartNode(req.ctx, id); err != nil {
		return errors.Wrap(err, "restart node")
	}
	b.logger.Info("Node restart requested", zap.String("node_uuid", id))
	b.toast(req, "Restart requested")
	return b.showNode(req, id, "🔄 Restart requested.")
}

func (b *Bot) onSquad(req *request, cb view.Callback) error {
	s, err := b.panel.GetSquad(req.ctx, cb.Arg(0))
	if err != nil {
		return errors.Wrap(err, "get squad")
	}
	b.show(req, view.SquadDetail(s))
	return nil
}
