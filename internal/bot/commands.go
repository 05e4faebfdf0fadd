package bot

import (
	"github.com/go-faster/errors"

	"github.com/DigneZzZ/remnabot/internal/view"
)

// onMenu opens a top-level section. Returning to the main menu ends any
// active flow.
func (b *Bot) onMenu(req *request, cb view.Callback) error {
	switch section := cb.Arg(0); section {
	case view.SectionMain, "":
		b.sessions.End(req.key)
		b.show(req, view.MainMenu())
		return nil
	case view.SectionUsers:
		return b.showUsersPage(req, 0)
	case view.SectionHosts:
		hosts, err := b.panel.ListHosts(req.ctx)
		if err != nil {
			return errors.Wrap(err, "list hosts")
		}
		b.show(req, view.HostsList(hosts))
		return nil
	case view.SectionNodes:
		nodes, err := b.panel.ListNodes(req.ctx)
		if err != nil {
			return errors.Wrap(err, "list nodes")
		}
		b.show(req, view.NodesList(nodes))
		return nil
	case view.SectionSquads:
		squads, err := b.panel.ListSquads(req.ctx)
		if err != nil {
			return errors.Wrap(err, "list squads")
		}
		b.show(req, view.SquadsList(squads))
		return nil
	case view.SectionDevices:
		return b.showDevicesPage(req, 0, "")
	case view.SectionStats:
		return b.showStats(req)
	case view.SectionBulk:
		return b.onBulkStart(req, cb)
	default:
		b.alert(req, view.UnknownAlert)
		return nil
	}
}

func (b *Bot) showStats(req *request) error {
	stats, err := b.panel.SystemStats(req.ctx)
	if err != nil {
		return errors.Wrap(err, "system stats")
	}
	b.show(req, view.Stats(stats))
	return nil
}

// onCancel ends the active flow
func (b *Bot) onCancel(req *request, _ view.Callback) error {
	_, had := b.sessions.End(req.key)
	b.show(req, view.Cancelled(had))
	return nil
}
