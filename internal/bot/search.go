package bot

import (
	"github.com/go-faster/errors"

	"github.com/DigneZzZ/remnabot/internal/flow"
	"github.com/DigneZzZ/remnabot/internal/models"
	"github.com/DigneZzZ/remnabot/internal/panel"
	"github.com/DigneZzZ/remnabot/internal/view"
)

const scanPageSize = 500

func (b *Bot) onSearch(req *request, _ view.Callback) error {
	b.begin(req, flow.NewSearch(flow.ResourceUser), view.SearchPrompt(""))
	return nil
}

// allUsers pages through the whole user list
func (b *Bot) allUsers(req *request) ([]models.User, error) {
	var users []models.User
	for offset := 0; ; offset += scanPageSize {
		page, err := b.panel.ListUsers(req.ctx, offset, scanPageSize)
		if err != nil {
			return nil, errors.Wrap(err, "list users")
		}
		users = append(users, page.Users...)
		if len(page.Users) < scanPageSize || len(users) >= page.Total {
			return users, nil
		}
	}
}

func (b *Bot) findUsers(req *request, query string) ([]models.User, error) {
	if flow.LooksLikeUUID(query) {
		u, err := b.panel.GetUser(req.ctx, query)
		switch {
		case err == nil:
			return []models.User{*u}, nil
		case !panel.IsNotFound(err):
			return nil, errors.Wrap(err, "get user")
		}
	}
	users, err := b.allUsers(req)
	if err != nil {
		return nil, err
	}
	return flow.MatchUsers(query, users), nil
}

// searchText keeps the flow open while nothing matches, so the admin can
// simply type another query.
func (b *Bot) searchText(req *request, f *flow.SearchFlow, text string) error {
	f.LastQuery = text
	if text == "" {
		b.showFlow(req, view.SearchPrompt(""))
		return nil
	}
	found, err := b.findUsers(req, text)
	if err != nil {
		return err
	}
	switch len(found) {
	case 0:
		b.showFlow(req, view.SearchPrompt(text))
		return nil
	case 1:
		b.sessions.End(req.key)
		b.show(req, b.userScreen(req, &found[0]))
		return nil
	default:
		b.sessions.End(req.key)
		b.show(req, view.SearchResults(text, found))
		return nil
	}
}
