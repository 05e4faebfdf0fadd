package bot

import (
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/flow"
	"github.com/DigneZzZ/remnabot/internal/models"
	"github.com/DigneZzZ/remnabot/internal/view"
)

// editTarget is the freshly fetched state of the resource being edited
type editTarget struct {
	title  string
	values map[string]string
	detail func() view.Screen
}

func (b *Bot) loadEditTarget(req *request, r flow.Resource, id string) (editTarget, error) {
	switch r {
	case flow.ResourceUser:
		u, err := b.panel.GetUser(req.ctx, id)
		if err != nil {
			return editTarget{}, errors.Wrap(err, "get user")
		}
		return editTarget{
			title:  u.Username,
			values: view.UserEditValues(u),
			detail: func() view.Screen { return b.userScreen(req, u) },
		}, nil
	case flow.ResourceHost:
		h, err := b.panel.GetHost(req.ctx, id)
		if err != nil {
			return editTarget{}, errors.Wrap(err, "get host")
		}
		return editTarget{
			title:  h.Remark,
			values: view.HostEditValues(h),
			detail: func() view.Screen { return view.HostDetail(h) },
		}, nil
	case flow.ResourceNode:
		n, err := b.panel.GetNode(req.ctx, id)
		if err != nil {
			return editTarget{}, errors.Wrap(err, "get node")
		}
		return editTarget{
			title:  n.Name,
			values: view.NodeEditValues(n),
			detail: func() view.Screen { return view.NodeDetail(n) },
		}, nil
	default:
		return editTarget{}, errors.Errorf("%s cannot be edited", r)
	}
}

func (b *Bot) applyPatch(req *request, r flow.Resource, id string, patch models.Patch) error {
	var err error
	switch r {
	case flow.ResourceUser:
		_, err = b.panel.UpdateUser(req.ctx, id, patch)
	case flow.ResourceHost:
		_, err = b.panel.UpdateHost(req.ctx, id, patch)
	case flow.ResourceNode:
		_, err = b.panel.UpdateNode(req.ctx, id, patch)
	default:
		return errors.Errorf("%s cannot be edited", r)
	}
	if err != nil {
		return errors.Wrapf(err, "update %s", r)
	}
	return nil
}

// showEditMenu re-fetches the resource so the menu shows persisted values
func (b *Bot) showEditMenu(req *request, f *flow.EditFlow, notice string) error {
	t, err := b.loadEditTarget(req, f.Resource, f.TargetID)
	if err != nil {
		return err
	}
	b.showFlow(req, view.EditMenu(f.Resource, t.title, t.values, notice))
	return nil
}

// onEdit opens the field menu for a resource, discarding any active flow
func (b *Bot) onEdit(req *request, cb view.Callback) error {
	r, err := flow.ParseResource(cb.Arg(1))
	if err != nil || r == flow.ResourceSquad {
		b.alert(req, view.UnknownAlert)
		return nil
	}
	id := cb.Arg(0)
	t, err := b.loadEditTarget(req, r, id)
	if err != nil {
		return err
	}
	f := flow.NewEdit(r, id)
	b.begin(req, f, view.EditMenu(r, t.title, t.values, ""))
	return nil
}

func (b *Bot) onEditField(req *request, cb view.Callback) error {
	f, ok := activeFlow[*flow.EditFlow](b.sessions, req.key)
	if !ok {
		b.alert(req, view.ExpiredAlert)
		return nil
	}
	field, err := f.Choose(cb.Arg(0))
	if err != nil {
		hint, _ := validationHint(err)
		b.alert(req, hint)
		return nil
	}
	t, err := b.loadEditTarget(req, f.Resource, f.TargetID)
	if err != nil {
		return err
	}
	if field.Kind == flow.FieldText {
		b.showFlow(req, view.EditPrompt(field, t.values[field.Key], ""))
	} else {
		b.showFlow(req, view.EditChoices(field, t.values[field.Key]))
	}
	return nil
}

func (b *Bot) editText(req *request, f *flow.EditFlow, text string) error {
	if f.Step != flow.EditAwaitValue || f.Field == nil {
		return b.showEditMenu(req, f, "⚠️ Choose a field first.")
	}
	field := *f.Field

	patch, err := f.SubmitText(text, b.now())
	if err != nil {
		hint, ok := validationHint(err)
		if !ok {
			return err
		}
		t, err := b.loadEditTarget(req, f.Resource, f.TargetID)
		if err != nil {
			return err
		}
		b.showFlow(req, view.EditPrompt(field, t.values[field.Key], hint))
		return nil
	}
	return b.saveEdit(req, f, field, patch)
}

func (b *Bot) onEditValue(req *request, cb view.Callback) error {
	f, ok := activeFlow[*flow.EditFlow](b.sessions, req.key)
	if !ok {
		b.alert(req, view.ExpiredAlert)
		return nil
	}
	field, ok := flow.LookupEditField(f.Resource, cb.Arg(0))
	if !ok {
		b.alert(req, view.UnknownAlert)
		return nil
	}
	patch, err := f.ButtonPatch(field.Key, cb.Arg(1))
	if err != nil {
		hint, _ := validationHint(err)
		b.alert(req, hint)
		return nil
	}
	return b.saveEdit(req, f, field, patch)
}

func (b *Bot) saveEdit(req *request, f *flow.EditFlow, field flow.EditField, patch models.Patch) error {
	if err := b.applyPatch(req, f.Resource, f.TargetID, patch); err != nil {
		return err
	}
	b.logger.Info("Field updated",
		zap.String("resource", string(f.Resource)),
		zap.String("uuid", f.TargetID),
		zap.String("field", field.Key),
	)
	return b.showEditMenu(req, f, "✅ "+field.Label+" updated.")
}

func (b *Bot) onEditBack(req *request, _ view.Callback) error {
	f, ok := activeFlow[*flow.EditFlow](b.sessions, req.key)
	if !ok {
		b.alert(req, view.ExpiredAlert)
		return nil
	}
	f.Back()
	return b.showEditMenu(req, f, "")
}

// onEditDone ends the edit flow and shows the resource
func (b *Bot) onEditDone(req *request, _ view.Callback) error {
	f, ok := activeFlow[*flow.EditFlow](b.sessions, req.key)
	if !ok {
		b.alert(req, view.ExpiredAlert)
		return nil
	}
	b.sessions.End(req.key)
	t, err := b.loadEditTarget(req, f.Resource, f.TargetID)
	if err != nil {
		return err
	}
	b.show(req, t.detail())
	return nil
}
