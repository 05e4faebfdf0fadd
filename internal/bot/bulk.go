package bot

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/flow"
	"github.com/DigneZzZ/remnabot/internal/view"
)

func (b *Bot) onBulkStart(req *request, _ view.Callback) error {
	f := flow.NewBulk(b.maxBulk)
	b.begin(req, f, view.Bulk(f, ""))
	return nil
}

// bulkStep applies one preset button to the active bulk wizard
func (b *Bot) bulkStep(req *request, apply func(f *flow.BulkFlow) error) error {
	f, ok := activeFlow[*flow.BulkFlow](b.sessions, req.key)
	if !ok {
		b.alert(req, view.ExpiredAlert)
		return nil
	}
	if err := apply(f); err != nil {
		hint, ok := validationHint(err)
		if !ok {
			return err
		}
		b.alert(req, hint)
		b.showFlow(req, view.Bulk(f, hint))
		return nil
	}
	b.showFlow(req, view.Bulk(f, ""))
	return nil
}

func intArg(cb view.Callback, i int) int {
	n, err := strconv.Atoi(cb.Arg(i))
	if err != nil {
		return -1
	}
	return n
}

func (b *Bot) onBulkCount(req *request, cb view.Callback) error {
	return b.bulkStep(req, func(f *flow.BulkFlow) error { return f.SelectCount(intArg(cb, 0)) })
}

func (b *Bot) onBulkDuration(req *request, cb view.Callback) error {
	return b.bulkStep(req, func(f *flow.BulkFlow) error { return f.SelectDuration(intArg(cb, 0)) })
}

func (b *Bot) onBulkTraffic(req *request, cb view.Callback) error {
	return b.bulkStep(req, func(f *flow.BulkFlow) error { return f.SelectTraffic(intArg(cb, 0)) })
}

func (b *Bot) onBulkReset(req *request, cb view.Callback) error {
	return b.bulkStep(req, func(f *flow.BulkFlow) error { return f.SelectReset(cb.Arg(0)) })
}

// onBulkConfirm creates the batch. Usernames are generated up front and
// users are created one by one; a failed user never stops the rest.
func (b *Bot) onBulkConfirm(req *request, _ view.Callback) error {
	f, ok := activeFlow[*flow.BulkFlow](b.sessions, req.key)
	if !ok {
		b.alert(req, view.ExpiredAlert)
		return nil
	}
	if err := f.Confirm(); err != nil {
		hint, _ := validationHint(err)
		b.alert(req, hint)
		return nil
	}
	b.toast(req, "Creating users…")
	b.showFlow(req, view.Bulk(f, ""))

	names, err := flow.GenerateUsernames(f.Count, b.newUsername)
	b.sessions.End(req.key)
	if err != nil {
		return errors.Wrap(err, "generate usernames")
	}

	now := b.now()
	report := flow.Execute(req.ctx, names, flow.NewLimiter(b.bulkDelay), func(ctx context.Context, name string) error {
		if _, err := b.panel.CreateUser(ctx, f.UserRequest(name, now)); err != nil {
			b.logger.Warn("Bulk user creation failed", zap.String("username", name), zap.Error(err))
			return errors.New(errMessage(err))
		}
		return nil
	})

	b.logger.Info("Bulk creation finished",
		zap.Int("total", report.Total()),
		zap.Int("created", len(report.Succeeded)),
		zap.Int("failed", len(report.Failed)),
	)
	b.show(req, view.BulkReport(report))
	return nil
}
