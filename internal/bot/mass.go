package bot

import (
	"context"
	"slices"
	"strconv"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/flow"
	"github.com/DigneZzZ/remnabot/internal/models"
	"github.com/DigneZzZ/remnabot/internal/view"
)

// massDays validates the day count of a mass extension
func massDays(cb view.Callback) (int, bool) {
	days, err := strconv.Atoi(cb.Arg(1))
	if err != nil || !slices.Contains(view.ExtendPresets, days) {
		return 0, false
	}
	return days, true
}

func (b *Bot) onMass(req *request, cb view.Callback) error {
	switch op := cb.Arg(0); op {
	case "", view.MassHome:
		b.show(req, view.MassMenu())
	case view.MassExtend:
		if cb.Arg(1) == "" {
			b.show(req, view.MassExtendDays())
			return nil
		}
		days, ok := massDays(cb)
		if !ok {
			b.alert(req, view.UnknownAlert)
			return nil
		}
		b.show(req, view.MassConfirm(op, days))
	case view.MassReset, view.MassEnable, view.MassDisable:
		b.show(req, view.MassConfirm(op, 0))
	default:
		b.alert(req, view.UnknownAlert)
	}
	return nil
}

func (b *Bot) massAction(op string, days int) (func(ctx context.Context, id string) error, bool) {
	switch op {
	case view.MassExtend:
		return func(ctx context.Context, id string) error {
			_, err := b.panel.ExtendUser(ctx, id, days)
			return err
		}, true
	case view.MassReset:
		return func(ctx context.Context, id string) error {
			_, err := b.panel.ResetUserTraffic(ctx, id)
			return err
		}, true
	case view.MassEnable:
		return func(ctx context.Context, id string) error {
			_, err := b.panel.EnableUser(ctx, id)
			return err
		}, true
	case view.MassDisable:
		return func(ctx context.Context, id string) error {
			_, err := b.panel.DisableUser(ctx, id)
			return err
		}, true
	default:
		return nil, false
	}
}

// onMassOK applies the confirmed operation to every user, paced like a
// bulk creation. The report lists usernames.
func (b *Bot) onMassOK(req *request, cb view.Callback) error {
	op := cb.Arg(0)
	days := 0
	if op == view.MassExtend {
		var ok bool
		if days, ok = massDays(cb); !ok {
			b.alert(req, view.UnknownAlert)
			return nil
		}
	}
	action, ok := b.massAction(op, days)
	if !ok {
		b.alert(req, view.UnknownAlert)
		return nil
	}
	b.toast(req, "Running…")

	users, err := b.allUsers(req)
	if err != nil {
		return err
	}
	byName := make(map[string]models.User, len(users))
	names := make([]string, 0, len(users))
	for _, u := range users {
		byName[u.Username] = u
		names = append(names, u.Username)
	}

	report := flow.Execute(req.ctx, names, flow.NewLimiter(b.bulkDelay), func(ctx context.Context, name string) error {
		if err := action(ctx, byName[name].UUID); err != nil {
			return errors.New(errMessage(err))
		}
		return nil
	})

	b.logger.Info("Mass operation finished",
		zap.String("op", op),
		zap.Int("days", days),
		zap.Int("total", report.Total()),
		zap.Int("failed", len(report.Failed)),
	)
	b.show(req, view.MassReport(op, days, report))
	return nil
}
