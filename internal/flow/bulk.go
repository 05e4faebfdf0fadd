package flow

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/DigneZzZ/remnabot/internal/models"
)

// BulkStep is the position inside the bulk creation wizard
type BulkStep int

const (
	BulkCount BulkStep = iota
	BulkDuration
	BulkTraffic
	BulkReset
	BulkConfirm
	BulkRunning
)

const (
	// UnlimitedDays is the expiry used for "unlimited" subscriptions
	UnlimitedDays = 36500
	daysPerMonth  = 30

	usernameLength   = 12
	usernameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxNameAttempts  = 10
)

var (
	countPresets = []int{5, 10, 15}

	// DurationChoices are month counts; 0 means unlimited
	DurationChoices = []int{0, 1, 2, 3, 6, 12}
	// TrafficChoices are GB quotas; 0 means unlimited
	TrafficChoices = []int{0, 100, 400, 800, 1000, 2000}
	// ResetChoices are the cadences offered for finite quotas
	ResetChoices = []string{models.ResetNoReset, models.ResetDay, models.ResetWeek, models.ResetMonth}
)

// CountChoices returns the allowed batch sizes for a configured maximum:
// the presets that fit plus the maximum itself.
func CountChoices(limit int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, n := range append(append([]int(nil), countPresets...), limit) {
		if n < 1 || n > limit || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// BulkFlow is the cascading preset wizard for creating many users at once
type BulkFlow struct {
	Step           BulkStep
	Max            int
	Count          int
	DurationMonths int
	TrafficGB      int
	// Reset is empty while not applicable (unlimited traffic)
	Reset string
}

// NewBulk starts the wizard with the configured maximum batch size
func NewBulk(limit int) *BulkFlow {
	return &BulkFlow{Step: BulkCount, Max: limit}
}

func (f *BulkFlow) Kind() Kind { return KindBulk }

func (f *BulkFlow) expect(step BulkStep) error {
	if f.Step != step {
		return invalid("That button belongs to another step, use the current one.")
	}
	return nil
}

// SelectCount sets the batch size
func (f *BulkFlow) SelectCount(n int) error {
	if err := f.expect(BulkCount); err != nil {
		return err
	}
	for _, c := range CountChoices(f.Max) {
		if c == n {
			f.Count = n
			f.Step = BulkDuration
			return nil
		}
	}
	return invalid("Count must be one of the offered values.")
}

// SelectDuration sets the subscription length in months (0 = unlimited)
func (f *BulkFlow) SelectDuration(months int) error {
	if err := f.expect(BulkDuration); err != nil {
		return err
	}
	if !slices.Contains(DurationChoices, months) {
		return invalid("Duration must be one of the offered values.")
	}
	f.DurationMonths = months
	f.Step = BulkTraffic
	return nil
}

// SelectTraffic sets the quota in GB. Unlimited skips the reset step.
func (f *BulkFlow) SelectTraffic(gb int) error {
	if err := f.expect(BulkTraffic); err != nil {
		return err
	}
	if !slices.Contains(TrafficChoices, gb) {
		return invalid("Traffic must be one of the offered values.")
	}
	f.TrafficGB = gb
	if gb == 0 {
		f.Reset = ""
		f.Step = BulkConfirm
	} else {
		f.Step = BulkReset
	}
	return nil
}

// SelectReset sets the reset cadence for a finite quota
func (f *BulkFlow) SelectReset(strategy string) error {
	if err := f.expect(BulkReset); err != nil {
		return err
	}
	for _, s := range ResetChoices {
		if s == strategy {
			f.Reset = s
			f.Step = BulkConfirm
			return nil
		}
	}
	return invalid("Reset cadence must be one of the offered values.")
}

// Confirm moves the wizard to execution
func (f *BulkFlow) Confirm() error {
	if err := f.expect(BulkConfirm); err != nil {
		return err
	}
	f.Step = BulkRunning
	return nil
}

// Days is the subscription length in days
func (f *BulkFlow) Days() int {
	if f.DurationMonths == 0 {
		return UnlimitedDays
	}
	return f.DurationMonths * daysPerMonth
}

// TrafficBytes is the quota in bytes, 0 for unlimited
func (f *BulkFlow) TrafficBytes() int64 {
	return int64(f.TrafficGB) * bytesPerGB
}

// Strategy is the reset strategy sent to the panel
func (f *BulkFlow) Strategy() string {
	if f.TrafficGB == 0 || f.Reset == "" {
		return models.ResetNoReset
	}
	return f.Reset
}

// UserRequest builds the create payload for one generated username
func (f *BulkFlow) UserRequest(username string, now time.Time) models.CreateUserRequest {
	return models.CreateUserRequest{
		Username:             username,
		Status:               models.UserStatusActive,
		TrafficLimitBytes:    f.TrafficBytes(),
		TrafficLimitStrategy: f.Strategy(),
		ExpireAt:             now.AddDate(0, 0, f.Days()).UTC(),
	}
}

// RandomUsername returns 12 random alphanumeric characters
func RandomUsername() (string, error) {
	alphabetSize := big.NewInt(int64(len(usernameAlphabet)))
	var sb strings.Builder
	sb.Grow(usernameLength)
	for i := 0; i < usernameLength; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		sb.WriteByte(usernameAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// GenerateUsernames returns n distinct names from gen.
func GenerateUsernames(n int, gen func() (string, error)) ([]string, error) {
	names := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for len(names) < n {
		var name string
		for attempt := 0; ; attempt++ {
			if attempt == maxNameAttempts {
				return nil, fmt.Errorf("could not generate a unique username after %d attempts", maxNameAttempts)
			}
			candidate, err := gen()
			if err != nil {
				return nil, fmt.Errorf("generate username: %w", err)
			}
			if !seen[candidate] {
				name = candidate
				break
			}
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

// Failure is one item that could not be processed
type Failure struct {
	Item   string
	Reason string
}

// Report aggregates per-item outcomes of a batch
type Report struct {
	Succeeded []string
	Failed    []Failure
}

// Total is the number of attempted items
func (r Report) Total() int { return len(r.Succeeded) + len(r.Failed) }

// ItemFunc processes one item of a batch
type ItemFunc func(ctx context.Context, item string) error

// Execute runs fn for every item sequentially, waiting on limiter before each
// call. One failure never stops the batch; a cancelled context marks the
// remaining items failed.
func Execute(ctx context.Context, items []string, limiter *rate.Limiter, fn ItemFunc) Report {
	var report Report
	for i, item := range items {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				for _, rest := range items[i:] {
					report.Failed = append(report.Failed, Failure{Item: rest, Reason: err.Error()})
				}
				return report
			}
		}
		if err := fn(ctx, item); err != nil {
			report.Failed = append(report.Failed, Failure{Item: item, Reason: err.Error()})
			continue
		}
		report.Succeeded = append(report.Succeeded, item)
	}
	return report
}

// NewLimiter paces batch calls to one per delay. A non-positive delay
// disables pacing.
func NewLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
