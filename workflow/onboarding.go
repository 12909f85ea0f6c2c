package workflow

import (
	"context"
	"log"
	"time"

	jsoniter "github.com/json-iterator/go"

	"bookwise/notify"
)

const KindOnboarding = "onboarding"

type OnboardingSeed struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// UserStore gives the onboarding workflow the activity signal it polls and
// the end-of-life deactivation write.
type UserStore interface {
	// LastActivity returns nil when the user has never been active (or no
	// longer exists).
	LastActivity(ctx context.Context, email string) (*time.Time, error)
	// DeactivateUserByEmail sets the account REJECTED. It must be a
	// conditional write so that re-running the goodbye step deactivates once.
	DeactivateUserByEmail(ctx context.Context, email string) error
}

const (
	onboardStepWelcome = 0
	// Steps 1..monthlyChecks are the monthly activity checks; the step
	// index doubles as the attempt counter so no extra state needs to be
	// persisted.
	onboardStepGoodbye = monthlyChecks + 1

	monthlyChecks = 12
)

type userState string

const (
	userActive    userState = "active"
	userNonActive userState = "non-active"
)

// Onboarding welcomes a new user, then checks in monthly for a year,
// nudging inactive users and greeting returning ones. Once the checks are
// exhausted it sends a goodbye notice and deactivates the account.
type Onboarding struct {
	store  UserStore
	sender notify.Sender
}

func NewOnboarding(store UserStore, sender notify.Sender) *Onboarding {
	return &Onboarding{store: store, sender: sender}
}

func (o *Onboarding) Kind() string { return KindOnboarding }

func (o *Onboarding) Step(ctx context.Context, raw []byte, step int, now time.Time) (Outcome, error) {
	var seed OnboardingSeed
	if err := jsoniter.ConfigFastest.Unmarshal(raw, &seed); err != nil {
		return Outcome{}, err
	}

	switch {
	case step == onboardStepWelcome:
		o.send(ctx, seed.Email, notify.Welcome(seed.FullName))
		return Outcome{Next: 1, Delay: 3 * 24 * time.Hour}, nil

	case step >= 1 && step <= monthlyChecks:
		state, err := o.state(ctx, seed.Email, now)
		if err != nil {
			return Outcome{}, err
		}
		if state == userActive {
			// Active users get a greeting and a short recheck without
			// consuming one of the monthly attempts.
			o.send(ctx, seed.Email, notify.WelcomeBack(seed.FullName))
			return Outcome{Next: step, Delay: 3 * 24 * time.Hour}, nil
		}
		o.send(ctx, seed.Email, notify.InactivityReminder(seed.FullName))
		return Outcome{Next: step + 1, Delay: 30 * 24 * time.Hour}, nil

	case step == onboardStepGoodbye:
		o.send(ctx, seed.Email, notify.Goodbye(seed.FullName))
		if err := o.store.DeactivateUserByEmail(ctx, seed.Email); err != nil {
			return Outcome{}, err
		}
		return Outcome{Done: true}, nil

	default:
		return Outcome{Done: true}, nil
	}
}

// state mirrors the activity classification the profile touch feeds: never
// active means non-active, 3 to 30 days idle means non-active, anything
// else counts as active.
func (o *Onboarding) state(ctx context.Context, email string, now time.Time) (userState, error) {
	last, err := o.store.LastActivity(ctx, email)
	if err != nil {
		return "", err
	}
	if last == nil {
		return userNonActive, nil
	}
	idle := now.Sub(*last)
	if idle > 3*24*time.Hour && idle <= 30*24*time.Hour {
		return userNonActive, nil
	}
	return userActive, nil
}

func (o *Onboarding) send(ctx context.Context, to string, msg notify.Message) {
	if err := o.sender.Send(ctx, to, msg.Subject, msg.Body); err != nil {
		log.Printf("onboarding workflow: send %q to %s failed: %v", msg.Subject, to, err)
	}
}
