package workflow_test

import (
	"context"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookwise/workflow"
)

// fakeUserStore mimics the repository's conditional deactivation write.
type fakeUserStore struct {
	last          *time.Time
	status        string
	deactivations int
}

func (f *fakeUserStore) LastActivity(_ context.Context, _ string) (*time.Time, error) {
	return f.last, nil
}

func (f *fakeUserStore) DeactivateUserByEmail(_ context.Context, _ string) error {
	if f.status != "REJECTED" {
		f.status = "REJECTED"
		f.deactivations++
	}
	return nil
}

func onboardingSeed(t *testing.T) []byte {
	t.Helper()
	b, err := jsoniter.ConfigFastest.Marshal(workflow.OnboardingSeed{
		Email:    "sam@uni.edu",
		FullName: "Sam",
	})
	require.NoError(t, err)
	return b
}

func TestOnboarding_WelcomeThenFirstCheck(t *testing.T) {
	store := &fakeUserStore{}
	sender := &recordingSender{}
	wf := workflow.NewOnboarding(store, sender)
	seed := onboardingSeed(t)
	signup := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	out, err := wf.Step(context.Background(), seed, 0, signup)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Next)
	assert.Equal(t, 3*24*time.Hour, out.Delay)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Welcome to BookWise Library", sender.sent[0].Subject)
}

func TestOnboarding_ActiveUserRecheckKeepsStep(t *testing.T) {
	now := time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC)
	recent := now.Add(-2 * 24 * time.Hour)
	store := &fakeUserStore{last: &recent}
	sender := &recordingSender{}
	wf := workflow.NewOnboarding(store, sender)

	// An active user at check 4 gets a greeting and a 3-day recheck without
	// spending the attempt.
	out, err := wf.Step(context.Background(), onboardingSeed(t), 4, now)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Next)
	assert.Equal(t, 3*24*time.Hour, out.Delay)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Welcome back!", sender.sent[0].Subject)
}

func TestOnboarding_IdleUserAdvancesMonthly(t *testing.T) {
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	idle := now.Add(-10 * 24 * time.Hour)
	store := &fakeUserStore{last: &idle}
	sender := &recordingSender{}
	wf := workflow.NewOnboarding(store, sender)

	out, err := wf.Step(context.Background(), onboardingSeed(t), 1, now)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Next)
	assert.Equal(t, 30*24*time.Hour, out.Delay)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Are you still there?", sender.sent[0].Subject)
}

func TestOnboarding_NeverActiveCountsAsIdle(t *testing.T) {
	store := &fakeUserStore{last: nil}
	sender := &recordingSender{}
	wf := workflow.NewOnboarding(store, sender)

	out, err := wf.Step(context.Background(), onboardingSeed(t), 1, time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, out.Next)
	assert.Equal(t, "Are you still there?", sender.sent[0].Subject)
}

func TestOnboarding_LongIdleReadsAsActive(t *testing.T) {
	// Past the 30-day fence the classification flips back to active, so a
	// user gone for months still gets the welcome-back greeting.
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	longGone := now.Add(-60 * 24 * time.Hour)
	store := &fakeUserStore{last: &longGone}
	sender := &recordingSender{}
	wf := workflow.NewOnboarding(store, sender)

	out, err := wf.Step(context.Background(), onboardingSeed(t), 6, now)
	require.NoError(t, err)
	assert.Equal(t, 6, out.Next)
	assert.Equal(t, "Welcome back!", sender.sent[0].Subject)
}

func TestOnboarding_GoodbyeDeactivatesAndEndsRun(t *testing.T) {
	store := &fakeUserStore{status: "APPROVED"}
	sender := &recordingSender{}
	wf := workflow.NewOnboarding(store, sender)
	seed := onboardingSeed(t)
	now := time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC)

	out, err := wf.Step(context.Background(), seed, 13, now)
	require.NoError(t, err)
	assert.True(t, out.Done)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "We might say goodbye soon...", sender.sent[0].Subject)
	assert.Equal(t, "REJECTED", store.status)
	assert.Equal(t, 1, store.deactivations)

	// A crash between the write and the checkpoint replays the step; the
	// account is already REJECTED so the write is a no-op.
	out, err = wf.Step(context.Background(), seed, 13, now)
	require.NoError(t, err)
	assert.True(t, out.Done)
	assert.Equal(t, 1, store.deactivations)
}
