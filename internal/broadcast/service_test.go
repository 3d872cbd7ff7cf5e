package broadcast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	ids []int64
	err error
}

func (f *fakeDirectory) AllTgIDs(_ context.Context) ([]int64, error) {
	return f.ids, f.err
}

type fakeSender struct {
	sent    []int64
	failIDs map[int64]bool
}

func (f *fakeSender) SendText(chatID int64, _ string) error {
	if f.failIDs[chatID] {
		return errors.New("blocked by user")
	}
	f.sent = append(f.sent, chatID)
	return nil
}

func TestSendDeliversToAllUsers(t *testing.T) {
	dir := &fakeDirectory{ids: []int64{1, 2, 3}}
	sender := &fakeSender{}
	svc := NewService(dir, sender, time.Millisecond)

	res, err := svc.Send(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, 3, res.Sent)
	require.Empty(t, res.Errors)
	require.Equal(t, []int64{1, 2, 3}, sender.sent)
}

func TestSendCollectsPerUserFailures(t *testing.T) {
	dir := &fakeDirectory{ids: []int64{1, 2, 3}}
	sender := &fakeSender{failIDs: map[int64]bool{2: true}}
	svc := NewService(dir, sender, time.Millisecond)

	res, err := svc.Send(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, 2, res.Sent)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], "user 2")
}

func TestSendStopsOnCancel(t *testing.T) {
	dir := &fakeDirectory{ids: []int64{1, 2, 3}}
	sender := &fakeSender{}
	svc := NewService(dir, sender, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	res, err := svc.Send(ctx, "hello")
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, res.Sent, 3)
}

func TestSendDirectoryFailure(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("db down")}
	svc := NewService(dir, &fakeSender{}, time.Millisecond)

	_, err := svc.Send(context.Background(), "hello")
	require.Error(t, err)
}
