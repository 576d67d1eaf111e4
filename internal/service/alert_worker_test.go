package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAlertWorker(t *testing.T) (*AlertWorker, *alertCheckFixture) {
	t.Helper()
	f := setupAlertCheck(t)

	config := AlertWorkerConfig{
		Interval: 100 * time.Millisecond, // Fast interval for testing
	}

	return NewAlertWorker(f.service, zerolog.Nop(), config), f
}

func TestAlertWorker_NewAlertWorker(t *testing.T) {
	worker, _ := setupAlertWorker(t)

	assert.NotNil(t, worker)
	assert.Equal(t, 100*time.Millisecond, worker.interval)
	assert.False(t, worker.IsRunning())
	assert.Nil(t, worker.LastReport())
}

func TestAlertWorker_DefaultConfig(t *testing.T) {
	config := DefaultAlertWorkerConfig()
	assert.Equal(t, 24*time.Hour, config.Interval)

	worker := NewAlertWorker(nil, zerolog.Nop(), AlertWorkerConfig{})
	assert.Equal(t, 24*time.Hour, worker.interval)
}

func TestAlertWorker_StartStop(t *testing.T) {
	worker, _ := setupAlertWorker(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	assert.True(t, worker.IsRunning())

	worker.Stop()

	assert.False(t, worker.IsRunning())
}

func TestAlertWorker_StartTwice(t *testing.T) {
	worker, _ := setupAlertWorker(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	worker.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	assert.True(t, worker.IsRunning())

	worker.Stop()
	assert.False(t, worker.IsRunning())
}

func TestAlertWorker_StopWithoutStart(t *testing.T) {
	worker, _ := setupAlertWorker(t)

	worker.Stop()
	assert.False(t, worker.IsRunning())
}

func TestAlertWorker_RunsOnStartup(t *testing.T) {
	worker, f := setupAlertWorker(t)
	user := f.addUser("startup")
	f.addMarchBudget(user.ID, "200")
	f.addExpense(user.ID, "300", 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	require.Eventually(t, func() bool { return worker.LastReport() != nil }, time.Second, 10*time.Millisecond)
	worker.Stop()

	report := worker.LastReport()
	assert.Equal(t, 1, report.UsersProcessed)
	assert.Equal(t, 1, f.alerts.Count())
}

func TestAlertWorker_RepeatedTicksDoNotDuplicate(t *testing.T) {
	worker, f := setupAlertWorker(t)
	user := f.addUser("ticks")
	f.addMarchBudget(user.ID, "200")
	f.addExpense(user.ID, "300", 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	time.Sleep(350 * time.Millisecond)
	worker.Stop()

	assert.Equal(t, 1, f.alerts.Count())
	assert.Equal(t, 1, len(f.publisher.alerts))
}

func TestAlertWorker_ContextCancellationStopsLoop(t *testing.T) {
	worker, _ := setupAlertWorker(t)

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.Eventually(t, func() bool { return !worker.IsRunning() }, time.Second, 10*time.Millisecond)
}
