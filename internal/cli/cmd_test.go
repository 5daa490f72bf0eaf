package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/timeclock/internal/netmon"
	"github.com/alexanderramin/timeclock/internal/repository"
	"github.com/alexanderramin/timeclock/internal/service"
	"github.com/alexanderramin/timeclock/internal/testutil"
)

// testApp wires a full App backed by an in-memory DB. The monitor starts
// offline so commands never attempt remote calls unless a test opts in.
func testApp(t *testing.T) (*App, *testutil.FakeRemote, *netmon.Monitor) {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)

	entries := repository.NewSQLiteTimeEntryRepo(database)
	queue := repository.NewSQLiteQueueRepo(database)
	sites := repository.NewSQLiteWorksiteRepo(database)

	remote := testutil.NewFakeRemote()
	monitor := netmon.NewMonitor(nil, time.Hour)
	monitor.SetConnected(false)

	syncSvc := service.NewSyncService(queue, entries, remote, monitor, uow, time.Hour)
	clockSvc := service.NewClockService(entries, sites, syncSvc, nil, nil, uow, "test-user", 0)

	app := &App{
		Clock:         clockSvc,
		Sync:          syncSvc,
		Sites:         service.NewWorksiteService(sites),
		IsInteractive: func() bool { return false },
	}
	return app, remote, monitor
}

// executeCmd runs a cobra command, capturing stdout so fmt.Print output
// from handlers is included.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	pr, pw, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = pw

	root := NewRootCmd(app)
	root.SetOut(pw)
	root.SetErr(pw)
	root.SetArgs(args)
	root.SilenceUsage = true
	root.SilenceErrors = true

	var out strings.Builder
	done := make(chan struct{})
	go func() {
		io.Copy(&out, pr)
		close(done)
	}()

	execErr := root.Execute()

	pw.Close()
	os.Stdout = origStdout
	<-done

	return out.String(), execErr
}

func TestInCmd_ClockInThenStatus(t *testing.T) {
	app, _, _ := testApp(t)

	out, err := executeCmd(t, app, "in", "--no-location")
	require.NoError(t, err)
	assert.Contains(t, out, "Clocked in at")

	out, err = executeCmd(t, app, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Clocked In")
	assert.Contains(t, out, "offline")
	assert.Contains(t, out, "1 pending")
}

func TestInCmd_DoubleClockInFails(t *testing.T) {
	app, _, _ := testApp(t)

	_, err := executeCmd(t, app, "in", "--no-location")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "in", "--no-location")
	require.ErrorIs(t, err, service.ErrAlreadyClockedIn)
}

func TestBreakCmds(t *testing.T) {
	app, _, _ := testApp(t)

	_, err := executeCmd(t, app, "in", "--no-location")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "break", "start")
	require.NoError(t, err)
	assert.Contains(t, out, "Break started")

	out, err = executeCmd(t, app, "break", "end")
	require.NoError(t, err)
	assert.Contains(t, out, "Back to work")
}

func TestOutCmd_CompletesAndShowsHistory(t *testing.T) {
	app, _, _ := testApp(t)

	_, err := executeCmd(t, app, "in", "--no-location")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "out", "--note", "wrapping up")
	require.NoError(t, err)
	assert.Contains(t, out, "Clocked out at")

	out, err = executeCmd(t, app, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "HISTORY")
	assert.Contains(t, out, "1 entries")
}

func TestOutCmd_WithoutOpenEntry(t *testing.T) {
	app, _, _ := testApp(t)

	_, err := executeCmd(t, app, "out")
	require.ErrorIs(t, err, service.ErrNotClockedIn)
}

func TestSiteCmds_AddListRemove(t *testing.T) {
	app, _, _ := testApp(t)

	out, err := executeCmd(t, app, "site", "add",
		"--name", "Office Tower", "--lat", "40.7484", "--lon", "-73.9857", "--radius", "150")
	require.NoError(t, err)
	assert.Contains(t, out, "Office Tower")
	assert.Contains(t, out, "150m")

	out, err = executeCmd(t, app, "site", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Office Tower")

	_, err = executeCmd(t, app, "site", "rm", "Office Tower")
	require.NoError(t, err)

	out, err = executeCmd(t, app, "site", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No worksites registered")
}

func TestSyncCmd_DrainsAfterReconnect(t *testing.T) {
	app, remote, monitor := testApp(t)

	_, err := executeCmd(t, app, "in", "--no-location")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "out")
	require.NoError(t, err)

	monitor.SetConnected(true)
	out, err := executeCmd(t, app, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Applied 2 operation(s)")
	assert.Equal(t, 1, remote.CreateCount())
	assert.Equal(t, 1, remote.ClockOutCount())
}

func TestResetCmd_RequiresForceWhenNotInteractive(t *testing.T) {
	app, _, _ := testApp(t)

	_, err := executeCmd(t, app, "reset")
	require.Error(t, err)

	_, err = executeCmd(t, app, "in", "--no-location")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "reset", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Local data wiped")

	_, err = app.Clock.Current(context.Background())
	require.ErrorIs(t, err, service.ErrNotClockedIn)
}
