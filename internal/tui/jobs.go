package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type jobStatus string

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID          string
	Command     command
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

// jobRunner performs one network or disk operation off the update loop and
// returns the message to fold into the model. The error return feeds only
// the job log; the payload must already carry it for the fold.
type jobRunner func(context.Context) (tea.Msg, error)

type jobBus struct {
	logger *zap.Logger
}

func newJobBus(logger *zap.Logger) *jobBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &jobBus{logger: logger}
}

// Start schedules runner on the bubbletea runtime. The returned command
// first announces the running job, then settles with the runner's payload
// wrapped in an envelope so the model can retire the job entry.
func (b *jobBus) Start(cmd command, runner jobRunner) tea.Cmd {
	id := uuid.NewString()
	started := time.Now()
	startSnapshot := jobSnapshot{ID: id, Command: cmd, Status: jobStatusRunning, StartedAt: started}
	startCmd := func() tea.Msg {
		return jobSignalMsg{Snapshot: startSnapshot}
	}

	runCmd := func() tea.Msg {
		b.logger.Info("job started",
			zap.String("job_id", id),
			zap.String("command", string(cmd)),
		)
		payload, err := runner(context.Background())
		snapshot := jobSnapshot{
			ID:          id,
			Command:     cmd,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		if err != nil {
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		} else {
			snapshot.Status = jobStatusSucceeded
		}
		snapshot.Duration = snapshot.CompletedAt.Sub(started)
		fields := []zap.Field{
			zap.String("job_id", id),
			zap.String("command", string(cmd)),
			zap.String("status", string(snapshot.Status)),
			zap.Duration("duration", snapshot.Duration),
		}
		if snapshot.Err != "" {
			fields = append(fields, zap.String("error", snapshot.Err))
		}
		b.logger.Info("job settled", fields...)
		return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
	}

	return tea.Sequence(startCmd, runCmd)
}
