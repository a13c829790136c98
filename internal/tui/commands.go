package tui

import (
	"context"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/queryprism/prism/internal/api"
	"github.com/queryprism/prism/internal/session"
	"github.com/queryprism/prism/internal/transcript"
)

// Answer generation and document ingestion run retrieval pipelines server
// side, so they get the long deadline; everything else is a plain round trip.
const (
	authTimeout  = 30 * time.Second
	quickTimeout = 30 * time.Second
	longTimeout  = 3 * time.Minute
)

func loginJob(sess *session.Session, email, password string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, authTimeout)
		defer cancel()
		err := sess.Login(ctx, email, password)
		return loginResultMsg{err: err}, err
	}
}

func registerJob(svc api.Service, reg api.Registration) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, authTimeout)
		defer cancel()
		err := svc.Register(ctx, reg)
		return registerResultMsg{email: reg.Email, err: err}, err
	}
}

func forgotJob(svc api.Service, email string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, authTimeout)
		defer cancel()
		message, err := svc.RequestPasswordReset(ctx, email)
		return forgotResultMsg{email: email, message: message, err: err}, err
	}
}

func resetJob(svc api.Service, email, newPassword string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, authTimeout)
		defer cancel()
		message, err := svc.CompletePasswordReset(ctx, email, newPassword)
		return resetResultMsg{email: email, message: message, err: err}, err
	}
}

func queryJob(svc api.Service, epoch int, question string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, longTimeout)
		defer cancel()
		answer, err := svc.Query(ctx, question)
		return queryResultMsg{epoch: epoch, answer: answer, err: err}, err
	}
}

func listJob(svc api.Service, epoch int) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, quickTimeout)
		defer cancel()
		names, err := svc.ListDocuments(ctx)
		return documentsResultMsg{epoch: epoch, names: names, err: err}, err
	}
}

// uploadJob opens the file inside the runner so an unreadable path settles
// as a failed upload instead of blocking the update loop.
func uploadJob(svc api.Service, epoch int, path string) jobRunner {
	filename := filepath.Base(path)
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, longTimeout)
		defer cancel()
		file, err := os.Open(path)
		if err != nil {
			return uploadResultMsg{epoch: epoch, filename: filename, err: err}, err
		}
		defer file.Close()
		stored, err := svc.UploadDocument(ctx, filename, file)
		return uploadResultMsg{epoch: epoch, filename: filename, stored: stored, err: err}, err
	}
}

func deleteJob(svc api.Service, epoch int, filename string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, quickTimeout)
		defer cancel()
		err := svc.DeleteDocument(ctx, filename)
		return deleteResultMsg{epoch: epoch, filename: filename, err: err}, err
	}
}

func folderJob(svc api.Service, epoch int, folderID string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, quickTimeout)
		defer cancel()
		message, err := svc.SaveDriveFolder(ctx, folderID)
		return folderResultMsg{epoch: epoch, message: message, err: err}, err
	}
}

func syncJob(svc api.Service, epoch int) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, longTimeout)
		defer cancel()
		message, err := svc.SyncDrive(ctx)
		return syncResultMsg{epoch: epoch, message: message, err: err}, err
	}
}

func exportJob(epoch int, path string, turns []transcript.Turn) jobRunner {
	toPersist := append([]transcript.Turn(nil), turns...)
	return func(parent context.Context) (tea.Msg, error) {
		if err := transcript.Save(path, toPersist); err != nil {
			return exportResultMsg{epoch: epoch, path: path, err: err}, err
		}
		return exportResultMsg{epoch: epoch, path: path, count: len(toPersist)}, nil
	}
}

func announceDocumentsChanged(reason string) tea.Cmd {
	return func() tea.Msg {
		return documentsChangedMsg{reason: reason}
	}
}
