package tui

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/queryprism/prism/internal/api"
	"github.com/queryprism/prism/internal/session"
	"github.com/queryprism/prism/internal/transcript"
)

// fakeService substitutes for the HTTP client. It satisfies the service
// surface plus the session's authenticator and token binder, so one fake
// backs the whole test model.
type fakeService struct {
	loginToken    string
	loginErr      error
	registerErr   error
	forgotMessage string
	forgotErr     error
	resetMessage  string
	resetErr      error
	answer        string
	queryErr      error
	documents     []string
	listErr       error
	upload        api.Upload
	uploadErr     error
	deleteErr     error
	folderMessage string
	folderErr     error
	syncMessage   string
	syncErr       error

	queries      []string
	uploads      []string
	uploadBodies []string
	deletes      []string
	folders      []string
	listCalls    int
	syncCalls    int
	token        string
}

var (
	_ api.Service           = (*fakeService)(nil)
	_ session.Authenticator = (*fakeService)(nil)
	_ session.TokenBinder   = (*fakeService)(nil)
)

func (s *fakeService) Login(ctx context.Context, username, password string) (string, error) {
	if s.loginErr != nil {
		return "", s.loginErr
	}
	if s.loginToken != "" {
		return s.loginToken, nil
	}
	return "token-" + username, nil
}

func (s *fakeService) Register(ctx context.Context, reg api.Registration) error {
	return s.registerErr
}

func (s *fakeService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	return s.forgotMessage, s.forgotErr
}

func (s *fakeService) CompletePasswordReset(ctx context.Context, email, newPassword string) (string, error) {
	return s.resetMessage, s.resetErr
}

func (s *fakeService) Query(ctx context.Context, question string) (string, error) {
	s.queries = append(s.queries, question)
	if s.queryErr != nil {
		return "", s.queryErr
	}
	return s.answer, nil
}

func (s *fakeService) ListDocuments(ctx context.Context) ([]string, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.documents, nil
}

func (s *fakeService) UploadDocument(ctx context.Context, filename string, content io.Reader) (api.Upload, error) {
	if s.uploadErr != nil {
		return api.Upload{}, s.uploadErr
	}
	body, err := io.ReadAll(content)
	if err != nil {
		return api.Upload{}, err
	}
	s.uploads = append(s.uploads, filename)
	s.uploadBodies = append(s.uploadBodies, string(body))
	return s.upload, nil
}

func (s *fakeService) DeleteDocument(ctx context.Context, filename string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletes = append(s.deletes, filename)
	return nil
}

func (s *fakeService) SaveDriveFolder(ctx context.Context, folderID string) (string, error) {
	if s.folderErr != nil {
		return "", s.folderErr
	}
	s.folders = append(s.folders, folderID)
	return s.folderMessage, nil
}

func (s *fakeService) SyncDrive(ctx context.Context) (string, error) {
	s.syncCalls++
	return s.syncMessage, s.syncErr
}

func (s *fakeService) GoogleLoginURL() string {
	return "http://localhost:8000/api/auth/google/login"
}

func (s *fakeService) SetToken(token string) { s.token = token }
func (s *fakeService) ClearToken()           { s.token = "" }

func newTestSession(t *testing.T, svc *fakeService) *session.Session {
	t.Helper()
	store := session.NewStore(filepath.Join(t.TempDir(), "credential.json"))
	return session.New(session.Config{Auth: svc, Transport: svc, Store: store})
}

func buildTestModel(t *testing.T, svc *fakeService, sess *session.Session) *model {
	t.Helper()
	teaModel, ok := New(Config{
		Service:        svc,
		Session:        sess,
		ServerURL:      "http://localhost:8000",
		TranscriptPath: filepath.Join(t.TempDir(), "transcript.json"),
	}).(*model)
	if !ok {
		t.Fatalf("expected *model, got %T", teaModel)
	}
	return teaModel
}

// newTestModel builds a signed-out model on the sign-in view.
func newTestModel(t *testing.T) *model {
	t.Helper()
	svc := &fakeService{}
	return buildTestModel(t, svc, newTestSession(t, svc))
}

// newWorkspaceModel builds a signed-in model on the home view.
func newWorkspaceModel(t *testing.T, svc *fakeService) *model {
	t.Helper()
	sess := newTestSession(t, svc)
	if err := sess.SaveCredential("fixture-token"); err != nil {
		t.Fatalf("seed credential: %v", err)
	}
	return buildTestModel(t, svc, sess)
}

func TestQueryJobStampsEpoch(t *testing.T) {
	svc := &fakeService{answer: "because the index says so"}
	runner := queryJob(svc, 7, "why?")

	msg, err := runner(context.Background())
	if err != nil {
		t.Fatalf("query job failed: %v", err)
	}
	payload, ok := msg.(queryResultMsg)
	if !ok {
		t.Fatalf("expected queryResultMsg, got %T", msg)
	}
	if payload.epoch != 7 {
		t.Fatalf("epoch not carried through, got %d", payload.epoch)
	}
	if payload.answer != "because the index says so" {
		t.Fatalf("unexpected answer %q", payload.answer)
	}
	if len(svc.queries) != 1 || svc.queries[0] != "why?" {
		t.Fatalf("question not forwarded, got %v", svc.queries)
	}
}

func TestUploadJobSendsFileContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.pdf")
	if err := os.WriteFile(path, []byte("pdf bytes"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	svc := &fakeService{upload: api.Upload{DocumentID: "doc-1", Message: "indexed 3 passages"}}
	runner := uploadJob(svc, 2, path)

	msg, err := runner(context.Background())
	if err != nil {
		t.Fatalf("upload job failed: %v", err)
	}
	payload := msg.(uploadResultMsg)
	if payload.filename != "notes.pdf" {
		t.Fatalf("filename should be the base name, got %q", payload.filename)
	}
	if payload.stored.Message != "indexed 3 passages" {
		t.Fatalf("server message lost, got %q", payload.stored.Message)
	}
	if len(svc.uploads) != 1 || svc.uploads[0] != "notes.pdf" {
		t.Fatalf("upload not forwarded, got %v", svc.uploads)
	}
	if svc.uploadBodies[0] != "pdf bytes" {
		t.Fatalf("file contents not streamed, got %q", svc.uploadBodies[0])
	}
}

func TestUploadJobMissingFileSettlesAsFailure(t *testing.T) {
	svc := &fakeService{}
	runner := uploadJob(svc, 1, filepath.Join(t.TempDir(), "missing.pdf"))

	msg, err := runner(context.Background())
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	payload := msg.(uploadResultMsg)
	if payload.err == nil {
		t.Fatal("payload must carry the open failure for the fold")
	}
	if payload.filename != "missing.pdf" {
		t.Fatalf("filename should survive the failure, got %q", payload.filename)
	}
	if len(svc.uploads) != 0 {
		t.Fatalf("nothing should reach the server, got %v", svc.uploads)
	}
}

func TestExportJobRoundTrip(t *testing.T) {
	log := &transcript.Log{}
	log.AppendUser("what is retrieval?")
	log.AppendAssistant("finding the passages that answer you")
	path := filepath.Join(t.TempDir(), "export", "transcript.json")

	runner := exportJob(3, path, log.Turns())
	msg, err := runner(context.Background())
	if err != nil {
		t.Fatalf("export job failed: %v", err)
	}
	payload := msg.(exportResultMsg)
	if payload.count != 2 || payload.epoch != 3 {
		t.Fatalf("unexpected payload %+v", payload)
	}

	loaded, err := transcript.Load(path)
	if err != nil {
		t.Fatalf("load exported transcript: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(loaded))
	}
	if loaded[0].Role != transcript.RoleUser || loaded[0].Content != "what is retrieval?" {
		t.Fatalf("first turn mangled: %+v", loaded[0])
	}
	if loaded[1].Role != transcript.RoleAssistant {
		t.Fatalf("second turn mangled: %+v", loaded[1])
	}
}

func TestListJobWrapsFailure(t *testing.T) {
	svc := &fakeService{listErr: &api.Error{Op: "documents", Status: 500, Detail: "index offline"}}
	runner := listJob(svc, 4)

	msg, err := runner(context.Background())
	if err == nil {
		t.Fatal("expected list failure")
	}
	payload := msg.(documentsResultMsg)
	if payload.epoch != 4 {
		t.Fatalf("epoch not carried, got %d", payload.epoch)
	}
	if api.Detail(payload.err) != "index offline" {
		t.Fatalf("detail lost, got %q", api.Detail(payload.err))
	}
}

func TestAnnounceDocumentsChanged(t *testing.T) {
	msg := announceDocumentsChanged("upload")()
	changed, ok := msg.(documentsChangedMsg)
	if !ok {
		t.Fatalf("expected documentsChangedMsg, got %T", msg)
	}
	if changed.reason != "upload" {
		t.Fatalf("reason lost, got %q", changed.reason)
	}
}
