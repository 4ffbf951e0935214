package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morozRed/bit/internal/config"
	"github.com/morozRed/bit/internal/ignore"
	"github.com/morozRed/bit/internal/report"
	"github.com/morozRed/bit/internal/server"
	"github.com/morozRed/bit/internal/symbols"
	"github.com/morozRed/bit/internal/vcs/vcstest"
)

func newModifiedRepo(t *testing.T) *vcstest.Repo {
	t.Helper()
	repo := vcstest.NewRepo(t)
	repo.Write("app.py", `def keep():
    return 1


def change():
    return 1


def drop():
    return 1
`)
	repo.Write("svc/handler.go", `package svc

func Handle() int { return 1 }
`)
	repo.Commit("init")

	repo.Write("app.py", `def keep():
    # comment only
    return   1


def change():
    return 2


def fresh():
    return 1
`)
	repo.Write("svc/handler.go", `package svc

func Handle() int { return 2 }
`)
	return repo
}

func TestAnalyzeTextOutput(t *testing.T) {
	repo := newModifiedRepo(t)

	withWorkingDir(t, repo.Root, func() {
		cmd := newAnalyzeCmdForTest()
		var runErr error
		out := captureStdout(t, func() {
			runErr = RunAnalyze(cmd, nil)
		})
		require.NoError(t, runErr)
		assert.Equal(t, "app.py :: change()\n", out)
	})
}

func TestAnalyzeDetailsAndLanguageOverride(t *testing.T) {
	repo := newModifiedRepo(t)

	withWorkingDir(t, repo.Root, func() {
		cmd := newAnalyzeCmdForTest()
		mustSetFlag(t, cmd, "lang", "py,go")
		mustSetFlag(t, cmd, "details", "true")
		var runErr error
		out := captureStdout(t, func() {
			runErr = RunAnalyze(cmd, nil)
		})
		require.NoError(t, runErr)
		for _, expected := range []string{
			"app.py :: change()",
			"svc/handler.go :: Handle()",
			"+ fresh()",
			"- drop()",
			"~ change()",
			"1 unchanged",
		} {
			assert.Contains(t, out, expected)
		}
	})
}

func TestAnalyzeReportsFilesWithoutModifiedFunctions(t *testing.T) {
	repo := vcstest.NewRepo(t)
	repo.Write("app.py", "def a():\n    return 1\n")
	repo.Commit("init")
	repo.Write("app.py", "def a():\n    # reformatted\n    return   1\n")

	withWorkingDir(t, repo.Root, func() {
		cmd := newAnalyzeCmdForTest()
		var stderr bytes.Buffer
		cmd.SetErr(&stderr)
		var runErr error
		out := captureStdout(t, func() {
			runErr = RunAnalyze(cmd, nil)
		})
		require.NoError(t, runErr)
		assert.Empty(t, out)
		assert.Contains(t, stderr.String(), "No modified functions in 1 file(s).")
	})
}

func TestAnalyzeJSONUsesConfigFile(t *testing.T) {
	repo := newModifiedRepo(t)
	repo.Write(config.FileName, "languages: [go]\n")

	withWorkingDir(t, repo.Root, func() {
		cmd := newAnalyzeCmdForTest()
		mustSetFlag(t, cmd, "format", "json")
		var runErr error
		out := captureStdout(t, func() {
			runErr = RunAnalyze(cmd, nil)
		})
		require.NoError(t, runErr)

		var payload struct {
			Ref       string   `json:"ref"`
			Functions []string `json:"functions"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &payload), out)
		assert.Equal(t, "HEAD", payload.Ref)
		assert.Equal(t, []string{"svc/handler.go :: Handle()"}, payload.Functions)
	})
}

func TestAnalyzeUnknownRefFails(t *testing.T) {
	repo := newModifiedRepo(t)

	withWorkingDir(t, repo.Root, func() {
		cmd := newAnalyzeCmdForTest()
		mustSetFlag(t, cmd, "ref", "no-such-ref")
		var runErr error
		captureStdout(t, func() {
			runErr = RunAnalyze(cmd, nil)
		})
		require.Error(t, runErr)
		assert.Contains(t, runErr.Error(), "unknown reference")
	})
}

func TestAnalyzeOutsideRepositoryFails(t *testing.T) {
	vcstest.RequireGit(t)
	root := t.TempDir()

	withWorkingDir(t, root, func() {
		err := RunAnalyze(newAnalyzeCmdForTest(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not inside a git repository")
	})
}

func TestWatchPrintsInitialReport(t *testing.T) {
	repo := newModifiedRepo(t)

	withWorkingDir(t, repo.Root, func() {
		cmd := newWatchCmdForTest()
		mustSetFlag(t, cmd, "format", "jsonl")
		mustSetFlag(t, cmd, "lang", "py,go")
		mustSetFlag(t, cmd, "workers", "2")
		out := &syncBuffer{}
		cmd.SetOut(out)
		cmd.SetErr(io.Discard)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		cmd.SetContext(ctx)

		done := make(chan error, 1)
		go func() {
			done <- RunWatch(cmd, nil)
		}()

		require.Eventually(t, func() bool {
			return strings.Count(out.String(), "\n") >= 2
		}, 10*time.Second, 20*time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("watch did not stop after cancellation")
		}

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		assert.Equal(t, []string{
			`{"file":"app.py","function":"change"}`,
			`{"file":"svc/handler.go","function":"Handle"}`,
		}, lines)
	})
}

func TestWatchFailsOnUnknownRef(t *testing.T) {
	repo := newModifiedRepo(t)

	withWorkingDir(t, repo.Root, func() {
		cmd := newWatchCmdForTest()
		mustSetFlag(t, cmd, "ref", "no-such-ref")
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)

		err := RunWatch(cmd, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown reference")
	})
}

func TestServeUsesConfigDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newModifiedRepo(t)
	repo.Write(config.FileName, "baseline: no-such-ref\nserver:\n  addr: 127.0.0.1:9911\n")

	withWorkingDir(t, repo.Root, func() {
		cmd := newServeCmdForTest()
		cmd.SetErr(io.Discard)

		srv, addr, err := newServer(context.Background(), cmd, "test")
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9911", addr)

		w := serveGet(srv, "/api/symbols")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "no-such-ref")
	})
}

func TestServeFlagsOverrideConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newModifiedRepo(t)
	repo.Git("tag", "base")
	repo.Write(config.FileName, "baseline: no-such-ref\nserver:\n  addr: 127.0.0.1:9911\n")

	withWorkingDir(t, repo.Root, func() {
		cmd := newServeCmdForTest()
		cmd.SetErr(io.Discard)
		mustSetFlag(t, cmd, "addr", "127.0.0.1:9922")
		mustSetFlag(t, cmd, "ref", "base")
		mustSetFlag(t, cmd, "lang", "py,go")
		mustSetFlag(t, cmd, "workers", "2")

		srv, addr, err := newServer(context.Background(), cmd, "test")
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9922", addr)

		w := serveGet(srv, "/api/symbols")
		require.Equal(t, http.StatusOK, w.Code)
		var payload struct {
			Ref       string   `json:"ref"`
			Functions []string `json:"functions"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		assert.Equal(t, "base", payload.Ref)
		assert.Equal(t, []string{"app.py :: change()", "svc/handler.go :: Handle()"}, payload.Functions)

		w = serveGet(srv, "/api/diff?file=app.py")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"ref":"base"`)

		w = serveGet(srv, "/api/history")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"msg":"init"`)

		w = serveGet(srv, "/healthz")
		assert.JSONEq(t, `{"status":"ok","version":"test"}`, w.Body.String())
	})
}

func TestServeRejectsNegativeWorkers(t *testing.T) {
	repo := newModifiedRepo(t)

	withWorkingDir(t, repo.Root, func() {
		cmd := newServeCmdForTest()
		cmd.SetErr(io.Discard)
		mustSetFlag(t, cmd, "workers", "-1")

		_, _, err := newServer(context.Background(), cmd, "test")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--workers")
	})
}

func TestStatusJSONListsCandidates(t *testing.T) {
	repo := newModifiedRepo(t)

	withWorkingDir(t, repo.Root, func() {
		cmd := newStatusCmdForTest()
		mustSetFlag(t, cmd, "json", "true")
		var runErr error
		out := captureStdout(t, func() {
			runErr = RunStatus(cmd, nil)
		})
		require.NoError(t, runErr)

		var summary StatusSummary
		require.NoError(t, json.Unmarshal([]byte(out), &summary))
		assert.Equal(t, 1, summary.Candidates)
		require.Len(t, summary.Files, 1)
		assert.Equal(t, "app.py", summary.Files[0].Path)
	})
}

func TestInitWritesDefaultsIdempotently(t *testing.T) {
	repo := vcstest.NewRepo(t)

	withWorkingDir(t, repo.Root, func() {
		first := captureStdout(t, func() {
			require.NoError(t, RunInit(&cobra.Command{}, nil))
		})
		assert.Contains(t, first, "Created")
		assertExists(t, filepath.Join(repo.Root, config.FileName))
		assertExists(t, filepath.Join(repo.Root, ignore.FileName))

		cfg, err := config.Load(repo.Root)
		require.NoError(t, err, "generated config does not load")
		assert.Equal(t, config.DefaultBaseline, cfg.Baseline)

		second := captureStdout(t, func() {
			require.NoError(t, RunInit(&cobra.Command{}, nil))
		})
		assert.NotContains(t, second, "Created")
	})
}

func TestInstallHookWritesBlockOnce(t *testing.T) {
	repo := vcstest.NewRepo(t)
	hookPath := filepath.Join(repo.Root, ".git", "hooks", "pre-commit")
	mustWriteFile(t, hookPath, "#!/bin/sh\necho custom\n")

	withWorkingDir(t, repo.Root, func() {
		for i := 0; i < 2; i++ {
			captureStdout(t, func() {
				require.NoError(t, RunInstallHook(&cobra.Command{}, nil))
			})
		}
	})

	data, err := os.ReadFile(hookPath)
	require.NoError(t, err)
	hook := string(data)
	assert.Equal(t, 1, strings.Count(hook, HookStart), hook)
	assert.Contains(t, hook, "echo custom")
	assert.Contains(t, hook, "bit analyze")
}

func TestDoctorReportsHealthyRepository(t *testing.T) {
	repo := vcstest.NewRepo(t)
	repo.Write("app.py", "def a():\n    return 1\n")
	repo.Commit("init")

	withWorkingDir(t, repo.Root, func() {
		cmd := newDoctorCmdForTest()
		mustSetFlag(t, cmd, "json", "true")
		var runErr error
		out := captureStdout(t, func() {
			runErr = RunDoctor(cmd, nil)
		})
		require.NoError(t, runErr)

		var summary DoctorSummary
		require.NoError(t, json.Unmarshal([]byte(out), &summary))
		assert.True(t, summary.Healthy, "%+v", summary)
		assert.True(t, summary.Grammars["python"].Enabled)
		assert.False(t, summary.Grammars["go"].Enabled)
		assert.False(t, summary.ConfigFile)
	})
}

func TestDoctorFlagsMissingBaseline(t *testing.T) {
	repo := vcstest.NewRepo(t)

	withWorkingDir(t, repo.Root, func() {
		cmd := newDoctorCmdForTest()
		var runErr error
		out := captureStdout(t, func() {
			runErr = RunDoctor(cmd, nil)
		})
		require.NoError(t, runErr)
		assert.Contains(t, out, "doctor: issues")
		assert.Contains(t, out, "baseline HEAD")
	})
}

func TestParseLanguageFilter(t *testing.T) {
	cmd := newAnalyzeCmdForTest()
	mustSetFlag(t, cmd, "lang", "PY,rb,python")
	langs, err := ParseLanguageFilter(cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "ruby"}, langs)

	bad := newAnalyzeCmdForTest()
	mustSetFlag(t, bad, "lang", "cobol")
	_, err = ParseLanguageFilter(bad)
	assert.Error(t, err)
}

func TestPrintDetailsMarksFilesWithoutStructuralChanges(t *testing.T) {
	r := &report.Report{
		Ref: "HEAD",
		Files: []report.FileResult{
			{Path: "a.py", Changes: symbols.ChangeSet{Unchanged: []string{"f", "g"}}},
			{Path: "b.py", Changes: symbols.ChangeSet{Added: []string{"h"}}, BaselineMissing: true},
		},
	}
	var buf bytes.Buffer
	PrintDetails(&buf, r)

	out := buf.String()
	assert.Contains(t, out, "no structural changes")
	assert.Contains(t, out, "2 unchanged")
	assert.Contains(t, out, "(new at HEAD)")
	assert.Contains(t, out, "+ h()")
	assert.Equal(t, 1, strings.Count(out, "no structural changes"))
}

func newAnalyzeCmdForTest() *cobra.Command {
	cmd := &cobra.Command{}
	addAnalysisFlags(cmd)
	cmd.Flags().String("format", "text", "")
	cmd.Flags().Bool("details", false, "")
	cmd.Flags().Int("workers", 0, "")
	return cmd
}

func newWatchCmdForTest() *cobra.Command {
	cmd := &cobra.Command{}
	addAnalysisFlags(cmd)
	cmd.Flags().String("format", "text", "")
	cmd.Flags().Int("workers", 0, "")
	return cmd
}

func newServeCmdForTest() *cobra.Command {
	cmd := &cobra.Command{}
	addAnalysisFlags(cmd)
	cmd.Flags().String("addr", "", "")
	cmd.Flags().Int("workers", 0, "")
	return cmd
}

func newStatusCmdForTest() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().StringSlice("lang", []string{}, "")
	cmd.Flags().Bool("json", false, "")
	return cmd
}

func newDoctorCmdForTest() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().Bool("json", false, "")
	return cmd
}

func serveGet(srv *server.Server, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

// syncBuffer is a bytes.Buffer safe for one writer and one polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func withWorkingDir(t *testing.T, dir string, fn func()) {
	t.Helper()

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	fn()
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	assert.NoError(t, err, "expected %s to exist", path)
}

func mustSetFlag(t *testing.T, cmd *cobra.Command, key, value string) {
	t.Helper()
	require.NoError(t, cmd.Flags().Set(key, value), "failed to set --%s=%s", key, value)
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	original := os.Stdout
	reader, writer, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = writer
	defer func() {
		os.Stdout = original
		_ = writer.Close()
		_ = reader.Close()
	}()

	fn()

	require.NoError(t, writer.Close())
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	return string(data)
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
