package download_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/adamwoolhether/wirehttp/conn"
	"github.com/adamwoolhether/wirehttp/download"
	"github.com/adamwoolhether/wirehttp/wire"
)

type stream struct {
	reply []byte
}

func (s *stream) Read(p []byte) (int, error) {
	if len(s.reply) == 0 {
		return 0, io.EOF
	}
	n := copy(p, s.reply)
	s.reply = s.reply[n:]
	return n, nil
}

func (s *stream) Write(p []byte) (int, error) {
	return len(p), nil
}

func newResponse(t *testing.T, reply string) *wire.Response {
	t.Helper()

	resp, err := wire.ReadResponse(conn.New(&stream{reply: []byte(reply)}), wire.GET, make([]byte, 1024))
	if err != nil {
		t.Fatalf("parsing scripted response: %v", err)
	}

	return resp
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// assertNoTempFiles fails the test when a temp download file was left
// behind in dir.
func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()

	leftovers, err := filepath.Glob(filepath.Join(dir, ".wirehttp-dl-*"))
	if err != nil {
		t.Fatalf("globbing temp files: %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestSave_WritesBodyToDisk(t *testing.T) {
	const body = "hello, disk"
	resp := newResponse(t, "HTTP/1.1 200 OK\r\nContent-Length: 11\r\n\r\n"+body)

	dir := t.TempDir()
	dest := filepath.Join(dir, "artifact.bin")

	if err := download.Save(context.Background(), resp, dest, discardLogger()); err != nil {
		t.Fatalf("saving: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(got) != body {
		t.Errorf("saved contents = %q, want %q", got, body)
	}
	assertNoTempFiles(t, dir)
}

func TestSave_ChecksumVerified(t *testing.T) {
	const body = "checksummed payload"
	sum := sha256.Sum256([]byte(body))
	reply := "HTTP/1.1 200 OK\r\nContent-Length: 19\r\n\r\n" + body

	t.Run("match", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "out")
		err := download.Save(context.Background(), newResponse(t, reply), dest, discardLogger(),
			download.WithChecksum(sha256.New(), hex.EncodeToString(sum[:])))
		if err != nil {
			t.Fatalf("saving: %v", err)
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		dir := t.TempDir()
		dest := filepath.Join(dir, "out")
		err := download.Save(context.Background(), newResponse(t, reply), dest, discardLogger(),
			download.WithChecksum(sha256.New(), "deadbeef"))
		if !errors.Is(err, download.ErrChecksumMismatch) {
			t.Fatalf("err = %v, want ErrChecksumMismatch", err)
		}

		// A failed verification must not install the file.
		if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
			t.Error("destination exists after checksum mismatch")
		}
		assertNoTempFiles(t, dir)
	})
}

func TestSave_TruncatedBodyCleansUp(t *testing.T) {
	// Declared length exceeds what the transport delivers.
	resp := newResponse(t, "HTTP/1.1 200 OK\r\nContent-Length: 100\r\n\r\nshort")

	dir := t.TempDir()
	dest := filepath.Join(dir, "out")

	err := download.Save(context.Background(), resp, dest, discardLogger())
	if err == nil {
		t.Fatal("Save succeeded on truncated body")
	}
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Error("destination exists after failed save")
	}
	assertNoTempFiles(t, dir)
}

func TestSave_SkipExisting(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")
	if err := os.WriteFile(dest, []byte("original"), 0o644); err != nil {
		t.Fatalf("seeding destination: %v", err)
	}

	resp := newResponse(t, "HTTP/1.1 200 OK\r\nContent-Length: 3\r\n\r\nnew")
	err := download.Save(context.Background(), resp, dest, discardLogger(), download.WithSkipExisting())
	if err != nil {
		t.Fatalf("saving: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading destination: %v", err)
	}
	if string(got) != "original" {
		t.Errorf("destination overwritten: %q", got)
	}
}

func TestSave_Cancelled(t *testing.T) {
	resp := newResponse(t, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	err := download.Save(ctx, resp, filepath.Join(dir, "out"), discardLogger())
	if !errors.Is(err, download.ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	assertNoTempFiles(t, dir)
}

func TestSave_WithProgressLogs(t *testing.T) {
	resp := newResponse(t, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello")

	dest := filepath.Join(t.TempDir(), "out")
	err := download.Save(context.Background(), resp, dest, discardLogger(), download.WithProgress())
	if err != nil {
		t.Fatalf("saving with progress: %v", err)
	}
}

func TestWithChecksum_Validation(t *testing.T) {
	resp := newResponse(t, "HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n")
	dest := filepath.Join(t.TempDir(), "out")

	if err := download.Save(context.Background(), resp, dest, discardLogger(), download.WithChecksum(nil, "abc")); err == nil {
		t.Error("nil hash accepted")
	}
	if err := download.Save(context.Background(), resp, dest, discardLogger(), download.WithChecksum(sha256.New(), "")); err == nil {
		t.Error("empty expected checksum accepted")
	}
}
