package main

import (
	"bytes"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/vincentsto199-blip/Comic/internal/catalog"
	"github.com/vincentsto199-blip/Comic/internal/library"
	"github.com/vincentsto199-blip/Comic/internal/shared"
	tu "github.com/vincentsto199-blip/Comic/internal/testing"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			client := catalog.NewClient(config.Catalog)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Catalog:    client,
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.catalog != client {
				t.Error("expected catalog to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil catalog builds one from config", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Catalog: nil,
			})

			if runner.catalog == nil {
				t.Error("expected catalog client to be built")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("services", func(t *testing.T) {
		t.Run("builds layers over provided database", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: setupTestDB(t)})

			if err := runner.services(); err != nil {
				t.Fatalf("services failed: %v", err)
			}

			if runner.library == nil {
				t.Error("expected library to be built")
			}
			if runner.auth == nil {
				t.Error("expected auth service to be built")
			}
			if runner.searches == nil {
				t.Error("expected search repository to be built")
			}
		})

		t.Run("is idempotent", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: setupTestDB(t)})

			if err := runner.services(); err != nil {
				t.Fatalf("services failed: %v", err)
			}
			built := runner.library

			if err := runner.services(); err != nil {
				t.Fatalf("second services call failed: %v", err)
			}
			if runner.library != built {
				t.Error("expected services to be cached")
			}
		})
	})

	t.Run("vote", func(t *testing.T) {
		t.Run("requires a signed-in user", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{DB: setupTestDB(t), Output: output})

			err := runner.vote("some-id", 1)
			if err != shared.ErrNotAuthenticated {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("records the vote and reports tallies", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{DB: setupTestDB(t), Output: output})

			if err := runner.services(); err != nil {
				t.Fatalf("services failed: %v", err)
			}

			user, err := runner.auth.SignUp("reader@example.com", "hunter22", "reader")
			if err != nil {
				t.Fatalf("signup failed: %v", err)
			}

			issue, err := runner.library.ResolveIssue(catalog.Issue{
				ID:          4321,
				Name:        "The Long Night",
				IssueNumber: "3",
				Volume:      &catalog.Volume{Name: "Moonbeam"},
			})
			if err != nil {
				t.Fatalf("failed to resolve issue: %v", err)
			}

			soundtrack, err := runner.library.SaveSoundtrack(library.SoundtrackInput{
				IssueID:   issue.ID(),
				Title:     "Night Reading",
				OwnerID:   user.ID(),
				OwnerName: user.DisplayName(),
				Tracks: []library.TrackInput{
					{Title: "Theme", YouTubeURL: "https://youtu.be/abc123"},
				},
			})
			if err != nil {
				t.Fatalf("failed to create soundtrack: %v", err)
			}

			if err := runner.vote(soundtrack.ID(), 1); err != nil {
				t.Fatalf("vote failed: %v", err)
			}

			result := output.String()
			if !strings.Contains(result, "+1") {
				t.Errorf("expected updated score in output, got %q", result)
			}
			if !strings.Contains(result, "1 up, 0 down") {
				t.Errorf("expected tally breakdown in output, got %q", result)
			}
		})
	})
}

func TestParseTrackInputs(t *testing.T) {
	t.Run("parses title and URL", func(t *testing.T) {
		tracks, err := parseTrackInputs([]string{"Theme|https://youtu.be/abc123"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 1 {
			t.Fatalf("expected 1 track, got %d", len(tracks))
		}
		if tracks[0].Title != "Theme" || tracks[0].YouTubeURL != "https://youtu.be/abc123" {
			t.Errorf("unexpected track: %+v", tracks[0])
		}
		if tracks[0].PageStart != nil || tracks[0].PageEnd != nil {
			t.Error("expected no page range")
		}
	})

	t.Run("parses page range", func(t *testing.T) {
		tracks, err := parseTrackInputs([]string{"Theme|https://youtu.be/abc123|3-9"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tracks[0].PageStart == nil || *tracks[0].PageStart != 3 {
			t.Errorf("expected start page 3, got %v", tracks[0].PageStart)
		}
		if tracks[0].PageEnd == nil || *tracks[0].PageEnd != 9 {
			t.Errorf("expected end page 9, got %v", tracks[0].PageEnd)
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		for _, value := range []string{
			"just a title",
			"a|b|c|d",
			"Theme|url|nine-ten",
			"Theme|url|9-3",
			"Theme|url|0-4",
		} {
			if _, err := parseTrackInputs([]string{value}); err == nil {
				t.Errorf("expected error for %q", value)
			}
		}
	})

	t.Run("empty input yields no tracks", func(t *testing.T) {
		tracks, err := parseTrackInputs(nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 0 {
			t.Errorf("expected no tracks, got %d", len(tracks))
		}
	})
}
