package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"carteira/internal/domain/impact"
	"carteira/internal/domain/transaction"
)

func newTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("CARTEIRA_HOME", home)
	return home
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("carteira %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func idAfter(t *testing.T, out, marker string) string {
	t.Helper()
	_, rest, ok := strings.Cut(out, marker)
	if !ok {
		t.Fatalf("%q not found in output %q", marker, out)
	}
	id, _, _ := strings.Cut(rest, "\n")
	return strings.TrimSpace(id)
}

func TestScheduleCommand(t *testing.T) {
	newTestHome(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
		wantErr  bool
	}{
		{
			name:     "Even Split",
			args:     []string{"schedule", "100.00", "3", "2024-11"},
			contains: []string{"2024-11         33.34", "2024-12         33.33", "2025-01         33.33", "100.00"},
		},
		{
			name:     "Override Raises Total",
			args:     []string{"schedule", "100.00", "3", "2024-11", "--set", "1=40.00"},
			contains: []string{"40.00 *", "106.66"},
		},
		{name: "Zero Count", args: []string{"schedule", "100.00", "0", "2024-11"}, wantErr: true},
		{name: "Bad Month", args: []string{"schedule", "100.00", "2", "2024-13"}, wantErr: true},
		{name: "Too Precise", args: []string{"schedule", "1.001", "2", "2024-01"}, wantErr: true},
		{name: "Override Out Of Range", args: []string{"schedule", "10", "2", "2024-01", "--set", "3=1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestInitCommand(t *testing.T) {
	home := newTestHome(t)

	mustRun(t, "init")

	cfg, err := LoadConfig(filepath.Join(home, "config.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if _, err := uuid.Parse(cfg.UserID); err != nil {
		t.Errorf("user_id %q is not a UUID", cfg.UserID)
	}
	if cfg.DatabasePath != filepath.Join(home, "carteira.db") {
		t.Errorf("database_path = %q", cfg.DatabasePath)
	}

	if _, err := run(t, "init"); err == nil {
		t.Error("second init should refuse to overwrite")
	}

	mustRun(t, "init", "--force")
	again, _ := LoadConfig(filepath.Join(home, "config.toml"))
	if again.UserID == cfg.UserID {
		t.Error("init --force kept the old user id")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	home := newTestHome(t)

	cfg, err := LoadConfig(filepath.Join(home, "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	home := newTestHome(t)
	path := filepath.Join(home, "config.toml")
	if err := os.WriteFile(path, []byte("database_path = ["), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestCommandsRequireUser(t *testing.T) {
	newTestHome(t)

	_, err := run(t, "account", "list")
	if err == nil || !strings.Contains(err.Error(), "no user configured") {
		t.Errorf("error = %v", err)
	}
}

func TestEndToEnd(t *testing.T) {
	newTestHome(t)
	mustRun(t, "init")

	out := mustRun(t, "account", "list")
	if !strings.Contains(out, "No accounts yet.") {
		t.Errorf("unexpected empty listing %q", out)
	}

	chk := idAfter(t, mustRun(t, "account", "add", "Conta", "--kind", "CHECKING", "--balance", "50"), "created: ")
	card := idAfter(t, mustRun(t, "account", "add", "Visa", "--kind", "CREDIT_CARD", "--limit", "1000"), "created: ")

	// Checking overdraft needs --yes.
	_, err := run(t, "tx", "add", "--kind", "EXPENSE", "--amount", "80", "--from", chk, "--method", "CHECKING", "--date", "2024-03-10")
	if !errors.Is(err, impact.ErrNegativeBalanceWarning) {
		t.Fatalf("error = %v, want negative balance warning", err)
	}
	mustRun(t, "tx", "add", "--kind", "EXPENSE", "--amount", "80", "--from", chk, "--method", "CHECKING", "--date", "2024-03-10", "--yes")

	out = mustRun(t, "tx", "add", "--kind", "EXPENSE", "--amount", "100", "--from", card,
		"--method", "CREDIT_CARD", "--installments", "3", "--first-month", "2024-11", "--description", "Fone")
	purchase := idAfter(t, out, "Recorded ")
	if !strings.Contains(out, "R$ 900,00") {
		t.Errorf("expected remaining limit in output %q", out)
	}

	out = mustRun(t, "account", "list")
	for _, want := range []string{"-R$ 30,00", "R$ 100,00", "R$ 900,00"} {
		if !strings.Contains(out, want) {
			t.Errorf("account list missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "tx", "show", purchase)
	for _, want := range []string{"in 3x", "33.34", "2025-01", "Fone"} {
		if !strings.Contains(out, want) {
			t.Errorf("tx show missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "impact", card, "900.01")
	if !strings.Contains(out, "HARD_BLOCK") {
		t.Errorf("impact output %q", out)
	}
	out = mustRun(t, "impact", card, "1000", "--exclude", purchase)
	if !strings.Contains(out, "PROCEED") {
		t.Errorf("impact with exclusion %q", out)
	}

	mustRun(t, "tx", "rm", purchase)
	if _, err := run(t, "tx", "show", purchase); !errors.Is(err, transaction.ErrTransactionNotFound) {
		t.Errorf("show after rm: %v", err)
	}

	mustRun(t, "account", "disable", chk)
	out = mustRun(t, "account", "list")
	if strings.Contains(out, chk) {
		t.Errorf("disabled account still listed:\n%s", out)
	}
}
