package toolchain

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func stubChecker(tools map[string]string) (*Checker, *bytes.Buffer) {
	var out bytes.Buffer
	return &Checker{
		Out: &out,
		LookPath: func(name string) (string, error) {
			if _, ok := tools[name]; !ok {
				return "", errors.New("not found")
			}
			return "/usr/bin/" + name, nil
		},
		Version: func(_ context.Context, name string) (string, error) {
			versionOut, ok := tools[name]
			if !ok || versionOut == "" {
				return "", errors.New("exit status 1")
			}
			return versionOut, nil
		},
	}, &out
}

func TestCheckOK(t *testing.T) {
	c, out := stubChecker(map[string]string{
		"cmake": "cmake version 3.28.1\n\nCMake suite maintained by Kitware.\n",
		"gcc":   "gcc (GCC) 13.2.0\n",
	})

	if err := c.Check(context.Background()); err != nil {
		t.Fatalf("Check() = %v, want nil", err)
	}
	if !strings.Contains(out.String(), "3.28.1") {
		t.Errorf("diagnostics missing cmake version: %q", out.String())
	}
	if !strings.Contains(out.String(), "gcc") {
		t.Errorf("diagnostics missing compiler: %q", out.String())
	}
}

func TestCheckCMakeMissing(t *testing.T) {
	c, _ := stubChecker(map[string]string{"gcc": "gcc 13\n"})

	if err := c.Check(context.Background()); !errors.Is(err, ErrCMakeNotFound) {
		t.Fatalf("Check() = %v, want ErrCMakeNotFound", err)
	}
}

func TestCheckCMakeVersionQueryFails(t *testing.T) {
	c, _ := stubChecker(map[string]string{"cmake": "", "gcc": "gcc 13\n"})

	if err := c.Check(context.Background()); !errors.Is(err, ErrCMakeVersionUnknown) {
		t.Fatalf("Check() = %v, want ErrCMakeVersionUnknown", err)
	}
}

func TestCheckCMakeVersionUnparseable(t *testing.T) {
	c, _ := stubChecker(map[string]string{
		"cmake": "something entirely unexpected",
		"gcc":   "gcc 13\n",
	})

	if err := c.Check(context.Background()); !errors.Is(err, ErrCMakeVersionUnknown) {
		t.Fatalf("Check() = %v, want ErrCMakeVersionUnknown", err)
	}
}

func TestCheckCMakeTooOld(t *testing.T) {
	c, _ := stubChecker(map[string]string{
		"cmake": "cmake version 3.24.4\n",
		"gcc":   "gcc 13\n",
	})

	err := c.Check(context.Background())
	var tooOld *VersionTooOldError
	if !errors.As(err, &tooOld) {
		t.Fatalf("Check() = %v, want VersionTooOldError", err)
	}
	if tooOld.Found != "3.24.4" {
		t.Errorf("Found = %q, want 3.24.4", tooOld.Found)
	}
}

func TestCheckMinimumVersionAccepted(t *testing.T) {
	c, _ := stubChecker(map[string]string{
		"cmake": "cmake version 3.25.0\n",
		"cc":    "cc 1.0\n",
	})

	if err := c.Check(context.Background()); err != nil {
		t.Fatalf("Check() = %v, want nil", err)
	}
}

func TestCheckNoCompiler(t *testing.T) {
	c, _ := stubChecker(map[string]string{"cmake": "cmake version 3.30.0\n"})

	if err := c.Check(context.Background()); !errors.Is(err, ErrNoCompiler) {
		t.Fatalf("Check() = %v, want ErrNoCompiler", err)
	}
}

func TestCheckCompilerFallback(t *testing.T) {
	// gcc is on the path but its version query fails; clang answers.
	tools := map[string]string{
		"cmake": "cmake version 3.27.9\n",
		"gcc":   "",
		"clang": "clang version 17.0.6\n",
	}
	c, out := stubChecker(tools)

	if err := c.Check(context.Background()); err != nil {
		t.Fatalf("Check() = %v, want nil", err)
	}
	if !strings.Contains(out.String(), "clang") {
		t.Errorf("diagnostics missing fallback compiler: %q", out.String())
	}
}

func TestParseCMakeVersion(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    string
		wantErr bool
	}{
		{"release", "cmake version 3.31.2\n", "3.31.2", false},
		{"two part", "cmake version 3.25\n", "3.25", false},
		{"rc", "cmake version 3.28.0-rc2\n", "3.28.0-rc2", false},
		{"short line", "cmake\n", "", true},
		{"garbage token", "cmake version banana\n", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCMakeVersion(tt.out)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseCMakeVersion(%q) = %q, want error", tt.out, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCMakeVersion(%q) error: %v", tt.out, err)
			}
			if got != tt.want {
				t.Errorf("parseCMakeVersion(%q) = %q, want %q", tt.out, got, tt.want)
			}
		})
	}
}
