package e2e

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smokeToken = "smoke-token"

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	var statsCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
			_, _ = fmt.Fprintf(w, `{"token":%q,"user":{"_id":"u-1","name":"Jean Habimana","email":"jean@coop.rw","role":"producer"}}`, smokeToken)
		case r.Header.Get("Authorization") != "Bearer "+smokeToken:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = fmt.Fprint(w, `{"message":"Not authorized, no token"}`)
		case r.URL.Path == "/api/dashboard/stats":
			// First call fails so the binary has to retry.
			if statsCalls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = fmt.Fprint(w, `{"stats":{"totalUsers":12,"totalWaste":40,"totalFuelProduced":9}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	env := []string{
		"HOME=" + home,
		"EFC_API_URL=" + server.URL + "/api",
		"EFC_MODE=production",
		"EFC_SECRETS_BACKEND=file",
		"EFC_RETRY_BASE_DELAY=1ms",
		"EFC_LOG_LEVEL=error",
	}

	_, stderr, err := runEFC(t, binaryPath, env, "login", "--email", "jean@coop.rw", "--password", "pw")
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err := runEFC(t, binaryPath, env, "--json", "dashboard")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, `"totalUsers": 12`)
	assert.Equal(t, int32(2), statsCalls.Load())

	_, stderr, err = runEFC(t, binaryPath, env, "logout")
	require.NoError(t, err, "stderr: %s", stderr)

	_, stderr, err = runEFC(t, binaryPath, env, "dashboard")
	require.Error(t, err)
	assert.Contains(t, stderr, "efc login")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "efc-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/efc")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build efc binary: %s", string(output))
	return binaryPath
}

func runEFC(t *testing.T, binaryPath string, env []string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(withoutEFC(os.Environ()), env...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func withoutEFC(environ []string) []string {
	kept := make([]string, 0, len(environ))
	for _, kv := range environ {
		if strings.HasPrefix(kv, "EFC_") || strings.HasPrefix(kv, "HOME=") {
			continue
		}
		kept = append(kept, kv)
	}
	return kept
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
