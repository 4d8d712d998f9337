package executor

import (
	"os"
	"strings"
)

// minimalEnvAllowList is passed through verbatim when TaskSpec.MinimalEnv is
// set, on top of any variable whose name matches passthroughPrefixes, per
// spec.md §4.3's fixed allow-list.
var minimalEnvAllowList = []string{
	"PATH", "HOME", "USER", "SHELL", "TERM", "LANG", "LC_ALL", "LC_CTYPE",
	"path", "home", "user", "shell", "term", "lang", "lc_all", "lc_ctype",
	"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY",
	"AZURE_OPENAI_API_KEY", "HTTP_PROXY", "HTTPS_PROXY", "NO_PROXY",
	"openai_api_key", "anthropic_api_key", "gemini_api_key", "google_api_key",
	"azure_openai_api_key", "http_proxy", "https_proxy", "no_proxy",
	"NODE_PATH", "PYTHONPATH", "GEM_PATH", "GOPATH", "DISPLAY", "COLORTERM",
	"TERM_PROGRAM", "SSH_AUTH_SOCK", "GPG_AGENT_INFO",
}

// passthroughPrefixes are always forwarded to the child regardless of
// MinimalEnv, since every backend needs at least one of these to
// authenticate or locate its own config.
var passthroughPrefixes = []string{
	"CODEX_", "CODEAGENT_", "OPENAI_", "ANTHROPIC_", "GEMINI_", "GOOGLE_",
}

// buildEnv constructs the environment for a child process. With minimalEnv
// set, only the allow-list and prefix-matched variables survive; otherwise
// the full parent environment is inherited.
func buildEnv(minimalEnv bool) []string {
	if !minimalEnv {
		return os.Environ()
	}

	allow := make(map[string]bool, len(minimalEnvAllowList))
	for _, k := range minimalEnvAllowList {
		allow[k] = true
	}

	var env []string
	for _, kv := range os.Environ() {
		name, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if allow[name] || hasAnyPrefix(name, passthroughPrefixes) {
			env = append(env, kv)
		}
	}
	return env
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
