// Package auth sources the vendor API bearer token. The token is short-lived
// and extracted from the official client by the user, so it can arrive
// explicitly, from the environment, or from a watched file.
package auth

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// EnvToken is the environment variable holding the bearer token.
const EnvToken = "ALTERED_TOKEN"

// Normalize ensures a token carries the "Bearer " prefix the API expects.
// An empty input stays empty.
func Normalize(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if !strings.HasPrefix(token, "Bearer ") {
		return "Bearer " + token
	}
	return token
}

// TokenSource provides the current bearer token. Sources are safe for
// concurrent use.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a fixed token.
type StaticToken string

// Token returns the normalized token.
func (s StaticToken) Token() (string, error) {
	token := Normalize(string(s))
	if token == "" {
		return "", fmt.Errorf("no token configured")
	}
	return token, nil
}

// EnvSource reads the token from the environment on every call, so a token
// refreshed by an external tool is picked up without restarting.
type EnvSource struct{}

// Token returns the normalized token from the environment.
func (EnvSource) Token() (string, error) {
	token := Normalize(os.Getenv(EnvToken))
	if token == "" {
		return "", fmt.Errorf("%s is not set", EnvToken)
	}
	return token, nil
}

// Resolve picks the first available source: an explicit token, then the
// environment, then the token file (watched for changes when non-empty).
// The caller owns closing a returned FileSource.
func Resolve(explicit, tokenFile string) (TokenSource, error) {
	if strings.TrimSpace(explicit) != "" {
		return StaticToken(explicit), nil
	}

	if os.Getenv(EnvToken) != "" {
		return EnvSource{}, nil
	}

	if tokenFile != "" {
		return NewFileSource(tokenFile)
	}

	return nil, fmt.Errorf("no token available: pass one explicitly, set %s, or configure a token file", EnvToken)
}

// cachedToken guards a token value shared between the watcher goroutine and
// callers.
type cachedToken struct {
	mu    sync.RWMutex
	value string
}

func (c *cachedToken) get() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

func (c *cachedToken) set(value string) {
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()
}
