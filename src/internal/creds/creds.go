// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package creds resolves caller identities to issue-tracker API credentials.
//
// Resolution happens per call and always reads the current configured mapping,
// so credential rotation takes effect without a restart. There is no fallback
// identity: a caller either has a configured token or the call fails with a
// typed error.
package creds

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted by EnvResolver, in order.
const (
	// EnvCredentials holds a multi-tenant mapping of the form
	// "email:token[,email:token...]".
	EnvCredentials = "JIRA_CREDENTIALS"
	// EnvEmail and EnvAPIToken hold a single-identity credential pair.
	EnvEmail    = "JIRA_EMAIL"
	EnvAPIToken = "JIRA_API_TOKEN"
)

// ErrNotConfigured indicates that no credential source is available at all.
var ErrNotConfigured = errors.New("creds: no credential source configured")

// ErrNotFound indicates that a credential source exists but contains no entry
// for the requested caller.
var ErrNotFound = errors.New("creds: no credential for caller")

// Credential pairs a caller email with its backend API token.
type Credential struct {
	Email string
	Token string
}

// Resolver maps a caller identity (email) to backend credentials.
//
// Implementations must not cache resolutions across calls: each Resolve reads
// the current mapping so hot credential updates are honored.
type Resolver interface {
	Resolve(email string) (Credential, error)
}

// EnvResolver resolves credentials from the process environment on every call.
//
// Two sources are supported: JIRA_CREDENTIALS with a comma-separated list of
// email:token pairs, and the single pair JIRA_EMAIL/JIRA_API_TOKEN. The list
// takes precedence; the single pair only matches its own email.
type EnvResolver struct{}

// NewEnvResolver creates a resolver backed by the process environment.
func NewEnvResolver() *EnvResolver { return &EnvResolver{} }

// Resolve looks up the API token for the given caller email.
//
// Returns ErrNotConfigured when neither JIRA_CREDENTIALS nor the
// JIRA_EMAIL/JIRA_API_TOKEN pair is set, and ErrNotFound when sources exist
// but none matches the caller. Lookup is exact-match on the email.
func (r *EnvResolver) Resolve(email string) (Credential, error) {
	list := os.Getenv(EnvCredentials)
	singleEmail := os.Getenv(EnvEmail)
	singleToken := os.Getenv(EnvAPIToken)

	if list == "" && (singleEmail == "" || singleToken == "") {
		return Credential{}, ErrNotConfigured
	}

	if list != "" {
		for _, pair := range strings.Split(list, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			e, t, ok := strings.Cut(pair, ":")
			if !ok {
				// Malformed entries are skipped rather than failing the whole
				// mapping; a later entry may still match.
				continue
			}
			if strings.TrimSpace(e) == email {
				return Credential{Email: email, Token: strings.TrimSpace(t)}, nil
			}
		}
	}

	if singleEmail == email && singleToken != "" {
		return Credential{Email: email, Token: singleToken}, nil
	}

	return Credential{}, fmt.Errorf("%w: %s", ErrNotFound, email)
}
