// Package auth implements optional OIDC single sign-on for the admin
// console. Local email/password login lives in the handlers; this package
// only talks to the identity provider.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/trinexa/trinexa-web/internal/config"
)

// OIDCProvider runs the authorization code flow against one issuer.
type OIDCProvider struct {
	config   *config.OIDCConfig
	provider *oidc.Provider
	oauth2   oauth2.Config
	verifier *oidc.IDTokenVerifier

	mu     sync.RWMutex
	states map[string]struct{}
}

// NewOIDCProvider discovers the issuer and prepares the flow. Returns nil
// without error when OIDC is disabled.
func NewOIDCProvider(ctx context.Context, cfg *config.OIDCConfig) (*OIDCProvider, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("create OIDC provider: %w", err)
	}

	oauth2Config := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       cfg.Scopes,
	}

	return &OIDCProvider{
		config:   cfg,
		provider: provider,
		oauth2:   oauth2Config,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		states:   make(map[string]struct{}),
	}, nil
}

// AuthCodeURL generates the authorization URL with a fresh random state.
func (p *OIDCProvider) AuthCodeURL() (string, string, error) {
	state, err := generateState()
	if err != nil {
		return "", "", err
	}

	p.mu.Lock()
	p.states[state] = struct{}{}
	p.mu.Unlock()

	return p.oauth2.AuthCodeURL(state), state, nil
}

// UserInfo is the identity extracted from a verified ID token.
type UserInfo struct {
	Email string
	Name  string
}

// Exchange trades the authorization code for a verified identity. The
// state is single-use.
func (p *OIDCProvider) Exchange(ctx context.Context, state, code string) (*UserInfo, error) {
	p.mu.Lock()
	_, valid := p.states[state]
	if valid {
		delete(p.states, state)
	}
	p.mu.Unlock()

	if !valid {
		return nil, fmt.Errorf("invalid state")
	}

	token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("no id_token in response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("id_token has no email claim")
	}

	return &UserInfo{Email: claims.Email, Name: claims.Name}, nil
}

// IsAdminEmail reports whether the email's domain is on the configured
// admin domain list. With no list configured, SSO users get the admin
// role (the console is admin-only in that setup).
func (p *OIDCProvider) IsAdminEmail(email string) bool {
	if len(p.config.AdminDomains) == 0 {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range p.config.AdminDomains {
		if strings.ToLower(d) == domain {
			return true
		}
	}
	return false
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
