package oidc

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/benvon/smart-connections/internal/models"
)

// Client wraps the OAuth2 authorization code flow for a provider
type Client struct {
	config *oauth2.Config
}

// NewClient creates an OAuth2 client. Endpoints come from discovery when available, otherwise from the issuer.
func NewClient(oidcConfig *models.OIDCConfig, discovery *Discovery) *Client {
	clientSecret := ""
	if oidcConfig.ClientSecret != nil {
		clientSecret = *oidcConfig.ClientSecret
	}

	authURL, tokenURL := resolveEndpoints(oidcConfig, discovery)
	config := &oauth2.Config{
		ClientID:     oidcConfig.ClientID,
		ClientSecret: clientSecret,
		RedirectURL:  oidcConfig.RedirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}

	return &Client{config: config}
}

// ExchangeCode exchanges an authorization code for tokens
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

// AuthCodeURL returns the provider login URL for state
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// IDToken extracts the raw ID token from a token response
func IDToken(token *oauth2.Token) (string, bool) {
	raw, ok := token.Extra("id_token").(string)
	return raw, ok && raw != ""
}
