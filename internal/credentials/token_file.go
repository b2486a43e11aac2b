package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// authorizedUser is the on-disk token format. It matches the "authorized
// user" files written by Google's client libraries and also accepts the
// access_token key of a marshalled oauth2.Token.
type authorizedUser struct {
	Token        string    `json:"token,omitempty"`
	AccessToken  string    `json:"access_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token"`
	TokenURI     string    `json:"token_uri,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

func (a authorizedUser) oauthToken() *oauth2.Token {
	access := a.Token
	if access == "" {
		access = a.AccessToken
	}
	return &oauth2.Token{
		AccessToken:  access,
		TokenType:    a.TokenType,
		RefreshToken: a.RefreshToken,
		Expiry:       a.Expiry,
	}
}

// Load reads the token file and resolves the OAuth client config. Client
// fields embedded in the token file win; otherwise credentialsFile must hold
// an OAuth client JSON.
func Load(credentialsFile, tokenFile string) (*oauth2.Config, *oauth2.Token, error) {
	raw, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read token file: %w", err)
	}
	var stored authorizedUser
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, nil, fmt.Errorf("decode token file: %w", err)
	}
	tok := stored.oauthToken()
	if tok.RefreshToken == "" {
		return nil, nil, errors.New("token file has no refresh_token")
	}

	if stored.ClientID != "" && stored.ClientSecret != "" {
		endpoint := google.Endpoint
		if stored.TokenURI != "" {
			endpoint.TokenURL = stored.TokenURI
		}
		scopes := stored.Scopes
		if len(scopes) == 0 {
			scopes = []string{sheets.SpreadsheetsScope}
		}
		return &oauth2.Config{
			ClientID:     stored.ClientID,
			ClientSecret: stored.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       scopes,
		}, tok, nil
	}

	clientJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read credentials file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(clientJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, nil, fmt.Errorf("parse credentials file: %w", err)
	}
	return cfg, tok, nil
}

// Save writes tok in the authorized user format, replacing path atomically.
func Save(path string, cfg *oauth2.Config, tok *oauth2.Token) error {
	stored := authorizedUser{
		Token:        tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		TokenURI:     cfg.Endpoint.TokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       cfg.Scopes,
		Expiry:       tok.Expiry.UTC(),
	}
	raw, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".token-*.json")
	if err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("persist token: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("persist token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
