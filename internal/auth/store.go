package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/8bitbanana/music-converter/internal/services"
	"github.com/8bitbanana/music-converter/internal/shared"
	"github.com/charmbracelet/log"
)

// Credential is one persisted bearer credential record.
type Credential struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	Scopes       []string `json:"scopes"`
	Username     string   `json:"username"`
}

// HasScopes reports whether every required scope is present in the
// credential's granted set (superset match, not exact).
func (c *Credential) HasScopes(required []string) bool {
	for _, want := range required {
		found := false
		for _, have := range c.Scopes {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sameScopeSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// UsernameIdentityError reports that the authenticated account does not
// match the caller's expectation. It is fatal to the acquisition attempt.
type UsernameIdentityError struct {
	Actual   string
	Expected string
}

func (e *UsernameIdentityError) Error() string {
	return fmt.Sprintf("signed in as %s, not %s", e.Actual, e.Expected)
}

// Store is the file-backed credential cache for one service.
type Store struct {
	path     string
	provider Provider
	api      *services.Client
	logger   *log.Logger

	mu sync.Mutex
}

// NewStore opens (creating if necessary) the credential file at path.
func NewStore(path string, provider Provider, api *services.Client, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create credential directory: %w", err)
		}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("[]"), 0600); err != nil {
			return nil, fmt.Errorf("failed to initialize credential store: %w", err)
		}
	}
	return &Store{path: path, provider: provider, api: api, logger: logger}, nil
}

// Provider returns the store's OAuth provider description.
func (s *Store) Provider() Provider { return s.provider }

// load reads the whole persisted list. Callers hold s.mu.
func (s *Store) load() ([]Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential store: %w", err)
	}
	var creds []Credential
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credential store: %w", err)
	}
	return creds, nil
}

// save rewrites the whole persisted list atomically. Callers hold s.mu.
func (s *Store) save(creds []Credential) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("failed to create temp credential file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp credential file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace credential store: %w", err)
	}
	return nil
}

// Lookup returns the cached credential whose granted scopes are a superset
// of the required set and whose identity matches username. An empty
// username matches any account. Stale duplicate records are tolerated: the
// most recently appended match wins. Returns [shared.ErrNoCredential] when
// nothing matches.
func (s *Store) Lookup(scopes []string, username string) (*Credential, error) {
	matches, err := s.LookupAll(scopes)
	if err != nil {
		return nil, err
	}
	for i := len(matches) - 1; i >= 0; i-- {
		if username == "" || matches[i].Username == username {
			c := matches[i]
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s account %q with scopes %v", shared.ErrNoCredential, s.provider.Service, username, scopes)
}

// LookupAll returns every scope-matching credential, in persistence order.
// Used to enumerate known accounts when no identity is specified.
func (s *Store) LookupAll(scopes []string) ([]Credential, error) {
	required, err := s.provider.NormalizeScopes(scopes)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	creds, err := s.load()
	if err != nil {
		return nil, err
	}

	var matches []Credential
	for _, c := range creds {
		if c.HasScopes(required) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

// Put persists a credential, replacing any stale record for the same
// account and scope set.
func (s *Store) Put(cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replace(cred, "")
}

// replace removes records matching the new credential's account+scope set
// (and the record holding staleToken, if given) and appends the new record.
// Remove-then-append is a single step under the store lock so a missed
// removal can never leave duplicate live entries. Callers hold s.mu.
func (s *Store) replace(cred Credential, staleToken string) error {
	creds, err := s.load()
	if err != nil {
		return err
	}

	kept := creds[:0]
	for _, c := range creds {
		if c.AccessToken == staleToken && staleToken != "" {
			continue
		}
		if c.Username == cred.Username && sameScopeSet(c.Scopes, cred.Scopes) {
			continue
		}
		kept = append(kept, c)
	}
	kept = append(kept, cred)
	return s.save(kept)
}

// tokenResponse is the token endpoint's reply.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// Refresh exchanges the credential's refresh token for a new access token
// and atomically replaces the old persisted entry. The refresh token is
// carried forward when the endpoint does not rotate it. A non-200 response
// surfaces as a typed [services.APIError].
func (s *Store) Refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	if cred.RefreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {cred.RefreshToken},
		"redirect_uri":  {s.provider.RedirectURI},
		"client_id":     {s.provider.ClientID},
		"client_secret": {s.provider.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.provider.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.api.Execute(ctx, req, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var tokens tokenResponse
	if err := json.Unmarshal(resp.Body, &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	refreshed := Credential{
		AccessToken:  tokens.AccessToken,
		RefreshToken: cred.RefreshToken,
		Scopes:       cred.Scopes,
		Username:     cred.Username,
	}
	if tokens.RefreshToken != "" {
		refreshed.RefreshToken = tokens.RefreshToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.replace(refreshed, cred.AccessToken); err != nil {
		return nil, err
	}
	s.logger.Debug("credential refreshed", "service", s.provider.Service, "username", cred.Username)
	return &refreshed, nil
}

// VerifyIdentity calls the provider's who-am-I endpoint and returns the
// authenticated account identity.
func (s *Store) VerifyIdentity(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.provider.IdentityURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.api.Execute(ctx, req, http.StatusOK)
	if err != nil {
		return "", err
	}

	var body struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", fmt.Errorf("failed to decode identity response: %w", err)
	}
	// Google's userinfo payload carries both a numeric id and the email;
	// the email is the account identity there. Spotify identifies by id.
	if s.provider.EmailIdentity {
		if body.Email == "" {
			return "", fmt.Errorf("identity response carries no email")
		}
		return body.Email, nil
	}
	if body.ID != "" {
		return body.ID, nil
	}
	return body.Email, nil
}

// Exchange swaps an authorization code (obtained by the collaborator
// layer) for tokens, verifies the authenticated identity against
// expectedUsername when given, and persists the credential. An identity
// mismatch fails with [UsernameIdentityError] and nothing is persisted.
func (s *Store) Exchange(ctx context.Context, code string, scopes []string, expectedUsername string) (*Credential, error) {
	normalized, err := s.provider.NormalizeScopes(scopes)
	if err != nil {
		return nil, err
	}

	token, err := s.provider.OAuthConfig(normalized).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	username, err := s.VerifyIdentity(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	if expectedUsername != "" && username != expectedUsername {
		return nil, &UsernameIdentityError{Actual: username, Expected: expectedUsername}
	}

	cred := Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scopes:       normalized,
		Username:     username,
	}
	if err := s.Put(cred); err != nil {
		return nil, err
	}
	s.logger.Info("credential stored", "service", s.provider.Service, "username", username)
	return &cred, nil
}

// AuthCodeURL returns the authorization URL the collaborator layer should
// present to the user. No browser is opened here.
func (s *Store) AuthCodeURL(scopes []string, state string) (string, error) {
	normalized, err := s.provider.NormalizeScopes(scopes)
	if err != nil {
		return "", err
	}
	return s.provider.OAuthConfig(normalized).AuthCodeURL(state), nil
}

// Delete removes every persisted record for the given account identity.
func (s *Store) Delete(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load()
	if err != nil {
		return err
	}
	kept := creds[:0]
	for _, c := range creds {
		if c.Username != username {
			kept = append(kept, c)
		}
	}
	s.logger.Info("deleting cached credentials", "service", s.provider.Service, "username", username, "removed", len(creds)-len(kept))
	return s.save(kept)
}

// WipeAll removes every persisted record. Interactive login is required
// afterwards.
func (s *Store) WipeAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save([]Credential{})
}
