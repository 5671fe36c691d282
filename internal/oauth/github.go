package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	ggithub "golang.org/x/oauth2/github"
)

type Github struct {
	cfg    *oauth2.Config
	apiURL string // overridable in tests
}

func NewGithub(clientID, clientSecret, redirectURI string) *Github {
	return &Github{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"user:email"},
			Endpoint:     ggithub.Endpoint,
		},
		apiURL: "https://api.github.com",
	}
}

func (g *Github) Name() string { return "github" }

func (g *Github) AuthURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// FetchProfile exchanges the code and reads the user from the REST API.
// GitHub does not issue an id_token; the email may be absent from /user
// (private email setting) and is then taken from /user/emails (primary).
func (g *Github) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	client := g.cfg.Client(ctx, tok)

	var gu githubUser
	if err := getJSON(ctx, client, g.apiURL+"/user", &gu); err != nil {
		return nil, fmt.Errorf("github user: %w", err)
	}
	if gu.ID == 0 {
		return nil, errors.New("github user: missing id")
	}

	email := gu.Email
	if email == "" {
		var emails []githubEmail
		if err := getJSON(ctx, client, g.apiURL+"/user/emails", &emails); err != nil {
			return nil, fmt.Errorf("github emails: %w", err)
		}
		for _, e := range emails {
			if e.Primary {
				email = e.Email
				break
			}
		}
		if email == "" && len(emails) > 0 {
			email = emails[0].Email
		}
	}

	p := &Profile{
		Provider:   g.Name(),
		ProviderID: fmt.Sprintf("%d", gu.ID),
		Email:      email,
		Username:   gu.Login,
		Picture:    gu.AvatarURL,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
