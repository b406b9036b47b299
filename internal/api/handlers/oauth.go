package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/portfolio-project/portfolio-server/internal/config"
	"github.com/portfolio-project/portfolio-server/internal/database/queries"
	"github.com/portfolio-project/portfolio-server/internal/models"
)

const stateCookieName = "oauth_state"

// GitHubUser is the subset of the GitHub user API the bridge needs.
type GitHubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
}

// OAuthHandler maps GitHub identities to local admin accounts. A successful
// login from an allowed GitHub account provisions an admin on first use.
type OAuthHandler struct {
	oauth         *oauth2.Config
	admins        AdminStore
	frontendURL   string
	allowedLogins []string

	// fetchUser is swappable in tests
	fetchUser func(ctx context.Context, client *http.Client) (*GitHubUser, error)

	// issueToken is swappable in tests
	issueToken func(adminID uuid.UUID) (string, error)
}

// NewOAuthHandler creates the GitHub OAuth bridge
func NewOAuthHandler(cfg *config.Config, admins AdminStore, issueToken func(adminID uuid.UUID) (string, error)) *OAuthHandler {
	return &OAuthHandler{
		oauth: &oauth2.Config{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			RedirectURL:  cfg.GitHub.CallbackURL,
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
		admins:        admins,
		frontendURL:   cfg.FrontendURL,
		allowedLogins: cfg.GitHub.AllowedLogins,
		fetchUser:     fetchGitHubUser,
		issueToken:    issueToken,
	}
}

// Redirect sends the browser to GitHub with a random state value pinned in
// a short-lived cookie.
func (h *OAuthHandler) Redirect(c *gin.Context) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		h.redirectError(c, "failed to start login")
		return
	}
	state := hex.EncodeToString(buf)

	c.SetCookie(stateCookieName, state, 600, "/", "", false, true)
	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state))
}

// Callback completes the OAuth flow: verify state, exchange the code, fetch
// the GitHub user, look up or provision the admin, then bounce back to the
// front end with a session token. Failures redirect with an error message
// instead of surfacing a 5xx to the browser.
func (h *OAuthHandler) Callback(c *gin.Context) {
	state, err := c.Cookie(stateCookieName)
	if err != nil || state == "" || c.Query("state") != state {
		h.redirectError(c, "authentication failed")
		return
	}
	c.SetCookie(stateCookieName, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		h.redirectError(c, "authentication failed")
		return
	}

	ctx := c.Request.Context()
	token, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		log.Printf("github oauth exchange failed: %v", err)
		h.redirectError(c, "authentication failed")
		return
	}

	user, err := h.fetchUser(ctx, h.oauth.Client(ctx, token))
	if err != nil {
		log.Printf("github user fetch failed: %v", err)
		h.redirectError(c, "authentication failed")
		return
	}

	admin, err := h.LookupOrProvision(user)
	if err != nil {
		log.Printf("github login rejected for %s: %v", user.Login, err)
		h.redirectError(c, "authentication failed")
		return
	}

	if err := h.admins.UpdateLastLogin(admin.ID); err != nil {
		log.Printf("failed to update last login for %s: %v", admin.Username, err)
	}

	sessionToken, err := h.issueToken(admin.ID)
	if err != nil {
		h.redirectError(c, "authentication failed")
		return
	}

	c.Redirect(http.StatusFound, h.frontendURL+"/#admin?login=success&token="+url.QueryEscape(sessionToken))
}

// LookupOrProvision finds the admin for a GitHub identity, creating one on
// first login. When an allow-list is configured, only listed GitHub logins
// may provision or sign in.
func (h *OAuthHandler) LookupOrProvision(user *GitHubUser) (*models.Admin, error) {
	if len(h.allowedLogins) > 0 && !h.loginAllowed(user.Login) {
		return nil, fmt.Errorf("github login %q is not in the allow list", user.Login)
	}

	githubID := strconv.FormatInt(user.ID, 10)
	admin, err := h.admins.GetByGitHubID(githubID)
	if err == nil {
		if !admin.IsActive {
			return nil, fmt.Errorf("account %q is deactivated", admin.Username)
		}
		return admin, nil
	}
	if !errors.Is(err, queries.ErrNotFound) {
		return nil, err
	}

	params := queries.CreateAdminParams{
		Username:       user.Login,
		GitHubID:       &githubID,
		GitHubUsername: &user.Login,
		Role:           models.RoleAdmin,
	}
	if user.Email != "" {
		params.Email = &user.Email
	}
	return h.admins.Create(params)
}

func (h *OAuthHandler) loginAllowed(login string) bool {
	for _, allowed := range h.allowedLogins {
		if allowed == login {
			return true
		}
	}
	return false
}

func (h *OAuthHandler) redirectError(c *gin.Context, message string) {
	c.Redirect(http.StatusFound, h.frontendURL+"/#admin?login=error&message="+url.QueryEscape(message))
}

func fetchGitHubUser(ctx context.Context, client *http.Client) (*GitHubUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user endpoint returned %d", resp.StatusCode)
	}

	var user GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	if user.Login == "" {
		return nil, fmt.Errorf("github user response missing login")
	}
	return &user, nil
}
