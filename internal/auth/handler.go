package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/Solorzano97/LaCazuelaChapina/pkg/activitylog"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/config"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/database"
	"github.com/Solorzano97/LaCazuelaChapina/pkg/response"
)

type Handler struct {
	db           *gorm.DB
	cfg          config.Config
	googleConfig *oauth2.Config
	logger       *activitylog.Logger
}

func NewHandler(db *gorm.DB, cfg config.Config) *Handler {
	googleConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     google.Endpoint,
	}

	return &Handler{
		db:           db,
		cfg:          cfg,
		googleConfig: googleConfig,
		logger:       activitylog.NewLogger(db),
	}
}

type RegisterRequest struct {
	Name     string    `json:"name" binding:"required"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required,min=6"`
	BranchID uuid.UUID `json:"branch_id" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleCredentialRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresIn int64         `json:"expires_in"`
	User      database.User `json:"user"`
	IsNewUser bool          `json:"is_new_user,omitempty"`
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// Register creates a seller user on the given branch.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid registration data", err.Error())
		return
	}

	var existing database.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		response.Conflict(c, "Email already registered")
		return
	}

	var branch database.Branch
	if err := h.db.Where("id = ? AND is_active = ?", req.BranchID, true).First(&branch).Error; err != nil {
		response.NotFound(c, "Branch not found")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.Internal(c, "Failed to hash password", h.diag(err))
		return
	}

	user := database.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         database.RoleSeller,
		BranchID:     req.BranchID,
		IsActive:     true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		response.Internal(c, "Failed to create user", h.diag(err))
		return
	}

	token, expiresIn, err := GenerateToken(h.cfg, user)
	if err != nil {
		response.Internal(c, "Failed to issue token", h.diag(err))
		return
	}

	response.Created(c, AuthResponse{Token: token, ExpiresIn: expiresIn, User: user}, "User registered")
}

// Login authenticates with email and password. Failures never reveal which
// credential component was wrong.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid login data", err.Error())
		return
	}

	var user database.User
	if err := h.db.Where("email = ? AND is_active = ?", req.Email, true).First(&user).Error; err != nil {
		response.Unauthorized(c, "Invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		response.Unauthorized(c, "Invalid credentials")
		return
	}

	token, expiresIn, err := GenerateToken(h.cfg, user)
	if err != nil {
		response.Internal(c, "Failed to issue token", h.diag(err))
		return
	}

	log.Info().Str("email", user.Email).Msg("user logged in")

	response.OK(c, AuthResponse{Token: token, ExpiresIn: expiresIn, User: user}, "")
}

// GoogleLogin authenticates with a Google access token obtained by the
// frontend. First-time federated logins are auto-provisioned as sellers on
// the first active branch.
func (h *Handler) GoogleLogin(c *gin.Context) {
	var req GoogleCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid Google credential", err.Error())
		return
	}

	info, err := h.getGoogleUserInfo(req.AccessToken)
	if err != nil || info.Email == "" {
		response.Unauthorized(c, "Invalid Google token")
		return
	}

	user, isNew, err := h.findOrProvisionUser(info)
	if err != nil {
		response.Internal(c, "Failed to authenticate with Google", h.diag(err))
		return
	}

	token, expiresIn, err := GenerateToken(h.cfg, user)
	if err != nil {
		response.Internal(c, "Failed to issue token", h.diag(err))
		return
	}

	if isNew {
		log.Info().Str("email", user.Email).Msg("user auto-provisioned via Google OAuth")
	}

	response.OK(c, AuthResponse{Token: token, ExpiresIn: expiresIn, User: user, IsNewUser: isNew}, "")
}

// GoogleRedirect starts the server-side OAuth consent flow.
func (h *Handler) GoogleRedirect(c *gin.Context) {
	state := uuid.New().String()
	c.SetCookie("oauth_state", state, 300, "/", "", false, true)

	url := h.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback handles the OAuth callback from Google and redirects back
// to the frontend with a session token.
func (h *Handler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	storedState, err := c.Cookie("oauth_state")
	if err != nil || state != storedState {
		response.BadRequest(c, "Invalid state parameter", nil)
		return
	}

	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "No authorization code", nil)
		return
	}

	token, err := h.googleConfig.Exchange(context.Background(), code)
	if err != nil {
		response.Internal(c, "Failed to exchange token", h.diag(err))
		return
	}

	info, err := h.getGoogleUserInfo(token.AccessToken)
	if err != nil {
		response.Internal(c, "Failed to get user info", h.diag(err))
		return
	}

	user, isNew, err := h.findOrProvisionUser(info)
	if err != nil {
		response.Internal(c, "Failed to authenticate with Google", h.diag(err))
		return
	}

	sessionToken, _, err := GenerateToken(h.cfg, user)
	if err != nil {
		response.Internal(c, "Failed to issue token", h.diag(err))
		return
	}

	redirectURL := fmt.Sprintf("%s/auth/callback?token=%s&is_new_user=%t",
		h.cfg.FrontendURL, sessionToken, isNew)
	c.Redirect(http.StatusTemporaryRedirect, redirectURL)
}

// Me returns the current user with its branch.
func (h *Handler) Me(c *gin.Context) {
	userID := c.GetString("user_id")

	var user database.User
	if err := h.db.Preload("Branch").Where("id = ?", userID).First(&user).Error; err != nil {
		response.NotFound(c, "User not found")
		return
	}

	response.OK(c, user, "")
}

func (h *Handler) findOrProvisionUser(info *googleUserInfo) (database.User, bool, error) {
	var user database.User

	err := h.db.Where("google_id = ?", info.ID).First(&user).Error
	if err == nil {
		return user, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return user, false, err
	}

	// Known email without a linked Google account: link it.
	err = h.db.Where("email = ?", info.Email).First(&user).Error
	if err == nil {
		user.GoogleID = info.ID
		return user, false, h.db.Save(&user).Error
	}
	if err != gorm.ErrRecordNotFound {
		return user, false, err
	}

	// Auto-provision: lowest-privilege role on the first active branch.
	var branch database.Branch
	if err := h.db.Where("is_active = ?", true).Order("created_at ASC").First(&branch).Error; err != nil {
		return user, false, fmt.Errorf("no active branch to assign: %w", err)
	}

	randomPassword, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
	if err != nil {
		return user, false, err
	}

	user = database.User{
		Name:         info.Name,
		Email:        info.Email,
		PasswordHash: string(randomPassword),
		GoogleID:     info.ID,
		Role:         database.RoleSeller,
		BranchID:     branch.ID,
		IsActive:     true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return user, false, err
	}
	return user, true, nil
}

func (h *Handler) getGoogleUserInfo(accessToken string) (*googleUserInfo, error) {
	resp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + accessToken)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// diag returns diagnostic detail for error envelopes, suppressed in
// production builds.
func (h *Handler) diag(err error) interface{} {
	if h.cfg.IsProduction() {
		return nil
	}
	return err.Error()
}
