package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/logger"
	"github.com/mrlokans/bookshelf/internal/social"
)

// SocialService defines the friend graph and profile operations used by SocialController.
type SocialService interface {
	ListCandidateUsers(ctx context.Context, excludeUID string) ([]entities.UserSummary, error)
	ListFriends(ctx context.Context, ownerID string) (map[string]entities.FriendLink, error)
	ToggleByID(ctx context.Context, ownerID, targetUID string) (bool, error)
	Profile(ctx context.Context, caller social.Caller) (*entities.UserProfile, error)
	SaveProfile(ctx context.Context, caller social.Caller, in social.ProfileInput) (*entities.UserProfile, error)
}

type SocialController struct {
	social SocialService
	log    *logger.Logger
}

func NewSocialController(svc SocialService, log *logger.Logger) *SocialController {
	return &SocialController{social: svc, log: log}
}

// ProfileResponse is a profile with its resolved avatar.
type ProfileResponse struct {
	entities.UserProfile
	AvatarURL string `json:"avatar_url"`
}

func newProfileResponse(p *entities.UserProfile) ProfileResponse {
	return ProfileResponse{UserProfile: *p, AvatarURL: social.AvatarURL(*p)}
}

// Users handles GET /api/users
func (sc *SocialController) Users(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	users, err := sc.social.ListCandidateUsers(c.Request.Context(), user.UID)
	if err != nil {
		respondError(c, sc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Friends handles GET /api/friends
func (sc *SocialController) Friends(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	friends, err := sc.social.ListFriends(c.Request.Context(), user.UID)
	if err != nil {
		respondError(c, sc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// Toggle handles POST /api/friends/:uid/toggle
func (sc *SocialController) Toggle(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	target := c.Param("uid")
	isFriend, err := sc.social.ToggleByID(c.Request.Context(), user.UID, target)
	if err != nil {
		respondError(c, sc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"uid": target, "is_friend": isFriend})
}

// GetProfile handles GET /api/profile
func (sc *SocialController) GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	p, err := sc.social.Profile(c.Request.Context(), socialCaller(user))
	if err != nil {
		respondError(c, sc.log, err)
		return
	}

	c.JSON(http.StatusOK, newProfileResponse(p))
}

// SaveProfile handles PUT /api/profile
func (sc *SocialController) SaveProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var in social.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	p, err := sc.social.SaveProfile(c.Request.Context(), socialCaller(user), in)
	if err != nil {
		respondError(c, sc.log, err)
		return
	}

	c.JSON(http.StatusOK, newProfileResponse(p))
}
