package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
	domainerrors "github.com/mrlokans/bookshelf/internal/errors"
	"github.com/mrlokans/bookshelf/internal/logger"
	"github.com/mrlokans/bookshelf/internal/profile"
)

// ProfileViews produces the aggregated dashboard and friend views.
type ProfileViews interface {
	DashboardView(ctx context.Context, ownerID string, selected entities.Shelf) (*profile.Dashboard, error)
	FriendProfileView(ctx context.Context, targetUID string, shelf entities.Shelf) (*profile.FriendProfile, error)
}

type ProfileController struct {
	views ProfileViews
	log   *logger.Logger
}

func NewProfileController(views ProfileViews, log *logger.Logger) *ProfileController {
	return &ProfileController{views: views, log: log}
}

// Dashboard handles GET /api/dashboard?shelf=
func (pc *ProfileController) Dashboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	shelf, ok := parseShelfParam(c, c.Query("shelf"), profile.DefaultDashboardShelf, pc.log)
	if !ok {
		return
	}

	dashboard, err := pc.views.DashboardView(c.Request.Context(), user.UID, shelf)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// FriendProfile handles GET /api/friends/:uid/profile?shelf=
// An unknown user is reported as {"state":"absent"} with 404.
func (pc *ProfileController) FriendProfile(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	shelf, ok := parseShelfParam(c, c.Query("shelf"), profile.DefaultFriendShelf, pc.log)
	if !ok {
		return
	}

	view, err := pc.views.FriendProfileView(c.Request.Context(), c.Param("uid"), shelf)
	if err != nil {
		if domainerrors.CodeOf(err) == domainerrors.CodeNotFound {
			c.JSON(http.StatusNotFound, gin.H{"state": "absent"})
			return
		}
		respondError(c, pc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": "present", "profile": view})
}
