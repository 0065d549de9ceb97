package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/surveyforge/survey-service/internal/services"
	"github.com/surveyforge/survey-service/internal/utils"
)

type InvitationHandler struct {
	BaseHandler
	invitationService services.InvitationService
	validator         *utils.Validator
}

func NewInvitationHandler(
	invitationService services.InvitationService,
	validator *utils.Validator,
	logger utils.Logger,
) *InvitationHandler {
	return &InvitationHandler{
		BaseHandler:       NewBaseHandler(logger),
		invitationService: invitationService,
		validator:         validator,
	}
}

// InviteRespondents creates invitations for a batch of email addresses
func (h *InvitationHandler) InviteRespondents(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	var req services.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Inviting respondents", "survey_id", surveyID, "count", len(req.Emails))

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	invitations, err := h.invitationService.Invite(c.Request.Context(), surveyID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Invitations created",
		Data:    invitations,
	})
}

// RedeemInvitation resolves a respondent's invitation token to the survey it
// opens. The route is public: the token is the credential.
func (h *InvitationHandler) RedeemInvitation(c *gin.Context) {
	token := ParseStringParam(c, "token")
	if token == "" {
		return
	}

	redemption, err := h.invitationService.Redeem(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, redemption)
}

// ListInvitations lists a survey's invitations for its owner
func (h *InvitationHandler) ListInvitations(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	invitations, err := h.invitationService.ListBySurvey(c.Request.Context(), surveyID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitations)
}
