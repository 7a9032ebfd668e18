package debug

import (
	"bengaliboutique_server/handling"
	"bengaliboutique_server/lib"
	"bengaliboutique_server/structs"
	"net/http"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

type tokenRequest struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username" validate:"required,max=150"`
	Email    string    `json:"email" validate:"omitempty,email"`
	Role     string    `json:"role" validate:"omitempty,oneof=user admin"`
}

// IssueToken signs an access token for local testing. Accounts live in the
// identity provider, so nothing is looked up here.
func (drm *DebugRoutesManager) IssueToken(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[tokenRequest](r)
	if err != nil {
		handling.HandleError(err, "error.debug.invalidRequestBody", drm.logger, w)
		return
	}

	if body.UserID == uuid.Nil {
		body.UserID = uuid.New()
	}
	if body.Role == "" {
		body.Role = structs.RoleUser
	}

	token, err := drm.authService.GenerateAccessToken(body.UserID, body.Username, body.Email, body.Role)
	if err != nil {
		handling.HandleError(err, "error.debug.failedToSignToken", drm.logger, w)
		return
	}

	drm.logger.Debug("Issued debug token", gecho.Field("user_id", body.UserID), gecho.Field("role", body.Role))

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"access_token": token,
			"user_id":      body.UserID,
		}),
		gecho.Send(),
	)
}
