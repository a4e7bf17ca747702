package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/server"
	log "github.com/sirupsen/logrus"
)

// clientInfoHandler reads client credentials from the form body and falls back to
// HTTP basic auth
func clientInfoHandler(r *http.Request) (string, string, error) {
	if id, secret, err := server.ClientFormHandler(r); err == nil {
		return id, secret, nil
	}
	return server.ClientBasicHandler(r)
}

// HandleToken handles the token endpoint for the client credentials grant
// @Summary Token Endpoint
// @Description Obtain an access token using the client credentials grant
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: client_credentials"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param scope formData string false "Requested scope"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	if err := o.server.HandleTokenRequest(c.Writer, c.Request); err != nil {
		log.WithError(err).Warn("Token request failed")
		if !c.Writer.Written() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             errors.ErrInvalidRequest.Error(),
				"error_description": err.Error(),
			})
		}
	}
}
