// Package auth issues the signed tokens used by staff and machine clients.
package auth

import (
	"time"

	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// SigningMethod signs every token issued by the application
var SigningMethod = jwt.SigningMethodHS256

type OAuthService struct {
	server *server.Server
	db     *gorm.DB
}

// NewOAuthService wires the client credentials grant to the gorm stores. Issued access
// tokens are JWTs carrying the owning staff user's id and role.
func NewOAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) *OAuthService {
	if tokenTTL <= 0 {
		tokenTTL = 2 * time.Hour
	}
	manager := manage.NewDefaultManager()
	manager.SetClientTokenCfg(&manage.Config{AccessTokenExp: tokenTTL})

	manager.MapAccessGenerate(NewCustomJWTAccessGenerate([]byte(jwtSecret), SigningMethod, db))
	manager.MustTokenStorage(NewGormTokenStore(db), nil)
	manager.MapClientStorage(NewGormClientStore(db))

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(oauth2.ClientCredentials)
	srv.SetClientInfoHandler(clientInfoHandler)

	return &OAuthService{
		server: srv,
		db:     db,
	}
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}
