package main

import (
	"fmt"

	"github.com/franciscosanchezn/gin-pizzeria/internal/database"
	"github.com/franciscosanchezn/gin-pizzeria/internal/realtime"
	"github.com/franciscosanchezn/gin-pizzeria/internal/server"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := bootstrap()
			if err != nil {
				return err
			}
			if conf.Environment == "production" {
				gin.SetMode(gin.ReleaseMode)
			}

			db, err := setupDatabase(conf)
			if err != nil {
				return err
			}
			if conf.SeedMenu {
				if _, err := database.SeedMenu(db); err != nil {
					return fmt.Errorf("seed menu: %w", err)
				}
			}

			router, err := server.NewRouter(conf, db, realtime.NewHub(), server.Options{})
			if err != nil {
				return err
			}

			addr := fmt.Sprintf("%v:%d", conf.Host, conf.Port)
			log.Infof("Starting server on %s", addr)
			return router.Run(addr)
		},
	}
}
