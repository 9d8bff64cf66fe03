package main

import (
	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/governor/internal/config"
	"github.com/xiaot623/gogo/governor/internal/logger"
)

var (
	configFile string
	logLevel   string

	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:           "governor",
		Short:         "Session, context and quota governance for LLM chat",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.Log.Level = logLevel
			}
			if err := logger.Configure(logger.Options{
				Level: loaded.Log.Level,
				File:  loaded.Log.File,
				JSON:  loaded.Log.JSON,
			}); err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the external and internal HTTP servers and the expiry sweeper",
		RunE:  runServe, // Defined in cmd_serve.go
	}

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired sessions and contexts once and exit",
		RunE:  runSweep, // Defined in cmd_admin.go
	}

	usageCmd = &cobra.Command{
		Use:   "usage",
		Short: "Print token and cost totals for a user or an organization",
		RunE:  runUsage, // Defined in cmd_admin.go
	}

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Chat with a running governor from the terminal",
		RunE:  runChat, // Defined in cmd_chat.go
	}
)

var (
	usageUser string
	usageOrg  string

	chatAddr       string
	chatUser       string
	chatOrg        string
	chatMode       string
	chatPrivileged bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./governor.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	usageCmd.Flags().StringVar(&usageUser, "user", "", "user id to report on")
	usageCmd.Flags().StringVar(&usageOrg, "org", "", "organization id to report on")
	usageCmd.MarkFlagsMutuallyExclusive("user", "org")
	usageCmd.MarkFlagsOneRequired("user", "org")

	chatCmd.Flags().StringVar(&chatAddr, "addr", "http://localhost:8080", "governor external API address")
	chatCmd.Flags().StringVar(&chatUser, "user", "cli-user", "user id sent as X-User-ID")
	chatCmd.Flags().StringVar(&chatOrg, "org", "", "organization id sent as X-Org-ID")
	chatCmd.Flags().StringVar(&chatMode, "mode", "general", "chat mode (general or developer)")
	chatCmd.Flags().BoolVar(&chatPrivileged, "privileged", false, "send X-Privileged: true")

	rootCmd.AddCommand(serveCmd, sweepCmd, usageCmd, chatCmd)
}
