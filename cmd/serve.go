package cmd

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/oxblood/sweeper/echo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveHost string
var servePort int
var maxClients int64

func init() {
	serveCmd.Flags().StringVarP(&serveHost, "host", "H", "127.0.0.1", "Host/IP to bind to")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 9000, "Port to bind to")
	serveCmd.Flags().Int64VarP(&maxClients, "max-clients", "m", echo.DefaultMaxClients, "Max concurrently handled connections")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a concurrent TCP echo server",
	Long:  `Accepts TCP connections, handling each concurrently up to a cap, and echoes received text back to the client. Shuts down gracefully on SIGINT/SIGTERM.`,
	Run: func(cmd *cobra.Command, args []string) {

		cfg := loadConfig()

		if !cmd.Flags().Changed("host") {
			serveHost = cfg.Serve.Host
		}
		if !cmd.Flags().Changed("port") {
			servePort = cfg.Serve.Port
		}
		if !cmd.Flags().Changed("max-clients") {
			maxClients = cfg.Serve.MaxClients
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		server := echo.NewServer(net.JoinHostPort(serveHost, strconv.Itoa(servePort)))
		server.MaxClients = maxClients

		if err := server.ListenAndServe(ctx); err != nil {
			log.Error(err)
			os.Exit(1)
		}
	},
}
