package cmd

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/oxblood/sweeper/echo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var clientHost string
var clientPort int
var connectTimeout time.Duration

func init() {
	clientCmd.Flags().StringVarP(&clientHost, "host", "H", "127.0.0.1", "Server host to connect to")
	clientCmd.Flags().IntVarP(&clientPort, "port", "p", 9000, "Server port to connect to")
	clientCmd.Flags().DurationVarP(&connectTimeout, "timeout", "t", 5*time.Second, "Connection timeout")
	rootCmd.AddCommand(clientCmd)
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Interactively exercise an echo server",
	Long:  `Connects to an echo server and sends each line of input verbatim, logging every reply. Type 'quit' or 'exit' to disconnect.`,
	Run: func(cmd *cobra.Command, args []string) {

		cfg := loadConfig()

		if !cmd.Flags().Changed("host") {
			clientHost = cfg.Client.Host
		}
		if !cmd.Flags().Changed("port") {
			clientPort = cfg.Client.Port
		}
		if !cmd.Flags().Changed("timeout") {
			connectTimeout = time.Duration(cfg.Client.Timeout)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := echo.NewClient(net.JoinHostPort(clientHost, strconv.Itoa(clientPort)), connectTimeout)

		if err := client.Run(ctx, os.Stdin, os.Stdout); err != nil {
			log.Error(err)
			os.Exit(1)
		}
	},
}
