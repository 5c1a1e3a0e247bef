package cmd

import (
	"fmt"
	"os"

	"github.com/oxblood/sweeper/config"
	"github.com/oxblood/sweeper/version"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var debug bool
var configPath string
var versionRequested bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "verbose", "v", debug, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", configPath, "Path to an optional YAML config file")
	rootCmd.Flags().BoolVarP(&versionRequested, "version", "", versionRequested, "Output version information and exit")
}

var rootCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Sweeper is a polite TCP port scanner with an echo server and client",
	Long:  `A TCP port scanner restricted to an allow-list of targets, plus a concurrent echo server and an interactive client for exercising it.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		if debug {
			log.SetLevel(log.DebugLevel)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {

		if versionRequested {
			v := version.Version
			if v == "" {
				v = "development version"
			}
			fmt.Printf("sweeper %s\n", v)
			return
		}

		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	if configPath == "" {
		return config.Default()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	return cfg
}
