package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/oxblood/sweeper/scan"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var scanHost string
var portSelection string
var workers int
var probeTimeout time.Duration
var submitDelay time.Duration

func init() {
	scanCmd.Flags().StringVarP(&scanHost, "host", "H", scanHost, "Target host (allowed: 127.0.0.1, localhost, scanme.nmap.org)")
	scanCmd.Flags().StringVarP(&portSelection, "ports", "p", portSelection, "Ports to scan. Comma separated, can use hyphens e.g. 22,80,443,8080-8090")
	scanCmd.Flags().IntVarP(&workers, "workers", "w", 50, "Max concurrently executing probes")
	scanCmd.Flags().DurationVarP(&probeTimeout, "timeout", "t", 500*time.Millisecond, "Per-probe connect timeout")
	scanCmd.Flags().DurationVarP(&submitDelay, "delay", "d", 5*time.Millisecond, "Pause between submitted probes, regardless of worker availability")
	scanCmd.MarkFlagRequired("host")
	scanCmd.MarkFlagRequired("ports")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan an allow-listed host for open TCP ports",
	Long: `Probes each selected port with a TCP connect attempt under a worker cap
and a submission pacing delay. The two limits are independent: --workers
bounds how many probes run at once, while --delay bounds how fast new
probes are handed off even when workers are idle, so a sweep always takes
at least delay*(ports-1) of wall time.`,
	Run: func(cmd *cobra.Command, args []string) {

		cfg := loadConfig()

		if !cmd.Flags().Changed("workers") {
			workers = cfg.Scan.Workers
		}
		if !cmd.Flags().Changed("timeout") {
			probeTimeout = time.Duration(cfg.Scan.Timeout)
		}
		if !cmd.Flags().Changed("delay") {
			submitDelay = time.Duration(cfg.Scan.Delay)
		}

		ports, err := scan.ParsePorts(portSelection)
		if err != nil {
			log.Error(err)
			os.Exit(1)
		}

		sweeper := scan.NewSweeper(scanHost, workers, probeTimeout, submitDelay)

		log.Infof("Starting scan on %s ports=%d workers=%d", scanHost, len(ports), workers)

		outcome, err := sweeper.Sweep(context.Background(), ports)
		if err != nil {
			log.Error(err)
			os.Exit(1)
		}

		openPorts := "none"
		if len(outcome.Open) > 0 {
			openPorts = fmt.Sprint(outcome.Open)
		}
		log.Infof("Scan complete in %s. Open ports: %s", outcome.Elapsed.Round(time.Millisecond), openPorts)

		fmt.Println(outcome.String())
	},
}
