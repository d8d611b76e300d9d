// Command esa-server is the main server process that answers all client
// requests and sequences changes to the accumulated set.
package main

import (
	goflag "flag"
	"fmt"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/Bren2010/esa/db"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "esa-server",
	Short: "esa-server serves a dynamic accumulator and its proofs over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "start the API server",
	Run: func(*cobra.Command, []string) {
		if configFile == "" {
			log.Fatalf("No config file provided, see --help.")
		}
		config, err := ReadConfig(configFile)
		if err != nil {
			log.Fatalf("Failed to load config file: %v", err)
		}
		serve(config)
	},
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "show version",
	Run: func(*cobra.Command, []string) {
		fmt.Printf("Version: %s, GoVersion: %s\n", Version, GoVersion)
	},
}

func init() {
	serveCommand.Flags().StringVar(&configFile, "config", "", "Location of config file.")
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)

	rootCmd.AddCommand(serveCommand)
	rootCmd.AddCommand(versionCommand)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(config *Config) {
	log.SetLevel(config.logLevel)

	// Start the mutator thread.
	store, err := db.NewLDBAccumulatorStore(config.DatabaseFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	acc, err := setupAccumulator(&config.AccumulatorConfig, store)
	if err != nil {
		log.Fatalf("Failed to initialize accumulator: %v", err)
	}
	accumulatorSize.Set(float64(acc.Size()))
	ch := make(chan MutationRequest)

	go mutator(acc, store, ch)

	if config.MetricsAddr != "" {
		go metrics(config.MetricsAddr)
	}

	// Setup handler for the API server.
	h := &Handler{homeRedirect: config.HomeRedirect, acc: acc, ch: ch}

	// Setup the API server.
	srv := &http.Server{
		Addr:      config.ServerAddr,
		Handler:   newRouter(h),
		TLSConfig: config.tlsConfig,

		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	log.WithField("addr", config.ServerAddr).Info("Starting API server.")
	if config.TLSConfig == nil {
		log.Fatal(srv.ListenAndServe())
	} else {
		log.Fatal(srv.ListenAndServeTLS("", ""))
	}
}
