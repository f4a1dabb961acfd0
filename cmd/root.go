package cmd

import (
	"context"
	"os"

	"github.com/creasty/defaults"
	"github.com/ethpandaops/logdedup/pkg/dedup"
	"github.com/ethpandaops/logdedup/pkg/dedup/store"
	"github.com/ethpandaops/logdedup/pkg/dedup/stream"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "logdedup",
	Short: "Suppress repeated messages inside a time window",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := initCommon()

		if len(args) > 0 {
			cfg.Source.Path = args[0]
		}

		d, err := dedup.New(log, cfg)
		if err != nil {
			log.WithError(err).Fatal("invalid config")
		}

		printer := newPrinter(noColor)

		if err := d.Start(context.Background(), printer.print); err != nil {
			log.WithError(err).Fatal("failed to process stream")
		}

		logFinalState(d.Store())
	},
	Args: cobra.MaximumNArgs(1),
}

var (
	cfgFile string
	noColor bool
	log     = logrus.New()
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

func loadConfigFromFile(file string) (*dedup.Config, error) {
	if file == "" {
		file = "config.yaml"
	}

	config := &dedup.Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	yamlFile, err := os.ReadFile(file)

	if err != nil {
		return nil, err
	}

	type plain dedup.Config

	if err := yaml.Unmarshal(yamlFile, (*plain)(config)); err != nil {
		return nil, err
	}

	return config, nil
}

func initCommon() *dedup.Config {
	log.SetFormatter(&logrus.TextFormatter{})

	log.WithField("cfgFile", cfgFile).Info("loading config")

	config, err := loadConfigFromFile(cfgFile)
	if err != nil {
		log.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(config.LoggingLevel)
	if err != nil {
		log.WithField("logLevel", config.LoggingLevel).Fatal("invalid logging level")
	}

	log.SetLevel(logLevel)

	return config
}

type printer struct {
	logged    *color.Color
	duplicate *color.Color
	cleared   *color.Color
}

func newPrinter(disable bool) *printer {
	if disable {
		color.NoColor = true
	}

	return &printer{
		logged:    color.New(color.FgGreen),
		duplicate: color.New(color.FgYellow),
		cleared:   color.New(color.FgCyan),
	}
}

func (p *printer) print(result stream.Result) {
	c := p.cleared

	switch result.Outcome {
	case stream.OutcomeLogged:
		c = p.logged
	case stream.OutcomeDuplicate:
		c = p.duplicate
	}

	_, _ = c.Fprintln(color.Output, result.String())
}

func logFinalState(s *store.Store) {
	lastSeen := s.LastSeen()
	history := s.History()

	log.WithFields(logrus.Fields{
		"last_seen": len(lastSeen),
		"history":   len(history),
	}).Info("final store state")

	if !log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	for message, ts := range lastSeen {
		log.WithFields(logrus.Fields{
			"message":   message,
			"timestamp": ts.Format(store.TimestampLayout),
		}).Debug("last seen")
	}

	for i, record := range history {
		log.WithFields(logrus.Fields{
			"index":     i,
			"message":   record.Message,
			"timestamp": record.Timestamp.Format(store.TimestampLayout),
		}).Debug("history record")
	}
}
