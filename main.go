package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/agent"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cfg struct {
	config.Config
}
type cli struct {
	cfg cfg
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	cmd.Flags().String("namespace", "wa", "namespace used in storage")
	cmd.Flags().Int("http-port", 8080, "http port for rest endpoints")
	cmd.Flags().Int("worker-count", 16, "number of dispatch workers")
	cmd.Flags().Int("worker-capacity", 512, "dispatch worker channel capacity")
	cmd.Flags().Int("batch-size", 32, "dispatch queue poll batch size")
	cmd.Flags().Int("max-attempts", 3, "max attempts per dispatch job")
	cmd.Flags().Duration("base-backoff", 2*time.Second, "base retry backoff")
	cmd.Flags().Duration("poll-interval", time.Second, "dispatch queue poll interval")
	cmd.Flags().Duration("scheduler-tick", time.Minute, "time trigger evaluation interval")
	cmd.Flags().Duration("monitor-tick", time.Minute, "connection status check interval")
	cmd.Flags().Int("max-steps", 100, "max actions per flow invocation")
	cmd.Flags().String("bridge-url", "http://localhost:8081", "base url of the session bridge backend")
	cmd.Flags().String("cloud-url", "https://graph.facebook.com/v17.0", "base url of the cloud api backend")
	cmd.Flags().Duration("definition-ttl", 5*time.Minute, "flow definition cache ttl")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	var err error

	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	viper.SetConfigFile(configFile)

	if err = viper.ReadInConfig(); err != nil {
		// it's ok if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.WorkerCount = viper.GetInt("worker-count")
	c.cfg.WorkerCapacity = viper.GetInt("worker-capacity")
	c.cfg.BatchSize = viper.GetInt("batch-size")
	c.cfg.MaxAttempts = viper.GetInt("max-attempts")
	c.cfg.BaseBackoff = viper.GetDuration("base-backoff")
	c.cfg.PollInterval = viper.GetDuration("poll-interval")
	c.cfg.SchedulerTick = viper.GetDuration("scheduler-tick")
	c.cfg.MonitorTick = viper.GetDuration("monitor-tick")
	c.cfg.MaxSteps = viper.GetInt("max-steps")
	c.cfg.BridgeBaseUrl = viper.GetString("bridge-url")
	c.cfg.CloudBaseUrl = viper.GetString("cloud-url")
	c.cfg.DefinitionTTL = viper.GetDuration("definition-ttl")
	return nil
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	agent, err := agent.New(c.cfg.Config)
	if err != nil {
		panic(err)
	}
	err = agent.Start()
	if err != nil {
		panic(err)
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	return agent.Shutdown()
}

func main() {
	cli := &cli{}

	cmd := &cobra.Command{
		Use:     "wa-automation",
		PreRunE: cli.setupConfig,
		RunE:    cli.run,
	}

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
