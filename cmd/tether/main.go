// Command tether connects to a rosbridge server and shows its interactive
// markers in a window. Dragging a marker publishes feedback to the robot.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/phanxgames/tether"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const dialTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "tether",
	Short: "View and drag a robot's interactive markers.",
	Long: `tether subscribes to an interactive marker server through rosbridge,
draws its markers in a 3D view and publishes feedback when you drag them.

Flags can also be set in a config file (--config) or through TETHER_*
environment variables, e.g. TETHER_URL or TETHER_FEEDBACK_TOPIC.`,
	SilenceUsage: true,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.String("config", "", "Config file (yaml, json or toml).")
	flags.String("url", "ws://localhost:9090", "rosbridge websocket URL.")
	flags.String("topic", "/basic_controls/update_full", "Interactive marker snapshot topic.")
	flags.String("update-topic", "/basic_controls/update", "Incremental update topic. Empty disables updates after the snapshot.")
	flags.String("feedback-topic", "/basic_controls/feedback", "Feedback topic. Empty disables feedback.")
	flags.Int("queue-size", 1, "Subscription queue length.")
	flags.Int("width", 1280, "Window width.")
	flags.Int("height", 720, "Window height.")
	flags.Bool("hidden", false, "Start with markers hidden.")
	flags.Bool("fps", false, "Show the FPS overlay.")
	flags.Bool("debug", false, "Log at debug level.")
	flags.String("script", "", "JSON input script to replay.")
}

func loadConfig(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	viper.SetEnvPrefix("TETHER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func optionalTopic(key string) *tether.TopicName {
	name := viper.GetString(key)
	if name == "" {
		return nil
	}
	return &tether.TopicName{Name: name}
}

func run(ctx context.Context) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Str("component", "tether").Logger()
	tether.SetLogger(log)

	opts := tether.DefaultOptions()
	opts.QueueSize = viper.GetInt("queue-size")
	opts.Hidden = viper.GetBool("hidden")
	opts.UpdateTopic = optionalTopic("update-topic")
	opts.FeedbackTopic = optionalTopic("feedback-topic")
	if err := opts.Validate(); err != nil {
		return err
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	url := viper.GetString("url")
	client, err := tether.DialRosbridge(dialCtx, url)
	if err != nil {
		return err
	}
	defer client.Close()
	log.Info().Str("url", url).Msg("connected")

	width, height := viper.GetInt("width"), viper.GetInt("height")
	viewer := tether.NewViewer(width, height)
	viewer.SetDebugMode(viper.GetBool("debug"))
	viewer.AddTransport(client)

	markers, err := viewer.AddInteractiveMarkers(client, tether.TopicName{Name: viper.GetString("topic")}, opts)
	if err != nil {
		return err
	}
	defer viewer.Destroy()
	log.Info().Str("client_id", markers.ClientID()).Msg("subscribed")

	if path := viper.GetString("script"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		runner, err := tether.LoadTestScript(data)
		if err != nil {
			return err
		}
		viewer.SetTestRunner(runner)
	}

	viewer.SetUpdateFunc(func() error {
		if err := client.Err(); err != nil {
			return fmt.Errorf("rosbridge connection lost: %w", err)
		}
		return nil
	})

	return tether.Run(viewer, tether.RunConfig{
		Title:   "tether - " + url,
		Width:   width,
		Height:  height,
		ShowFPS: viper.GetBool("fps"),
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
