// tasksim drives a scripted scene through a task list at a fixed frame rate.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnatoleLucet/task"
	"github.com/AnatoleLucet/task/internal/logging"
)

var (
	configPath string
	frames     int
	fps        int
	pressAt    int
	profile    bool
	logLevel   string
	logFormat  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tasksim",
		Short: "Run a scripted scene through the task scheduler",
		Long: `tasksim simulates a game loop calling List.Update once per frame.

Examples:
  # Ten seconds at 60 fps, key pressed on frame 400
  tasksim --frames 600 --press 400

  # Dump per-frame allocation stats at the end
  tasksim --profile --log-level debug`,
		Args: cobra.NoArgs,
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.Flags().IntVarP(&frames, "frames", "n", 600, "Number of frames to simulate")
	rootCmd.Flags().IntVar(&fps, "fps", 60, "Simulated frame rate")
	rootCmd.Flags().IntVar(&pressAt, "press", 420, "Frame on which a key is pressed (0 = never)")
	rootCmd.Flags().BoolVar(&profile, "profile", false, "Collect and dump per-frame statistics")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "", "Log format: text, json")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg := task.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = task.LoadConfig(configPath); err != nil {
			return err
		}
	}

	// flags win over the file
	if cmd.Flags().Changed("profile") {
		cfg.Profile = profile
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	tasks := task.NewList(task.ListWithConfig(cfg), task.ListWithLogger(logger))

	s := newScene(tasks, logger, pressAt)
	dt := 1 / float32(fps)

	for frame := 1; frame <= frames && tasks.Len() > 0; frame++ {
		if err := s.tick(frame, dt); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
	}

	logger.Info("simulation done", "time", tasks.Time(), "tasks left", tasks.Len())
	tasks.Stop()

	if cfg.Profile {
		return tasks.Profiler().Dump(cmd.OutOrStdout())
	}
	return nil
}
