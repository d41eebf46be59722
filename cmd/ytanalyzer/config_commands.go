package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ytanalyzer/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := configTarget(targetPath)
			if err != nil {
				return err
			}
			if err := writeSampleConfig(target, overwrite); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set llm.api_key (or export OPENAI_API_KEY) before analysing videos.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// configTarget resolves --path, falling back to the per-user default.
func configTarget(flagValue string) (string, error) {
	if flagValue = strings.TrimSpace(flagValue); flagValue != "" {
		target, err := config.ExpandPath(flagValue)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return target, nil
	}
	target, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return target, nil
}

func writeSampleConfig(target string, overwrite bool) error {
	if !overwrite {
		_, err := os.Stat(target)
		switch {
		case err == nil:
			return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("check config path: %w", err)
		}
	}
	if err := config.CreateSample(target); err != nil {
		return fmt.Errorf("create sample config: %w", err)
	}
	return nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and summarize the effective settings",
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(*ctx.configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			printConfigSummary(cmd.OutOrStdout(), cfg, path, exists)
			return nil
		},
	}
}

func printConfigSummary(out io.Writer, cfg *config.Config, path string, exists bool) {
	source := path
	if !exists {
		source = path + " (missing, defaults used)"
	}
	active := cfg.ActiveLLM()
	whisper := "off by default"
	if cfg.Whisper.Enabled {
		whisper = "on by default"
	}
	rows := [][]string{
		{"Config", source},
		{"Output", cfg.Paths.OutputDir},
		{"Database", cfg.DatabasePath()},
		{"LLM", fmt.Sprintf("%s (%s)", active.Model, active.Provider)},
		{"Whisper", fmt.Sprintf("%s, %s on %s", whisper, cfg.Whisper.Model, cfg.Whisper.Device)},
		{"Confirm above", fmt.Sprintf("%d tokens", cfg.LLM.TokenConfirmThreshold)},
	}
	fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil))
	if err := cfg.RequireLLMKey(); err != nil {
		fmt.Fprintf(out, "Warning: %v\n", err)
	}
	fmt.Fprintln(out, "Configuration valid")
}
