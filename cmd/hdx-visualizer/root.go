/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"hdxvis/internal/catalog"
	"hdxvis/internal/config"
	"hdxvis/internal/log"
	"hdxvis/pkg/spec"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, spec.AppName)
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringP("library", "l", "", "Directory scanned for .wav tracks")
	lo.Must0(viper.BindPFlag(config.LibraryPath, flags.Lookup("library")))

	flags.String("log-level", "", "Log level")
	lo.Must0(viper.BindPFlag(config.LogsLevel, flags.Lookup("log-level")))

	rootCmd.Flags().StringP("socket", "s", "", "Control socket path, empty string to disable")
	lo.Must0(viper.BindPFlag(config.ControlSocket, rootCmd.Flags().Lookup("socket")))

	rootCmd.Flags().Duration("interval", 0, "Position clock interval")
	lo.Must0(viper.BindPFlag(config.ClockInterval, rootCmd.Flags().Lookup("interval")))

	rootCmd.Flags().Float64("volume", 0, "Playback gain, base-2 exponent")
	lo.Must0(viper.BindPFlag(config.AudioVolume, rootCmd.Flags().Lookup("volume")))

	rootCmd.Flags().Bool("restore", true, "Reopen the last track at its saved position")
	lo.Must0(viper.BindPFlag(config.StateRestore, rootCmd.Flags().Lookup("restore")))

	rootCmd.Flags().StringP("open", "o", "", "Track id to open on start, overrides the saved one")

	rootCmd.AddCommand(listCmd, infoCmd, configCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   spec.AppName,
	Short: "Terminal audio player with a live waveform",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return log.Setup()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		open := lo.Must(cmd.Flags().GetString("open"))
		return run(cmd.Context(), open)
	},
	SilenceUsage: true,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tracks of the library",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := catalog.Scan(viper.GetString(config.LibraryPath))
		if err != nil {
			return err
		}
		for _, e := range lib.List() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-32s %s\n", e.ID, e.Name, clock(e.Duration))
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <track id>...",
	Short: "Show the wav header of tracks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := catalog.Scan(viper.GetString(config.LibraryPath))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, strings.Repeat("=", 75))
		fmt.Fprintf(out, " %-24s | %-8s | %-5s | %-3s | %-6s | %s\n", "TRACK", "RATE", "BITS", "CH", "TIME", "SIZE")
		fmt.Fprintln(out, strings.Repeat("-", 75))
		for _, id := range args {
			e, err := lib.Entry(id)
			if err != nil {
				return err
			}
			h, err := catalog.Inspect(e.Path)
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			fmt.Fprintf(out, " %-24s | %-8d | %-5d | %-3d | %-6s | %s\n",
				e.ID, h.SampleRate, h.BitDepth, h.Channels, clock(h.Duration), formatSize(h.Size))
		}
		fmt.Fprintln(out, strings.Repeat("=", 75))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show every setting with its value and environment variable",
	Run: func(cmd *cobra.Command, args []string) {
		for _, f := range config.Defaults {
			fmt.Fprintf(cmd.OutOrStdout(), "%-18s = %-40v %s\n  %s\n",
				f.Key, viper.Get(f.Key), f.Env(), f.Description)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), about())
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", developer_title, developer_subtitle)
	},
}

func formatSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit && exp < 2; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %s", float64(b)/float64(div), []string{"KB", "MB", "GB"}[exp])
}

func about() string {
	return fmt.Sprintf("%s V.%d.%d", spec.AppName, spec.VersionMajor, spec.VersionMinor)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error(err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
