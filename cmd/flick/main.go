// Package main provides the CLI entrypoint for flick.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/flickread/flick/internal/assets"
	"github.com/flickread/flick/internal/config"
	"github.com/flickread/flick/internal/loader"
	"github.com/flickread/flick/internal/playback"
	"github.com/flickread/flick/internal/registry"
	"github.com/flickread/flick/internal/source"
	"github.com/flickread/flick/internal/tui"
)

var version = "dev"

const loadWorkers = 2

var (
	readWPM        int
	readIntervalMs int
	readBurst      int
	readKind       string
	readSave       string
	readFresh      bool

	addKind string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "flick [read name or locator]",
		Short:         "RSVP speed reader for files, web pages, and e-books",
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runReadCmd,
	}
	rootCmd.Flags().IntVar(&readWPM, "wpm", 0, "words per minute (overrides config)")
	rootCmd.Flags().IntVar(&readIntervalMs, "interval", 0, "milliseconds per word (overrides wpm)")
	rootCmd.Flags().IntVar(&readBurst, "burst", 0, "words per burst before resting")
	rootCmd.Flags().StringVar(&readKind, "kind", "", "force source kind: file, web, or ebook")
	rootCmd.Flags().StringVar(&readSave, "save", "", "register the locator under this name before reading")
	rootCmd.Flags().BoolVar(&readFresh, "fresh", false, "start from the beginning, ignoring stored progress")

	rootCmd.AddCommand(newReadsCmd())
	return rootCmd
}

func runReadCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settings := fileCfg.Settings()
	if cmd.Flags().Changed("wpm") && readWPM > 0 {
		settings.FlipInterval = playback.IntervalForWPM(readWPM)
	}
	if cmd.Flags().Changed("interval") && readIntervalMs > 0 {
		settings.FlipInterval = time.Duration(readIntervalMs) * time.Millisecond
	}
	if cmd.Flags().Changed("burst") && readBurst > 0 {
		settings.BurstLength = readBurst
	}

	store, err := registry.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer store.Close()

	cache, err := tui.NewCoverCache()
	if err != nil {
		return fmt.Errorf("failed to build cover cache: %w", err)
	}

	ctx := context.Background()
	var desc source.Descriptor
	var registered bool
	if len(args) == 1 {
		desc, registered, err = resolveRead(ctx, store, args[0])
		if err != nil {
			return err
		}
	} else {
		desc, registered, err = pickRead(ctx, store, cache)
		if err != nil || !registered {
			return err
		}
	}
	if readFresh {
		desc.Completion = 0
	}

	pipe := loader.New(loadWorkers)
	defer pipe.Close()

	model := tui.New(desc, settings, pipe, cache)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	if registered {
		if ratio, ok := model.Result(); ok {
			if err := store.UpdateCompletion(ctx, desc.Name, ratio); err != nil {
				fmt.Fprintf(os.Stderr, "failed to save progress: %v\n", err)
			}
		}
		if err := store.UpdateLastAccessed(ctx, desc.Name, time.Now()); err != nil {
			fmt.Fprintf(os.Stderr, "failed to stamp access time: %v\n", err)
		}
	}
	return nil
}

// pickRead runs the interactive picker over the registry. A dismissed picker
// is not an error; registered comes back false and the caller exits quietly.
func pickRead(ctx context.Context, store *registry.Store, cache *assets.Cache) (source.Descriptor, bool, error) {
	reads, err := store.List(ctx)
	if err != nil {
		return source.Descriptor{}, false, err
	}
	if len(reads) == 0 {
		fmt.Println("No reads registered. Add one with: flick reads add <name> <locator>")
		return source.Descriptor{}, false, nil
	}

	picker := tui.NewPicker(reads, cache)
	if _, err := tea.NewProgram(picker, tea.WithAltScreen()).Run(); err != nil {
		return source.Descriptor{}, false, fmt.Errorf("failed to run picker: %w", err)
	}
	desc, ok := picker.Choice()
	return desc, ok, nil
}

// resolveRead maps the positional argument to a descriptor. A registered
// name wins; anything else is treated as a locator. With --save the locator
// is registered first so progress persists across sessions.
func resolveRead(ctx context.Context, store *registry.Store, arg string) (source.Descriptor, bool, error) {
	desc, err := store.Get(ctx, arg)
	if err == nil {
		return desc, true, nil
	}
	if !errors.Is(err, registry.ErrNotFound) {
		return source.Descriptor{}, false, err
	}

	kind, err := kindFor(arg, readKind)
	if err != nil {
		return source.Descriptor{}, false, err
	}
	now := time.Now()
	desc = source.Descriptor{
		Name:         nameForLocator(arg),
		Kind:         kind,
		Locator:      arg,
		CreatedAt:    now,
		LastAccessed: now,
	}

	if readSave == "" {
		return desc, false, nil
	}
	desc.Name = readSave
	if err := store.Add(ctx, desc); err != nil {
		return source.Descriptor{}, false, err
	}
	return desc, true, nil
}

func kindFor(locator, forced string) (source.Kind, error) {
	if forced == "" {
		return source.InferKind(locator), nil
	}
	return source.ParseKind(forced)
}

func nameForLocator(locator string) string {
	if base := filepath.Base(locator); base != "." && base != "/" {
		return base
	}
	return locator
}

func newReadsCmd() *cobra.Command {
	readsCmd := &cobra.Command{
		Use:   "reads",
		Short: "Manage the read registry",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered reads, most recent first",
		Args:  cobra.NoArgs,
		RunE:  runReadsList,
	}

	addCmd := &cobra.Command{
		Use:   "add <name> <locator>",
		Short: "Register a read",
		Args:  cobra.ExactArgs(2),
		RunE:  runReadsAdd,
	}
	addCmd.Flags().StringVar(&addKind, "kind", "", "force source kind: file, web, or ebook")

	rmCmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a registered read",
		Args:  cobra.ExactArgs(1),
		RunE:  runReadsRm,
	}

	readsCmd.AddCommand(listCmd, addCmd, rmCmd)
	return readsCmd
}

func runReadsList(_ *cobra.Command, _ []string) error {
	store, err := registry.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer store.Close()

	reads, err := store.List(context.Background())
	if err != nil {
		return err
	}
	if len(reads) == 0 {
		fmt.Println("No reads registered. Add one with: flick reads add <name> <locator>")
		return nil
	}
	for _, d := range reads {
		fmt.Printf("%-20s  %-5s  %3.0f%%  %s\n", d.Name, d.Kind, d.Completion*100, d.Locator)
	}
	return nil
}

func runReadsAdd(_ *cobra.Command, args []string) error {
	store, err := registry.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer store.Close()

	kind, err := kindFor(args[1], addKind)
	if err != nil {
		return err
	}
	now := time.Now()
	return store.Add(context.Background(), source.Descriptor{
		Name:         args[0],
		Kind:         kind,
		Locator:      args[1],
		CreatedAt:    now,
		LastAccessed: now,
	})
}

func runReadsRm(_ *cobra.Command, args []string) error {
	store, err := registry.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer store.Close()

	return store.Delete(context.Background(), args[0])
}
