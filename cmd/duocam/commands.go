package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tauraamui/duocam/internal/config"
	"github.com/tauraamui/duocam/pkg/camera"
	"github.com/tauraamui/duocam/pkg/composite"
	"github.com/tauraamui/duocam/pkg/configdef"
	"github.com/tauraamui/duocam/pkg/display"
	"github.com/tauraamui/duocam/pkg/duocam"
	"github.com/tauraamui/duocam/pkg/log"
	"github.com/tauraamui/duocam/pkg/video/videobackend"
	"github.com/tauraamui/duocam/pkg/video/videoframe"
	"gocv.io/x/gocv"
)

func newRootCmd() *cobra.Command {
	var headless bool

	root := &cobra.Command{
		Use:          name,
		Short:        description,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(headless)
		},
	}
	root.Flags().BoolVar(&headless, "headless", false, "use the terminal as the capture trigger instead of a preview window")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Show both cameras live and capture on key press",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(headless)
		},
	}
	runCmd.Flags().BoolVar(&headless, "headless", false, "use the terminal as the capture trigger instead of a preview window")

	root.AddCommand(runCmd, newDevicesCmd(), newCaptureCmd(), newSetupCmd(), newRemoveSetupCmd())
	return root
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List video input devices and which role each would take",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			enumerator := camera.NewEnumerator(resolveBackend(cfg))
			devices, err := enumerator.VideoDevices(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, d := range devices {
				fmt.Fprintf(out, "%d\t%s\t%s\n", i, d.ID, d.Label)
			}

			assignment, err := camera.AssignRoles(devices)
			if err != nil {
				fmt.Fprintln(out, camera.InsufficientDevicesMessage)
				return err
			}
			fmt.Fprintf(out, "front: %s (%s)\nback: %s (%s)\n",
				assignment.Front.Label, assignment.Front.ID, assignment.Back.Label, assignment.Back.ID)
			return nil
		},
	}
}

func newCaptureCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Bind both cameras, save a single composite and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			session := newSession(cfg, resolveBackend(cfg), display.WriterAlerter{Out: cmd.ErrOrStderr()}, nil)
			if err := session.Start(ctx); err != nil {
				return err
			}
			defer session.Shutdown()

			readyCtx, cancel := context.WithTimeout(ctx, wait)
			defer cancel()
			if err := session.WaitReady(readyCtx); err != nil {
				return err
			}

			path, err := session.CaptureAndExport()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 10*time.Second, "how long to wait for both cameras to produce a frame")
	return cmd
}

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info("Setting up duocam...")
			if err := config.DefaultCreator().Create(); err != nil {
				if !errors.Is(err, configdef.ErrConfigAlreadyExists) {
					return err
				}
				log.Error(err.Error())
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Setup successful...")
			return nil
		},
	}
}

func newRemoveSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-setup",
		Short: "Delete the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info("Removing setup for duocam...")
			if err := config.DefaultDestroyer().Destroy(); err != nil {
				log.Error("unable to delete config file: %s", err.Error())
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removing setup successful...")
			return nil
		},
	}
}

func run(headless bool) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	log.Info("Starting duocam...")
	if headless {
		err = runHeadless(ctx, cfg)
	} else {
		err = runWindowed(ctx, cfg)
	}

	if cfg.Debug {
		var b bytes.Buffer
		gocv.MatProfile.WriteTo(&b, 1)
		fmt.Fprint(os.Stderr, b.String())
	}
	return err
}

func runWindowed(ctx context.Context, cfg configdef.Values) error {
	window := display.NewWindow(name)
	defer window.Close()

	notifier := display.NewPollingNotifier(window)
	keeper := display.NewKeeper(window, notifier)

	var fullscreen duocam.Fullscreen
	watch := duocam.FullscreenWatch{}
	if cfg.Fullscreen {
		fullscreen = keeper
		watch = duocam.FullscreenWatch{Notifier: notifier, Keeper: keeper}
	}

	session := newSession(cfg, resolveBackend(cfg), display.WindowAlerter{Title: name + " alert"}, fullscreen)
	session.SetViewport(window)
	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Shutdown()

	return duocam.RunWindowed(ctx, session, window, watch, cfg.FPS)
}

func runHeadless(ctx context.Context, cfg configdef.Values) error {
	session := newSession(cfg, resolveBackend(cfg), display.WriterAlerter{Out: os.Stderr}, nil)
	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Shutdown()

	actions, restore, err := display.NewTerminalTrigger(os.Stdin).Listen(ctx)
	defer restore()
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stderr, "Press space, enter or c to capture, q to quit\r\n")
	return duocam.RunHeadless(ctx, session, actions)
}

func newSession(cfg configdef.Values, backend videobackend.Backend, alerter display.Alerter, fullscreen duocam.Fullscreen) *duocam.Session {
	return duocam.NewSession(duocam.Settings{
		Backend:         backend,
		BindTimeout:     time.Duration(cfg.BindTimeoutSeconds) * time.Second,
		ReleaseOnRebind: cfg.ReleaseOnRebind,
		Exporter:        composite.Exporter{Directory: cfg.CaptureDirectory, Prefix: cfg.CapturePrefix},
		Orientation: composite.OrientationResolver{
			Force:    cfg.Orientation,
			Fallback: videoframe.Dimensions{W: cfg.Viewport.Width, H: cfg.Viewport.Height},
		},
		DateTimeLabel:  cfg.DateTimeLabel,
		DateTimeFormat: cfg.DateTimeFormat,
		Alerter:        alerter,
		Fullscreen:     fullscreen,
		OnCapture: func(path string) {
			fmt.Fprintf(os.Stdout, "%s\r\n", path)
		},
	})
}

func resolveConfig() (configdef.Values, error) {
	cfg, err := config.DefaultResolver().Resolve()
	if err != nil {
		return configdef.Values{}, err
	}
	if cfg.Debug && len(os.Getenv("DUOCAM_LOGGING_LEVEL")) == 0 {
		log.SetLevel("debug")
	}
	return cfg, nil
}

func resolveBackend(cfg configdef.Values) videobackend.Backend {
	return videobackend.Resolve(backendName(cfg.Backend, os.Getenv("DUOCAM_VIDEO_BACKEND")))
}

// backendName lets the environment override the configured backend.
func backendName(configured, override string) string {
	if o := strings.TrimSpace(strings.ToLower(override)); len(o) > 0 {
		return o
	}
	return configured
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
