// camowner is the per-camera owner process. It publishes the camera's
// authoritative state over MQTT, applies set-requests from control surfaces
// and drives the rig's tally lights.
package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"camdeck/config"
	"camdeck/debug"
	"camdeck/mqtt"
	"camdeck/owner"
)

var (
	flagBroker string
	flagName   string
	flagDebug  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "camowner",
		Short: "Camera-side owner process",
		Long: `camowner owns one camera: it announces itself on the bus, answers
dump-all broadcasts with a full state snapshot, validates and applies
set-requests, and follows the switcher's tally. It currently ships with
the simulated camera driver.`,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&flagBroker, "broker", "", "MQTT broker URL (overrides the config file)")
	rootCmd.Flags().StringVar(&flagName, "name", "", "Device name on the bus (defaults to the hostname)")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "Write a debug log under ~/.config/camdeck")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if flagDebug {
		if err := debug.Enable(); err != nil {
			return err
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagBroker != "" {
		cfg.BrokerURL = flagBroker
	}
	name := flagName
	if name == "" {
		name, err = os.Hostname()
		if err != nil {
			return err
		}
	}

	o := owner.New(name, owner.NewSimDriver(), owner.LogLights{})

	done := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		slog.Info("shutting down")
		close(done)
	}()

	// The broker may not be up yet; keep retrying the session. Once
	// connected, paho reconnects on its own and Attach re-announces the
	// owner on every reconnect.
	for {
		bus, err := mqtt.New(cfg.BrokerURL, mqtt.Options{
			ClientPrefix: "camowner-" + name,
			WillTopic:    o.StatusTopic(),
			WillPayload:  "offline",
			Keepalive:    3 * time.Second,
			OnConnect:    func() { o.Reattach() },
		})
		if err != nil {
			slog.Error("broker connect failed", "error", err)
			select {
			case <-done:
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		if err := o.Attach(bus); err != nil {
			bus.Disconnect()
			slog.Error("attach failed", "error", err)
			select {
			case <-done:
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		err = o.Run(done)
		bus.Disconnect()
		if err == nil {
			return nil
		}
		var fault *owner.DriverFault
		if errors.As(err, &fault) {
			return err
		}
		slog.Error("session ended", "error", err)
		select {
		case <-done:
			return nil
		case <-time.After(time.Second):
		}
	}
}
