// camdeck binds an X-Touch Mini control surface to remote cameras over MQTT.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"camdeck/config"
	"camdeck/debug"
	"camdeck/lightring"
	"camdeck/mqtt"
	"camdeck/reconcile"
	"camdeck/tui"
	"camdeck/xtouch"
)

var (
	flagBroker string
	flagPort   string
	flagTUI    bool
	flagDebug  bool
	flagInit   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "camdeck",
		Short: "Control-surface bridge for remote cameras",
		Long: `camdeck turns an X-Touch Mini into a remote camera controller. Encoder
turns become set-requests on the MQTT bus; the LED rings always follow
whatever authoritative state the camera owners publish back, so the
surface and the cameras converge even across lost messages or restarts.`,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&flagBroker, "broker", "", "MQTT broker URL (overrides the config file)")
	rootCmd.Flags().StringVar(&flagPort, "port", "", "MIDI port name (overrides the config file)")
	rootCmd.Flags().BoolVar(&flagTUI, "tui", false, "Run the terminal monitor; works without a surface attached")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "Write a debug log under ~/.config/camdeck")
	rootCmd.Flags().BoolVar(&flagInit, "init", false, "Write a default config file and exit")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// nullPanel renders nowhere; used in monitor-only mode.
type nullPanel struct{}

func (nullPanel) SetRing(encoder, pos int)                    {}
func (nullPanel) Special(encoder int, mode lightring.Special) {}
func (nullPanel) SetButtonLED(button int, on bool)            {}

func run(cmd *cobra.Command, args []string) error {
	if flagInit {
		cfg := config.DefaultConfig()
		if err := cfg.Save(); err != nil {
			return err
		}
		path, _ := config.ConfigPath()
		slog.Info("wrote default config", "path", path)
		return nil
	}

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
	if flagPort != "" {
		cfg.Surface.PortName = flagPort
	}

	events := make(chan xtouch.Event, 32)
	var panel reconcile.Panel = nullPanel{}

	surface, err := xtouch.Open(cfg.Surface.PortName)
	if err != nil {
		if !flagTUI {
			return err
		}
		slog.Warn("surface unavailable, monitor only", "error", err)
	} else {
		panel = surface
		defer surface.Close()
		go func() {
			for ev := range surface.Events() {
				events <- ev
			}
		}()
	}

	// The reconciler re-subscribes and resyncs on every broker reconnect;
	// the mutex covers the window before the first Start.
	var mu sync.Mutex
	var rec *reconcile.Reconciler
	bus, err := mqtt.New(cfg.BrokerURL, mqtt.Options{
		ClientPrefix: "camdeck",
		OnConnect: func() {
			mu.Lock()
			r := rec
			mu.Unlock()
			if r == nil {
				return
			}
			if err := r.Start(); err != nil {
				slog.Error("resubscribe after reconnect", "error", err)
			}
		},
	})
	if err != nil {
		return err
	}
	defer bus.Disconnect()

	mu.Lock()
	rec = reconcile.New(bus, panel, cfg.Cameras)
	r := rec
	mu.Unlock()
	if err := r.Start(); err != nil {
		return err
	}

	done := make(chan struct{})
	go r.Run(done, events)

	if flagTUI {
		p := tea.NewProgram(tui.NewModel(r, events), tea.WithAltScreen())
		_, err := p.Run()
		close(done)
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")
	close(done)
	return nil
}
