package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/cjeanneret/OrniPad/internal/config"
	"github.com/cjeanneret/OrniPad/internal/debug"
	"github.com/cjeanneret/OrniPad/internal/hw/bus"
	"github.com/cjeanneret/OrniPad/internal/hw/buttons"
	"github.com/cjeanneret/OrniPad/internal/hw/display"
	"github.com/cjeanneret/OrniPad/internal/hw/gpio"
	"github.com/cjeanneret/OrniPad/internal/hw/joyface"
	"github.com/cjeanneret/OrniPad/internal/logic/control"
	"github.com/cjeanneret/OrniPad/internal/logic/render"
	"github.com/cjeanneret/OrniPad/internal/net/broadcast"
	"github.com/cjeanneret/OrniPad/internal/sched"
	"github.com/cjeanneret/OrniPad/internal/telemetry"
	"github.com/cjeanneret/OrniPad/internal/web"
)

const (
	sweepDelay  = 2 * time.Millisecond
	mqttTimeout = 3 * time.Second
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start the read-only monitor on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	dest := flag.String("dest", "", "override telemetry destination as host:port")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if err := applyDest(cfg, *dest); err != nil {
		log.Fatalf("invalid -dest: %v", err)
	}
	if p := webPort.port(); p > 0 {
		cfg.Web.Port = p
	}

	// Initialize debug system. The console display owns stdout.
	debug.Init(cfg.Defaults.DebugLevel)
	logOut := io.Writer(os.Stdout)
	if cfg.Display.Type == config.DisplayConsole {
		logOut = os.Stderr
	}
	debug.SetOutput(logOut)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)
	debug.Value("Mock hardware", cfg.Defaults.MockHW)

	// Buttons
	debug.Step(1, "Initializing GPIO buttons")
	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockHW)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()
	panel, err := buttons.NewPanel(gpioDriver, buttons.Pins{
		A: cfg.Buttons.APin,
		B: cfg.Buttons.BPin,
		C: cfg.Buttons.CPin,
	})
	if err != nil {
		log.Fatalf("init buttons failed: %v", err)
	}
	debug.PrintStruct("Buttons config", cfg.Buttons)

	// Joystick face
	debug.Step(2, "Opening joystick bus")
	var responder bus.Responder
	if cfg.Defaults.MockHW {
		responder = joyface.NewSimulator().Respond
	}
	joyBus, err := bus.Open(cfg.Bus.Device, cfg.Defaults.MockHW, responder)
	if err != nil {
		log.Fatalf("open bus failed: %v", err)
	}
	defer joyBus.Close()
	joy := joyface.New(joyBus, cfg.Bus.JoystickAddr)
	debug.Value("Joystick address", fmt.Sprintf("0x%02x", cfg.Bus.JoystickAddr))
	if cfg.Bus.BootSweep {
		joy.Sweep(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)), sweepDelay)
	}

	// Display
	debug.Step(3, "Initializing display")
	surface, layout, closeSurface, err := newSurface(cfg)
	if err != nil {
		log.Fatalf("init display failed: %v", err)
	}
	defer closeSurface()
	renderer := render.NewRenderer(surface, layout)
	renderer.DrawTitle()
	debug.Value("Display type", cfg.Display.Type)

	// Network
	debug.Step(4, "Opening telemetry link")
	senders, err := newSenders(cfg)
	if err != nil {
		log.Fatalf("init network failed: %v", err)
	}
	debug.Value("Destination", cfg.DestAddr())

	state := telemetry.NewState()
	broadcaster := broadcast.NewTask(state, senders...)
	defer func() {
		if err := broadcaster.Close(); err != nil {
			log.Printf("closing senders failed: %v", err)
		}
	}()

	loop := control.NewLoop(joy, panel, state, control.ConfigFrom(cfg))

	debug.Section("Running")
	var group sched.Group
	group.Go(func() { loop.Run(ctx) })
	group.Start(ctx, sched.Task{Name: "display", Interval: cfg.DisplayTick(), Run: renderer.Tick(state)})
	group.Start(ctx, sched.Task{Name: "broadcast", Interval: cfg.BroadcastTick(), Run: broadcaster.Tick})

	if cfg.Web.Port > 0 {
		events := web.NewStatusBroadcaster()
		debug.SetOutput(io.MultiWriter(logOut, web.BroadcastWriter(events)))

		srv, err := web.NewServer(fmt.Sprintf(":%d", cfg.Web.Port), events, state)
		if err != nil {
			log.Fatalf("web server: %v", err)
		}
		monitor := web.NewMonitorTask(state, events)
		group.Start(ctx, sched.Task{Name: "monitor", Interval: cfg.MonitorTick(), Run: monitor.Tick})
		group.Go(func() {
			if err := srv.Run(ctx); err != nil {
				log.Printf("web server: %v", err)
			}
		})
	}

	<-ctx.Done()
	group.Wait()

	if err := joy.LEDsOff(); err != nil {
		debug.Verbose("LEDs off: %v", err)
	}
	stats := broadcaster.Stats()
	debug.Summary("Shutdown")
	debug.Info("Samples read: %d", state.Samples())
	debug.Info("Frames sent: %d, failed: %d", stats.Sent, stats.Failed)
}

// applyDest overrides the UDP destination with a "host:port" value.
// An empty value keeps the config.
func applyDest(cfg *config.Config, dest string) error {
	if dest == "" {
		return nil
	}
	host, portStr, err := net.SplitHostPort(dest)
	if err != nil {
		return err
	}
	if host == "" {
		return fmt.Errorf("missing host in %q", dest)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port %q", portStr)
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", port)
	}
	cfg.Network.DestHost = host
	cfg.Network.DestPort = port
	return nil
}

// newSurface selects the display surface and its layout. The returned
// func releases whatever the surface opened.
func newSurface(cfg *config.Config) (display.Surface, render.Layout, func(), error) {
	switch cfg.Display.Type {
	case config.DisplayConsole:
		return display.NewConsole(os.Stdout), render.ConsoleLayout(), func() {}, nil
	case config.DisplayNone:
		return display.Discard{}, render.ConsoleLayout(), func() {}, nil
	case config.DisplayHD44780:
		// The LCD gets its own bus handle; the joystick handle stays with the polling loop.
		var responder bus.Responder
		if cfg.Defaults.MockHW {
			responder = func(uint16, []byte, []byte) error { return nil }
		}
		b, err := bus.Open(cfg.Bus.Device, cfg.Defaults.MockHW, responder)
		if err != nil {
			return nil, render.Layout{}, nil, err
		}
		lcd, err := display.NewHD44780(b, cfg.Display.Addr, cfg.Display.Columns, cfg.Display.Rows)
		if err != nil {
			b.Close()
			return nil, render.Layout{}, nil, err
		}
		return lcd, render.CharLCDLayout(), func() { b.Close() }, nil
	default:
		return nil, render.Layout{}, nil, fmt.Errorf("unsupported display type: %s", cfg.Display.Type)
	}
}

// newSenders opens the UDP link and, when a broker is configured, the
// MQTT mirror. A broker that cannot be reached only disables the mirror.
func newSenders(cfg *config.Config) ([]broadcast.Sender, error) {
	udp, err := broadcast.NewUDPSender(cfg.DestAddr())
	if err != nil {
		return nil, err
	}
	senders := []broadcast.Sender{udp}

	if cfg.MQTT.Broker == "" {
		return senders, nil
	}
	mirror, err := broadcast.NewMQTTSender(cfg.MQTT.Broker, cfg.MQTT.Topic, cfg.MQTT.ClientID, mqttTimeout)
	if err != nil {
		debug.Error(fmt.Errorf("MQTT mirror disabled: %w", err))
		return senders, nil
	}
	debug.Value("MQTT topic", cfg.MQTT.Topic)
	return append(senders, mirror), nil
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
