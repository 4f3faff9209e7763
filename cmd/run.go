package cmd

import (
	"fmt"
	"os/exec"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gogpu/wlproxy/dispatch"
	"github.com/gogpu/wlproxy/harness"
	"github.com/gogpu/wlproxy/internal/config"
	"github.com/gogpu/wlproxy/internal/errlog"
	"github.com/gogpu/wlproxy/proxystate"
)

var (
	configPath string
	socketName string
	traceWire  bool
)

var runCmd = &cobra.Command{
	Use:   "run -- <command> [args...]",
	Short: "Dial the real compositor, listen for clients, and spawn the wrapped command",
	Args:  cobra.MinimumNArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProxy(args)
	},
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to config.yaml (defaults to the XDG config dir)")
	runCmd.Flags().StringVar(&socketName, "socket", "", "Display name to listen under (overrides config, defaults to wayland-1)")
	runCmd.Flags().BoolVar(&traceWire, "trace-wire", false, "Log every decoded message")
}

func runProxy(args []string) error {
	path := configPath
	if path == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			return errlog.WrapWithCode(errlog.ExitCodeConfig, "resolve config path", err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Command = args
	}
	if socketName != "" {
		cfg.Socket = socketName
	}
	if cfg.Socket == "" {
		cfg.Socket = "wayland-1"
	}
	if traceWire {
		cfg.TraceWire = true
	}
	if cfg.LogLevel != "" {
		errlog.SetLevel(cfg.LogLevel)
	}

	baseline, err := cfg.Baseline()
	if err != nil {
		return errlog.WrapWithCode(errlog.ExitCodeConfig, "resolve baseline", err)
	}
	mapper, err := cfg.Mapper(baseline)
	if err != nil {
		return errlog.WrapWithCode(errlog.ExitCodeConfig, "build mapper", err)
	}

	state := proxystate.New(baseline, mapper, errlog.Logger(), cfg.TraceWire)

	upstream, err := harness.DialUpstream(1)
	if err != nil {
		return errlog.NewWithSuggestion(errlog.ExitCodeUpstreamDial,
			fmt.Sprintf("dial upstream compositor: %v", err),
			"is a compositor running and is $WAYLAND_DISPLAY set correctly?")
	}
	state.Upstream = upstream
	defer upstream.Close()

	loop, err := dispatch.NewLoop(state)
	if err != nil {
		return errlog.WrapWithCode(errlog.ExitCodeGeneral, "start dispatch loop", err)
	}
	defer loop.Close()

	listener, err := harness.Listen(cfg.Socket)
	if err != nil {
		return errlog.NewWithSuggestion(errlog.ExitCodeListenFailed,
			fmt.Sprintf("listen on %s: %v", cfg.Socket, err),
			"another wlproxyd instance may already be using this socket name")
	}
	defer listener.Close()
	if err := loop.AddListener(listener); err != nil {
		return errlog.WrapWithCode(errlog.ExitCodeListenFailed, "register listener", err)
	}

	errlog.Info().Str("socket", listener.Name()).Msg(color.GreenString("listening"))

	var child *exec.Cmd
	childDone := make(chan error, 1)
	if len(cfg.Command) > 0 {
		child, err = listener.SpawnChild(cfg.Command[0], cfg.Command[1:])
		if err != nil {
			return errlog.WrapWithCode(errlog.ExitCodeChildSpawn, "spawn child", err)
		}
		// The proxy only exists to serve this one application: once it
		// exits, wake the (otherwise indefinitely blocked) epoll_wait
		// and let Run return instead of idling forever.
		go func() {
			err := child.Wait()
			childDone <- err
			loop.Shutdown()
		}()
	}

	runErr := loop.Run()

	var childErr error
	if child != nil {
		childErr = <-childDone
	}

	if runErr != nil {
		return errlog.WrapWithCode(errlog.ExitCodeProtocolFatal, "dispatch loop", runErr)
	}
	if exitErr, ok := childErr.(*exec.ExitError); ok {
		return errlog.WrapWithCode(errlog.ExitCode(exitErr.ExitCode()), "child process exited", childErr)
	}
	if childErr != nil {
		return errlog.WrapWithCode(errlog.ExitCodeGeneral, "wait for child", childErr)
	}
	return nil
}
