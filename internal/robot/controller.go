package robot

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"
)

// Digital output assignments on the robot controller.
const (
	// OutputEnabled signals to the arm program that actuation is armed.
	OutputEnabled = 4
	// OutputProgramSelect selects between the two routines (low = program 1).
	OutputProgramSelect = 5
	// OutputExecute is the trigger line pulsed to start the selected routine.
	OutputExecute = 6
)

// Default controller ports and timings.
const (
	DefaultDashboardPort = 29999
	DefaultScriptPort    = 30002
	DefaultIOTimeout     = 2 * time.Second
	DefaultMainProgram   = "main.urp"
)

// Config holds connection settings for a Controller.
type Config struct {
	Host          string
	DashboardPort int
	ScriptPort    int
	IOTimeout     time.Duration
	MainProgram   string
}

// DefaultConfig returns a Config with the standard controller ports.
func DefaultConfig(host string) Config {
	return Config{
		Host:          host,
		DashboardPort: DefaultDashboardPort,
		ScriptPort:    DefaultScriptPort,
		IOTimeout:     DefaultIOTimeout,
		MainProgram:   DefaultMainProgram,
	}
}

// Controller implements Actuator against a Universal Robots controller.
// Digital outputs are driven over the secondary script interface and
// program state is queried over the dashboard server. Both are plain TCP
// text protocols; every operation carries a deadline.
type Controller struct {
	config Config

	mu        sync.Mutex
	dashboard net.Conn
	dashRead  *bufio.Reader
	script    net.Conn
	connected bool
}

// NewController creates a Controller for the given configuration.
// The connection is not opened until Connect is called.
func NewController(config Config) *Controller {
	if config.DashboardPort == 0 {
		config.DashboardPort = DefaultDashboardPort
	}
	if config.ScriptPort == 0 {
		config.ScriptPort = DefaultScriptPort
	}
	if config.IOTimeout <= 0 {
		config.IOTimeout = DefaultIOTimeout
	}
	if config.MainProgram == "" {
		config.MainProgram = DefaultMainProgram
	}
	return &Controller{config: config}
}

// Connect opens the dashboard and script connections, loads and starts the
// main program, and clears all outputs to a safe state.
func (c *Controller) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	dashAddr := net.JoinHostPort(c.config.Host, fmt.Sprintf("%d", c.config.DashboardPort))
	dashboard, err := net.DialTimeout("tcp", dashAddr, c.config.IOTimeout)
	if err != nil {
		return fmt.Errorf("dial dashboard %s: %w", dashAddr, err)
	}

	scriptAddr := net.JoinHostPort(c.config.Host, fmt.Sprintf("%d", c.config.ScriptPort))
	script, err := net.DialTimeout("tcp", scriptAddr, c.config.IOTimeout)
	if err != nil {
		dashboard.Close()
		return fmt.Errorf("dial script port %s: %w", scriptAddr, err)
	}

	c.dashboard = dashboard
	c.dashRead = bufio.NewReader(dashboard)
	c.script = script
	c.connected = true

	// The dashboard server greets with a banner line on connect
	if _, err := c.readDashboardLine(); err != nil {
		c.closeLocked()
		return fmt.Errorf("read dashboard banner: %w", err)
	}

	if _, err := c.dashboardCommand("load " + c.config.MainProgram); err != nil {
		c.closeLocked()
		return fmt.Errorf("load main program: %w", err)
	}
	if _, err := c.dashboardCommand("play"); err != nil {
		c.closeLocked()
		return fmt.Errorf("start main program: %w", err)
	}

	if err := c.clearOutputsLocked(); err != nil {
		c.closeLocked()
		return fmt.Errorf("clear outputs: %w", err)
	}

	log.Printf("Connected to robot controller at %s", c.config.Host)
	return nil
}

// Close stops the main program, clears all outputs, and closes both
// connections. It is safe to call on an unconnected controller.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	// Best-effort shutdown sequence; report the first failure but keep going.
	var firstErr error
	if err := c.clearOutputsLocked(); err != nil {
		firstErr = err
	}
	if _, err := c.dashboardCommand("stop"); err != nil && firstErr == nil {
		firstErr = err
	}

	c.closeLocked()
	return firstErr
}

// IsConnected reports whether the controller connection is open.
func (c *Controller) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// SetEnabled drives the armed output.
func (c *Controller) SetEnabled(enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setOutputLocked(OutputEnabled, enabled)
}

// SetProgramSelection drives the program-select output.
// ProgramTwo asserts the line; ProgramOne (the default) clears it.
func (c *Controller) SetProgramSelection(p Program) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setOutputLocked(OutputProgramSelect, p == ProgramTwo)
}

// PulseExecute asserts the trigger output, holds it for d, and deasserts it.
// The deassert is attempted even if the hold was interrupted by an error so
// the trigger line is never left high.
func (c *Controller) PulseExecute(d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.setOutputLocked(OutputExecute, true); err != nil {
		return err
	}

	time.Sleep(d)

	return c.setOutputLocked(OutputExecute, false)
}

// ProgramFinished queries the dashboard program state.
// The triggered routine signals completion by returning the main program to
// its idle wait, reported as "running: false".
func (c *Controller) ProgramFinished() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reply, err := c.dashboardCommand("running")
	if err != nil {
		return false, err
	}

	return strings.Contains(strings.ToLower(reply), "false"), nil
}

// setOutputLocked sends a single set_standard_digital_out script line.
// Callers must hold c.mu.
func (c *Controller) setOutputLocked(output int, high bool) error {
	if !c.connected {
		return ErrNotConnected
	}

	value := "False"
	if high {
		value = "True"
	}

	line := fmt.Sprintf("set_standard_digital_out(%d, %s)\n", output, value)
	if err := c.script.SetWriteDeadline(time.Now().Add(c.config.IOTimeout)); err != nil {
		return fmt.Errorf("set script deadline: %w", err)
	}
	if _, err := c.script.Write([]byte(line)); err != nil {
		return fmt.Errorf("set output %d: %w", output, err)
	}
	return nil
}

// clearOutputsLocked drives all three outputs low. Callers must hold c.mu.
func (c *Controller) clearOutputsLocked() error {
	for _, output := range []int{OutputEnabled, OutputProgramSelect, OutputExecute} {
		if err := c.setOutputLocked(output, false); err != nil {
			return err
		}
	}
	return nil
}

// dashboardCommand sends one dashboard command and returns its reply line.
// Callers must hold c.mu.
func (c *Controller) dashboardCommand(cmd string) (string, error) {
	if !c.connected {
		return "", ErrNotConnected
	}

	if err := c.dashboard.SetWriteDeadline(time.Now().Add(c.config.IOTimeout)); err != nil {
		return "", fmt.Errorf("set dashboard deadline: %w", err)
	}
	if _, err := c.dashboard.Write([]byte(cmd + "\n")); err != nil {
		return "", fmt.Errorf("dashboard %q: %w", cmd, err)
	}

	reply, err := c.readDashboardLine()
	if err != nil {
		return "", fmt.Errorf("dashboard %q reply: %w", cmd, err)
	}
	return reply, nil
}

// readDashboardLine reads a single reply line with a deadline.
// Callers must hold c.mu.
func (c *Controller) readDashboardLine() (string, error) {
	if err := c.dashboard.SetReadDeadline(time.Now().Add(c.config.IOTimeout)); err != nil {
		return "", err
	}
	line, err := c.dashRead.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// closeLocked tears down both connections. Callers must hold c.mu.
func (c *Controller) closeLocked() {
	if c.dashboard != nil {
		c.dashboard.Close()
		c.dashboard = nil
		c.dashRead = nil
	}
	if c.script != nil {
		c.script.Close()
		c.script = nil
	}
	c.connected = false
}
