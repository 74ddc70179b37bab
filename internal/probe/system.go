package probe

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	probeTimeout     = time.Second
	powerTimeout     = 2 * time.Second
	maxWindowNameLen = 200
)

// System samples real desktop state via external probes. Each call runs
// xdotool/wlrctl, xset and the power supply sysfs with individual timeouts.
type System struct {
	Now func() time.Time
}

// NewSystem returns a Sampler over the real desktop environment.
func NewSystem() *System {
	return &System{Now: time.Now}
}

func (s *System) Sample() Context {
	ctx := TimeContext(s.Now())
	ctx.ActiveWindow = activeWindow()
	ctx.ScreenOn = screenOn()
	ctx.OnBattery = onBattery()
	return ctx
}

func runProbe(timeout time.Duration, name string, args ...string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}

// activeWindow returns the focused window title, trying X11 then Wayland.
func activeWindow() *string {
	if out, ok := runProbe(probeTimeout, "xdotool", "getactivewindow", "getwindowname"); ok && out != "" {
		if len(out) > maxWindowNameLen {
			out = out[:maxWindowNameLen]
		}
		return &out
	}

	if out, ok := runProbe(probeTimeout, "wlrctl", "toplevel", "focus"); ok && out != "" {
		if len(out) > maxWindowNameLen {
			out = out[:maxWindowNameLen]
		}
		return &out
	}

	return nil
}

// screenOn reports whether the display is awake.
func screenOn() *bool {
	if out, ok := runProbe(probeTimeout, "gnome-screensaver-command", "-q"); ok {
		on := !strings.Contains(strings.ToLower(out), "is active")
		return &on
	}

	if out, ok := runProbe(probeTimeout, "xset", "q"); ok {
		on := !strings.Contains(out, "Monitor is Off")
		return &on
	}

	return nil
}

// onBattery reports whether the machine runs on battery, preferring sysfs
// over the slower upower query.
func onBattery() *bool {
	if v := sysfsBattery(); v != nil {
		return v
	}

	if out, ok := runProbe(powerTimeout, "upower", "-i", "/org/freedesktop/UPower/devices/battery_BAT0"); ok {
		lower := strings.ToLower(out)
		if strings.Contains(lower, "state:") {
			discharging := strings.Contains(lower, "discharging")
			return &discharging
		}
	}

	return nil
}

func sysfsBattery() *bool {
	entries, err := os.ReadDir("/sys/class/power_supply")
	if err != nil {
		return nil
	}

	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "BAT") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join("/sys/class/power_supply", e.Name(), "status"))
		if err != nil {
			continue
		}
		discharging := strings.EqualFold(strings.TrimSpace(string(raw)), "discharging")
		return &discharging
	}

	return nil
}
