package startup

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/thatsimonsguy/intelligent-office/internal/config"
	"github.com/thatsimonsguy/intelligent-office/internal/model"
)

// BootScript renders a bash script that pins every office channel to its
// safe level before the controller starts: sensors as pulled-down inputs,
// the light relay and buzzer as outputs driven low.
func BootScript(cfg config.Config) string {
	var lines []string
	lines = append(lines, "#!/bin/bash", "", "# Office GPIO pin configuration at boot", "")

	pins := cfg.ChannelPins()
	pullUp := cfg.PullUpChannels()
	channels := make([]model.Channel, 0, len(pins))
	for ch := range pins {
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })

	for _, ch := range channels {
		lines = append(lines, fmt.Sprintf("# %s", ch))
		if ch == model.ChannelLightRelay || ch == model.ChannelBuzzer {
			lines = append(lines, fmt.Sprintf("pinctrl set %d op pn dl", pins[ch]))
		} else if pullUp[ch] {
			lines = append(lines, fmt.Sprintf("pinctrl set %d ip pu", pins[ch]))
		} else {
			lines = append(lines, fmt.Sprintf("pinctrl set %d ip pd", pins[ch]))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n") + "\n"
}

func WriteStartupScript(cfg config.Config) error {
	return os.WriteFile(cfg.BootScriptFilePath, []byte(BootScript(cfg)), 0755)
}

func InstallStartupService(cfg config.Config) error {
	unitContents := fmt.Sprintf(`[Unit]
Description=Configure office GPIO pins at boot
After=local-fs.target

[Service]
Type=oneshot
Environment=PATH=/usr/local/bin:/usr/bin:/bin
ExecStart=%s
RemainAfterExit=true

[Install]
WantedBy=multi-user.target
`, cfg.BootScriptFilePath)

	return os.WriteFile(cfg.OSServicePath, []byte(unitContents), 0644)
}

// InstallControllerService writes the unit for the controller itself,
// ordered after the GPIO init unit.
func InstallControllerService(cfg config.Config, binary string) error {
	gpioUnitName := filepath.Base(cfg.OSServicePath)

	unit := fmt.Sprintf(`[Unit]
Description=Intelligent office controller
After=%s
Requires=%s

[Service]
Type=simple
ExecStart=%s -config-file %s
Restart=on-failure
RestartSec=5s

[Install]
WantedBy=multi-user.target
`, gpioUnitName, gpioUnitName, binary, cfg.ConfigFile)

	return os.WriteFile(cfg.MainServicePath, []byte(unit), 0644)
}

func RunStartupScript(cfg config.Config) error {
	cmd := exec.Command("/bin/bash", cfg.BootScriptFilePath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
