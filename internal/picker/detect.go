package picker

import (
	"fmt"
	"os/exec"
)

// DetectBackend returns the first available picker backend found in PATH, in
// priority order: rofi, dmenu.
func DetectBackend() (string, error) {
	if _, err := exec.LookPath("rofi"); err == nil {
		return "rofi", nil
	}
	if _, err := exec.LookPath("dmenu"); err == nil {
		return "dmenu", nil
	}
	return "", fmt.Errorf("no picker backend found in PATH (looked for: rofi, dmenu)")
}
