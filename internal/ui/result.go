package ui

import (
	"errors"
	"strings"

	"github.com/muurk/rnet/internal/transport"
)

// RenderErrorBox renders an error box with optional troubleshooting tips
func RenderErrorBox(title string, err error, troubleshooting []string, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := []string{
		"",
		ErrorTitleStyle.Render("   " + FailureMarker + "  FAILED  ─  " + title),
		"",
	}

	if err != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+err.Error()), "")
	}

	if len(troubleshooting) > 0 {
		tips := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
		for _, tip := range troubleshooting {
			tips = append(tips, TroubleshootingItemStyle.Render("  • "+tip))
		}
		lines = append(lines, TroubleshootingBoxStyle(width).Render(strings.Join(tips, "\n")), "")
	}

	return ErrorBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// ConnectionTips suggests fixes for a transport failure. Errors that are
// not connection errors get no tips.
func ConnectionTips(err error) []string {
	var ce *transport.ConnectionError
	if !errors.As(err, &ce) {
		return nil
	}

	switch ce.Reason {
	case transport.ReasonNotFound:
		return []string{
			"Check the device path or address (--device / --address)",
			"Confirm the USB serial adapter is plugged in",
		}
	case transport.ReasonDeviceBusy:
		return []string{
			"Another program holds the port; stop it and retry",
			"Check for a second rnet instance on the same device",
		}
	case transport.ReasonInvalidDevice:
		return []string{
			"The path is not a serial port",
			"For a network bridge use --transport tcp --address host:port",
		}
	case transport.ReasonUnsupported:
		return []string{
			"The port rejected 19200 8N1 or the read timeout",
			"Try a different adapter or driver",
		}
	default:
		return []string{
			"Check cabling and permissions on the device",
			"On Linux, add your user to the dialout group",
		}
	}
}
