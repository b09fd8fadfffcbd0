package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/nexuslab/vigil/pkg/models"
)

// severityMarker maps severity to the visual indicator used in rendered
// alerts.
func severityMarker(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return "🔴"
	case models.SeverityWarning:
		return "🟡"
	default:
		return "🟢"
	}
}

func severityColor(severity models.Severity) string {
	if severity == models.SeverityCritical {
		return "#ef4444"
	}

	return "#eab308"
}

// ThresholdAlert renders a threshold-breach alert into channel-agnostic
// content: plain text, HTML and a subject line. Reused by every channel.
func ThresholdAlert(equipmentName, sensor string, value, threshold float64, unit string, severity models.Severity, at time.Time) Message {
	marker := severityMarker(severity)
	upper := strings.ToUpper(string(severity))
	timestamp := at.Format("2006-01-02 15:04:05")

	text := fmt.Sprintf(
		"%s VIGIL ALERT - %s\n\n"+
			"Equipment: %s\n"+
			"Sensor: %s\n"+
			"Current Value: %v %s\n"+
			"Threshold: %v %s\n"+
			"Time: %s",
		marker, upper, equipmentName, sensor, value, unit, threshold, unit, timestamp,
	)

	html := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; padding: 20px; background: #1a1a2e; color: white;">
  <h2 style="color: %s;">%s VIGIL ALERT - %s</h2>
  <table style="margin: 20px 0;">
    <tr><td style="padding: 5px; color: #9ca3af;">Equipment:</td><td style="padding: 5px;">%s</td></tr>
    <tr><td style="padding: 5px; color: #9ca3af;">Sensor:</td><td style="padding: 5px;">%s</td></tr>
    <tr><td style="padding: 5px; color: #9ca3af;">Current Value:</td><td style="padding: 5px; color: #ef4444;">%v %s</td></tr>
    <tr><td style="padding: 5px; color: #9ca3af;">Threshold:</td><td style="padding: 5px;">%v %s</td></tr>
    <tr><td style="padding: 5px; color: #9ca3af;">Time:</td><td style="padding: 5px;">%s</td></tr>
  </table>
  <p style="color: #6b7280; font-size: 12px;">Sent by Vigil Monitoring</p>
</div>`,
		severityColor(severity), marker, upper, equipmentName, sensor, value, unit, threshold, unit, timestamp,
	)

	return Message{
		Subject: fmt.Sprintf("[%s] %s - %s Alert", upper, equipmentName, sensor),
		Text:    text,
		HTML:    html,
	}
}

// StatusChangeAlert renders an equipment status transition message.
func StatusChangeAlert(equipmentName, oldStatus, newStatus, reason string, at time.Time) Message {
	marker := "🟢"

	switch newStatus {
	case "critical":
		marker = "🔴"
	case "warning":
		marker = "🟡"
	}

	text := fmt.Sprintf(
		"%s EQUIPMENT STATUS CHANGE\n\n"+
			"Equipment: %s\n"+
			"Previous Status: %s\n"+
			"New Status: %s\n",
		marker, equipmentName, oldStatus, newStatus,
	)

	if reason != "" {
		text += "Reason: " + reason + "\n"
	}

	text += "Time: " + at.Format("2006-01-02 15:04:05")

	return Message{
		Subject: fmt.Sprintf("[STATUS] %s changed to %s", equipmentName, newStatus),
		Text:    text,
	}
}

// ThresholdPayload builds the webhook JSON body for a threshold breach.
func ThresholdPayload(workflowID, equipmentName, sensor string, value, threshold float64, severity models.Severity, at time.Time) map[string]any {
	return map[string]any{
		"workflow_id": workflowID,
		"equipment":   equipmentName,
		"sensor":      sensor,
		"value":       value,
		"threshold":   threshold,
		"severity":    string(severity),
		"timestamp":   at.Format(time.RFC3339),
	}
}
