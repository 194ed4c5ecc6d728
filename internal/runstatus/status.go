package runstatus

import "strings"

const (
	Starting       = "Starting"
	Reconstructing = "Reconstructing"
	Monitoring     = "Monitoring"
	Stopping       = "Stopping"
	Stopped        = "Stopped"
)

const (
	KeyStarting       = "starting"
	KeyReconstructing = "reconstructing"
	KeyMonitoring     = "monitoring"
	KeyStopping       = "stopping"
	KeyStopped        = "stopped"
)

func Key(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
