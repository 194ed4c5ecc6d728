package view

import "fmt"

const (
	zoneLogs = "logs"

	zoneDialogQuitCancel = "dialog-quit-cancel"
	zoneDialogQuitAccept = "dialog-quit-accept"
	zoneDialogErrorClose = "dialog-error-close"
)

func zoneServerRow(index int) string {
	return fmt.Sprintf("server-row-%d", index)
}

func zoneAlertToggle(index int) string {
	return fmt.Sprintf("alert-toggle-%d", index)
}
