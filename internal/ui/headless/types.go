package headless

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"asa-manager/internal/config"
	"asa-manager/internal/logging"
	"asa-manager/internal/presence"
	"asa-manager/internal/runtime"
	"asa-manager/internal/ui/headless/health"
	headlessview "asa-manager/internal/ui/headless/view"
)

const headlessLogLineLimit = 5_000

const (
	minLogPanelHeight      = 8
	nonLogLayoutReserveMin = 24
)

type logMsg string
type statusMsg string
type tickMsg struct{}

type presenceMsg struct {
	server string
	count  int
}

type runDoneMsg struct {
	err error
}

type startResultMsg struct {
	err error
}

type actionResultMsg struct {
	action string
	err    error
}

type quitNowMsg struct{}

type statusKind int

// Keep in step with the status constants in the view package.
const (
	statusIdle statusKind = iota
	statusStarting
	statusMonitoring
	statusStopping
	statusError
)

type modelDeps struct {
	runner      *runtime.Controller
	logger      *logging.Logger
	unsubscribe func()
	rootCancel  context.CancelFunc
	program     *tea.Program
}

type modelChannels struct {
	logCh      chan string
	statusCh   chan string
	presenceCh chan presenceMsg
}

type modelRuntime struct {
	running  bool
	starting bool
	quitting bool
	status   string
	kind     statusKind

	servers           []health.Row
	serverNames       []string
	healthDetail      string
	players           []presence.Entry
	playerNotes       map[string]string
	alerts            []headlessview.AlertToggle
	lastHealthRefresh time.Time
}

type headlessModel struct {
	buildVersion string
	opts         config.Options
	modelDeps
	modelChannels
	modelRuntime
	cleanupOnce sync.Once
	ui          headlessview.State
}
