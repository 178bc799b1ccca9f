package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/log"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Type      string    `json:"type"` // always "console"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
}

// WebLogger implements log.Logger by writing to a base logger and copying
// info and above to a console channel for the browser
type WebLogger struct {
	renderID    string
	base        log.Logger
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, base log.Logger, consoleChan chan<- ConsoleMessage) *WebLogger {
	return &WebLogger{
		renderID:    renderID,
		base:        base,
		consoleChan: consoleChan,
	}
}

// emit sends to the console channel without blocking; messages are dropped
// when the channel is full
func (wl *WebLogger) emit(level log.Level, message string) {
	if wl.consoleChan == nil || level < log.Info {
		return
	}
	select {
	case wl.consoleChan <- ConsoleMessage{
		Type:      "console",
		Message:   strings.TrimRight(message, "\n"),
		Timestamp: time.Now(),
		Level:     level.String(),
	}:
	default:
	}
}

func (wl *WebLogger) prefix(message string) string {
	return fmt.Sprintf("[%s] %s", wl.renderID, message)
}

func (wl *WebLogger) Debug(v ...interface{}) { wl.Debugf("%s", fmt.Sprint(v...)) }
func (wl *WebLogger) Debugf(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	wl.base.Debug(wl.prefix(message))
	wl.emit(log.Debug, message)
}

func (wl *WebLogger) Info(v ...interface{}) { wl.Infof("%s", fmt.Sprint(v...)) }
func (wl *WebLogger) Infof(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	wl.base.Info(wl.prefix(message))
	wl.emit(log.Info, message)
}

func (wl *WebLogger) Notice(v ...interface{}) { wl.Noticef("%s", fmt.Sprint(v...)) }
func (wl *WebLogger) Noticef(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	wl.base.Notice(wl.prefix(message))
	wl.emit(log.Notice, message)
}

func (wl *WebLogger) Warning(v ...interface{}) { wl.Warningf("%s", fmt.Sprint(v...)) }
func (wl *WebLogger) Warningf(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	wl.base.Warning(wl.prefix(message))
	wl.emit(log.Warning, message)
}

func (wl *WebLogger) Error(v ...interface{}) { wl.Errorf("%s", fmt.Sprint(v...)) }
func (wl *WebLogger) Errorf(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	wl.base.Error(wl.prefix(message))
	wl.emit(log.Error, message)
}
