package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// Commands a client may send on the render socket
const (
	CommandMove = "move"
	CommandStop = "stop"
)

const writeWait = 10 * time.Second

// ClientCommand is a message from the browser. Move translates the camera
// look-from point by (dx, dy, dz) and restarts accumulation.
type ClientCommand struct {
	Type string  `json:"type"`
	DX   float32 `json:"dx"`
	DY   float32 `json:"dy"`
	DZ   float32 `json:"dz"`
}

// PassUpdate is sent after every completed pass
type PassUpdate struct {
	Type          string     `json:"type"` // always "pass"
	Generation    int        `json:"generation"`
	PassNumber    int        `json:"passNumber"`
	TotalPasses   int        `json:"totalPasses"`
	Samples       int        `json:"samples"`
	TargetSamples int        `json:"targetSamples"`
	ImageData     string     `json:"imageData"` // Base64 encoded PNG
	Stats         PassStats  `json:"stats"`
	LookFrom      [3]float32 `json:"lookFrom"`
	IsComplete    bool       `json:"isComplete"`
	ElapsedMs     int64      `json:"elapsedMs"`
}

// PassStats summarises the paths of one pass
type PassStats struct {
	Dispatches      int     `json:"dispatches"`
	Paths           int     `json:"paths"`
	Sky             int     `json:"sky"`
	Debug           int     `json:"debug"`
	Absorbed        int     `json:"absorbed"`
	UnknownMaterial int     `json:"unknownMaterial"`
	AverageBounces  float64 `json:"averageBounces"`
}

// StatusMessage reports render lifecycle changes and errors
type StatusMessage struct {
	Type       string `json:"type"` // "complete", "stopped" or "error"
	Generation int    `json:"generation"`
	Message    string `json:"message,omitempty"`
}

// handleRenderSocket streams a progressive render over a websocket and
// applies camera moves sent by the client
func (s *Server) handleRenderSocket(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	sc, err := s.loadScene(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, s.logger, consoleChan)

	config := renderer.DefaultProgressiveConfig()
	config.MaxPasses = req.Passes
	config.NumWorkers = s.config.NumWorkers
	config.Seed = req.Seed
	config.Strict = req.Strict
	pr, err := renderer.NewProgressiveRaytracer(sc, config, webLogger)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer pr.Close()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warningf("upgrade: %v", err)
		return
	}
	conn.SetReadLimit(s.config.MaxPayloadBytes)

	ctx, cancel := context.WithCancel(context.Background())
	rs := &renderSession{
		conn:     conn,
		pr:       pr,
		passes:   config.MaxPasses,
		send:     make(chan []byte, 16),
		commands: make(chan ClientCommand, 4),
		logger:   webLogger,
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		defer cancel()
		rs.readCommands(ctx, 2*s.config.PingInterval)
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		rs.writeMessages(ctx, s.config.PingInterval)
	}()
	go func() {
		defer wg.Done()
		rs.streamConsoleMessages(ctx, consoleChan)
	}()

	webLogger.Infof("Render socket opened for scene %q (%dx%d, %d samples)",
		req.Scene, sc.Camera.Width, sc.Camera.Height, sc.Camera.NumSamples)
	rs.run(ctx)

	cancel()
	conn.Close()
	wg.Wait()
}

// renderSession is the state of one render socket. Only writeMessages
// writes to the connection and only readCommands reads from it.
type renderSession struct {
	conn       *websocket.Conn
	pr         *renderer.ProgressiveRaytracer
	passes     int
	generation int
	send       chan []byte
	commands   chan ClientCommand
	logger     *WebLogger
}

// run renders until the client goes away. A render ends by itself, by a
// stop command or by a move command, which starts the next generation.
func (rs *renderSession) run(ctx context.Context) {
	cmd, ok := rs.render(ctx)
	for ok {
		switch cmd.Type {
		case CommandMove:
			delta := core.NewVec3(cmd.DX, cmd.DY, cmd.DZ)
			if err := rs.pr.MoveCamera(delta); err != nil {
				rs.sendJSON(ctx, StatusMessage{Type: "error", Generation: rs.generation, Message: fmt.Sprintf("move rejected: %v", err)})
				cmd, ok = rs.waitCommand(ctx)
				continue
			}
			rs.generation++
			rs.logger.Infof("Camera moved by %v, restarting accumulation", delta)
			cmd, ok = rs.render(ctx)
		default:
			cmd, ok = rs.waitCommand(ctx)
		}
	}
}

// render runs one progressive render. It returns the command that
// interrupted it, or a zero command when the render ended by itself; false
// means the session is over.
func (rs *renderSession) render(ctx context.Context) (ClientCommand, bool) {
	renderCtx, cancel := context.WithCancel(ctx)
	passChan, errChan := rs.pr.RenderProgressive(renderCtx, renderer.RenderOptions{Previews: true})
	defer func() {
		cancel()
		for range passChan {
		}
		<-errChan
	}()

	start := time.Now()
	for {
		select {
		case pass, open := <-passChan:
			if !open {
				if err := <-errChan; err != nil {
					rs.sendJSON(ctx, StatusMessage{Type: "error", Generation: rs.generation, Message: err.Error()})
				} else {
					rs.sendJSON(ctx, StatusMessage{Type: "complete", Generation: rs.generation})
				}
				return ClientCommand{}, true
			}
			if err := rs.sendPass(ctx, pass, start); err != nil {
				rs.logger.Errorf("failed to encode pass %d: %v", pass.PassNumber, err)
			}

		case cmd, open := <-rs.commands:
			if !open {
				return ClientCommand{}, false
			}
			switch cmd.Type {
			case CommandMove:
				return cmd, true
			case CommandStop:
				rs.sendJSON(ctx, StatusMessage{Type: "stopped", Generation: rs.generation})
				return cmd, true
			default:
				rs.sendJSON(ctx, StatusMessage{Type: "error", Generation: rs.generation, Message: fmt.Sprintf("unknown command %q", cmd.Type)})
			}

		case <-ctx.Done():
			return ClientCommand{}, false
		}
	}
}

// waitCommand blocks until the client sends a command
func (rs *renderSession) waitCommand(ctx context.Context) (ClientCommand, bool) {
	select {
	case cmd, open := <-rs.commands:
		return cmd, open
	case <-ctx.Done():
		return ClientCommand{}, false
	}
}

func (rs *renderSession) sendPass(ctx context.Context, pass renderer.PassResult, start time.Time) error {
	update := PassUpdate{
		Type:          "pass",
		Generation:    rs.generation,
		PassNumber:    pass.PassNumber,
		TotalPasses:   rs.passes,
		Samples:       pass.Stats.SamplesPerPixel,
		TargetSamples: pass.Stats.TargetSamples,
		Stats: PassStats{
			Dispatches:      pass.Stats.Dispatches,
			Paths:           pass.Stats.Paths.Paths,
			Sky:             pass.Stats.Paths.Sky,
			Debug:           pass.Stats.Paths.Debug,
			Absorbed:        pass.Stats.Paths.Absorbed,
			UnknownMaterial: pass.Stats.Paths.UnknownMaterial,
			AverageBounces:  pass.Stats.Paths.AverageBounces(),
		},
		LookFrom:   vec3Array(rs.pr.Camera().LookFrom),
		IsComplete: pass.IsLast,
		ElapsedMs:  time.Since(start).Milliseconds(),
	}
	if pass.Image != nil {
		imageData, err := imageToBase64PNG(pass.Image)
		if err != nil {
			return err
		}
		update.ImageData = imageData
	}
	rs.sendJSON(ctx, update)
	return nil
}

// sendJSON queues a message for the writer; it gives up once the session ends
func (rs *renderSession) sendJSON(ctx context.Context, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		rs.logger.Errorf("failed to marshal message: %v", err)
		return
	}
	select {
	case rs.send <- data:
	case <-ctx.Done():
	}
}

// readCommands decodes client messages until the connection fails. A peer
// that answers neither pings nor sends anything within pongWait is dropped.
func (rs *renderSession) readCommands(ctx context.Context, pongWait time.Duration) {
	defer close(rs.commands)

	rs.conn.SetReadDeadline(time.Now().Add(pongWait))
	rs.conn.SetPongHandler(func(string) error {
		return rs.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := rs.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				rs.logger.Warningf("read error: %v", err)
			}
			return
		}
		rs.conn.SetReadDeadline(time.Now().Add(pongWait))

		var cmd ClientCommand
		if err := json.Unmarshal(msg, &cmd); err != nil {
			rs.logger.Warningf("ignoring malformed command: %v", err)
			continue
		}
		select {
		case rs.commands <- cmd:
		case <-ctx.Done():
			return
		}
	}
}

// writeMessages is the only goroutine writing to the connection
func (rs *renderSession) writeMessages(ctx context.Context, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-rs.send:
			rs.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := rs.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			rs.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := rs.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			rs.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = rs.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// streamConsoleMessages forwards render log lines to the client
func (rs *renderSession) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			rs.sendJSON(ctx, msg)
		case <-ctx.Done():
			return
		}
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

