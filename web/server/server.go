package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/log"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Server handles web requests for the progressive path tracer
type Server struct {
	config   *Config
	logger   log.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// NewServer creates a web server. A nil logger uses the "server" module.
func NewServer(config *Config, logger log.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = log.New("server")
	}

	s := &Server{config: config, logger: logger}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}

	s.mux = http.NewServeMux()
	if info, err := os.Stat(config.StaticDir); err == nil && info.IsDir() {
		s.mux.Handle("/", http.FileServer(http.Dir(config.StaticDir)))
	}
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	s.mux.HandleFunc("/ws/render", s.handleRenderSocket)
	return s
}

// Handler returns the request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on the configured address
func (s *Server) Start() error {
	s.logger.Noticef("Starting web server on %s (scenes from %s)", s.config.Address, s.config.ScenesDir)
	return http.ListenAndServe(s.config.Address, s.mux)
}

// checkOrigin accepts any origin unless an allow list is configured
func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range s.config.AllowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and file scenes grouped for the scene picker
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.config.ScenesDir)
	if err != nil {
		s.logger.Errorf("scene discovery failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// RenderRequest represents a render request from the client. Zero size and
// sample fields keep the scene's own camera settings.
type RenderRequest struct {
	Scene   string `json:"scene"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Samples int    `json:"samples"`
	Passes  int    `json:"passes"`
	Seed    int64  `json:"seed"`
	Strict  bool   `json:"strict"`
}

// parseRenderRequest parses and bounds the query parameters of a render
func (s *Server) parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 1, s.config.MaxWidth); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, 1, s.config.MaxHeight); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", 0, 1, s.config.MaxSamples); err != nil {
		return nil, err
	}
	if req.Passes, err = parseIntParam(values, "passes", 7, 1, s.config.MaxPasses); err != nil {
		return nil, err
	}
	if raw := values.Get("seed"); raw != "" {
		if req.Seed, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", raw)
		}
	}
	if raw := values.Get("strict"); raw != "" {
		if req.Strict, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("invalid strict: %s", raw)
		}
	}

	return req, nil
}

// loadScene resolves the requested scene and applies the camera overrides
func (s *Server) loadScene(req *RenderRequest) (*scene.Scene, error) {
	sc, err := loaders.LoadScene(req.Scene, s.config.ScenesDir)
	if err != nil {
		return nil, err
	}

	camera := sc.Camera
	if req.Width > 0 {
		camera.Width = req.Width
	}
	if req.Height > 0 {
		camera.Height = req.Height
	}
	if req.Samples > 0 {
		camera.NumSamples = req.Samples
	}
	if camera.Width > s.config.MaxWidth || camera.Height > s.config.MaxHeight {
		return nil, fmt.Errorf("scene resolution %dx%d exceeds the server limit of %dx%d",
			camera.Width, camera.Height, s.config.MaxWidth, s.config.MaxHeight)
	}
	if camera.NumSamples > s.config.MaxSamples {
		return nil, fmt.Errorf("scene asks for %d samples, server limit is %d", camera.NumSamples, s.config.MaxSamples)
	}
	return sc.WithCamera(camera), nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query
func parseFloatParam(values url.Values, key string) (float32, error) {
	value := values.Get(key)
	if value == "" {
		return 0, errors.New("missing " + key)
	}
	parsed, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}
	return float32(parsed), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
