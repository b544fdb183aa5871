package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"time"
)

// ServerManager manages sidecar server processes, one per loaded model.
type ServerManager struct {
	servers  map[string]*ServerProcess
	nextPort int
	mu       sync.Mutex
}

// ServerProcess represents a running sidecar process.
type ServerProcess struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
}

// ServerConfig defines how to start and check a sidecar server.
type ServerConfig struct {
	Env          map[string]string
	Name         string
	BinPath      string
	HealthPath   string
	Args         []string
	Port         int
	ReadyTimeout time.Duration
}

// NewServerManager initializes a ServerManager. Ports are handed out
// sequentially starting at basePort.
func NewServerManager(basePort int) *ServerManager {
	return &ServerManager{
		servers:  map[string]*ServerProcess{},
		nextPort: basePort,
	}
}

// NextPort reserves the next sidecar port.
func (sm *ServerManager) NextPort() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	port := sm.nextPort
	sm.nextPort++
	return port
}

// StartServer starts a sidecar server and waits until it answers its
// health check. Starting an already running server is a no-op.
func (sm *ServerManager) StartServer(cfg ServerConfig) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	key := fmt.Sprintf("%s-%d", cfg.Name, cfg.Port)
	if _, exists := sm.servers[key]; exists {
		return nil // Already running
	}

	if info, err := os.Stat(cfg.BinPath); err != nil || info.IsDir() {
		if _, lookErr := exec.LookPath(cfg.BinPath); lookErr != nil {
			return fmt.Errorf("backend: failed to start %s server: %w", cfg.Name, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, cfg.BinPath, cfg.Args...)

	if len(cfg.Env) > 0 {
		env := os.Environ()
		for k, v := range cfg.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		cmd.Env = env
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("backend: failed to start %s server: %w", cfg.Name, err)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", cfg.Port)

	healthPath := cfg.HealthPath
	if healthPath == "" {
		healthPath = "/health"
	}

	timeout := cfg.ReadyTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	if err := sm.waitForServer(ctx, baseURL+healthPath, timeout); err != nil {
		cancel()
		if err := cmd.Process.Kill(); err != nil {
			slog.Error("Failed to kill server process", "error", err)
		}
		return fmt.Errorf("backend: %s server did not become ready: %w", cfg.Name, err)
	}

	sm.servers[key] = &ServerProcess{
		cmd:    cmd,
		cancel: cancel,
	}

	slog.Info("Sidecar server started", "name", cfg.Name, "port", cfg.Port)
	return nil
}

// StopServer terminates a sidecar server.
func (sm *ServerManager) StopServer(name string, port int) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	key := fmt.Sprintf("%s-%d", name, port)
	srv, exists := sm.servers[key]
	if !exists {
		return fmt.Errorf("server %s-%d not found", name, port)
	}

	srv.cancel()
	if err := srv.cmd.Process.Kill(); err != nil {
		slog.Error("Failed to kill server process", "error", err)
	}

	delete(sm.servers, key)
	slog.Info("Sidecar server stopped", "name", name, "port", port)
	return nil
}

// StopAll terminates all running sidecar servers.
func (sm *ServerManager) StopAll() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for _, srv := range sm.servers {
		srv.cancel()
		if err := srv.cmd.Process.Kill(); err != nil {
			slog.Error("Failed to kill server process", "error", err)
		}
	}
	sm.servers = map[string]*ServerProcess{}

	slog.Info("All sidecar servers stopped")
}

// waitForServer polls url until it answers 200 or the timeout elapses.
func (sm *ServerManager) waitForServer(ctx context.Context, url string, timeout time.Duration) error {
	client := &http.Client{Timeout: 1 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		time.Sleep(1 * time.Second)
	}

	return fmt.Errorf("backend: server failed to respond at %s within %v", url, timeout)
}
