// Package remote serves session access to browser clients over
// websockets: a phone on the couch can watch and drive any HostDeck
// session. Access is token-gated with rate-limited auth; tokens are
// either temporary (generated per enable) or permanent approved-device
// tokens persisted in app state.
package remote

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"hostdeck/internal/logging"
	"hostdeck/internal/session"

	"github.com/gorilla/websocket"
)

// MessageType tags websocket protocol messages
type MessageType string

const (
	MsgTypeInput         MessageType = "input"
	MsgTypeResize        MessageType = "resize"
	MsgTypeList          MessageType = "list"
	MsgTypeOutput        MessageType = "output"
	MsgTypeSessions      MessageType = "sessions"
	MsgTypeHosts         MessageType = "hosts"
	MsgTypeHostStatus    MessageType = "hostStatus"
	MsgTypeError         MessageType = "error"
	MsgTypePing          MessageType = "ping"
	MsgTypePong          MessageType = "pong"
	MsgTypeCreateSession MessageType = "createSession"
	MsgTypeCloseSession  MessageType = "closeSession"
)

const (
	maxClients      = 10
	maxAuthAttempts = 50
	authLockoutTime = 1 * time.Minute
	minResizeRows   = 1
	maxResizeRows   = 500
	minResizeCols   = 1
	maxResizeCols   = 500
	shutdownTimeout = 5 * time.Second
)

// ClientMessage is a message from the browser client
type ClientMessage struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	HostID    string      `json:"hostId,omitempty"`
	Data      string      `json:"data,omitempty"` // raw keystrokes for input
	Name      string      `json:"name,omitempty"`
	Rows      int         `json:"rows,omitempty"`
	Cols      int         `json:"cols,omitempty"`
}

// ServerMessage is a message to the browser client
type ServerMessage struct {
	Type      MessageType    `json:"type"`
	SessionID string         `json:"sessionId,omitempty"`
	Data      string         `json:"data,omitempty"` // base64 for output
	Sessions  []session.Info `json:"sessions,omitempty"`
	Hosts     []HostInfo     `json:"hosts,omitempty"`
	Session   *session.Info  `json:"session,omitempty"`
	Payload   interface{}    `json:"payload,omitempty"`
	Message   string         `json:"message,omitempty"`
	Success   bool           `json:"success,omitempty"`
}

// HostInfo is the host summary shown in the remote client's picker
type HostInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Protocol string `json:"protocol"`
	Hostname string `json:"hostname"`
	Port     int    `json:"port"`
	Group    string `json:"group,omitempty"`
	Color    string `json:"color,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Status   string `json:"status"`
}

// Handler is what the app provides for host-level operations requested by
// remote clients
type Handler interface {
	RemoteHosts() []HostInfo
	RemoteCreateSession(hostID, name string) (*session.Info, error)
	RemoteCloseSession(sessionID string) error
}

// ClientInfo describes one connected remote client
type ClientInfo struct {
	ID          string    `json:"id"`
	ConnectedAt time.Time `json:"connectedAt"`
	SessionID   string    `json:"sessionId"`
	UserAgent   string    `json:"userAgent"`
	RemoteAddr  string    `json:"remoteAddr"`

	writeMu sync.Mutex
}

type authAttempt struct {
	count    int
	lastTime time.Time
}

// ApprovedClient is a permanently approved device token
type ApprovedClient struct {
	Token     string    `json:"token"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	LastUsed  time.Time `json:"lastUsed"`
}

// Server is the websocket remote access server
type Server struct {
	sessions         *session.Manager
	handler          Handler
	token            string
	tokenExpiry      time.Time
	approvedClients  map[string]*ApprovedClient
	clients          map[*websocket.Conn]*ClientInfo
	authAttempts     map[string]*authAttempt
	mu               sync.RWMutex
	authMu           sync.RWMutex
	port             int
	server           *http.Server
	upgrader         websocket.Upgrader
	running          bool
	onApprovedChange func()
}

// NewServer creates a remote access server over the session registry
func NewServer(sessions *session.Manager) *Server {
	s := &Server{
		sessions:        sessions,
		clients:         make(map[*websocket.Conn]*ClientInfo),
		authAttempts:    make(map[string]*authAttempt),
		approvedClients: make(map[string]*ApprovedClient),
		port:            9090,
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	return s
}

// SetHandler sets the host-operations handler
func (s *Server) SetHandler(handler Handler) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

// SetApprovedChangeCallback sets a callback fired when the approved set
// changes, so the app can persist it
func (s *Server) SetApprovedChangeCallback(cb func()) {
	s.mu.Lock()
	s.onApprovedChange = cb
	s.mu.Unlock()
}

// AddApprovedClient mints a permanent token for a named device
func (s *Server) AddApprovedClient(name string) (*ApprovedClient, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	client := &ApprovedClient{
		Token:     hex.EncodeToString(bytes),
		Name:      name,
		CreatedAt: time.Now(),
		LastUsed:  time.Now(),
	}

	s.mu.Lock()
	s.approvedClients[client.Token] = client
	cb := s.onApprovedChange
	s.mu.Unlock()

	logging.Info("Approved device added", "name", name)

	if cb != nil {
		cb()
	}
	return client, nil
}

// RemoveApprovedClient revokes a permanent token
func (s *Server) RemoveApprovedClient(token string) {
	s.mu.Lock()
	delete(s.approvedClients, token)
	cb := s.onApprovedChange
	s.mu.Unlock()

	logging.Info("Approved device removed")

	if cb != nil {
		cb()
	}
}

// GetApprovedClients returns all approved device tokens
func (s *Server) GetApprovedClients() []*ApprovedClient {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]*ApprovedClient, 0, len(s.approvedClients))
	for _, c := range s.approvedClients {
		clients = append(clients, c)
	}
	return clients
}

// SetApprovedClients loads approved devices from persisted state
func (s *Server) SetApprovedClients(clients []*ApprovedClient) {
	s.mu.Lock()
	s.approvedClients = make(map[string]*ApprovedClient)
	for _, c := range clients {
		s.approvedClients[c.Token] = c
	}
	s.mu.Unlock()
}

// IsApprovedToken reports whether a token is a permanent approved one
func (s *Server) IsApprovedToken(token string) bool {
	s.mu.RLock()
	_, exists := s.approvedClients[token]
	s.mu.RUnlock()
	return exists
}

func (s *Server) touchApprovedClient(token string) {
	s.mu.Lock()
	if client, exists := s.approvedClients[token]; exists {
		client.LastUsed = time.Now()
	}
	s.mu.Unlock()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// No origin header means same-origin
	if origin == "" {
		return true
	}

	if strings.HasPrefix(origin, "http://localhost") ||
		strings.HasPrefix(origin, "http://127.0.0.1") ||
		strings.HasPrefix(origin, "https://localhost") ||
		strings.HasPrefix(origin, "https://127.0.0.1") {
		return true
	}

	if strings.HasSuffix(origin, ".ngrok.io") ||
		strings.HasSuffix(origin, ".ngrok-free.app") ||
		strings.HasSuffix(origin, ".ngrok.app") {
		return true
	}

	logging.Warn("WebSocket connection rejected: invalid origin", "origin", origin)
	return false
}

// GenerateToken mints a temporary access token
func (s *Server) GenerateToken(duration time.Duration) (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		logging.Error("Failed to generate secure token", "error", err)
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}

	s.mu.Lock()
	s.token = hex.EncodeToString(bytes)
	s.tokenExpiry = time.Now().Add(duration)
	token := s.token
	s.mu.Unlock()

	logging.Info("Remote access token generated", "expiry", time.Now().Add(duration))
	return token, nil
}

// GetToken returns the current temporary token for display in the UI
func (s *Server) GetToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// validateToken checks a presented token against approved devices first,
// then the temporary token, always in constant time.
func (s *Server) validateToken(token string) bool {
	if len(token) == 0 {
		return false
	}

	s.mu.RLock()
	storedToken := s.token
	expiry := s.tokenExpiry

	for approvedToken := range s.approvedClients {
		if subtle.ConstantTimeCompare([]byte(token), []byte(approvedToken)) == 1 {
			s.mu.RUnlock()
			s.touchApprovedClient(token)
			return true
		}
	}
	s.mu.RUnlock()

	if len(storedToken) == 0 {
		return false
	}

	tokenMatch := subtle.ConstantTimeCompare([]byte(token), []byte(storedToken)) == 1
	notExpired := time.Now().Before(expiry)
	return tokenMatch && notExpired
}

func (s *Server) checkRateLimit(ip string) bool {
	s.authMu.RLock()
	attempt, exists := s.authAttempts[ip]
	s.authMu.RUnlock()

	if !exists {
		return true
	}

	if time.Since(attempt.lastTime) > authLockoutTime {
		s.authMu.Lock()
		delete(s.authAttempts, ip)
		s.authMu.Unlock()
		return true
	}

	return attempt.count < maxAuthAttempts
}

func (s *Server) recordFailedAuth(ip string) {
	s.authMu.Lock()
	defer s.authMu.Unlock()

	if _, exists := s.authAttempts[ip]; !exists {
		s.authAttempts[ip] = &authAttempt{}
	}

	s.authAttempts[ip].count++
	s.authAttempts[ip].lastTime = time.Now()

	if s.authAttempts[ip].count >= maxAuthAttempts {
		logging.Warn("IP locked out due to failed auth attempts", "ip", ip)
	}
}

func (s *Server) resetAuthAttempts(ip string) {
	s.authMu.Lock()
	delete(s.authAttempts, ip)
	s.authMu.Unlock()
}

func getClientIP(r *http.Request) string {
	// X-Forwarded-For is set when traffic arrives through the tunnel
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	return strings.Split(r.RemoteAddr, ":")[0]
}

func bearerToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	if strings.HasPrefix(token, "Bearer ") {
		return strings.TrimPrefix(token, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// Start runs the HTTP server; blocks until Stop
func (s *Server) Start(port int) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.port = port
	s.running = true
	s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveClient)
	mux.HandleFunc("/ws/session", s.handleSessionWS)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/sessions", s.handleSessionsList)
	mux.HandleFunc("/api/token-info", s.handleTokenInfo)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	logging.Info("Remote access server starting", "port", port)
	logging.Warn("Remote access server running without TLS - use ngrok for secure access")

	return s.server.ListenAndServe()
}

// Stop shuts the server down gracefully
func (s *Server) Stop() error {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		return nil
	}

	s.running = false
	s.token = ""

	clientsToClose := make([]*clientConn, 0, len(s.clients))
	for conn, info := range s.clients {
		clientsToClose = append(clientsToClose, &clientConn{conn, info})
	}
	s.clients = make(map[*websocket.Conn]*ClientInfo)
	s.mu.Unlock()

	// Close connections outside the main lock with a write deadline so an
	// unresponsive client cannot stall shutdown
	for _, c := range clientsToClose {
		c.info.writeMu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down"))
		c.info.writeMu.Unlock()
		c.conn.Close()
	}

	if s.server != nil {
		logging.Info("Remote access server stopping")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// IsRunning reports whether the server is accepting connections
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// GetPort returns the configured listen port
func (s *Server) GetPort() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.port
}

// GetClients lists connected remote clients
func (s *Server) GetClients() []ClientInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]ClientInfo, 0, len(s.clients))
	for _, info := range s.clients {
		clients = append(clients, ClientInfo{
			ID:          info.ID,
			ConnectedAt: info.ConnectedAt,
			SessionID:   info.SessionID,
			UserAgent:   info.UserAgent,
			RemoteAddr:  info.RemoteAddr,
		})
	}
	return clients
}

type clientConn struct {
	conn *websocket.Conn
	info *ClientInfo
}

func (s *Server) writeTo(c *clientConn, msgBytes []byte) {
	c.info.writeMu.Lock()
	err := c.conn.WriteMessage(websocket.TextMessage, msgBytes)
	c.info.writeMu.Unlock()
	if err != nil {
		logging.Debug("Failed to write to remote client", "error", err)
	}
}

func (s *Server) broadcast(msg ServerMessage, filter func(*ClientInfo) bool) {
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		logging.Error("Failed to marshal broadcast message", "error", err)
		return
	}

	s.mu.RLock()
	clients := make([]*clientConn, 0, len(s.clients))
	for conn, info := range s.clients {
		if filter == nil || filter(info) {
			clients = append(clients, &clientConn{conn, info})
		}
	}
	s.mu.RUnlock()

	for _, c := range clients {
		s.writeTo(c, msgBytes)
	}
}

// BroadcastOutput sends session output to clients watching that session.
// Data is already base64 encoded by the app's output handler.
func (s *Server) BroadcastOutput(sessionID string, data string) {
	s.broadcast(ServerMessage{
		Type:      MsgTypeOutput,
		SessionID: sessionID,
		Data:      data,
	}, func(info *ClientInfo) bool {
		return info.SessionID == sessionID || info.SessionID == ""
	})
}

// BroadcastSessionsList pushes the current session list to every client
func (s *Server) BroadcastSessionsList() {
	s.broadcast(ServerMessage{
		Type:     MsgTypeSessions,
		Sessions: s.sessionList(),
	}, nil)
}

// BroadcastHostStatus pushes a reachability change to every client
func (s *Server) BroadcastHostStatus(status interface{}) {
	s.broadcast(ServerMessage{
		Type:    MsgTypeHostStatus,
		Payload: status,
	}, nil)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Unix(),
	}); err != nil {
		logging.Error("Failed to encode health response", "error", err)
	}
}

func (s *Server) handleSessionsList(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)

	if !s.checkRateLimit(clientIP) {
		http.Error(w, "Too many attempts, try again later", http.StatusTooManyRequests)
		return
	}

	if !s.validateToken(bearerToken(r)) {
		s.recordFailedAuth(clientIP)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	s.resetAuthAttempts(clientIP)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.sessionList()); err != nil {
		logging.Error("Failed to encode sessions list", "error", err)
	}
}

func (s *Server) handleTokenInfo(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)

	if !s.checkRateLimit(clientIP) {
		http.Error(w, "Too many attempts", http.StatusTooManyRequests)
		return
	}

	token := bearerToken(r)
	if !s.validateToken(token) {
		s.recordFailedAuth(clientIP)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	s.resetAuthAttempts(clientIP)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"valid":    true,
		"approved": s.IsApprovedToken(token),
	})
}

func (s *Server) sessionList() []session.Info {
	all := s.sessions.List()
	list := make([]session.Info, len(all))
	for i, sess := range all {
		list[i] = sess.Info()
	}
	return list
}

func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)

	if !s.checkRateLimit(clientIP) {
		http.Error(w, "Too many attempts, try again later", http.StatusTooManyRequests)
		logging.Warn("Remote access rejected: rate limited", "ip", clientIP)
		return
	}

	if !s.validateToken(bearerToken(r)) {
		s.recordFailedAuth(clientIP)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logging.Warn("Remote access rejected: invalid token", "remoteAddr", r.RemoteAddr)
		return
	}
	s.resetAuthAttempts(clientIP)

	s.mu.RLock()
	clientCount := len(s.clients)
	s.mu.RUnlock()

	if clientCount >= maxClients {
		http.Error(w, "Maximum connections reached", http.StatusServiceUnavailable)
		logging.Warn("Remote access rejected: max clients reached", "count", clientCount)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed", "error", err)
		return
	}

	clientIDBytes := make([]byte, 8)
	if _, err := rand.Read(clientIDBytes); err != nil {
		logging.Error("Failed to generate client ID", "error", err)
		conn.Close()
		return
	}
	clientID := hex.EncodeToString(clientIDBytes)

	clientInfo := &ClientInfo{
		ID:          clientID,
		ConnectedAt: time.Now(),
		SessionID:   r.URL.Query().Get("sessionId"),
		UserAgent:   r.UserAgent(),
		RemoteAddr:  r.RemoteAddr,
	}

	s.mu.Lock()
	s.clients[conn] = clientInfo
	s.mu.Unlock()

	logging.Info("Remote client connected", "clientId", clientID, "remoteAddr", r.RemoteAddr)

	s.sendHostsAndSessions(conn, clientInfo)

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
		logging.Info("Remote client disconnected", "clientId", clientID)
	}()

	for {
		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error("WebSocket read error", "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			s.sendError(conn, clientInfo, "Invalid message format")
			continue
		}

		s.handleClientMessage(conn, clientInfo, &msg)
	}
}

func (s *Server) handleClientMessage(conn *websocket.Conn, client *ClientInfo, msg *ClientMessage) {
	switch msg.Type {
	case MsgTypeInput:
		if msg.SessionID == "" {
			s.sendError(conn, client, "Session ID required")
			return
		}
		s.mu.Lock()
		client.SessionID = msg.SessionID
		s.mu.Unlock()

		if err := s.sessions.Write(msg.SessionID, []byte(msg.Data)); err != nil {
			logging.Error("Failed to write to session", "sessionId", msg.SessionID, "error", err)
			s.sendError(conn, client, fmt.Sprintf("Failed to write to session: %v", err))
		}

	case MsgTypeResize:
		if msg.SessionID == "" {
			s.sendError(conn, client, "Session ID required")
			return
		}

		s.mu.Lock()
		previousID := client.SessionID
		client.SessionID = msg.SessionID
		s.mu.Unlock()

		if msg.Rows < minResizeRows || msg.Rows > maxResizeRows ||
			msg.Cols < minResizeCols || msg.Cols > maxResizeCols {
			s.sendError(conn, client, fmt.Sprintf("Invalid terminal dimensions: rows must be %d-%d, cols must be %d-%d",
				minResizeRows, maxResizeRows, minResizeCols, maxResizeCols))
			return
		}

		if err := s.sessions.Resize(msg.SessionID, uint16(msg.Rows), uint16(msg.Cols)); err != nil {
			s.sendError(conn, client, fmt.Sprintf("Failed to resize session: %v", err))
		}

		// Switching sessions: nudge the shell to repaint
		if previousID != msg.SessionID {
			s.sessions.Write(msg.SessionID, []byte{0x0c})
		}

	case MsgTypeList:
		s.sendHostsAndSessions(conn, client)

	case MsgTypeCreateSession:
		s.handleCreateSession(conn, client, msg)

	case MsgTypeCloseSession:
		s.handleCloseSession(conn, client, msg)

	case MsgTypePing:
		s.sendMessage(conn, client, ServerMessage{Type: MsgTypePong})
	}
}

func (s *Server) sendMessage(conn *websocket.Conn, client *ClientInfo, msg ServerMessage) {
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		logging.Error("Failed to marshal message", "type", msg.Type, "error", err)
		return
	}
	s.writeTo(&clientConn{conn, client}, msgBytes)
}

func (s *Server) sendHostsAndSessions(conn *websocket.Conn, client *ClientInfo) {
	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()

	var hosts []HostInfo
	if handler != nil {
		hosts = handler.RemoteHosts()
	}

	s.sendMessage(conn, client, ServerMessage{
		Type:     MsgTypeHosts,
		Hosts:    hosts,
		Sessions: s.sessionList(),
	})
}

func (s *Server) handleCreateSession(conn *websocket.Conn, client *ClientInfo, msg *ClientMessage) {
	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()

	if handler == nil {
		s.sendError(conn, client, "Host handler not configured")
		return
	}
	if msg.HostID == "" {
		s.sendError(conn, client, "Host ID required")
		return
	}

	info, err := handler.RemoteCreateSession(msg.HostID, msg.Name)
	if err != nil {
		s.sendError(conn, client, fmt.Sprintf("Failed to create session: %v", err))
		return
	}

	s.sendMessage(conn, client, ServerMessage{
		Type:    MsgTypeCreateSession,
		Success: true,
		Session: info,
	})

	s.BroadcastSessionsList()
}

func (s *Server) handleCloseSession(conn *websocket.Conn, client *ClientInfo, msg *ClientMessage) {
	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()

	if handler == nil {
		s.sendError(conn, client, "Host handler not configured")
		return
	}
	if msg.SessionID == "" {
		s.sendError(conn, client, "Session ID required")
		return
	}

	if err := handler.RemoteCloseSession(msg.SessionID); err != nil {
		s.sendError(conn, client, fmt.Sprintf("Failed to close session: %v", err))
		return
	}

	s.sendMessage(conn, client, ServerMessage{
		Type:      MsgTypeCloseSession,
		Success:   true,
		SessionID: msg.SessionID,
	})

	s.BroadcastSessionsList()
}

func (s *Server) sendError(conn *websocket.Conn, client *ClientInfo, message string) {
	s.sendMessage(conn, client, ServerMessage{
		Type:    MsgTypeError,
		Message: message,
	})
}

// serveClient serves the embedded web client
func (s *Server) serveClient(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)

	if !s.checkRateLimit(clientIP) {
		http.Error(w, "Too many attempts, try again later", http.StatusTooManyRequests)
		return
	}

	token := r.URL.Query().Get("token")
	if !s.validateToken(token) {
		s.recordFailedAuth(clientIP)
		http.Error(w, "Unauthorized - Invalid or expired token", http.StatusUnauthorized)
		return
	}
	s.resetAuthAttempts(clientIP)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Write([]byte(clientHTML))
}
