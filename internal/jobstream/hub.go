// Package jobstream streams job-progress updates over WebSocket
// connections keyed by job id (spec.md §6.6), adapted from the teacher's
// per-user WebSocket hub to per-job subscriptions.
package jobstream

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Update is the wire message pushed to subscribers of a job (spec.md §6.6):
// job id, status, monotonic progress, and an optional error string.
type Update struct {
	JobID    string           `json:"job_id"`
	Status   model.JobStatus  `json:"status"`
	Progress float64          `json:"progress"`
	Error    string           `json:"error,omitempty"`
}

// client is one subscriber connection to a single job's update stream.
type client struct {
	jobID string
	conn  *websocket.Conn
	send  chan []byte
	hub   *Hub
}

// Hub maintains active job-progress subscriptions and the last-known
// progress per job, enforcing that progress only moves forward (spec.md
// §6.6).
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string][]*client
	lastProgress map[string]float64
	logger      *logrus.Logger
}

// NewHub returns an empty Hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		subscribers:  make(map[string][]*client),
		lastProgress: make(map[string]float64),
		logger:       logger,
	}
}

// HandleSubscribe upgrades a request to a WebSocket and streams updates for
// one job id, given as a gin path parameter named "job_id".
func (h *Hub) HandleSubscribe(c *gin.Context) {
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing job_id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("jobstream: failed to upgrade connection")
		return
	}

	cl := &client{jobID: jobID, conn: conn, send: make(chan []byte, 16), hub: h}

	h.mu.Lock()
	h.subscribers[jobID] = append(h.subscribers[jobID], cl)
	h.mu.Unlock()

	go cl.writePump()
	go cl.readPump()
}

// Publish pushes a job-progress update to every subscriber of jobID. A
// progress value below the last one published for jobID is raised to that
// last value, so subscribers never see progress go backwards (spec.md §6.6).
func (h *Hub) Publish(jobID string, status model.JobStatus, progress float64, errMsg string) {
	h.mu.Lock()
	if last, ok := h.lastProgress[jobID]; ok && progress < last {
		progress = last
	}
	h.lastProgress[jobID] = progress
	subs := append([]*client(nil), h.subscribers[jobID]...)
	h.mu.Unlock()

	if len(subs) == 0 {
		return
	}

	data, err := json.Marshal(Update{JobID: jobID, Status: status, Progress: progress, Error: errMsg})
	if err != nil {
		h.logger.WithError(err).Error("jobstream: failed to marshal update")
		return
	}

	for _, cl := range subs {
		select {
		case cl.send <- data:
		default:
			h.removeClient(cl)
		}
	}
}

func (h *Hub) removeClient(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.subscribers[cl.jobID]
	for i, c := range subs {
		if c == cl {
			h.subscribers[cl.jobID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	close(cl.send)
}

func (cl *client) readPump() {
	defer func() {
		cl.hub.removeClient(cl)
		cl.conn.Close()
	}()
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (cl *client) writePump() {
	defer cl.conn.Close()
	for msg := range cl.send {
		if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			cl.hub.logger.WithError(err).Error("jobstream: failed to write update")
			return
		}
	}
	cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
