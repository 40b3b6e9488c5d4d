package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freightdesk/backoffice/pkg/controller"
	"github.com/freightdesk/backoffice/pkg/realtime/sse"
)

// TrackingEventType names the SSE events carrying fleet snapshots.
const TrackingEventType = "vehicles"

// trackingRetryMS is the reconnect delay suggested to clients.
const trackingRetryMS = 3000

// trackingStream sends every simulator tick as one SSE event until the
// client goes away, the simulator stops or the API closes.
func (a *API) trackingStream(c *gin.Context) {
	if a.deps.Tracking == nil {
		controller.Error(c, &controller.AppError{
			Code:       "tracking.disabled",
			Message:    "vehicle tracking is not enabled",
			HTTPStatus: http.StatusServiceUnavailable,
		})
		return
	}

	// Streams outlive the server write timeout.
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	stream, err := sse.Open(c.Writer)
	if err != nil {
		controller.Error(c, controller.NewInternalError("", err))
		return
	}
	updates, cancel := a.deps.Tracking.Subscribe()
	defer cancel()

	log := a.deps.Logger.WithContext(c.Request.Context())
	log.Debug("tracking stream opened")
	defer log.Debug("tracking stream closed")

	if err := stream.Comment("connected"); err != nil {
		return
	}

	heartbeat := time.NewTicker(a.cfg.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-a.closing:
			return
		case <-heartbeat.C:
			if err := stream.Comment("heartbeat"); err != nil {
				return
			}
		case u, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(u)
			if err != nil {
				log.Error("failed to encode tracking update", "error", err)
				continue
			}
			event := sse.Event{
				ID:      strconv.FormatUint(u.Seq, 10),
				Type:    TrackingEventType,
				Data:    data,
				RetryMS: trackingRetryMS,
			}
			if err := stream.Send(event); err != nil {
				return
			}
		}
	}
}
