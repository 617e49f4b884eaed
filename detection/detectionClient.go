package detection

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"amserver/config"
	"amserver/logger"
)

// The detection service (YOLO weapon detector) owns the video pipeline.
// This client only probes its status endpoint; the MJPEG feed itself is
// consumed by the mobile client directly from Config.Detection.StreamUrl.

type FeedStatus struct {
	Online    bool   `json:"online"`
	CameraId  string `json:"camera_id"`
	StreamUrl string `json:"stream_url"`
}

var statusClient = &http.Client{Timeout: 5 * time.Second}

func GetFeedStatus() *FeedStatus {
	log := logger.Log.WithFields(
		logrus.Fields{
			"conn-type": "http",
			"api":       "detection_status"})
	status := &FeedStatus{StreamUrl: config.Config.Detection.StreamUrl}
	resp, err := statusClient.Get(config.Config.Detection.ApiUrl + "/api/status")
	if err != nil {
		log.Warn("Detection service unreachable: ", err)
		return status
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Warn("Detection service status: ", resp.StatusCode)
		return status
	}
	var data map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&data)
	if err != nil {
		log.Warn("Detection service response error: ", err)
		return status
	}
	status.Online = true
	if cameraId, ok := data["camera_id"].(string); ok {
		status.CameraId = cameraId
	}
	return status
}
