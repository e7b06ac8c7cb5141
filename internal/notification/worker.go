package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"laundry-station-backend/internal/model"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool delivers error alerts for stations to subscribed operators.
// Delivery is fire-and-forget relative to the transition that raised the
// error.
type WorkerPool struct {
	size    int
	jobs    chan uint
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan uint, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case stationID := <-wp.jobs:
			log.Printf("notification worker %d processing station %d", id, stationID)
			wp.sendAlertsForStation(ctx, stationID)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an error alert for the station.
func (wp *WorkerPool) Dispatch(stationID uint) {
	wp.jobs <- stationID
}

// sendAlertsForStation fetches the station's subscriptions and pushes the
// alert to each of them.
func (wp *WorkerPool) sendAlertsForStation(ctx context.Context, stationID uint) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_station_mapping ssm ON ssm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("ssm.station_id = ?", stationID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("error fetching subscriptions for station %d: %v", stationID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	log.Printf("sending %d error alerts for station %d", len(subscriptions), stationID)

	stationLabel := fmt.Sprintf("%d", stationID)
	var station model.Station
	if err := wp.db.WithContext(ctx).
		Select("name", "serial").
		First(&station, stationID).Error; err != nil {
		log.Printf("error fetching station %d: %v", stationID, err)
	} else if station.Name != nil && *station.Name != "" {
		stationLabel = *station.Name
	} else if station.Serial != "" {
		stationLabel = station.Serial
	}

	message := fmt.Sprintf("Station %s reported an error", stationLabel)
	for _, sub := range subscriptions {
		wp.sendAlert(ctx, sub, []byte(message))
	}
}

// sendAlert pushes a single notification and drops the subscription when the
// endpoint reports it expired.
func (wp *WorkerPool) sendAlert(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending alert to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription for endpoint %s is expired, deleting", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
