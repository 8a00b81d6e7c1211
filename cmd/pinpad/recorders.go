package main

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/nerrad567/graylogic-pinpad/internal/audit"
	"github.com/nerrad567/graylogic-pinpad/internal/events"
	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/config"
	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/database"
	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/influxdb"
	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/logging"
	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/mqtt"
	"github.com/nerrad567/graylogic-pinpad/internal/pinauth"
)

// connectRecorders returns the event recorders and a function that closes
// them. The audit trail is always recorded. MQTT and InfluxDB are optional:
// a connection failure is logged and the pad keeps working offline.
//
// A message on the system shutdown topic calls stop.
func connectRecorders(ctx context.Context, cfg *config.Config, db *database.DB, clock clockwork.Clock, stop context.CancelFunc, log *logging.Logger) ([]pinauth.Recorder, func()) {
	recorders := []pinauth.Recorder{audit.NewSQLiteRepository(db, clock)}
	var closers []func() error

	if cfg.MQTT.Enabled {
		if client := connectMQTT(cfg, stop, log); client != nil {
			recorders = append(recorders, events.NewMQTTRecorder(client, client.QoS()))
			closers = append(closers, client.Close)
		}
	}

	if cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			log.Warn("InfluxDB unavailable, continuing without metrics", "error", err)
		} else {
			client.SetOnError(func(err error) {
				log.Error("InfluxDB write failed", "error", err)
			})
			log.Info("connected to InfluxDB", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
			recorders = append(recorders, events.NewMetricsRecorder(client))
			closers = append(closers, client.Close)
		}
	}

	return recorders, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("error closing recorder", "error", err)
			}
		}
	}
}

// connectMQTT connects to the broker and subscribes to the shutdown topic.
// It returns nil when the broker cannot be reached.
func connectMQTT(cfg *config.Config, stop context.CancelFunc, log *logging.Logger) *mqtt.Client {
	client, err := mqtt.Connect(cfg.MQTT, cfg.Device.ID)
	if err != nil {
		log.Warn("MQTT unavailable, continuing without event publishing", "error", err)
		return nil
	}

	client.SetLogger(log)
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT connection lost", "error", err)
	})

	shutdown := mqtt.Topics{}.SystemShutdown()
	err = client.Subscribe(shutdown, client.QoS(), func(_ string, _ []byte) error {
		log.Info("shutdown requested over MQTT")
		stop()
		return nil
	})
	if err != nil {
		log.Warn("subscribing to shutdown topic failed", "topic", shutdown, "error", err)
	}

	log.Info("connected to MQTT broker",
		"host", cfg.MQTT.Broker.Host,
		"port", cfg.MQTT.Broker.Port,
	)
	return client
}
