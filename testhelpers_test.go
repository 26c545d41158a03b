//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/application"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/config"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/consumer"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/database"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/schedule"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/events"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/kafka"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/notify"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// appointmentStack holds wired-up appointment service components.
type appointmentStack struct {
	Service         *application.BookingService
	Settings        *application.SettingsService
	Dispatcher      *application.NotificationDispatcher
	Consumer        *consumer.ScheduleCommandConsumer
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers, applies the
// embedded migrations and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_appointment",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)
	port, err := strconv.Atoi(pgPort.Port())
	require.NoError(t, err)

	dbCfg := config.DatabaseConfig{
		Enabled:  true,
		Host:     pgHost,
		Port:     port,
		User:     "test",
		Password: "test",
		DBName:   "test_appointment",
		SSLMode:  "disable",
	}

	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(dbCfg, logger)
		return err == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(dbCfg, logger))

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicAppointmentEvents, events.TopicScheduleCommands)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupAppointmentStack wires the service against Postgres and Kafka with the
// sample schedule and a clock fixed before the sample dates.
func setupAppointmentStack(t *testing.T, db *gorm.DB, brokers []string, sender notify.EmailSender) *appointmentStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	store := schedule.NewStore(schedule.WithIDGenerator(schedule.NewSequenceGenerator(12)))
	require.NoError(t, store.Restore(schedule.SampleDates()))

	appointmentRepo := repository.NewGormAppointmentRepository(db)
	settingsSvc := application.NewSettingsService(repository.NewGormSettingsRepository(db), logger)
	producer := kafka.NewProducer(brokers, logger)
	dispatcher := application.NewNotificationDispatcher(sender, appointmentRepo, settingsSvc, 5*time.Second, nil, logger)
	clock := func() time.Time { return time.Date(2025, 5, 19, 10, 0, 0, 0, time.UTC) }
	svc := application.NewBookingService(store, appointmentRepo, dispatcher, producer, logger, application.WithClock(clock))

	groupID := fmt.Sprintf("test-appointment-%s", uuid.New().String()[:8])
	commandConsumer := consumer.NewScheduleCommandConsumer(brokers, groupID, svc, logger)

	return &appointmentStack{
		Service:         svc,
		Settings:        settingsSvc,
		Dispatcher:      dispatcher,
		Consumer:        commandConsumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForNotificationStatus polls the appointments table until the status matches.
func waitForNotificationStatus(t *testing.T, db *gorm.DB, id uuid.UUID, expected string, timeout time.Duration) repository.AppointmentModel {
	t.Helper()
	var result repository.AppointmentModel
	require.Eventually(t, func() bool {
		var model repository.AppointmentModel
		if err := db.Where("id = ?", id).First(&model).Error; err != nil {
			return false
		}
		if model.NotificationStatus == expected {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "appointment notification did not reach %s", expected)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	require.NoError(t, controllerConn.CreateTopics(topicConfigs...), "failed to create Kafka topics")

	time.Sleep(1 * time.Second)
}
