package main

import (
	audithandler "examslots/internal/audit/handler"
	auditrepo "examslots/internal/audit/repository"
	auditservice "examslots/internal/audit/service"
	bookinghandler "examslots/internal/bookings/handler"
	bookingrepo "examslots/internal/bookings/repository"
	bookingservice "examslots/internal/bookings/service"
	bookingvalidator "examslots/internal/bookings/validator"
	dashboardhandler "examslots/internal/dashboard/handler"
	dashboardservice "examslots/internal/dashboard/service"
	slothandler "examslots/internal/slots/handler"
	slotrepo "examslots/internal/slots/repository"
	slotservice "examslots/internal/slots/service"
	slotvalidator "examslots/internal/slots/validator"
	"examslots/pkg/app"
	"examslots/pkg/config"
	"examslots/pkg/contracts"
	"examslots/pkg/kafka"
)

const ServiceName = "examslots"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting exam slots service")

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		cfg.Log.Info("Kafka audit events enabled", "topic", cfg.KafkaAuditTopic)
	} else {
		cfg.Log.Info("Kafka brokers not configured, audit events disabled")
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetProducer(producer)
	serverApp.SetApp(initHandlers(cfg, producer)...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, producer *kafka.Producer) []contracts.Handler {
	slots := slotrepo.NewMongoSlotRepository(cfg)
	bookings := bookingrepo.NewMongoBookingRepository(cfg)
	audits := auditrepo.NewMongoAuditRepository(cfg)

	var publisher auditservice.EventPublisher
	if producer != nil {
		publisher = producer
	}
	audit := auditservice.NewAuditService(audits, publisher, cfg)

	slotSvc := slotservice.NewSlotService(slots, bookings, slotvalidator.NewSlotValidator(cfg.Log), cfg)
	bookingSvc := bookingservice.NewBookingService(bookings, slots, audit, bookingvalidator.NewBookingValidator(), cfg)
	dashboardSvc := dashboardservice.NewDashboardService(slots, bookings, audit, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		slothandler.NewSlotHandler(slotSvc, cfg.Log),
		bookinghandler.NewBookingHandler(bookingSvc, cfg.Log),
		audithandler.NewAuditHandler(audit, cfg.Log),
		dashboardhandler.NewDashboardHandler(dashboardSvc, cfg.Log),
	}
}
