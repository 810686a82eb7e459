package cmd

import (
	"context"

	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"
	"fulfillment/internal/pkg/metrics"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Dependencies are the connected outbound adapters the application runs on.
type Dependencies struct {
	DB        *gorm.DB
	Locator   ports.WorkerLocator
	Notifier  ports.Notifier
	Publisher ports.OrderEventPublisher
	OtpSender ports.OtpSender
	Payments  ports.PaymentGateway
}

type CompositionRoot struct {
	cfg        Config
	deps       Dependencies
	uowFactory *postgres.GormUnitOfWorkFactory

	brokerMetrics *metrics.BrokerMetrics
	cronMetrics   *metrics.CronJobMetrics
	logger        zerolog.Logger
}

func NewCompositionRoot(
	cfg Config,
	deps Dependencies,
	brokerMetrics *metrics.BrokerMetrics,
	cronMetrics *metrics.CronJobMetrics,
	logger zerolog.Logger,
) CompositionRoot {
	return CompositionRoot{
		cfg:           cfg,
		deps:          deps,
		uowFactory:    postgres.NewGormUnitOfWorkFactory(deps.DB),
		brokerMetrics: brokerMetrics,
		cronMetrics:   cronMetrics,
		logger:        logger,
	}
}

func (c *CompositionRoot) uow() FuncUoWFactory {
	return func() commands.UoW {
		return c.uowFactory.Create()
	}
}

func (c *CompositionRoot) orderUoW() FuncOrderUoWFactory {
	return func() commands.OrderUoW {
		return c.uowFactory.Create()
	}
}

func (c *CompositionRoot) assignmentUoW() FuncAssignmentUoWFactory {
	return func() commands.AssignmentUoW {
		return c.uowFactory.Create()
	}
}

func (c *CompositionRoot) workerUoW() FuncWorkerUoWFactory {
	return func() commands.WorkerUoW {
		return c.uowFactory.Create()
	}
}

func (c *CompositionRoot) CreateAssignmentBroker() *commands.AssignmentBroker {
	return commands.NewAssignmentBroker(
		c.deps.Locator,
		c.deps.Notifier,
		c.cfg.Broker.SearchRadiusMeters,
		c.brokerMetrics,
		c.logger,
	)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoW(), c.deps.Notifier, c.logger)
}

func (c *CompositionRoot) CreateConfirmPaymentCommandHandler() commands.ConfirmPaymentCommandHandler {
	return commands.NewConfirmPaymentCommandHandler(c.orderUoW(), c.deps.Payments)
}

func (c *CompositionRoot) CreateUpdateSubOrderStatusCommandHandler() commands.UpdateSubOrderStatusCommandHandler {
	return commands.NewUpdateSubOrderStatusCommandHandler(
		c.uow(),
		c.CreateAssignmentBroker(),
		c.deps.Payments,
		c.deps.Notifier,
		c.deps.Publisher,
		c.brokerMetrics,
		c.logger,
	)
}

func (c *CompositionRoot) CreateAcceptAssignmentCommandHandler() commands.AcceptAssignmentCommandHandler {
	return commands.NewAcceptAssignmentCommandHandler(c.uow(), c.deps.Notifier, c.brokerMetrics, c.logger)
}

func (c *CompositionRoot) CreateIssueDeliveryOtpCommandHandler() commands.IssueDeliveryOtpCommandHandler {
	return commands.NewIssueDeliveryOtpCommandHandler(c.orderUoW(), c.deps.OtpSender, c.brokerMetrics, c.logger)
}

func (c *CompositionRoot) CreateVerifyDeliveryOtpCommandHandler() commands.VerifyDeliveryOtpCommandHandler {
	return commands.NewVerifyDeliveryOtpCommandHandler(
		c.uow(),
		c.deps.Notifier,
		c.deps.Publisher,
		c.brokerMetrics,
		c.logger,
	)
}

func (c *CompositionRoot) CreateUpdateWorkerLocationCommandHandler() commands.UpdateWorkerLocationCommandHandler {
	return commands.NewUpdateWorkerLocationCommandHandler(c.workerUoW(), c.deps.Locator, c.deps.Notifier, c.logger)
}

func (c *CompositionRoot) CreateGoOfflineCommandHandler() commands.GoOfflineCommandHandler {
	return commands.NewGoOfflineCommandHandler(c.deps.Locator, c.logger)
}

func (c *CompositionRoot) CreateReconcileAssignmentsCommandHandler() commands.ReconcileAssignmentsCommandHandler {
	return commands.NewReconcileAssignmentsCommandHandler(c.assignmentUoW(), c.brokerMetrics, c.logger)
}

func (c *CompositionRoot) CreateExpireBroadcastsCommandHandler() commands.ExpireBroadcastsCommandHandler {
	return commands.NewExpireBroadcastsCommandHandler(c.uow(), c.deps.Notifier, c.brokerMetrics, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.deps.DB)
}

func (c *CompositionRoot) CreateGetStatusHistoryQueryHandler() queries.GetStatusHistoryQueryHandler {
	return queries.NewGetStatusHistoryQueryHandler(c.deps.DB)
}

func (c *CompositionRoot) CreateGetOwnBroadcastsQueryHandler() queries.GetOwnBroadcastsQueryHandler {
	return queries.NewGetOwnBroadcastsQueryHandler(c.deps.DB)
}

// CreateGetCurrentAssignmentQueryHandler reconciles stale records before answering.
func (c *CompositionRoot) CreateGetCurrentAssignmentQueryHandler() queries.GetCurrentAssignmentQueryHandler {
	reconcile := c.CreateReconcileAssignmentsCommandHandler()
	return queries.NewGetCurrentAssignmentQueryHandler(c.deps.DB, FuncReconciler(func(ctx context.Context) error {
		_, err := reconcile.Handle(ctx, commands.NewReconcileAssignmentsCommand())
		return err
	}))
}

func (c *CompositionRoot) CreateGetTodayDeliveriesQueryHandler() queries.GetTodayDeliveriesQueryHandler {
	return queries.NewGetTodayDeliveriesQueryHandler(c.deps.DB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		CreateOrder:          c.CreateCreateOrderCommandHandler(),
		ConfirmPayment:       c.CreateConfirmPaymentCommandHandler(),
		UpdateSubOrderStatus: c.CreateUpdateSubOrderStatusCommandHandler(),
		AcceptAssignment:     c.CreateAcceptAssignmentCommandHandler(),
		IssueDeliveryOtp:     c.CreateIssueDeliveryOtpCommandHandler(),
		VerifyDeliveryOtp:    c.CreateVerifyDeliveryOtpCommandHandler(),
		UpdateWorkerLocation: c.CreateUpdateWorkerLocationCommandHandler(),
		GoOffline:            c.CreateGoOfflineCommandHandler(),
		GetOrder:             c.CreateGetOrderQueryHandler(),
		GetStatusHistory:     c.CreateGetStatusHistoryQueryHandler(),
		GetOwnBroadcasts:     c.CreateGetOwnBroadcastsQueryHandler(),
		GetCurrentAssignment: c.CreateGetCurrentAssignmentQueryHandler(),
		GetTodayDeliveries:   c.CreateGetTodayDeliveriesQueryHandler(),
	})
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateReconcileAssignmentsCommandHandler(),
		c.CreateExpireBroadcastsCommandHandler(),
		jobs.Schedules{
			Reconcile:    c.cfg.Jobs.ReconcileSchedule,
			Expire:       c.cfg.Jobs.ExpireSchedule,
			BroadcastTTL: c.cfg.Jobs.BroadcastTTL,
		},
		c.cronMetrics,
		c.logger,
	)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncAssignmentUoWFactory func() commands.AssignmentUoW

func (f FuncAssignmentUoWFactory) Create() commands.AssignmentUoW {
	return f()
}

type FuncWorkerUoWFactory func() commands.WorkerUoW

func (f FuncWorkerUoWFactory) Create() commands.WorkerUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncReconciler func(ctx context.Context) error

func (f FuncReconciler) Reconcile(ctx context.Context) error {
	return f(ctx)
}
