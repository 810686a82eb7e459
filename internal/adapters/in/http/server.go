package http

import (
	"context"
	"net/http"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

type CreateOrderHandler interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error)
}

type ConfirmPaymentHandler interface {
	Handle(ctx context.Context, cmd commands.ConfirmPaymentCommand) (order.Payment, error)
}

type UpdateSubOrderStatusHandler interface {
	Handle(ctx context.Context, cmd commands.UpdateSubOrderStatusCommand) (commands.UpdateSubOrderStatusResult, error)
}

type AcceptAssignmentHandler interface {
	Handle(ctx context.Context, cmd commands.AcceptAssignmentCommand) (*assignment.Assignment, error)
}

type IssueDeliveryOtpHandler interface {
	Handle(ctx context.Context, cmd commands.IssueDeliveryOtpCommand) (commands.IssueDeliveryOtpResult, error)
}

type VerifyDeliveryOtpHandler interface {
	Handle(ctx context.Context, cmd commands.VerifyDeliveryOtpCommand) error
}

type UpdateWorkerLocationHandler interface {
	Handle(ctx context.Context, cmd commands.UpdateWorkerLocationCommand) error
}

type GoOfflineHandler interface {
	Handle(ctx context.Context, cmd commands.GoOfflineCommand) error
}

type GetOrderHandler interface {
	Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error)
}

type GetStatusHistoryHandler interface {
	Handle(ctx context.Context, query queries.GetStatusHistoryQuery) ([]queries.StatusChangeView, error)
}

type GetOwnBroadcastsHandler interface {
	Handle(ctx context.Context, query queries.GetOwnBroadcastsQuery) ([]queries.BroadcastView, error)
}

type GetCurrentAssignmentHandler interface {
	Handle(ctx context.Context, query queries.GetCurrentAssignmentQuery) (queries.CurrentAssignmentView, error)
}

type GetTodayDeliveriesHandler interface {
	Handle(ctx context.Context, query queries.GetTodayDeliveriesQuery) (queries.TodayDeliveries, error)
}

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	// Command handlers
	CreateOrder          CreateOrderHandler
	ConfirmPayment       ConfirmPaymentHandler
	UpdateSubOrderStatus UpdateSubOrderStatusHandler
	AcceptAssignment     AcceptAssignmentHandler
	IssueDeliveryOtp     IssueDeliveryOtpHandler
	VerifyDeliveryOtp    VerifyDeliveryOtpHandler
	UpdateWorkerLocation UpdateWorkerLocationHandler
	GoOffline            GoOfflineHandler

	// Query handlers
	GetOrder             GetOrderHandler
	GetStatusHistory     GetStatusHistoryHandler
	GetOwnBroadcasts     GetOwnBroadcastsHandler
	GetCurrentAssignment GetCurrentAssignmentHandler
	GetTodayDeliveries   GetTodayDeliveriesHandler
}

// Server translates HTTP requests into commands and queries.
// The caller identity always comes from the verified token, never from the body.
type Server struct {
	handlers Handlers
	now      func() time.Time
}

func NewServer(handlers Handlers) *Server {
	return &Server{
		handlers: handlers,
		now:      time.Now,
	}
}

// Register mounts the API under /api/v1 behind JWT verification.
func (s *Server) Register(e *echo.Echo, jwtSecret []byte) {
	customer := RequireRole(kernel.RoleCustomer)
	worker := RequireRole(kernel.RoleDeliveryWorker)
	anyone := RequireRole(kernel.RoleCustomer, kernel.RoleOwner, kernel.RoleDeliveryWorker)

	api := e.Group("/api/v1", JWTMiddleware(jwtSecret))

	api.POST("/orders", s.CreateOrder, customer)
	api.GET("/orders/:orderId", s.GetOrder, anyone)
	api.POST("/orders/:orderId/payment/confirm", s.ConfirmPayment, customer)
	api.GET("/orders/:orderId/sub-orders/:subOrderId/history", s.GetStatusHistory, anyone)
	api.PATCH("/orders/:orderId/sub-orders/:subOrderId/status", s.UpdateSubOrderStatus,
		RequireRole(kernel.RoleOwner, kernel.RoleDeliveryWorker))
	api.POST("/orders/:orderId/sub-orders/:subOrderId/otp", s.IssueDeliveryOtp, worker)
	api.POST("/orders/:orderId/sub-orders/:subOrderId/otp/verify", s.VerifyDeliveryOtp, worker)

	api.GET("/assignments/broadcasts", s.GetOwnBroadcasts, worker)
	api.GET("/assignments/current", s.GetCurrentAssignment, worker)
	api.POST("/assignments/:assignmentId/accept", s.AcceptAssignment, worker)
	api.GET("/deliveries/today", s.GetTodayDeliveries, worker)

	api.PUT("/workers/me/location", s.UpdateWorkerLocation, worker)
	api.DELETE("/workers/me/location", s.GoOffline, worker)
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	method, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return err
	}
	groups, err := toCreateOrderGroups(req.Shops)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(),
		actorFrom(c).ID(),
		claims.Email,
		method,
		commands.CreateOrderAddress{
			Text:      req.Address.Text,
			Latitude:  req.Address.Latitude,
			Longitude: req.Address.Longitude,
		},
		groups,
		s.now(),
	)
	if err != nil {
		return err
	}

	created, err := s.handlers.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toOrderResponse(created))
}

// GetOrder handles GET /api/v1/orders/:orderId.
func (s *Server) GetOrder(c echo.Context) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return err
	}

	query, err := queries.NewGetOrderQuery(orderID, actorFrom(c))
	if err != nil {
		return err
	}
	view, err := s.handlers.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderViewResponse(view))
}

// ConfirmPayment handles POST /api/v1/orders/:orderId/payment/confirm.
func (s *Server) ConfirmPayment(c echo.Context) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return err
	}

	cmd, err := commands.NewConfirmPaymentCommand(orderID, actorFrom(c).ID())
	if err != nil {
		return err
	}
	payment, err := s.handlers.ConfirmPayment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PaymentResponse{
		OrderID:       orderID.String(),
		Captured:      payment.Captured,
		TransactionID: payment.TransactionID,
	})
}

// GetStatusHistory handles GET /api/v1/orders/:orderId/sub-orders/:subOrderId/history.
func (s *Server) GetStatusHistory(c echo.Context) error {
	orderID, subOrderID, err := subOrderPath(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetStatusHistoryQuery(orderID, subOrderID, actorFrom(c))
	if err != nil {
		return err
	}
	history, err := s.handlers.GetStatusHistory.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStatusChangeResponses(history))
}

// UpdateSubOrderStatus handles PATCH /api/v1/orders/:orderId/sub-orders/:subOrderId/status.
func (s *Server) UpdateSubOrderStatus(c echo.Context) error {
	orderID, subOrderID, err := subOrderPath(c)
	if err != nil {
		return err
	}
	var req UpdateStatusRequest
	if err = bindAndValidate(c, &req); err != nil {
		return err
	}
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateSubOrderStatusCommand(orderID, subOrderID, status, actorFrom(c), s.now())
	if err != nil {
		return err
	}
	result, err := s.handlers.UpdateSubOrderStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, StatusUpdateResponse{
		Status:             result.Status.String(),
		Candidates:         result.Candidates,
		NoWorkersAvailable: result.NoWorkersAvailable,
	})
}

// IssueDeliveryOtp handles POST /api/v1/orders/:orderId/sub-orders/:subOrderId/otp.
func (s *Server) IssueDeliveryOtp(c echo.Context) error {
	orderID, subOrderID, err := subOrderPath(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewIssueDeliveryOtpCommand(orderID, subOrderID, actorFrom(c).ID(), s.now())
	if err != nil {
		return err
	}
	result, err := s.handlers.IssueDeliveryOtp.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, OtpIssuedResponse{ExpiresAt: result.ExpiresAt})
}

// VerifyDeliveryOtp handles POST /api/v1/orders/:orderId/sub-orders/:subOrderId/otp/verify.
func (s *Server) VerifyDeliveryOtp(c echo.Context) error {
	orderID, subOrderID, err := subOrderPath(c)
	if err != nil {
		return err
	}
	var req VerifyOtpRequest
	if err = bindAndValidate(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewVerifyDeliveryOtpCommand(orderID, subOrderID, actorFrom(c).ID(), req.Code, s.now())
	if err != nil {
		return err
	}
	if err = s.handlers.VerifyDeliveryOtp.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetOwnBroadcasts handles GET /api/v1/assignments/broadcasts.
func (s *Server) GetOwnBroadcasts(c echo.Context) error {
	query, err := queries.NewGetOwnBroadcastsQuery(actorFrom(c).ID())
	if err != nil {
		return err
	}
	views, err := s.handlers.GetOwnBroadcasts.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBroadcastResponses(views))
}

// GetCurrentAssignment handles GET /api/v1/assignments/current.
func (s *Server) GetCurrentAssignment(c echo.Context) error {
	query, err := queries.NewGetCurrentAssignmentQuery(actorFrom(c).ID())
	if err != nil {
		return err
	}
	view, err := s.handlers.GetCurrentAssignment.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCurrentAssignmentResponse(view))
}

// AcceptAssignment handles POST /api/v1/assignments/:assignmentId/accept.
func (s *Server) AcceptAssignment(c echo.Context) error {
	assignmentID, err := pathID(c, "assignmentId")
	if err != nil {
		return err
	}

	cmd, err := commands.NewAcceptAssignmentCommand(actorFrom(c).ID(), assignmentID, s.now())
	if err != nil {
		return err
	}
	accepted, err := s.handlers.AcceptAssignment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAssignmentResponse(accepted))
}

// GetTodayDeliveries handles GET /api/v1/deliveries/today?tz=Europe/Moscow.
// Without tz the day is taken in UTC.
func (s *Server) GetTodayDeliveries(c echo.Context) error {
	location := time.UTC
	if tz := c.QueryParam("tz"); tz != "" {
		loaded, err := time.LoadLocation(tz)
		if err != nil {
			return errs.NewValueIsInvalidErrorWithCause("tz", err)
		}
		location = loaded
	}

	now := s.now().In(location)
	query, err := queries.NewGetTodayDeliveriesQuery(actorFrom(c).ID(), now)
	if err != nil {
		return err
	}
	today, err := s.handlers.GetTodayDeliveries.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	hours := make([]HourResponse, 0, len(today.Hours))
	for _, h := range today.Hours {
		hours = append(hours, HourResponse{Hour: h.Hour, Count: h.Count})
	}
	return c.JSON(http.StatusOK, TodayDeliveriesResponse{
		Date:  now.Format(time.DateOnly),
		Total: today.Total,
		Hours: hours,
	})
}

// UpdateWorkerLocation handles PUT /api/v1/workers/me/location.
func (s *Server) UpdateWorkerLocation(c echo.Context) error {
	var req LocationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateWorkerLocationCommand(
		actorFrom(c).ID(), claims.Name, claims.Email, *req.Latitude, *req.Longitude, s.now(),
	)
	if err != nil {
		return err
	}
	if err = s.handlers.UpdateWorkerLocation.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GoOffline handles DELETE /api/v1/workers/me/location.
func (s *Server) GoOffline(c echo.Context) error {
	cmd, err := commands.NewGoOfflineCommand(actorFrom(c).ID())
	if err != nil {
		return err
	}
	if err = s.handlers.GoOffline.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func pathID(c echo.Context, name string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(c.Param(name))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

func subOrderPath(c echo.Context) (kernel.UUID, kernel.UUID, error) {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	subOrderID, err := pathID(c, "subOrderId")
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	return orderID, subOrderID, nil
}
