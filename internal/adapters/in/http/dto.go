package http

import (
	"strconv"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	PaymentMethod string             `json:"paymentMethod" validate:"required,oneof=cod online"`
	Address       AddressRequest     `json:"address"`
	Shops         []ShopGroupRequest `json:"shops"         validate:"required,min=1,dive"`
}

type AddressRequest struct {
	Text      string  `json:"text"      validate:"required"`
	Latitude  float64 `json:"latitude"  validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

type ShopGroupRequest struct {
	ShopID   string        `json:"shopId"   validate:"required,uuid"`
	ShopName string        `json:"shopName" validate:"required"`
	OwnerID  string        `json:"ownerId"  validate:"required,uuid"`
	Items    []ItemRequest `json:"items"    validate:"required,min=1,dive"`
}

// ItemRequest carries the catalog price as a decimal string, e.g. "2.50".
type ItemRequest struct {
	ItemRef  string `json:"itemRef"  validate:"required,uuid"`
	Name     string `json:"name"     validate:"required"`
	Price    string `json:"price"    validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type VerifyOtpRequest struct {
	Code string `json:"code" validate:"required,len=4,numeric"`
}

// Pointers keep the equator and the prime meridian valid positions.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

type AddressResponse struct {
	Text      string  `json:"text"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ItemResponse struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

type SubOrderResponse struct {
	ID             string         `json:"id"`
	ShopID         string         `json:"shopId"`
	ShopName       string         `json:"shopName"`
	OwnerID        string         `json:"ownerId"`
	Status         string         `json:"status"`
	Subtotal       string         `json:"subtotal"`
	Items          []ItemResponse `json:"items"`
	AssignedWorker *string        `json:"assignedWorker,omitempty"`
	OtpExpiresAt   *time.Time     `json:"otpExpiresAt,omitempty"`
	DeliveredAt    *time.Time     `json:"deliveredAt,omitempty"`
}

type OrderResponse struct {
	ID              string             `json:"id"`
	CustomerID      string             `json:"customerId"`
	PaymentMethod   string             `json:"paymentMethod"`
	PaymentCaptured bool               `json:"paymentCaptured"`
	Address         AddressResponse    `json:"address"`
	TotalAmount     string             `json:"totalAmount"`
	CreatedAt       time.Time          `json:"createdAt"`
	SubOrders       []SubOrderResponse `json:"subOrders"`
}

type PaymentResponse struct {
	OrderID       string `json:"orderId"`
	Captured      bool   `json:"captured"`
	TransactionID string `json:"transactionId,omitempty"`
}

type StatusUpdateResponse struct {
	Status             string `json:"status"`
	Candidates         int    `json:"candidates"`
	NoWorkersAvailable bool   `json:"noWorkersAvailable"`
}

type AssignmentResponse struct {
	ID         string     `json:"id"`
	OrderID    string     `json:"orderId"`
	SubOrderID string     `json:"subOrderId"`
	ShopID     string     `json:"shopId"`
	Status     string     `json:"status"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
}

type BroadcastResponse struct {
	AssignmentID string          `json:"assignmentId"`
	OrderID      string          `json:"orderId"`
	SubOrderID   string          `json:"subOrderId"`
	ShopID       string          `json:"shopId"`
	ShopName     string          `json:"shopName"`
	Items        []ItemResponse  `json:"items"`
	Subtotal     string          `json:"subtotal"`
	Address      AddressResponse `json:"address"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type PositionResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type CurrentAssignmentResponse struct {
	AssignmentID   string            `json:"assignmentId"`
	OrderID        string            `json:"orderId"`
	SubOrderID     string            `json:"subOrderId"`
	ShopID         string            `json:"shopId"`
	ShopName       string            `json:"shopName"`
	Status         string            `json:"status"`
	Items          []ItemResponse    `json:"items"`
	Subtotal       string            `json:"subtotal"`
	CustomerID     string            `json:"customerId"`
	Address        AddressResponse   `json:"address"`
	WorkerPosition *PositionResponse `json:"workerPosition,omitempty"`
	AcceptedAt     *time.Time        `json:"acceptedAt,omitempty"`
}

type HourResponse struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type TodayDeliveriesResponse struct {
	Date  string         `json:"date"`
	Total int            `json:"total"`
	Hours []HourResponse `json:"hours"`
}

type StatusChangeResponse struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
	ActorID   string    `json:"actorId"`
	ActorRole string    `json:"actorRole"`
}

type OtpIssuedResponse struct {
	ExpiresAt time.Time `json:"expiresAt"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalID(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toCreateOrderGroups(shops []ShopGroupRequest) ([]commands.CreateOrderShopGroup, error) {
	groups := make([]commands.CreateOrderShopGroup, 0, len(shops))
	for i, shop := range shops {
		shopID, err := kernel.UUIDFromString(shop.ShopID)
		if err != nil {
			return nil, err
		}
		ownerID, err := kernel.UUIDFromString(shop.OwnerID)
		if err != nil {
			return nil, err
		}

		items := make([]commands.CreateOrderItem, 0, len(shop.Items))
		for j, line := range shop.Items {
			ref, refErr := kernel.UUIDFromString(line.ItemRef)
			if refErr != nil {
				return nil, refErr
			}
			price, priceErr := decimal.NewFromString(line.Price)
			if priceErr != nil {
				return nil, &validationError{details: map[string]string{
					itemField(i, j, "price"): "must be a decimal amount",
				}}
			}
			items = append(items, commands.CreateOrderItem{
				ItemRef:  ref,
				Name:     line.Name,
				Price:    price,
				Quantity: line.Quantity,
			})
		}

		groups = append(groups, commands.CreateOrderShopGroup{
			ShopID:   shopID,
			ShopName: shop.ShopName,
			OwnerID:  ownerID,
			Items:    items,
		})
	}
	return groups, nil
}

func itemField(shop, item int, name string) string {
	return "shops[" + strconv.Itoa(shop) + "].items[" + strconv.Itoa(item) + "]." + name
}

func toItemResponses(items []order.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ItemResponse{Name: item.Name(), Price: money(item.Price()), Quantity: item.Quantity()})
	}
	return out
}

func toItemViewResponses(items []queries.ItemView) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ItemResponse{Name: item.Name, Price: money(item.Price), Quantity: item.Quantity})
	}
	return out
}

func toOrderResponse(o *order.Order) OrderResponse {
	location := o.DeliveryAddress().Location()
	resp := OrderResponse{
		ID:              o.ID().String(),
		CustomerID:      o.Customer().ID().String(),
		PaymentMethod:   o.PaymentMethod().String(),
		PaymentCaptured: o.Payment().Captured,
		Address: AddressResponse{
			Text:      o.DeliveryAddress().Text(),
			Latitude:  location.Latitude(),
			Longitude: location.Longitude(),
		},
		TotalAmount: money(o.TotalAmount()),
		CreatedAt:   o.CreatedAt(),
	}
	for _, so := range o.SubOrders() {
		resp.SubOrders = append(resp.SubOrders, SubOrderResponse{
			ID:             so.ID().String(),
			ShopID:         so.Shop().ID().String(),
			ShopName:       so.Shop().Name(),
			OwnerID:        so.OwnerID().String(),
			Status:         so.Status().String(),
			Subtotal:       money(so.Subtotal()),
			Items:          toItemResponses(so.Items()),
			AssignedWorker: optionalID(so.AssignedWorker()),
			OtpExpiresAt:   so.OtpExpiresAt(),
			DeliveredAt:    so.DeliveredAt(),
		})
	}
	return resp
}

func toOrderViewResponse(view queries.OrderView) OrderResponse {
	resp := OrderResponse{
		ID:              view.ID.String(),
		CustomerID:      view.CustomerID.String(),
		PaymentMethod:   view.PaymentMethod.String(),
		PaymentCaptured: view.PaymentCaptured,
		Address: AddressResponse{
			Text:      view.DeliveryAddress,
			Latitude:  view.Latitude,
			Longitude: view.Longitude,
		},
		TotalAmount: money(view.TotalAmount),
		CreatedAt:   view.CreatedAt,
		SubOrders:   make([]SubOrderResponse, 0, len(view.SubOrders)),
	}
	for _, so := range view.SubOrders {
		resp.SubOrders = append(resp.SubOrders, SubOrderResponse{
			ID:             so.ID.String(),
			ShopID:         so.ShopID.String(),
			ShopName:       so.ShopName,
			OwnerID:        so.OwnerID.String(),
			Status:         so.Status.String(),
			Subtotal:       money(so.Subtotal),
			Items:          toItemViewResponses(so.Items),
			AssignedWorker: optionalID(so.AssignedWorker),
			OtpExpiresAt:   so.OtpExpiresAt,
			DeliveredAt:    so.DeliveredAt,
		})
	}
	return resp
}

func toAssignmentResponse(a *assignment.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:         a.ID().String(),
		OrderID:    a.OrderID().String(),
		SubOrderID: a.SubOrderID().String(),
		ShopID:     a.ShopID().String(),
		Status:     a.Status().String(),
		AcceptedAt: a.AcceptedAt(),
	}
}

func toBroadcastResponses(views []queries.BroadcastView) []BroadcastResponse {
	out := make([]BroadcastResponse, 0, len(views))
	for _, v := range views {
		out = append(out, BroadcastResponse{
			AssignmentID: v.AssignmentID.String(),
			OrderID:      v.OrderID.String(),
			SubOrderID:   v.SubOrderID.String(),
			ShopID:       v.ShopID.String(),
			ShopName:     v.ShopName,
			Items:        toItemViewResponses(v.Items),
			Subtotal:     money(v.Subtotal),
			Address:      AddressResponse{Text: v.DeliveryAddress, Latitude: v.Latitude, Longitude: v.Longitude},
			CreatedAt:    v.CreatedAt,
		})
	}
	return out
}

func toCurrentAssignmentResponse(v queries.CurrentAssignmentView) CurrentAssignmentResponse {
	resp := CurrentAssignmentResponse{
		AssignmentID: v.AssignmentID.String(),
		OrderID:      v.OrderID.String(),
		SubOrderID:   v.SubOrderID.String(),
		ShopID:       v.ShopID.String(),
		ShopName:     v.ShopName,
		Status:       v.Status.String(),
		Items:        toItemViewResponses(v.Items),
		Subtotal:     money(v.Subtotal),
		CustomerID:   v.CustomerID.String(),
		Address:      AddressResponse{Text: v.DeliveryAddress, Latitude: v.Latitude, Longitude: v.Longitude},
		AcceptedAt:   v.AcceptedAt,
	}
	if v.WorkerLatitude != nil && v.WorkerLongitude != nil {
		resp.WorkerPosition = &PositionResponse{Latitude: *v.WorkerLatitude, Longitude: *v.WorkerLongitude}
	}
	return resp
}

func toStatusChangeResponses(views []queries.StatusChangeView) []StatusChangeResponse {
	out := make([]StatusChangeResponse, 0, len(views))
	for _, v := range views {
		out = append(out, StatusChangeResponse{
			Status:    v.Status.String(),
			ChangedAt: v.ChangedAt,
			ActorID:   v.ActorID.String(),
			ActorRole: v.ActorRole.String(),
		})
	}
	return out
}
