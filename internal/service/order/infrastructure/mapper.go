// internal/service/order/infrastructure/mapper.go
package infrastructure

import "merx/internal/service/order/domain"

func toOrderModel(order *domain.Order) *OrderModel {
	model := &OrderModel{
		ID:            order.ID,
		UserID:        order.UserID,
		TotalAmount:   order.TotalAmount,
		ShipStreet:    order.ShippingAddress.Street,
		ShipCity:      order.ShippingAddress.City,
		ShipState:     order.ShippingAddress.State,
		ShipZipCode:   order.ShippingAddress.ZipCode,
		ShipCountry:   order.ShippingAddress.Country,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		PaymentMethod: string(order.PaymentMethod),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	if order.Coupon != nil {
		model.CouponCode = order.Coupon.Code
		model.CouponDiscount = order.Coupon.Discount
	}
	return model
}

func toOrderItemModels(order *domain.Order) []OrderItemModel {
	models := make([]OrderItemModel, 0, len(order.Items))
	for _, item := range order.Items {
		models = append(models, OrderItemModel{
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return models
}

func toDomainOrder(model *OrderModel, itemModels []OrderItemModel) *domain.Order {
	order := &domain.Order{
		ID:          model.ID,
		UserID:      model.UserID,
		TotalAmount: model.TotalAmount,
		ShippingAddress: domain.Address{
			Street:  model.ShipStreet,
			City:    model.ShipCity,
			State:   model.ShipState,
			ZipCode: model.ShipZipCode,
			Country: model.ShipCountry,
		},
		Status:        domain.Status(model.Status),
		PaymentStatus: domain.PaymentStatus(model.PaymentStatus),
		PaymentMethod: domain.PaymentMethod(model.PaymentMethod),
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
	if model.CouponCode != "" {
		order.Coupon = &domain.CouponSnapshot{Code: model.CouponCode, Discount: model.CouponDiscount}
	}
	for _, item := range itemModels {
		order.Items = append(order.Items, domain.Item{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return order
}
