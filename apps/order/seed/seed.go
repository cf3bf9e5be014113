package seed

import (
	"context"
	"fmt"

	"order-system/apps/order/model"
	"order-system/apps/order/service"
)

type sampleOrder struct {
	customerID int64
	details    []model.Fields
}

var samples = []sampleOrder{
	{
		customerID: 1001,
		details: []model.Fields{
			{model.FieldItemID: 5001, model.FieldQuantity: 2, model.FieldUnitRate: 10.50},
			{model.FieldItemID: 5002, model.FieldQuantity: 3, model.FieldUnitRate: 15.75},
		},
	},
	{
		customerID: 1002,
		details: []model.Fields{
			{model.FieldItemID: 5003, model.FieldQuantity: 1, model.FieldUnitRate: 25.99},
		},
	},
}

// Seed 在库为空时写入示例订单，返回是否写入
func Seed(ctx context.Context, svc *service.Service) (bool, error) {
	n, err := svc.CountHeaders(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	for _, s := range samples {
		header, err := svc.CreateHeader(ctx, model.Fields{model.FieldCustomerID: s.customerID})
		if err != nil {
			return false, fmt.Errorf("seed order for customer %d: %w", s.customerID, err)
		}
		for _, fields := range s.details {
			if _, err := svc.CreateDetail(ctx, header.OrderID, fields); err != nil {
				return false, fmt.Errorf("seed detail for order %d: %w", header.OrderID, err)
			}
		}
	}
	return true, nil
}
