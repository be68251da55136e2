package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"nomadly/internal/domain/order"
	vo "nomadly/internal/domain/order/valueobjects"
	"nomadly/internal/infrastructure/persistence/models"
)

func OrderToModel(o *order.Order) (*models.OrderModel, error) {
	details, err := json.Marshal(o.ServiceDetails())
	if err != nil {
		return nil, fmt.Errorf("failed to encode service details: %w", err)
	}

	model := &models.OrderModel{
		OrderID:             o.OrderID(),
		OwnerID:             o.OwnerID(),
		ServiceType:         o.ServiceType().String(),
		RequestedAmountUSD:  o.RequestedAmountUSD(),
		CryptoCurrency:      o.CryptoCurrency(),
		PaymentAddress:      o.PaymentAddress(),
		RequiredCrypto:      o.RequiredCryptoAmount(),
		PaymentStatus:       o.PaymentStatus().String(),
		RegistrationPending: o.RegistrationPending(),
		ServiceDetails:      datatypes.JSON(details),
		Version:             o.Version(),
		CreatedAt:           o.CreatedAt(),
		UpdatedAt:           o.UpdatedAt(),
	}
	if len(o.Metadata()) > 0 {
		model.Metadata = datatypes.JSONMap(o.Metadata())
	}
	return model, nil
}

func OrderToDomain(model *models.OrderModel) (*order.Order, error) {
	status := vo.PaymentStatus(model.PaymentStatus)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", model.PaymentStatus)
	}
	serviceType := vo.ServiceType(model.ServiceType)
	if !serviceType.IsValid() {
		return nil, fmt.Errorf("invalid service type: %s", model.ServiceType)
	}

	var details vo.ServiceDetails
	if len(model.ServiceDetails) > 0 {
		if err := json.Unmarshal(model.ServiceDetails, &details); err != nil {
			return nil, fmt.Errorf("failed to decode service details: %w", err)
		}
	}

	return order.Reconstruct(order.ReconstructParams{
		OrderID:             model.OrderID,
		OwnerID:             model.OwnerID,
		ServiceType:         serviceType,
		RequestedAmountUSD:  model.RequestedAmountUSD,
		CryptoCurrency:      model.CryptoCurrency,
		PaymentAddress:      model.PaymentAddress,
		RequiredCrypto:      model.RequiredCrypto,
		PaymentStatus:       status,
		RegistrationPending: model.RegistrationPending,
		ServiceDetails:      details,
		Metadata:            map[string]interface{}(model.Metadata),
		Version:             model.Version,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}), nil
}
