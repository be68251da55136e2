package mappers

import (
	"fmt"

	"gorm.io/datatypes"

	"nomadly/internal/domain/wallet"
	"nomadly/internal/infrastructure/persistence/models"
)

func WalletTransactionToModel(t *wallet.Transaction) *models.WalletTransactionModel {
	model := &models.WalletTransactionModel{
		ID:               t.ID(),
		TransactionID:    t.TransactionID(),
		OwnerID:          t.OwnerID(),
		AmountUSD:        t.AmountUSD(),
		TransactionType:  t.Type().String(),
		ReferenceOrderID: t.ReferenceOrderID(),
		Description:      t.Description(),
		CreatedAt:        t.CreatedAt(),
	}
	if len(t.Metadata()) > 0 {
		model.Metadata = datatypes.JSONMap(t.Metadata())
	}
	return model
}

func WalletTransactionToDomain(model *models.WalletTransactionModel) (*wallet.Transaction, error) {
	txType := wallet.TransactionType(model.TransactionType)
	if !txType.IsValid() {
		return nil, fmt.Errorf("invalid transaction type: %s", model.TransactionType)
	}

	return wallet.Reconstruct(wallet.ReconstructParams{
		ID:               model.ID,
		TransactionID:    model.TransactionID,
		OwnerID:          model.OwnerID,
		AmountUSD:        model.AmountUSD,
		Type:             txType,
		ReferenceOrderID: model.ReferenceOrderID,
		Description:      model.Description,
		Metadata:         map[string]interface{}(model.Metadata),
		CreatedAt:        model.CreatedAt,
	}), nil
}
