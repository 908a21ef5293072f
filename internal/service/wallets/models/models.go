package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// Response модели

// WalletResponse ответ с состоянием кошелька
type WalletResponse struct {
	ID                    int64           `json:"id"`
	UserID                int64           `json:"userId"`
	Balance               decimal.Decimal `json:"balance"`
	AvailableMinutes      int             `json:"availableMinutes"`
	TotalMinutesPurchased int             `json:"totalMinutesPurchased"`
	TotalMinutesUsed      int             `json:"totalMinutesUsed"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// TransactionResponse запись журнала операций
type TransactionResponse struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// PayoutResponse заявка на вывод средств
type PayoutResponse struct {
	ID            int64           `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	TransactionID int64           `json:"transactionId"`
	CreatedAt     time.Time       `json:"createdAt"`
	ProcessedAt   *time.Time      `json:"processedAt,omitempty"`
}

// HistoryResponse журнал операций и заявки на вывод одного кошелька
type HistoryResponse struct {
	WalletID     int64                 `json:"walletId"`
	Transactions []TransactionResponse `json:"transactions"`
	Payouts      []PayoutResponse      `json:"payouts"`
}

// Методы конвертации

// FromDomainWallet конвертирует domain модель в DTO
func FromDomainWallet(w *domain.Wallet) *WalletResponse {
	if w == nil {
		return nil
	}
	return &WalletResponse{
		ID:                    w.ID,
		UserID:                w.UserID,
		Balance:               w.Balance,
		AvailableMinutes:      w.AvailableMinutes,
		TotalMinutesPurchased: w.TotalMinutesPurchased,
		TotalMinutesUsed:      w.TotalMinutesUsed,
		CreatedAt:             w.CreatedAt,
		UpdatedAt:             w.UpdatedAt,
	}
}

// FromDomainTransactions конвертирует список транзакций в DTO
func FromDomainTransactions(txs []*domain.Transaction) []TransactionResponse {
	result := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		result = append(result, TransactionResponse{
			ID:          tx.ID,
			Amount:      tx.Amount,
			Type:        string(tx.Type),
			Status:      string(tx.Status),
			Description: tx.Description,
			CreatedAt:   tx.CreatedAt,
		})
	}
	return result
}

// FromDomainPayouts конвертирует список заявок на вывод в DTO
func FromDomainPayouts(payouts []*domain.PayoutRequest) []PayoutResponse {
	result := make([]PayoutResponse, 0, len(payouts))
	for _, p := range payouts {
		result = append(result, PayoutResponse{
			ID:            p.ID,
			Amount:        p.Amount,
			Status:        string(p.Status),
			TransactionID: p.TransactionID,
			CreatedAt:     p.CreatedAt,
			ProcessedAt:   p.ProcessedAt,
		})
	}
	return result
}
