package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ridelink/internal/models"
	"ridelink/pkg/keyvalue"
	"ridelink/pkg/logger"
	"ridelink/pkg/payment"

	"github.com/google/uuid"
)

const (
	savedCardsKey     = "savedCards"
	paymentHistoryKey = "paymentHistory"
)

type PaymentService interface {
	// AddCard validates the raw card data and persists a new instrument
	// holding only the masked number. The CVV is used for validation and
	// discarded. The first card added becomes the default.
	AddCard(ctx context.Context, number, expiry, cvv, holderName string) (*models.Card, error)

	// ListCards returns the saved cards in insertion order. Storage read
	// failures degrade to an empty list.
	ListCards(ctx context.Context) ([]models.Card, error)

	// SetDefaultCard makes the given card the default and clears the
	// flag on every other card.
	SetDefaultCard(ctx context.Context, id string) error

	// DeleteCard removes the card. Deleting the default promotes the
	// first remaining card.
	DeleteCard(ctx context.Context, id string) error

	// ProcessPayment charges the given amount. A nil cardID means cash,
	// which always succeeds and is not recorded. Card charges go through
	// the gateway; successes are appended to the audit history.
	ProcessPayment(ctx context.Context, amount float64, cardID *string) (string, error)

	// ListTransactions returns the audit history in insertion order.
	ListTransactions(ctx context.Context) ([]models.Transaction, error)

	// Subscribe registers a listener invoked with the full card set on
	// every card mutation. The returned function unsubscribes.
	Subscribe(listener func([]models.Card)) func()
}

type paymentService struct {
	store    keyvalue.Store
	gateway  payment.Provider
	currency string
	logger   *logger.Logger

	// mu serializes storage-mutating operations so overlapping calls
	// cannot both read the pre-mutation collection and drop a write.
	mu        sync.Mutex
	listeners map[int]func([]models.Card)
	nextID    int
}

func NewPaymentService(store keyvalue.Store, gateway payment.Provider, currency string, logger *logger.Logger) PaymentService {
	if currency == "" {
		currency = "USD"
	}
	return &paymentService{
		store:     store,
		gateway:   gateway,
		currency:  currency,
		logger:    logger,
		listeners: make(map[int]func([]models.Card)),
	}
}

func (s *paymentService) AddCard(ctx context.Context, number, expiry, cvv, holderName string) (*models.Card, error) {
	if validation := ValidateCard(number, expiry, cvv); !validation.Valid {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validation.Reason)
	}
	if holderName == "" {
		return nil, fmt.Errorf("%w: cardholder name is required", ErrValidation)
	}

	s.mu.Lock()

	cards, err := s.loadCards(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	card := models.Card{
		ID:           uuid.NewString(),
		MaskedNumber: MaskCardNumber(number),
		Expiry:       expiry,
		HolderName:   holderName,
		Brand:        DetectBrand(number),
		IsDefault:    len(cards) == 0,
	}
	// The full number is discarded here; only the masked form survives.
	cards = append(cards, card)

	if err := s.saveCards(ctx, cards); err != nil {
		s.mu.Unlock()
		s.logger.WithError(err).Error("Failed to persist card")
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	listeners := s.cardListenersLocked()
	s.mu.Unlock()

	notifyCards(listeners, cards)
	s.logger.WithCardID(card.ID).WithField("brand", card.Brand).Info("Card saved")
	return &card, nil
}

func (s *paymentService) ListCards(ctx context.Context) ([]models.Card, error) {
	cards, err := s.loadCards(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read saved cards, returning empty list")
		return []models.Card{}, nil
	}
	return cards, nil
}

func (s *paymentService) SetDefaultCard(ctx context.Context, id string) error {
	s.mu.Lock()

	cards, err := s.loadCards(ctx)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	found := false
	for i := range cards {
		cards[i].IsDefault = cards[i].ID == id
		if cards[i].IsDefault {
			found = true
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrCardNotFound
	}

	if err := s.saveCards(ctx, cards); err != nil {
		s.mu.Unlock()
		s.logger.WithError(err).Error("Failed to persist default card change")
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	listeners := s.cardListenersLocked()
	s.mu.Unlock()

	notifyCards(listeners, cards)
	return nil
}

func (s *paymentService) DeleteCard(ctx context.Context, id string) error {
	s.mu.Lock()

	cards, err := s.loadCards(ctx)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	index := -1
	for i := range cards {
		if cards[i].ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return ErrCardNotFound
	}

	wasDefault := cards[index].IsDefault
	cards = append(cards[:index], cards[index+1:]...)

	// Promote the first remaining card when the default is removed.
	if wasDefault && len(cards) > 0 {
		cards[0].IsDefault = true
	}

	if err := s.saveCards(ctx, cards); err != nil {
		s.mu.Unlock()
		s.logger.WithError(err).Error("Failed to persist card deletion")
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	listeners := s.cardListenersLocked()
	s.mu.Unlock()

	notifyCards(listeners, cards)
	s.logger.WithCardID(id).Info("Card deleted")
	return nil
}

func (s *paymentService) ProcessPayment(ctx context.Context, amount float64, cardID *string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	// Cash rides settle outside the system and leave no audit record.
	if cardID == nil {
		return fmt.Sprintf("CASH%d", time.Now().UnixMilli()), nil
	}

	response, err := s.gateway.Charge(ctx, &payment.ChargeRequest{
		Amount:      amount,
		Currency:    s.currency,
		Description: "Ride payment",
		Reference:   *cardID,
	})
	if err != nil {
		if errors.Is(err, payment.ErrDeclined) {
			s.logger.WithCardID(*cardID).WithField("amount", amount).Warn("Payment declined by gateway")
			return "", ErrPaymentDeclined
		}
		s.logger.WithError(err).Error("Gateway charge failed")
		return "", fmt.Errorf("failed to process payment: %w", err)
	}

	transaction := models.Transaction{
		ID:        response.TransactionID,
		Amount:    amount,
		CardID:    cardID,
		Timestamp: time.Now(),
		Status:    models.TransactionStatusCompleted,
	}
	if err := s.appendTransaction(ctx, transaction); err != nil {
		s.logger.WithError(err).Error("Failed to record transaction")
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.logger.LogPaymentEvent(transaction.ID, "completed", amount)
	return transaction.ID, nil
}

func (s *paymentService) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	transactions, err := s.loadTransactions(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read payment history, returning empty list")
		return []models.Transaction{}, nil
	}
	return transactions, nil
}

func (s *paymentService) Subscribe(listener func([]models.Card)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = listener

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// appendTransaction loads the history strictly: a read failure here must
// abort the append, or a transient error would rewrite the audit log as a
// one-element list. Only the read-only ListTransactions degrades.
func (s *paymentService) appendTransaction(ctx context.Context, transaction models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	transactions, err := s.loadTransactions(ctx)
	if err != nil {
		return err
	}
	transactions = append(transactions, transaction)

	data, err := json.Marshal(transactions)
	if err != nil {
		return fmt.Errorf("failed to encode payment history: %w", err)
	}
	return s.store.Set(ctx, paymentHistoryKey, string(data))
}

func (s *paymentService) loadTransactions(ctx context.Context) ([]models.Transaction, error) {
	raw, err := s.store.Get(ctx, paymentHistoryKey)
	if err != nil {
		if errors.Is(err, keyvalue.ErrKeyNotFound) {
			return []models.Transaction{}, nil
		}
		return nil, fmt.Errorf("failed to read payment history: %w", err)
	}

	var transactions []models.Transaction
	if err := json.Unmarshal([]byte(raw), &transactions); err != nil {
		return nil, fmt.Errorf("failed to parse payment history: %w", err)
	}
	return transactions, nil
}

func (s *paymentService) loadCards(ctx context.Context) ([]models.Card, error) {
	raw, err := s.store.Get(ctx, savedCardsKey)
	if err != nil {
		if errors.Is(err, keyvalue.ErrKeyNotFound) {
			return []models.Card{}, nil
		}
		return nil, fmt.Errorf("failed to read saved cards: %w", err)
	}

	var cards []models.Card
	if err := json.Unmarshal([]byte(raw), &cards); err != nil {
		return nil, fmt.Errorf("failed to parse saved cards: %w", err)
	}
	return cards, nil
}

func (s *paymentService) saveCards(ctx context.Context, cards []models.Card) error {
	data, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("failed to encode saved cards: %w", err)
	}
	return s.store.Set(ctx, savedCardsKey, string(data))
}

func (s *paymentService) cardListenersLocked() []func([]models.Card) {
	listeners := make([]func([]models.Card), 0, len(s.listeners))
	for _, listener := range s.listeners {
		listeners = append(listeners, listener)
	}
	return listeners
}

// notifyCards runs with the mutex released so a listener may call back
// into the service, including its own unsubscribe.
func notifyCards(listeners []func([]models.Card), cards []models.Card) {
	snapshot := make([]models.Card, len(cards))
	copy(snapshot, cards)
	for _, listener := range listeners {
		listener(snapshot)
	}
}
