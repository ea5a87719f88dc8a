package handlers

import (
	"errors"
	"net/http"

	"ridelink/internal/services"
	"ridelink/internal/utils"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

type addCardRequest struct {
	Number     string `json:"number" binding:"required"`
	Expiry     string `json:"expiry" binding:"required"`
	CVV        string `json:"cvv" binding:"required"`
	HolderName string `json:"holder_name" binding:"required"`
}

type validateCardRequest struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

type processPaymentRequest struct {
	Amount float64 `json:"amount"`
	CardID *string `json:"card_id"`
}

// ListCards returns the saved cards in insertion order.
func (h *PaymentHandler) ListCards(c *gin.Context) {
	cards, err := h.paymentService.ListCards(c.Request.Context())
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}
	utils.SuccessResponse(c, "", cards)
}

// AddCard validates and saves a new card.
func (h *PaymentHandler) AddCard(c *gin.Context) {
	var request addCardRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	card, err := h.paymentService.AddCard(c.Request.Context(), request.Number, request.Expiry, request.CVV, request.HolderName)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	utils.SuccessResponse(c, "Card saved", card)
}

// ValidateCard runs the pure validation checks without saving anything.
func (h *PaymentHandler) ValidateCard(c *gin.Context) {
	var request validateCardRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "", services.ValidateCard(request.Number, request.Expiry, request.CVV))
}

// SetDefaultCard marks a card as the default instrument.
func (h *PaymentHandler) SetDefaultCard(c *gin.Context) {
	if err := h.paymentService.SetDefaultCard(c.Request.Context(), c.Param("id")); err != nil {
		respondPaymentError(c, err)
		return
	}
	utils.SuccessResponse(c, "Default card updated", nil)
}

// DeleteCard removes a card.
func (h *PaymentHandler) DeleteCard(c *gin.Context) {
	if err := h.paymentService.DeleteCard(c.Request.Context(), c.Param("id")); err != nil {
		respondPaymentError(c, err)
		return
	}
	utils.SuccessResponse(c, "Card deleted", nil)
}

// ProcessPayment charges the amount against a saved card, or records a
// cash settlement when card_id is absent.
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var request processPaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	transactionID, err := h.paymentService.ProcessPayment(c.Request.Context(), request.Amount, request.CardID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment processed", gin.H{"transaction_id": transactionID})
}

// ListTransactions returns the payment audit history.
func (h *PaymentHandler) ListTransactions(c *gin.Context) {
	transactions, err := h.paymentService.ListTransactions(c.Request.Context())
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}
	utils.SuccessResponse(c, "", transactions)
}

func respondPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, services.ErrCardNotFound):
		utils.NotFoundResponse(c, "Card not found")
	case errors.Is(err, services.ErrPaymentDeclined):
		utils.ErrorResponse(c, http.StatusPaymentRequired, "PAYMENT_DECLINED", err.Error())
	default:
		utils.InternalServerErrorResponse(c)
	}
}
