package service

import (
	"checkout/api/internal/domain"
	"checkout/api/internal/infra/postgres"
	"checkout/api/internal/logger"
	"checkout/api/internal/repository"
	"checkout/pkg/utils"
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRequest struct {
	PayerContact   string
	Product        domain.Product
	Shipping       domain.Shipping
	TotalFiat      decimal.Decimal
	ShippingOrigin string
}

type OrdersService struct {
	repo   repository.Orders
	issuer Invoices
	store  Sessions
	db     *gorm.DB
	l      logger.Logger
}

func NewOrdersService(db *gorm.DB, repo repository.Orders, issuer Invoices, store Sessions, l logger.Logger) *OrdersService {
	return &OrdersService{db: db, repo: repo, issuer: issuer, store: store, l: l}
}

// Create issues the invoice first and then records the order under the
// next number of the order sequence.
func (s *OrdersService) Create(ctx context.Context, req OrderRequest) (*domain.Orders, *Invoice, error) {
	invoice, err := s.issuer.CreateInvoice(ctx, req.PayerContact, req.TotalFiat)
	if err != nil {
		return nil, nil, err
	}

	order := &domain.Orders{
		SessionID:       invoice.SessionID,
		PayerContact:    req.PayerContact,
		ProductUrl:      req.Product.Url,
		ProductTitle:    req.Product.Title,
		ProductImage:    req.Product.Image,
		ProductCurrency: strings.ToUpper(req.Product.Currency),
		ProductPrice:    req.Product.Price,
		Shipping:        utils.MarshalString(req.Shipping),
		TotalFiat:       req.TotalFiat,
		Amount:          invoice.Amount,
		ShippingOrigin:  req.ShippingOrigin,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.repo.NextOrderNumber(tx)
		if err != nil {
			return err
		}
		order.OrderNumber = n
		return s.repo.Create(tx, order)
	})
	if err != nil {
		errId := s.l.TemplOrderErr("create order error: "+err.Error(), logger.GenErrorId(), order.OrderNumber, invoice.SessionID, logger.NA, logger.NA)
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrInternal, errId)
	}

	s.l.TemplOrderInfo("order created", order.OrderNumber, order.SessionID, order.TotalFiat, order.Amount)

	return order, invoice, nil
}

// returns the order with its payment session, lazy expiry applied
func (s *OrdersService) Find(ctx context.Context, orderNumber int64) (*domain.Orders, *domain.PaymentSessions, error) {
	if orderNumber < domain.ORDER_NUMBER_START {
		return nil, nil, domain.ErrOrderNotFound
	}

	order, err := s.repo.FindByNumber(s.db.WithContext(ctx), orderNumber)
	if err != nil {
		if postgres.IsNotFound(err) {
			return nil, nil, domain.ErrOrderNotFound
		}
		return nil, nil, fmt.Errorf("find order: %w", err)
	}

	session, err := s.store.Get(ctx, order.SessionID)
	if err != nil {
		return nil, nil, err
	}

	return order, session, nil
}
