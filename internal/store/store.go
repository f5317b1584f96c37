// Package store owns all persisted rows. Every operation is a short,
// self-contained transaction; nothing spans a user interaction.
package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"shop_bots/internal/model"
)

// Store wraps the shared gorm handle used by both bot flows.
type Store struct {
	db *gorm.DB
}

// Open connects to the sqlite file and migrates the five tables.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	err = db.AutoMigrate(
		&model.User{},
		&model.PendingAccount{},
		&model.Order{},
		&model.SpecialOffer{},
		&model.HelpRequest{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func New(db *gorm.DB) *Store { return &Store{db: db} }

// CreatePendingAccount files an account request for the admin to review.
func (s *Store) CreatePendingAccount(telegramID int64, username, password string) (*model.PendingAccount, error) {
	acc := &model.PendingAccount{
		TelegramID: telegramID,
		Username:   username,
		Password:   password,
	}
	if err := s.db.Create(acc).Error; err != nil {
		return nil, err
	}
	return acc, nil
}

// PendingAccounts lists every open request, oldest first.
func (s *Store) PendingAccounts() ([]model.PendingAccount, error) {
	var accounts []model.PendingAccount
	if err := s.db.Order("id").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// ApproveAccount promotes a pending request into an approved user and removes
// the request, atomically. Returns ok=false when the request no longer
// exists, e.g. on a duplicate approve click.
func (s *Store) ApproveAccount(requestID uint) (*model.User, bool, error) {
	var user *model.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var pending model.PendingAccount
		if err := tx.First(&pending, requestID).Error; err != nil {
			return err
		}
		user = &model.User{
			TelegramID: pending.TelegramID,
			Username:   pending.Username,
			Password:   pending.Password,
			Approved:   true,
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Delete(&model.PendingAccount{}, requestID).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// RejectAccount drops a pending request. Rejecting an id that is already gone
// is a no-op.
func (s *Store) RejectAccount(requestID uint) error {
	return s.db.Delete(&model.PendingAccount{}, requestID).Error
}

// UserByID returns the approved user with the given Telegram id, or nil.
func (s *Store) UserByID(telegramID int64) (*model.User, error) {
	var user model.User
	err := s.db.Where("telegram_id = ? AND approved = ?", telegramID, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserByUsername returns the approved user with the given handle, or nil.
func (s *Store) UserByUsername(username string) (*model.User, error) {
	var user model.User
	err := s.db.Where("username = ? AND approved = ?", username, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateOrder persists a completed checkout. userID is nil for unregistered
// buyers. The total is computed by the pricing engine before it gets here and
// is stored as given.
func (s *Store) CreateOrder(userID *int64, username, productName string, quantity, unitPrice, totalPrice float64, paymentMethod string) (*model.Order, error) {
	order := &model.Order{
		OrderNo:       newOrderNo(),
		UserID:        userID,
		Username:      username,
		ProductName:   productName,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		TotalPrice:    totalPrice,
		PaymentMethod: paymentMethod,
		Status:        model.OrderStatusPending,
	}
	if err := s.db.Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// newOrderNo builds a short human-quotable reference for an order.
func newOrderNo() string {
	return "ZM-" + uuid.New().String()[:8]
}

// UserOrders lists a user's orders, most recent first.
func (s *Store) UserOrders(telegramID int64) ([]model.Order, error) {
	var orders []model.Order
	if err := s.db.Where("user_id = ?", telegramID).Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// AllOrders lists every order, most recent first.
func (s *Store) AllOrders() ([]model.Order, error) {
	var orders []model.Order
	if err := s.db.Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// AllUsers lists every approved user.
func (s *Store) AllUsers() ([]model.User, error) {
	var users []model.User
	if err := s.db.Where("approved = ?", true).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateSpecialOffer records an admin-created deal for one user.
func (s *Store) CreateSpecialOffer(userID int64, productName, description string, price float64) (*model.SpecialOffer, error) {
	offer := &model.SpecialOffer{
		UserID:      userID,
		ProductName: productName,
		Description: description,
		Price:       price,
		Active:      true,
	}
	if err := s.db.Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// ActiveOffers lists the active offers owned by one user.
func (s *Store) ActiveOffers(userID int64) ([]model.SpecialOffer, error) {
	var offers []model.SpecialOffer
	if err := s.db.Where("user_id = ? AND active = ?", userID, true).Order("id").Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

// DeactivateOffer hides an offer from its owner's purchase view.
func (s *Store) DeactivateOffer(offerID uint) error {
	return s.db.Model(&model.SpecialOffer{}).Where("id = ?", offerID).Update("active", false).Error
}

// CreateHelpRequest records a customer inquiry.
func (s *Store) CreateHelpRequest(telegramID int64, username, requestType, message string) (*model.HelpRequest, error) {
	req := &model.HelpRequest{
		TelegramID:  telegramID,
		Username:    username,
		RequestType: requestType,
		Message:     message,
	}
	if err := s.db.Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

// Stats aggregates the admin panel counters.
type Stats struct {
	Users           int64
	Orders          int64
	PendingAccounts int64
	Revenue         float64
}

// Stats counts users, orders and pending requests, and sums order totals
// regardless of status.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	if err := s.db.Model(&model.User{}).Where("approved = ?", true).Count(&st.Users).Error; err != nil {
		return Stats{}, fmt.Errorf("count users: %w", err)
	}
	if err := s.db.Model(&model.Order{}).Count(&st.Orders).Error; err != nil {
		return Stats{}, fmt.Errorf("count orders: %w", err)
	}
	if err := s.db.Model(&model.PendingAccount{}).Count(&st.PendingAccounts).Error; err != nil {
		return Stats{}, fmt.Errorf("count pending: %w", err)
	}
	err := s.db.Model(&model.Order{}).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&st.Revenue).Error
	if err != nil {
		return Stats{}, fmt.Errorf("sum revenue: %w", err)
	}
	return st, nil
}
