package checkout

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"camshop-backend/models"
)

type fakeCatalog struct {
	products   map[primitive.ObjectID]*models.Product
	sales      map[primitive.ObjectID]*models.Sale
	decrements []stockDecrement
}

type stockDecrement struct {
	productID primitive.ObjectID
	variantID primitive.ObjectID
	qty       int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: make(map[primitive.ObjectID]*models.Product),
		sales:    make(map[primitive.ObjectID]*models.Sale),
	}
}

func (f *fakeCatalog) Product(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	return f.products[id], nil
}

func (f *fakeCatalog) Sale(_ context.Context, id primitive.ObjectID) (*models.Sale, error) {
	return f.sales[id], nil
}

func (f *fakeCatalog) DecrementStock(_ context.Context, productID, variantID primitive.ObjectID, qty int) error {
	p := f.products[productID]
	if p == nil {
		return errors.New("product not found")
	}
	v := p.Variant(variantID)
	if v == nil || v.Stocks < qty {
		return errors.New("insufficient stock")
	}
	v.Stocks -= qty
	f.decrements = append(f.decrements, stockDecrement{productID, variantID, qty})
	return nil
}

type fakeCarts struct {
	carts   map[primitive.ObjectID]*models.Cart
	cleared int
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: make(map[primitive.ObjectID]*models.Cart)}
}

func (f *fakeCarts) Get(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	return f.carts[userID], nil
}

func (f *fakeCarts) Clear(_ context.Context, userID primitive.ObjectID) error {
	delete(f.carts, userID)
	f.cleared++
	return nil
}

type fakeOrders struct {
	byCustomID map[string]*models.Order
	insertErr  error
	confirmErr error // consumed by the next ConfirmPayment call
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byCustomID: make(map[string]*models.Order)}
}

func (f *fakeOrders) FindByCustomID(_ context.Context, customID string) (*models.Order, error) {
	o, ok := f.byCustomID[customID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) CustomIDExists(_ context.Context, customID string) (bool, error) {
	_, ok := f.byCustomID[customID]
	return ok, nil
}

func (f *fakeOrders) Insert(_ context.Context, o *models.Order) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	o.ID = primitive.NewObjectID()
	cp := *o
	f.byCustomID[o.CustomOrderID] = &cp
	return nil
}

func (f *fakeOrders) SetSession(_ context.Context, customID, sessionID, sessionURL string) error {
	o := f.byCustomID[customID]
	if o == nil {
		return errors.New("order not found")
	}
	o.SessionID = sessionID
	o.SessionURL = sessionURL
	return nil
}

func (f *fakeOrders) ConfirmPayment(_ context.Context, customID, receiptURL string) error {
	if f.confirmErr != nil {
		err := f.confirmErr
		f.confirmErr = nil
		return err
	}
	o := f.byCustomID[customID]
	if o == nil {
		return errors.New("order not found")
	}
	o.Status = models.StatusOrdered
	o.PaymentStatus = true
	o.ReceiptLink = receiptURL
	return nil
}

func (f *fakeOrders) SetPaidAmount(_ context.Context, customID string, total float64) error {
	o := f.byCustomID[customID]
	if o == nil {
		return errors.New("order not found")
	}
	o.TotalAmount = total
	o.SessionURL = ""
	return nil
}

func (f *fakeOrders) MarkPaymentFailed(_ context.Context, customID string) error {
	o := f.byCustomID[customID]
	if o == nil {
		return errors.New("order not found")
	}
	o.Status = models.StatusPaymentFailed
	o.SessionURL = ""
	return nil
}

type fakePromos struct {
	codes map[string]*models.PromoCode
	used  map[string]map[string]bool // user hex -> code -> recorded
}

func newFakePromos() *fakePromos {
	return &fakePromos{
		codes: make(map[string]*models.PromoCode),
		used:  make(map[string]map[string]bool),
	}
}

func (f *fakePromos) FindByCode(_ context.Context, code string) (*models.PromoCode, error) {
	return f.codes[code], nil
}

func (f *fakePromos) HasUsed(_ context.Context, userID primitive.ObjectID, code string) (bool, error) {
	return f.used[userID.Hex()][code], nil
}

func (f *fakePromos) RecordUse(_ context.Context, userID primitive.ObjectID, code string) (bool, error) {
	key := userID.Hex()
	if f.used[key] == nil {
		f.used[key] = make(map[string]bool)
	}
	if f.used[key][code] {
		return false, nil
	}
	f.used[key][code] = true
	return true, nil
}

func (f *fakePromos) IncrementUsage(_ context.Context, code string) error {
	promo := f.codes[code]
	if promo == nil {
		return errors.New("promo not found")
	}
	if promo.UsageLimit != nil && promo.UsageCount >= *promo.UsageLimit {
		return nil
	}
	promo.UsageCount++
	return nil
}

type fakePayments struct {
	rows map[string]*models.Payment
}

func newFakePayments() *fakePayments {
	return &fakePayments{rows: make(map[string]*models.Payment)}
}

func (f *fakePayments) InsertCharge(_ context.Context, p *models.Payment) (bool, error) {
	if _, ok := f.rows[p.StripePaymentID]; ok {
		return false, nil
	}
	f.rows[p.StripePaymentID] = p
	return true, nil
}

type fakeNotifications struct {
	rows []*models.Notification
}

func (f *fakeNotifications) Add(_ context.Context, n *models.Notification) error {
	f.rows = append(f.rows, n)
	return nil
}

func (f *fakeNotifications) UnreadCount(_ context.Context) (int64, error) {
	var count int64
	for _, n := range f.rows {
		if n.Status == models.NotificationUnread {
			count++
		}
	}
	return count, nil
}

type fakeUsers struct {
	orders map[string][]primitive.ObjectID
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{orders: make(map[string][]primitive.ObjectID)}
}

func (f *fakeUsers) AppendOrder(_ context.Context, userID, orderID primitive.ObjectID) error {
	f.orders[userID.Hex()] = append(f.orders[userID.Hex()], orderID)
	return nil
}

type fakeSessions struct {
	created   []SessionRequest
	expired   []string
	createErr error
	expireErr error
	emptyURL  bool
	counter   int
}

func (f *fakeSessions) CreateSession(_ context.Context, req SessionRequest) (*Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	f.counter++
	s := &Session{ID: "cs_" + req.CustomOrderID + string(rune('0'+f.counter))}
	if !f.emptyURL {
		s.URL = "https://pay.example.com/" + s.ID
	}
	return s, nil
}

func (f *fakeSessions) ExpireSession(_ context.Context, sessionID string) error {
	f.expired = append(f.expired, sessionID)
	return f.expireErr
}

type fakeBroadcaster struct {
	events []string
}

func (f *fakeBroadcaster) Emit(event string, _ interface{}) {
	f.events = append(f.events, event)
}

// catalogProduct registers a single-variant product and returns its ids
func catalogProduct(catalog *fakeCatalog, category, brand string, price float64, stocks int) (primitive.ObjectID, primitive.ObjectID) {
	productID := primitive.NewObjectID()
	variantID := primitive.NewObjectID()
	catalog.products[productID] = &models.Product{
		ID:       productID,
		Name:     brand + " " + category,
		Brand:    brand,
		Category: category,
		Variants: []models.Variant{{
			VariantID: variantID,
			Name:      "Standard",
			Price:     price,
			Stocks:    stocks,
		}},
	}
	return productID, variantID
}
