// Package store implements the checkout store interfaces on MongoDB.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"camshop-backend/models"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// Store exposes the checkout-facing persistence operations over a single
// database handle. Controllers that only do plain CRUD keep their own
// collection handles instead.
type Store struct {
	db *mongo.Database
}

func New(client *mongo.Client, dbName string) *Store {
	return &Store{db: client.Database(dbName)}
}

func (s *Store) Database() *mongo.Database {
	return s.db
}

// EnsureIndexes creates the unique indexes the pipeline's idempotency
// guarantees rest on
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{"orders", mongo.IndexModel{Keys: bson.D{{Key: "custom_order_id", Value: 1}}, Options: unique}},
		{"payments", mongo.IndexModel{Keys: bson.D{{Key: "stripe_payment_id", Value: 1}}, Options: unique}},
		{"promocodes", mongo.IndexModel{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique}},
		{"promousages", mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique}},
		{"users", mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
	}
	for _, idx := range indexes {
		if _, err := s.db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("ensure index on %s: %w", idx.collection, err)
		}
	}
	return nil
}

// --- CatalogStore ---

func (s *Store) Product(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Store) Sale(ctx context.Context, id primitive.ObjectID) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.Collection("sales").FindOne(ctx, bson.M{"_id": id}).Decode(&sale)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// DecrementStock subtracts qty from the matched variant. The filter
// requires stocks >= qty so a concurrent or duplicated decrement can never
// drive the counter negative.
func (s *Store) DecrementStock(ctx context.Context, productID, variantID primitive.ObjectID, qty int) error {
	res, err := s.db.Collection("products").UpdateOne(ctx,
		bson.M{
			"_id": productID,
			"variants": bson.M{"$elemMatch": bson.M{
				"variant_id": variantID,
				"stocks":     bson.M{"$gte": qty},
			}},
		},
		bson.M{"$inc": bson.M{"variants.$.stocks": -qty}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// --- CartStore ---

func (s *Store) Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Collection("carts").FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *Store) Clear(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.db.Collection("carts").DeleteOne(ctx, bson.M{"user_id": userID})
	return err
}

// --- OrderStore ---

func (s *Store) FindByCustomID(ctx context.Context, customID string) (*models.Order, error) {
	var order models.Order
	err := s.db.Collection("orders").FindOne(ctx, bson.M{"custom_order_id": customID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Store) CustomIDExists(ctx context.Context, customID string) (bool, error) {
	count, err := s.db.Collection("orders").CountDocuments(ctx, bson.M{"custom_order_id": customID})
	return count > 0, err
}

func (s *Store) Insert(ctx context.Context, o *models.Order) error {
	res, err := s.db.Collection("orders").InsertOne(ctx, o)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		o.ID = id
	}
	return nil
}

func (s *Store) SetSession(ctx context.Context, customID, sessionID, sessionURL string) error {
	return s.updateOrder(ctx, customID, bson.M{"$set": bson.M{
		"session_id":  sessionID,
		"session_url": sessionURL,
	}})
}

func (s *Store) ConfirmPayment(ctx context.Context, customID, receiptURL string) error {
	return s.updateOrder(ctx, customID, bson.M{"$set": bson.M{
		"status":         models.StatusOrdered,
		"payment_status": true,
		"receipt_link":   receiptURL,
	}})
}

func (s *Store) SetPaidAmount(ctx context.Context, customID string, total float64) error {
	return s.updateOrder(ctx, customID, bson.M{"$set": bson.M{
		"total_amount": total,
		"session_url":  "",
	}})
}

// MarkPaymentFailed flips a pending order only; the condition keeps a late
// expiry delivery from clobbering an order the charge already confirmed.
func (s *Store) MarkPaymentFailed(ctx context.Context, customID string) error {
	_, err := s.db.Collection("orders").UpdateOne(ctx,
		bson.M{
			"custom_order_id": customID,
			"status":          models.StatusPending,
			"payment_status":  false,
		},
		bson.M{"$set": bson.M{
			"status":      models.StatusPaymentFailed,
			"session_url": "",
		}},
	)
	return err
}

func (s *Store) updateOrder(ctx context.Context, customID string, update bson.M) error {
	res, err := s.db.Collection("orders").UpdateOne(ctx, bson.M{"custom_order_id": customID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("order %s not found", customID)
	}
	return nil
}

// --- PromoStore ---

func (s *Store) FindByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := s.db.Collection("promocodes").FindOne(ctx, bson.M{"code": code, "archived": false}).Decode(&promo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (s *Store) HasUsed(ctx context.Context, userID primitive.ObjectID, code string) (bool, error) {
	count, err := s.db.Collection("promousages").CountDocuments(ctx, bson.M{
		"user_id":          userID,
		"promo_codes_used": code,
	})
	return count > 0, err
}

// RecordUse appends the code to the user's ledger with $addToSet: the
// write reports whether this delivery actually added it, which is the
// exactly-once gate for usage accounting.
func (s *Store) RecordUse(ctx context.Context, userID primitive.ObjectID, code string) (bool, error) {
	res, err := s.db.Collection("promousages").UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$addToSet": bson.M{"promo_codes_used": code}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0 || res.UpsertedCount > 0, nil
}

// IncrementUsage bumps the counter only while it is below the usage limit
// (or the code is unlimited), so no confirmation can push it past N.
func (s *Store) IncrementUsage(ctx context.Context, code string) error {
	_, err := s.db.Collection("promocodes").UpdateOne(ctx,
		bson.M{
			"code": code,
			"$or": bson.A{
				bson.M{"usage_limit": bson.M{"$exists": false}},
				bson.M{"usage_limit": nil},
				bson.M{"$expr": bson.M{"$lt": bson.A{"$usage_count", "$usage_limit"}}},
			},
		},
		bson.M{"$inc": bson.M{"usage_count": 1}},
	)
	return err
}

// --- PaymentStore ---

// InsertCharge appends a ledger row. The unique index on
// stripe_payment_id turns a redelivered charge into a duplicate-key error,
// reported as inserted=false rather than a failure.
func (s *Store) InsertCharge(ctx context.Context, p *models.Payment) (bool, error) {
	_, err := s.db.Collection("payments").InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// --- NotificationStore ---

func (s *Store) Add(ctx context.Context, n *models.Notification) error {
	_, err := s.db.Collection("notifications").InsertOne(ctx, n)
	return err
}

func (s *Store) UnreadCount(ctx context.Context) (int64, error) {
	return s.db.Collection("notifications").CountDocuments(ctx, bson.M{"status": models.NotificationUnread})
}

// --- UserStore ---

func (s *Store) AppendOrder(ctx context.Context, userID, orderID primitive.ObjectID) error {
	_, err := s.db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"orders": orderID}},
	)
	return err
}
