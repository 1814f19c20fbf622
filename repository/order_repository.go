package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderFilter struct {
	UserID string
	Status domain.OrderStatus
}

type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter, page Page) ([]*domain.Order, error)
	Count(ctx context.Context, filter OrderFilter) (int64, error)
	// TransitionStatus moves the order from one status to another and sets
	// the extra fields, all in one update filtered on the current status.
	// ErrNoChange means the order was no longer in from.
	TransitionStatus(ctx context.Context, id string, from, to domain.OrderStatus, set map[string]interface{}) (*domain.Order, error)
	AttachPaymentRef(ctx context.Context, id, paymentID string) error
	SetTickets(ctx context.Context, id string, tickets []domain.Ticket) error
	SumPaidRevenue(ctx context.Context) (float64, error)
}

type orderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	collection := db.Collection("orders")

	ensureIndexes(collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "razorpay_order_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})

	return &orderRepository{collection: collection}
}

func (f OrderFilter) bson() bson.M {
	filter := bson.M{}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	return insertOne(ctx, r.collection, o)
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return findOne[domain.Order](ctx, r.collection, bson.M{"id": id})
}

func (r *orderRepository) FindByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*domain.Order, error) {
	return findOne[domain.Order](ctx, r.collection, bson.M{"razorpay_order_id": razorpayOrderID})
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter, page Page) ([]*domain.Order, error) {
	return findMany[domain.Order](ctx, r.collection, filter.bson(), page.findOptions(newestFirst()))
}

func (r *orderRepository) Count(ctx context.Context, filter OrderFilter) (int64, error) {
	return count(ctx, r.collection, filter.bson())
}

func (r *orderRepository) TransitionStatus(ctx context.Context, id string, from, to domain.OrderStatus, set map[string]interface{}) (*domain.Order, error) {
	fields := bson.M{"status": to, "updated_at": time.Now()}
	for k, v := range set {
		fields[k] = v
	}
	order, err := updateAndReturn[domain.Order](ctx, r.collection,
		bson.M{"id": id, "status": from},
		bson.M{"$set": fields},
	)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoChange
	}
	return order, err
}

// AttachPaymentRef records the payment a client claimed for a pending order.
// Orders that have left PENDING keep their payment reference.
func (r *orderRepository) AttachPaymentRef(ctx context.Context, id, paymentID string) error {
	update := bson.M{"$set": bson.M{"razorpay_payment_id": paymentID, "updated_at": time.Now()}}
	return guardedUpdate(ctx, r.collection, bson.M{"id": id, "status": domain.OrderStatusPending}, update)
}

func (r *orderRepository) SetTickets(ctx context.Context, id string, tickets []domain.Ticket) error {
	update := bson.M{"$set": bson.M{"tickets": tickets, "updated_at": time.Now()}}
	return updateOne(ctx, r.collection, bson.M{"id": id}, update)
}

func (r *orderRepository) SumPaidRevenue(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": domain.OrderStatusPaid}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$summary.total"}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
