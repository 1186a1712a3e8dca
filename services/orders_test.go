package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/linkme-io/linkme-backend/database"
	"github.com/linkme-io/linkme-backend/models"
)

func validOrderInput(profileID uuid.UUID) OrderInput {
	return OrderInput{
		ProfileID:         profileID,
		CustomerFirstName: "Jane",
		CustomerLastName:  "Doe",
		CustomerEmail:     "Jane@Example.com",
		CustomerPhone:     "+962 79 000 0000",
		ShippingAddress:   "1 Rainbow St",
		ShippingCity:      "Amman",
		PaymentMethod:     models.PaymentCashOnDelivery,
		TotalAmount:       ptr(25.0),
	}
}

func TestOrderSnapshotIsFrozen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe")
	orders := NewOrders(f.db)

	order, err := orders.Create(ctx, f.user.ID, validOrderInput(profile.ID))
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "status", order.Status, models.OrderStatusPending)
	mustEqual(t, "country", order.ShippingCountry, "Jordan")
	mustEqual(t, "email", order.CustomerEmail, "jane@example.com")
	mustEqual(t, "card type", order.CardType, models.ProfileTypePersonal)
	mustEqual(t, "card color", order.CardColor, models.DefaultColor)
	mustEqual(t, "card template", order.CardTemplate, models.DefaultTemplate)
	if !strings.HasPrefix(order.OrderNumber, "ORD-") {
		t.Fatalf("order number = %q", order.OrderNumber)
	}

	if _, err := f.registry.Update(ctx, profile.ID, f.user.ID, ProfilePatch{
		Color:    Some("#FF0000"),
		Template: Some("classic"),
	}); err != nil {
		t.Fatal(err)
	}

	again, err := orders.GetMine(ctx, f.user.ID, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "frozen color", again.CardColor, models.DefaultColor)
	mustEqual(t, "frozen template", again.CardTemplate, models.DefaultTemplate)
}

func TestOrderOverrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.createProfile(t, f.user.ID, models.ProfileTypeBusiness, "Acme Corp")
	orders := NewOrders(f.db)

	in := validOrderInput(profile.ID)
	in.CardColor = ptr("#000000")
	in.CardDesignMode = ptr(models.DesignModeTemplate)
	in.ShippingCountry = "UAE"
	order, err := orders.Create(ctx, f.user.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "color override", order.CardColor, "#000000")
	mustEqual(t, "mode override", order.CardDesignMode, models.DesignModeTemplate)
	mustEqual(t, "template from profile", order.CardTemplate, models.DefaultTemplate)
	mustEqual(t, "country", order.ShippingCountry, "UAE")
	mustEqual(t, "card type", order.CardType, models.ProfileTypeBusiness)
}

func TestOrderCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe")
	orders := NewOrders(f.db)

	tests := []struct {
		name   string
		mutate func(*OrderInput)
		want   int
	}{
		{"missing profile", func(in *OrderInput) { in.ProfileID = uuid.Nil }, http.StatusBadRequest},
		{"bad email", func(in *OrderInput) { in.CustomerEmail = "nope" }, http.StatusBadRequest},
		{"bad phone", func(in *OrderInput) { in.CustomerPhone = "call me" }, http.StatusBadRequest},
		{"missing amount", func(in *OrderInput) { in.TotalAmount = nil }, http.StatusBadRequest},
		{"negative amount", func(in *OrderInput) { in.TotalAmount = ptr(-1.0) }, http.StatusBadRequest},
		{"bad payment", func(in *OrderInput) { in.PaymentMethod = "barter" }, http.StatusBadRequest},
		{"bad color", func(in *OrderInput) { in.CardColor = ptr("red") }, http.StatusBadRequest},
		{"foreign profile", func(in *OrderInput) { in.ProfileID = uuid.New() }, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validOrderInput(profile.ID)
			tt.mutate(&in)
			_, err := orders.Create(ctx, f.user.ID, in)
			wantStatus(t, err, tt.want)
		})
	}

	free, err := orders.Create(ctx, f.user.ID, func() OrderInput {
		in := validOrderInput(profile.ID)
		in.TotalAmount = ptr(0.0)
		return in
	}())
	if err != nil {
		t.Fatalf("zero amount should be accepted: %v", err)
	}
	mustEqual(t, "amount", free.TotalAmount, 0.0)
}

func TestOrderStatusLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe")
	orders := NewOrders(f.db)

	order, err := orders.Create(ctx, f.user.ID, validOrderInput(profile.ID))
	if err != nil {
		t.Fatal(err)
	}

	shipped, err := orders.UpdateStatus(ctx, order.ID, StatusUpdate{Status: "Shipped", AdminNotes: ptr("via Aramex")})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "status", shipped.Status, models.OrderStatusShipped)
	if shipped.ShippedAt == nil || shipped.DeliveredAt != nil {
		t.Fatalf("timestamps = %v / %v", shipped.ShippedAt, shipped.DeliveredAt)
	}
	if shipped.AdminNotes == nil || *shipped.AdminNotes != "via Aramex" {
		t.Fatalf("admin notes = %v", shipped.AdminNotes)
	}

	delivered, err := orders.UpdateStatus(ctx, order.ID, StatusUpdate{Status: models.OrderStatusDelivered})
	if err != nil {
		t.Fatal(err)
	}
	if delivered.DeliveredAt == nil || delivered.ShippedAt == nil {
		t.Fatal("delivered order should carry both timestamps")
	}

	// any transition is accepted
	if _, err := orders.UpdateStatus(ctx, order.ID, StatusUpdate{Status: models.OrderStatusPending}); err != nil {
		t.Fatal(err)
	}

	_, err = orders.UpdateStatus(ctx, order.ID, StatusUpdate{Status: "lost"})
	wantStatus(t, err, http.StatusBadRequest)
	_, err = orders.UpdateStatus(ctx, uuid.New(), StatusUpdate{Status: models.OrderStatusConfirmed})
	wantStatus(t, err, http.StatusNotFound)
}

func TestOrderListingAndStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe")
	other := f.otherUser(t)
	otherProfile := f.createProfile(t, other.ID, models.ProfileTypePersonal, "John Roe")
	orders := NewOrders(f.db)

	var mine []*models.Order
	for i := 0; i < 3; i++ {
		o, err := orders.Create(ctx, f.user.ID, validOrderInput(profile.ID))
		if err != nil {
			t.Fatal(err)
		}
		mine = append(mine, o)
	}
	theirs, err := orders.Create(ctx, other.ID, validOrderInput(otherProfile.ID))
	if err != nil {
		t.Fatal(err)
	}

	listed, err := orders.ListMine(ctx, f.user.ID)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "my orders", len(listed), 3)

	_, err = orders.GetMine(ctx, f.user.ID, theirs.ID)
	wantStatus(t, err, http.StatusNotFound)

	for _, id := range []uuid.UUID{mine[0].ID, mine[1].ID} {
		if _, err := orders.UpdateStatus(ctx, id, StatusUpdate{Status: models.OrderStatusDelivered}); err != nil {
			t.Fatal(err)
		}
	}

	page, err := orders.ListAll(ctx, "delivered", database.Page{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "delivered total", page.Total, int64(2))
	mustEqual(t, "page size", len(page.Orders), 1)

	_, err = orders.ListAll(ctx, "misplaced", database.Page{})
	wantStatus(t, err, http.StatusBadRequest)

	stats, err := orders.Statistics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "total", stats.TotalOrders, int64(4))
	mustEqual(t, "revenue", stats.TotalRevenue, 50.0)
	mustEqual(t, "this month", stats.OrdersThisMonth, int64(4))
	mustEqual(t, "recent", len(stats.RecentOrders), 4)
	byStatus := map[string]int64{}
	for _, row := range stats.OrdersByStatus {
		byStatus[row.Label] = row.Count
	}
	mustEqual(t, "delivered", byStatus["delivered"], int64(2))
	mustEqual(t, "pending", byStatus["pending"], int64(2))

	if err := orders.Delete(ctx, theirs.ID); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, orders.Delete(ctx, theirs.ID), http.StatusNotFound)
}
